package server

import "github.com/ironsheep/image-brightness/internal/imaging"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file (.png, .jpg, .jpeg, .gif, .webp)",
	}
}

func brightnessProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": pathProperty(),
		"brightness": map[string]interface{}{
			"type":        "integer",
			"description": "Amount added to each selected channel; results are clamped to 0-255",
		},
		"channels": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "string",
				"enum": []string{"red", "green", "blue"},
			},
			"description": "Channels to adjust. Empty or omitted leaves the image unchanged",
		},
	}
}

func regionProperties(props map[string]interface{}) map[string]interface{} {
	props["region"] = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "integer"},
			"y1": map[string]interface{}{"type": "integer"},
			"x2": map[string]interface{}{"type": "integer"},
			"y2": map[string]interface{}{"type": "integer"},
		},
		"description": "Optional rectangle to analyze (x2, y2 exclusive)",
	}
	props["quadrant"] = map[string]interface{}{
		"type":        "string",
		"enum":        imaging.RegionNames,
		"description": "Optional named region to analyze. Ignored when region is set",
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	adjust := brightnessProperties()
	adjust["output_path"] = map[string]interface{}{
		"type":        "string",
		"description": "Optional path to write the adjusted image as PNG instead of returning it inline",
	}

	chartProps := brightnessProperties()
	chartProps["brightness"] = map[string]interface{}{
		"type":        "integer",
		"description": "Optional adjustment applied before charting. Default 0",
		"default":     0,
	}

	report := brightnessProperties()
	report["count"] = map[string]interface{}{
		"type":        "integer",
		"description": "Number of top colors per image. Default is the configured palette size",
	}

	return []Tool{
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and channel layout. The decoded image is cached for subsequent operations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_adjust_brightness",
			Description: "Add a brightness delta to selected RGB channels with clamping. Returns the adjusted image as base64-encoded PNG, or writes it to output_path.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": adjust,
				"required":   []string{"path", "brightness"},
			},
		},
		{
			Name:        "image_top_colors",
			Description: "Count exact pixel colors and return the most frequent ones, most frequent first. Ties keep first-appearance order.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": regionProperties(map[string]interface{}{
					"path": pathProperty(),
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colors to return. Default 10",
						"default":     10,
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_color_histogram",
			Description: "Return normalized 256-bin histograms of the red, green and blue channels. Each channel sums to 1.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": regionProperties(map[string]interface{}{
					"path": pathProperty(),
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_color_distribution_chart",
			Description: "Draw the per-channel color distribution as a line chart and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": chartProps,
				"required":   []string{"path"},
			},
		},
		{
			Name:        "image_brightness_report",
			Description: "Run the full comparison: adjust brightness, then return top colors and distribution charts for both the original and the adjusted image.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": report,
				"required":   []string{"path", "brightness"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
