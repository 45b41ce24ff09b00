package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ironsheep/image-brightness/internal/imaging"
	"github.com/ironsheep/image-brightness/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_brightness_report").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000
// and the error kind in data.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		kind := imaging.Kind(err)
		s.logger.Debug("tool failed", "tool", params.Name, "kind", kind, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", map[string]interface{}{
			"kind":  string(kind),
			"error": err.Error(),
		})
	}
	s.logger.Debug("tool completed", "tool", params.Name, "duration", time.Since(start))

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "image_adjust_brightness":
		return s.handleAdjustBrightness(args)
	case "image_top_colors":
		return s.handleTopColors(args)
	case "image_color_histogram":
		return s.handleColorHistogram(args)
	case "image_color_distribution_chart":
		return s.handleDistributionChart(args)
	case "image_brightness_report":
		return s.handleBrightnessReport(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: invalid arguments: %v", imaging.ErrInvalidInput, err)
	}
	return nil
}

func encodeBase64PNG(r *imaging.Raster) (string, error) {
	var buf bytes.Buffer
	if err := imaging.EncodePNG(&buf, r); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type brightnessArgs struct {
	Path       string   `json:"path"`
	Brightness int      `json:"brightness"`
	Channels   []string `json:"channels"`
}

// adjusted loads the image at a.Path and applies the requested adjustment.
func (s *Server) adjusted(a brightnessArgs) (*imaging.Raster, imaging.ChannelSelection, error) {
	channels, err := imaging.ParseChannels(a.Channels)
	if err != nil {
		return nil, nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, nil, err
	}
	out, err := imaging.Adjust(img, a.Brightness, channels)
	if err != nil {
		return nil, nil, err
	}
	return out, channels, nil
}

type adjustBrightnessArgs struct {
	brightnessArgs
	OutputPath string `json:"output_path"`
}

// AdjustResult is returned by image_adjust_brightness.
type AdjustResult struct {
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Brightness int      `json:"brightness"`
	Channels   []string `json:"channels"`
	Image      string   `json:"image,omitempty"`
	MimeType   string   `json:"mime_type,omitempty"`
	OutputPath string   `json:"output_path,omitempty"`
}

func (s *Server) handleAdjustBrightness(args json.RawMessage) (interface{}, error) {
	var a adjustBrightnessArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	out, channels, err := s.adjusted(a.brightnessArgs)
	if err != nil {
		return nil, err
	}

	res := &AdjustResult{
		Width:      out.Width,
		Height:     out.Height,
		Brightness: a.Brightness,
		Channels:   channels.Names(),
	}
	if a.OutputPath != "" {
		if err := imaging.SavePNG(a.OutputPath, out); err != nil {
			return nil, err
		}
		res.OutputPath = a.OutputPath
		return res, nil
	}

	res.Image, err = encodeBase64PNG(out)
	if err != nil {
		return nil, err
	}
	res.MimeType = "image/png"
	return res, nil
}

// regionArgs optionally restricts analysis to part of the image.
type regionArgs struct {
	Region   *imaging.Region `json:"region,omitempty"`
	Quadrant string          `json:"quadrant,omitempty"`
}

// loadRegion loads the image at path and crops it to the requested region,
// if any. An explicit region wins over a named quadrant.
func (s *Server) loadRegion(path string, ra regionArgs) (*imaging.Raster, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	switch {
	case ra.Region != nil:
		return img.Crop(*ra.Region)
	case ra.Quadrant != "":
		g, err := imaging.NamedRegion(ra.Quadrant, img.Width, img.Height)
		if err != nil {
			return nil, err
		}
		return img.Crop(g)
	default:
		return img, nil
	}
}

type topColorsArgs struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
	regionArgs
}

// TopColorsResult is returned by image_top_colors.
type TopColorsResult struct {
	Colors         []imaging.ColorCount `json:"colors"`
	DistinctColors int                  `json:"distinct_colors"`
	TotalPixels    int                  `json:"total_pixels"`
}

func (s *Server) handleTopColors(args json.RawMessage) (interface{}, error) {
	var a topColorsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Count <= 0 {
		a.Count = s.processor.PaletteSize()
	}
	img, err := s.loadRegion(a.Path, a.regionArgs)
	if err != nil {
		return nil, err
	}

	table, err := imaging.CountColors(img)
	if err != nil {
		return nil, err
	}
	return &TopColorsResult{
		Colors:         imaging.RankColors(table, a.Count),
		DistinctColors: len(table),
		TotalPixels:    img.PixelCount(),
	}, nil
}

// HistogramResult is returned by image_color_histogram.
type HistogramResult struct {
	Bins        int                      `json:"bins"`
	TotalPixels int                      `json:"total_pixels"`
	Red         imaging.ChannelHistogram `json:"red"`
	Green       imaging.ChannelHistogram `json:"green"`
	Blue        imaging.ChannelHistogram `json:"blue"`
	Peaks       map[string]int           `json:"peaks"`
}

type histogramArgs struct {
	Path string `json:"path"`
	regionArgs
}

func (s *Server) handleColorHistogram(args json.RawMessage) (interface{}, error) {
	var a histogramArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadRegion(a.Path, a.regionArgs)
	if err != nil {
		return nil, err
	}

	d, err := imaging.Histogram(img)
	if err != nil {
		return nil, err
	}
	return &HistogramResult{
		Bins:        imaging.HistogramBins,
		TotalPixels: img.PixelCount(),
		Red:         d.Red,
		Green:       d.Green,
		Blue:        d.Blue,
		Peaks: map[string]int{
			"red":   d.Red.Peak(),
			"green": d.Green.Peak(),
			"blue":  d.Blue.Peak(),
		},
	}, nil
}

// ChartResult is returned by image_color_distribution_chart.
type ChartResult struct {
	Image    string `json:"image"`
	MimeType string `json:"mime_type"`
}

func (s *Server) handleDistributionChart(args json.RawMessage) (interface{}, error) {
	var a brightnessArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, _, err := s.adjusted(a)
	if err != nil {
		return nil, err
	}

	d, err := imaging.Histogram(img)
	if err != nil {
		return nil, err
	}
	png, err := s.renderer.Render(d)
	if err != nil {
		return nil, err
	}
	return &ChartResult{
		Image:    base64.StdEncoding.EncodeToString(png),
		MimeType: "image/png",
	}, nil
}

type reportArgs struct {
	brightnessArgs
	Count int `json:"count"`
}

// ReportSide holds the outputs for one of the two compared images.
type ReportSide struct {
	Colors []imaging.ColorCount `json:"colors"`
	Chart  string               `json:"chart"`
	Image  string               `json:"image,omitempty"`
}

// ReportResult is returned by image_brightness_report.
type ReportResult struct {
	Brightness int        `json:"brightness"`
	Channels   []string   `json:"channels"`
	Original   ReportSide `json:"original"`
	Modified   ReportSide `json:"modified"`
	ElapsedMS  int64      `json:"elapsed_ms"`
}

func (s *Server) handleBrightnessReport(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a reportArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	channels, err := imaging.ParseChannels(a.Channels)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	p := s.processor
	if a.Count > 0 && a.Count != p.PaletteSize() {
		p = p.WithOptions(pipeline.WithPaletteSize(a.Count))
	}
	res, err := p.Process(ctx, pipeline.Request{
		Image:    img,
		Delta:    a.Brightness,
		Channels: channels,
	})
	if err != nil {
		return nil, err
	}

	modified, err := encodeBase64PNG(res.Modified)
	if err != nil {
		return nil, err
	}
	return &ReportResult{
		Brightness: res.Delta,
		Channels:   res.Channels.Names(),
		Original: ReportSide{
			Colors: res.OriginalColors,
			Chart:  base64.StdEncoding.EncodeToString(res.OriginalChart),
		},
		Modified: ReportSide{
			Colors: res.ModifiedColors,
			Chart:  base64.StdEncoding.EncodeToString(res.ModifiedChart),
			Image:  modified,
		},
		ElapsedMS: res.Elapsed.Milliseconds(),
	}, nil
}
