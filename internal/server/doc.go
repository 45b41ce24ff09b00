// Package server implements the MCP (Model Context Protocol) server for the
// brightness pipeline.
//
// The same operations the web front end performs are exposed as tools, so
// an MCP client can adjust an image and inspect its palette and channel
// distributions without going through an upload form.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_load: Load image and get metadata
//   - image_adjust_brightness: Add a clamped delta to selected channels
//   - image_top_colors: Most frequent exact colors
//   - image_color_histogram: Normalized 256-bin channel histograms
//   - image_color_distribution_chart: Histogram line chart as PNG
//   - image_brightness_report: Full before/after comparison
//
// Images and charts are returned as base64-encoded PNG.
//
// # Image Caching
//
// Decoded images are cached by path and reused across tool calls for the
// lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000. The data member carries the error kind (invalid_input,
// degenerate_input, out_of_range_channel, rendering_failure or internal)
// and the error text.
//
// Logs go to the injected logger, never to stdout, which carries the protocol.
package server
