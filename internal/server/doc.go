// Package server implements the MCP (Model Context Protocol) server for lane
// tracking.
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods: initialize, tools/list, tools/call and ping.
//
// # Tools
//
// Session lifecycle:
//   - lane_session_start: Create a tracking session, optionally recorded
//   - lane_session_reset: Clear a session's state
//   - lane_session_end: Release a session
//
// Tracking:
//   - lane_track_segments: Advance a session with detected segments
//   - lane_track_polar: Advance a session with (rho, theta) Hough lines
//   - lane_track_image: Detect segments in a frame file and advance a session
//   - lane_classify: Split segments into left/right candidates, stateless
//
// Frame inspection:
//   - image_load: Frame dimensions and format
//   - image_edge_detect: Preprocessed edge mask as PNG
//   - image_detect_lines: Hough segments or polar lines
//   - lane_render: Draw lane lines over a frame
//
// # Sessions
//
// Sessions are keyed by a random UUID. Requests for different sessions run
// independently; requests for the same session are serialized.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000 and the Go error string in data. Malformed tools/call params get
// -32602.
package server
