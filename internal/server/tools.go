package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Session lifecycle
		{
			Name:        "lane_session_start",
			Description: "Start a lane tracking session. Returns a session_id used by the tracking tools. Each session keeps its own particle filters, predictors and smoothing history.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"strategy": map[string]interface{}{
						"type":        "string",
						"description": "Estimation strategy: 'particle' (per-side particle filter, default) or 'median' (rolling median of lane features)",
						"enum":        []string{"particle", "median"},
					},
					"seed": map[string]interface{}{
						"type":        "integer",
						"description": "Seed for the resampling random source. Sessions with the same seed and input produce identical estimates",
					},
					"record": map[string]interface{}{
						"type":        "string",
						"description": "Run name to record every frame result under. Requires the server to be started with a results database",
					},
				},
			},
		},
		{
			Name:        "lane_session_reset",
			Description: "Discard all tracking state of a session, as at the start of a new video.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": map[string]interface{}{
						"type":        "string",
						"description": "Session id returned by lane_session_start",
					},
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "lane_session_end",
			Description: "End a session and release its state. A recorded run is marked finished.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": map[string]interface{}{
						"type":        "string",
						"description": "Session id returned by lane_session_start",
					},
				},
				"required": []string{"session_id"},
			},
		},

		// Tracking
		{
			Name:        "lane_track_segments",
			Description: "Advance a session by one frame of detected line segments. Segments are classified into left and right candidates and each side is estimated. Returns the left and right lane lines; a side with valid=false is lost for this frame.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": map[string]interface{}{
						"type":        "string",
						"description": "Session id returned by lane_session_start",
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Frame width in pixels",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Frame height in pixels",
					},
					"frame": map[string]interface{}{
						"type":        "integer",
						"description": "Frame index to report (default: number of frames already processed)",
					},
					"segments": map[string]interface{}{
						"type":        "array",
						"description": "Detected segments as objects with x0, y0, x1, y1 in pixel coordinates",
						"items":       segmentSchema(),
					},
				},
				"required": []string{"session_id", "width", "height", "segments"},
			},
		},
		{
			Name:        "lane_track_polar",
			Description: "Advance a session by one frame of standard Hough lines in (rho, theta) form. Lines are classified by angle window: left for 20-55 degrees, right for 135-180 degrees.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": map[string]interface{}{
						"type":        "string",
						"description": "Session id returned by lane_session_start",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Frame height in pixels",
					},
					"frame": map[string]interface{}{
						"type":        "integer",
						"description": "Frame index to report (default: number of frames already processed)",
					},
					"lines": map[string]interface{}{
						"type":        "array",
						"description": "Lines as objects with rho (pixels) and theta (radians)",
						"items":       polarSchema(),
					},
				},
				"required": []string{"session_id", "height", "lines"},
			},
		},
		{
			Name:        "lane_track_image",
			Description: "Detect line segments in a frame image and advance a session with them. Uses the configured detector (pure-Go Hough by default).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": map[string]interface{}{
						"type":        "string",
						"description": "Session id returned by lane_session_start",
					},
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the frame image",
					},
					"frame": map[string]interface{}{
						"type":        "integer",
						"description": "Frame index to report (default: number of frames already processed)",
					},
				},
				"required": []string{"session_id", "path"},
			},
		},
		{
			Name:        "lane_classify",
			Description: "Classify segments into left and right lane candidates without tracking. Candidates are normalized to span the reference rows.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Frame width in pixels",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Frame height in pixels",
					},
					"segments": map[string]interface{}{
						"type":        "array",
						"description": "Segments as objects with x0, y0, x1, y1",
						"items":       segmentSchema(),
					},
					"margin_degrees": map[string]interface{}{
						"type":        "number",
						"description": "Slope cone margin in degrees, 0-45 (default: configured value, 20)",
					},
				},
				"required": []string{"width", "height", "segments"},
			},
		},

		// Frame inspection
		{
			Name:        "image_load",
			Description: "Load a frame image and return its dimensions and format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the frame image",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_edge_detect",
			Description: "Run the frame preprocessing pipeline (grayscale, blur, Canny, dilation, lane region mask) and return the edge mask as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the frame image",
					},
					"blur_radius": map[string]interface{}{
						"type":        "number",
						"description": "Gaussian blur radius (default: 2)",
					},
					"canny_low": map[string]interface{}{
						"type":        "integer",
						"description": "Canny weak-edge threshold (default: 10)",
					},
					"canny_high": map[string]interface{}{
						"type":        "integer",
						"description": "Canny strong-edge threshold (default: 30)",
					},
					"dilate_radius": map[string]interface{}{
						"type":        "number",
						"description": "Dilation radius (default: 1)",
					},
					"no_roi": map[string]interface{}{
						"type":        "boolean",
						"description": "Keep the whole frame instead of the lane trapezoid (default: false)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_detect_lines",
			Description: "Detect lane line candidates in a frame with the Hough transform. Returns segments or polar lines.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the frame image",
					},
					"mode": map[string]interface{}{
						"type":        "string",
						"description": "Output form: 'segments' (default) or 'polar'",
						"enum":        []string{"segments", "polar"},
					},
					"threshold": map[string]interface{}{
						"type":        "integer",
						"description": "Minimum accumulator votes for a line (default: 100)",
					},
					"min_length": map[string]interface{}{
						"type":        "integer",
						"description": "Minimum segment length in pixels (default: 100)",
					},
					"max_gap": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum gap in pixels joined within one segment (default: 150)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "lane_render",
			Description: "Draw lane lines over a frame and return it as base64 PNG. Lines come from the left/right arguments or, when only session_id is given, from the session's last result.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the frame image",
					},
					"session_id": map[string]interface{}{
						"type":        "string",
						"description": "Draw the last estimate of this session",
					},
					"left": map[string]interface{}{
						"type":        "object",
						"description": "Left line as {x0, y0, x1, y1}",
					},
					"right": map[string]interface{}{
						"type":        "object",
						"description": "Right line as {x0, y0, x1, y1}",
					},
					"left_color": map[string]interface{}{
						"type":        "string",
						"description": "Hex color of the left line (default: #ff0000)",
					},
					"right_color": map[string]interface{}{
						"type":        "string",
						"description": "Hex color of the right line (default: #0000ff)",
					},
					"thickness": map[string]interface{}{
						"type":        "integer",
						"description": "Line thickness in pixels (default: 4)",
					},
					"opacity": map[string]interface{}{
						"type":        "number",
						"description": "Line opacity 0-1 (default: 1)",
					},
					"show_roi": map[string]interface{}{
						"type":        "boolean",
						"description": "Outline the lane region of interest (default: false)",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

func segmentSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x0": map[string]interface{}{"type": "number"},
			"y0": map[string]interface{}{"type": "number"},
			"x1": map[string]interface{}{"type": "number"},
			"y1": map[string]interface{}{"type": "number"},
		},
		"required": []string{"x0", "y0", "x1", "y1"},
	}
}

func polarSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"rho":   map[string]interface{}{"type": "number"},
			"theta": map[string]interface{}{"type": "number"},
		},
		"required": []string{"rho", "theta"},
	}
}
