package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/lane-tracker/internal/config"
	"github.com/ironsheep/lane-tracker/internal/detection"
	"github.com/ironsheep/lane-tracker/internal/imaging"
	"github.com/ironsheep/lane-tracker/internal/lane"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "lane_track_segments").
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
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Session lifecycle
	case "lane_session_start":
		return s.handleSessionStart(args)
	case "lane_session_reset":
		return s.handleSessionReset(args)
	case "lane_session_end":
		return s.handleSessionEnd(args)

	// Tracking
	case "lane_track_segments":
		return s.handleTrackSegments(args)
	case "lane_track_polar":
		return s.handleTrackPolar(args)
	case "lane_track_image":
		return s.handleTrackImage(args)
	case "lane_classify":
		return s.handleClassify(args)

	// Frame inspection
	case "image_load":
		return s.handleImageLoad(args)
	case "image_edge_detect":
		return s.handleImageEdgeDetect(args)
	case "image_detect_lines":
		return s.handleImageDetectLines(args)
	case "lane_render":
		return s.handleRender(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
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

// === Session Handlers ===

type sessionStartArgs struct {
	Strategy string  `json:"strategy"`
	Seed     *uint64 `json:"seed"`
	Record   string  `json:"record"`
}

type sessionInfo struct {
	SessionID string `json:"session_id"`
	Strategy  string `json:"strategy"`
	Seed      uint64 `json:"seed"`
	Frames    int    `json:"frames"`
	RunID     string `json:"run_id,omitempty"`
}

func (s *Server) handleSessionStart(args json.RawMessage) (interface{}, error) {
	var a sessionStartArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	cfg := s.tuning.LaneConfig()
	if a.Strategy != "" {
		cfg.Strategy = lane.Strategy(a.Strategy)
	}
	seed := s.tuning.GetSeed()
	if a.Seed != nil {
		seed = *a.Seed
	}

	session, err := lane.NewSession(cfg, config.Source(seed))
	if err != nil {
		return nil, err
	}
	t := &trackedSession{session: session, strategy: cfg.Strategy, seed: seed}

	if a.Record != "" {
		if s.store == nil {
			return nil, errors.New("recording is not enabled on this server")
		}
		runID, err := s.store.StartRun(a.Record, cfg, seed)
		if err != nil {
			return nil, err
		}
		t.runID = runID
	}

	id := s.sessions.add(t)
	s.debugf("session %s started (strategy=%s seed=%d)", id, cfg.Strategy, seed)
	return &sessionInfo{
		SessionID: id,
		Strategy:  string(cfg.Strategy),
		Seed:      seed,
		RunID:     t.runID,
	}, nil
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleSessionReset(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	t, err := s.sessions.get(a.SessionID)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.session.Reset()
	t.last = nil
	return t.info(), nil
}

func (s *Server) handleSessionEnd(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	t, err := s.sessions.remove(a.SessionID)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.runID != "" {
		if err := s.store.FinishRun(t.runID, nil); err != nil {
			return nil, err
		}
	}
	s.debugf("session %s ended after %d frames", t.id, t.session.Frames())
	return t.info(), nil
}

func (t *trackedSession) info() *sessionInfo {
	return &sessionInfo{
		SessionID: t.id,
		Strategy:  string(t.strategy),
		Seed:      t.seed,
		Frames:    t.session.Frames(),
		RunID:     t.runID,
	}
}

// === Tracking Handlers ===

// trackResult is one frame's estimate as returned to the client.
type trackResult struct {
	SessionID string `json:"session_id"`
	lane.Result
	Segments int `json:"segments,omitempty"`
}

// step runs fn under the session lock, stores the result and records it
// when the session is being recorded.
func (s *Server) step(id string, fn func(t *trackedSession) lane.Result) (*trackResult, error) {
	t, err := s.sessions.get(id)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	res := fn(t)
	t.remember(res)
	if t.runID != "" {
		if err := s.store.RecordResult(t.runID, res); err != nil {
			return nil, err
		}
	}
	return &trackResult{SessionID: t.id, Result: res}, nil
}

// frameIndex returns the explicit frame index or the session's frame count.
func frameIndex(explicit *int, t *trackedSession) int {
	if explicit != nil {
		return *explicit
	}
	return t.session.Frames()
}

type trackSegmentsArgs struct {
	SessionID string         `json:"session_id"`
	Frame     *int           `json:"frame"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Segments  []lane.Segment `json:"segments"`
}

func (s *Server) handleTrackSegments(args json.RawMessage) (interface{}, error) {
	var a trackSegmentsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Width <= 0 || a.Height <= 0 {
		return nil, fmt.Errorf("width and height must be positive, got %dx%d", a.Width, a.Height)
	}
	return s.step(a.SessionID, func(t *trackedSession) lane.Result {
		return t.session.Process(lane.Frame{
			Index:    frameIndex(a.Frame, t),
			Width:    a.Width,
			Height:   a.Height,
			Segments: a.Segments,
		})
	})
}

type trackPolarArgs struct {
	SessionID string           `json:"session_id"`
	Frame     *int             `json:"frame"`
	Height    int              `json:"height"`
	Lines     []lane.PolarLine `json:"lines"`
}

func (s *Server) handleTrackPolar(args json.RawMessage) (interface{}, error) {
	var a trackPolarArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Height <= 0 {
		return nil, fmt.Errorf("height must be positive, got %d", a.Height)
	}
	return s.step(a.SessionID, func(t *trackedSession) lane.Result {
		return t.session.ProcessPolar(frameIndex(a.Frame, t), a.Height, a.Lines)
	})
}

type trackImageArgs struct {
	SessionID string `json:"session_id"`
	Path      string `json:"path"`
	Frame     *int   `json:"frame"`
}

func (s *Server) handleTrackImage(args json.RawMessage) (interface{}, error) {
	var a trackImageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	det, err := detection.New(s.tuning.GetDetector(), s.tuning.DetectionOptions())
	if err != nil {
		return nil, err
	}
	segs, err := det.Detect(img)
	if err != nil {
		return nil, fmt.Errorf("%s detector: %w", det.Name(), err)
	}

	b := img.Bounds()
	out, err := s.step(a.SessionID, func(t *trackedSession) lane.Result {
		return t.session.Process(lane.Frame{
			Index:    frameIndex(a.Frame, t),
			Width:    b.Dx(),
			Height:   b.Dy(),
			Segments: segs,
		})
	})
	if err != nil {
		return nil, err
	}
	out.Segments = len(segs)
	return out, nil
}

type classifyArgs struct {
	Width         int            `json:"width"`
	Height        int            `json:"height"`
	Segments      []lane.Segment `json:"segments"`
	MarginDegrees *float64       `json:"margin_degrees"`
}

type classifyResult struct {
	Left  []lane.Segment `json:"left"`
	Right []lane.Segment `json:"right"`
}

func (s *Server) handleClassify(args json.RawMessage) (interface{}, error) {
	var a classifyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Width <= 0 || a.Height <= 0 {
		return nil, fmt.Errorf("width and height must be positive, got %dx%d", a.Width, a.Height)
	}

	cc := s.tuning.LaneConfig().Classifier
	if a.MarginDegrees != nil {
		cc.MarginDegrees = *a.MarginDegrees
	}
	c, err := lane.NewClassifier(cc)
	if err != nil {
		return nil, err
	}
	left, right := c.Classify(lane.Frame{Width: a.Width, Height: a.Height, Segments: a.Segments})
	if left == nil {
		left = []lane.Segment{}
	}
	if right == nil {
		right = []lane.Segment{}
	}
	return &classifyResult{Left: left, Right: right}, nil
}

// === Frame Inspection Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadFrameInfo(s.cache, a.Path)
}

type imageEdgeDetectArgs struct {
	Path         string   `json:"path"`
	BlurRadius   *float64 `json:"blur_radius"`
	CannyLow     int      `json:"canny_low"`
	CannyHigh    int      `json:"canny_high"`
	DilateRadius *float64 `json:"dilate_radius"`
	NoROI        bool     `json:"no_roi"`
}

func (s *Server) handleImageEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a imageEdgeDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts := s.tuning.DetectionOptions().Preprocess
	if a.BlurRadius != nil {
		opts.BlurRadius = *a.BlurRadius
	}
	if a.CannyLow != 0 {
		opts.CannyLow = a.CannyLow
	}
	if a.CannyHigh != 0 {
		opts.CannyHigh = a.CannyHigh
	}
	if a.DilateRadius != nil {
		opts.DilateRadius = *a.DilateRadius
	}
	opts.NoROI = a.NoROI
	if opts.CannyLow > opts.CannyHigh {
		return nil, fmt.Errorf("canny_low (%d) must not exceed canny_high (%d)", opts.CannyLow, opts.CannyHigh)
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EdgeDetect(img, opts)
}

type imageDetectLinesArgs struct {
	Path      string `json:"path"`
	Mode      string `json:"mode"`
	Threshold int    `json:"threshold"`
	MinLength int    `json:"min_length"`
	MaxGap    int    `json:"max_gap"`
}

type detectLinesResult struct {
	Width    int              `json:"width"`
	Height   int              `json:"height"`
	Count    int              `json:"count"`
	Segments []lane.Segment   `json:"segments,omitempty"`
	Lines    []lane.PolarLine `json:"lines,omitempty"`
}

func (s *Server) handleImageDetectLines(args json.RawMessage) (interface{}, error) {
	var a imageDetectLinesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Mode == "" {
		a.Mode = "segments"
	}
	opts := s.tuning.DetectionOptions()
	if a.Threshold > 0 {
		opts.Hough.Threshold = a.Threshold
	}
	if a.MinLength > 0 {
		opts.Hough.MinLength = a.MinLength
	}
	if a.MaxGap > 0 {
		opts.Hough.MaxGap = a.MaxGap
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	result := &detectLinesResult{Width: b.Dx(), Height: b.Dy()}
	det := detection.NewHoughDetector(opts)

	switch a.Mode {
	case "segments":
		segs, err := det.Detect(img)
		if err != nil {
			return nil, err
		}
		result.Segments = segs
		result.Count = len(segs)
	case "polar":
		lines, err := det.DetectPolar(img)
		if err != nil {
			return nil, err
		}
		result.Lines = lines
		result.Count = len(lines)
	default:
		return nil, fmt.Errorf("invalid mode %q: use segments or polar", a.Mode)
	}
	return result, nil
}

type renderArgs struct {
	Path       string        `json:"path"`
	SessionID  string        `json:"session_id"`
	Left       *lane.Segment `json:"left"`
	Right      *lane.Segment `json:"right"`
	LeftColor  string        `json:"left_color"`
	RightColor string        `json:"right_color"`
	Thickness  int           `json:"thickness"`
	Opacity    float64       `json:"opacity"`
	ShowROI    bool          `json:"show_roi"`
}

func (s *Server) handleRender(args json.RawMessage) (interface{}, error) {
	var a renderArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	style := imaging.DefaultOverlayStyle()
	if a.LeftColor != "" {
		style.LeftColor = a.LeftColor
	}
	if a.RightColor != "" {
		style.RightColor = a.RightColor
	}
	if a.Thickness > 0 {
		style.Thickness = a.Thickness
	}
	if a.Opacity > 0 {
		style.Opacity = a.Opacity
	}
	style.ShowROI = a.ShowROI

	left, right := a.Left, a.Right
	if a.SessionID != "" && left == nil && right == nil {
		t, err := s.sessions.get(a.SessionID)
		if err != nil {
			return nil, err
		}
		t.mu.Lock()
		last := t.last
		t.mu.Unlock()
		if last == nil {
			return nil, fmt.Errorf("session %q has not tracked a frame yet", a.SessionID)
		}
		style.Label = last.Frame
		if last.Left.Valid {
			left = &last.Left.Line
		}
		if last.Right.Valid {
			right = &last.Right.Line
		}
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Render(img, strokeOf(left), strokeOf(right), style)
}

func strokeOf(seg *lane.Segment) *imaging.Stroke {
	if seg == nil {
		return nil
	}
	return &imaging.Stroke{X0: seg.X0, Y0: seg.Y0, X1: seg.X1, Y1: seg.Y1}
}
