package server

import (
	"encoding/json"
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expectedTools := []string{
		"lane_session_start",
		"lane_session_reset",
		"lane_session_end",
		"lane_track_segments",
		"lane_track_polar",
		"lane_track_image",
		"lane_classify",
		"image_load",
		"image_edge_detect",
		"image_detect_lines",
		"lane_render",
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("got %d tools, want %d", len(tools), len(expectedTools))
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}

	// Every advertised tool must be dispatched.
	for _, tool := range tools {
		_, err := New(nil, nil).executeTool(tool.Name, json.RawMessage(`{}`))
		if err != nil && err.Error() == "unknown tool: "+tool.Name {
			t.Errorf("tool %s is advertised but not handled", tool.Name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want object", tool.InputSchema["type"])
			}
			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok || len(props) == 0 {
				t.Fatal("InputSchema missing properties")
			}

			// Every required field must be a declared property.
			required, _ := tool.InputSchema["required"].([]string)
			for _, r := range required {
				if _, ok := props[r]; !ok {
					t.Errorf("required field %q is not a property", r)
				}
			}
		})
	}
}

func TestToolDefinitions_RequiredFields(t *testing.T) {
	tests := []struct {
		tool  string
		field string
	}{
		{"lane_session_reset", "session_id"},
		{"lane_session_end", "session_id"},
		{"lane_track_segments", "session_id"},
		{"lane_track_segments", "segments"},
		{"lane_track_polar", "lines"},
		{"lane_track_image", "path"},
		{"lane_classify", "width"},
		{"image_load", "path"},
		{"image_edge_detect", "path"},
		{"image_detect_lines", "path"},
		{"lane_render", "path"},
	}

	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for _, tt := range tests {
		t.Run(tt.tool+"/"+tt.field, func(t *testing.T) {
			tool, ok := toolMap[tt.tool]
			if !ok {
				t.Fatalf("tool %s not defined", tt.tool)
			}
			required, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}
			for _, r := range required {
				if r == tt.field {
					return
				}
			}
			t.Errorf("%s does not require %s", tt.tool, tt.field)
		})
	}
}

func TestToolDefinitions_SessionStartOptional(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		if tool.Name != "lane_session_start" {
			continue
		}
		if _, ok := tool.InputSchema["required"]; ok {
			t.Error("lane_session_start should have no required fields")
		}
		props := tool.InputSchema["properties"].(map[string]interface{})
		strategy := props["strategy"].(map[string]interface{})
		enum, ok := strategy["enum"].([]string)
		if !ok || len(enum) != 2 {
			t.Errorf("strategy enum = %v, want particle and median", strategy["enum"])
		}
		return
	}
	t.Fatal("lane_session_start not defined")
}

func TestToolDefinitions_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(GetToolDefinitions())
	if err != nil {
		t.Fatalf("Failed to marshal tools: %v", err)
	}

	var decoded []map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal tools: %v", err)
	}
	for _, tool := range decoded {
		if _, ok := tool["inputSchema"]; !ok {
			t.Errorf("tool %v missing inputSchema key", tool["name"])
		}
	}
}
