package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// getString extracts a string value from raw JSON arguments.
// Returns defaultVal if the key is absent or not a string.
func getString(raw json.RawMessage, key, defaultVal string) string {
	m := parseArgs(raw)
	if m == nil {
		return defaultVal
	}
	s, ok := m[key].(string)
	if !ok {
		return defaultVal
	}
	return s
}

// getInt extracts an integer value from raw JSON arguments.
// JSON numbers are float64, so this truncates to int.
func getInt(raw json.RawMessage, key string, defaultVal int) int {
	m := parseArgs(raw)
	if m == nil {
		return defaultVal
	}
	f, ok := m[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(f)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	var r mcp.CallToolResult
	r.SetError(fmt.Errorf("%s", msg))
	return &r
}

func parseArgs(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}
