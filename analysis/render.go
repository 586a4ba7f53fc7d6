package analysis

import (
	"bytes"
	"encoding/json"
	"strings"
)

// RenderResult turns a raw result payload into display text.
// JSON strings render verbatim, any other JSON value is pretty-printed.
// Bytes that are not JSON at all are shown as they are.
func RenderResult(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}

	var text string
	if err := json.Unmarshal(trimmed, &text); err == nil {
		return text
	}

	var out bytes.Buffer
	if err := json.Indent(&out, trimmed, "", "  "); err != nil {
		return strings.TrimSpace(string(trimmed))
	}
	return out.String()
}
