// Package swaggerkit serves the embedded OpenAPI document and Swagger UI
package swaggerkit

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"sync"

	perr "punchclock/internal/platform/errors"
	"punchclock/internal/platform/logger"
)

//go:embed openapi.json
var specJSON []byte

// basePath is where the API is mounted; the document's paths are relative to it
const basePath = "/api/v1"

var renderEmbedded = sync.OnceValues(func() ([]byte, error) { return render(specJSON) })

// render fills in what the hand-written document leaves to runtime: the
// server url, the error envelope schema and default 400/500 responses
func render(raw []byte) ([]byte, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "openapi document")
	}
	if _, ok := doc["servers"]; !ok {
		doc["servers"] = []any{map[string]any{"url": basePath}}
	}
	child(child(doc, "components"), "schemas")["ErrorResponse"] = errorSchema()

	defaults := map[string]any{
		"400": errorResponse("Bad Request", 400, perr.ErrorCodeValidation, "endDate must not be before startDate", "endDate"),
		"500": errorResponse("Internal Server Error", 500, perr.ErrorCodePanic, "panic recovered", ""),
	}
	paths, _ := doc["paths"].(map[string]any)
	for _, item := range paths {
		ops, _ := item.(map[string]any)
		for _, op := range ops {
			o, ok := op.(map[string]any)
			if !ok {
				continue
			}
			responses := child(o, "responses")
			for code, resp := range defaults {
				if _, set := responses[code]; !set {
					responses[code] = resp
				}
			}
		}
	}
	return json.Marshal(doc)
}

// child returns m[key] as an object, creating it when absent
func child(m map[string]any, key string) map[string]any {
	c, ok := m[key].(map[string]any)
	if !ok {
		c = map[string]any{}
		m[key] = c
	}
	return c
}

func errorSchema() map[string]any {
	prop := func(typ string) map[string]any { return map[string]any{"type": typ} }
	return map[string]any{
		"type":        "object",
		"description": "Error envelope; field names the offending input when there is one",
		"required":    []any{"status_code", "status"},
		"properties": map[string]any{
			"status_code": prop("integer"),
			"status":      prop("string"),
			"code":        prop("integer"),
			"error":       prop("string"),
			"field":       prop("string"),
			"request_id":  prop("string"),
		},
	}
}

func errorResponse(desc string, status int, code perr.ErrorCode, msg, field string) map[string]any {
	example := map[string]any{
		"status_code": status,
		"status":      desc,
		"code":        int(code),
		"error":       msg,
		"request_id":  "579f33bf50b1/abc-000001",
	}
	if field != "" {
		example["field"] = field
	}
	return map[string]any{
		"description": desc,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema":  map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
				"example": example,
			},
		},
	}
}

func serveDocJSON(w http.ResponseWriter, r *http.Request) {
	b, err := renderEmbedded()
	if err != nil {
		logger.C(r.Context()).Error().Err(err).Msg("render openapi document")
		http.Error(w, "openapi document unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(b)
}
