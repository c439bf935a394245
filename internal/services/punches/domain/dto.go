// Package domain holds DTOs and ports for punch ingestion
package domain

import (
	"bytes"
	"encoding/json"

	perr "punchclock/internal/platform/errors"
)

// Inserted is one stored item
type Inserted struct {
	Index  int   `json:"index"`
	Serial int64 `json:"serial"`
	UserID int64 `json:"userid"`
}

// Rejected is one item that failed validation or storage
type Rejected struct {
	Index int    `json:"index"`
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// Result separates stored items from rejected ones, both in request order
type Result struct {
	BatchID  string     `json:"batchId"`
	Inserted []Inserted `json:"inserted"`
	Rejected []Rejected `json:"rejected"`
}

// Accepted reports whether at least one item was stored
func (r Result) Accepted() bool { return len(r.Inserted) > 0 }

// SplitBatch accepts a single JSON object or an array of them
func SplitBatch(body []byte) ([]json.RawMessage, error) {
	b := bytes.TrimSpace(body)
	if len(b) == 0 {
		return nil, perr.New(perr.ErrorCodeValidation, "request body is empty")
	}
	switch b[0] {
	case '{':
		return []json.RawMessage{json.RawMessage(b)}, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeJSON, "batch is not a JSON array")
		}
		if len(items) == 0 {
			return nil, perr.New(perr.ErrorCodeValidation, "batch is empty")
		}
		return items, nil
	default:
		return nil, perr.New(perr.ErrorCodeJSON, "body must be a JSON object or array")
	}
}
