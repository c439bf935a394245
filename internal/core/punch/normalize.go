package punch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	perr "punchclock/internal/platform/errors"
	ptime "punchclock/internal/platform/time"
	"punchclock/internal/platform/validate"
)

// Metadata is optional clock business data. The normalizer only coerces it
type Metadata struct {
	VerifyCode   int    `json:"verifyCode"   validate:"min=0,max=255"`
	CheckType    string `json:"checkType"    validate:"oneof=I O"`
	WorkCode     int    `json:"workCode"     validate:"min=0"`
	EventType    string `json:"eventType"    validate:"max=32,printascii"`
	Flags        int    `json:"flags"        validate:"min=0,max=65535"`
	ControllerID int    `json:"controllerId" validate:"min=0"`
	CardNo       string `json:"cardNo"       validate:"omitempty,max=32,alphanum"`
}

// DefaultMetadata is what a bare {userid, punchedAt} record carries
func DefaultMetadata() Metadata {
	return Metadata{
		VerifyCode:   1,
		CheckType:    "I",
		EventType:    "punch",
		Flags:        1,
		ControllerID: 1,
	}
}

// field aliases seen in clock exports and the remote punch feed
var (
	userIDKeys   = []string{"userid", "user_id", "userId"}
	punchedKeys  = []string{"punchedAt", "punched_at", "timestamp", "checktime", "time"}
	sourceKeys   = []string{"source"}
	sourceIDKeys = []string{"source_event_id", "sourceEventId"}
)

// Normalizer coerces raw records into Events
type Normalizer struct {
	// Loc interprets timestamps that carry no zone
	Loc *time.Location
	// Strict rejects unknown keys. Ingestion is strict, remote feeds are not
	Strict bool
}

// NewNormalizer returns a strict normalizer in the organization zone
func NewNormalizer() *Normalizer { return &Normalizer{Loc: ptime.Org(), Strict: true} }

// Decode parses a JSON object keeping numbers exact
func Decode(b []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "record is not a JSON object")
	}
	return m, nil
}

// Normalize validates raw and returns an Event. Any failure is a validation
// error naming the offending field
func (n *Normalizer) Normalize(raw map[string]any) (Event, error) {
	if raw == nil {
		return Event{}, invalid("record", "record is empty")
	}
	loc := n.Loc
	if loc == nil {
		loc = ptime.Org()
	}

	known := map[string]struct{}{}
	pick := func(keys []string) (string, any, bool) {
		for _, k := range keys {
			known[k] = struct{}{}
		}
		for _, k := range keys {
			if v, ok := raw[k]; ok && v != nil {
				return k, v, true
			}
		}
		return keys[0], nil, false
	}

	var ev Event

	k, v, ok := pick(userIDKeys)
	if !ok {
		return Event{}, invalid("userid", "userid is required")
	}
	id, err := toInt64(v)
	if err != nil || id <= 0 {
		return Event{}, invalid(k, "%s must be a positive integer", k)
	}
	ev.UserID = id

	k, v, ok = pick(punchedKeys)
	if !ok {
		return Event{}, invalid("punchedAt", "punchedAt is required")
	}
	at, err := ParseTimestamp(v, loc)
	if err != nil {
		return Event{}, invalid(k, "%s: %v", k, err)
	}
	ev.At = at.UTC()
	ev.Date = ptime.LocalDate(at, loc)

	if _, v, ok := pick(sourceKeys); ok {
		s, err := toString(v)
		if err != nil {
			return Event{}, invalid("source", "source must be a string")
		}
		ev.Source = s
	}
	if k, v, ok := pick(sourceIDKeys); ok {
		s, err := toString(v)
		if err != nil {
			return Event{}, invalid(k, "%s must be a string", k)
		}
		ev.SourceEventID = s
	}

	meta, err := n.metadata(raw, known)
	if err != nil {
		return Event{}, err
	}
	ev.Meta = meta

	if n.Strict {
		var unknown []string
		for key := range raw {
			if _, ok := known[key]; !ok {
				unknown = append(unknown, key)
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			return Event{}, invalid(unknown[0], "unknown field %q", unknown[0])
		}
	}
	return ev, nil
}

func (n *Normalizer) metadata(raw map[string]any, known map[string]struct{}) (Metadata, error) {
	m := DefaultMetadata()

	ints := []struct {
		key string
		dst *int
	}{
		{"verifyCode", &m.VerifyCode},
		{"workCode", &m.WorkCode},
		{"flags", &m.Flags},
		{"controllerId", &m.ControllerID},
	}
	for _, f := range ints {
		known[f.key] = struct{}{}
		v, ok := raw[f.key]
		if !ok || v == nil {
			continue
		}
		x, err := toInt64(v)
		if err != nil || x > math.MaxInt32 || x < math.MinInt32 {
			return Metadata{}, invalid(f.key, "%s must be an integer", f.key)
		}
		*f.dst = int(x)
	}

	strs := []struct {
		key string
		dst *string
	}{
		{"checkType", &m.CheckType},
		{"eventType", &m.EventType},
		{"cardNo", &m.CardNo},
	}
	for _, f := range strs {
		known[f.key] = struct{}{}
		v, ok := raw[f.key]
		if !ok || v == nil {
			continue
		}
		s, err := toString(v)
		if err != nil {
			return Metadata{}, invalid(f.key, "%s must be a string", f.key)
		}
		*f.dst = s
	}
	m.CheckType = strings.ToUpper(m.CheckType)

	if err := validate.Struct(m); err != nil {
		return Metadata{}, err
	}
	return m, nil
}

// local layouts without a zone, read in the organization zone
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 3:04:05 PM",
	"1/2/2006 3:04:05 PM",
}

// ParseTimestamp accepts RFC3339 strings, zone-less local strings and epoch
// numbers (seconds, or milliseconds when large)
func ParseTimestamp(v any, loc *time.Location) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return time.Time{}, fmt.Errorf("zero time")
		}
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, fmt.Errorf("empty timestamp")
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t, nil
		}
		for _, l := range localLayouts {
			if t, err := time.ParseInLocation(l, s, loc); err == nil {
				return t, nil
			}
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return fromEpoch(n), nil
		}
		return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
	default:
		n, err := toInt64(v)
		if err != nil {
			return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
		}
		return fromEpoch(n), nil
	}
}

func fromEpoch(n int64) time.Time {
	if n > 1e11 || n < -1e11 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
		f, err := x.Float64()
		if err != nil {
			return 0, err
		}
		return integral(f)
	case float64:
		return integral(x)
	case float32:
		return integral(float64(x))
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(x), 10, 64)
	default:
		return 0, fmt.Errorf("not an integer: %T", v)
	}
}

func integral(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, fmt.Errorf("not an integer: %v", f)
	}
	return int64(f), nil
}

func toString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x), nil
	case json.Number:
		return x.String(), nil
	default:
		return "", fmt.Errorf("not a string: %T", v)
	}
}

func invalid(field, format string, a ...any) error {
	return perr.WithField(perr.Newf(perr.ErrorCodeValidation, format, a...), field)
}
