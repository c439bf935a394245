// Package remote fetches punches from the external punch feed
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"punchclock/internal/core/punch"
	perr "punchclock/internal/platform/errors"
	"punchclock/internal/platform/logger"
	ptime "punchclock/internal/platform/time"

	"github.com/google/uuid"
)

const (
	defaultTimeout  = 8 * time.Second
	defaultUA       = "punchclock-report"
	maxBodyBytes    = 32 << 20
	errBodyPreview  = 512
	defaultTimezone = ptime.OrgZone
)

// idSpace namespaces synthesized source event ids
var idSpace = uuid.MustParse("6f1b7c52-8d2e-4b59-9a51-3c0f6a7e2d14")

// Options configures the Client
type Options struct {
	URL       string
	Token     string
	Timezone  string
	UserAgent string
	Timeout   time.Duration
}

// Client calls the external punch feed once per report
type Client struct {
	http *http.Client
	opts Options
	norm *punch.Normalizer
	log  logger.Logger
	now  func() time.Time
}

// StatusError wraps a non-2xx response from the feed
type StatusError struct {
	Status int
	Body   string
}

// Error interface
func (e *StatusError) Error() string {
	return fmt.Sprintf("remote: unexpected status %d: %s", e.Status, e.Body)
}

// HTTPStatus interface
func (e *StatusError) HTTPStatus() int { return e.Status }

// Result is what one fetch produced
type Result struct {
	Events  []punch.Event
	Dropped int
}

// NewClient creates a Client, URL is required
func NewClient(o Options) (*Client, error) {
	if strings.TrimSpace(o.URL) == "" {
		return nil, perr.New(perr.ErrorCodeInvalidArgument, "remote: url is required")
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.Timezone == "" {
		o.Timezone = defaultTimezone
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	loc, err := ptime.Load(o.Timezone)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "remote: timezone %q", o.Timezone)
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		norm: &punch.Normalizer{Loc: loc, Strict: false},
		log:  *logger.Named("remote"),
		now:  time.Now,
	}, nil
}

// Timeout returns the configured request budget
func (c *Client) Timeout() time.Duration { return c.opts.Timeout }

type request struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Timezone  string `json:"timezone"`
}

// Fetch posts the range to the feed and returns normalized events
// every failure is ErrorCodeUnavailable so callers can degrade
func (c *Client) Fetch(ctx context.Context, rng ptime.Range) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	body, err := json.Marshal(request{
		StartDate: rng.Start.String(),
		EndDate:   rng.End.String(),
		Timezone:  c.opts.Timezone,
	})
	if err != nil {
		return Result{}, perr.Wrap(err, perr.ErrorCodeUnknown, "remote: encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.URL, bytes.NewReader(body))
	if err != nil {
		return Result{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "remote: new request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.opts.UserAgent)
	if c.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.Token)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "remote: request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Msg("remote punches response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyPreview))
		return Result{}, perr.Wrap(&StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))},
			perr.ErrorCodeUnavailable, "remote: non-2xx response")
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Result{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "remote: read body")
	}
	items, err := decodeItems(raw)
	if err != nil {
		return Result{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "remote: malformed payload")
	}
	return c.normalize(items), nil
}

// decodeItems accepts a bare list or {"punches": [...]}
func decodeItems(raw []byte) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty body")
	}
	var items []json.RawMessage
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
	case '{':
		var env struct {
			Punches *[]json.RawMessage `json:"punches"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, err
		}
		if env.Punches == nil {
			return nil, fmt.Errorf("object payload without punches")
		}
		items = *env.Punches
	default:
		return nil, fmt.Errorf("payload is neither a list nor an object")
	}
	return items, nil
}

func (c *Client) normalize(items []json.RawMessage) Result {
	out := Result{Events: make([]punch.Event, 0, len(items))}
	for i, it := range items {
		m, err := punch.Decode(it)
		if err != nil {
			out.Dropped++
			continue
		}
		ev, err := c.norm.Normalize(m)
		if err != nil {
			out.Dropped++
			if fe, ok := perr.As(err); ok {
				c.log.Debug().Int("index", i).Str("field", fe.Field()).Msg("remote punch dropped")
			}
			continue
		}
		ev.Source = punch.SourceExternal
		ev.Priority = punch.PriorityExternal
		if ev.SourceEventID == "" {
			ev.SourceEventID = SyntheticID(ev)
		}
		out.Events = append(out.Events, ev)
	}
	if out.Dropped > 0 {
		c.log.Info().Int("dropped", out.Dropped).Int("kept", len(out.Events)).Msg("remote punches dropped")
	}
	return out
}

// SyntheticID derives a stable id for a feed punch that carries none
func SyntheticID(ev punch.Event) string {
	k := ev.Key()
	return uuid.NewSHA1(idSpace, fmt.Appendf(nil, "%d:%d", k.UserID, k.Second)).String()
}
