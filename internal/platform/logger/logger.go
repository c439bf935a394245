// Package logger is the process-wide zerolog root plus context-aware children
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"punchclock/internal/platform/config/raw"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is the logging type passed around the codebase
type Logger = zerolog.Logger

// Options shape the root logger
type Options struct {
	Level      string // zerolog level name; unknown names mean debug
	Format     string // "console" or "json"
	Service    string
	WithCaller bool
	Writer     io.Writer // stdout when nil
}

// FromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_SERVICE and LOG_CALLER without logging
func FromEnv() Options {
	rc := raw.New().Prefix("LOG_")
	return Options{
		Level:      rc.Get("LEVEL", "debug"),
		Format:     strings.ToLower(rc.Get("FORMAT", "console")),
		Service:    rc.Get("SERVICE", ""),
		WithCaller: rc.GetBool("CALLER", false),
	}
}

var (
	once sync.Once
	root Logger
)

// Init sets the root logger. Only the first call (or first Get) counts
func Init(opt Options) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano
		root = build(opt)
	})
}

func build(opt Options) Logger {
	w := opt.Writer
	if w == nil {
		w = os.Stdout
	}
	if opt.Format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opt.Level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.DebugLevel
	}

	c := zerolog.New(w).Level(lvl).With().Timestamp()
	if opt.Service != "" {
		c = c.Str("service", opt.Service)
	}
	if opt.WithCaller {
		c = c.Caller()
	}
	return c.Logger()
}

// Get is the root logger, built from the environment on first use
func Get() *Logger {
	Init(FromEnv())
	return &root
}

// Named is a child of the root tagged with component
func Named(component string) *Logger {
	l := Get().With().Str("component", component).Logger()
	return &l
}

type runKey struct{}

// WithRun tags ctx with a report run id for C to pick up
func WithRun(ctx context.Context, runID string) context.Context {
	if runID == "" {
		return ctx
	}
	return context.WithValue(ctx, runKey{}, runID)
}

// C is a child of the root carrying the request id and run id found on ctx
func C(ctx context.Context) *Logger {
	c := Get().With()
	if id := chimw.GetReqID(ctx); id != "" {
		c = c.Str("request_id", id)
	}
	if id, _ := ctx.Value(runKey{}).(string); id != "" {
		c = c.Str("run_id", id)
	}
	l := c.Logger()
	return &l
}
