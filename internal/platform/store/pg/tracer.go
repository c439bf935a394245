package pg

import (
	"context"
	"strings"
	"time"

	"punchclock/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent is one finished statement
type QueryEvent struct {
	SQL     string
	Args    []any
	Elapsed time.Duration
	Err     error
}

// QueryTracer receives every statement the store runs
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs statements at info and anything slower than slow at warn.
// It logs regardless of the root level since SERVICE_PGSQL_LOG_SQL opts in
func Tracer(root logger.Logger, slow time.Duration) QueryTracer {
	return &zlTracer{
		log:  root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger(),
		slow: slow,
	}
}

type zlTracer struct {
	log  logger.Logger
	slow time.Duration
}

func (z *zlTracer) OnQuery(_ context.Context, ev QueryEvent) {
	slow := z.slow > 0 && ev.Elapsed >= z.slow
	evt := z.log.Info()
	if slow || ev.Err != nil {
		evt = z.log.Warn()
	}
	evt.Dur("elapsed", ev.Elapsed).
		Bool("slow", slow).
		Str("sql", compact(ev.SQL)).
		Int("args", len(ev.Args)).
		Err(ev.Err).
		Msg("pg query")
}

// compact folds runs of whitespace so multi-line statements log on one line
func compact(s string) string { return strings.Join(strings.Fields(s), " ") }
