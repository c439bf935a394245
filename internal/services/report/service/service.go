// Package service runs the report pipeline: fetch, reconcile, group, compute
package service

import (
	"context"
	"time"

	"punchclock/internal/core/punch"
	"punchclock/internal/core/reconcile"
	"punchclock/internal/core/report"
	"punchclock/internal/core/workhours"
	"punchclock/internal/modkit/repokit"
	perr "punchclock/internal/platform/errors"
	"punchclock/internal/platform/logger"
	"punchclock/internal/services/report/audit"
	"punchclock/internal/services/report/domain"
	"punchclock/internal/services/report/guardrails"
	"punchclock/internal/services/report/repo"
	"punchclock/internal/services/report/source"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Service defines the service contract for reports
type Service interface {
	domain.ServicePort
	domain.Limits
	Build(ctx context.Context, req domain.Request) (Result, error)
}

// Result is one pipeline run
type Result struct {
	RunID     uuid.UUID
	Tree      report.Tree
	Reconcile reconcile.Stats
	Group     report.Stats
	// Degraded is set when an optional source failed
	Degraded []string
}

// Config is everything the pipeline needs besides its stores
type Config struct {
	Rules        workhours.Rules
	Timeouts     guardrails.Timeouts
	MaxRangeDays int
}

// DefaultConfig returns house rules and no extra budgets
func DefaultConfig() Config {
	return Config{Rules: workhours.DefaultRules(), MaxRangeDays: 62}
}

// Svc implements the Service interface
type Svc struct {
	Repo    repo.Repo
	binder  repokit.Binder[repo.Repo]
	db      repokit.TxRunner
	cfg     Config
	engine  *workhours.Engine
	sources []source.Source
	sink    audit.Sink
	newID   func() uuid.UUID
}

// Option configures Svc
type Option func(*Svc)

// WithConfig replaces the pipeline config
func WithConfig(c Config) Option { return func(s *Svc) { s.cfg = c } }

// WithExternal adds the remote feed as a best effort source
func WithExternal(feed source.Feed) Option {
	return func(s *Svc) {
		if feed != nil {
			s.sources = append(s.sources, source.External{Feed: feed, Dir: s.Repo})
		}
	}
}

// WithAudit sets the audit sink
func WithAudit(sink audit.Sink) Option {
	return func(s *Svc) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// New creates a new report service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], opts ...Option) *Svc {
	if db == nil {
		panic("report.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("report.Service requires a non nil Repo binder")
	}
	s := &Svc{
		binder: binder,
		db:     db,
		cfg:    DefaultConfig(),
		sink:   audit.Nop{},
		newID:  uuid.New,
	}
	s.Repo = repokit.MustBind(binder, db)
	s.sources = []source.Source{source.Primary{Repo: s.Repo}}
	for _, o := range opts {
		o(s)
	}
	s.engine = workhours.New(s.cfg.Rules)
	return s
}

// MaxRangeDays implements domain.Limits
func (s *Svc) MaxRangeDays() int { return s.cfg.MaxRangeDays }

// Engine returns the hours engine built from the configured rules
func (s *Svc) Engine() *workhours.Engine { return s.engine }

// Attendance returns the report tree for req
func (s *Svc) Attendance(ctx context.Context, req domain.Request) (report.Tree, error) {
	res, err := s.Build(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.Tree, nil
}

// Hours returns the computed hours sheet for req and records it to the audit sink
func (s *Svc) Hours(ctx context.Context, req domain.Request) (workhours.Sheet, error) {
	res, err := s.Build(ctx, req)
	if err != nil {
		return workhours.Sheet{}, err
	}
	sheet := s.engine.Sheet(res.Tree, req.Range)

	actx, cancel := guardrails.ForAudit(ctx, s.cfg.Timeouts)
	defer cancel()
	if err := s.sink.Record(actx, res.RunID, sheet); err != nil {
		logger.C(ctx).Warn().Err(err).Str("run_id", res.RunID.String()).Msg("audit sink failed")
	}
	return sheet, nil
}

type fetched struct {
	src    source.Source
	events []punch.Event
	err    error
	took   time.Duration
}

// Build fetches every source concurrently, then reconciles and groups.
// Required source failures fail the run; optional ones are logged and skipped
func (s *Svc) Build(ctx context.Context, req domain.Request) (Result, error) {
	res := Result{RunID: s.newID()}
	ctx = logger.WithRun(ctx, res.RunID.String())
	log := logger.C(ctx)

	ctx, cancel := guardrails.ForRequest(ctx, s.cfg.Timeouts)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	results := make([]fetched, 0, len(s.sources))
	for _, src := range s.sources {
		if src.Kind() == source.KindExternal && !req.IncludeExternal {
			continue
		}
		results = append(results, fetched{src: src})
	}
	for i := range results {
		f := &results[i]
		g.Go(func() error {
			fctx, done := s.budget(gctx, f.src)
			defer done()
			start := time.Now()
			f.events, f.err = f.src.Fetch(fctx, req.Range)
			f.took = time.Since(start)
			if f.err != nil && source.Required(f.src) {
				return f.err
			}
			return nil
		})
	}

	var roster []punch.Employee
	g.Go(func() error {
		rctx, done := guardrails.ForPrimary(gctx, s.cfg.Timeouts)
		defer done()
		var err error
		roster, err = s.Repo.Roster(rctx, req.Range.Start)
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("report build failed")
		if _, ok := perr.As(err); ok {
			return Result{}, err
		}
		return Result{}, perr.Wrap(err, perr.ErrorCodeDB, "report: primary store unavailable")
	}

	var all []punch.Event
	for _, f := range results {
		if f.err != nil {
			log.Warn().
				Str("source", f.src.Kind().String()).
				Str("reason", f.err.Error()).
				Dur("elapsed", f.took).
				Msg("optional source failed, continuing without it")
			res.Degraded = append(res.Degraded, f.src.Kind().String())
			continue
		}
		all = append(all, f.events...)
	}

	events, rst := reconcile.ReconcileStats(all)
	tree, gst := report.Group(events, req.Range, roster)
	res.Tree, res.Reconcile, res.Group = tree, rst, gst

	log.Info().
		Str("start", req.Range.Start.String()).
		Str("end", req.Range.End.String()).
		Int("events_in", rst.In).
		Int("events_out", rst.Out).
		Int("duplicates", rst.Duplicates).
		Int("overridden", rst.Overridden).
		Int("employees", gst.Employees).
		Int("backfilled", gst.Backfilled).
		Strs("degraded", res.Degraded).
		Msg("report built")
	return res, nil
}

func (s *Svc) budget(ctx context.Context, src source.Source) (context.Context, context.CancelFunc) {
	if src.Kind() == source.KindExternal {
		return guardrails.ForExternal(ctx, s.cfg.Timeouts)
	}
	return guardrails.ForPrimary(ctx, s.cfg.Timeouts)
}
