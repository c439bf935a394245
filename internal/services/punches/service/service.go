// Package service validates and stores ingested punches
package service

import (
	"context"
	"encoding/json"
	"time"

	"punchclock/internal/core/punch"
	"punchclock/internal/modkit/repokit"
	perr "punchclock/internal/platform/errors"
	"punchclock/internal/platform/logger"
	"punchclock/internal/platform/store"
	"punchclock/internal/services/punches/domain"
	"punchclock/internal/services/punches/repo"

	"github.com/google/uuid"
)

// Service is the ingestion service
type Service interface {
	domain.ServicePort
	MaxBatch() int
}

// Config bounds one ingestion request
type Config struct {
	MaxBatch int
	Retry    store.RetryPolicy
	Loc      *time.Location
}

// DefaultConfig returns the ingestion defaults
func DefaultConfig() Config {
	return Config{
		MaxBatch: 500,
		Retry:    store.RetryPolicy{Attempts: 3, Backoff: 20 * time.Millisecond},
	}
}

// Svc implements the Service interface
type Svc struct {
	db     repokit.TxRunner
	binder repokit.Binder[repo.Repo]
	cfg    Config
	norm   *punch.Normalizer
	newID  func() uuid.UUID
}

// New creates a new ingestion service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], cfg Config) *Svc {
	if db == nil {
		panic("punches.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("punches.Service requires a non nil Repo binder")
	}
	def := DefaultConfig()
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = def.MaxBatch
	}
	if cfg.Retry.Attempts <= 0 {
		cfg.Retry = def.Retry
	}
	norm := punch.NewNormalizer()
	if cfg.Loc != nil {
		norm.Loc = cfg.Loc
	}
	return &Svc{db: db, binder: binder, cfg: cfg, norm: norm, newID: uuid.New}
}

// MaxBatch returns the largest accepted batch
func (s *Svc) MaxBatch() int { return s.cfg.MaxBatch }

// Ingest validates each item on its own and stores the valid ones, one
// transaction per item. It returns an error only for an oversized batch or
// when nothing was stored and the store itself failed
func (s *Svc) Ingest(ctx context.Context, clientID string, items []json.RawMessage) (domain.Result, error) {
	if len(items) > s.cfg.MaxBatch {
		return domain.Result{}, perr.WithField(
			perr.Newf(perr.ErrorCodeValidation, "batch of %d exceeds the limit of %d", len(items), s.cfg.MaxBatch), "batch")
	}

	res := domain.Result{
		BatchID:  s.newID().String(),
		Inserted: []domain.Inserted{},
		Rejected: []domain.Rejected{},
	}
	log := logger.C(ctx).With().Str("batch_id", res.BatchID).Str("client", clientID).Logger()

	var storeErr error
	for i, raw := range items {
		if err := ctx.Err(); err != nil {
			res.Rejected = append(res.Rejected, reject(i, perr.Wrap(err, perr.ErrorCodeUnavailable, "request canceled")))
			continue
		}
		ev, err := s.normalize(raw)
		if err != nil {
			res.Rejected = append(res.Rejected, reject(i, err))
			continue
		}
		serial, err := s.store(ctx, ev)
		if err != nil {
			if perr.HTTPStatus(err) >= 500 {
				storeErr = err
				log.Warn().Err(err).Int("index", i).Int64("userid", ev.UserID).Msg("punch store failed")
			}
			res.Rejected = append(res.Rejected, reject(i, err))
			continue
		}
		res.Inserted = append(res.Inserted, domain.Inserted{Index: i, Serial: serial, UserID: ev.UserID})
	}

	log.Info().
		Int("items", len(items)).
		Int("inserted", len(res.Inserted)).
		Int("rejected", len(res.Rejected)).
		Msg("punch batch ingested")

	if !res.Accepted() && storeErr != nil {
		return res, storeErr
	}
	return res, nil
}

func (s *Svc) normalize(raw json.RawMessage) (punch.Event, error) {
	m, err := punch.Decode(raw)
	if err != nil {
		return punch.Event{}, err
	}
	ev, err := s.norm.Normalize(m)
	if err != nil {
		return punch.Event{}, err
	}
	if ev.Source == "" {
		ev.Source = punch.SourceIngest
	}
	return ev, nil
}

func (s *Svc) store(ctx context.Context, ev punch.Event) (int64, error) {
	var serial int64
	err := store.RunTx(ctx, s.db, s.cfg.Retry, func(ctx context.Context, q store.RowQuerier) error {
		var err error
		serial, err = repokit.MustBind(s.binder, q).Insert(ctx, ev)
		return err
	})
	return serial, err
}

func reject(i int, err error) domain.Rejected {
	w := perr.WireFrom(err)
	return domain.Rejected{Index: i, Error: w.Message, Field: w.Field}
}
