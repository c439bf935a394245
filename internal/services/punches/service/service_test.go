package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"punchclock/internal/core/punch"
	"punchclock/internal/modkit/repokit"
	perr "punchclock/internal/platform/errors"
	"punchclock/internal/platform/store"
	"punchclock/internal/services/punches/repo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopTx struct{ txs int }

func (*nopTx) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (*nopTx) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (*nopTx) QueryRow(context.Context, string, ...any) store.Row             { return nil }
func (t *nopTx) Tx(_ context.Context, fn func(q store.RowQuerier) error) error {
	t.txs++
	return fn(t)
}

// fakeRepo hands out serials and can fail the first n inserts
type fakeRepo struct {
	next   int64
	failN  int
	failBy error
	events []punch.Event
}

func (f *fakeRepo) Insert(_ context.Context, ev punch.Event) (int64, error) {
	if f.failN > 0 {
		f.failN--
		return 0, f.failBy
	}
	f.next++
	f.events = append(f.events, ev)
	return f.next, nil
}

func newSvc(r *fakeRepo, cfg Config) (*Svc, *nopTx) {
	tx := &nopTx{}
	s := New(tx, repokit.BindFunc[repo.Repo](func(repokit.Queryer) repo.Repo { return r }), cfg)
	s.newID = func() uuid.UUID { return uuid.MustParse("00000000-0000-0000-0000-000000000001") }
	return s, tx
}

func items(ss ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(ss))
	for i, s := range ss {
		out[i] = json.RawMessage(s)
	}
	return out
}

func TestIngest_MixedBatch(t *testing.T) {
	r := &fakeRepo{next: 100}
	s, _ := newSvc(r, Config{})

	res, err := s.Ingest(context.Background(), "clock-1", items(
		`{"userid":7,"punchedAt":"2024-03-01T09:00:00"}`,
		`{"punchedAt":"2024-03-01T09:00:00"}`,
		`{"userid":8,"punchedAt":"2024-03-01T09:05:00","badge":"x"}`,
		`not json`,
		`{"user_id":"9","timestamp":1709301600,"source":"kiosk"}`,
	))
	require.NoError(t, err)
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", res.BatchID)
	assert.True(t, res.Accepted())

	require.Len(t, res.Inserted, 2)
	assert.Equal(t, 0, res.Inserted[0].Index)
	assert.Equal(t, int64(101), res.Inserted[0].Serial)
	assert.Equal(t, int64(7), res.Inserted[0].UserID)
	assert.Equal(t, 4, res.Inserted[1].Index)
	assert.Equal(t, int64(102), res.Inserted[1].Serial)

	require.Len(t, res.Rejected, 3)
	assert.Equal(t, 1, res.Rejected[0].Index)
	assert.Equal(t, "userid", res.Rejected[0].Field)
	assert.Equal(t, 2, res.Rejected[1].Index)
	assert.Equal(t, "badge", res.Rejected[1].Field)
	assert.Equal(t, 3, res.Rejected[2].Index)

	require.Len(t, r.events, 2)
	assert.Equal(t, punch.SourceIngest, r.events[0].Source)
	assert.Equal(t, "kiosk", r.events[1].Source)
}

func TestIngest_AllRejectedIsNotAnError(t *testing.T) {
	s, _ := newSvc(&fakeRepo{}, Config{})
	res, err := s.Ingest(context.Background(), "", items(`{}`, `[]`))
	require.NoError(t, err)
	assert.False(t, res.Accepted())
	assert.Len(t, res.Rejected, 2)
}

func TestIngest_BatchLimit(t *testing.T) {
	s, _ := newSvc(&fakeRepo{}, Config{MaxBatch: 1})
	_, err := s.Ingest(context.Background(), "", items(`{}`, `{}`))
	require.Error(t, err)
	assert.Equal(t, perr.ErrorCodeValidation, perr.CodeOf(err))
}

func TestIngest_RetriesSerialConflict(t *testing.T) {
	r := &fakeRepo{failN: 2, failBy: perr.FromPostgres(&pgconn.PgError{Code: "23505"}, "punches: insert auditdata")}
	s, tx := newSvc(r, Config{Retry: store.RetryPolicy{Attempts: 3}})

	res, err := s.Ingest(context.Background(), "", items(`{"userid":7,"punchedAt":"2024-03-01T09:00:00"}`))
	require.NoError(t, err)
	require.Len(t, res.Inserted, 1)
	assert.Equal(t, 3, tx.txs)
}

func TestIngest_ConflictExhaustsRetries(t *testing.T) {
	r := &fakeRepo{failN: 5, failBy: perr.FromPostgres(&pgconn.PgError{Code: "23505"}, "punches: insert auditdata")}
	s, tx := newSvc(r, Config{Retry: store.RetryPolicy{Attempts: 2}})

	res, err := s.Ingest(context.Background(), "", items(`{"userid":7,"punchedAt":"2024-03-01T09:00:00"}`))
	require.NoError(t, err, "a conflict is a 409 style item failure, not a store outage")
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, 2, tx.txs)
}

func TestIngest_StoreDownSurfaces(t *testing.T) {
	r := &fakeRepo{failN: 10, failBy: perr.FromPostgres(errors.New("dial tcp: refused"), "punches: allocate serial")}
	s, _ := newSvc(r, Config{})

	res, err := s.Ingest(context.Background(), "", items(
		`{"userid":7,"punchedAt":"2024-03-01T09:00:00"}`,
		`{"userid":8,"punchedAt":"2024-03-01T09:00:00"}`,
	))
	require.Error(t, err)
	assert.Equal(t, perr.ErrorCodeDB, perr.CodeOf(err))
	assert.Len(t, res.Rejected, 2)
}

func TestIngest_CanceledContextRejectsRest(t *testing.T) {
	r := &fakeRepo{}
	s, _ := newSvc(r, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := s.Ingest(ctx, "", items(`{"userid":7,"punchedAt":"2024-03-01T09:00:00"}`))
	require.NoError(t, err)
	assert.Len(t, res.Rejected, 1)
	assert.Empty(t, r.events)
}

func TestNew_PanicsOnNilDeps(t *testing.T) {
	assert.Panics(t, func() { New(nil, repo.NewPG(), Config{}) })
	assert.Panics(t, func() { New(&nopTx{}, nil, Config{}) })
}
