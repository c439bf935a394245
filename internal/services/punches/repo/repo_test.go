package repo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"punchclock/internal/core/punch"
	perr "punchclock/internal/platform/errors"
	"punchclock/internal/platform/store"
	ptime "punchclock/internal/platform/time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serialRow struct {
	v   int64
	err error
}

func (r serialRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int64)) = r.v
	return nil
}

type exec struct {
	sql  string
	args []any
}

type fakeQ struct {
	serial  serialRow
	execs   []exec
	execErr map[string]error
}

func (f *fakeQ) Exec(_ context.Context, sql string, args ...any) (store.CommandTag, error) {
	f.execs = append(f.execs, exec{sql: sql, args: args})
	for frag, err := range f.execErr {
		if strings.Contains(sql, frag) {
			return nil, err
		}
	}
	return nil, nil
}
func (f *fakeQ) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (f *fakeQ) QueryRow(context.Context, string, ...any) store.Row        { return f.serial }

func event() punch.Event {
	at := time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)
	return punch.Event{
		UserID: 7, At: at, Date: ptime.LocalDate(at, ptime.Org()),
		Source: punch.SourceIngest, Meta: punch.DefaultMetadata(),
	}
}

func TestInsert_WritesBothTablesWithOneSerial(t *testing.T) {
	q := &fakeQ{serial: serialRow{v: 41}}
	serial, err := PG{}.Bind(q).Insert(context.Background(), event())
	require.NoError(t, err)
	assert.Equal(t, int64(41), serial)

	require.Len(t, q.execs, 2)
	assert.Contains(t, q.execs[0].sql, "insert into auditdata")
	assert.Contains(t, q.execs[1].sql, "insert into checkinout")
	assert.Equal(t, int64(41), q.execs[0].args[0])
	assert.Equal(t, int64(41), q.execs[1].args[0])
	assert.Equal(t, "2024-03-01", q.execs[0].args[2])
}

func TestInsert_SerialFailure(t *testing.T) {
	q := &fakeQ{serial: serialRow{err: errors.New("conn reset")}}
	_, err := PG{}.Bind(q).Insert(context.Background(), event())
	require.Error(t, err)
	assert.Equal(t, perr.ErrorCodeDB, perr.CodeOf(err))
	assert.Empty(t, q.execs)
}

func TestInsert_UniqueViolationStaysDetectable(t *testing.T) {
	q := &fakeQ{
		serial:  serialRow{v: 5},
		execErr: map[string]error{"checkinout": &pgconn.PgError{Code: "23505", ConstraintName: "checkinout_pkey"}},
	}
	_, err := PG{}.Bind(q).Insert(context.Background(), event())
	require.Error(t, err)
	assert.True(t, perr.IsDuplicateKey(err))
	assert.True(t, store.Retry(err))
}
