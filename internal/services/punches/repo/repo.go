// Package repo writes ingested punches to the attendance store
package repo

import (
	"context"

	"punchclock/internal/core/punch"
	"punchclock/internal/modkit/repokit"
	perr "punchclock/internal/platform/errors"
	"punchclock/internal/platform/store"
)

// Repo defines the repository contract for ingestion. Callers run it inside
// a transaction so the serial and both rows commit together
type Repo interface {
	// Insert allocates a serial and writes ev to auditdata and checkinout
	Insert(ctx context.Context, ev punch.Event) (int64, error)
}

type (
	// PG implements the Repo interface using Postgres
	PG struct{}

	queries struct{ q repokit.Queryer }
)

// NewPG creates a new Postgres repository binder
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind binds a Postgres queryer to the Repo implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func (r *queries) Insert(ctx context.Context, ev punch.Event) (int64, error) {
	serial, err := store.Scalar[int64](ctx, r.q, `select nextval('punch_serial_seq')`)
	if err != nil {
		return 0, perr.FromPostgres(err, "punches: allocate serial")
	}

	m := ev.Meta
	const audit = `
insert into auditdata (
  serial, userid, attend_date, checktime,
  verify_code, check_type, work_code, event_type, flags, controller_id, card_no,
  source, source_event_id
) values ($1, $2, $3::date, $4, $5, $6, $7, $8, $9, $10, nullif($11, ''), $12, nullif($13, ''))
`
	if _, err := r.q.Exec(ctx, audit,
		serial, ev.UserID, ev.Date.String(), ev.At,
		m.VerifyCode, m.CheckType, m.WorkCode, m.EventType, m.Flags, m.ControllerID, m.CardNo,
		ev.Source, ev.SourceEventID,
	); err != nil {
		return 0, perr.FromPostgresWithField(err, "punches: insert auditdata")
	}

	const check = `
insert into checkinout (serial, userid, checktime, checktype, verifycode, sensorid, workcode)
values ($1, $2, $3, $4, $5, $6, $7)
`
	if _, err := r.q.Exec(ctx, check,
		serial, ev.UserID, ev.At, m.CheckType, m.VerifyCode, m.ControllerID, m.WorkCode,
	); err != nil {
		return 0, perr.FromPostgresWithField(err, "punches: insert checkinout")
	}
	return serial, nil
}
