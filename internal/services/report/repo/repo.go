// Package repo provides postgres access to the attendance store
package repo

import (
	"context"
	"time"

	"punchclock/internal/core/punch"
	"punchclock/internal/modkit/repokit"
	perr "punchclock/internal/platform/errors"
	"punchclock/internal/platform/store"
	ptime "punchclock/internal/platform/time"
)

// Repo defines the repository contract for reports
type Repo interface {
	Punches(ctx context.Context, rng ptime.Range) ([]RowPunch, error)
	Roster(ctx context.Context, asOf ptime.Date) ([]punch.Employee, error)
	Directory(ctx context.Context, ids []int64) ([]punch.Employee, error)
}

// RowPunch is one auditdata row joined to its user and group
// Username and Group are nil when the user row is missing
type RowPunch struct {
	ID         int64
	UserID     int64
	Username   *string
	Group      *string
	AttendDate time.Time
	CheckTime  time.Time
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

func (r *queries) Punches(ctx context.Context, rng ptime.Range) ([]RowPunch, error) {
	const sql = `
select a.id, a.userid, u.username, g.g_name, a.attend_date, a.checktime
from auditdata a
left join users u on u.userid = a.userid
left join user_groups g on g.id = u.user_group
where a.attend_date >= $1::date and a.attend_date <= $2::date
order by g.g_name, u.username, a.attend_date, a.checktime, a.id
`
	rows, err := store.Many(ctx, r.q, scanPunch, sql, rng.Start.String(), rng.End.String())
	if err != nil {
		return nil, perr.FromPostgres(err, "report: query punches")
	}
	return rows, nil
}

func scanPunch(row store.Row) (RowPunch, error) {
	var rp RowPunch
	err := row.Scan(&rp.ID, &rp.UserID, &rp.Username, &rp.Group, &rp.AttendDate, &rp.CheckTime)
	return rp, err
}

// Roster lists employees active on asOf: no expiry or expiring on or after it
func (r *queries) Roster(ctx context.Context, asOf ptime.Date) ([]punch.Employee, error) {
	const sql = `
select u.userid, u.username, coalesce(g.g_name, '')
from users u
left join user_groups g on g.id = u.user_group
where u.expires_on is null or u.expires_on >= $1::date
order by u.userid
`
	out, err := store.Many(ctx, r.q, scanEmployee, sql, asOf.String())
	if err != nil {
		return nil, perr.FromPostgres(err, "report: query roster")
	}
	return out, nil
}

// Directory resolves ids to employees, missing ids are simply absent
func (r *queries) Directory(ctx context.Context, ids []int64) ([]punch.Employee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const sql = `
select u.userid, u.username, coalesce(g.g_name, '')
from users u
left join user_groups g on g.id = u.user_group
where u.userid = any($1::bigint[])
`
	out, err := store.Many(ctx, r.q, scanEmployee, sql, ids)
	if err != nil {
		return nil, perr.FromPostgres(err, "report: query directory")
	}
	return out, nil
}

func scanEmployee(row store.Row) (punch.Employee, error) {
	var e punch.Employee
	err := row.Scan(&e.UserID, &e.Username, &e.Group)
	return e, err
}
