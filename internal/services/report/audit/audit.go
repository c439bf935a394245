// Package audit appends computed attendance days to clickhouse
package audit

import (
	"context"
	"time"

	"punchclock/internal/core/workhours"
	"punchclock/internal/platform/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Table is the clickhouse table written by the sink, see schema.sql
const Table = "attendance_day_audit"

// Sink records a computed sheet
type Sink interface {
	Record(ctx context.Context, run uuid.UUID, sheet workhours.Sheet) error
}

// Nop drops everything
type Nop struct{}

// Record implements Sink
func (Nop) Record(context.Context, uuid.UUID, workhours.Sheet) error { return nil }

// CH writes one row per employee day
type CH struct {
	db  store.Clickhouse
	now func() time.Time
}

// NewCH builds a clickhouse sink, nil db yields Nop
func NewCH(db store.Clickhouse) Sink {
	if db == nil {
		return Nop{}
	}
	return &CH{db: db, now: time.Now}
}

// Record implements Sink
func (c *CH) Record(ctx context.Context, run uuid.UUID, sheet workhours.Sheet) error {
	at := c.now().UTC()
	var rows [][]any
	sheet.Each(func(group string, emp workhours.EmployeeHours, day workhours.Day) {
		rows = append(rows, Row(run, at, group, emp, day))
	})
	if len(rows) == 0 {
		return nil
	}
	return c.db.Insert(ctx, Table, rows)
}

// Row renders one employee day in column order
func Row(run uuid.UUID, at time.Time, group string, emp workhours.EmployeeHours, day workhours.Day) []any {
	hours, ok := day.Hours.Value()
	if !ok {
		hours = decimal.Zero
	}
	var flags []string
	for _, p := range day.Punches {
		flags = append(flags, p.Flags.Strings()...)
	}
	if flags == nil {
		flags = []string{}
	}
	return []any{
		run.String(),
		at,
		day.Date,
		uint64(emp.UserID),
		emp.Username,
		group,
		day.Hours.Kind().String(),
		hours,
		uint16(len(day.Punches)),
		flags,
		day.OddPunches,
	}
}
