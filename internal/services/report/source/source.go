// Package source adapts punch origins to one fetch capability
package source

import (
	"context"
	"fmt"
	"slices"

	"punchclock/internal/adapters/punchsource/remote"
	"punchclock/internal/core/punch"
	perr "punchclock/internal/platform/errors"
	ptime "punchclock/internal/platform/time"
	"punchclock/internal/services/report/repo"
)

// Kind tags a source with its trust level
type Kind uint8

const (
	// KindPrimary is the attendance store, failures fail the report
	KindPrimary Kind = iota
	// KindExternal is the best effort feed, failures degrade the report
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindPrimary:
		return punch.SourcePrimary
	case KindExternal:
		return punch.SourceExternal
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Source produces punch events for a date range
type Source interface {
	Kind() Kind
	Fetch(ctx context.Context, rng ptime.Range) ([]punch.Event, error)
}

// Required reports whether a failure of s must fail the request
func Required(s Source) bool { return s.Kind() == KindPrimary }

// Directory resolves userids to employees
type Directory interface {
	Directory(ctx context.Context, ids []int64) ([]punch.Employee, error)
}

// Feed is the remote punch client
type Feed interface {
	Fetch(ctx context.Context, rng ptime.Range) (remote.Result, error)
}

// Primary reads the attendance store
type Primary struct {
	Repo repo.Repo
}

// Kind implements Source
func (Primary) Kind() Kind { return KindPrimary }

// Fetch implements Source
func (p Primary) Fetch(ctx context.Context, rng ptime.Range) ([]punch.Event, error) {
	rows, err := p.Repo.Punches(ctx, rng)
	if err != nil {
		return nil, err
	}
	out := make([]punch.Event, 0, len(rows))
	for _, r := range rows {
		ev := punch.Event{
			UserID:        r.UserID,
			Date:          ptime.DateOf(r.AttendDate),
			At:            r.CheckTime.UTC(),
			Source:        punch.SourcePrimary,
			Priority:      punch.PriorityPrimary,
			SourceEventID: RowID(r.ID),
			Meta:          punch.DefaultMetadata(),
		}
		if r.Username == nil {
			ev = ev.Unmapped()
		} else {
			ev.Username = *r.Username
			if r.Group != nil {
				ev.Group = *r.Group
			}
		}
		out = append(out, ev)
	}
	return out, nil
}

// RowID renders a store row id so lexical order matches numeric order
func RowID(id int64) string { return fmt.Sprintf("%020d", id) }

// External reads the remote feed and joins it to the directory
type External struct {
	Feed Feed
	Dir  Directory
}

// Kind implements Source
func (External) Kind() Kind { return KindExternal }

// Fetch implements Source. Users missing from the directory land in the unmapped group
func (e External) Fetch(ctx context.Context, rng ptime.Range) ([]punch.Event, error) {
	if e.Feed == nil {
		return nil, perr.New(perr.ErrorCodeUnavailable, "external source not configured")
	}
	res, err := e.Feed.Fetch(ctx, rng)
	if err != nil {
		return nil, err
	}

	events := make([]punch.Event, 0, len(res.Events))
	var ids []int64
	for _, ev := range res.Events {
		if !rng.Contains(ev.Date) {
			continue
		}
		events = append(events, ev)
		ids = append(ids, ev.UserID)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	known := map[int64]punch.Employee{}
	if e.Dir != nil && len(ids) > 0 {
		emps, err := e.Dir.Directory(ctx, ids)
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "external: directory lookup")
		}
		for _, emp := range emps {
			known[emp.UserID] = emp
		}
	}

	for i, ev := range events {
		if emp, ok := known[ev.UserID]; ok {
			events[i] = ev.WithEmployee(emp)
		} else {
			events[i] = ev.Unmapped()
		}
	}
	return events, nil
}
