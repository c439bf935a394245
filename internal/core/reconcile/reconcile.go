// Package reconcile merges punch events from several sources into one
// ordered, deduplicated stream
package reconcile

import (
	"cmp"
	"slices"

	"punchclock/internal/core/punch"
)

// Stats summarizes a reconcile pass
type Stats struct {
	In         int
	Out        int
	Duplicates int
	// Overridden counts duplicates dropped in favor of a more authoritative source
	Overridden int
}

// Compare orders events by group, numeric userid, instant, priority, then source event id
func Compare(a, b punch.Event) int {
	if c := cmp.Compare(a.Group, b.Group); c != 0 {
		return c
	}
	if c := cmp.Compare(a.UserID, b.UserID); c != 0 {
		return c
	}
	if c := a.At.Compare(b.At); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
		return c
	}
	return cmp.Compare(a.SourceEventID, b.SourceEventID)
}

// authority ranks candidates sharing a dedup key; negative means a wins
func authority(a, b punch.Event) int {
	if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
		return c
	}
	if c := cmp.Compare(a.SourceEventID, b.SourceEventID); c != 0 {
		return c
	}
	if c := a.At.Compare(b.At); c != 0 {
		return c
	}
	return cmp.Compare(a.Source, b.Source)
}

// Reconcile deduplicates events by (userid, second) and returns them in
// Compare order. For each key the survivor has the lowest priority value,
// then the smallest source event id. The input slice is not modified
func Reconcile(events []punch.Event) []punch.Event {
	out, _ := ReconcileStats(events)
	return out
}

// ReconcileStats is Reconcile plus counters for logging.
//
// Selection happens per key before the final sort so that sub-second
// differences or a group mismatch between sources cannot let a less
// authoritative event sort ahead of the winner
func ReconcileStats(events []punch.Event) ([]punch.Event, Stats) {
	st := Stats{In: len(events)}

	best := make(map[punch.Key]punch.Event, len(events))
	for _, ev := range events {
		k := ev.Key()
		cur, ok := best[k]
		if !ok {
			best[k] = ev
			continue
		}
		st.Duplicates++
		if cur.Priority != ev.Priority {
			st.Overridden++
		}
		if authority(ev, cur) < 0 {
			best[k] = ev
		}
	}

	out := make([]punch.Event, 0, len(best))
	for _, ev := range best {
		out = append(out, ev)
	}
	slices.SortFunc(out, Compare)
	st.Out = len(out)
	return out, st
}
