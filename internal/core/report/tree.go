// Package report folds reconciled punches into the group / employee / date tree
package report

import (
	"sort"
	"strconv"
	"time"

	"punchclock/internal/core/punch"
	ptime "punchclock/internal/platform/time"
)

// Tree maps group name -> username -> employee days
type Tree map[string]map[string]*EmployeeDays

// EmployeeDays holds one employee's punches keyed by YYYY-MM-DD. JSON object
// keys are emitted sorted, which for ISO dates is chronological
type EmployeeDays struct {
	UserID int64                  `json:"userid"`
	Dates  map[string][]time.Time `json:"dates"`
}

// SortedDates returns the date keys in chronological order
func (e *EmployeeDays) SortedDates() []string {
	out := make([]string, 0, len(e.Dates))
	for d := range e.Dates {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Groups returns group names sorted
func (t Tree) Groups() []string {
	out := make([]string, 0, len(t))
	for g := range t {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// Employees returns the usernames of group sorted
func (t Tree) Employees(group string) []string {
	out := make([]string, 0, len(t[group]))
	for u := range t[group] {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of employees in the tree
func (t Tree) Len() int {
	n := 0
	for _, emps := range t {
		n += len(emps)
	}
	return n
}

// Stats summarizes a grouping pass
type Stats struct {
	Events      int
	OutOfRange  int
	Backfilled  int
	Renamed     int
	Employees   int
	DatesPerEmp int
}

// Group builds the report tree for rng. Events must already be reconciled.
// Every employee in the result has exactly one entry per day of rng; active
// roster employees without punches are added with empty days
func Group(events []punch.Event, rng ptime.Range, roster []punch.Employee) (Tree, Stats) {
	days := rng.Days()
	st := Stats{Events: len(events), DatesPerEmp: len(days)}

	b := builder{tree: Tree{}, owner: map[string]int64{}, byID: map[int64]*EmployeeDays{}}

	for _, ev := range events {
		if !rng.Contains(ev.Date) {
			st.OutOfRange++
			continue
		}
		emp := b.employee(ev.Group, ev.Username, ev.UserID, &st)
		d := ev.Date.String()
		emp.Dates[d] = append(emp.Dates[d], ev.At)
	}

	for _, e := range roster {
		if _, ok := b.byID[e.UserID]; ok {
			continue
		}
		b.employee(e.Group, e.Username, e.UserID, &st)
		st.Backfilled++
	}

	for _, emps := range b.tree {
		for _, emp := range emps {
			for _, d := range days {
				k := d.String()
				if _, ok := emp.Dates[k]; !ok {
					emp.Dates[k] = []time.Time{}
				}
			}
			for _, ts := range emp.Dates {
				sort.SliceStable(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
			}
		}
	}
	st.Employees = b.tree.Len()
	return b.tree, st
}

type builder struct {
	tree  Tree
	owner map[string]int64 // group \x00 username -> userid
	byID  map[int64]*EmployeeDays
}

// employee returns the node for userid, creating it under group/username.
// A second userid with the same display name in a group gets a "(#id)" suffix
func (b *builder) employee(group, username string, id int64, st *Stats) *EmployeeDays {
	if e, ok := b.byID[id]; ok {
		return e
	}
	g := punch.DisplayName(group)
	if g == "" {
		g = punch.UnmappedGroup
	}
	u := punch.DisplayName(username)
	if u == "" {
		u = punch.PlaceholderName(id)
	}
	if prev, ok := b.owner[g+"\x00"+u]; ok && prev != id {
		u = u + " (#" + strconv.FormatInt(id, 10) + ")"
		st.Renamed++
	}
	b.owner[g+"\x00"+u] = id

	if b.tree[g] == nil {
		b.tree[g] = map[string]*EmployeeDays{}
	}
	e := &EmployeeDays{UserID: id, Dates: map[string][]time.Time{}}
	b.tree[g][u] = e
	b.byID[id] = e
	return e
}
