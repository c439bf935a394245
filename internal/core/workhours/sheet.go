package workhours

import (
	"punchclock/internal/core/report"
	ptime "punchclock/internal/platform/time"

	"github.com/shopspring/decimal"
)

// Sheet is the computed hours view of a report tree
type Sheet struct {
	Start  string       `json:"startDate"`
	End    string       `json:"endDate"`
	Groups []GroupHours `json:"groups"`
}

// GroupHours holds the employees of one group, sorted by username
type GroupHours struct {
	Name      string          `json:"name"`
	Employees []EmployeeHours `json:"employees"`
}

// EmployeeHours is one employee across the range
type EmployeeHours struct {
	UserID         int64           `json:"userid"`
	Username       string          `json:"username"`
	Days           []Day           `json:"days"`
	Total          decimal.Decimal `json:"total"`
	IncompleteDays int             `json:"incompleteDays"`
}

// Sheet computes every employee-day in tree. Totals only sum OK days
func (e *Engine) Sheet(tree report.Tree, rng ptime.Range) Sheet {
	s := Sheet{Start: rng.Start.String(), End: rng.End.String(), Groups: []GroupHours{}}
	for _, g := range tree.Groups() {
		gh := GroupHours{Name: g, Employees: []EmployeeHours{}}
		for _, u := range tree.Employees(g) {
			node := tree[g][u]
			emp := Employee{UserID: node.UserID, Username: u, Group: g}
			eh := EmployeeHours{UserID: node.UserID, Username: u, Total: decimal.Zero}
			for _, d := range node.SortedDates() {
				date, err := ptime.ParseDate(d)
				if err != nil {
					continue
				}
				day := e.Day(emp, date, node.Dates[d])
				if v, ok := day.Hours.Value(); ok {
					eh.Total = eh.Total.Add(v)
				} else {
					eh.IncompleteDays++
				}
				eh.Days = append(eh.Days, day)
			}
			gh.Employees = append(gh.Employees, eh)
		}
		s.Groups = append(s.Groups, gh)
	}
	return s
}

// Each calls fn for every employee-day in sheet order
func (s Sheet) Each(fn func(group string, emp EmployeeHours, day Day)) {
	for _, g := range s.Groups {
		for _, emp := range g.Employees {
			for _, d := range emp.Days {
				fn(g.Name, emp, d)
			}
		}
	}
}
