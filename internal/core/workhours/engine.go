// Package workhours turns one employee-day of punches into worked hours and
// per-punch anomaly flags
package workhours

import (
	"strconv"
	"time"

	"punchclock/internal/core/punch"
	ptime "punchclock/internal/platform/time"

	"github.com/shopspring/decimal"
)

var (
	sixty   = decimal.NewFromInt(60)
	fifteen = decimal.NewFromInt(15)
)

// Employee identifies whose day is being computed
type Employee struct {
	UserID   int64
	Username string
	Group    string
}

// PunchView is one punch as rendered in the hours view
type PunchView struct {
	At      time.Time `json:"at"`
	Local   string    `json:"local"`
	Rounded string    `json:"rounded"`
	Flags   Flag      `json:"flags"`
}

// Day is the computed view of one employee-day
type Day struct {
	Date       string      `json:"date"`
	Weekday    string      `json:"weekday"`
	Punches    []PunchView `json:"punches"`
	Hours      Hours       `json:"hours"`
	OddPunches bool        `json:"oddPunches"`
}

// Engine applies Rules. It is safe for concurrent use
type Engine struct {
	rules  Rules
	exempt map[string]struct{}
}

// New builds an engine. Start from DefaultRules and override; only a nil
// Location is defaulted
func New(r Rules) *Engine {
	if r.Location == nil {
		r.Location = ptime.Org()
	}
	return &Engine{rules: r, exempt: r.exemptions()}
}

// Rules returns the effective rules
func (e *Engine) Rules() Rules { return e.rules }

// Day computes hours and flags for punches on date. punches must be the
// reconciled, ascending list for that day
func (e *Engine) Day(emp Employee, date ptime.Date, punches []time.Time) Day {
	loc := e.rules.Location
	rounded := e.boundaries(punches)
	flags := e.Flags(emp, punches)

	views := make([]PunchView, len(punches))
	for i, p := range punches {
		views[i] = PunchView{At: p.UTC(), Local: ptime.Clock(p, loc), Flags: flags[i]}
		if i < len(rounded) {
			views[i].Rounded = ptime.Clock(rounded[i], loc)
		}
	}
	return Day{
		Date:       date.String(),
		Weekday:    date.Weekday().String(),
		Punches:    views,
		Hours:      e.Hours(emp.Group, punches),
		OddPunches: len(punches)%2 == 1,
	}
}

// Hours computes the worked-hours result for one day
func (e *Engine) Hours(group string, punches []time.Time) Hours {
	if len(punches) == 0 {
		return NoPunches()
	}
	spans := e.collapse(e.boundaries(punches))
	if len(spans)%2 == 1 {
		return Incomplete()
	}

	var minutes int64
	for i := 0; i+1 < len(spans); i += 2 {
		if d := spans[i+1].Sub(spans[i]); d > 0 {
			minutes += int64(d / time.Minute)
		}
	}
	hours := quarterHours(minutes)

	if len(punches) == 2 && e.adjusted(group) && hours.GreaterThanOrEqual(e.rules.DeductionMinimum) {
		hours = hours.Sub(e.rules.LunchDeduction)
		if hours.IsNegative() {
			hours = decimal.Zero
		}
	}
	return OK(hours)
}

// HoursWithoutCollapse treats every gap as a real clock-out. Hours with
// collapsing never fall below it and Pairs never exceeds its pair count
func (e *Engine) HoursWithoutCollapse(punches []time.Time) (Hours, int) {
	if len(punches) == 0 {
		return NoPunches(), 0
	}
	b := e.boundaries(punches)
	if len(b)%2 == 1 {
		return Incomplete(), 0
	}
	var minutes int64
	for i := 0; i+1 < len(b); i += 2 {
		if d := b[i+1].Sub(b[i]); d > 0 {
			minutes += int64(d / time.Minute)
		}
	}
	return OK(quarterHours(minutes)), len(b) / 2
}

// Pairs returns the number of (in, out) pairs after collapsing
func (e *Engine) Pairs(punches []time.Time) int {
	return len(e.collapse(e.boundaries(punches))) / 2
}

// boundaries floors the first punch to the morning start and rounds every
// punch to the nearest quarter hour, in local time. The result is non-decreasing
func (e *Engine) boundaries(punches []time.Time) []time.Time {
	loc := e.rules.Location
	out := make([]time.Time, len(punches))
	for i, p := range punches {
		lt := p.In(loc).Truncate(time.Minute)
		if i == 0 && ptime.MinuteOfDay(lt, loc) < e.rules.MorningStart {
			y, m, d := lt.Date()
			lt = time.Date(y, m, d, 0, e.rules.MorningStart, 0, 0, loc)
		}
		out[i] = RoundQuarter(lt)
		// a later punch never counts from before the floored first punch
		if i > 0 && out[i].Before(out[i-1]) {
			out[i] = out[i-1]
		}
	}
	return out
}

// collapse drops an (out, in) pair whose gap is within BreakCollapse so the
// surrounding span counts as continuous work. Only out->in gaps qualify,
// which keeps the in/out alternation of what remains
func (e *Engine) collapse(b []time.Time) []time.Time {
	if e.rules.BreakCollapse <= 0 {
		return b
	}
	out := make([]time.Time, 0, len(b))
	for i := 0; i < len(b); i++ {
		if len(out)%2 == 1 && i+1 < len(b) && b[i+1].Sub(b[i]) <= e.rules.BreakCollapse {
			i++
			continue
		}
		out = append(out, b[i])
	}
	return out
}

// Flags returns one flag set per punch, evaluated on the raw local times
func (e *Engine) Flags(emp Employee, punches []time.Time) []Flag {
	n := len(punches)
	flags := make([]Flag, n)
	if n == 0 {
		return flags
	}
	loc := e.rules.Location
	mod := func(i int) int { return ptime.MinuteOfDay(punches[i], loc) }

	if idx, ok := lunchIndex(punches, loc); ok && mod(idx) >= e.rules.LateLunchAt {
		flags[idx] |= FlagLateLunch
	}
	if mod(0) > e.rules.MorningStart && !e.isExempt(emp) {
		flags[0] |= FlagLateArrival
	}
	if mod(0) <= e.rules.EarlyOverAt {
		flags[0] |= FlagEarlyOver
	}
	if mod(n-1) >= e.rules.LateOverAt {
		flags[n-1] |= FlagLateOver
	}
	return flags
}

// lunchIndex locates the lunch return punch by position. Counts other than
// 4, 6 and 8 have no lunch punch
func lunchIndex(punches []time.Time, loc *time.Location) (int, bool) {
	switch len(punches) {
	case 4:
		return 2, true
	case 8:
		return 4, true
	case 6:
		if punches[2].In(loc).Hour() == 12 {
			return 2, true
		}
		return 4, true
	}
	return 0, false
}

func (e *Engine) adjusted(group string) bool {
	return e.rules.AdjustedGroup != "" && punch.FoldName(group) == punch.FoldName(e.rules.AdjustedGroup)
}

func (e *Engine) isExempt(emp Employee) bool {
	if len(e.exempt) == 0 {
		return false
	}
	if _, ok := e.exempt[punch.FoldName(emp.Username)]; ok {
		return true
	}
	_, ok := e.exempt[strconv.FormatInt(emp.UserID, 10)]
	return ok
}

// RoundQuarter rounds t (already minute-truncated) to the nearest quarter
// hour: 8 or more minutes past a quarter rounds up
func RoundQuarter(t time.Time) time.Time {
	m := t.Minute() % 15
	if m >= 8 {
		return t.Add(time.Duration(15-m) * time.Minute)
	}
	return t.Add(-time.Duration(m) * time.Minute)
}

// quarterHours converts minutes to hours rounded half up to a quarter hour
func quarterHours(minutes int64) decimal.Decimal {
	q := decimal.NewFromInt(minutes).Div(fifteen).Round(0)
	return q.Mul(fifteen).Div(sixty)
}
