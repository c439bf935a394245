package workhours

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"punchclock/internal/core/punch"
	ptime "punchclock/internal/platform/time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Rules are the organization conventions the engine applies. Times of day are
// minutes after local midnight
type Rules struct {
	Location *time.Location

	// AdjustedGroup gets LunchDeduction on two-punch days of at least DeductionMinimum hours
	AdjustedGroup    string
	LunchDeduction   decimal.Decimal
	DeductionMinimum decimal.Decimal

	// LateExempt lists usernames or decimal userids never flagged late in the morning
	LateExempt []string

	BreakCollapse time.Duration
	MorningStart  int // first punch floor and lateness cutoff
	LateLunchAt   int // lunch return at or after is late
	EarlyOverAt   int // first punch at or before is over
	LateOverAt    int // last punch at or after is over
}

// DefaultRules returns the house rules
func DefaultRules() Rules {
	return Rules{
		Location:         ptime.Org(),
		AdjustedGroup:    "8 - Office",
		LunchDeduction:   decimal.RequireFromString("0.5"),
		DeductionMinimum: decimal.NewFromInt(6),
		BreakCollapse:    20 * time.Minute,
		MorningStart:     8 * 60,
		LateLunchAt:      12*60 + 31,
		EarlyOverAt:      7*60 + 40,
		LateOverAt:       16*60 + 40,
	}
}

// fileRules is the YAML shape; nil fields keep the base value
type fileRules struct {
	Timezone         *string  `yaml:"timezone"`
	AdjustedGroup    *string  `yaml:"adjusted_group"`
	LunchDeduction   *float64 `yaml:"lunch_deduction_hours"`
	DeductionMinimum *float64 `yaml:"deduction_min_hours"`
	LateExempt       []string `yaml:"late_exempt"`
	BreakCollapseMin *int     `yaml:"break_collapse_minutes"`
	MorningStart     *string  `yaml:"morning_start"`
	LateLunchAt      *string  `yaml:"late_lunch_at"`
	EarlyOverAt      *string  `yaml:"early_over_at"`
	LateOverAt       *string  `yaml:"late_over_at"`
}

// LoadRules overlays the YAML file at path onto base. An empty path returns base
func LoadRules(path string, base Rules) (Rules, error) {
	if path == "" {
		return base, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read rules %s: %w", path, err)
	}
	return ParseRules(b, base)
}

// ParseRules overlays YAML bytes onto base. Unknown keys are an error
func ParseRules(b []byte, base Rules) (Rules, error) {
	var f fileRules
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return base, fmt.Errorf("parse rules: %w", err)
	}
	r := base
	if f.Timezone != nil {
		loc, err := ptime.Load(*f.Timezone)
		if err != nil {
			return base, fmt.Errorf("timezone: %w", err)
		}
		r.Location = loc
	}
	if f.AdjustedGroup != nil {
		r.AdjustedGroup = *f.AdjustedGroup
	}
	if f.LunchDeduction != nil {
		r.LunchDeduction = decimal.NewFromFloat(*f.LunchDeduction)
	}
	if f.DeductionMinimum != nil {
		r.DeductionMinimum = decimal.NewFromFloat(*f.DeductionMinimum)
	}
	if f.LateExempt != nil {
		r.LateExempt = f.LateExempt
	}
	if f.BreakCollapseMin != nil {
		if *f.BreakCollapseMin < 0 {
			return base, fmt.Errorf("break_collapse_minutes must not be negative")
		}
		r.BreakCollapse = time.Duration(*f.BreakCollapseMin) * time.Minute
	}
	clocks := []struct {
		name string
		src  *string
		dst  *int
	}{
		{"morning_start", f.MorningStart, &r.MorningStart},
		{"late_lunch_at", f.LateLunchAt, &r.LateLunchAt},
		{"early_over_at", f.EarlyOverAt, &r.EarlyOverAt},
		{"late_over_at", f.LateOverAt, &r.LateOverAt},
	}
	for _, c := range clocks {
		if c.src == nil {
			continue
		}
		m, err := ParseClock(*c.src)
		if err != nil {
			return base, fmt.Errorf("%s: %w", c.name, err)
		}
		*c.dst = m
	}
	return r, nil
}

// ParseClock parses "HH:MM" into minutes after midnight
func ParseClock(s string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("want HH:MM, got %q", s)
	}
	hh, err1 := strconv.Atoi(h)
	mm, err2 := strconv.Atoi(m)
	if err1 != nil || err2 != nil || hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("want HH:MM, got %q", s)
	}
	return hh*60 + mm, nil
}

// exemptions indexes LateExempt by folded name and by userid text
func (r Rules) exemptions() map[string]struct{} {
	out := make(map[string]struct{}, len(r.LateExempt))
	for _, s := range r.LateExempt {
		if k := punch.FoldName(s); k != "" {
			out[k] = struct{}{}
		}
	}
	return out
}
