package module

import (
	"time"

	"punchclock/internal/adapters/punchsource/remote"
	"punchclock/internal/core/workhours"
	"punchclock/internal/platform/config"
	perr "punchclock/internal/platform/errors"
	ptime "punchclock/internal/platform/time"
	"punchclock/internal/services/report/guardrails"
	"punchclock/internal/services/report/source"

	"github.com/shopspring/decimal"
)

// Options controls the report pipeline
type Options struct {
	Rules        workhours.Rules
	MaxRangeDays int
	Timeouts     guardrails.Timeouts

	// Feed is the external punch feed, nil when disabled
	Feed source.Feed

	// Audit turns on the ClickHouse day audit when a CH client is available
	Audit bool
}

// FromConfig reads CORE_REPORT_* and CORE_RULES_* from the root config
func FromConfig(root config.Conf) (Options, error) {
	c := root.Prefix("CORE_REPORT_")

	rules, err := RulesFromConfig(root)
	if err != nil {
		return Options{}, err
	}

	o := Options{
		Rules:        rules,
		MaxRangeDays: c.MayInt("MAX_RANGE_DAYS", 62),
		Timeouts: guardrails.Timeouts{
			Request:  c.MayDuration("REQUEST_TIMEOUT", 30*time.Second),
			Primary:  c.MayDuration("PRIMARY_TIMEOUT", 20*time.Second),
			External: c.MayDuration("EXTERNAL_TIMEOUT", 8*time.Second),
			Audit:    c.MayDuration("AUDIT_TIMEOUT", 5*time.Second),
		},
		Audit: c.MayBool("AUDIT", false),
	}

	if c.MayBool("EXTERNAL_ENABLED", false) {
		client, err := remote.NewClient(remote.Options{
			URL:      c.MustString("EXTERNAL_URL"),
			Token:    c.MayString("EXTERNAL_TOKEN", ""),
			Timezone: c.MayString("TIMEZONE", ptime.OrgZone),
			Timeout:  o.Timeouts.External,
		})
		if err != nil {
			return Options{}, err
		}
		o.Feed = client
	}
	return o, nil
}

// RulesFromConfig builds work-hours rules. Precedence is env, then the
// CORE_RULES_FILE yaml, then defaults
func RulesFromConfig(root config.Conf) (workhours.Rules, error) {
	base := workhours.DefaultRules()
	loc, err := ptime.Load(root.Prefix("CORE_REPORT_").MayString("TIMEZONE", ptime.OrgZone))
	if err != nil {
		return base, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "CORE_REPORT_TIMEZONE")
	}
	base.Location = loc

	c := root.Prefix("CORE_RULES_")
	r, err := workhours.LoadRules(c.MayString("FILE", ""), base)
	if err != nil {
		return base, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "CORE_RULES_FILE")
	}
	if g := c.MayString("ADJUSTED_GROUP", ""); g != "" {
		r.AdjustedGroup = g
	}
	if s := c.MayString("LUNCH_DEDUCTION", ""); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil || d.IsNegative() {
			return base, perr.Newf(perr.ErrorCodeInvalidArgument, "CORE_RULES_LUNCH_DEDUCTION: %q is not a non-negative number", s)
		}
		r.LunchDeduction = d
	}
	if ex := c.MayCSV("LATE_EXEMPT", nil); ex != nil {
		r.LateExempt = ex
	}
	return r, nil
}
