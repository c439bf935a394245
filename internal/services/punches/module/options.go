package module

import (
	"time"

	"punchclock/internal/platform/config"
	perr "punchclock/internal/platform/errors"
	ptime "punchclock/internal/platform/time"
)

// Options controls ingestion
type Options struct {
	// Tokens are "name=token" or bare tokens; empty leaves the endpoint open
	Tokens   []string
	MaxBatch int
	Retries  int
	Backoff  time.Duration
	Location *time.Location
}

// FromConfig reads CORE_INGEST_* from the root config
func FromConfig(root config.Conf) (Options, error) {
	c := root.Prefix("CORE_INGEST_")
	loc, err := ptime.Load(root.Prefix("CORE_REPORT_").MayString("TIMEZONE", ptime.OrgZone))
	if err != nil {
		return Options{}, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "CORE_REPORT_TIMEZONE")
	}
	return Options{
		Tokens:   c.MayCSV("TOKENS", nil),
		MaxBatch: c.MayInt("MAX_BATCH", 500),
		Retries:  c.MayInt("RETRIES", 3),
		Backoff:  c.MayDuration("RETRY_BACKOFF", 20*time.Millisecond),
		Location: loc,
	}, nil
}
