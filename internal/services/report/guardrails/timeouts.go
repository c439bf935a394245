// Package guardrails bounds the phases of a report build
package guardrails

import (
	"context"
	"time"
)

// Timeouts is the budget bundle for one report
// zero values mean no extra timeout at that level
type Timeouts struct {
	// Request is the overall budget for building one report
	Request time.Duration

	// Primary caps the attendance store reads
	Primary time.Duration

	// External caps the remote feed, including the directory join
	External time.Duration

	// Audit caps the audit sink write
	Audit time.Duration
}

// ForRequest returns a context limited by the request budget
func ForRequest(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Request)
}

// ForPrimary returns a sub context for primary store reads
func ForPrimary(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Primary)
}

// ForExternal returns a sub context for the remote feed
func ForExternal(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.External)
}

// ForAudit returns a context for the audit write. It is detached from parent
// cancellation so a finished request does not abort the write
func ForAudit(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(context.WithoutCancel(parent), t.Audit)
}

// Remaining returns the time until the deadline on ctx or zero when none is set or already expired
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return 0
}

// withChildTimeout takes the tighter of d and the parent remainder, never extending the parent
func withChildTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}
