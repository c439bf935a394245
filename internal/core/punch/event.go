// Package punch defines the canonical punch event and the normalizer that
// coerces raw clock records into it
package punch

import (
	"strconv"
	"time"

	ptime "punchclock/internal/platform/time"
)

// Source names used on events
const (
	SourcePrimary  = "primary"
	SourceExternal = "external"
	SourceIngest   = "ingest"
)

// Priorities, lower wins
const (
	PriorityPrimary  = 0
	PriorityExternal = 1
)

// UnmappedGroup holds punches whose user is not in the directory
const UnmappedGroup = "Unmapped Users"

// Event is one badge punch. Treat values as immutable once produced
type Event struct {
	UserID        int64
	Username      string
	Group         string
	Date          ptime.Date // attendance day in the organization calendar
	At            time.Time  // UTC instant
	Source        string
	Priority      int
	SourceEventID string
	Meta          Metadata
}

// Key is the dedup identity of an event
type Key struct {
	UserID int64
	Second int64
}

// Key returns (userid, unix second)
func (e Event) Key() Key {
	return Key{UserID: e.UserID, Second: e.At.Truncate(time.Second).Unix()}
}

// Employee is a directory entry. The core only joins against it
type Employee struct {
	UserID   int64  `json:"userid"`
	Username string `json:"username"`
	Group    string `json:"group"`
}

// PlaceholderName is the display name used for users missing from the directory
func PlaceholderName(id int64) string {
	return "User #" + strconv.FormatInt(id, 10)
}

// WithEmployee returns a copy of e carrying the directory identity
func (e Event) WithEmployee(emp Employee) Event {
	e.Username = emp.Username
	e.Group = emp.Group
	return e
}

// Unmapped returns a copy of e placed in the fallback group
func (e Event) Unmapped() Event {
	e.Username = PlaceholderName(e.UserID)
	e.Group = UnmappedGroup
	return e
}
