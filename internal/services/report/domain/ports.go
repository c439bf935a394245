package domain

import (
	"context"

	"punchclock/internal/core/report"
	"punchclock/internal/core/workhours"
)

// ServicePort is the report contract used by transports
type ServicePort interface {
	Attendance(ctx context.Context, req Request) (report.Tree, error)
	Hours(ctx context.Context, req Request) (workhours.Sheet, error)
}

// Limits exposes request bounds to transports
type Limits interface {
	MaxRangeDays() int
}
