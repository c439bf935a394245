// Package domain holds DTOs and ports for attendance reports
package domain

import (
	"strconv"

	perr "punchclock/internal/platform/errors"
	ptime "punchclock/internal/platform/time"
	"punchclock/internal/platform/validate"
)

// Query is the report request as it arrives on the wire
type Query struct {
	StartDate       string `json:"startDate" validate:"required,civil_date" example:"2024-03-01"`
	EndDate         string `json:"endDate" validate:"required,civil_date" example:"2024-03-15"`
	IncludeExternal *bool  `json:"includeExternal,omitempty" example:"true"`
}

// External reports whether the external feed is requested, default true
func (q Query) External() bool { return q.IncludeExternal == nil || *q.IncludeExternal }

// Request is a validated Query
type Request struct {
	Range           ptime.Range
	IncludeExternal bool
}

// ParseBool reads an includeExternal style flag, empty means nil
func ParseBool(field, s string) (*bool, error) {
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s must be true or false", field), field)
	}
	return &b, nil
}

// Resolve validates q and bounds the range to maxDays when positive
func (q Query) Resolve(maxDays int) (Request, error) {
	if err := validate.Struct(q); err != nil {
		return Request{}, err
	}
	start, _ := ptime.ParseDate(q.StartDate)
	end, _ := ptime.ParseDate(q.EndDate)
	rng, err := ptime.NewRange(start, end)
	if err != nil {
		return Request{}, perr.WithField(perr.New(perr.ErrorCodeValidation, "endDate must not be before startDate"), "endDate")
	}
	if maxDays > 0 && rng.Len() > maxDays {
		return Request{}, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "range may span at most %d days", maxDays), "endDate")
	}
	return Request{Range: rng, IncludeExternal: q.External()}, nil
}
