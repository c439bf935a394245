// Package http provides http transport for attendance reports
package http

import (
	stdhttp "net/http"

	"punchclock/internal/adapters/export/xlsx"
	"punchclock/internal/modkit/httpkit"
	"punchclock/internal/services/report/domain"
)

// Service is what the handlers need from the report service
type Service interface {
	domain.ServicePort
	domain.Limits
}

// Register mounts report endpoints on the given router
func Register(r httpkit.Router, s Service) {
	h := &handlers{svc: s}

	httpkit.Get(r, "/attendance", h.attendance)
	httpkit.Get(r, "/hours", h.hours)
	httpkit.Get(r, "/hours.xlsx", h.hoursXLSX)
}

type handlers struct{ svc Service }

// query reads the report window from the query string
func (h *handlers) query(r *stdhttp.Request) (domain.Request, error) {
	v := r.URL.Query()
	ext, err := domain.ParseBool("includeExternal", v.Get("includeExternal"))
	if err != nil {
		return domain.Request{}, err
	}
	q := domain.Query{
		StartDate:       v.Get("startDate"),
		EndDate:         v.Get("endDate"),
		IncludeExternal: ext,
	}
	return q.Resolve(h.svc.MaxRangeDays())
}

// swagger:route GET /reports/attendance Reports reportsAttendance
// @Summary Reconciled punches grouped by group, employee and date
// @Tags Reports
// @Produce json
// @Param startDate query string true "First day, YYYY-MM-DD"
// @Param endDate query string true "Last day, YYYY-MM-DD"
// @Param includeExternal query bool false "Merge the external feed (default true)"
// @Success 200 {object} report.Tree "ok"
// @Failure 400 {object} httpkit.Envelope "invalid range"
// @Router /reports/attendance [get]
func (h *handlers) attendance(r *stdhttp.Request) (any, error) {
	req, err := h.query(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Attendance(r.Context(), req)
}

// swagger:route GET /reports/hours Reports reportsHours
// @Summary Worked hours and punch flags per employee-day
// @Tags Reports
// @Produce json
// @Param startDate query string true "First day, YYYY-MM-DD"
// @Param endDate query string true "Last day, YYYY-MM-DD"
// @Param includeExternal query bool false "Merge the external feed (default true)"
// @Success 200 {object} workhours.Sheet "ok"
// @Failure 400 {object} httpkit.Envelope "invalid range"
// @Router /reports/hours [get]
func (h *handlers) hours(r *stdhttp.Request) (any, error) {
	req, err := h.query(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Hours(r.Context(), req)
}

// swagger:route GET /reports/hours.xlsx Reports reportsHoursXLSX
// @Summary Worked hours as a spreadsheet
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param startDate query string true "First day, YYYY-MM-DD"
// @Param endDate query string true "Last day, YYYY-MM-DD"
// @Param includeExternal query bool false "Merge the external feed (default true)"
// @Success 200 {file} file "ok"
// @Router /reports/hours.xlsx [get]
func (h *handlers) hoursXLSX(r *stdhttp.Request) (any, error) {
	req, err := h.query(r)
	if err != nil {
		return nil, err
	}
	sheet, err := h.svc.Hours(r.Context(), req)
	if err != nil {
		return nil, err
	}
	b, err := xlsx.Bytes(sheet)
	if err != nil {
		return nil, err
	}
	return httpkit.File(xlsx.ContentType, xlsx.Filename(sheet), b), nil
}
