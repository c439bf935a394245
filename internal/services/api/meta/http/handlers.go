// Package http serves liveness, readiness and build info under /meta
package http

import (
	"context"
	"net/http"
	"time"

	"punchclock/internal/core/version"
	"punchclock/internal/modkit/httpkit"

	"golang.org/x/sync/errgroup"
)

// Pinger is anything readiness can probe, such as the postgres and clickhouse adapters
type Pinger interface {
	Ping(context.Context) error
}

// Deps feed the meta handlers. A nil store is reported as skipped; one that
// cannot Ping as unknown
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any
	CH          any
}

// readyTimeout bounds each dependency probe
const readyTimeout = 2 * time.Second

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{Deps: d}
	httpkit.Get(r, "/ping", h.ping)
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
}

type handlers struct{ Deps }

// PingResponse is the liveness greeting existing report clients look for
type PingResponse struct {
	Message string `json:"message" example:"Hello from server!"`
}

// HealthResponse says the process is up
type HealthResponse struct {
	OK      bool   `json:"ok"      example:"true"`
	Service string `json:"service" example:"punchclock-api"`
	Started string `json:"started" example:"2025-09-03T13:00:00Z"`
	Now     string `json:"now"     example:"2025-09-03T13:05:00Z"`
}

// ReadyCheck is one dependency probe; Status is ok, fail, skipped or unknown
type ReadyCheck struct {
	Name   string `json:"name"   example:"pg"`
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432: connect: connection refused"`
}

// ReadyResponse rolls the checks up to ok, degraded or fail
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2025-09-03T13:05:00Z"`
}

// ServiceResponse is the service name and uptime in seconds
type ServiceResponse struct {
	Name    string `json:"name"    example:"punchclock-api"`
	Started string `json:"started" example:"2025-09-03T13:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// @Summary Liveness greeting
// @Tags Meta
// @Produce json
// @Success 200 {object} PingResponse ok
// @Router /meta/ping [get]
func (h *handlers) ping(*http.Request) (any, error) {
	return PingResponse{Message: "Hello from server!"}, nil
}

// @Summary Health check
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse ok
// @Router /meta/health [get]
func (h *handlers) health(*http.Request) (any, error) {
	return HealthResponse{OK: true, Service: h.ServiceName, Started: stamp(h.StartedAt), Now: stamp(time.Now())}, nil
}

// @Summary Readiness probe with dependency checks
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse ok
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	checks := []ReadyCheck{{Name: "pg"}, {Name: "ch"}}
	targets := []any{h.PG, h.CH}

	g, ctx := errgroup.WithContext(r.Context())
	for i := range checks {
		g.Go(func() error {
			checks[i] = probe(ctx, checks[i].Name, targets[i])
			return nil
		})
	}
	_ = g.Wait()

	overall := "ok"
	for _, c := range checks {
		switch {
		case c.Status == "fail":
			overall = "fail"
		case c.Status != "ok" && overall == "ok":
			overall = "degraded"
		}
	}
	return ReadyResponse{Status: overall, Checks: checks, Now: stamp(time.Now())}, nil
}

func probe(ctx context.Context, name string, target any) ReadyCheck {
	if target == nil {
		return ReadyCheck{Name: name, Status: "skipped"}
	}
	p, ok := target.(Pinger)
	if !ok {
		return ReadyCheck{Name: name, Status: "unknown"}
	}
	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return ReadyCheck{Name: name, Status: "fail", Error: err.Error()}
	}
	return ReadyCheck{Name: name, Status: "ok"}
}

// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo ok
// @Router /meta/version [get]
func (h *handlers) version(*http.Request) (any, error) {
	return version.Info(h.ServiceName), nil
}

// @Summary Service info and uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse ok
// @Router /meta/service [get]
func (h *handlers) service(*http.Request) (any, error) {
	return ServiceResponse{
		Name:    h.ServiceName,
		Started: stamp(h.StartedAt),
		Uptime:  int64(time.Since(h.StartedAt) / time.Second),
	}, nil
}
