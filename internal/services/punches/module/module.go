// Package module wires punch ingestion into the API
package module

import (
	"punchclock/internal/modkit"
	"punchclock/internal/modkit/httpkit"
	"punchclock/internal/platform/logger"
	"punchclock/internal/platform/store"
	punchhttp "punchclock/internal/services/punches/http"
	punchrepo "punchclock/internal/services/punches/repo"
	punchsvc "punchclock/internal/services/punches/service"
)

// Module mounts POST /punches, behind clock-client tokens when any are configured
type Module struct {
	modkit.Base

	svc   *punchsvc.Svc
	auth  *httpkit.Port
	ports Ports
}

// New builds the module. o usually comes from FromConfig
func New(deps modkit.Deps, o Options, opts ...modkit.Option) *Module {
	svc := punchsvc.New(deps.PG, punchrepo.NewPG(), punchsvc.Config{
		MaxBatch: o.MaxBatch,
		Retry:    store.RetryPolicy{Attempts: o.Retries, Backoff: o.Backoff},
		Loc:      o.Location,
	})
	m := &Module{
		svc:   svc,
		auth:  httpkit.NewStaticPort(o.Tokens),
		ports: Ports{Ingest: svc},
	}
	if m.auth == nil {
		logger.Named("punches").Warn().Msg("CORE_INGEST_TOKENS is empty, ingestion is unauthenticated")
	} else {
		opts = append([]modkit.Option{modkit.WithMiddlewares(httpkit.RequireToken(m.auth))}, opts...)
	}
	m.Base = modkit.NewBase("punches", "/punches", func(r httpkit.Router) { punchhttp.Register(r, m.svc) }, opts...)
	return m
}
