// Package modkit holds what every API module shares: its dependencies and a
// Base that mounts the module's routes under its prefix
package modkit

import (
	"net/http"

	"punchclock/internal/modkit/httpkit"
	"punchclock/internal/modkit/module"
	"punchclock/internal/modkit/repokit"
	"punchclock/internal/platform/config"
	"punchclock/internal/platform/logger"
	"punchclock/internal/platform/store"
	str "punchclock/internal/platform/strings"
)

// Module is re-exported so services only import modkit
type Module = module.Module

// Deps are handed to every module constructor. CH is nil when ClickHouse is off
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// Option adjusts a Base
type Option func(*Base)

// WithMiddlewares runs mw in front of every route of the module
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Base) { b.mws = append(b.mws, mw...) }
}

// Base implements everything in Module except Ports. Embed it and call NewBase
type Base struct {
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	routes func(httpkit.Router)
}

// NewBase panics on a blank name or prefix; both are programmer errors
func NewBase(name, prefix string, routes func(httpkit.Router), opts ...Option) Base {
	b := Base{name: name, prefix: prefix, routes: routes}
	for _, o := range opts {
		o(&b)
	}
	b.name = str.MustString(b.name, "module name")
	b.prefix = str.MustPrefix(b.prefix)
	return b
}

// Name is the key the module's ports are registered under
func (b Base) Name() string { return b.name }

// Prefix is where MountRoutes mounts, e.g. /reports
func (b Base) Prefix() string { return b.prefix }

// MountRoutes mounts the module under its prefix on r
func (b Base) MountRoutes(r httpkit.Router) {
	r.Route(b.prefix, func(rr httpkit.Router) {
		if len(b.mws) > 0 {
			rr.Use(b.mws...)
		}
		if b.routes != nil {
			b.routes(rr)
		}
	})
}
