// Package module mounts the meta endpoints
package module

import (
	"time"

	"punchclock/internal/modkit"
	"punchclock/internal/modkit/httpkit"
	metahttp "punchclock/internal/services/api/meta/http"
)

// Module serves /meta. It shares no ports
type Module struct{ modkit.Base }

// New builds the module; uptime counts from this call
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	d := metahttp.Deps{ServiceName: "punchclock-api", StartedAt: time.Now()}
	if deps.PG != nil {
		d.PG = deps.PG
	}
	if deps.CH != nil {
		d.CH = deps.CH
	}
	return &Module{modkit.NewBase("meta", "/meta", func(r httpkit.Router) { metahttp.Register(r, d) }, opts...)}
}

// Ports implements modkit.Module
func (*Module) Ports() any { return nil }
