// Package module wires attendance reports into the API
package module

import (
	"fmt"

	modkit "punchclock/internal/modkit"
	"punchclock/internal/modkit/httpkit"
	"punchclock/internal/modkit/module"
	"punchclock/internal/services/report/audit"
	reporthttp "punchclock/internal/services/report/http"
	reportrepo "punchclock/internal/services/report/repo"
	reportsvc "punchclock/internal/services/report/service"
)

// Name is the key the report ports are registered under
const Name = "reports"

// Module mounts the attendance and hours reports
type Module struct {
	modkit.Base

	svc   *reportsvc.Svc
	ports Ports
}

// New builds the module. o usually comes from FromConfig
func New(deps modkit.Deps, o Options, opts ...modkit.Option) *Module {
	cfg := reportsvc.DefaultConfig()
	if o.Rules.Location != nil {
		cfg.Rules = o.Rules
	}
	if o.MaxRangeDays > 0 {
		cfg.MaxRangeDays = o.MaxRangeDays
	}
	cfg.Timeouts = o.Timeouts

	svcOpts := []reportsvc.Option{reportsvc.WithConfig(cfg), reportsvc.WithExternal(o.Feed)}
	if o.Audit {
		svcOpts = append(svcOpts, reportsvc.WithAudit(audit.NewCH(deps.CH)))
	}
	svc := reportsvc.New(deps.PG, reportrepo.NewPG(), svcOpts...)

	m := &Module{svc: svc, ports: Ports{Reports: svc, Limits: svc}}
	m.Base = modkit.NewBase(Name, "/reports", func(r httpkit.Router) { reporthttp.Register(r, m.svc) }, opts...)
	return m
}

// LookupPorts reads back the ports a report module registered
func LookupPorts() (Ports, error) {
	p, ok := module.PortsAs[Ports](Name)
	if !ok || p.Reports == nil || p.Limits == nil {
		return Ports{}, fmt.Errorf("module %q has not registered its ports", Name)
	}
	return p, nil
}
