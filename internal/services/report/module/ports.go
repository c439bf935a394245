package module

import "punchclock/internal/services/report/domain"

// Ports is what other modules may look up under "reports"
type Ports struct {
	Reports domain.ServicePort
	Limits  domain.Limits
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
