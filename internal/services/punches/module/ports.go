package module

import "punchclock/internal/services/punches/domain"

// Ports is what other modules may look up under "punches"
type Ports struct {
	Ingest domain.ServicePort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
