// Package module defines what the API mounts and a process-wide registry
// where modules publish their ports for each other
package module

import (
	"sync"

	phttp "punchclock/internal/platform/net/http"
)

// Module is one feature area of the API
type Module interface {
	Name() string
	Prefix() string
	MountRoutes(r phttp.Router)
	// Ports is what other modules may use, nil when there is nothing to share
	Ports() any
}

var (
	mu  sync.RWMutex
	reg = map[string]any{}
)

// Register publishes ports under name, replacing earlier ones
func Register(name string, ports any) {
	mu.Lock()
	defer mu.Unlock()
	reg[name] = ports
}

// PortsAs looks up name and asserts its ports to T
func PortsAs[T any](name string) (T, bool) {
	mu.RLock()
	defer mu.RUnlock()
	v, ok := reg[name].(T)
	return v, ok
}

// Reset empties the registry
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	reg = map[string]any{}
}
