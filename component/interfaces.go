package component

import "context"

// HealthStatus is the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health is the health report of one component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a part of the application with a start/stop lifecycle.
type Component interface {
	// Name returns the unique registration name.
	Name() string
	// Start brings the component up.
	Start(ctx context.Context) error
	// Stop shuts the component down and releases its resources.
	Stop(ctx context.Context) error
	// Health reports the current state.
	Health(ctx context.Context) Health
}

// Description is a one-line self report for the startup summary.
type Description struct {
	// Name is the display name; Component.Name is used when empty.
	Name string
	// Type groups components, e.g. "injector" or "server".
	Type string
	// Details is shown next to the name, e.g. "12 bindings, 3 scopes".
	Details string
	// Port is the listening port, 0 when none.
	Port int
}

// Describable components report a Description.
type Describable interface {
	Describe() Description
}

// Route is one HTTP route served by a component.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// RouteProvider components list their HTTP routes.
type RouteProvider interface {
	Routes() []Route
}
