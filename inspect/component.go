package inspect

import (
	"context"
	"sort"

	"github.com/kbukum/inject/component"
)

const componentName = "inspect"

var (
	_ component.Component     = (*Component)(nil)
	_ component.Describable   = (*Component)(nil)
	_ component.RouteProvider = (*Component)(nil)
)

// Component runs a Server as part of an application lifecycle.
type Component struct {
	server  *Server
	started bool
}

// NewComponent wraps s.
func NewComponent(s *Server) *Component {
	return &Component{server: s}
}

// Name returns "inspect".
func (c *Component) Name() string { return componentName }

// Start starts the server.
func (c *Component) Start(ctx context.Context) error {
	if err := c.server.Start(ctx); err != nil {
		return err
	}
	c.started = true
	return nil
}

// Stop shuts the server down.
func (c *Component) Stop(ctx context.Context) error {
	if !c.started {
		return nil
	}
	c.started = false
	return c.server.Stop(ctx)
}

// Health is healthy while the server is running.
func (c *Component) Health(ctx context.Context) component.Health {
	if !c.started {
		return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: componentName, Status: component.StatusHealthy}
}

// Describe reports the listen address.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Inspection Server",
		Type:    "server",
		Details: c.server.Addr(),
		Port:    c.server.config.port(),
	}
}

// Routes lists the served routes sorted by path.
func (c *Component) Routes() []component.Route {
	infos := c.server.engine.Routes()
	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })

	routes := make([]component.Route, len(infos))
	for i, r := range infos {
		routes[i] = component.Route{Method: r.Method, Path: r.Path, Handler: r.Handler}
	}
	return routes
}
