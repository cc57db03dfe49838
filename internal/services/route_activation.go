package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"fleet-tracking-service/internal/domain"
	"fleet-tracking-service/internal/ports"
	"fleet-tracking-service/internal/simulation"
)

// maxConcurrentLoads bounds parallel repository reads during bulk activation.
const maxConcurrentLoads = 4

// RouteCatalog loads routes from the repository and moves them in and out of
// the simulation.
type RouteCatalog struct {
	repo     ports.RouteRepository
	registry *simulation.Registry
}

func NewRouteCatalog(repo ports.RouteRepository, registry *simulation.Registry) *RouteCatalog {
	return &RouteCatalog{repo: repo, registry: registry}
}

// RouteInfo is a stored route and whether it is currently simulated.
type RouteInfo struct {
	Route  *domain.Route
	Active bool
}

type loadedRoute struct {
	route    *domain.Route
	vehicles []*domain.Vehicle
}

// Activate loads routeID with its vehicles and puts it into simulation,
// returning the number of vehicles activated.
func (c *RouteCatalog) Activate(ctx context.Context, routeID string) (int, error) {
	lr, err := c.load(ctx, routeID)
	if err != nil {
		return 0, fmt.Errorf("activate route: %w", err)
	}
	if err := c.registry.ActivateRoute(lr.route, lr.vehicles); err != nil {
		return 0, fmt.Errorf("activate route: %w", err)
	}
	return len(lr.vehicles), nil
}

func (c *RouteCatalog) Deactivate(routeID string) (int, error) {
	n, err := c.registry.DeactivateRoute(routeID)
	if err != nil {
		return 0, fmt.Errorf("deactivate route: %w", err)
	}
	return n, nil
}

// ActivateAll activates the given routes, or every stored route when ids is
// empty. Routes are loaded concurrently; nothing is activated if any load
// fails or any vehicle is claimed twice.
func (c *RouteCatalog) ActivateAll(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		routes, err := c.repo.ListRoutes(ctx)
		if err != nil {
			return 0, fmt.Errorf("activate all: list routes: %w", err)
		}
		for _, r := range routes {
			ids = append(ids, r.ID)
		}
	}

	loaded := make([]loadedRoute, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			lr, err := c.load(gctx, id)
			if err != nil {
				return err
			}
			loaded[i] = lr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("activate all: %w", err)
	}

	loads := make([]simulation.RouteLoad, 0, len(loaded))
	total := 0
	for _, lr := range loaded {
		loads = append(loads, simulation.RouteLoad{Route: lr.route, Vehicles: lr.vehicles})
		total += len(lr.vehicles)
	}
	if err := c.registry.ActivateRoutes(loads); err != nil {
		return 0, fmt.Errorf("activate all: %w", err)
	}
	return total, nil
}

// List returns every stored route flagged with its activation state.
func (c *RouteCatalog) List(ctx context.Context) ([]RouteInfo, error) {
	routes, err := c.repo.ListRoutes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}

	active := make(map[string]struct{})
	for _, r := range c.registry.Routes() {
		active[r.ID] = struct{}{}
	}

	out := make([]RouteInfo, 0, len(routes))
	for _, r := range routes {
		_, ok := active[r.ID]
		out = append(out, RouteInfo{Route: r, Active: ok})
	}
	return out, nil
}

func (c *RouteCatalog) load(ctx context.Context, routeID string) (loadedRoute, error) {
	route, err := c.repo.GetRoute(ctx, routeID)
	if err != nil {
		return loadedRoute{}, err
	}
	vehicles, err := c.repo.ListVehicles(ctx, routeID)
	if err != nil {
		return loadedRoute{}, fmt.Errorf("list vehicles for route %q: %w", routeID, err)
	}
	return loadedRoute{route: route, vehicles: vehicles}, nil
}
