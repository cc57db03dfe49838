package ports

import (
	"context"

	"fleet-tracking-service/internal/domain"
)

// Port: a boundary for loading route geometry and the vehicles assigned to it.
type RouteRepository interface {
	// Retrieve every stored route, ordered by id.
	ListRoutes(ctx context.Context) ([]*domain.Route, error)
	// Retrieve one route. Unknown ids return domain.ErrNotFound.
	GetRoute(ctx context.Context, routeID string) (*domain.Route, error)
	// Retrieve the vehicles assigned to a route, ordered by id.
	ListVehicles(ctx context.Context, routeID string) ([]*domain.Vehicle, error)
}
