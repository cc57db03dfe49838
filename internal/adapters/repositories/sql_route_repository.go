package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fleet-tracking-service/internal/domain"
	"fleet-tracking-service/internal/platform/obs"
)

// SQL-backed implementation of the RouteRepository port. The same queries
// serve SQLite and Postgres; only placeholders differ.
type SQLRouteRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLRouteRepository(db *sql.DB, d Dialect) *SQLRouteRepository {
	return &SQLRouteRepository{DB: db, Dialect: d}
}

// Return all routes with their ordered waypoints.
func (s *SQLRouteRepository) ListRoutes(ctx context.Context) (_ []*domain.Route, err error) {
	defer obs.Time(ctx, "repo.list_routes")(&err)

	if s.DB == nil {
		return nil, errors.New("route repository: DB is nil")
	}

	headers, err := s.queryRoutes(ctx, `
	SELECT route_id, name, estimated_minutes
	FROM routes
	ORDER BY route_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}

	waypoints, err := s.queryWaypoints(ctx, `
	SELECT route_id, seq, name, lat, lon
	FROM waypoints
	ORDER BY route_id, seq;
	`)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}

	routes := make([]*domain.Route, 0, len(headers))
	for _, h := range headers {
		r, err := h.build(waypoints[h.id])
		if err != nil {
			return nil, fmt.Errorf("list routes: %w", err)
		}
		routes = append(routes, r)
	}

	return routes, nil
}

// Return one route. Unknown ids yield domain.ErrNotFound.
func (s *SQLRouteRepository) GetRoute(ctx context.Context, routeID string) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "repo.get_route")(&err)

	if s.DB == nil {
		return nil, errors.New("route repository: DB is nil")
	}

	headers, err := s.queryRoutes(ctx, `
	SELECT route_id, name, estimated_minutes
	FROM routes
	WHERE route_id = ?;
	`, routeID)
	if err != nil {
		return nil, fmt.Errorf("get route %q: %w", routeID, err)
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("get route %q: %w", routeID, domain.ErrNotFound)
	}

	waypoints, err := s.queryWaypoints(ctx, `
	SELECT route_id, seq, name, lat, lon
	FROM waypoints
	WHERE route_id = ?
	ORDER BY seq;
	`, routeID)
	if err != nil {
		return nil, fmt.Errorf("get route %q: %w", routeID, err)
	}

	r, err := headers[0].build(waypoints[routeID])
	if err != nil {
		return nil, fmt.Errorf("get route %q: %w", routeID, err)
	}
	return r, nil
}

// Return the vehicles assigned to a route, ordered by id.
func (s *SQLRouteRepository) ListVehicles(ctx context.Context, routeID string) (_ []*domain.Vehicle, err error) {
	defer obs.Time(ctx, "repo.list_vehicles")(&err)

	if s.DB == nil {
		return nil, errors.New("route repository: DB is nil")
	}

	query := s.Dialect.rebind(`
	SELECT vehicle_id, route_id, vehicle_number, capacity, base_speed_kmh, driver_name, driver_phone
	FROM vehicles
	WHERE route_id = ?
	ORDER BY vehicle_id;
	`)
	rows, err := s.DB.QueryContext(ctx, query, routeID)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: query vehicles table: %w", err)
	}
	defer rows.Close()

	vehicles := make([]*domain.Vehicle, 0, 8)
	for rows.Next() {
		var (
			id, rid, number, driverName, driverPhone string
			capacity                                 int
			speed                                    float64
		)
		if err := rows.Scan(&id, &rid, &number, &capacity, &speed, &driverName, &driverPhone); err != nil {
			return nil, fmt.Errorf("list vehicles: scan row: %w", err)
		}

		v, err := domain.NewVehicle(id, rid, number, capacity, speed)
		if err != nil {
			return nil, fmt.Errorf("list vehicles: %w", err)
		}
		v.Driver = domain.DriverInfo{Name: driverName, Phone: driverPhone}
		vehicles = append(vehicles, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vehicles: row iteration: %w", err)
	}

	return vehicles, nil
}

type routeHeader struct {
	id        string
	name      string
	estimated int
}

func (h routeHeader) build(wps []domain.Waypoint) (*domain.Route, error) {
	return domain.NewRoute(h.id, h.name, wps, time.Duration(h.estimated)*time.Minute)
}

func (s *SQLRouteRepository) queryRoutes(ctx context.Context, query string, args ...any) ([]routeHeader, error) {
	rows, err := s.DB.QueryContext(ctx, s.Dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query routes table: %w", err)
	}
	defer rows.Close()

	var out []routeHeader
	for rows.Next() {
		var h routeHeader
		if err := rows.Scan(&h.id, &h.name, &h.estimated); err != nil {
			return nil, fmt.Errorf("scan route row: %w", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("route row iteration: %w", err)
	}
	return out, nil
}

func (s *SQLRouteRepository) queryWaypoints(ctx context.Context, query string, args ...any) (map[string][]domain.Waypoint, error) {
	rows, err := s.DB.QueryContext(ctx, s.Dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query waypoints table: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.Waypoint)
	for rows.Next() {
		var (
			routeID, name string
			seq           int
			lat, lon      float64
		)
		if err := rows.Scan(&routeID, &seq, &name, &lat, &lon); err != nil {
			return nil, fmt.Errorf("scan waypoint row: %w", err)
		}
		out[routeID] = append(out[routeID], domain.Waypoint{
			Name:        name,
			Coordinates: domain.Coordinates{Lat: lat, Lon: lon},
			Order:       seq,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("waypoint row iteration: %w", err)
	}
	return out, nil
}
