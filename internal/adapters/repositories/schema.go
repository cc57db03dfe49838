package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the route store schema. The DDL runs unchanged on SQLite and Postgres.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRoutesQuery := `
	CREATE TABLE IF NOT EXISTS routes (
		route_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		estimated_minutes INTEGER NOT NULL DEFAULT 0
	);
	`

	createWaypointsQuery := `
	CREATE TABLE IF NOT EXISTS waypoints (
		route_id TEXT NOT NULL REFERENCES routes(route_id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (route_id, seq)
	);
	`

	createVehiclesQuery := `
	CREATE TABLE IF NOT EXISTS vehicles (
		vehicle_id TEXT PRIMARY KEY,
		route_id TEXT NOT NULL REFERENCES routes(route_id) ON DELETE CASCADE,
		vehicle_number TEXT NOT NULL,
		capacity INTEGER NOT NULL,
		base_speed_kmh DOUBLE PRECISION NOT NULL,
		driver_name TEXT NOT NULL DEFAULT '',
		driver_phone TEXT NOT NULL DEFAULT ''
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_vehicles_route
	ON vehicles(route_id);
	`

	statements := []string{
		createRoutesQuery,
		createWaypointsQuery,
		createVehiclesQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type WaypointSeed struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type DriverSeed struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type VehicleSeed struct {
	VehicleID     string     `json:"vehicleId"`
	VehicleNumber string     `json:"vehicleNumber"`
	Capacity      int        `json:"capacity"`
	BaseSpeedKmh  float64    `json:"baseSpeedKmh"`
	Driver        DriverSeed `json:"driver"`
}

type RouteSeed struct {
	RouteID          string         `json:"routeId"`
	Name             string         `json:"name"`
	EstimatedMinutes int            `json:"estimatedDurationMinutes"`
	Waypoints        []WaypointSeed `json:"waypoints"`
	Vehicles         []VehicleSeed  `json:"vehicles"`
}

// Populate the route store from a JSON file. Existing rows with the same ids
// are replaced.
func SeedFromJSON(db *sql.DB, d Dialect, jsonPath string) error {
	if db == nil {
		return errors.New("seed routes: DB is nil")
	}

	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed routes: read %q: %w", jsonPath, err)
	}

	var data []RouteSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed routes: parse json: %w", err)
	}

	if err := validateSeeds(data); err != nil {
		return fmt.Errorf("seed routes: %w", err)
	}

	return seedRoutes(context.Background(), db, d, data)
}

func validateSeeds(data []RouteSeed) error {
	for i, r := range data {
		if strings.TrimSpace(r.RouteID) == "" {
			return fmt.Errorf("route at index %d: routeId cannot be empty", i+1)
		}
		if len(r.Waypoints) < 2 {
			return fmt.Errorf("route %q: need at least 2 waypoints, got %d", r.RouteID, len(r.Waypoints))
		}
		for j, v := range r.Vehicles {
			if strings.TrimSpace(v.VehicleID) == "" {
				return fmt.Errorf("route %q vehicle at index %d: vehicleId cannot be empty", r.RouteID, j+1)
			}
			if v.Capacity <= 0 || v.BaseSpeedKmh <= 0 {
				return fmt.Errorf("route %q vehicle %q: capacity and baseSpeedKmh must be positive", r.RouteID, v.VehicleID)
			}
		}
	}
	return nil
}

func seedRoutes(ctx context.Context, db *sql.DB, d Dialect, data []RouteSeed) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed routes: begin tx: %w", err)
	}
	defer tx.Rollback()

	routeStmt, err := tx.PrepareContext(ctx, d.rebind(`
	INSERT INTO routes (route_id, name, estimated_minutes)
	VALUES (?, ?, ?)
	ON CONFLICT (route_id) DO UPDATE
	SET name = EXCLUDED.name,
		estimated_minutes = EXCLUDED.estimated_minutes;
	`))
	if err != nil {
		return fmt.Errorf("seed routes: prepare route insert: %w", err)
	}
	defer routeStmt.Close()

	clearStmt, err := tx.PrepareContext(ctx, d.rebind(`DELETE FROM waypoints WHERE route_id = ?;`))
	if err != nil {
		return fmt.Errorf("seed routes: prepare waypoint delete: %w", err)
	}
	defer clearStmt.Close()

	wpStmt, err := tx.PrepareContext(ctx, d.rebind(`
	INSERT INTO waypoints (route_id, seq, name, lat, lon)
	VALUES (?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("seed routes: prepare waypoint insert: %w", err)
	}
	defer wpStmt.Close()

	vehStmt, err := tx.PrepareContext(ctx, d.rebind(`
	INSERT INTO vehicles (vehicle_id, route_id, vehicle_number, capacity, base_speed_kmh, driver_name, driver_phone)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (vehicle_id) DO UPDATE
	SET route_id = EXCLUDED.route_id,
		vehicle_number = EXCLUDED.vehicle_number,
		capacity = EXCLUDED.capacity,
		base_speed_kmh = EXCLUDED.base_speed_kmh,
		driver_name = EXCLUDED.driver_name,
		driver_phone = EXCLUDED.driver_phone;
	`))
	if err != nil {
		return fmt.Errorf("seed routes: prepare vehicle insert: %w", err)
	}
	defer vehStmt.Close()

	for _, r := range data {
		id := strings.TrimSpace(r.RouteID)
		if _, err := routeStmt.ExecContext(ctx, id, r.Name, r.EstimatedMinutes); err != nil {
			return fmt.Errorf("seed routes: insert route_id=%s: %w", id, err)
		}
		if _, err := clearStmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("seed routes: clear waypoints route_id=%s: %w", id, err)
		}
		for seq, wp := range r.Waypoints {
			if _, err := wpStmt.ExecContext(ctx, id, seq, wp.Name, wp.Lat, wp.Lon); err != nil {
				return fmt.Errorf("seed routes: insert waypoint route_id=%s seq=%d: %w", id, seq, err)
			}
		}
		for _, v := range r.Vehicles {
			vid := strings.TrimSpace(v.VehicleID)
			if _, err := vehStmt.ExecContext(ctx, vid, id, v.VehicleNumber, v.Capacity, v.BaseSpeedKmh, v.Driver.Name, v.Driver.Phone); err != nil {
				return fmt.Errorf("seed routes: insert vehicle_id=%s: %w", vid, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed routes: commit tx: %w", err)
	}

	return nil
}
