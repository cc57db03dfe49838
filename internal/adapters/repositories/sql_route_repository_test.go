package repositories

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"fleet-tracking-service/internal/domain"
)

const seedJSON = `[
  {
    "routeId": "colombo-kandy",
    "name": "Colombo - Kandy Express",
    "estimatedDurationMinutes": 180,
    "waypoints": [
      {"name": "Colombo Fort", "lat": 6.9344, "lon": 79.8428},
      {"name": "Kadawatha", "lat": 7.0013, "lon": 79.9530},
      {"name": "Kandy", "lat": 7.2906, "lon": 80.6337}
    ],
    "vehicles": [
      {"vehicleId": "bus-002", "vehicleNumber": "NB-2002", "capacity": 54, "baseSpeedKmh": 45,
       "driver": {"name": "K. Perera", "phone": "+94 77 000 0002"}},
      {"vehicleId": "bus-001", "vehicleNumber": "NB-2001", "capacity": 54, "baseSpeedKmh": 42}
    ]
  },
  {
    "routeId": "colombo-galle",
    "name": "Colombo - Galle",
    "estimatedDurationMinutes": 150,
    "waypoints": [
      {"name": "Colombo Fort", "lat": 6.9344, "lon": 79.8428},
      {"name": "Galle", "lat": 6.0535, "lon": 80.2210}
    ],
    "vehicles": []
  }
]`

func newSeededDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, InitSchema(db))

	path := filepath.Join(t.TempDir(), "routes.json")
	require.NoError(t, os.WriteFile(path, []byte(seedJSON), 0o600))
	require.NoError(t, SeedFromJSON(db, Sqlite, path))

	return db
}

func TestListRoutes(t *testing.T) {
	repo := NewSQLRouteRepository(newSeededDB(t), Sqlite)

	routes, err := repo.ListRoutes(context.Background())
	require.NoError(t, err)
	require.Len(t, routes, 2)

	assert.Equal(t, "colombo-galle", routes[0].ID)
	kandy := routes[1]
	assert.Equal(t, "colombo-kandy", kandy.ID)
	require.Len(t, kandy.Waypoints, 3)
	assert.Equal(t, "Kadawatha", kandy.Waypoints[1].Name)
	assert.Greater(t, kandy.TotalDistanceKm, 90.0)
	assert.Equal(t, kandy.TotalDistanceKm, kandy.Final().CumulativeKm)
}

func TestGetRoute(t *testing.T) {
	repo := NewSQLRouteRepository(newSeededDB(t), Sqlite)

	r, err := repo.GetRoute(context.Background(), "colombo-galle")
	require.NoError(t, err)
	assert.Equal(t, "Colombo - Galle", r.Name)
	assert.Equal(t, 150.0, r.EstimatedDuration.Minutes())

	_, err = repo.GetRoute(context.Background(), "nonexistent-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListVehicles(t *testing.T) {
	repo := NewSQLRouteRepository(newSeededDB(t), Sqlite)

	vs, err := repo.ListVehicles(context.Background(), "colombo-kandy")
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, "bus-001", vs[0].VehicleID)
	assert.Equal(t, "K. Perera", vs[1].Driver.Name)
	assert.Equal(t, 54, vs[1].Capacity)

	none, err := repo.ListVehicles(context.Background(), "colombo-galle")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSeedIsRepeatable(t *testing.T) {
	db := newSeededDB(t)
	path := filepath.Join(t.TempDir(), "routes.json")
	require.NoError(t, os.WriteFile(path, []byte(seedJSON), 0o600))
	require.NoError(t, SeedFromJSON(db, Sqlite, path))

	routes, err := NewSQLRouteRepository(db, Sqlite).ListRoutes(context.Background())
	require.NoError(t, err)
	assert.Len(t, routes, 2)
	assert.Len(t, routes[1].Waypoints, 3)
}

func TestSeedRejectsBadInput(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()
	require.NoError(t, InitSchema(db))

	path := filepath.Join(t.TempDir(), "routes.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"routeId":"x","waypoints":[{"name":"a","lat":0,"lon":0}]}]`), 0o600))
	assert.Error(t, SeedFromJSON(db, Sqlite, path))

	assert.Error(t, SeedFromJSON(db, Sqlite, filepath.Join(t.TempDir(), "missing.json")))
}

func TestRebind(t *testing.T) {
	q := "SELECT a FROM t WHERE x = ? AND y = ?;"
	assert.Equal(t, q, Sqlite.rebind(q))
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2;", Postgres.rebind(q))
}
