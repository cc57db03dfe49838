package simulation

import (
	"fmt"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"fleet-tracking-service/internal/domain"
)

// Registry owns every simulated vehicle and its runtime state.
//
// All mutation happens under mu: the clock's tick and the admin operations
// (activation, fault injection) take it, queries never do. Each mutation ends
// by committing a fresh snapshot to the store.
type Registry struct {
	mu sync.Mutex

	params Params
	rng    RandomSource
	flavor RandomSource
	store  *SnapshotStore
	now    func() time.Time

	routes    map[string]*domain.Route
	vehicles  map[string]*domain.Vehicle
	order     []string
	positions map[string]domain.Position
	env       map[string]domain.Environment
	tick      uint64
}

// NewRegistry builds an empty registry. rng drives the physical model;
// flavor only drives decorative environment data.
func NewRegistry(p Params, rng, flavor RandomSource, store *SnapshotStore) *Registry {
	if store == nil {
		store = NewSnapshotStore()
	}
	return &Registry{
		params:    p,
		rng:       rng,
		flavor:    flavor,
		store:     store,
		now:       time.Now,
		routes:    make(map[string]*domain.Route),
		vehicles:  make(map[string]*domain.Vehicle),
		positions: make(map[string]domain.Position),
		env:       make(map[string]domain.Environment),
	}
}

func (r *Registry) Store() *SnapshotStore { return r.store }

// RouteLoad is a route together with the vehicles that run on it.
type RouteLoad struct {
	Route    *domain.Route
	Vehicles []*domain.Vehicle
}

// ActivateRoute puts a route and its vehicles into simulation. Re-activating
// an active route replaces its vehicles. Vehicles are copied; callers keep no
// handle on simulated state.
func (r *Registry) ActivateRoute(route *domain.Route, vehicles []*domain.Vehicle) error {
	return r.ActivateRoutes([]RouteLoad{{Route: route, Vehicles: vehicles}})
}

// ActivateRoutes activates every load or none of them. All vehicle conflicts,
// within the batch and against routes already running, are checked before
// the registry changes.
func (r *Registry) ActivateRoutes(loads []RouteLoad) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	replaced := make(map[string]struct{}, len(loads))
	for _, l := range loads {
		if l.Route == nil || l.Route.ID == "" {
			return fmt.Errorf("activate route: route must have an id: %w", domain.ErrInvalidArgument)
		}
		if _, dup := replaced[l.Route.ID]; dup {
			return fmt.Errorf("activate route %q: listed twice: %w", l.Route.ID, domain.ErrInvalidArgument)
		}
		replaced[l.Route.ID] = struct{}{}
	}

	claimed := make(map[string]string)
	owned := make([][]*domain.Vehicle, len(loads))
	for i, l := range loads {
		for _, v := range l.Vehicles {
			if v == nil {
				continue
			}
			if other, dup := claimed[v.VehicleID]; dup {
				if other == l.Route.ID {
					return fmt.Errorf("activate route %q: duplicate vehicle %q: %w", l.Route.ID, v.VehicleID, domain.ErrInvalidArgument)
				}
				return fmt.Errorf("activate route %q: vehicle %q also listed for route %q: %w", l.Route.ID, v.VehicleID, other, domain.ErrInvalidArgument)
			}
			claimed[v.VehicleID] = l.Route.ID
			if cur, ok := r.vehicles[v.VehicleID]; ok {
				if _, leaving := replaced[cur.RouteID]; !leaving {
					return fmt.Errorf("activate route %q: vehicle %q already runs on route %q: %w", l.Route.ID, v.VehicleID, cur.RouteID, domain.ErrInvalidArgument)
				}
			}
			cp := *v
			cp.RouteID = l.Route.ID
			owned[i] = append(owned[i], &cp)
		}
		sort.Slice(owned[i], func(a, b int) bool { return owned[i][a].VehicleID < owned[i][b].VehicleID })
	}

	for _, l := range loads {
		r.removeRouteLocked(l.Route.ID)
	}
	now := r.now()
	for i, l := range loads {
		r.installLocked(l.Route, owned[i], now)
	}
	sort.Strings(r.order)

	r.commitLocked(now)
	return nil
}

func (r *Registry) installLocked(route *domain.Route, owned []*domain.Vehicle, now time.Time) {
	r.routes[route.ID] = route

	for i, v := range owned {
		// Spread vehicles evenly along the route.
		if route.TotalDistanceKm > 0 {
			v.StartOffsetKm = route.TotalDistanceKm * float64(i) / float64(len(owned))
		}
		v.Reset(now)
		r.vehicles[v.VehicleID] = v
		r.order = append(r.order, v.VehicleID)
		r.refreshLocked(v)
		r.env[v.VehicleID] = drawEnvironment(r.flavor)
	}

	log.WithFields(log.Fields{"route_id": route.ID, "vehicles": len(owned)}).Info("route activated")
}

// DeactivateRoute removes a route and its vehicles from simulation and
// returns how many vehicles were removed.
func (r *Registry) DeactivateRoute(routeID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.routes[routeID]; !ok {
		return 0, fmt.Errorf("deactivate route %q: %w", routeID, domain.ErrNotFound)
	}
	n := r.removeRouteLocked(routeID)

	log.WithFields(log.Fields{"route_id": routeID, "vehicles": n}).Info("route deactivated")
	r.commitLocked(r.now())
	return n, nil
}

// Reset returns every vehicle to its start offset.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for _, id := range r.order {
		v := r.vehicles[id]
		v.Reset(now)
		r.refreshLocked(v)
	}
	r.commitLocked(now)
}

// Advance runs one tick over every vehicle and commits the result.
// A fault in one vehicle marks that vehicle broken down and never stops the
// tick for the others.
func (r *Registry) Advance(dt time.Duration) *domain.LiveSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for _, id := range r.order {
		v := r.vehicles[id]
		pos, err := r.advanceOne(v, dt, now)
		if err != nil {
			reason := fmt.Sprintf("Simulation fault: %v", err)
			breakDown(v, reason)
			v.State.CurrentDelayMinutes += dt.Minutes()
			v.State.LastTickTimestamp = now
			log.WithFields(log.Fields{"vehicle_id": id, "route_id": v.RouteID}).WithError(err).Warn("vehicle tick failed")
		}
		r.positions[id] = pos
		r.env[id] = drawEnvironment(r.flavor)
	}

	r.tick++
	return r.commitLocked(now)
}

func (r *Registry) advanceOne(v *domain.Vehicle, dt time.Duration, now time.Time) (pos domain.Position, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	route, ok := r.routes[v.RouteID]
	if !ok {
		return domain.Position{}, fmt.Errorf("route %q not loaded", v.RouteID)
	}
	return advanceVehicle(v, route, dt, now, r.rng, r.params)
}

// InjectBreakdown forces a vehicle into breakdown until it is recovered.
func (r *Registry) InjectBreakdown(vehicleID, reason string) (domain.VehicleSnapshot, error) {
	if reason == "" {
		reason = breakdownReason
	}
	return r.mutateVehicle(vehicleID, func(v *domain.Vehicle) { breakDown(v, reason) })
}

// Recover clears a breakdown. Recovering a vehicle that is not broken down
// is a no-op.
func (r *Registry) Recover(vehicleID string) (domain.VehicleSnapshot, error) {
	return r.mutateVehicle(vehicleID, func(v *domain.Vehicle) {
		if v.State.Status == domain.StatusBreakdown {
			recoverVehicle(v)
		}
	})
}

func (r *Registry) mutateVehicle(vehicleID string, fn func(v *domain.Vehicle)) (domain.VehicleSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.vehicles[vehicleID]
	if !ok {
		return domain.VehicleSnapshot{}, fmt.Errorf("vehicle %q: %w", vehicleID, domain.ErrNotFound)
	}
	fn(v)
	r.refreshLocked(v)

	snap := r.commitLocked(r.now())
	for _, vs := range snap.Vehicles {
		if vs.VehicleID == vehicleID {
			return vs, nil
		}
	}
	return domain.VehicleSnapshot{}, fmt.Errorf("vehicle %q missing from snapshot: %w", vehicleID, domain.ErrNotFound)
}

// Routes returns the active routes ordered by id.
func (r *Registry) Routes() []*domain.Route {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.Route, 0, len(r.routes))
	for _, rt := range r.routes {
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) removeRouteLocked(routeID string) int {
	if _, ok := r.routes[routeID]; !ok {
		return 0
	}
	delete(r.routes, routeID)

	kept := r.order[:0]
	removed := 0
	for _, id := range r.order {
		if r.vehicles[id].RouteID == routeID {
			delete(r.vehicles, id)
			delete(r.positions, id)
			delete(r.env, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
	return removed
}

// refreshLocked recomputes a vehicle's derived position without moving it.
func (r *Registry) refreshLocked(v *domain.Vehicle) {
	route := r.routes[v.RouteID]
	pos, err := Locate(route, v.State.DistanceCoveredKm, v.State.SpeedKmh, r.params.StopToleranceKm)
	if err != nil {
		pos = domain.Position{}
	}
	v.State.CurrentWaypointIndex = pos.WaypointIndex
	v.State.HeadingDegrees = pos.HeadingDegrees
	r.positions[v.VehicleID] = pos
}

func (r *Registry) commitLocked(now time.Time) *domain.LiveSnapshot {
	snap := &domain.LiveSnapshot{
		Tick:      r.tick,
		Timestamp: now,
		Vehicles:  make([]domain.VehicleSnapshot, 0, len(r.order)),
	}

	for _, id := range r.order {
		v := r.vehicles[id]
		routeName := ""
		if rt, ok := r.routes[v.RouteID]; ok {
			routeName = rt.Name
		}

		state := v.State
		if state.DelayReason != nil {
			reason := *state.DelayReason
			state.DelayReason = &reason
		}

		snap.Vehicles = append(snap.Vehicles, domain.VehicleSnapshot{
			VehicleID:     v.VehicleID,
			VehicleNumber: v.VehicleNumber,
			RouteID:       v.RouteID,
			RouteName:     routeName,
			Capacity:      v.Capacity,
			Driver:        v.Driver,
			State:         state,
			Position:      r.positions[id],
			Environment:   r.env[id],
			Timestamp:     state.LastTickTimestamp,
		})
	}

	r.store.Commit(snap)
	return snap
}
