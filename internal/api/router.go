package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fleet-tracking-service/internal/api/handlers"
	"fleet-tracking-service/internal/ports"
	"fleet-tracking-service/internal/services"
)

// Deps are the collaborators the HTTP layer needs. Tokens may be nil to
// disable authentication.
type Deps struct {
	Query   *services.LiveQuery
	Catalog *services.RouteCatalog
	Control *services.Control
	Tokens  ports.TokenValidator
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware, loggingMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, r, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	tracking := &handlers.TrackingHandler{Query: d.Query, Catalog: d.Catalog}
	stream := handlers.NewStreamHandler(d.Query)
	sim := &handlers.SimulationHandler{Control: d.Control}
	admin := &handlers.AdminHandler{Catalog: d.Catalog, Control: d.Control}

	r.Get("/health", handlers.Health)

	r.Group(func(r chi.Router) {
		r.Use(bearerAuth(d.Tokens))

		r.Route("/tracking", func(r chi.Router) {
			r.Get("/live", tracking.Live)
			r.Get("/route/{routeId}", tracking.ByRoute)
			r.Get("/vehicle/{vehicleId}", tracking.Vehicle)
			r.Get("/routes", tracking.Routes)
			r.Get("/stream", stream.Stream)
			r.Get("/gtfs-rt", tracking.Feed)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAdmin)

			r.Get("/simulation/status", sim.Status)
			r.Post("/simulation/start", sim.Start)
			r.Post("/simulation/stop", sim.Stop)
			r.Post("/simulation/speed", sim.Speed)

			r.Post("/routes/{routeId}/activate", admin.ActivateRoute)
			r.Post("/routes/{routeId}/deactivate", admin.DeactivateRoute)
			r.Post("/vehicles/{vehicleId}/breakdown", admin.Breakdown)
			r.Post("/vehicles/{vehicleId}/recover", admin.Recover)
		})
	})

	return r
}
