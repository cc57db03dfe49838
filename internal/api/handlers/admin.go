package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"fleet-tracking-service/internal/api/dto"
	"fleet-tracking-service/internal/services"
)

type AdminHandler struct {
	Catalog *services.RouteCatalog
	Control *services.Control
}

func (h *AdminHandler) ActivateRoute(w http.ResponseWriter, r *http.Request) {
	routeID := chi.URLParam(r, "routeId")
	n, err := h.Catalog.Activate(r.Context(), routeID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.RouteActivationResponse{RouteID: routeID, Vehicles: n})
}

func (h *AdminHandler) DeactivateRoute(w http.ResponseWriter, r *http.Request) {
	routeID := chi.URLParam(r, "routeId")
	n, err := h.Catalog.Deactivate(routeID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.RouteActivationResponse{RouteID: routeID, Vehicles: n})
}

// Breakdown forces a vehicle into breakdown. The body is optional.
func (h *AdminHandler) Breakdown(w http.ResponseWriter, r *http.Request) {
	var req dto.BreakdownRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	v, err := h.Control.InjectBreakdown(chi.URLParam(r, "vehicleId"), strings.TrimSpace(req.Reason))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromVehicleSnapshot(v))
}

func (h *AdminHandler) Recover(w http.ResponseWriter, r *http.Request) {
	v, err := h.Control.Recover(chi.URLParam(r, "vehicleId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromVehicleSnapshot(v))
}
