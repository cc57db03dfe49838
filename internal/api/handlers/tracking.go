package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fleet-tracking-service/internal/adapters/gtfsrt"
	"fleet-tracking-service/internal/api/dto"
	"fleet-tracking-service/internal/services"
)

type TrackingHandler struct {
	Query   *services.LiveQuery
	Catalog *services.RouteCatalog
}

func (h *TrackingHandler) Live(w http.ResponseWriter, r *http.Request) {
	res := dto.ListVehiclesResponse{Vehicles: dto.FromVehicleSnapshots(h.Query.GetAll())}
	writeJSON(w, r, http.StatusOK, res)
}

// ByRoute lists the vehicles on one route. Unknown routes yield an empty list.
func (h *TrackingHandler) ByRoute(w http.ResponseWriter, r *http.Request) {
	routeID := chi.URLParam(r, "routeId")
	res := dto.ListVehiclesResponse{Vehicles: dto.FromVehicleSnapshots(h.Query.GetByRoute(routeID))}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *TrackingHandler) Vehicle(w http.ResponseWriter, r *http.Request) {
	v, err := h.Query.GetVehicle(chi.URLParam(r, "vehicleId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromVehicleSnapshot(v))
}

func (h *TrackingHandler) Routes(w http.ResponseWriter, r *http.Request) {
	infos, err := h.Catalog.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res := dto.ListRoutesResponse{Routes: make([]dto.RouteGeometry, 0, len(infos))}
	for _, info := range infos {
		res.Routes = append(res.Routes, dto.FromRoute(info.Route, info.Active))
	}
	writeJSON(w, r, http.StatusOK, res)
}

// Feed serves the live snapshot as a GTFS-Realtime VehiclePositions message.
func (h *TrackingHandler) Feed(w http.ResponseWriter, r *http.Request) {
	b, err := gtfsrt.Encode(h.Query.Snapshot())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-protobuf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
