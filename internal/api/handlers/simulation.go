package handlers

import (
	"net/http"

	"fleet-tracking-service/internal/api/dto"
	"fleet-tracking-service/internal/services"
)

type SimulationHandler struct {
	Control *services.Control
}

func (h *SimulationHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, dto.FromSimulationState(h.Control.Status()))
}

// Start and Stop are idempotent and always answer with the current status.
func (h *SimulationHandler) Start(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, dto.FromSimulationState(h.Control.Start()))
}

func (h *SimulationHandler) Stop(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, dto.FromSimulationState(h.Control.Stop()))
}

func (h *SimulationHandler) Speed(w http.ResponseWriter, r *http.Request) {
	var req dto.SpeedRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if req.Speed == nil {
		writeError(w, r, http.StatusBadRequest, "speed is required")
		return
	}

	st, err := h.Control.SetSpeed(*req.Speed)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromSimulationState(st))
}
