package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"fleet-tracking-service/internal/api/dto"
	"fleet-tracking-service/internal/domain"
	"fleet-tracking-service/internal/platform/obs"
	"fleet-tracking-service/internal/services"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10
)

// StreamHandler pushes every committed snapshot a client can keep up with
// over a websocket. ?routeId= narrows the stream to one route.
type StreamHandler struct {
	Query    *services.LiveQuery
	Upgrader websocket.Upgrader
}

func NewStreamHandler(q *services.LiveQuery) *StreamHandler {
	return &StreamHandler{
		Query: q,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	routeID := r.URL.Query().Get("routeId")

	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		log.WithError(err).WithField("req_id", obs.RequestID(r.Context())).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	entry := log.WithFields(log.Fields{"req_id": obs.RequestID(r.Context()), "route_id": routeID})
	entry.Info("stream client connected")
	defer entry.Info("stream client disconnected")

	updates, cancel := h.Query.Subscribe()
	defer cancel()

	// The read side only services control frames and notices the close.
	closed := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(streamPingPeriod)
	defer ping.Stop()

	if err := h.send(conn, h.Query.Snapshot(), routeID); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if err := h.send(conn, snap, routeID); err != nil {
				entry.WithError(err).Debug("stream write failed")
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *StreamHandler) send(conn *websocket.Conn, snap *domain.LiveSnapshot, routeID string) error {
	msg := dto.StreamMessage{Tick: snap.Tick, Timestamp: snap.Timestamp}
	if routeID == "" {
		msg.Vehicles = dto.FromVehicleSnapshots(snap.Vehicles)
	} else {
		msg.Vehicles = make([]dto.VehicleLocation, 0)
		for _, v := range snap.Vehicles {
			if v.RouteID == routeID {
				msg.Vehicles = append(msg.Vehicles, dto.FromVehicleSnapshot(v))
			}
		}
	}

	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return conn.WriteJSON(msg)
}
