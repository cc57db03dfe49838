package dto

import (
	"encoding/json"
	"math"
	"time"

	"fleet-tracking-service/internal/domain"
)

// Reported GPS accuracy in metres. Positions are simulated, so it is constant.
const simulatedAccuracyMeters = 5.0

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Heading   float64 `json:"heading"`
	Speed     float64 `json:"speed"`
	Altitude  float64 `json:"altitude"`
}

type RouteProgress struct {
	CurrentWaypoint            int      `json:"currentWaypoint"`
	DistanceCovered            float64  `json:"distanceCovered"`
	EstimatedTimeToDestination *float64 `json:"estimatedTimeToDestination"`
	NextStopETA                *float64 `json:"nextStopETA"`
	ProgressPercentage         float64  `json:"progressPercentage"`
}

type PassengerLoad struct {
	CurrentCapacity int     `json:"currentCapacity"`
	MaxCapacity     int     `json:"maxCapacity"`
	LoadPercentage  float64 `json:"loadPercentage"`
}

type DriverInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type TripInfo struct {
	TripNumber int       `json:"tripNumber"`
	RouteName  string    `json:"routeName"`
	StartedAt  time.Time `json:"startedAt"`
}

type Delays struct {
	CurrentDelay float64 `json:"currentDelay"`
	Reason       *string `json:"reason"`
}

type OperationalInfo struct {
	DriverInfo DriverInfo `json:"driverInfo"`
	TripInfo   TripInfo   `json:"tripInfo"`
	Status     string     `json:"status"`
	Delays     Delays     `json:"delays"`
}

type EnvironmentalData struct {
	Weather          string  `json:"weather"`
	Temperature      float64 `json:"temperature"`
	TrafficCondition string  `json:"trafficCondition"`
}

// VehicleLocation is the wire form of one vehicle in a live snapshot.
type VehicleLocation struct {
	VehicleID         string            `json:"vehicleId"`
	VehicleNumber     string            `json:"vehicleNumber"`
	RouteID           string            `json:"routeId"`
	Location          Location          `json:"location"`
	RouteProgress     RouteProgress     `json:"routeProgress"`
	PassengerLoad     PassengerLoad     `json:"passengerLoad"`
	OperationalInfo   OperationalInfo   `json:"operationalInfo"`
	EnvironmentalData EnvironmentalData `json:"environmentalData"`
	Timestamp         time.Time         `json:"timestamp"`
}

type ListVehiclesResponse struct {
	Vehicles []VehicleLocation `json:"vehicles"`
}

// StreamMessage is pushed to websocket clients and Redis subscribers per tick.
type StreamMessage struct {
	Tick      uint64            `json:"tick"`
	Timestamp time.Time         `json:"timestamp"`
	Vehicles  []VehicleLocation `json:"vehicles"`
}

func FromVehicleSnapshot(v domain.VehicleSnapshot) VehicleLocation {
	var reason *string
	if v.State.DelayReason != nil {
		r := *v.State.DelayReason
		reason = &r
	}

	return VehicleLocation{
		VehicleID:     v.VehicleID,
		VehicleNumber: v.VehicleNumber,
		RouteID:       v.RouteID,
		Location: Location{
			Latitude:  v.Position.Coordinates.Lat,
			Longitude: v.Position.Coordinates.Lon,
			Accuracy:  simulatedAccuracyMeters,
			Heading:   round(v.State.HeadingDegrees, 1),
			Speed:     round(v.State.SpeedKmh, 1),
		},
		RouteProgress: RouteProgress{
			CurrentWaypoint:            v.State.CurrentWaypointIndex,
			DistanceCovered:            round(v.State.DistanceCoveredKm, 3),
			EstimatedTimeToDestination: roundPtr(v.Position.ETAToDestinationMinutes, 1),
			NextStopETA:                roundPtr(v.Position.NextStopETAMinutes, 1),
			ProgressPercentage:         round(v.Position.ProgressPercentage, 2),
		},
		PassengerLoad: PassengerLoad{
			CurrentCapacity: v.State.PassengerLoad,
			MaxCapacity:     v.Capacity,
			LoadPercentage:  round(v.LoadPercentage(), 1),
		},
		OperationalInfo: OperationalInfo{
			DriverInfo: DriverInfo{Name: v.Driver.Name, Phone: v.Driver.Phone},
			TripInfo: TripInfo{
				TripNumber: v.State.TripNumber,
				RouteName:  v.RouteName,
				StartedAt:  v.State.TripStartedAt,
			},
			Status: string(v.State.Status),
			Delays: Delays{
				CurrentDelay: round(v.State.CurrentDelayMinutes, 1),
				Reason:       reason,
			},
		},
		EnvironmentalData: EnvironmentalData{
			Weather:          v.Environment.Weather,
			Temperature:      v.Environment.TemperatureC,
			TrafficCondition: v.Environment.TrafficCondition,
		},
		Timestamp: v.Timestamp,
	}
}

func FromVehicleSnapshots(vs []domain.VehicleSnapshot) []VehicleLocation {
	out := make([]VehicleLocation, 0, len(vs))
	for _, v := range vs {
		out = append(out, FromVehicleSnapshot(v))
	}
	return out
}

func FromLiveSnapshot(snap *domain.LiveSnapshot) StreamMessage {
	return StreamMessage{
		Tick:      snap.Tick,
		Timestamp: snap.Timestamp,
		Vehicles:  FromVehicleSnapshots(snap.Vehicles),
	}
}

// EncodeLiveSnapshot renders snap as a JSON StreamMessage.
func EncodeLiveSnapshot(snap *domain.LiveSnapshot) ([]byte, error) {
	return json.Marshal(FromLiveSnapshot(snap))
}

type WaypointResponse struct {
	Name         string  `json:"name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	CumulativeKm float64 `json:"cumulativeKm"`
}

type RouteGeometry struct {
	RouteID                  string             `json:"routeId"`
	Name                     string             `json:"name"`
	TotalDistanceKm          float64            `json:"totalDistanceKm"`
	EstimatedDurationMinutes float64            `json:"estimatedDurationMinutes"`
	Active                   bool               `json:"active"`
	Waypoints                []WaypointResponse `json:"waypoints"`
}

type ListRoutesResponse struct {
	Routes []RouteGeometry `json:"routes"`
}

func FromRoute(r *domain.Route, active bool) RouteGeometry {
	wps := make([]WaypointResponse, 0, len(r.Waypoints))
	for _, wp := range r.Waypoints {
		wps = append(wps, WaypointResponse{
			Name:         wp.Name,
			Latitude:     wp.Coordinates.Lat,
			Longitude:    wp.Coordinates.Lon,
			CumulativeKm: round(wp.CumulativeKm, 3),
		})
	}
	return RouteGeometry{
		RouteID:                  r.ID,
		Name:                     r.Name,
		TotalDistanceKm:          round(r.TotalDistanceKm, 3),
		EstimatedDurationMinutes: r.EstimatedDuration.Minutes(),
		Active:                   active,
		Waypoints:                wps,
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func roundPtr(v *float64, places int) *float64 {
	if v == nil {
		return nil
	}
	r := round(*v, places)
	return &r
}
