// Package gtfsrt renders live snapshots as a GTFS-Realtime VehiclePositions feed.
package gtfsrt

import (
	"fmt"
	"strconv"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"fleet-tracking-service/internal/domain"
)

const gtfsRealtimeVersion = "2.0"

// BuildFeed converts a snapshot into a full-dataset FeedMessage with one
// VehiclePosition entity per vehicle.
func BuildFeed(snap *domain.LiveSnapshot) *gtfsrtpb.FeedMessage {
	fm := &gtfsrtpb.FeedMessage{
		Header: &gtfsrtpb.FeedHeader{
			GtfsRealtimeVersion: proto.String(gtfsRealtimeVersion),
			Incrementality:      gtfsrtpb.FeedHeader_FULL_DATASET.Enum(),
			Timestamp:           proto.Uint64(uint64(snap.Timestamp.Unix())),
		},
	}

	for _, v := range snap.Vehicles {
		fm.Entity = append(fm.Entity, &gtfsrtpb.FeedEntity{
			Id:      proto.String(v.VehicleID),
			Vehicle: vehiclePosition(v),
		})
	}
	return fm
}

// Encode returns the wire form of BuildFeed(snap).
func Encode(snap *domain.LiveSnapshot) ([]byte, error) {
	b, err := proto.Marshal(BuildFeed(snap))
	if err != nil {
		return nil, fmt.Errorf("encode gtfs-rt feed: %w", err)
	}
	return b, nil
}

func vehiclePosition(v domain.VehicleSnapshot) *gtfsrtpb.VehiclePosition {
	vp := &gtfsrtpb.VehiclePosition{
		Trip: &gtfsrtpb.TripDescriptor{
			TripId:  proto.String(v.RouteID + "-trip-" + strconv.Itoa(v.State.TripNumber)),
			RouteId: proto.String(v.RouteID),
		},
		Vehicle: &gtfsrtpb.VehicleDescriptor{
			Id:    proto.String(v.VehicleID),
			Label: proto.String(v.VehicleNumber),
		},
		Position: &gtfsrtpb.Position{
			Latitude:  proto.Float32(float32(v.Position.Coordinates.Lat)),
			Longitude: proto.Float32(float32(v.Position.Coordinates.Lon)),
			Bearing:   proto.Float32(float32(v.State.HeadingDegrees)),
			Odometer:  proto.Float64(v.State.DistanceCoveredKm * 1000),
			Speed:     proto.Float32(float32(v.State.SpeedKmh / 3.6)),
		},
		CurrentStopSequence: proto.Uint32(uint32(v.State.CurrentWaypointIndex)),
		CurrentStatus:       stopStatus(v).Enum(),
		Timestamp:           proto.Uint64(uint64(v.Timestamp.Unix())),
		CongestionLevel:     congestion(v.Environment.TrafficCondition).Enum(),
		OccupancyStatus:     occupancy(v.LoadPercentage()).Enum(),
		OccupancyPercentage: proto.Uint32(uint32(v.LoadPercentage() + 0.5)),
	}
	return vp
}

func stopStatus(v domain.VehicleSnapshot) gtfsrtpb.VehiclePosition_VehicleStopStatus {
	switch v.State.Status {
	case domain.StatusAtStop, domain.StatusOffDuty:
		return gtfsrtpb.VehiclePosition_STOPPED_AT
	default:
		return gtfsrtpb.VehiclePosition_IN_TRANSIT_TO
	}
}

func congestion(traffic string) gtfsrtpb.VehiclePosition_CongestionLevel {
	switch traffic {
	case "Light":
		return gtfsrtpb.VehiclePosition_RUNNING_SMOOTHLY
	case "Moderate":
		return gtfsrtpb.VehiclePosition_STOP_AND_GO
	case "Heavy":
		return gtfsrtpb.VehiclePosition_CONGESTION
	default:
		return gtfsrtpb.VehiclePosition_UNKNOWN_CONGESTION_LEVEL
	}
}

func occupancy(pct float64) gtfsrtpb.VehiclePosition_OccupancyStatus {
	switch {
	case pct <= 0:
		return gtfsrtpb.VehiclePosition_EMPTY
	case pct < 50:
		return gtfsrtpb.VehiclePosition_MANY_SEATS_AVAILABLE
	case pct < 80:
		return gtfsrtpb.VehiclePosition_FEW_SEATS_AVAILABLE
	case pct < 95:
		return gtfsrtpb.VehiclePosition_STANDING_ROOM_ONLY
	case pct < 100:
		return gtfsrtpb.VehiclePosition_CRUSHED_STANDING_ROOM_ONLY
	default:
		return gtfsrtpb.VehiclePosition_FULL
	}
}
