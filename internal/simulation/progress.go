package simulation

import (
	"fmt"

	"fleet-tracking-service/internal/domain"
)

// Locate maps a distance along a route to a position on it.
//
// Interpolation is linear in degree space between consecutive waypoints.
// ETAs are derived from speedKmh and are nil when the vehicle is not moving,
// so a stalled vehicle reports "unknown" rather than an infinite ETA.
func Locate(route *domain.Route, distanceKm, speedKmh, toleranceKm float64) (domain.Position, error) {
	if err := route.Validate(); err != nil {
		return domain.Position{}, fmt.Errorf("locate: %w", err)
	}

	total := route.TotalDistanceKm
	d := clamp(distanceKm, 0, total)

	wps := route.Waypoints
	last := len(wps) - 1
	idx := route.WaypointIndexAt(d)

	pos := domain.Position{
		WaypointIndex:      idx,
		ProgressPercentage: clamp(100*d/total, 0, 100),
	}

	if idx >= last {
		pos.WaypointIndex = last
		pos.Coordinates = wps[last].Coordinates
		pos.HeadingDegrees = 0
	} else {
		a, b := wps[idx], wps[idx+1]
		t := 0.0
		if seg := b.CumulativeKm - a.CumulativeKm; seg > 0 {
			t = (d - a.CumulativeKm) / seg
		}
		pos.Coordinates = a.Coordinates.Lerp(b.Coordinates, t)
		pos.HeadingDegrees = pos.Coordinates.BearingTo(b.Coordinates)
		pos.DistanceToNextStopKm = b.CumulativeKm - d
	}

	pos.AtWaypoint = d-wps[pos.WaypointIndex].CumulativeKm <= toleranceKm ||
		(pos.WaypointIndex < last && pos.DistanceToNextStopKm <= toleranceKm)

	if speedKmh > 0 {
		next := pos.DistanceToNextStopKm / speedKmh * 60
		dest := (total - d) / speedKmh * 60
		pos.NextStopETAMinutes = &next
		pos.ETAToDestinationMinutes = &dest
	}

	return pos, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
