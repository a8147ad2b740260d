package routing

import (
	"context"
	"math"
	"time"

	"github.com/cheetahx/dispatch/core/model"
	coreroute "github.com/cheetahx/dispatch/core/routing"
)

const earthRadiusKm = 6371

// MockRouteService estimates travel by haversine distance at a fixed average
// speed. It needs no network and is deterministic, which makes it the
// backend for local runs and tests.
type MockRouteService struct {
	// AvgSpeedKmh defaults to 30 when zero.
	AvgSpeedKmh float64
}

// DistanceMatrix satisfies the route service contract. Every pair gets a
// viable route.
func (m MockRouteService) DistanceMatrix(_ context.Context, origins []model.Coordinates, destination model.Coordinates) ([]coreroute.Leg, error) {
	speed := m.AvgSpeedKmh
	if speed <= 0 {
		speed = 30
	}
	legs := make([]coreroute.Leg, len(origins))
	for i, o := range origins {
		km := haversineKm(o.Lat, o.Lng, destination.Lat, destination.Lng)
		hours := km / speed
		legs[i] = coreroute.Leg{
			Duration:   time.Duration(hours * float64(time.Hour)),
			DistanceKm: km,
			OK:         true,
			Status:     "OK",
		}
	}
	return legs, nil
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Asin(math.Sqrt(a))
}
