// Package routing gates drivers on SLA feasibility using batched travel-time
// estimates from an external route service.
package routing

import (
	"context"
	"fmt"
	"time"

	"github.com/cheetahx/dispatch/core/logger"
	"github.com/cheetahx/dispatch/core/model"
)

// Leg is one origin→destination travel estimate. OK is false when the route
// service could not find a viable route for the pair.
type Leg struct {
	Duration   time.Duration
	DistanceKm float64
	OK         bool
	Status     string
}

// RouteService answers batched distance-matrix queries: N origins against a
// single destination, one Leg per origin in input order.
type RouteService interface {
	DistanceMatrix(ctx context.Context, origins []model.Coordinates, destination model.Coordinates) ([]Leg, error)
}

// FeasibilityRouter computes trip estimates for a driver pool and flags
// which drivers can still meet the order's delivery deadline.
type FeasibilityRouter struct {
	routes RouteService
	log    logger.Logger
}

// NewFeasibilityRouter creates a router backed by the given route service.
func NewFeasibilityRouter(routes RouteService, log logger.Logger) *FeasibilityRouter {
	return &FeasibilityRouter{routes: routes, log: log}
}

// Compute returns one RoutingResult per driver with a viable route. Drivers
// for which the service reports no route are omitted. Exactly two matrix
// calls are issued regardless of pool size: all drivers → pickup, and the
// shared pickup → dropoff leg.
func (r *FeasibilityRouter) Compute(ctx context.Context, drivers []model.Driver, order model.Order, now time.Time) ([]model.RoutingResult, error) {
	if len(drivers) == 0 {
		return nil, nil
	}

	origins := make([]model.Coordinates, len(drivers))
	for i, d := range drivers {
		origins[i] = d.Position
	}

	toPickup, err := r.routes.DistanceMatrix(ctx, origins, order.Pickup)
	if err != nil {
		return nil, fmt.Errorf("drivers to pickup leg: %w", err)
	}
	if len(toPickup) != len(drivers) {
		return nil, fmt.Errorf("route service returned %d legs for %d drivers", len(toPickup), len(drivers))
	}

	shared, err := r.routes.DistanceMatrix(ctx, []model.Coordinates{order.Pickup}, order.Dropoff)
	if err != nil {
		return nil, fmt.Errorf("pickup to dropoff leg: %w", err)
	}
	if len(shared) != 1 || !shared[0].OK {
		return nil, fmt.Errorf("no route from pickup to dropoff (status %s)", legStatus(shared))
	}
	leg2 := shared[0]

	untilDeadline := order.Window.DeliverBy.Sub(now)

	results := make([]model.RoutingResult, 0, len(drivers))
	for i, d := range drivers {
		leg1 := toPickup[i]
		if !leg1.OK {
			if r.log != nil {
				r.log.Warnf("no route for driver %s: %s", d.ID, leg1.Status)
			}
			continue
		}
		total := leg1.Duration + leg2.Duration
		results = append(results, model.RoutingResult{
			DriverID:        d.ID,
			ETAToPickup:     leg1.Duration,
			TotalTripTime:   total,
			TotalDistanceKm: leg1.DistanceKm + leg2.DistanceKm,
			FitsSLA:         total <= untilDeadline,
		})
	}

	if r.log != nil {
		feasible := 0
		for _, res := range results {
			if res.FitsSLA {
				feasible++
			}
		}
		r.log.Infof("routing: %d/%d drivers can meet SLA", feasible, len(drivers))
	}
	return results, nil
}

// FeasibleOnly filters routing results down to those fitting the SLA.
func FeasibleOnly(results []model.RoutingResult) []model.RoutingResult {
	var out []model.RoutingResult
	for _, res := range results {
		if res.FitsSLA {
			out = append(out, res)
		}
	}
	return out
}

func legStatus(legs []Leg) string {
	if len(legs) == 0 {
		return "empty response"
	}
	return legs[0].Status
}
