// Package ranking orders feasible candidates best-first using a weighted
// score over ETA, remaining km budget and license headroom.
package ranking

import (
	"math"
	"sort"
	"time"

	"github.com/cheetahx/dispatch/core/logger"
	"github.com/cheetahx/dispatch/core/model"
)

// Scoring weights. ETA dominates: a closer driver beats a marginally
// better-licensed one.
const (
	WeightETA      = 0.50
	WeightKmBudget = 0.25
	WeightLicense  = 0.25
)

// Normalization caps. Values beyond a cap contribute the same as the cap
// itself, keeping outliers from flattening the rest of the field.
const (
	MaxETA        = 120 * time.Minute
	MaxKmBudget   = 300.0
	MaxLicenseDay = 365
)

// Engine ranks candidates. The zero value is usable.
type Engine struct {
	log logger.Logger
}

// NewEngine returns a ranking engine logging through the given logger.
func NewEngine(log logger.Logger) Engine {
	return Engine{log: log}
}

// Score computes the 0-100 composite score for one candidate. Lower ETA
// scores higher; more remaining km budget and license headroom score higher.
func Score(driver model.Driver, routing model.RoutingResult, compliance model.ComplianceResult) float64 {
	etaMin := math.Min(routing.ETAToPickup.Minutes(), MaxETA.Minutes())
	kmBudget := math.Min(driver.KmBudgetRemainingToday, MaxKmBudget)
	licDays := math.Min(float64(compliance.LicenseDaysRemaining), MaxLicenseDay)

	raw := WeightETA*(1-etaMin/MaxETA.Minutes()) +
		WeightKmBudget*(kmBudget/MaxKmBudget) +
		WeightLicense*(licDays/MaxLicenseDay)

	return round2(raw * 100)
}

// Rank scores the given drivers and returns them best-first with 1-based
// ranks. Every driver must have a matching routing and compliance result;
// drivers missing either are skipped. Equal scores break ties by driver ID
// ascending so the order is deterministic.
func (e Engine) Rank(drivers []model.Driver, routing []model.RoutingResult, compliance []model.ComplianceResult) []model.RankedCandidate {
	routeByID := make(map[string]model.RoutingResult, len(routing))
	for _, r := range routing {
		routeByID[r.DriverID] = r
	}
	compByID := make(map[string]model.ComplianceResult, len(compliance))
	for _, c := range compliance {
		compByID[c.DriverID] = c
	}

	candidates := make([]model.RankedCandidate, 0, len(drivers))
	for _, d := range drivers {
		route, ok := routeByID[d.ID]
		if !ok {
			continue
		}
		comp, ok := compByID[d.ID]
		if !ok {
			continue
		}
		candidates = append(candidates, model.RankedCandidate{
			Driver:     d,
			Score:      Score(d, route, comp),
			Compliance: comp,
			Routing:    route,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Driver.ID < candidates[j].Driver.ID
	})
	for i := range candidates {
		candidates[i].Rank = i + 1
	}

	if e.log != nil && len(candidates) > 0 {
		e.log.Infof("ranking: top candidate %s (score %.2f) of %d",
			candidates[0].Driver.ID, candidates[0].Score, len(candidates))
	}
	return candidates
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
