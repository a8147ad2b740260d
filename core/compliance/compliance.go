// Package compliance evaluates drivers against the dispatch business rules.
//
// Four independent rules gate a driver's eligibility for an order: license
// validity, vehicle class match, remaining daily km budget and shift window
// coverage. Failure reasons are accumulated rather than short-circuited so a
// driver failing several rules reports all of them.
package compliance

import (
	"fmt"
	"strings"
	"time"

	"github.com/cheetahx/dispatch/core/logger"
	"github.com/cheetahx/dispatch/core/model"
)

const (
	// LicenseBufferDays is the minimum number of days a license must remain
	// valid beyond today.
	LicenseBufferDays = 14
	// MinKmRemaining is the minimum daily km budget a driver must have left.
	MinKmRemaining = 20.0
)

// Checker runs the eligibility rules. The zero value is usable.
type Checker struct {
	log logger.Logger
}

// NewChecker returns a Checker logging through the given logger.
func NewChecker(log logger.Logger) Checker {
	return Checker{log: log}
}

// Evaluate runs all four rules for one driver. Pure: it only reads the
// driver snapshot and the order.
func (c Checker) Evaluate(driver model.Driver, order model.Order, now time.Time) model.ComplianceResult {
	var failures []string

	daysRemaining := int(driver.LicenseExpiry.Sub(now).Hours() / 24)
	licenseOK := daysRemaining >= LicenseBufferDays
	if !licenseOK {
		failures = append(failures, fmt.Sprintf(
			"License expires in %dd (minimum %dd buffer required)", daysRemaining, LicenseBufferDays))
	}

	vehicleMatch := strings.EqualFold(driver.VehicleClass, string(order.VehicleClass))
	if !vehicleMatch {
		failures = append(failures, fmt.Sprintf(
			"Vehicle mismatch: driver has '%s', order requires '%s'", driver.VehicleClass, order.VehicleClass))
	}

	kmBudgetOK := driver.KmBudgetRemainingToday >= MinKmRemaining
	if !kmBudgetOK {
		failures = append(failures, fmt.Sprintf(
			"Insufficient km budget: %.1fkm remaining (minimum %.0fkm)", driver.KmBudgetRemainingToday, MinKmRemaining))
	}

	shiftOK := !driver.ShiftStart.After(order.Window.PickupBy) && !driver.ShiftEnd.Before(order.Window.DeliverBy)
	if !shiftOK {
		failures = append(failures, fmt.Sprintf(
			"Shift %s-%s doesn't cover delivery window (%s-%s)",
			driver.ShiftStart.Format("15:04"), driver.ShiftEnd.Format("15:04"),
			order.Window.PickupBy.Format("15:04"), order.Window.DeliverBy.Format("15:04")))
	}

	return model.ComplianceResult{
		DriverID:             driver.ID,
		Eligible:             len(failures) == 0,
		FailureReasons:       failures,
		LicenseDaysRemaining: daysRemaining,
		LicenseValid:         licenseOK,
		VehicleMatch:         vehicleMatch,
		KmBudgetOK:           kmBudgetOK,
		ShiftWindowOK:        shiftOK,
	}
}

// CheckAll evaluates every driver in the pool and returns one result per
// driver in input order.
func (c Checker) CheckAll(drivers []model.Driver, order model.Order, now time.Time) []model.ComplianceResult {
	results := make([]model.ComplianceResult, 0, len(drivers))
	eligible := 0
	for _, d := range drivers {
		res := c.Evaluate(d, order, now)
		if res.Eligible {
			eligible++
		} else if c.log != nil {
			c.log.Debugw("driver failed compliance", map[string]any{
				"driver_id": d.ID,
				"reasons":   res.FailureReasons,
			})
		}
		results = append(results, res)
	}
	if c.log != nil {
		c.log.Infof("compliance: %d/%d drivers passed all rules", eligible, len(drivers))
	}
	return results
}

// EligibleDrivers filters the pool down to drivers whose result is eligible.
func EligibleDrivers(drivers []model.Driver, results []model.ComplianceResult) []model.Driver {
	eligible := make(map[string]bool, len(results))
	for _, r := range results {
		if r.Eligible {
			eligible[r.DriverID] = true
		}
	}
	var out []model.Driver
	for _, d := range drivers {
		if eligible[d.ID] {
			out = append(out, d)
		}
	}
	return out
}
