package directory

import (
	"context"
	"time"

	"github.com/cheetahx/dispatch/core/model"
)

// StaticDirectory serves a fixed in-memory pool, used for local runs and
// demos when no fleet API is reachable.
type StaticDirectory struct {
	drivers []model.Driver
}

// NewStaticDirectory wraps the given pool.
func NewStaticDirectory(drivers []model.Driver) *StaticDirectory {
	return &StaticDirectory{drivers: drivers}
}

// ListActive returns the drivers marked active.
func (s *StaticDirectory) ListActive(context.Context) ([]model.Driver, error) {
	out := make([]model.Driver, 0, len(s.drivers))
	for _, d := range s.drivers {
		if d.Status == model.DriverActive {
			out = append(out, d)
		}
	}
	return out, nil
}

// GetByID resolves a driver from the pool, nil when absent.
func (s *StaticDirectory) GetByID(_ context.Context, id string) (*model.Driver, error) {
	for i := range s.drivers {
		if s.drivers[i].ID == id {
			d := s.drivers[i]
			return &d, nil
		}
	}
	return nil, nil
}

// FixturePool returns a demo fleet spread around downtown San Francisco,
// with license expiries and shifts relative to now.
func FixturePool(now time.Time) []model.Driver {
	shiftStart := now.Add(-2 * time.Hour)
	shiftEnd := now.Add(8 * time.Hour)
	fixture := func(id, name, phone string, lat, lng float64, vehicle string, licenseDays int, kmBudget float64) model.Driver {
		return model.Driver{
			ID:                     id,
			Name:                   name,
			Phone:                  phone,
			Position:               model.Coordinates{Lat: lat, Lng: lng},
			Status:                 model.DriverActive,
			VehicleClass:           vehicle,
			LicenseExpiry:          now.AddDate(0, 0, licenseDays),
			KmBudgetRemainingToday: kmBudget,
			ShiftStart:             shiftStart,
			ShiftEnd:               shiftEnd,
		}
	}
	return []model.Driver{
		fixture("DRV001", "John Smith", "+1-555-0101", 37.7897, -122.4072, "car", 365, 180),
		fixture("DRV002", "Sarah Johnson", "+1-555-0102", 37.7939, -122.3959, "car", 550, 220),
		fixture("DRV003", "Mike Chen", "+1-555-0103", 37.7929, -122.4047, "van", 75, 150),
		fixture("DRV004", "Emily Davis", "+1-555-0104", 37.7921, -122.3989, "car", 650, 90),
		fixture("DRV005", "Carlos Rodriguez", "+1-555-0105", 37.7898, -122.3942, "truck", 330, 260),
		fixture("DRV006", "Lisa Wang", "+1-555-0106", 37.7908, -122.4042, "motorcycle", 200, 120),
		fixture("DRV007", "James Wilson", "+1-555-0107", 37.7897, -122.3972, "car", 450, 40),
		fixture("DRV008", "Maria Garcia", "+1-555-0108", 37.7916, -122.4039, "van", 500, 200),
	}
}
