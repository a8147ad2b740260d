package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheetahx/dispatch/core/model"
	"github.com/cheetahx/dispatch/core/routing"
)

var testNow = time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

type fakeDirectory struct {
	drivers []model.Driver
	err     error
}

func (f *fakeDirectory) ListActive(context.Context) ([]model.Driver, error) {
	return f.drivers, f.err
}

func (f *fakeDirectory) GetByID(_ context.Context, id string) (*model.Driver, error) {
	for i := range f.drivers {
		if f.drivers[i].ID == id {
			return &f.drivers[i], nil
		}
	}
	return nil, nil
}

type fakeRoutes struct {
	perDriverMinutes map[string]int
	sharedMinutes    int
	sharedErr        error
	calls            int
	driverOrder      []string
}

func (f *fakeRoutes) DistanceMatrix(_ context.Context, origins []model.Coordinates, _ model.Coordinates) ([]routing.Leg, error) {
	f.calls++
	if len(origins) == 1 && f.calls > 1 {
		// Shared pickup to dropoff leg.
		if f.sharedErr != nil {
			return nil, f.sharedErr
		}
		return []routing.Leg{{Duration: time.Duration(f.sharedMinutes) * time.Minute, DistanceKm: 5, OK: true, Status: "OK"}}, nil
	}
	legs := make([]routing.Leg, len(origins))
	for i, o := range origins {
		// Driver identity is smuggled through the latitude for the fake.
		id := f.driverOrder[int(o.Lat)]
		legs[i] = routing.Leg{
			Duration:   time.Duration(f.perDriverMinutes[id]) * time.Minute,
			DistanceKm: 10,
			OK:         true,
			Status:     "OK",
		}
	}
	return legs, nil
}

func compliantDriver(idx int, id, name string) model.Driver {
	return model.Driver{
		ID:                     id,
		Name:                   name,
		Position:               model.Coordinates{Lat: float64(idx)},
		Status:                 model.DriverActive,
		VehicleClass:           "car",
		LicenseExpiry:          testNow.AddDate(1, 0, 0),
		KmBudgetRemainingToday: 200,
		ShiftStart:             testNow.Add(-2 * time.Hour),
		ShiftEnd:               testNow.Add(10 * time.Hour),
	}
}

func dispatchOrder() model.Order {
	return model.Order{
		ID:           "ORD001",
		VehicleClass: model.VehicleCar,
		Pickup:       model.Coordinates{Address: "12 Baker St"},
		Dropoff:      model.Coordinates{Address: "90 King Rd"},
		Window: model.TimeWindow{
			PickupBy:  testNow.Add(1 * time.Hour),
			DeliverBy: testNow.Add(3 * time.Hour),
		},
	}
}

func newTestPipeline(dir *fakeDirectory, routes *fakeRoutes, agent CallAgent, sink *recordingAudit) *Pipeline {
	return NewPipeline(Deps{
		Directory: dir,
		Routes:    routes,
		Agent:     agent,
		Audit:     sink,
		Now:       func() time.Time { return testNow },
	})
}

func TestProcessOrder_ValidationErrorSkipsPipeline(t *testing.T) {
	sink := &recordingAudit{}
	p := newTestPipeline(&fakeDirectory{}, &fakeRoutes{}, &scriptedAgent{}, sink)

	bad := dispatchOrder()
	bad.ID = ""
	_, err := p.ProcessOrder(context.Background(), bad)
	require.Error(t, err)
	assert.Empty(t, sink.orders)
}

func TestProcessOrder_AssignsFirstAcceptingDriver(t *testing.T) {
	drivers := []model.Driver{
		compliantDriver(0, "D1", "Alice"),
		compliantDriver(1, "D2", "Bob"),
	}
	routes := &fakeRoutes{
		perDriverMinutes: map[string]int{"D1": 10, "D2": 40},
		sharedMinutes:    15,
		driverOrder:      []string{"D1", "D2"},
	}
	agent := &scriptedAgent{outcomes: map[string]model.CallOutcome{"D1": model.CallAccepted}}
	sink := &recordingAudit{}
	p := newTestPipeline(&fakeDirectory{drivers: drivers}, routes, agent, sink)

	result, err := p.ProcessOrder(context.Background(), dispatchOrder())
	require.NoError(t, err)
	assert.Equal(t, model.StatusAssigned, result.Status)
	assert.Equal(t, "D1", result.AssignedDriverID)
	assert.Equal(t, "Alice", result.AssignedDriverName)
	assert.Equal(t, 2, result.DriversConsidered)
	assert.Equal(t, 1, result.DriversCalled)
	assert.Equal(t, []string{"D1"}, sink.assigned)
	assert.Equal(t, 1, sink.rankings)
}

func TestProcessOrder_BestRankedDriverCalledFirst(t *testing.T) {
	drivers := []model.Driver{
		compliantDriver(0, "D1", "Alice"),
		compliantDriver(1, "D2", "Bob"),
	}
	// D2 is much closer so it outranks D1 despite pool order.
	routes := &fakeRoutes{
		perDriverMinutes: map[string]int{"D1": 60, "D2": 5},
		sharedMinutes:    15,
		driverOrder:      []string{"D1", "D2"},
	}
	agent := &scriptedAgent{outcomes: map[string]model.CallOutcome{"D2": model.CallAccepted}}
	p := newTestPipeline(&fakeDirectory{drivers: drivers}, routes, agent, &recordingAudit{})

	result, err := p.ProcessOrder(context.Background(), dispatchOrder())
	require.NoError(t, err)
	assert.Equal(t, "D2", result.AssignedDriverID)
	assert.Equal(t, []string{"D2"}, agent.called)
}

func TestProcessOrder_NoActiveDrivers(t *testing.T) {
	sink := &recordingAudit{}
	p := newTestPipeline(&fakeDirectory{}, &fakeRoutes{}, &scriptedAgent{}, sink)

	result, err := p.ProcessOrder(context.Background(), dispatchOrder())
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, result.Status)
	assert.Equal(t, ReasonNoActiveDrivers, result.Reason)
	assert.Equal(t, []string{ReasonNoActiveDrivers}, sink.failed)
}

func TestProcessOrder_NoEligibleDrivers(t *testing.T) {
	d := compliantDriver(0, "D1", "Alice")
	d.VehicleClass = "truck"
	routes := &fakeRoutes{}
	p := newTestPipeline(&fakeDirectory{drivers: []model.Driver{d}}, routes, &scriptedAgent{}, &recordingAudit{})

	result, err := p.ProcessOrder(context.Background(), dispatchOrder())
	require.NoError(t, err)
	assert.Equal(t, ReasonNoEligibleDrivers, result.Reason)
	assert.Zero(t, routes.calls)
}

func TestProcessOrder_NoFeasibleDrivers(t *testing.T) {
	drivers := []model.Driver{compliantDriver(0, "D1", "Alice")}
	routes := &fakeRoutes{
		perDriverMinutes: map[string]int{"D1": 600},
		sharedMinutes:    15,
		driverOrder:      []string{"D1"},
	}
	agent := &scriptedAgent{}
	p := newTestPipeline(&fakeDirectory{drivers: drivers}, routes, agent, &recordingAudit{})

	result, err := p.ProcessOrder(context.Background(), dispatchOrder())
	require.NoError(t, err)
	assert.Equal(t, ReasonNoFeasibleDrivers, result.Reason)
	assert.Empty(t, agent.called)
}

func TestProcessOrder_AllDriversDecline(t *testing.T) {
	drivers := []model.Driver{
		compliantDriver(0, "D1", "Alice"),
		compliantDriver(1, "D2", "Bob"),
	}
	routes := &fakeRoutes{
		perDriverMinutes: map[string]int{"D1": 10, "D2": 20},
		sharedMinutes:    15,
		driverOrder:      []string{"D1", "D2"},
	}
	agent := &scriptedAgent{} // every call declines
	p := newTestPipeline(&fakeDirectory{drivers: drivers}, routes, agent, &recordingAudit{})

	result, err := p.ProcessOrder(context.Background(), dispatchOrder())
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, result.Status)
	assert.Equal(t, ReasonAllDeclined, result.Reason)
	assert.Equal(t, 2, result.DriversCalled)
}

func TestProcessOrder_DirectoryErrorIsSystemFailure(t *testing.T) {
	p := newTestPipeline(&fakeDirectory{err: errors.New("directory down")}, &fakeRoutes{}, &scriptedAgent{}, &recordingAudit{})

	result, err := p.ProcessOrder(context.Background(), dispatchOrder())
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, result.Status)
	assert.True(t, strings.HasPrefix(result.Reason, "system error: "))
	assert.Contains(t, result.Reason, "directory down")
}

func TestProcessOrder_SharedLegFailureIsSystemFailure(t *testing.T) {
	drivers := []model.Driver{compliantDriver(0, "D1", "Alice")}
	routes := &fakeRoutes{
		perDriverMinutes: map[string]int{"D1": 10},
		sharedErr:        errors.New("matrix unavailable"),
		driverOrder:      []string{"D1"},
	}
	p := newTestPipeline(&fakeDirectory{drivers: drivers}, routes, &scriptedAgent{}, &recordingAudit{})

	result, err := p.ProcessOrder(context.Background(), dispatchOrder())
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, result.Status)
	assert.Contains(t, result.Reason, "system error")
}
