package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheetahx/dispatch/config"
	"github.com/cheetahx/dispatch/core/model"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		App:       config.AppConfig{ListenAddr: ":0"},
		Directory: config.DirectoryConfig{Mode: "static"},
		Routing:   config.RoutingConfig{Mode: "mock"},
		Callout: config.CalloutConfig{
			Mode: "mock",
			Mock: config.MockCalloutConfig{AcceptanceRate: 1.0, Seed: 7},
		},
		Audit: config.AuditConfig{
			Backend: "jsonl",
			Path:    filepath.Join(t.TempDir(), "audit.jsonl"),
		},
	}
}

func sampleOrder(now time.Time) model.Order {
	return model.Order{
		ID:           "ORD-SVC-1",
		Pickup:       model.Coordinates{Lat: 37.7749, Lng: -122.4194, Address: "Market St"},
		Dropoff:      model.Coordinates{Lat: 37.8044, Lng: -122.2712, Address: "Broadway"},
		Window:       model.TimeWindow{PickupBy: now.Add(45 * time.Minute), DeliverBy: now.Add(3 * time.Hour)},
		VehicleClass: model.VehicleCar,
		Customer:     model.CustomerInfo{Name: "Dana", Phone: "+14155550100"},
		CreatedAt:    now,
	}
}

func TestServiceProcessOrder(t *testing.T) {
	svc, err := New(testConfig(t))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	sub := svc.Bus.Subscribe()
	result, err := svc.ProcessOrder(context.Background(), sampleOrder(time.Now()))
	require.NoError(t, err)

	assert.Equal(t, model.StatusAssigned, result.Status)
	assert.NotEmpty(t, result.AssignedDriverID)

	select {
	case ev := <-sub:
		assert.Equal(t, result.OrderID, ev.OrderID)
	default:
		t.Fatal("result not published on the bus")
	}
}

func TestServiceRejectsInvalidOrder(t *testing.T) {
	svc, err := New(testConfig(t))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	sub := svc.Bus.Subscribe()
	_, err = svc.ProcessOrder(context.Background(), model.Order{})
	require.Error(t, err)

	select {
	case <-sub:
		t.Fatal("invalid order must not be published")
	default:
	}
}

func TestServiceRejectsUnknownModes(t *testing.T) {
	cfg := testConfig(t)
	cfg.Callout.Mode = "carrier-pigeon"
	_, err := New(cfg)
	require.Error(t, err)

	cfg = testConfig(t)
	cfg.Directory.Mode = "ouija"
	_, err = New(cfg)
	require.Error(t, err)
}
