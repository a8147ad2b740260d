package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cheetahx/dispatch/app"
	"github.com/cheetahx/dispatch/config"
	"github.com/cheetahx/dispatch/core/model"
	"github.com/cheetahx/dispatch/infra/logger"
)

var orderFile string

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Run one order through the dispatch pipeline",
	RunE:  runOrder,
}

func init() {
	orderCmd.Flags().StringVarP(&orderFile, "file", "f", "", "order JSON file (omit for a sample order)")
	rootCmd.AddCommand(orderCmd)
}

func runOrder(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logg := logger.New("order-command")
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logg.Errorf("service close: %v", err)
		}
	}()

	order, err := loadOrder(orderFile)
	if err != nil {
		return err
	}
	result, err := svc.ProcessOrder(ctx, order)
	if err != nil {
		return fmt.Errorf("process order: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func loadOrder(path string) (model.Order, error) {
	if path == "" {
		return sampleOrder(time.Now()), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Order{}, fmt.Errorf("read order: %w", err)
	}
	var order model.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return model.Order{}, fmt.Errorf("parse order: %w", err)
	}
	return order, nil
}

// sampleOrder is a San Francisco delivery matching the static driver pool.
func sampleOrder(now time.Time) model.Order {
	return model.Order{
		ID:                  "ORD-" + uuid.NewString()[:8],
		Pickup:              model.Coordinates{Lat: 37.7749, Lng: -122.4194, Address: "789 Market St, San Francisco"},
		Dropoff:             model.Coordinates{Lat: 37.8044, Lng: -122.2712, Address: "1200 Broadway, Oakland"},
		Window:              model.TimeWindow{PickupBy: now.Add(45 * time.Minute), DeliverBy: now.Add(3 * time.Hour)},
		VehicleClass:        model.VehicleCar,
		Customer:            model.CustomerInfo{Name: "Alex Rivera", Phone: "+14155550123"},
		PackageDescription:  "Two boxes of office supplies",
		SpecialInstructions: "Ring the bell at the loading dock",
		Priority:            1,
		CreatedAt:           now,
	}
}
