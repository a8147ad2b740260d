package model

import (
	"fmt"
	"time"
)

// VehicleClass identifies the vehicle category required by an order or
// operated by a driver.
type VehicleClass string

const (
	VehicleBike       VehicleClass = "bike"
	VehicleMotorcycle VehicleClass = "motorcycle"
	VehicleCar        VehicleClass = "car"
	VehicleVan        VehicleClass = "van"
	VehicleTruck      VehicleClass = "truck"
)

// Coordinates is a geographic point with an optional human-readable address.
type Coordinates struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

// Label returns the address when known, otherwise the raw coordinates.
func (c Coordinates) Label() string {
	if c.Address != "" {
		return c.Address
	}
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lng)
}

// TimeWindow bounds an order: the driver must reach the pickup by PickupBy
// and the package must be delivered by DeliverBy.
type TimeWindow struct {
	PickupBy  time.Time `json:"pickup_by"`
	DeliverBy time.Time `json:"deliver_by"`
}

// CustomerInfo holds the contact details of the ordering customer.
type CustomerInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// Order is a delivery request. Once accepted into the pipeline it is treated
// as immutable.
type Order struct {
	ID                  string       `json:"order_id"`
	Pickup              Coordinates  `json:"pickup"`
	Dropoff             Coordinates  `json:"dropoff"`
	Window              TimeWindow   `json:"time_window"`
	VehicleClass        VehicleClass `json:"vehicle_type"`
	Customer            CustomerInfo `json:"customer_info"`
	PackageDescription  string       `json:"package_description,omitempty"`
	SpecialInstructions string       `json:"special_instructions,omitempty"`
	Priority            int          `json:"priority"`
	CreatedAt           time.Time    `json:"created_at"`
}

// Validate checks that the order is complete enough to dispatch.
func (o Order) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("order id is required")
	}
	if o.VehicleClass == "" {
		return fmt.Errorf("order %s: vehicle class is required", o.ID)
	}
	if o.Window.PickupBy.IsZero() || o.Window.DeliverBy.IsZero() {
		return fmt.Errorf("order %s: time window is required", o.ID)
	}
	if !o.Window.DeliverBy.After(o.Window.PickupBy) {
		return fmt.Errorf("order %s: deliver-by must be after pickup-by", o.ID)
	}
	return nil
}

// OrderStatus is the terminal status of a dispatch run.
type OrderStatus string

const (
	StatusAssigned OrderStatus = "assigned"
	StatusFailed   OrderStatus = "failed"
)
