package model

import "time"

// DriverStatus reflects whether a driver can currently take work.
type DriverStatus string

const (
	DriverActive  DriverStatus = "active"
	DriverBusy    DriverStatus = "busy"
	DriverOffline DriverStatus = "offline"
)

// Driver is a read-only snapshot of a courier taken from the directory at
// the start of one pipeline run.
type Driver struct {
	ID                     string       `json:"driver_id"`
	Name                   string       `json:"name"`
	Phone                  string       `json:"phone"`
	Position               Coordinates  `json:"current_gps"`
	Status                 DriverStatus `json:"status"`
	VehicleClass           string       `json:"vehicle_type"`
	LicenseExpiry          time.Time    `json:"license_expiry"`
	KmBudgetRemainingToday float64      `json:"km_budget_remaining_today"`
	ShiftStart             time.Time    `json:"shift_start"`
	ShiftEnd               time.Time    `json:"shift_end"`
}
