package model

import "time"

// ComplianceResult is the outcome of evaluating one driver against the
// eligibility rules for one order. It is created once and never mutated.
type ComplianceResult struct {
	DriverID             string   `json:"driver_id"`
	Eligible             bool     `json:"eligible"`
	FailureReasons       []string `json:"failure_reasons,omitempty"`
	LicenseDaysRemaining int      `json:"license_days_remaining"`
	LicenseValid         bool     `json:"license_valid"`
	VehicleMatch         bool     `json:"vehicle_match"`
	KmBudgetOK           bool     `json:"km_budget_ok"`
	ShiftWindowOK        bool     `json:"shift_window_ok"`
}

// RoutingResult carries the travel estimates for one (driver, order) pair.
// Drivers for which no viable route exists get no RoutingResult at all.
type RoutingResult struct {
	DriverID        string        `json:"driver_id"`
	ETAToPickup     time.Duration `json:"eta_to_pickup"`
	TotalTripTime   time.Duration `json:"total_trip_time"`
	TotalDistanceKm float64       `json:"total_distance_km"`
	FitsSLA         bool          `json:"fits_sla"`
}

// RankedCandidate is a driver that passed both the eligibility and the SLA
// feasibility gates, scored and positioned in best-first order (rank 1 = best).
type RankedCandidate struct {
	Driver     Driver           `json:"driver"`
	Score      float64          `json:"score"`
	Rank       int              `json:"rank"`
	Compliance ComplianceResult `json:"compliance"`
	Routing    RoutingResult    `json:"routing"`
}

// CallOutcome is the terminal outcome of one call session.
type CallOutcome string

const (
	CallAccepted CallOutcome = "accepted"
	CallDeclined CallOutcome = "declined"
	CallNoAnswer CallOutcome = "no_answer"
	CallError    CallOutcome = "error"
)

// CallRecord summarizes one finished call session with a candidate.
type CallRecord struct {
	DriverID       string        `json:"driver_id"`
	Outcome        CallOutcome   `json:"outcome"`
	SentimentScore float64       `json:"sentiment_score"`
	DeclineReason  string        `json:"decline_reason,omitempty"`
	Transcript     string        `json:"transcript,omitempty"`
	Duration       time.Duration `json:"call_duration"`
	Timestamp      time.Time     `json:"timestamp"`
}

// DispatchResult is the terminal summary of one order's pipeline run. The
// pipeline always produces one, whatever happened along the way.
type DispatchResult struct {
	OrderID            string        `json:"order_id"`
	Status             OrderStatus   `json:"status"`
	AssignedDriverID   string        `json:"assigned_driver_id,omitempty"`
	AssignedDriverName string        `json:"assigned_driver_name,omitempty"`
	DriversConsidered  int           `json:"total_drivers_considered"`
	DriversCalled      int           `json:"total_drivers_called"`
	Reason             string        `json:"reason,omitempty"`
	ProcessingTime     time.Duration `json:"processing_time"`
}
