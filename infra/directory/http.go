// Package directory provides driver-directory backends: the Yutori fleet API
// for real deployments and an in-memory fixture pool for local runs.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cheetahx/dispatch/core/logger"
	"github.com/cheetahx/dispatch/core/model"
)

// HTTPConfig configures the Yutori directory client.
type HTTPConfig struct {
	BaseURL string        `koanf:"base_url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

// HTTPDirectory talks to the Yutori fleet API, which serves live GPS
// positions, availability, vehicle and license data, shift windows and km
// budgets per driver.
type HTTPDirectory struct {
	client  *http.Client
	baseURL string
	apiKey  string
	log     logger.Logger
}

// NewHTTPDirectory builds a directory client.
func NewHTTPDirectory(cfg HTTPConfig, log logger.Logger) *HTTPDirectory {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &HTTPDirectory{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		log:     log,
	}
}

type wireDriver struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Status   string `json:"status"`
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
	VehicleType string `json:"vehicle_type"`
	License     struct {
		ExpiryDate time.Time `json:"expiry_date"`
	} `json:"license"`
	KmBudgetRemaining float64 `json:"km_budget_remaining"`
	Shift             struct {
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
	} `json:"shift"`
}

func (w wireDriver) toModel() model.Driver {
	status := w.Status
	if status == "" {
		status = string(model.DriverActive)
	}
	vehicle := w.VehicleType
	if vehicle == "" {
		vehicle = "car"
	}
	return model.Driver{
		ID:                     w.ID,
		Name:                   w.Name,
		Phone:                  w.Phone,
		Position:               model.Coordinates{Lat: w.Location.Lat, Lng: w.Location.Lng},
		Status:                 model.DriverStatus(status),
		VehicleClass:           vehicle,
		LicenseExpiry:          w.License.ExpiryDate,
		KmBudgetRemainingToday: w.KmBudgetRemaining,
		ShiftStart:             w.Shift.Start,
		ShiftEnd:               w.Shift.End,
	}
}

// ListActive fetches drivers whose status is active.
func (d *HTTPDirectory) ListActive(ctx context.Context) ([]model.Driver, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/drivers?status=active", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+d.apiKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory request: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Drivers []wireDriver `json:"drivers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding directory response: %w", err)
	}

	drivers := make([]model.Driver, 0, len(body.Drivers))
	for _, w := range body.Drivers {
		drivers = append(drivers, w.toModel())
	}
	if d.log != nil {
		d.log.Infof("fetched %d active drivers", len(drivers))
	}
	return drivers, nil
}

// GetByID resolves one driver, nil when the directory does not know it.
func (d *HTTPDirectory) GetByID(ctx context.Context, id string) (*model.Driver, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/drivers/"+id, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+d.apiKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory request: unexpected status %d", resp.StatusCode)
	}

	var w wireDriver
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		return nil, fmt.Errorf("decoding directory response: %w", err)
	}
	driver := w.toModel()
	return &driver, nil
}
