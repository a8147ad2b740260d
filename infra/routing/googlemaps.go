// Package routing provides route-service backends: the Google Distance
// Matrix API for real deployments and a haversine estimator for local runs.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cheetahx/dispatch/core/logger"
	"github.com/cheetahx/dispatch/core/model"
	coreroute "github.com/cheetahx/dispatch/core/routing"
)

const defaultMatrixURL = "https://maps.googleapis.com/maps/api/distancematrix/json"

// GoogleMapsConfig configures the Distance Matrix client.
type GoogleMapsConfig struct {
	APIKey  string        `koanf:"api_key"`
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// GoogleMapsService implements the route service against the Google
// Distance Matrix API.
type GoogleMapsService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	log     logger.Logger
}

// NewGoogleMapsService builds a Distance Matrix client.
func NewGoogleMapsService(cfg GoogleMapsConfig, log logger.Logger) *GoogleMapsService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultMatrixURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &GoogleMapsService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		log:     log,
	}
}

type matrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Rows         []struct {
		Elements []struct {
			Status   string `json:"status"`
			Duration struct {
				Value int64 `json:"value"`
			} `json:"duration"`
			Distance struct {
				Value int64 `json:"value"`
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
}

// DistanceMatrix issues one many-origins/one-destination query and returns
// one leg per origin in input order.
func (g *GoogleMapsService) DistanceMatrix(ctx context.Context, origins []model.Coordinates, destination model.Coordinates) ([]coreroute.Leg, error) {
	parts := make([]string, len(origins))
	for i, o := range origins {
		parts[i] = fmt.Sprintf("%f,%f", o.Lat, o.Lng)
	}

	params := url.Values{}
	params.Set("origins", strings.Join(parts, "|"))
	params.Set("destinations", fmt.Sprintf("%f,%f", destination.Lat, destination.Lng))
	params.Set("mode", "driving")
	params.Set("departure_time", "now")
	params.Set("traffic_model", "best_guess")
	params.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("distance matrix request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("distance matrix request: unexpected status %d", resp.StatusCode)
	}

	var body matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding distance matrix response: %w", err)
	}
	if body.Status != "OK" {
		return nil, fmt.Errorf("distance matrix API error: %s %s", body.Status, body.ErrorMessage)
	}
	if len(body.Rows) != len(origins) {
		return nil, fmt.Errorf("distance matrix returned %d rows for %d origins", len(body.Rows), len(origins))
	}

	legs := make([]coreroute.Leg, len(origins))
	for i, row := range body.Rows {
		if len(row.Elements) == 0 {
			legs[i] = coreroute.Leg{Status: "MISSING_ELEMENT"}
			continue
		}
		el := row.Elements[0]
		legs[i] = coreroute.Leg{
			Duration:   time.Duration(el.Duration.Value) * time.Second,
			DistanceKm: float64(el.Distance.Value) / 1000,
			OK:         el.Status == "OK",
			Status:     el.Status,
		}
	}
	return legs, nil
}
