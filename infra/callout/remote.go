package callout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cheetahx/dispatch/core/logger"
	"github.com/cheetahx/dispatch/core/model"
	"github.com/cheetahx/dispatch/core/voice"
)

// Remote call defaults.
const (
	DefaultPollInterval = 3 * time.Second
	DefaultCallTimeout  = 120 * time.Second
)

// RemoteConfig configures the telephony backend.
type RemoteConfig struct {
	BaseURL      string        `koanf:"base_url"`
	APIKey       string        `koanf:"api_key"`
	CallerNumber string        `koanf:"caller_number"`
	PollInterval time.Duration `koanf:"poll_interval"`
	CallTimeout  time.Duration `koanf:"call_timeout"`
}

// RemoteAgent places calls through an external voice API: initiate the call,
// then poll its status until a terminal state or the per-call ceiling. The
// ceiling guarantees no candidate stalls the dispatch loop.
type RemoteAgent struct {
	client *http.Client
	cfg    RemoteConfig
	log    logger.Logger
}

// NewRemoteAgent builds a telephony-backed call agent.
func NewRemoteAgent(cfg RemoteConfig, log logger.Logger) *RemoteAgent {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	return &RemoteAgent{
		client: &http.Client{Timeout: 30 * time.Second},
		cfg:    cfg,
		log:    log,
	}
}

type initiateRequest struct {
	To       string            `json:"to"`
	From     string            `json:"from"`
	Script   string            `json:"script"`
	Metadata map[string]string `json:"metadata"`
}

type callStatus struct {
	Status         string `json:"status"`
	DriverResponse string `json:"driver_response"`
	Sentiment      struct {
		Score float64 `json:"score"`
	} `json:"sentiment"`
	DeclineReason   string  `json:"decline_reason"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// CallDriver initiates the call and polls to its terminal outcome.
func (a *RemoteAgent) CallDriver(ctx context.Context, cand model.RankedCandidate, order model.Order) model.CallRecord {
	rec := model.CallRecord{
		DriverID:       cand.Driver.ID,
		SentimentScore: 0.5,
		Timestamp:      time.Now().UTC(),
	}

	callID, err := a.initiate(ctx, cand, order)
	if err != nil {
		if a.log != nil {
			a.log.Errorf("call initiation for driver %s failed: %v", cand.Driver.ID, err)
		}
		rec.Outcome = model.CallError
		rec.DeclineReason = err.Error()
		return rec
	}
	if a.log != nil {
		a.log.Infof("call %s initiated for driver %s", callID, cand.Driver.ID)
	}

	deadline := time.Now().Add(a.cfg.CallTimeout)
	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			rec.Outcome = model.CallNoAnswer
			rec.DeclineReason = "call timed out"
			return rec
		case <-ticker.C:
		}

		status, err := a.poll(ctx, callID)
		if err != nil {
			if a.log != nil {
				a.log.Warnf("poll error for call %s: %v", callID, err)
			}
			continue
		}

		switch status.Status {
		case "completed", "failed", "no_answer":
			outcome := model.CallOutcome(status.DriverResponse)
			switch outcome {
			case model.CallAccepted, model.CallDeclined, model.CallNoAnswer, model.CallError:
			default:
				outcome = model.CallNoAnswer
			}
			rec.Outcome = outcome
			if status.Sentiment.Score > 0 {
				rec.SentimentScore = status.Sentiment.Score
			}
			rec.DeclineReason = status.DeclineReason
			rec.Duration = time.Duration(status.DurationSeconds * float64(time.Second))
			return rec
		}
	}

	if a.log != nil {
		a.log.Warnf("call %s timed out after %s", callID, a.cfg.CallTimeout)
	}
	rec.Outcome = model.CallNoAnswer
	return rec
}

func (a *RemoteAgent) initiate(ctx context.Context, cand model.RankedCandidate, order model.Order) (string, error) {
	payload, err := json.Marshal(initiateRequest{
		To:     cand.Driver.Phone,
		From:   a.cfg.CallerNumber,
		Script: voice.BuildScript(cand.Driver, order, cand.Routing),
		Metadata: map[string]string{
			"order_id":  order.ID,
			"driver_id": cand.Driver.ID,
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/calls", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("initiating call: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("initiating call: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		CallID string `json:"call_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding call response: %w", err)
	}
	if body.CallID == "" {
		return "", fmt.Errorf("call response missing call_id")
	}
	return body.CallID, nil
}

func (a *RemoteAgent) poll(ctx context.Context, callID string) (callStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.BaseURL+"/calls/"+callID, nil)
	if err != nil {
		return callStatus{}, err
	}
	req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return callStatus{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return callStatus{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var status callStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return callStatus{}, err
	}
	return status, nil
}
