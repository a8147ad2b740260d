package callout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheetahx/dispatch/core/model"
)

func testCandidate() model.RankedCandidate {
	return model.RankedCandidate{
		Driver: model.Driver{ID: "DRV001", Name: "Sarah", Phone: "+1-555-0101"},
		Rank:   1,
		Routing: model.RoutingResult{
			ETAToPickup:   10 * time.Minute,
			TotalTripTime: 25 * time.Minute,
		},
	}
}

func fastRemote(baseURL string) *RemoteAgent {
	return NewRemoteAgent(RemoteConfig{
		BaseURL:      baseURL,
		APIKey:       "secret",
		CallerNumber: "+1-555-9999",
		PollInterval: 5 * time.Millisecond,
		CallTimeout:  500 * time.Millisecond,
	}, nil)
}

func TestRemoteAgent_CompletedCall(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/calls":
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			var req initiateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "+1-555-0101", req.To)
			assert.Equal(t, "+1-555-9999", req.From)
			assert.Contains(t, req.Script, "Cheetah Express")
			assert.Equal(t, "DRV001", req.Metadata["driver_id"])
			w.Write([]byte(`{"call_id": "CALL42"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/calls/CALL42":
			if polls.Add(1) < 2 {
				w.Write([]byte(`{"status": "in_progress"}`))
				return
			}
			w.Write([]byte(`{
				"status": "completed",
				"driver_response": "accepted",
				"sentiment": {"score": 0.8},
				"duration_seconds": 42.5
			}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	rec := fastRemote(srv.URL).CallDriver(context.Background(), testCandidate(), model.Order{ID: "ORD001"})
	assert.Equal(t, model.CallAccepted, rec.Outcome)
	assert.InDelta(t, 0.8, rec.SentimentScore, 1e-9)
	assert.Equal(t, 42500*time.Millisecond, rec.Duration)
	assert.GreaterOrEqual(t, polls.Load(), int32(2))
}

func TestRemoteAgent_CeilingYieldsNoAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.Write([]byte(`{"call_id": "CALL1"}`))
			return
		}
		w.Write([]byte(`{"status": "ringing"}`))
	}))
	defer srv.Close()

	agent := NewRemoteAgent(RemoteConfig{
		BaseURL:      srv.URL,
		PollInterval: 5 * time.Millisecond,
		CallTimeout:  30 * time.Millisecond,
	}, nil)
	rec := agent.CallDriver(context.Background(), testCandidate(), model.Order{ID: "ORD001"})
	assert.Equal(t, model.CallNoAnswer, rec.Outcome)
}

func TestRemoteAgent_InitiationFailureIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	rec := fastRemote(srv.URL).CallDriver(context.Background(), testCandidate(), model.Order{ID: "ORD001"})
	assert.Equal(t, model.CallError, rec.Outcome)
	assert.Contains(t, rec.DeclineReason, "503")
}

func TestRemoteAgent_UnknownResponseMapsToNoAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.Write([]byte(`{"call_id": "CALL1"}`))
			return
		}
		w.Write([]byte(`{"status": "failed", "driver_response": "gibberish"}`))
	}))
	defer srv.Close()

	rec := fastRemote(srv.URL).CallDriver(context.Background(), testCandidate(), model.Order{ID: "ORD001"})
	assert.Equal(t, model.CallNoAnswer, rec.Outcome)
}

func TestMockAgent_Deterministic(t *testing.T) {
	a := NewMockAgent(1.0, 7, nil)
	rec := a.CallDriver(context.Background(), testCandidate(), model.Order{ID: "ORD001"})
	assert.Equal(t, model.CallAccepted, rec.Outcome)
	assert.GreaterOrEqual(t, rec.SentimentScore, 0.6)

	// Acceptance rate of 1.0 always accepts; a fresh seeded agent repeats itself.
	b := NewMockAgent(1.0, 7, nil)
	rec2 := b.CallDriver(context.Background(), testCandidate(), model.Order{ID: "ORD001"})
	assert.Equal(t, rec.Outcome, rec2.Outcome)
	assert.Equal(t, rec.SentimentScore, rec2.SentimentScore)
}
