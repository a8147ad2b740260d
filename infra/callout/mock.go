package callout

import (
	"context"
	"math/rand"
	"time"

	"github.com/cheetahx/dispatch/core/logger"
	"github.com/cheetahx/dispatch/core/model"
)

var mockDeclineReasons = []string{
	"Already have another delivery",
	"Too far from current location",
	"Taking a break",
	"Vehicle maintenance needed",
	"End of shift approaching",
}

// MockAgent simulates calls without any audio or network, accepting a
// configurable fraction of offers. Used for demos and load tests.
type MockAgent struct {
	acceptanceRate float64
	rng            *rand.Rand
	log            logger.Logger
}

// NewMockAgent builds a mock agent. Rate outside (0,1] falls back to 0.7;
// seed zero uses the current time.
func NewMockAgent(acceptanceRate float64, seed int64, log logger.Logger) *MockAgent {
	if acceptanceRate <= 0 || acceptanceRate > 1 {
		acceptanceRate = 0.7
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &MockAgent{
		acceptanceRate: acceptanceRate,
		rng:            rand.New(rand.NewSource(seed)),
		log:            log,
	}
}

// CallDriver fabricates a plausible outcome for the candidate.
func (m *MockAgent) CallDriver(_ context.Context, cand model.RankedCandidate, _ model.Order) model.CallRecord {
	rec := model.CallRecord{
		DriverID:  cand.Driver.ID,
		Duration:  time.Duration(2+m.rng.Intn(8)) * time.Second,
		Timestamp: time.Now().UTC(),
	}

	if m.rng.Float64() < m.acceptanceRate {
		rec.Outcome = model.CallAccepted
		rec.SentimentScore = 0.6 + m.rng.Float64()*0.4
	} else {
		rec.Outcome = model.CallDeclined
		rec.SentimentScore = 0.2 + m.rng.Float64()*0.3
		rec.DeclineReason = mockDeclineReasons[m.rng.Intn(len(mockDeclineReasons))]
	}

	if m.log != nil {
		m.log.Infof("mock call to %s: %s", cand.Driver.ID, rec.Outcome)
	}
	return rec
}
