// Package audit persists the dispatch audit trail. Events flow through an
// Appender; JSONL and SQLite appenders store them locally and the MQTT
// appender publishes them to the ops broker.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	coreaudit "github.com/cheetahx/dispatch/core/audit"
	"github.com/cheetahx/dispatch/core/model"
)

// Event types, one per pipeline stage.
const (
	EventOrderReceived     = "order_received"
	EventComplianceChecked = "compliance_checked"
	EventRankingDecided    = "ranking_decided"
	EventCallAttempted     = "call_attempted"
	EventAssigned          = "assigned"
	EventDispatchFailed    = "dispatch_failed"
)

// Event is one audit record.
type Event struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Appender receives audit events.
type Appender interface {
	Append(ctx context.Context, ev Event) error
}

// Query filters stored events.
type Query struct {
	OrderID string
	Type    string
	Start   time.Time
	End     time.Time
}

// Store is an appender that can also be queried, for the local stores.
type Store interface {
	Appender
	Query(ctx context.Context, q Query) ([]Event, error)
	Close() error
}

// MultiAppender fans every event out to all appenders, returning the first
// error after all have been attempted.
type MultiAppender []Appender

func (m MultiAppender) Append(ctx context.Context, ev Event) error {
	var first error
	for _, a := range m {
		if err := a.Append(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// StoreSink adapts an Appender to the pipeline's audit contract.
type StoreSink struct {
	app Appender
}

// NewStoreSink wraps the appender.
func NewStoreSink(app Appender) *StoreSink {
	return &StoreSink{app: app}
}

func (s *StoreSink) append(ctx context.Context, orderID, eventType string, payload any) error {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		raw = b
	}
	return s.app.Append(ctx, Event{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	})
}

func (s *StoreSink) OrderReceived(ctx context.Context, order model.Order) error {
	return s.append(ctx, order.ID, EventOrderReceived, order)
}

func (s *StoreSink) ComplianceChecked(ctx context.Context, orderID string, results []model.ComplianceResult) error {
	return s.append(ctx, orderID, EventComplianceChecked, results)
}

func (s *StoreSink) RankingDecided(ctx context.Context, orderID string, candidates []model.RankedCandidate) error {
	return s.append(ctx, orderID, EventRankingDecided, candidates)
}

func (s *StoreSink) CallAttempted(ctx context.Context, orderID string, rec model.CallRecord) error {
	return s.append(ctx, orderID, EventCallAttempted, rec)
}

func (s *StoreSink) Assigned(ctx context.Context, orderID, driverID string) error {
	return s.append(ctx, orderID, EventAssigned, map[string]string{"driver_id": driverID})
}

func (s *StoreSink) DispatchFailed(ctx context.Context, orderID, reason string) error {
	return s.append(ctx, orderID, EventDispatchFailed, map[string]string{"reason": reason})
}

var _ coreaudit.Sink = (*StoreSink)(nil)
