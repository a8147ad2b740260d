// Package audit defines the append-only event stream every dispatch run
// feeds. Writes are best effort: the pipeline reports failures but never
// aborts an order over a missed audit record.
package audit

import (
	"context"

	"github.com/cheetahx/dispatch/core/model"
)

// Sink receives one event per pipeline stage.
type Sink interface {
	OrderReceived(ctx context.Context, order model.Order) error
	ComplianceChecked(ctx context.Context, orderID string, results []model.ComplianceResult) error
	RankingDecided(ctx context.Context, orderID string, candidates []model.RankedCandidate) error
	CallAttempted(ctx context.Context, orderID string, rec model.CallRecord) error
	Assigned(ctx context.Context, orderID, driverID string) error
	DispatchFailed(ctx context.Context, orderID, reason string) error
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) OrderReceived(context.Context, model.Order) error { return nil }
func (NopSink) ComplianceChecked(context.Context, string, []model.ComplianceResult) error {
	return nil
}
func (NopSink) RankingDecided(context.Context, string, []model.RankedCandidate) error { return nil }
func (NopSink) CallAttempted(context.Context, string, model.CallRecord) error         { return nil }
func (NopSink) Assigned(context.Context, string, string) error                        { return nil }
func (NopSink) DispatchFailed(context.Context, string, string) error                  { return nil }
