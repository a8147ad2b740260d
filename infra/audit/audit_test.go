package audit

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheetahx/dispatch/core/model"
)

func testEvent(orderID, eventType string, ts time.Time) Event {
	return Event{
		ID:        orderID + "-" + eventType,
		OrderID:   orderID,
		Type:      eventType,
		Timestamp: ts,
	}
}

func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(ctx, testEvent("O1", EventOrderReceived, base)))
	require.NoError(t, store.Append(ctx, testEvent("O1", EventAssigned, base.Add(time.Minute))))
	require.NoError(t, store.Append(ctx, testEvent("O2", EventOrderReceived, base.Add(2*time.Minute))))

	all, err := store.Query(ctx, Query{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byOrder, err := store.Query(ctx, Query{OrderID: "O1"})
	require.NoError(t, err)
	assert.Len(t, byOrder, 2)

	byType, err := store.Query(ctx, Query{Type: EventOrderReceived})
	require.NoError(t, err)
	assert.Len(t, byType, 2)

	windowed, err := store.Query(ctx, Query{Start: base.Add(90 * time.Second)})
	require.NoError(t, err)
	require.Len(t, windowed, 1)
	assert.Equal(t, "O2", windowed[0].OrderID)
}

func TestJSONLStore(t *testing.T) {
	store, err := NewJSONLStore(filepath.Join(t.TempDir(), "audit.jsonl"))
	require.NoError(t, err)
	defer store.Close()
	testStore(t, store)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	defer store.Close()
	testStore(t, store)
}

type captureAppender struct {
	events []Event
	err    error
}

func (c *captureAppender) Append(_ context.Context, ev Event) error {
	c.events = append(c.events, ev)
	return c.err
}

func TestStoreSink_EmitsOnePerStage(t *testing.T) {
	rec := &captureAppender{}
	sink := NewStoreSink(rec)
	ctx := context.Background()

	require.NoError(t, sink.OrderReceived(ctx, model.Order{ID: "O1"}))
	require.NoError(t, sink.ComplianceChecked(ctx, "O1", []model.ComplianceResult{{DriverID: "D1"}}))
	require.NoError(t, sink.RankingDecided(ctx, "O1", []model.RankedCandidate{}))
	require.NoError(t, sink.CallAttempted(ctx, "O1", model.CallRecord{DriverID: "D1", Outcome: model.CallDeclined}))
	require.NoError(t, sink.Assigned(ctx, "O1", "D1"))
	require.NoError(t, sink.DispatchFailed(ctx, "O1", "all_drivers_declined"))

	require.Len(t, rec.events, 6)
	assert.Equal(t, EventOrderReceived, rec.events[0].Type)
	assert.Equal(t, EventDispatchFailed, rec.events[5].Type)
	for _, ev := range rec.events {
		assert.Equal(t, "O1", ev.OrderID)
		assert.NotEmpty(t, ev.ID)
		assert.False(t, ev.Timestamp.IsZero())
	}

	assert.Contains(t, string(rec.events[3].Payload), `"declined"`)
}

func TestMultiAppender_FansOutAndReportsFirstError(t *testing.T) {
	ok := &captureAppender{}
	bad := &captureAppender{err: errors.New("disk full")}
	multi := MultiAppender{bad, ok}

	err := multi.Append(context.Background(), testEvent("O1", EventAssigned, time.Now()))
	require.Error(t, err)
	assert.Len(t, ok.events, 1)
	assert.Len(t, bad.events, 1)
}
