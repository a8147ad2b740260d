package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheetahx/dispatch/core/model"
)

type scriptedAgent struct {
	outcomes map[string]model.CallOutcome
	called   []string
}

func (a *scriptedAgent) CallDriver(_ context.Context, cand model.RankedCandidate, _ model.Order) model.CallRecord {
	a.called = append(a.called, cand.Driver.ID)
	outcome, ok := a.outcomes[cand.Driver.ID]
	if !ok {
		outcome = model.CallDeclined
	}
	return model.CallRecord{DriverID: cand.Driver.ID, Outcome: outcome}
}

type recordingAudit struct {
	calls    []model.CallRecord
	assigned []string
	failed   []string
	orders   []string
	rankings int
}

func (r *recordingAudit) OrderReceived(_ context.Context, o model.Order) error {
	r.orders = append(r.orders, o.ID)
	return nil
}
func (r *recordingAudit) ComplianceChecked(context.Context, string, []model.ComplianceResult) error {
	return nil
}
func (r *recordingAudit) RankingDecided(context.Context, string, []model.RankedCandidate) error {
	r.rankings++
	return nil
}
func (r *recordingAudit) CallAttempted(_ context.Context, _ string, rec model.CallRecord) error {
	r.calls = append(r.calls, rec)
	return nil
}
func (r *recordingAudit) Assigned(_ context.Context, _ string, driverID string) error {
	r.assigned = append(r.assigned, driverID)
	return nil
}
func (r *recordingAudit) DispatchFailed(_ context.Context, _ string, reason string) error {
	r.failed = append(r.failed, reason)
	return nil
}

func candidates(ids ...string) []model.RankedCandidate {
	out := make([]model.RankedCandidate, len(ids))
	for i, id := range ids {
		out[i] = model.RankedCandidate{Driver: model.Driver{ID: id}, Rank: i + 1}
	}
	return out
}

func TestDispatch_StopsAtFirstAcceptance(t *testing.T) {
	agent := &scriptedAgent{outcomes: map[string]model.CallOutcome{
		"D1": model.CallDeclined,
		"D2": model.CallAccepted,
		"D3": model.CallAccepted,
	}}
	loop := NewLoop(agent, nil, nil)

	accepted, records := loop.Dispatch(context.Background(), candidates("D1", "D2", "D3"), model.Order{ID: "O1"})
	require.NotNil(t, accepted)
	assert.Equal(t, "D2", accepted.DriverID)
	assert.Equal(t, []string{"D1", "D2"}, agent.called)
	assert.Len(t, records, 2)
}

func TestDispatch_ExhaustedListReturnsNil(t *testing.T) {
	agent := &scriptedAgent{outcomes: map[string]model.CallOutcome{
		"D1": model.CallDeclined,
		"D2": model.CallNoAnswer,
		"D3": model.CallError,
	}}
	loop := NewLoop(agent, nil, nil)

	accepted, records := loop.Dispatch(context.Background(), candidates("D1", "D2", "D3"), model.Order{ID: "O1"})
	assert.Nil(t, accepted)
	assert.Len(t, records, 3)
	assert.Equal(t, []string{"D1", "D2", "D3"}, agent.called)
}

func TestDispatch_NonAcceptOutcomesContinueLoop(t *testing.T) {
	for _, outcome := range []model.CallOutcome{model.CallDeclined, model.CallNoAnswer, model.CallError} {
		agent := &scriptedAgent{outcomes: map[string]model.CallOutcome{
			"D1": outcome,
			"D2": model.CallAccepted,
		}}
		loop := NewLoop(agent, nil, nil)

		accepted, _ := loop.Dispatch(context.Background(), candidates("D1", "D2"), model.Order{ID: "O1"})
		require.NotNil(t, accepted, string(outcome))
		assert.Equal(t, "D2", accepted.DriverID)
	}
}

func TestDispatch_AuditsEveryOutcome(t *testing.T) {
	agent := &scriptedAgent{outcomes: map[string]model.CallOutcome{
		"D1": model.CallDeclined,
		"D2": model.CallAccepted,
	}}
	sink := &recordingAudit{}
	loop := NewLoop(agent, sink, nil)

	_, _ = loop.Dispatch(context.Background(), candidates("D1", "D2"), model.Order{ID: "O1"})
	require.Len(t, sink.calls, 2)
	assert.Equal(t, "D1", sink.calls[0].DriverID)
	assert.Equal(t, model.CallAccepted, sink.calls[1].Outcome)
}

func TestDispatch_EmptyCandidates(t *testing.T) {
	loop := NewLoop(&scriptedAgent{}, nil, nil)
	accepted, records := loop.Dispatch(context.Background(), nil, model.Order{ID: "O1"})
	assert.Nil(t, accepted)
	assert.Empty(t, records)
}
