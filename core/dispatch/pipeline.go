// Package dispatch runs the order pipeline: eligibility filtering, SLA
// feasibility, ranking and the sequential offer loop, producing exactly one
// terminal DispatchResult per order.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/cheetahx/dispatch/core/audit"
	"github.com/cheetahx/dispatch/core/compliance"
	"github.com/cheetahx/dispatch/core/directory"
	"github.com/cheetahx/dispatch/core/logger"
	"github.com/cheetahx/dispatch/core/metrics"
	"github.com/cheetahx/dispatch/core/model"
	"github.com/cheetahx/dispatch/core/ranking"
	"github.com/cheetahx/dispatch/core/routing"
)

// Failure reason codes carried by a failed DispatchResult.
const (
	ReasonNoActiveDrivers   = "no_active_drivers"
	ReasonNoEligibleDrivers = "no_eligible_drivers"
	ReasonNoFeasibleDrivers = "no_sla_feasible_drivers"
	ReasonAllDeclined       = "all_drivers_declined"
)

// Stage names used for latency metrics.
const (
	StageCompliance = "compliance"
	StageRouting    = "routing"
	StageRanking    = "ranking"
	StageCalling    = "calling"
)

// Deps are the collaborators a Pipeline needs. Audit and Metrics may be nil,
// in which case no-op sinks are used.
type Deps struct {
	Directory directory.Directory
	Routes    routing.RouteService
	Agent     CallAgent
	Audit     audit.Sink
	Metrics   metrics.MetricsSink
	Log       logger.Logger
	Now       func() time.Time
}

// Pipeline processes one order end to end. Safe for concurrent use across
// orders; the stages within one order run strictly in sequence.
type Pipeline struct {
	dir     directory.Directory
	checker compliance.Checker
	router  *routing.FeasibilityRouter
	ranker  ranking.Engine
	loop    *Loop
	audit   audit.Sink
	sink    metrics.MetricsSink
	log     logger.Logger
	now     func() time.Time
}

// NewPipeline wires a pipeline from its dependencies.
func NewPipeline(deps Deps) *Pipeline {
	if deps.Audit == nil {
		deps.Audit = audit.NopSink{}
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NopSink{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Pipeline{
		dir:     deps.Directory,
		checker: compliance.NewChecker(deps.Log),
		router:  routing.NewFeasibilityRouter(deps.Routes, deps.Log),
		ranker:  ranking.NewEngine(deps.Log),
		loop:    NewLoop(deps.Agent, deps.Audit, deps.Log),
		audit:   deps.Audit,
		sink:    deps.Metrics,
		log:     deps.Log,
		now:     deps.Now,
	}
}

// ProcessOrder runs the full pipeline for one order. A malformed order is
// rejected with an error before anything runs; every other path, including
// system failures, yields a terminal DispatchResult.
func (p *Pipeline) ProcessOrder(ctx context.Context, order model.Order) (model.DispatchResult, error) {
	if err := order.Validate(); err != nil {
		return model.DispatchResult{}, err
	}

	start := p.now()
	if p.log != nil {
		p.log.Infof("processing order %s: %s to %s", order.ID, order.Pickup.Label(), order.Dropoff.Label())
	}
	p.auditOK(p.audit.OrderReceived(ctx, order))

	drivers, err := p.dir.ListActive(ctx)
	if err != nil {
		return p.systemFailure(ctx, order, start, fmt.Errorf("listing active drivers: %w", err)), nil
	}
	activeDrivers.Set(float64(len(drivers)))
	if pr, ok := p.sink.(metrics.PoolSizeRecorder); ok {
		p.auditOK(pr.RecordPoolSize(len(drivers)))
	}
	if len(drivers) == 0 {
		return p.finishFailed(ctx, order, start, 0, nil, ReasonNoActiveDrivers), nil
	}

	stageStart := p.now()
	compResults := p.checker.CheckAll(drivers, order, start)
	p.recordStage(order.ID, StageCompliance, p.now().Sub(stageStart))
	p.auditOK(p.audit.ComplianceChecked(ctx, order.ID, compResults))

	eligible := compliance.EligibleDrivers(drivers, compResults)
	if len(eligible) == 0 {
		return p.finishFailed(ctx, order, start, len(drivers), nil, ReasonNoEligibleDrivers), nil
	}

	stageStart = p.now()
	routeResults, err := p.router.Compute(ctx, eligible, order, start)
	p.recordStage(order.ID, StageRouting, p.now().Sub(stageStart))
	if err != nil {
		return p.systemFailure(ctx, order, start, fmt.Errorf("routing: %w", err)), nil
	}
	feasible := routing.FeasibleOnly(routeResults)
	if len(feasible) == 0 {
		return p.finishFailed(ctx, order, start, len(drivers), nil, ReasonNoFeasibleDrivers), nil
	}

	stageStart = p.now()
	ranked := p.ranker.Rank(eligible, feasible, compResults)
	p.recordStage(order.ID, StageRanking, p.now().Sub(stageStart))
	p.auditOK(p.audit.RankingDecided(ctx, order.ID, ranked))

	stageStart = p.now()
	accepted, records := p.loop.Dispatch(ctx, ranked, order)
	p.recordStage(order.ID, StageCalling, p.now().Sub(stageStart))
	p.recordCalls(order.ID, ranked, records)

	if accepted == nil {
		return p.finishFailed(ctx, order, start, len(drivers), records, ReasonAllDeclined), nil
	}

	var winner model.Driver
	for _, cand := range ranked {
		if cand.Driver.ID == accepted.DriverID {
			winner = cand.Driver
			break
		}
	}
	p.auditOK(p.audit.Assigned(ctx, order.ID, winner.ID))

	result := model.DispatchResult{
		OrderID:            order.ID,
		Status:             model.StatusAssigned,
		AssignedDriverID:   winner.ID,
		AssignedDriverName: winner.Name,
		DriversConsidered:  len(drivers),
		DriversCalled:      len(records),
		ProcessingTime:     p.now().Sub(start),
	}
	p.finish(result)
	if p.log != nil {
		p.log.Infof("order %s assigned to %s after %d call(s)", order.ID, winner.ID, len(records))
	}
	return result, nil
}

func (p *Pipeline) finishFailed(ctx context.Context, order model.Order, start time.Time, considered int, records []model.CallRecord, reason string) model.DispatchResult {
	p.auditOK(p.audit.DispatchFailed(ctx, order.ID, reason))
	result := model.DispatchResult{
		OrderID:           order.ID,
		Status:            model.StatusFailed,
		DriversConsidered: considered,
		DriversCalled:     len(records),
		Reason:            reason,
		ProcessingTime:    p.now().Sub(start),
	}
	p.finish(result)
	if p.log != nil {
		p.log.Warnf("order %s failed: %s", order.ID, reason)
	}
	return result
}

func (p *Pipeline) systemFailure(ctx context.Context, order model.Order, start time.Time, err error) model.DispatchResult {
	if p.log != nil {
		p.log.Errorf("order %s aborted: %v", order.ID, err)
	}
	reason := "system error: " + err.Error()
	p.auditOK(p.audit.DispatchFailed(ctx, order.ID, reason))
	result := model.DispatchResult{
		OrderID:        order.ID,
		Status:         model.StatusFailed,
		Reason:         reason,
		ProcessingTime: p.now().Sub(start),
	}
	p.finish(result)
	return result
}

// finish updates the terminal metrics for a result.
func (p *Pipeline) finish(result model.DispatchResult) {
	pipelineLatency.WithLabelValues(string(result.Status)).Observe(result.ProcessingTime.Seconds())
	ordersProcessed.WithLabelValues(string(result.Status), result.Reason).Inc()
	if rr, ok := p.sink.(metrics.ResultRecorder); ok {
		p.auditOK(rr.RecordDispatchResult(metrics.DispatchEvent{
			OrderID:        result.OrderID,
			Status:         string(result.Status),
			Reason:         result.Reason,
			DriverID:       result.AssignedDriverID,
			Considered:     result.DriversConsidered,
			Called:         result.DriversCalled,
			ProcessingTime: result.ProcessingTime,
			Time:           p.now(),
		}))
	}
}

func (p *Pipeline) recordCalls(orderID string, ranked []model.RankedCandidate, records []model.CallRecord) {
	rankByID := make(map[string]int, len(ranked))
	for _, cand := range ranked {
		rankByID[cand.Driver.ID] = cand.Rank
	}
	calls := make([]metrics.CallMetric, 0, len(records))
	for _, rec := range records {
		callOutcomes.WithLabelValues(string(rec.Outcome)).Inc()
		callDuration.WithLabelValues(string(rec.Outcome)).Observe(rec.Duration.Seconds())
		calls = append(calls, metrics.CallMetric{
			OrderID:        orderID,
			DriverID:       rec.DriverID,
			Rank:           rankByID[rec.DriverID],
			Outcome:        string(rec.Outcome),
			SentimentScore: rec.SentimentScore,
			Duration:       rec.Duration,
			Time:           rec.Timestamp,
		})
	}
	if len(calls) > 0 {
		p.auditOK(p.sink.RecordCallOutcome(calls))
	}
}

func (p *Pipeline) recordStage(orderID, stage string, d time.Duration) {
	stageLatency.WithLabelValues(stage).Observe(d.Seconds())
	if sr, ok := p.sink.(metrics.StageRecorder); ok {
		p.auditOK(sr.RecordStageLatency([]metrics.StageLatency{{
			OrderID: orderID,
			Stage:   stage,
			Latency: d,
			Time:    p.now(),
		}}))
	}
}

// auditOK downgrades sink errors to warnings, audit and metrics writes are
// best effort.
func (p *Pipeline) auditOK(err error) {
	if err != nil && p.log != nil {
		p.log.Warnf("best-effort write failed: %v", err)
	}
}
