package dispatch

import (
	"context"

	"github.com/cheetahx/dispatch/core/audit"
	"github.com/cheetahx/dispatch/core/logger"
	"github.com/cheetahx/dispatch/core/model"
)

// CallAgent negotiates one offer with one candidate and always returns a
// terminal record, whatever happened on the line.
type CallAgent interface {
	CallDriver(ctx context.Context, cand model.RankedCandidate, order model.Order) model.CallRecord
}

// Loop offers the order to ranked candidates one at a time, best first. It
// stops at the first acceptance; every outcome is forwarded to the audit
// sink before the next candidate is contacted.
type Loop struct {
	agent CallAgent
	audit audit.Sink
	log   logger.Logger
}

// NewLoop builds a dispatch loop.
func NewLoop(agent CallAgent, sink audit.Sink, log logger.Logger) *Loop {
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &Loop{agent: agent, audit: sink, log: log}
}

// Dispatch walks the candidates in rank order. It returns the accepting
// record, nil if the list is exhausted, plus every record produced.
func (l *Loop) Dispatch(ctx context.Context, candidates []model.RankedCandidate, order model.Order) (*model.CallRecord, []model.CallRecord) {
	records := make([]model.CallRecord, 0, len(candidates))

	for _, cand := range candidates {
		rec := l.agent.CallDriver(ctx, cand, order)
		records = append(records, rec)

		if err := l.audit.CallAttempted(ctx, order.ID, rec); err != nil && l.log != nil {
			l.log.Warnf("audit write for call to %s failed: %v", cand.Driver.ID, err)
		}

		if rec.Outcome == model.CallAccepted {
			return &records[len(records)-1], records
		}
		if l.log != nil {
			l.log.Infof("driver %s did not accept (%s), trying next candidate", cand.Driver.ID, rec.Outcome)
		}
	}
	return nil, records
}
