package voice

import (
	"context"

	"github.com/cheetahx/dispatch/core/logger"
	"github.com/cheetahx/dispatch/core/model"
)

// Agent turns ranked candidates into finished calls by running one Session
// per candidate over a shared audio backend and transcriber. It satisfies
// the dispatch loop's CallAgent contract.
type Agent struct {
	audio AudioIO
	stt   Transcriber
	cfg   Config
	log   logger.Logger
}

// NewAgent wires an agent from its collaborators.
func NewAgent(audio AudioIO, stt Transcriber, cfg Config, log logger.Logger) *Agent {
	return &Agent{audio: audio, stt: stt, cfg: cfg.withDefaults(), log: log}
}

// CallDriver runs one full negotiation with the candidate and returns its
// terminal record.
func (a *Agent) CallDriver(ctx context.Context, cand model.RankedCandidate, order model.Order) model.CallRecord {
	if a.log != nil {
		a.log.Infof("calling driver %s (rank %d, score %.2f) for order %s",
			cand.Driver.ID, cand.Rank, cand.Score, order.ID)
	}
	rec := NewSession(a.audio, a.stt, a.cfg, a.log).Run(ctx, cand, order)
	if a.log != nil {
		a.log.Infof("call with driver %s finished: %s", cand.Driver.ID, rec.Outcome)
	}
	return rec
}
