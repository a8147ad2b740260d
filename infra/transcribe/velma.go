// Package transcribe talks to the Modulate Velma-2 speech-to-text service
// over two transports: a low-latency WebSocket stream and a single-shot
// batch upload used as fallback.
package transcribe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cheetahx/dispatch/core/logger"
	"github.com/cheetahx/dispatch/core/voice"
)

// Streaming transport tuning.
const (
	streamingChunkMS     = 100
	streamingRecvTimeout = 30 * time.Second
	streamingDialTimeout = 15 * time.Second
)

// Config locates the Velma-2 service.
type Config struct {
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
}

// Velma transcribes clips, preferring the streaming transport and falling
// back to batch when streaming is unavailable or rejected.
type Velma struct {
	streaming *StreamingClient
	batch     *BatchClient
	log       logger.Logger
}

// New builds the two-transport transcriber.
func New(cfg Config, log logger.Logger) *Velma {
	return &Velma{
		streaming: NewStreamingClient(cfg),
		batch:     NewBatchClient(cfg),
		log:       log,
	}
}

// Transcribe tries streaming first. Authorization or transport rejections
// are expected when the account has no streaming entitlement and are logged
// quietly; any streaming failure falls back to batch. When both transports
// fail the error is surfaced so the call settles as an error outcome.
func (v *Velma) Transcribe(ctx context.Context, clip voice.Clip) (voice.Transcription, error) {
	result, err := v.streaming.Transcribe(ctx, clip)
	if err == nil {
		return result, nil
	}

	if v.log != nil {
		lower := strings.ToLower(err.Error())
		if strings.Contains(lower, "403") || strings.Contains(lower, "forbidden") ||
			strings.Contains(lower, "websocket") || strings.Contains(lower, "rejected") {
			v.log.Infof("streaming transcription unavailable, using batch API: %v", err)
		} else {
			v.log.Warnf("streaming transcription failed, falling back to batch: %v", err)
		}
	}

	result, batchErr := v.batch.Transcribe(ctx, clip)
	if batchErr != nil {
		return voice.Transcription{}, fmt.Errorf("streaming: %v; batch: %w", err, batchErr)
	}
	return result, nil
}
