// Package callout provides the call backends for the offer negotiation: a
// local speaker/microphone pair, a remote telephony API and a mock for
// pipeline tests and demos.
package callout

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/cheetahx/dispatch/core/logger"
	"github.com/cheetahx/dispatch/core/voice"
)

const micPrime = 500 * time.Millisecond

// LocalAudio drives the host's speaker and microphone through the `say` and
// `rec` command line tools. The microphone is a singleton resource, so
// captures are funneled through a dedicated worker goroutine. Playback runs
// inline: the offer must sound while the capture window is open, so Speak
// never waits behind a running capture.
type LocalAudio struct {
	mic    chan func()
	log    logger.Logger
	primed bool
}

// NewLocalAudio starts the capture worker. Call Close when done.
func NewLocalAudio(log logger.Logger) *LocalAudio {
	l := &LocalAudio{mic: make(chan func()), log: log}
	go func() {
		for job := range l.mic {
			job()
		}
	}()
	return l
}

// Close stops the capture worker.
func (l *LocalAudio) Close() { close(l.mic) }

// record executes fn on the capture worker and waits for it, honoring ctx
// while queued.
func (l *LocalAudio) record(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	select {
	case l.mic <- func() { fn(); close(done) }:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		// The job keeps the worker busy until its own command sees the
		// context cancellation.
		<-done
		return ctx.Err()
	}
}

// Speak plays the text through the system TTS. It runs on the caller's
// goroutine and overlaps any capture in flight.
func (l *LocalAudio) Speak(ctx context.Context, text string) error {
	if l.log != nil {
		l.log.Debugf("playing %d chars of speech", len(text))
	}
	if err := exec.CommandContext(ctx, "say", "-r", strconv.Itoa(voice.SpeechRateWPM), text).Run(); err != nil {
		return fmt.Errorf("speech playback: %w", err)
	}
	return nil
}

// Record captures raw 16-bit mono PCM from the default input for the given
// duration. The first capture is preceded by a short prime so the device is
// awake when the offer plays.
func (l *LocalAudio) Record(ctx context.Context, duration time.Duration) (voice.Clip, error) {
	var clip voice.Clip
	var err error
	runErr := l.record(ctx, func() {
		if !l.primed {
			_, _ = l.capture(ctx, micPrime)
			l.primed = true
		}
		clip, err = l.capture(ctx, duration)
	})
	if runErr != nil {
		return voice.Clip{}, runErr
	}
	return clip, err
}

func (l *LocalAudio) capture(ctx context.Context, duration time.Duration) (voice.Clip, error) {
	secs := strconv.FormatFloat(duration.Seconds(), 'f', 1, 64)
	cmd := exec.CommandContext(ctx, "rec",
		"-q",
		"-r", strconv.Itoa(voice.DefaultSampleRate),
		"-c", "1",
		"-b", "16",
		"-e", "signed-integer",
		"-t", "raw",
		"-",
		"trim", "0", secs,
	)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return voice.Clip{}, fmt.Errorf("audio capture: %w", err)
	}
	return voice.Clip{PCM: out.Bytes(), SampleRate: voice.DefaultSampleRate}, nil
}
