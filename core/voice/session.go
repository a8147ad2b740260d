// Package voice drives the per-candidate offer negotiation: speak the offer,
// capture the spoken response, transcribe it and classify the intent, with a
// bounded repeat loop for drivers who ask to hear the offer again.
package voice

import (
	"context"
	"strings"
	"time"

	"github.com/cheetahx/dispatch/core/logger"
	"github.com/cheetahx/dispatch/core/model"
)

// State is the call session's position in its lifecycle.
type State string

const (
	StateInitiated       State = "initiated"
	StateSpeaking        State = "speaking"
	StateRecording       State = "recording"
	StateTranscribing    State = "transcribing"
	StateRepeatRequested State = "repeat_requested"
	StateClassified      State = "classified"
	StateTimedOut        State = "timed_out"
	StateError           State = "error"
)

// Defaults for the negotiation timing knobs.
const (
	DefaultSampleRate    = 16000
	DefaultSilenceWindow = 20 * time.Second
	DefaultWarmupDelay   = 2 * time.Second
	DefaultMaxRepeats    = 2
)

// Clip is one captured audio take.
type Clip struct {
	PCM        []byte
	SampleRate int
}

// Utterance is one labeled segment of a transcription.
type Utterance struct {
	Text    string `json:"text"`
	Emotion string `json:"emotion,omitempty"`
}

// Transcription is the result of transcribing one clip.
type Transcription struct {
	Text       string      `json:"text"`
	Utterances []Utterance `json:"utterances,omitempty"`
}

// AudioIO plays synthesized speech and captures microphone audio. Both
// methods block until done or the context ends.
type AudioIO interface {
	Speak(ctx context.Context, text string) error
	Record(ctx context.Context, duration time.Duration) (Clip, error)
}

// Transcriber converts a captured clip into text.
type Transcriber interface {
	Transcribe(ctx context.Context, clip Clip) (Transcription, error)
}

// Config tunes a session. Zero fields fall back to the defaults.
type Config struct {
	SilenceWindow time.Duration `koanf:"silence_window"`
	WarmupDelay   time.Duration `koanf:"warmup_delay"`
	MaxRepeats    int           `koanf:"max_repeats"`
}

func (c Config) withDefaults() Config {
	if c.SilenceWindow <= 0 {
		c.SilenceWindow = DefaultSilenceWindow
	}
	if c.WarmupDelay <= 0 {
		c.WarmupDelay = DefaultWarmupDelay
	}
	if c.MaxRepeats <= 0 {
		c.MaxRepeats = DefaultMaxRepeats
	}
	return c
}

// Session negotiates one offer with one candidate. Create one per call with
// NewSession; a session is single-use.
type Session struct {
	audio AudioIO
	stt   Transcriber
	cfg   Config
	log   logger.Logger

	state      State
	transcript []string
	repeats    int
}

// NewSession builds a ready-to-run session.
func NewSession(audio AudioIO, stt Transcriber, cfg Config, log logger.Logger) *Session {
	return &Session{
		audio: audio,
		stt:   stt,
		cfg:   cfg.withDefaults(),
		log:   log,
		state: StateInitiated,
	}
}

// State reports the session's current lifecycle state.
func (s *Session) State() State { return s.state }

// Transcript returns everything heard so far across repeat rounds.
func (s *Session) Transcript() string { return strings.Join(s.transcript, " ") }

// Run drives the session to a terminal outcome. It always returns a
// CallRecord; transport failures surface as an error outcome, never as an
// implicit acceptance.
func (s *Session) Run(ctx context.Context, cand model.RankedCandidate, order model.Order) model.CallRecord {
	start := time.Now()
	script := BuildScript(cand.Driver, order, cand.Routing)
	text := script

	rec := model.CallRecord{
		DriverID:       cand.Driver.ID,
		SentimentScore: neutralSentiment,
	}

	for {
		clip, err := s.speakAndRecord(ctx, text)
		if err != nil {
			if ctx.Err() != nil {
				s.state = StateTimedOut
				rec.Outcome = model.CallNoAnswer
				rec.DeclineReason = "call timed out"
			} else {
				s.state = StateError
				rec.Outcome = model.CallError
				rec.DeclineReason = "audio capture failed: " + err.Error()
			}
			break
		}

		s.state = StateTranscribing
		result, err := s.stt.Transcribe(ctx, clip)
		if err != nil {
			if ctx.Err() != nil {
				s.state = StateTimedOut
				rec.Outcome = model.CallNoAnswer
				rec.DeclineReason = "call timed out"
			} else {
				s.state = StateError
				rec.Outcome = model.CallError
				rec.DeclineReason = "transcription failed: " + err.Error()
			}
			break
		}

		heard := strings.TrimSpace(result.Text)
		if heard != "" {
			s.transcript = append(s.transcript, heard)
		}
		rec.SentimentScore = Sentiment(result.Utterances)

		intent := Classify(heard)
		if intent == IntentRepeat {
			if s.repeats < s.cfg.MaxRepeats {
				s.repeats++
				s.state = StateRepeatRequested
				if s.log != nil {
					s.log.Infof("driver %s asked for a repeat (%d/%d)", cand.Driver.ID, s.repeats, s.cfg.MaxRepeats)
				}
				text = RepeatPrompt + " " + script
				continue
			}
			// Repeat cap reached: settle on whatever was said.
			intent = ClassifyResponse(heard)
		}

		s.state = StateClassified
		switch {
		case heard == "":
			rec.Outcome = model.CallDeclined
			rec.DeclineReason = "No response received"
		case intent == IntentAccept:
			rec.Outcome = model.CallAccepted
		case intent == IntentDecline:
			rec.Outcome = model.CallDeclined
			rec.DeclineReason = heard
		default:
			rec.Outcome = model.CallDeclined
			rec.DeclineReason = "No clear response received"
		}
		break
	}

	if ack := AckMessage(rec.Outcome); ack != "" && ctx.Err() == nil {
		// Best effort, the outcome is already settled.
		_ = s.audio.Speak(ctx, ack)
	}

	rec.Transcript = s.Transcript()
	rec.Duration = time.Since(start)
	rec.Timestamp = time.Now().UTC()
	return rec
}

// speakAndRecord runs capture and playback concurrently. Recording starts
// first and covers a warm-up interval so speech that overlaps the end of
// playback, or jumps in early, is not lost.
func (s *Session) speakAndRecord(ctx context.Context, text string) (Clip, error) {
	duration := s.cfg.WarmupDelay + EstimatePlayback(text) + s.cfg.SilenceWindow

	s.state = StateRecording
	type take struct {
		clip Clip
		err  error
	}
	done := make(chan take, 1)
	go func() {
		clip, err := s.audio.Record(ctx, duration)
		done <- take{clip, err}
	}()

	select {
	case <-time.After(s.cfg.WarmupDelay):
	case <-ctx.Done():
		<-done
		return Clip{}, ctx.Err()
	}

	s.state = StateSpeaking
	if err := s.audio.Speak(ctx, text); err != nil {
		<-done
		return Clip{}, err
	}

	t := <-done
	return t.clip, t.err
}
