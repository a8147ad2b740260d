package callout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// holdMicrophone parks a job on the capture worker until release is closed,
// simulating a capture window in flight.
func holdMicrophone(t *testing.T, l *LocalAudio) (release chan struct{}, done chan struct{}) {
	t.Helper()
	release = make(chan struct{})
	done = make(chan struct{})
	busy := make(chan struct{})
	go func() {
		_ = l.record(context.Background(), func() { close(busy); <-release })
		close(done)
	}()
	<-busy
	return release, done
}

func TestLocalAudio_SpeakOverlapsCapture(t *testing.T) {
	l := NewLocalAudio(nil)
	defer l.Close()

	release, done := holdMicrophone(t, l)

	// Playback must start while the capture window is still open. Whether
	// the TTS binary exists is irrelevant here, only that Speak returns
	// without waiting for the worker.
	spoke := make(chan struct{})
	go func() {
		_ = l.Speak(context.Background(), "New job offer")
		close(spoke)
	}()
	select {
	case <-spoke:
	case <-time.After(2 * time.Second):
		t.Fatal("playback queued behind the running capture")
	}

	close(release)
	<-done
}

func TestLocalAudio_CapturesStaySerialized(t *testing.T) {
	l := NewLocalAudio(nil)
	defer l.Close()

	release, done := holdMicrophone(t, l)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := l.record(ctx, func() { t.Error("second capture ran while the microphone was held") })
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	<-done
}
