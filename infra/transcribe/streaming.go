package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/coder/websocket"

	"github.com/cheetahx/dispatch/core/voice"
)

// StreamingClient drives the Velma-2 streaming WebSocket: send a config
// frame, stream PCM chunks, then collect transcript messages until the
// service signals the final one.
type StreamingClient struct {
	baseURL string
	apiKey  string
}

// NewStreamingClient builds a streaming client.
func NewStreamingClient(cfg Config) *StreamingClient {
	return &StreamingClient{baseURL: cfg.BaseURL, apiKey: cfg.APIKey}
}

type streamConfig struct {
	SampleRate         int  `json:"sample_rate"`
	SpeakerDiarization bool `json:"speaker_diarization"`
	EmotionSignal      bool `json:"emotion_signal"`
}

type streamMessage struct {
	Text       string            `json:"text"`
	Transcript string            `json:"transcript"`
	Utterances []voice.Utterance `json:"utterances"`
	IsFinal    bool              `json:"is_final"`
	Final      bool              `json:"final"`
}

// Transcribe streams the clip and assembles the partial transcripts. Dial
// and send failures are returned so the caller can fall back; a quiet
// receive phase simply yields whatever was heard.
func (s *StreamingClient) Transcribe(ctx context.Context, clip voice.Clip) (voice.Transcription, error) {
	dialCtx, cancel := context.WithTimeout(ctx, streamingDialTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, s.streamingURL(), &websocket.DialOptions{
		HTTPHeader: http.Header{"X-API-Key": []string{s.apiKey}},
	})
	if err != nil {
		return voice.Transcription{}, fmt.Errorf("websocket dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	rate := clip.SampleRate
	if rate <= 0 {
		rate = voice.DefaultSampleRate
	}
	cfg, _ := json.Marshal(streamConfig{
		SampleRate:         rate,
		SpeakerDiarization: true,
		EmotionSignal:      true,
	})
	if err := conn.Write(ctx, websocket.MessageText, cfg); err != nil {
		return voice.Transcription{}, fmt.Errorf("sending stream config: %w", err)
	}

	// 16-bit mono, so two bytes per sample.
	chunkBytes := rate * streamingChunkMS / 1000 * 2
	for off := 0; off < len(clip.PCM); off += chunkBytes {
		end := off + chunkBytes
		if end > len(clip.PCM) {
			end = len(clip.PCM)
		}
		if err := conn.Write(ctx, websocket.MessageBinary, clip.PCM[off:end]); err != nil {
			return voice.Transcription{}, fmt.Errorf("sending audio chunk: %w", err)
		}
	}

	var parts []string
	var utterances []voice.Utterance
	for {
		recvCtx, cancelRecv := context.WithTimeout(ctx, streamingRecvTimeout)
		typ, data, err := conn.Read(recvCtx)
		cancelRecv()
		if err != nil {
			// Timeout, closure or transport error: the service has said
			// everything it will, keep whatever was heard.
			break
		}
		if typ != websocket.MessageText {
			continue
		}
		var msg streamMessage
		if json.Unmarshal(data, &msg) != nil {
			continue
		}
		if t := firstNonEmpty(msg.Text, msg.Transcript); t != "" {
			parts = append(parts, t)
		}
		utterances = append(utterances, msg.Utterances...)
		if msg.IsFinal || msg.Final {
			break
		}
	}

	return voice.Transcription{
		Text:       strings.TrimSpace(strings.Join(parts, " ")),
		Utterances: utterances,
	}, nil
}

// streamingURL derives the WebSocket endpoint from the HTTP base URL.
func (s *StreamingClient) streamingURL() string {
	base := strings.TrimRight(strings.TrimSpace(s.baseURL), "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	default:
		base = "wss://" + base
	}
	return base + "/api/velma-2-stt-streaming"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
