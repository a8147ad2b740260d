package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/cheetahx/dispatch/core/voice"
)

// BatchClient uploads a whole clip to the Velma-2 batch endpoint and waits
// for the transcription in the response.
type BatchClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewBatchClient builds a batch client.
func NewBatchClient(cfg Config) *BatchClient {
	return &BatchClient{
		client:  &http.Client{Timeout: 60 * time.Second},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// Transcribe posts the clip as a WAV upload with diarization and emotion
// labeling enabled.
func (b *BatchClient) Transcribe(ctx context.Context, clip voice.Clip) (voice.Transcription, error) {
	rate := clip.SampleRate
	if rate <= 0 {
		rate = voice.DefaultSampleRate
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="upload_file"; filename="response.wav"`)
	header.Set("Content-Type", "audio/wav")
	part, err := mw.CreatePart(header)
	if err != nil {
		return voice.Transcription{}, err
	}
	if _, err := part.Write(EncodeWAV(clip.PCM, rate)); err != nil {
		return voice.Transcription{}, err
	}
	_ = mw.WriteField("speaker_diarization", "true")
	_ = mw.WriteField("emotion_signal", "true")
	if err := mw.Close(); err != nil {
		return voice.Transcription{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/velma-2-stt-batch", &buf)
	if err != nil {
		return voice.Transcription{}, err
	}
	req.Header.Set("X-API-Key", b.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := b.client.Do(req)
	if err != nil {
		return voice.Transcription{}, fmt.Errorf("batch transcription request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return voice.Transcription{}, fmt.Errorf("batch transcription: unexpected status %d", resp.StatusCode)
	}

	var result voice.Transcription
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return voice.Transcription{}, fmt.Errorf("decoding batch response: %w", err)
	}
	return result, nil
}
