package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hammamikhairi/voxcart/internal/logger"
)

const murfBaseURL = "https://api.murf.ai/v1"

// MurfOption configures the Murf TTS client.
type MurfOption func(*MurfClient)

// WithVoice sets the TTS voice.
func WithVoice(voice string) MurfOption {
	return func(c *MurfClient) {
		c.voice = voice
	}
}

// WithAudioFormat sets the audio output format.
func WithAudioFormat(format string) MurfOption {
	return func(c *MurfClient) {
		c.format = format
	}
}

// WithHTTPTimeout sets the HTTP client timeout for TTS requests.
func WithHTTPTimeout(d time.Duration) MurfOption {
	return func(c *MurfClient) {
		c.httpClient.Timeout = d
	}
}

// WithBaseURL overrides the API base URL. Used in tests.
func WithBaseURL(url string) MurfOption {
	return func(c *MurfClient) {
		c.baseURL = url
	}
}

// WithRateLimiter sets the request rate limiter. Nil disables limiting.
func WithRateLimiter(limiter *RateLimiter) MurfOption {
	return func(c *MurfClient) {
		c.limiter = limiter
	}
}

// WithMaxAttempts sets how many times a transient failure is tried.
func WithMaxAttempts(n int) MurfOption {
	return func(c *MurfClient) {
		c.maxAttempts = n
	}
}

// WithBackoff sets the base delay between retry attempts.
func WithBackoff(d time.Duration) MurfOption {
	return func(c *MurfClient) {
		c.baseBackoff = d
	}
}

// MurfClient handles text-to-speech synthesis via the Murf API.
// Generation is a two-step exchange: a generate call returns a URL to
// the rendered audio, which is then downloaded.
type MurfClient struct {
	apiKey      string
	voice       string
	format      string
	baseURL     string
	maxAttempts int
	baseBackoff time.Duration
	httpClient  *http.Client
	limiter     *RateLimiter
	log         *logger.Logger
}

// Voice returns the configured voice name.
func (c *MurfClient) Voice() string { return c.voice }

// NewMurfClient creates a Murf TTS client with the given API key.
func NewMurfClient(apiKey string, log *logger.Logger, opts ...MurfOption) *MurfClient {
	c := &MurfClient{
		apiKey:      apiKey,
		voice:       DefaultVoice,
		format:      DefaultAudioFormat,
		baseURL:     murfBaseURL,
		maxAttempts: 3,
		baseBackoff: 1 * time.Second,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generateRequest struct {
	Text       string `json:"text"`
	VoiceID    string `json:"voiceId"`
	Format     string `json:"format"`
	SampleRate int    `json:"sampleRate"`
	Speed      int    `json:"speed"`
	Pitch      int    `json:"pitch"`
}

// generateResponse covers the field names Murf has used for the audio
// location across API revisions.
type generateResponse struct {
	AudioFile string `json:"audioFile"`
	AudioURL  string `json:"audioUrl"`
	URL       string `json:"url"`
}

func (r *generateResponse) audioLocation() string {
	switch {
	case r.AudioFile != "":
		return r.AudioFile
	case r.AudioURL != "":
		return r.AudioURL
	default:
		return r.URL
	}
}

// Synthesize converts text to speech audio data (WAV bytes).
func (c *MurfClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for tts slot: %w", err)
		}
	}

	c.log.Debug("murf tts: synthesizing %d chars with voice %s", len(text), c.voice)

	audioURL, err := c.generate(ctx, text)
	if err != nil {
		return nil, err
	}

	audioData, err := c.download(ctx, audioURL)
	if err != nil {
		return nil, err
	}

	c.log.Debug("murf tts: got %d bytes of audio", len(audioData))
	return audioData, nil
}

// generate asks Murf to render the text and returns the audio URL.
func (c *MurfClient) generate(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Text:       text,
		VoiceID:    c.voice,
		Format:     c.format,
		SampleRate: SampleRate,
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	body, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/speech/generate", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("api-key", c.apiKey)
		return req, nil
	})
	if err != nil {
		return "", err
	}

	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	loc := resp.audioLocation()
	if loc == "" {
		return "", fmt.Errorf("murf tts: response carries no audio location")
	}
	return loc, nil
}

// download fetches the rendered audio file.
func (c *MurfClient) download(ctx context.Context, url string) ([]byte, error) {
	return c.doWithRetry(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, "GET", url, nil)
	})
}

// doWithRetry performs the request, retrying transient failures with a
// linearly growing backoff. Client errors (4xx) are never retried: the
// request won't get better by asking again.
func (c *MurfClient) doWithRetry(ctx context.Context, build func() (*http.Request, error)) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("tts request cancelled: %w", err)
		}

		req, err := build()
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		body, retry, err := c.doOnce(req)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry {
			return nil, err
		}

		if attempt < c.maxAttempts {
			backoff := c.baseBackoff * time.Duration(attempt)
			c.log.Warn("murf tts: attempt %d/%d failed, retrying in %s: %v", attempt, c.maxAttempts, backoff, err)
			if err := sleepWithContext(ctx, backoff); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("tts request failed after %d attempts: %w", c.maxAttempts, lastErr)
}

// doOnce runs one HTTP exchange. The second return reports whether the
// failure is worth retrying.
func (c *MurfClient) doOnce(req *http.Request) ([]byte, bool, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		retryable := resp.StatusCode < 400 || resp.StatusCode >= 500
		return nil, retryable, fmt.Errorf("murf tts error %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("reading response: %w", err)
	}
	return body, false, nil
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("tts request cancelled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
