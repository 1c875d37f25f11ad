package speech

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/voxcart/internal/domain"
	"github.com/hammamikhairi/voxcart/internal/logger"
)

// Compile-time interface check.
var _ domain.Speaker = (*Mouth)(nil)

// Synthesizer renders text into playable audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Voice() string
}

// AudioSink plays audio bytes. Play blocks until done or Stop is called.
type AudioSink interface {
	Play(audio []byte) error
	Stop()
}

// MouthOption configures the Mouth.
type MouthOption func(*Mouth)

// WithQueueSize sets the playback queue capacity. When the queue is
// full, new Say calls are dropped rather than blocking the caller.
func WithQueueSize(n int) MouthOption {
	return func(m *Mouth) {
		m.requests = make(chan SpeechRequest, n)
	}
}

// WithCacheDir sets the filesystem directory used for persistent audio
// caching. If empty, the disk layer is disabled (pure in-memory).
func WithCacheDir(dir string) MouthOption {
	return func(m *Mouth) {
		m.cacheDir = dir
	}
}

// WithDiskWrite controls whether new cache entries are written to disk.
// Even when false, existing on-disk entries are still read.
func WithDiskWrite(enabled bool) MouthOption {
	return func(m *Mouth) {
		m.diskWrite = enabled
	}
}

// WithAfterSpeak registers a hook invoked after an utterance finishes
// playing. Interrupted or failed utterances do not fire it.
func WithAfterSpeak(fn func(text string)) MouthOption {
	return func(m *Mouth) {
		m.afterSpeak = fn
	}
}

// Mouth is the spoken-output half of the assistant. All speech flows
// through a buffered channel consumed by a single goroutine, so
// playback is strictly first-in-first-out and at most one utterance is
// audible at a time.
//
// An internal AudioCache avoids re-synthesizing identical text; canned
// confirmations hit the network once per voice.
type Mouth struct {
	synth Synthesizer
	sink  AudioSink
	log   *logger.Logger
	cache *AudioCache

	requests chan SpeechRequest

	mu             sync.Mutex
	muted          bool
	speaking       bool
	interrupted    bool // set by Interrupt(), checked between synth and play
	lastSpokenText string

	afterSpeak func(text string)

	cacheDir  string
	diskWrite bool
}

// NewMouth creates a speech dispatcher with the given synthesizer and sink.
func NewMouth(synth Synthesizer, sink AudioSink, log *logger.Logger, opts ...MouthOption) *Mouth {
	m := &Mouth{
		synth:     synth,
		sink:      sink,
		log:       log,
		requests:  make(chan SpeechRequest, 32),
		diskWrite: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	// Build the cache after options are applied so cacheDir/diskWrite
	// are settled.
	m.cache = NewAudioCache(synth.Voice(), m.cacheDir, m.diskWrite, log)
	return m
}

// Say queues text to be spoken. Non-blocking: when the mouth is muted
// or the queue is full the text is dropped at enqueue, never later.
func (m *Mouth) Say(text string) {
	if text == "" {
		return
	}

	m.mu.Lock()
	muted := m.muted
	m.mu.Unlock()
	if muted {
		m.log.Debug("mouth: muted, dropping: %s", truncate(text, 60))
		return
	}

	select {
	case m.requests <- SpeechRequest{Text: text, QueuedAt: time.Now()}:
		m.log.Debug("mouth: queued (queue_len=%d): %s", len(m.requests), truncate(text, 60))
	default:
		m.log.Warn("mouth: queue full, dropping: %s", truncate(text, 60))
	}
}

// Mute silences the mouth. Queued utterances still play; new Say calls
// are dropped until Unmute.
func (m *Mouth) Mute() {
	m.mu.Lock()
	m.muted = true
	m.mu.Unlock()
	m.log.Debug("mouth: muted")
}

// Unmute re-enables speech.
func (m *Mouth) Unmute() {
	m.mu.Lock()
	m.muted = false
	m.mu.Unlock()
	m.log.Debug("mouth: unmuted")
}

// IsMuted reports whether Say currently drops text.
func (m *Mouth) IsMuted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

// IsSpeaking reports whether an utterance is being synthesized or played.
func (m *Mouth) IsSpeaking() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speaking
}

// QueueLen returns the number of pending speech requests.
func (m *Mouth) QueueLen() int {
	return len(m.requests)
}

// Interrupt clears the queue and stops the currently playing audio.
// Text queued after the interrupt plays normally. The cut-off covers
// only requests already enqueued: a Say racing an Interrupt from
// another goroutine may land after the drain and play, so callers
// needing a strict boundary must order Say and Interrupt themselves,
// as the input event loop does.
func (m *Mouth) Interrupt() {
	m.mu.Lock()
	m.interrupted = true
	m.mu.Unlock()

	for {
		select {
		case <-m.requests:
		default:
			m.sink.Stop()
			m.log.Debug("mouth: interrupted, queue cleared, playback stopped")
			return
		}
	}
}

// Start begins the playback consumer goroutine. Non-blocking.
func (m *Mouth) Start(ctx context.Context) {
	go m.consume(ctx)
	m.log.Info("mouth started")
}

// consume is the single playback consumer. Requests play in arrival
// order, one at a time.
func (m *Mouth) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			m.log.Info("mouth stopped")
			return
		case req := <-m.requests:
			// Anything received here was queued after the last
			// Interrupt drained the channel.
			m.mu.Lock()
			m.interrupted = false
			m.speaking = true
			m.mu.Unlock()

			m.process(ctx, req)

			m.mu.Lock()
			m.speaking = false
			m.mu.Unlock()
		}
	}
}

// process synthesizes and plays a single request.
func (m *Mouth) process(ctx context.Context, req SpeechRequest) {
	waited := time.Since(req.QueuedAt).Round(time.Millisecond)
	m.log.Debug("mouth: speaking (waited=%s): %s", waited, truncate(req.Text, 60))

	audio, err := m.synthesizeWithCache(ctx, req.Text)
	if err != nil {
		m.log.Error("mouth: synthesis failed: %v", err)
		return
	}

	// Interrupt may have landed while synthesizing.
	m.mu.Lock()
	abort := m.interrupted
	m.mu.Unlock()
	if abort {
		m.log.Debug("mouth: skipping playback (interrupted)")
		return
	}

	if err := m.sink.Play(audio); err != nil {
		m.log.Error("mouth: playback failed: %v", err)
		return
	}

	// Interrupted mid-playback: the sink was stopped early, treat the
	// utterance as unspoken.
	m.mu.Lock()
	abort = m.interrupted
	if !abort {
		m.lastSpokenText = req.Text
	}
	m.mu.Unlock()
	if abort {
		return
	}

	if m.afterSpeak != nil {
		m.afterSpeak(req.Text)
	}
}

// synthesizeWithCache checks the cache first, otherwise synthesizes and
// stores the result.
func (m *Mouth) synthesizeWithCache(ctx context.Context, text string) ([]byte, error) {
	if audio, ok := m.cache.Get(text); ok {
		return audio, nil
	}
	audio, err := m.synth.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	m.cache.Put(text, audio)
	return audio, nil
}

// Prefetch pre-synthesizes the given texts in background goroutines and
// stores the results in the audio cache, skipping texts already cached.
// Non-blocking. Call it with the canned confirmations at startup so
// they play instantly.
func (m *Mouth) Prefetch(ctx context.Context, texts ...string) {
	for _, text := range texts {
		if text == "" || m.cache.Has(text) {
			continue
		}
		go func(t string) {
			audio, err := m.synth.Synthesize(ctx, t)
			if err != nil {
				m.log.Error("prefetch: synthesis failed: %v", err)
				return
			}
			m.cache.Put(t, audio)
			m.log.Debug("prefetch: cached %d bytes for: %s", len(audio), truncate(t, 50))
		}(text)
	}
}

// LastSpoken returns the most recently completed utterance.
func (m *Mouth) LastSpoken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSpokenText
}

// Cache returns the audio cache used by this Mouth. Useful for stats.
func (m *Mouth) Cache() *AudioCache { return m.cache }

// truncate shortens a string for logging.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
