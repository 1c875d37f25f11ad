package speech

import (
	"context"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	audiotranscriber "github.com/sklyt/whisper/pkg"

	"github.com/hammamikhairi/voxcart/internal/logger"
)

// envAnnotation matches whisper environmental annotations like
// "(keyboard clicking)", "[laughter]", "(speaking French)", etc.
var envAnnotation = regexp.MustCompile(`[\(\[][a-zA-Z][a-zA-Z\s]*[\)\]]`)

// EarOption configures the Ear.
type EarOption func(*Ear)

// WithChunkDuration sets how long each recording chunk lasts.
func WithChunkDuration(d time.Duration) EarOption {
	return func(e *Ear) { e.chunkDuration = d }
}

// WithDebounce sets the silence window that ends an utterance. New
// speech inside the window extends it.
func WithDebounce(d time.Duration) EarOption {
	return func(e *Ear) { e.debounce = d }
}

// WithTempDir sets the directory for temporary WAV files.
func WithTempDir(dir string) EarOption {
	return func(e *Ear) { e.tempDir = dir }
}

// WithMaxFailures sets how many consecutive capture failures are
// tolerated before the ear gives up and closes its stream.
func WithMaxFailures(n int) EarOption {
	return func(e *Ear) { e.maxFailures = n }
}

// Ear provides continuous speech-to-text input using a local Whisper
// model. It records back-to-back chunks and accumulates speech until a
// debounce window of silence passes, then emits the joined utterance on
// its channel.
//
// There is no activation phrase: the assistant listens whenever it is
// not muted. Echo protection skips recording while the Mouth is
// audible so the assistant doesn't transcribe itself.
type Ear struct {
	whisperBin string
	modelPath  string
	tempDir    string
	log        *logger.Logger
	mouth      *Mouth // optional, used for echo protection

	chunkDuration time.Duration
	debounce      time.Duration
	maxFailures   int

	mu     sync.Mutex
	muted  bool
	textCh chan string // transcribed utterances flow here
}

// NewEar creates a continuous voice input listener.
//
//   - whisperBin: path to the whisper-cli executable
//   - modelPath:  path to the GGML model file
//   - mouth:      optional Mouth, consulted for echo protection
func NewEar(whisperBin, modelPath string, mouth *Mouth, log *logger.Logger, opts ...EarOption) *Ear {
	e := &Ear{
		whisperBin:    whisperBin,
		modelPath:     modelPath,
		tempDir:       ".voxcart-stt",
		log:           log,
		mouth:         mouth,
		chunkDuration: 750 * time.Millisecond,
		debounce:      1500 * time.Millisecond,
		maxFailures:   5,
		textCh:        make(chan string, 8),
	}
	for _, opt := range opts {
		opt(e)
	}

	if _, err := exec.LookPath(e.whisperBin); err != nil {
		log.Error("ear: whisper binary %q not found in PATH: %v", e.whisperBin, err)
	}

	return e
}

// C returns the channel that receives transcribed utterances. The
// channel is closed when Run returns.
func (e *Ear) C() <-chan string {
	return e.textCh
}

// Mute temporarily disables listening (e.g. while handling a command).
func (e *Ear) Mute() {
	e.mu.Lock()
	e.muted = true
	e.mu.Unlock()
	e.log.Debug("ear: muted")
}

// Unmute re-enables listening.
func (e *Ear) Unmute() {
	e.mu.Lock()
	e.muted = false
	e.mu.Unlock()
	e.log.Debug("ear: unmuted")
}

func (e *Ear) isMuted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

// Run starts the listening loop. Blocks until ctx is cancelled or the
// microphone fails repeatedly, then closes the text channel. Call this
// in a goroutine.
func (e *Ear) Run(ctx context.Context) error {
	defer close(e.textCh)

	e.log.Info("ear: started (chunk=%s, debounce=%s)", e.chunkDuration, e.debounce)

	// Consecutive silent chunks that together exceed the debounce
	// window end the current utterance.
	silentChunks := int(e.debounce / e.chunkDuration)
	if silentChunks < 1 {
		silentChunks = 1
	}

	var parts []string
	emptyRuns := 0
	failures := 0

	flush := func() {
		combined := strings.TrimSpace(strings.Join(parts, " "))
		parts = parts[:0]
		emptyRuns = 0
		if combined == "" {
			return
		}
		e.log.Info("ear: heard: %q", combined)
		select {
		case e.textCh <- combined:
		case <-ctx.Done():
		}
	}

	for {
		select {
		case <-ctx.Done():
			e.log.Info("ear: stopped")
			return ctx.Err()
		default:
		}

		if e.isMuted() {
			flush()
			time.Sleep(200 * time.Millisecond)
			continue
		}

		// Echo protection: don't record while the mouth is audible.
		if e.mouth != nil && (e.mouth.IsSpeaking() || e.mouth.QueueLen() > 0) {
			time.Sleep(200 * time.Millisecond)
			continue
		}

		chunk, err := e.recordChunk(ctx)
		if err != nil {
			failures++
			e.log.Error("ear: capture failed (%d/%d): %v", failures, e.maxFailures, err)
			if failures >= e.maxFailures {
				e.log.Error("ear: microphone unusable, giving up")
				return err
			}
			time.Sleep(2 * time.Second)
			continue
		}
		failures = 0

		// The mouth may have started speaking during our recording;
		// the audio is contaminated, discard it.
		if e.mouth != nil && (e.mouth.IsSpeaking() || e.mouth.QueueLen() > 0) {
			e.log.Debug("ear: discarding chunk, mouth started during recording")
			continue
		}

		chunk = cleanTranscription(chunk)
		if chunk == "" {
			if len(parts) > 0 {
				emptyRuns++
				if emptyRuns >= silentChunks {
					e.log.Debug("ear: silence window elapsed, ending utterance")
					flush()
				}
			}
			continue
		}

		// New speech extends the window.
		emptyRuns = 0
		e.log.Debug("ear: chunk: %q", chunk)
		parts = append(parts, chunk)
	}
}

// recordChunk does one recording cycle and returns the transcribed text.
func (e *Ear) recordChunk(ctx context.Context) (string, error) {
	var result string
	var wg sync.WaitGroup
	wg.Add(1)

	callback := func(text string) {
		result = text
		wg.Done()
	}

	verbose := e.log.GetLevel() >= logger.LevelVerbose
	t, err := audiotranscriber.NewTranscriber(
		e.whisperBin,
		e.modelPath,
		e.tempDir,
		"wav",
		callback,
		verbose,
	)
	if err != nil {
		return "", err
	}

	if err := t.Start(); err != nil {
		return "", err
	}

	select {
	case <-time.After(e.chunkDuration):
	case <-ctx.Done():
		t.Stop()
		wg.Wait()
		return "", nil
	}

	t.Stop()
	wg.Wait()

	return result, nil
}

// cleanTranscription strips whitespace, normalizes newlines, and
// removes whisper artifacts like "[BLANK_AUDIO]" and environmental
// annotations.
func cleanTranscription(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.TrimSpace(s)

	junkPatterns := []string{
		"[BLANK_AUDIO]",
		"[BLANK AUDIO]",
		"(silence)",
		"[silence]",
		"(no speech)",
		"[no speech]",
		"[Music]",
		"(music)",
		"(typing)",
		"(clicking)",
		"(breathing)",
		"(coughing)",
		"(background noise)",
		"(inaudible)",
		"(unintelligible)",
		"(static)",
	}
	for _, j := range junkPatterns {
		s = strings.ReplaceAll(s, j, "")
		s = strings.ReplaceAll(s, strings.ToLower(j), "")
		s = strings.ReplaceAll(s, strings.ToUpper(j), "")
	}

	// Catch-all for remaining (parenthesized) or [bracketed]
	// annotations.
	s = envAnnotation.ReplaceAllString(s, "")
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	s = strings.TrimSpace(s)

	// Known whisper hallucinations on near-silent audio.
	hallucinations := []string{
		"...",
		"you",
		"Thank you.",
		"Thanks for watching!",
		"Thank you for watching.",
		"Bye.",
		"Bye!",
		"The end.",
	}
	lower := strings.ToLower(s)
	for _, h := range hallucinations {
		if strings.ToLower(h) == lower {
			return ""
		}
	}

	// Strip whisper timestamp prefixes like "[00:00:00.000 --> ...]".
	if strings.HasPrefix(s, "[") {
		if idx := strings.Index(s, "]"); idx != -1 && idx < 40 {
			rest := strings.TrimSpace(s[idx+1:])
			if rest != "" {
				return rest
			}
		}
	}

	return s
}
