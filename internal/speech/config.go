package speech

import "time"

// Default voice for TTS. Change this constant to switch voices.
// Full list: https://murf.ai/api/docs/voices-styles/voice-library
const DefaultVoice = "en-US-ken"

// Audio format requested from Murf and expected by the player.
const DefaultAudioFormat = "WAV"

// Audio parameters matching the default format.
const (
	SampleRate   = 24000
	ChannelCount = 1
	BitDepth     = 16
)

// Env var names for Murf credentials.
const (
	EnvMurfAPIKey = "MURF_API_KEY"
)

// SpeechRequest is a queued item waiting to be spoken.
type SpeechRequest struct {
	Text     string
	QueuedAt time.Time
}
