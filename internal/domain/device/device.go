// Package device abstracts the platform audio capture and playback engines.
package device

import "time"

// AudioSource identifies the capture input.
type AudioSource int

const (
	SourceDefault AudioSource = iota // Platform default input
	SourceMic                        // Built-in microphone
	SourceVoiceCall                  // In-call audio (uplink+downlink)
)

// String returns the string representation of the audio source.
func (s AudioSource) String() string {
	switch s {
	case SourceDefault:
		return "default"
	case SourceMic:
		return "mic"
	case SourceVoiceCall:
		return "voice_call"
	default:
		return "unknown"
	}
}

// OutputFormat identifies the container format of the sample file.
type OutputFormat int

const (
	FormatWAV OutputFormat = iota // RIFF/WAVE container
	FormatAAC                     // ADTS AAC
	FormatAMR                     // AMR-NB
)

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	switch f {
	case FormatWAV:
		return "wav"
	case FormatAAC:
		return "aac"
	case FormatAMR:
		return "amr"
	default:
		return "unknown"
	}
}

// Encoder identifies the audio encoder used for capture.
type Encoder int

const (
	EncoderPCM16 Encoder = iota // 16-bit little-endian PCM
	EncoderAAC
	EncoderAMRNB
)

// String returns the string representation of the encoder.
func (e Encoder) String() string {
	switch e {
	case EncoderPCM16:
		return "pcm16"
	case EncoderAAC:
		return "aac"
	case EncoderAMRNB:
		return "amr_nb"
	default:
		return "unknown"
	}
}

// Info event codes forwarded from the capture engine.
const (
	InfoMaxDurationReached = 800 // extra carries the limit in milliseconds
	InfoMaxFileSizeReached = 801
)

// Config holds the capture configuration applied before Prepare.
// Zero values for Channels and SamplingRate mean "engine default".
type Config struct {
	Source       AudioSource
	Channels     int
	SamplingRate int
	OutputFormat OutputFormat
	Encoder      Encoder
	MaxDuration  time.Duration // 0 means unlimited
}

// Recorder is a capture engine handle. Lifecycle: Configure ->
// SetOutputTarget -> Prepare -> Start -> (Pause/Resume)* -> Stop ->
// Reset -> Release. A released handle must not be reused.
type Recorder interface {
	Configure(cfg Config) error
	SetOutputTarget(path string) error
	Prepare() error
	Start() error
	Pause() error
	Resume() error
	Stop() error
	Reset()
	Release()

	// PeakAmplitude returns the maximum absolute sample value observed
	// since the previous call, and resets the watermark.
	PeakAmplitude() int

	// SetCallbacks registers the asynchronous fault and info callbacks.
	// Both may be invoked from an engine-owned goroutine.
	SetCallbacks(onError func(what, extra int), onInfo func(what, extra int))
}

// Player is a playback engine handle. Lifecycle: SetSource -> Prepare ->
// Start -> Stop -> Release.
type Player interface {
	SetSource(path string) error
	Prepare() error
	Start() error
	Stop() error
	Release()

	// SetCallbacks registers the completion and asynchronous fault
	// callbacks. Both may be invoked from an engine-owned goroutine.
	SetCallbacks(onCompletion func(), onError func(what, extra int))
}

// Factory constructs engine handles. At most one handle produced by a
// factory is expected to be live at a time; the caller releases the
// previous handle before requesting a new one.
type Factory interface {
	NewRecorder() Recorder
	NewPlayer() Player
}

// AudioModeProber reports whether the device audio path is occupied by a
// telephony call. Consulted only when a capture start fails.
type AudioModeProber interface {
	InCall() bool
}

// NoCallProber is the default prober for hosts without telephony.
type NoCallProber struct{}

// InCall always reports false.
func (NoCallProber) InCall() bool { return false }
