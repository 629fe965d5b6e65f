package session

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/RSB4760/soundrecorder/internal/domain/device"
	"github.com/RSB4760/soundrecorder/internal/domain/sample"
	"github.com/RSB4760/soundrecorder/internal/infra/storage"
)

// Controller owns one recording/playback session: the state machine, the
// single live backend handle, the sample file reference and its
// accumulated length. It is not internally thread-safe; the caller
// serializes all commands, and asynchronous backend callbacks reach the
// controller through the configured dispatcher.
type Controller struct {
	log      zerolog.Logger
	factory  device.Factory
	prober   device.AudioModeProber
	dispatch func(func())
	now      func() time.Time

	listener Listener
	state    State

	// At most one of recorder/player is non-nil. The recorder handle is
	// retained through Paused; both are nil in Idle.
	recorder device.Recorder
	player   device.Player

	sample      sample.Sample
	sampleStart time.Time // wall-clock mark of the current run segment

	channels     int
	samplingRate int
	maxDuration  time.Duration

	storagePath  string
	fallbackPath string
	namePrefix   string
	nameFormat   string
}

// Option configures a Controller.
type Option func(*Controller)

// WithStoragePath sets the primary sample directory.
func WithStoragePath(path string) Option {
	return func(c *Controller) { c.storagePath = path }
}

// WithFallbackPath sets the directory used when the primary is not
// writable. Empty disables the fallback.
func WithFallbackPath(path string) Option {
	return func(c *Controller) { c.fallbackPath = path }
}

// WithNamePrefix sets the generated file name prefix.
func WithNamePrefix(prefix string) Option {
	return func(c *Controller) { c.namePrefix = prefix }
}

// WithNameFormat sets the Go time layout embedded in generated file
// names.
func WithNameFormat(layout string) Option {
	return func(c *Controller) { c.nameFormat = layout }
}

// WithClock injects the time source used for segment accounting and
// progress.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithDispatcher injects the function that marshals asynchronous backend
// callbacks onto the caller's serialization context. The default invokes
// them inline.
func WithDispatcher(dispatch func(func())) Option {
	return func(c *Controller) { c.dispatch = dispatch }
}

// WithAudioModeProber injects the telephony probe consulted when a
// capture start fails.
func WithAudioModeProber(p device.AudioModeProber) Option {
	return func(c *Controller) { c.prober = p }
}

// New creates an idle session controller using factory for backend
// handles.
func New(factory device.Factory, opts ...Option) *Controller {
	c := &Controller{
		log:        zlog.With().Str("session", uuid.New().String()).Logger(),
		factory:    factory,
		prober:     device.NoCallProber{},
		dispatch:   func(fn func()) { fn() },
		now:        time.Now,
		state:      StateIdle,
		namePrefix: "recording",
		nameFormat: "2006-01-02 15:04:05",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetListener registers the notification listener. A nil listener drops
// all notifications.
func (c *Controller) SetListener(l Listener) { c.listener = l }

// SetChannels sets the capture channel count for the next recording.
// 0 leaves the engine default. Reset by StopRecording.
func (c *Controller) SetChannels(n int) { c.channels = n }

// SetSamplingRate sets the capture rate in Hz for the next recording.
// 0 leaves the engine default. Reset by StopRecording.
func (c *Controller) SetSamplingRate(rate int) { c.samplingRate = rate }

// SetMaxDuration limits the next recording; the engine reports reaching
// the limit through OnInfo. 0 means unlimited.
func (c *Controller) SetMaxDuration(d time.Duration) { c.maxDuration = d }

// SetStoragePath replaces the primary sample directory.
func (c *Controller) SetStoragePath(path string) { c.storagePath = path }

// State returns the current session state.
func (c *Controller) State() State { return c.state }

// SampleFile returns the current sample file path, or "" when none is
// loaded.
func (c *Controller) SampleFile() string { return c.sample.Path }

// SampleLength returns the accumulated sample length in whole seconds.
// Valid in any state; reflects the last completed recording.
func (c *Controller) SampleLength() int { return c.sample.Seconds() }

// Progress returns elapsed seconds of the current operation: accumulated
// plus open-segment time while recording, open-segment time while
// playing, 0 otherwise.
func (c *Controller) Progress() int {
	switch c.state {
	case StateRecording:
		return int((c.sample.Length + c.now().Sub(c.sampleStart)) / time.Second)
	case StatePlaying:
		return int(c.now().Sub(c.sampleStart) / time.Second)
	default:
		return 0
	}
}

// PeakAmplitude returns the engine's peak amplitude watermark, or 0 when
// not recording.
func (c *Controller) PeakAmplitude() int {
	if c.state != StateRecording {
		return 0
	}
	return c.recorder.PeakAmplitude()
}

// StartRecording stops any active session, replaces the previous sample
// file and starts a new capture. On any failure the partial backend and
// file are torn down, exactly one error code is signaled, and the session
// stays out of Recording.
func (c *Controller) StartRecording(format device.OutputFormat, extension string, source device.AudioSource, encoder device.Encoder) {
	c.Stop()

	if c.sample.Path != "" {
		if err := storage.Remove(c.sample.Path); err != nil {
			c.log.Warn().Err(err).Str("path", c.sample.Path).Msg("failed to delete previous sample")
		}
		c.sample = sample.Sample{}
	}

	dir, err := storage.Resolve(c.storagePath, c.fallbackPath)
	if err != nil {
		c.log.Warn().Err(err).Msg("no writable storage directory")
		c.signalError(StorageAccessError)
		return
	}

	f, err := storage.CreateUnique(dir, c.namePrefix, extension, c.nameFormat, c.now())
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to create sample file")
		c.signalError(StorageAccessError)
		return
	}
	path := f.Name()
	_ = f.Close()
	c.sample = sample.Sample{Path: path}

	rec := c.factory.NewRecorder()
	rec.SetCallbacks(c.recorderError, c.recorderInfo)

	err = rec.Configure(device.Config{
		Source:       source,
		Channels:     c.channels,
		SamplingRate: c.samplingRate,
		OutputFormat: format,
		Encoder:      encoder,
		MaxDuration:  c.maxDuration,
	})
	if err != nil {
		code := InternalError
		var unsupported *device.UnsupportedFormatError
		if errors.As(err, &unsupported) {
			code = UnsupportedFormat
		}
		c.abortStart(rec, code, err)
		return
	}

	if err := rec.SetOutputTarget(path); err != nil {
		c.abortStart(rec, StorageAccessError, err)
		return
	}
	if err := rec.Prepare(); err != nil {
		c.abortStart(rec, InternalError, err)
		return
	}
	if err := rec.Start(); err != nil {
		code := InternalError
		if c.prober.InCall() {
			code = InCallRecordError
		}
		c.abortStart(rec, code, err)
		return
	}

	c.recorder = rec
	c.sampleStart = c.now()
	c.setState(StateRecording)
}

// abortStart tears down a partially constructed recorder, removes the
// partial sample file and signals code. The session stays in its prior
// state.
func (c *Controller) abortStart(rec device.Recorder, code ErrorCode, cause error) {
	c.log.Warn().Err(cause).Str("code", code.String()).Msg("recording start failed")
	rec.Reset()
	rec.Release()
	if c.sample.Path != "" {
		_ = storage.Remove(c.sample.Path)
	}
	c.sample = sample.Sample{}
	c.signalError(code)
}

// PauseRecording suspends an active capture and banks the elapsed
// segment into the accumulated length.
func (c *Controller) PauseRecording() {
	if c.recorder == nil || c.state != StateRecording {
		return
	}
	if err := c.recorder.Pause(); err != nil {
		c.log.Warn().Err(err).Msg("pause failed")
		c.signalError(InternalError)
	}
	c.sample.Length += c.now().Sub(c.sampleStart)
	c.setState(StatePaused)
}

// ResumeRecording resumes a paused capture and opens a new segment.
func (c *Controller) ResumeRecording() {
	if c.recorder == nil || c.state != StatePaused {
		return
	}
	if err := c.recorder.Resume(); err != nil {
		c.log.Warn().Err(err).Msg("resume failed")
		c.signalError(InternalError)
	}
	c.sampleStart = c.now()
	c.setState(StateRecording)
}

// StopRecording stops and releases the recorder handle. The final open
// segment is banked only when stopping from Recording; capture channel
// and sampling-rate overrides are reset.
func (c *Controller) StopRecording() {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Stop(); err != nil {
		c.log.Warn().Err(err).Msg("stop failed")
		c.signalError(InternalError)
	}
	c.recorder.Reset()
	c.recorder.Release()
	c.recorder = nil
	c.channels = 0
	c.samplingRate = 0
	if c.state == StateRecording {
		c.sample.Length += c.now().Sub(c.sampleStart)
	}
	c.setState(StateIdle)
}

// StartPlayback stops any active session and plays the current sample
// file. A session without a sample is a silent no-op.
func (c *Controller) StartPlayback() {
	c.Stop()

	if c.sample.Path == "" {
		c.log.Debug().Msg("no sample to play")
		return
	}

	pl := c.factory.NewPlayer()
	pl.SetCallbacks(c.playerCompletion, c.playerError)

	if err := pl.SetSource(c.sample.Path); err != nil {
		c.log.Warn().Err(err).Msg("playback source rejected")
		pl.Release()
		c.signalError(InternalError)
		return
	}
	if err := pl.Prepare(); err != nil {
		c.log.Warn().Err(err).Msg("playback prepare failed")
		pl.Release()
		code := InternalError
		var prep *device.PrepareError
		if errors.As(err, &prep) {
			code = StorageAccessError
		}
		c.signalError(code)
		return
	}
	if err := pl.Start(); err != nil {
		c.log.Warn().Err(err).Msg("playback start failed")
		pl.Release()
		c.signalError(InternalError)
		return
	}

	c.player = pl
	c.sampleStart = c.now()
	c.setState(StatePlaying)
}

// StopPlayback stops and releases the player handle.
func (c *Controller) StopPlayback() {
	if c.player == nil {
		return
	}
	if err := c.player.Stop(); err != nil {
		c.log.Warn().Err(err).Msg("playback stop failed")
	}
	c.player.Release()
	c.player = nil
	c.setState(StateIdle)
}

// Stop stops recording and playback. Idempotent when neither is active.
func (c *Controller) Stop() {
	c.StopRecording()
	c.StopPlayback()
}

// Delete stops the session, removes the sample file from storage and
// resets the sample reference and length. Idle is always announced.
func (c *Controller) Delete() {
	c.Stop()

	if err := storage.Remove(c.sample.Path); err != nil {
		c.log.Warn().Err(err).Str("path", c.sample.Path).Msg("failed to delete sample")
	}
	c.sample = sample.Sample{}

	c.signalState(StateIdle)
}

// Clear stops the session and detaches the sample reference without
// deleting the file; ownership of the file passes to the caller. Idle is
// always announced.
func (c *Controller) Clear() {
	c.Stop()

	c.sample = sample.Sample{}

	c.signalState(StateIdle)
}

// SaveState returns the persistable snapshot blob, or nil when no sample
// is loaded.
func (c *Controller) SaveState() map[string]any {
	if c.sample.Path == "" {
		return nil
	}
	return map[string]any{
		sample.PathKey:   c.sample.Path,
		sample.LengthKey: c.sample.Length.Milliseconds(),
	}
}

// RestoreState adopts the sample described by a snapshot blob. It is a
// no-op when the blob lacks a path or length, the file no longer exists,
// or the path already matches the loaded sample. Otherwise the current
// sample is deleted, the restored one adopted, and Idle announced.
func (c *Controller) RestoreState(blob map[string]any) {
	if blob == nil {
		return
	}

	snap := sample.Snapshot{SampleLengthMillis: -1}
	if err := mapstructure.Decode(blob, &snap); err != nil {
		c.log.Warn().Err(err).Msg("malformed state blob")
		return
	}
	if snap.SamplePath == "" || snap.SampleLengthMillis < 0 {
		return
	}

	restored := sample.Sample{
		Path:   snap.SamplePath,
		Length: time.Duration(snap.SampleLengthMillis) * time.Millisecond,
	}
	if !restored.Exists() {
		return
	}
	if c.sample.Path == restored.Path {
		return
	}

	c.Delete()
	c.sample = restored

	c.signalState(StateIdle)
}

// setState transitions to state, suppressing no-op transitions.
func (c *Controller) setState(state State) {
	if state == c.state {
		return
	}
	c.state = state
	c.log.Debug().Str("state", state.String()).Msg("state changed")
	c.signalState(state)
}

func (c *Controller) signalState(state State) {
	if c.listener != nil {
		c.listener.OnStateChanged(state)
	}
}

func (c *Controller) signalError(code ErrorCode) {
	if c.listener != nil {
		c.listener.OnError(code)
	}
}

// recorderError handles an asynchronous capture fault. The session is
// stopped and RecordInterrupted signaled.
func (c *Controller) recorderError(what, extra int) {
	c.dispatch(func() {
		c.log.Warn().Int("what", what).Int("extra", extra).Msg("recorder fault")
		c.Stop()
		c.signalError(RecordInterrupted)
	})
}

// recorderInfo forwards engine informational events to the listener.
func (c *Controller) recorderInfo(what, extra int) {
	c.dispatch(func() {
		if c.listener != nil {
			c.listener.OnInfo(what, extra)
		}
	})
}

// playerError handles an asynchronous playback fault. The session is
// stopped and StorageAccessError signaled.
func (c *Controller) playerError(what, extra int) {
	c.dispatch(func() {
		c.log.Warn().Int("what", what).Int("extra", extra).Msg("player fault")
		c.Stop()
		c.signalError(StorageAccessError)
	})
}

// playerCompletion handles natural end of playback.
func (c *Controller) playerCompletion() {
	c.dispatch(func() {
		c.Stop()
	})
}
