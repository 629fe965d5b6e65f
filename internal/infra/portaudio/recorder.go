package portaudio

import (
	"encoding/binary"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gordonklaus/portaudio"

	"github.com/RSB4760/soundrecorder/internal/domain/device"
)

// Fault codes delivered through the asynchronous error callback.
const faultWriteFailed = 1

// wavRecorder captures the default input device into a WAV file.
// Pause/Resume stop and restart the stream while the file stays open;
// Stop backpatches the header sizes.
type wavRecorder struct {
	channels  int
	rate      int
	maxFrames int64 // duration limit in frames, 0 means unlimited
	maxMillis int

	file   *os.File
	stream *portaudio.Stream

	onError func(what, extra int)
	onInfo  func(what, extra int)

	// mu guards everything below; the capture callback runs on a
	// PortAudio-owned goroutine.
	mu        sync.Mutex
	capturing bool
	dataBytes int64
	frames    int64
	peak      int32
	limitHit  bool
}

func (w *wavRecorder) Configure(cfg device.Config) error {
	if cfg.Encoder != device.EncoderPCM16 {
		return device.NewUnsupportedFormatError(cfg.Encoder)
	}
	if cfg.OutputFormat != device.FormatWAV {
		return errors.Newf("output format %s not supported by this backend", cfg.OutputFormat)
	}

	w.channels = cfg.Channels
	if w.channels <= 0 {
		w.channels = 1
	}
	w.rate = cfg.SamplingRate
	if w.rate <= 0 {
		w.rate = 44100
	}
	if cfg.MaxDuration > 0 {
		w.maxFrames = int64(cfg.MaxDuration.Seconds() * float64(w.rate))
		w.maxMillis = int(cfg.MaxDuration.Milliseconds())
	}
	return nil
}

func (w *wavRecorder) SetOutputTarget(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return errors.Wrap(err, "open output target")
	}
	w.file = f
	return nil
}

func (w *wavRecorder) SetCallbacks(onError, onInfo func(what, extra int)) {
	w.onError = onError
	w.onInfo = onInfo
}

func (w *wavRecorder) Prepare() error {
	if w.file == nil {
		return device.NewPrepareError(errors.New("no output target set"))
	}
	if err := writeWAVHeader(w.file, w.channels, w.rate); err != nil {
		return device.NewPrepareError(err)
	}

	stream, err := portaudio.OpenDefaultStream(w.channels, 0, float64(w.rate), framesPerBuffer, w.capture)
	if err != nil {
		return device.NewPrepareError(err)
	}
	w.stream = stream
	return nil
}

func (w *wavRecorder) Start() error {
	if w.stream == nil {
		return device.NewStartError(errors.New("not prepared"))
	}
	if err := w.stream.Start(); err != nil {
		return device.NewStartError(err)
	}
	w.mu.Lock()
	w.capturing = true
	w.mu.Unlock()
	return nil
}

func (w *wavRecorder) Pause() error {
	w.mu.Lock()
	w.capturing = false
	w.mu.Unlock()
	return errors.Wrap(w.stream.Stop(), "pause stream")
}

func (w *wavRecorder) Resume() error {
	if err := w.stream.Start(); err != nil {
		return errors.Wrap(err, "resume stream")
	}
	w.mu.Lock()
	w.capturing = true
	w.mu.Unlock()
	return nil
}

func (w *wavRecorder) Stop() error {
	w.mu.Lock()
	w.capturing = false
	dataBytes := w.dataBytes
	w.mu.Unlock()

	if w.stream != nil {
		if err := w.stream.Stop(); err != nil {
			return errors.Wrap(err, "stop stream")
		}
	}
	if w.file != nil {
		if err := finalizeWAVHeader(w.file, dataBytes); err != nil {
			return err
		}
		if err := w.file.Sync(); err != nil {
			return errors.Wrap(err, "sync sample file")
		}
	}
	return nil
}

func (w *wavRecorder) Reset() {
	w.mu.Lock()
	w.capturing = false
	w.mu.Unlock()
}

func (w *wavRecorder) Release() {
	if w.stream != nil {
		_ = w.stream.Close()
		w.stream = nil
	}
	if w.file != nil {
		_ = w.file.Close()
		w.file = nil
	}
}

func (w *wavRecorder) PeakAmplitude() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	peak := w.peak
	w.peak = 0
	return int(peak)
}

// capture appends a buffer of interleaved frames to the sample file and
// tracks the peak watermark and the duration limit.
func (w *wavRecorder) capture(in []int16) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.capturing {
		return
	}

	if err := binary.Write(w.file, binary.LittleEndian, in); err != nil {
		w.capturing = false
		if w.onError != nil {
			go w.onError(faultWriteFailed, 0)
		}
		return
	}
	w.dataBytes += int64(len(in)) * 2
	w.frames += int64(len(in) / w.channels)

	for _, s := range in {
		v := int32(s)
		if v < 0 {
			v = -v
		}
		if v > w.peak {
			w.peak = v
		}
	}

	if w.maxFrames > 0 && w.frames >= w.maxFrames && !w.limitHit {
		w.limitHit = true
		w.capturing = false
		if w.onInfo != nil {
			go w.onInfo(device.InfoMaxDurationReached, w.maxMillis)
		}
	}
}
