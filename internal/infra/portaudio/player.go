package portaudio

import (
	"encoding/binary"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gordonklaus/portaudio"

	"github.com/RSB4760/soundrecorder/internal/domain/device"
)

const faultReadFailed = 2

// wavPlayer plays a WAV file through the default output device, firing
// the completion callback once when the data chunk is exhausted.
type wavPlayer struct {
	path   string
	file   *os.File
	stream *portaudio.Stream

	channels int
	rate     int

	onCompletion func()
	onError      func(what, extra int)
	completed    sync.Once

	// mu guards everything below; the playback callback runs on a
	// PortAudio-owned goroutine.
	mu        sync.Mutex
	playing   bool
	remaining int64 // data bytes left to stream
}

func (w *wavPlayer) SetSource(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(err, "stat source file")
	}
	if info.IsDir() {
		return errors.Newf("source %s is a directory", path)
	}
	w.path = path
	return nil
}

func (w *wavPlayer) SetCallbacks(onCompletion func(), onError func(what, extra int)) {
	w.onCompletion = onCompletion
	w.onError = onError
}

func (w *wavPlayer) Prepare() error {
	if w.path == "" {
		return device.NewPrepareError(errors.New("no source set"))
	}

	f, err := os.Open(w.path)
	if err != nil {
		return device.NewPrepareError(err)
	}
	channels, rate, dataBytes, err := readWAVHeader(f)
	if err != nil {
		_ = f.Close()
		return device.NewPrepareError(err)
	}

	stream, err := portaudio.OpenDefaultStream(0, channels, float64(rate), framesPerBuffer, w.playback)
	if err != nil {
		_ = f.Close()
		return device.NewPrepareError(err)
	}

	w.file = f
	w.stream = stream
	w.channels = channels
	w.rate = rate
	w.remaining = dataBytes
	return nil
}

func (w *wavPlayer) Start() error {
	if w.stream == nil {
		return errors.New("not prepared")
	}
	if err := w.stream.Start(); err != nil {
		return errors.Wrap(err, "start stream")
	}
	w.mu.Lock()
	w.playing = true
	w.mu.Unlock()
	return nil
}

func (w *wavPlayer) Stop() error {
	w.mu.Lock()
	w.playing = false
	w.mu.Unlock()

	if w.stream != nil {
		return errors.Wrap(w.stream.Stop(), "stop stream")
	}
	return nil
}

func (w *wavPlayer) Release() {
	if w.stream != nil {
		_ = w.stream.Close()
		w.stream = nil
	}
	if w.file != nil {
		_ = w.file.Close()
		w.file = nil
	}
}

// playback fills an output buffer from the data chunk, zero-filling past
// the end, and signals completion once.
func (w *wavPlayer) playback(out []int16) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.playing || w.remaining <= 0 {
		zeroFill(out)
		return
	}

	samples := int64(len(out))
	if have := w.remaining / 2; samples > have {
		samples = have
	}

	if err := binary.Read(w.file, binary.LittleEndian, out[:samples]); err != nil {
		w.playing = false
		zeroFill(out)
		if w.onError != nil {
			go w.onError(faultReadFailed, 0)
		}
		return
	}
	zeroFill(out[samples:])
	w.remaining -= samples * 2

	if w.remaining <= 0 {
		w.playing = false
		w.completed.Do(func() {
			if w.onCompletion != nil {
				go w.onCompletion()
			}
		})
	}
}

func zeroFill(out []int16) {
	for i := range out {
		out[i] = 0
	}
}
