// Package portaudio implements the device backend interfaces on top of
// PortAudio, capturing to and playing back RIFF/WAVE files with 16-bit
// PCM frames.
package portaudio

import (
	"github.com/cockroachdb/errors"
	"github.com/gordonklaus/portaudio"

	"github.com/RSB4760/soundrecorder/internal/domain/device"
)

const framesPerBuffer = 1024

// Backend is a device.Factory backed by the host PortAudio library. It
// owns the library initialization; Close must be called when no handles
// remain.
type Backend struct{}

// New initializes PortAudio and returns the backend.
func New() (*Backend, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, errors.Wrap(err, "initialize portaudio")
	}
	return &Backend{}, nil
}

// Close terminates the PortAudio library.
func (b *Backend) Close() error {
	return errors.Wrap(portaudio.Terminate(), "terminate portaudio")
}

// NewRecorder returns a capture handle writing WAV files.
func (b *Backend) NewRecorder() device.Recorder {
	return &wavRecorder{}
}

// NewPlayer returns a playback handle for WAV files.
func (b *Backend) NewPlayer() device.Player {
	return &wavPlayer{}
}
