package portaudio

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/cockroachdb/errors"
)

// wavHeaderSize is the canonical PCM header length this package writes
// and expects: RIFF chunk, single fmt chunk, data chunk.
const wavHeaderSize = 44

// writeWAVHeader writes a PCM16 header with zero sizes; the sizes are
// backpatched by finalizeWAVHeader once capture stops.
func writeWAVHeader(f *os.File, channels, rate int) error {
	var header [wavHeaderSize]byte
	copy(header[0:4], "RIFF")
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(rate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(rate*channels*2))
	binary.LittleEndian.PutUint16(header[32:34], uint16(channels*2))
	binary.LittleEndian.PutUint16(header[34:36], 16)
	copy(header[36:40], "data")

	if _, err := f.WriteAt(header[:], 0); err != nil {
		return errors.Wrap(err, "write wav header")
	}
	if _, err := f.Seek(wavHeaderSize, io.SeekStart); err != nil {
		return errors.Wrap(err, "seek past wav header")
	}
	return nil
}

// finalizeWAVHeader backpatches the RIFF and data chunk sizes.
func finalizeWAVHeader(f *os.File, dataBytes int64) error {
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(36+dataBytes))
	if _, err := f.WriteAt(size[:], 4); err != nil {
		return errors.Wrap(err, "patch riff size")
	}
	binary.LittleEndian.PutUint32(size[:], uint32(dataBytes))
	if _, err := f.WriteAt(size[:], 40); err != nil {
		return errors.Wrap(err, "patch data size")
	}
	return nil
}

// readWAVHeader validates the header and returns channels, sampling rate
// and data chunk size. Only the canonical PCM16 layout written by this
// package is accepted.
func readWAVHeader(f *os.File) (channels, rate int, dataBytes int64, err error) {
	var header [wavHeaderSize]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		return 0, 0, 0, errors.Wrap(err, "read wav header")
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return 0, 0, 0, errors.New("not a wav file")
	}
	if string(header[12:16]) != "fmt " || string(header[36:40]) != "data" {
		return 0, 0, 0, errors.New("unexpected wav chunk layout")
	}
	if binary.LittleEndian.Uint16(header[20:22]) != 1 ||
		binary.LittleEndian.Uint16(header[34:36]) != 16 {
		return 0, 0, 0, errors.New("not 16-bit pcm")
	}

	channels = int(binary.LittleEndian.Uint16(header[22:24]))
	rate = int(binary.LittleEndian.Uint32(header[24:28]))
	dataBytes = int64(binary.LittleEndian.Uint32(header[40:44]))
	if channels < 1 || rate < 1 {
		return 0, 0, 0, errors.New("invalid wav format fields")
	}
	return channels, rate, dataBytes, nil
}
