// Package wav writes rendered signals as wav files.
package wav

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"pipelined.dev/render/signal"
)

const pcmFormat = 1

// ErrUnsupportedBitDepth is returned when unsupported bit depth is used.
var ErrUnsupportedBitDepth = errors.New("only 16, 24 and 32 bit depth is supported")

// Sink encodes signals into wav files.
type Sink struct {
	bitDepth signal.BitDepth
}

// NewSink creates new wav sink.
func NewSink(bitDepth signal.BitDepth) (*Sink, error) {
	if !supported(bitDepth) {
		return nil, ErrUnsupportedBitDepth
	}
	return &Sink{bitDepth: bitDepth}, nil
}

// Write encodes buf into w. Samples outside [-1, 1] are clipped.
func (s *Sink) Write(w io.WriteSeeker, sampleRate int, buf signal.Float32) error {
	numChannels := buf.NumChannels()
	if numChannels == 0 {
		return fmt.Errorf("write wav: empty signal")
	}
	e := wav.NewEncoder(w, sampleRate, int(s.bitDepth), numChannels, pcmFormat)
	ib := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: numChannels,
			SampleRate:  sampleRate,
		},
		Data:           clip(buf).AsInterInt(s.bitDepth),
		SourceBitDepth: int(s.bitDepth),
	}
	if err := e.Write(ib); err != nil {
		return err
	}
	return e.Close()
}

// WriteFile encodes buf into file at path.
func (s *Sink) WriteFile(path string, sampleRate int, buf signal.Float32) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.Write(f, sampleRate, buf); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func supported(bitDepth signal.BitDepth) bool {
	switch bitDepth {
	case signal.BitDepth16, signal.BitDepth24, signal.BitDepth32:
		return true
	}
	return false
}

func clip(buf signal.Float32) signal.Float32 {
	clipped := signal.EmptyFloat32(buf.NumChannels(), buf.Size())
	for c := range buf {
		for i, v := range buf[c] {
			switch {
			case v > 1:
				v = 1
			case v < -1:
				v = -1
			}
			clipped[c][i] = v
		}
	}
	return clipped
}
