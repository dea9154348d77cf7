// Package signal provides non-interleaved sample buffers used by the
// renderer. It allows to:
//   - allocate, slice and resize quantum aligned buffers
//   - up-mix and down-mix channels
//   - convert float samples to interleaved ints
package signal

import (
	"math"
	"time"
)

// Quantum is the number of frames in a single render quantum.
const Quantum = 128

// Float32 is a non-interleaved float32 signal.
type Float32 [][]float32

// Interpretation defines how channels are mixed when the number of
// channels of source and destination differ.
type Interpretation int

const (
	// Speakers applies up-mix and down-mix rules for mono and stereo.
	Speakers Interpretation = iota
	// Discrete copies matching channels and drops or zero-fills the rest.
	Discrete
)

const (
	// BitDepth8 is 8 bit depth.
	BitDepth8 = BitDepth(8)
	// BitDepth16 is 16 bit depth.
	BitDepth16 = BitDepth(16)
	// BitDepth24 is 24 bit depth.
	BitDepth24 = BitDepth(24)
	// BitDepth32 is 32 bit depth.
	BitDepth32 = BitDepth(32)
)

// BitDepth contains values required for float-to-int conversion.
type BitDepth int

// multiplier is used when float to int conversion is done.
func (bitDepth BitDepth) multiplier() int {
	switch bitDepth {
	case BitDepth8:
		return math.MaxInt8 - 1
	case BitDepth16:
		return math.MaxInt16 - 1
	case BitDepth24:
		return 1<<23 - 2
	case BitDepth32:
		return math.MaxInt32 - 1
	default:
		return 1
	}
}

// PaddedLength returns number of frames ceiled to the next full quantum.
func PaddedLength(frames int) int {
	return Quanta(frames) * Quantum
}

// Quanta returns number of quanta required to hold provided number of frames.
func Quanta(frames int) int {
	if frames <= 0 {
		return 0
	}
	return (frames + Quantum - 1) / Quantum
}

// DurationOf returns time duration of passed samples for this sample rate.
func DurationOf(sampleRate int, samples int64) time.Duration {
	return time.Duration(float64(samples) / float64(sampleRate) * float64(time.Second))
}

// EmptyFloat32 returns a silent buffer of specified dimensions.
func EmptyFloat32(numChannels int, size int) Float32 {
	result := make([][]float32, numChannels)
	for i := range result {
		result[i] = make([]float32, size)
	}
	return result
}

// NumChannels returns number of channels in this buffer.
func (floats Float32) NumChannels() int {
	return len(floats)
}

// Size returns number of samples in a single channel of this buffer.
func (floats Float32) Size() int {
	if floats.NumChannels() == 0 {
		return 0
	}
	return len(floats[0])
}

// Slice creates a new copy of buffer from start position with defined length.
// If buffer doesn't have enough samples - shorten block is returned.
//
// if start >= buffer size, nil is returned
// if start + len >= buffer size, len is decreased till the end of slice
// if start < 0, nil is returned
func (floats Float32) Slice(start int, len int) Float32 {
	if floats == nil || start >= floats.Size() || start < 0 {
		return nil
	}
	end := start + len
	if end > floats.Size() {
		end = floats.Size()
	}
	result := make([][]float32, floats.NumChannels())
	for i := range floats {
		result[i] = append(make([]float32, 0, end-start), floats[i][start:end]...)
	}
	return result
}

// Resize returns a copy of buffer with provided size. Missing samples are
// zero-filled, extra samples are dropped.
func (floats Float32) Resize(size int) Float32 {
	result := EmptyFloat32(floats.NumChannels(), size)
	for i := range floats {
		copy(result[i], floats[i])
	}
	return result
}

// IsSilent returns true if all samples are zero.
func (floats Float32) IsSilent() bool {
	for i := range floats {
		for _, v := range floats[i] {
			if v != 0 {
				return false
			}
		}
	}
	return true
}

// Mix adds source samples into destination. Channels are up-mixed or
// down-mixed according to the interpretation. Only min(size) samples are
// mixed.
func Mix(dst, src Float32, in Interpretation) {
	if dst.NumChannels() == 0 || src.NumChannels() == 0 {
		return
	}
	size := dst.Size()
	if src.Size() < size {
		size = src.Size()
	}
	if in == Speakers {
		switch {
		case src.NumChannels() == 1 && dst.NumChannels() == 2:
			for i := 0; i < size; i++ {
				dst[0][i] += src[0][i]
				dst[1][i] += src[0][i]
			}
			return
		case src.NumChannels() == 2 && dst.NumChannels() == 1:
			for i := 0; i < size; i++ {
				dst[0][i] += 0.5 * (src[0][i] + src[1][i])
			}
			return
		}
	}
	channels := dst.NumChannels()
	if src.NumChannels() < channels {
		channels = src.NumChannels()
	}
	for c := 0; c < channels; c++ {
		for i := 0; i < size; i++ {
			dst[c][i] += src[c][i]
		}
	}
}

// Mono returns a single channel down-mix of the buffer. Stereo is mixed
// with speakers rule, any other layout is averaged.
func (floats Float32) Mono() []float32 {
	switch floats.NumChannels() {
	case 0:
		return nil
	case 1:
		return append([]float32(nil), floats[0]...)
	}
	result := make([]float32, floats.Size())
	if floats.NumChannels() == 2 {
		for i := range result {
			result[i] = 0.5 * (floats[0][i] + floats[1][i])
		}
		return result
	}
	scale := 1 / float32(floats.NumChannels())
	for c := range floats {
		for i := range result {
			result[i] += floats[c][i] * scale
		}
	}
	return result
}

// AsInterInt converts float32 signal to interleaved int.
func (floats Float32) AsInterInt(bitDepth BitDepth) []int {
	var numChannels int
	if numChannels = len(floats); numChannels == 0 {
		return nil
	}

	// determine the multiplier for bit depth conversion
	multiplier := float64(bitDepth.multiplier())

	ints := make([]int, len(floats[0])*numChannels)

	for j := range floats {
		for i := range floats[j] {
			ints[i*numChannels+j] = int(float64(floats[j][i]) * multiplier)
		}
	}
	return ints
}
