package signal_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/render/signal"
)

func TestPaddedLength(t *testing.T) {
	tests := []struct {
		frames   int
		quanta   int
		expected int
	}{
		{frames: 0, quanta: 0, expected: 0},
		{frames: 1, quanta: 1, expected: 128},
		{frames: 128, quanta: 1, expected: 128},
		{frames: 129, quanta: 2, expected: 256},
		{frames: 44100, quanta: 345, expected: 44160},
		{frames: -5, quanta: 0, expected: 0},
	}
	for _, test := range tests {
		assert.Equal(t, test.quanta, signal.Quanta(test.frames))
		assert.Equal(t, test.expected, signal.PaddedLength(test.frames))
	}
}

func TestSlice(t *testing.T) {
	tests := []struct {
		in       signal.Float32
		start    int
		len      int
		expected signal.Float32
	}{
		{
			in:       signal.Float32{{0, 1, 2, 3, 4}, {5, 6, 7, 8, 9}},
			start:    1,
			len:      2,
			expected: signal.Float32{{1, 2}, {6, 7}},
		},
		{
			in:       signal.Float32{{0, 1, 2, 3, 4}},
			start:    3,
			len:      10,
			expected: signal.Float32{{3, 4}},
		},
		{
			in:       signal.Float32{{0, 1, 2}},
			start:    3,
			len:      1,
			expected: nil,
		},
		{
			in:       signal.Float32{{0, 1, 2}},
			start:    -1,
			len:      1,
			expected: nil,
		},
	}
	for _, test := range tests {
		result := test.in.Slice(test.start, test.len)
		assert.Equal(t, test.expected, result)
	}

	// slice is a copy
	in := signal.Float32{{1, 2, 3}}
	s := in.Slice(0, 2)
	s[0][0] = 10
	assert.Equal(t, float32(1), in[0][0])
}

func TestResize(t *testing.T) {
	b := signal.Float32{{1, 2, 5}, {3, 4, 6}}

	assert.Equal(t, signal.Float32{{1, 2, 5, 0}, {3, 4, 6, 0}}, b.Resize(4))
	assert.Equal(t, signal.Float32{{1}, {3}}, b.Resize(1))
	assert.True(t, signal.EmptyFloat32(2, 8).IsSilent())
	assert.False(t, b.IsSilent())
}

func TestMix(t *testing.T) {
	tests := []struct {
		description    string
		dst            signal.Float32
		src            signal.Float32
		interpretation signal.Interpretation
		expected       signal.Float32
	}{
		{
			description:    "same layout",
			dst:            signal.Float32{{1, 1}, {2, 2}},
			src:            signal.Float32{{1, 2}, {3, 4}},
			interpretation: signal.Speakers,
			expected:       signal.Float32{{2, 3}, {5, 6}},
		},
		{
			description:    "mono to stereo speakers",
			dst:            signal.EmptyFloat32(2, 2),
			src:            signal.Float32{{0.5, 1}},
			interpretation: signal.Speakers,
			expected:       signal.Float32{{0.5, 1}, {0.5, 1}},
		},
		{
			description:    "stereo to mono speakers",
			dst:            signal.EmptyFloat32(1, 2),
			src:            signal.Float32{{1, 1}, {0, 0.5}},
			interpretation: signal.Speakers,
			expected:       signal.Float32{{0.5, 0.75}},
		},
		{
			description:    "mono to stereo discrete",
			dst:            signal.EmptyFloat32(2, 2),
			src:            signal.Float32{{0.5, 1}},
			interpretation: signal.Discrete,
			expected:       signal.Float32{{0.5, 1}, {0, 0}},
		},
		{
			description:    "shorter source",
			dst:            signal.EmptyFloat32(1, 3),
			src:            signal.Float32{{1}},
			interpretation: signal.Discrete,
			expected:       signal.Float32{{1, 0, 0}},
		},
	}
	for _, test := range tests {
		signal.Mix(test.dst, test.src, test.interpretation)
		assert.Equal(t, test.expected, test.dst, test.description)
	}
}

func TestMono(t *testing.T) {
	assert.Nil(t, signal.Float32{}.Mono())
	assert.Equal(t, []float32{1, 2}, signal.Float32{{1, 2}}.Mono())
	assert.Equal(t, []float32{0.5, 1}, signal.Float32{{1, 2}, {0, 0}}.Mono())
	assert.Equal(t, []float32{1, 1}, signal.Float32{{3, 0}, {0, 3}, {0, 0}}.Mono())
}

func TestFloat32AsInterInt(t *testing.T) {
	tests := []struct {
		floats   signal.Float32
		bitDepth signal.BitDepth
		expected []int
	}{
		{
			floats: signal.Float32{
				{1, 1, 1, 1},
				{2, 2, 2, 2},
			},
			expected: []int{1, 2, 1, 2, 1, 2, 1, 2},
		},
		{
			floats: signal.Float32{
				{1},
				{-1},
			},
			bitDepth: signal.BitDepth16,
			expected: []int{math.MaxInt16 - 1, -(math.MaxInt16 - 1)},
		},
		{
			floats:   nil,
			expected: nil,
		},
		{
			floats: signal.Float32{
				{},
				{},
			},
			expected: []int{},
		},
	}

	for _, test := range tests {
		ints := test.floats.AsInterInt(test.bitDepth)
		assert.Equal(t, len(test.expected), len(ints))
		for i := range test.expected {
			assert.Equal(t, test.expected[i], ints[i])
		}
	}
}
