// Package native provides reference implementations of native node kinds.
// Backends differ by supported kinds and the way parameters are automated:
//
//	New renders with per-sample automation;
//	Legacy evaluates parameters once per quantum and resamples value curves.
package native

import (
	"errors"
	"fmt"
	"math"

	"pipelined.dev/render"
	"pipelined.dev/render/signal"
)

// ErrUnknownKind is returned when backend is asked to render a kind it
// doesn't support.
var ErrUnknownKind = errors.New("unknown node kind")

type renderFunc func(render.NativeRequest) ([]signal.Float32, error)

var implementations = map[render.Kind]renderFunc{
	render.KindGain:            gain,
	render.KindDelay:           delay,
	render.KindConstantSource:  constantSource,
	render.KindBufferSource:    bufferSource,
	render.KindAnalyser:        analyser,
	render.KindChannelMerger:   merger,
	render.KindChannelSplitter: splitter,
}

// Backend renders native node kinds.
type Backend struct {
	kinds     map[render.Kind]renderFunc
	perSample bool
}

// New returns a backend with per-sample automation. If no kinds are
// provided, all implemented kinds are supported. Kinds without
// implementation are ignored.
func New(kinds ...render.Kind) *Backend {
	b := Backend{
		kinds:     make(map[render.Kind]renderFunc),
		perSample: true,
	}
	if len(kinds) == 0 {
		kinds = render.Kinds()
	}
	for _, k := range kinds {
		if fn, ok := implementations[k]; ok {
			b.kinds[k] = fn
		}
	}
	return &b
}

// Capabilities returns supported kinds in declaration order.
func (b *Backend) Capabilities() render.Capabilities {
	caps := render.Capabilities{PerSampleAutomation: b.perSample}
	for _, k := range render.Kinds() {
		if _, ok := b.kinds[k]; ok {
			caps.Kinds = append(caps.Kinds, k)
		}
	}
	return caps
}

// Render renders node described by request.
func (b *Backend) Render(req render.NativeRequest) ([]signal.Float32, error) {
	fn, ok := b.kinds[req.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, req.Kind)
	}
	return fn(req)
}

func gain(req render.NativeRequest) ([]signal.Float32, error) {
	in, values := req.Inputs[0], req.Params["gain"]
	out := signal.EmptyFloat32(in.NumChannels(), req.Length)
	for c := range in {
		for i, v := range in[c] {
			out[c][i] = v * values[i]
		}
	}
	return []signal.Float32{out}, nil
}

func delay(req render.NativeRequest) ([]signal.Float32, error) {
	in, values := req.Inputs[0], req.Params["delayTime"]
	out := signal.EmptyFloat32(in.NumChannels(), req.Length)
	sampleRate := float64(req.SampleRate)
	for c := range in {
		for i := range out[c] {
			out[c][i] = sampleAt(in[c], float64(i)-float64(values[i])*sampleRate)
		}
	}
	return []signal.Float32{out}, nil
}

func constantSource(req render.NativeRequest) ([]signal.Float32, error) {
	out := signal.Float32{make([]float32, req.Length)}
	copy(out[0], req.Params["offset"])
	return []signal.Float32{out}, nil
}

// bufferSource plays buffer once from start time with playback rate.
func bufferSource(req render.NativeRequest) ([]signal.Float32, error) {
	buf, rate := req.Buffer, req.Params["playbackRate"]
	out := signal.EmptyFloat32(req.OutputChannels[0], req.Length)
	last := float64(buf.Size() - 1)
	start := int(math.Ceil(req.StartTime * float64(req.SampleRate)))
	position := 0.0
	for i := start; i < req.Length; i++ {
		if position < 0 || position > last {
			break
		}
		for c := range buf {
			out[c][i] = sampleAt(buf[c], position)
		}
		position += float64(rate[i])
	}
	return []signal.Float32{out}, nil
}

func analyser(req render.NativeRequest) ([]signal.Float32, error) {
	return []signal.Float32{req.Inputs[0].Slice(0, req.Length)}, nil
}

// merger puts first channel of every input into a channel of output.
func merger(req render.NativeRequest) ([]signal.Float32, error) {
	out := signal.EmptyFloat32(len(req.Inputs), req.Length)
	for i, in := range req.Inputs {
		if in.NumChannels() > 0 {
			copy(out[i], in[0])
		}
	}
	return []signal.Float32{out}, nil
}

// splitter puts every channel of input into a separate mono output.
func splitter(req render.NativeRequest) ([]signal.Float32, error) {
	in := req.Inputs[0]
	outputs := make([]signal.Float32, len(req.OutputChannels))
	for i := range outputs {
		outputs[i] = signal.EmptyFloat32(1, req.Length)
		if i < in.NumChannels() {
			copy(outputs[i][0], in[i])
		}
	}
	return outputs, nil
}

// sampleAt returns linearly interpolated value at fractional position.
// Samples outside of the slice are zero.
func sampleAt(samples []float32, position float64) float32 {
	index := math.Floor(position)
	frac := float32(position - index)
	v0 := at(samples, int(index))
	if frac == 0 {
		return v0
	}
	v1 := at(samples, int(index)+1)
	return v0 + (v1-v0)*frac
}

func at(samples []float32, i int) float32 {
	if i < 0 || i >= len(samples) {
		return 0
	}
	return samples[i]
}
