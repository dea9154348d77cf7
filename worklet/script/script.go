// Package script provides processors written in JavaScript. The script
// must declare a global function:
//
//	function process(inputs, outputs, parameters) { ... return true; }
//
// that follows render.Processor semantics. Inputs and outputs are arrays of
// arrays of channels, parameters is an object of arrays keyed by parameter
// name. Globals sampleRate, currentFrame, currentTime, parameterData and
// options are available to the script.
package script

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dop251/goja"

	"pipelined.dev/render"
)

// ErrNoProcess is returned when script doesn't declare process function.
var ErrNoProcess = errors.New("script has no process function")

// Error is an exception thrown by script.
type Error struct {
	Message string
	Stack   string
}

func (e *Error) Error() string {
	return e.Message
}

// Option configures script processors.
type Option func(*processor)

// WithTimeout interrupts process calls that take longer than d.
func WithTimeout(d time.Duration) Option {
	return func(p *processor) {
		p.timeout = d
	}
}

// Definition compiles source and returns a definition of processors that
// run it. Every processor has its own runtime.
func Definition(name, source string, params []render.ParameterDescriptor, options ...Option) (render.ProcessorDefinition, error) {
	program, err := goja.Compile(name, source, false)
	if err != nil {
		return render.ProcessorDefinition{}, fmt.Errorf("compile %s: %w", name, convert(err))
	}
	return render.ProcessorDefinition{
		Parameters: params,
		New: func(o render.ProcessorOptions) (render.Processor, error) {
			return newProcessor(program, o, options...)
		},
	}, nil
}

type processor struct {
	vm      *goja.Runtime
	process goja.Callable
	timeout time.Duration
	// clockErr is returned by the next Process call.
	clockErr error
}

func newProcessor(program *goja.Program, o render.ProcessorOptions, options ...Option) (*processor, error) {
	vm := goja.New()
	globals := map[string]interface{}{
		"sampleRate":    o.SampleRate,
		"currentFrame":  0,
		"currentTime":   0,
		"parameterData": o.ParameterData,
		"options":       o.Options,
	}
	for name, value := range globals {
		if err := vm.Set(name, value); err != nil {
			return nil, fmt.Errorf("set %s: %w", name, err)
		}
	}
	if _, err := vm.RunProgram(program); err != nil {
		return nil, convert(err)
	}
	fn, ok := goja.AssertFunction(vm.Get("process"))
	if !ok {
		return nil, ErrNoProcess
	}
	p := processor{
		vm:      vm,
		process: fn,
	}
	for _, option := range options {
		option(&p)
	}
	return &p, nil
}

// Clock implements render.Clocked. Globals can be made read-only by the
// script, such failure is returned by the next Process call.
func (p *processor) Clock(currentFrame int64, currentTime float64) {
	if err := p.vm.Set("currentFrame", currentFrame); err != nil {
		p.clockErr = fmt.Errorf("set currentFrame: %w", convert(err))
		return
	}
	if err := p.vm.Set("currentTime", currentTime); err != nil {
		p.clockErr = fmt.Errorf("set currentTime: %w", convert(err))
	}
}

// Process calls process function of the script.
func (p *processor) Process(inputs, outputs [][][]float32, params map[string][]float32) (bool, error) {
	if err := p.clockErr; err != nil {
		p.clockErr = nil
		return false, err
	}
	jsOutputs := p.buffers(outputs)
	jsParams := p.vm.NewObject()
	for name, values := range params {
		if err := jsParams.Set(name, p.channel(values)); err != nil {
			return false, err
		}
	}

	if p.timeout > 0 {
		timer := time.AfterFunc(p.timeout, func() {
			p.vm.Interrupt("timeout")
		})
		defer timer.Stop()
	}
	result, err := p.process(goja.Undefined(), p.buffers(inputs), jsOutputs, jsParams)
	if err != nil {
		return false, convert(err)
	}
	p.read(jsOutputs, outputs)
	return result.ToBoolean(), nil
}

func (p *processor) buffers(buffers [][][]float32) *goja.Object {
	items := make([]interface{}, len(buffers))
	for i := range buffers {
		channels := make([]interface{}, len(buffers[i]))
		for c := range buffers[i] {
			channels[c] = p.channel(buffers[i][c])
		}
		items[i] = p.vm.NewArray(channels...)
	}
	return p.vm.NewArray(items...)
}

func (p *processor) channel(samples []float32) *goja.Object {
	values := make([]interface{}, len(samples))
	for i, v := range samples {
		values[i] = float64(v)
	}
	return p.vm.NewArray(values...)
}

// read copies values written by script into outputs. Channels replaced
// with empty arrays are truncated.
func (p *processor) read(jsOutputs *goja.Object, outputs [][][]float32) {
	for i := range outputs {
		output := p.element(jsOutputs, i)
		if output == nil {
			continue
		}
		for c := range outputs[i] {
			channel := p.element(output, c)
			if channel == nil {
				continue
			}
			length := len(outputs[i][c])
			if v := channel.Get("length"); v != nil && !goja.IsUndefined(v) {
				length = int(v.ToInteger())
			}
			if length == 0 {
				outputs[i][c] = outputs[i][c][:0]
				continue
			}
			for j := range outputs[i][c] {
				if j >= length {
					break
				}
				v := channel.Get(strconv.Itoa(j))
				if v == nil || goja.IsUndefined(v) {
					continue
				}
				outputs[i][c][j] = float32(v.ToFloat())
			}
		}
	}
}

func (p *processor) element(o *goja.Object, i int) *goja.Object {
	v := o.Get(strconv.Itoa(i))
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	return v.ToObject(p.vm)
}

func convert(err error) error {
	var exc *goja.Exception
	if errors.As(err, &exc) {
		return &Error{Message: exc.Error(), Stack: exc.String()}
	}
	return err
}
