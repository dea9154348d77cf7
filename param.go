package render

import (
	"fmt"

	"pipelined.dev/render/automation"
)

// Param is an automatable parameter of a node. Its value is the value of
// the automation schedule plus the signal of connected nodes, clamped to
// [MinValue, MaxValue].
type Param struct {
	name         string
	node         *Node
	defaultValue float64
	minValue     float64
	maxValue     float64
	events       *automation.List
}

func newParam(n *Node, name string, defaultValue, minValue, maxValue float64) *Param {
	return &Param{
		name:         name,
		node:         n,
		defaultValue: defaultValue,
		minValue:     minValue,
		maxValue:     maxValue,
		events:       automation.NewList(defaultValue),
	}
}

// Name returns parameter name.
func (p *Param) Name() string {
	return p.name
}

// DefaultValue returns the value used when no events are scheduled.
func (p *Param) DefaultValue() float64 {
	return p.defaultValue
}

// MinValue returns the lowest computed value.
func (p *Param) MinValue() float64 {
	return p.minValue
}

// MaxValue returns the highest computed value.
func (p *Param) MaxValue() float64 {
	return p.maxValue
}

// Value returns the scheduled value at the start of the render.
func (p *Param) Value() float64 {
	return p.clamp(p.events.ValueAt(0))
}

// ValueAt returns the scheduled value at time. Connected signals are not
// included.
func (p *Param) ValueAt(time float64) float64 {
	return p.clamp(p.events.ValueAt(time))
}

// Events returns scheduled automation events.
func (p *Param) Events() []automation.Event {
	return p.events.Events()
}

// SetValue sets the value from the start of the render.
func (p *Param) SetValue(value float64) error {
	return p.SetValueAtTime(value, 0)
}

// SetValueAtTime schedules a value change at time.
func (p *Param) SetValueAtTime(value, time float64) error {
	return p.add(automation.SetValueAt(value, time))
}

// LinearRampToValueAtTime schedules a linear ramp from the previous event
// to value at endTime.
func (p *Param) LinearRampToValueAtTime(value, endTime float64) error {
	return p.add(automation.LinearRampTo(value, endTime))
}

// ExponentialRampToValueAtTime schedules an exponential ramp from the
// previous event to value at endTime.
func (p *Param) ExponentialRampToValueAtTime(value, endTime float64) error {
	return p.add(automation.ExponentialRampTo(value, endTime))
}

// SetTargetAtTime schedules an exponential approach to target starting at
// startTime.
func (p *Param) SetTargetAtTime(target, startTime, timeConstant float64) error {
	return p.add(automation.SetTargetAt(target, startTime, timeConstant))
}

// SetValueCurveAtTime schedules values to be followed during duration.
// Backends implementing CurveAdapter may rewrite the curve.
func (p *Param) SetValueCurveAtTime(values []float64, startTime, duration float64) error {
	e := automation.SetValueCurveAt(values, startTime, duration)
	adapter := p.node.graph.curves
	if adapter == nil {
		return p.add(e)
	}
	// check the original curve first so the adapter gets valid arguments.
	if err := p.events.Clone().Add(e); err != nil {
		return p.wrap(err)
	}
	for _, adapted := range adapter.AdaptValueCurve(values, startTime, duration, p.node.graph.sampleRate) {
		if err := p.add(adapted); err != nil {
			return err
		}
	}
	return nil
}

// CancelScheduledValues removes events starting at or after time.
func (p *Param) CancelScheduledValues(time float64) error {
	return p.add(automation.CancelScheduledValuesAt(time))
}

// CancelAndHoldAtTime removes events starting at or after time and holds
// the value scheduled at time.
func (p *Param) CancelAndHoldAtTime(time float64) error {
	return p.add(automation.CancelAndHoldAt(time))
}

func (p *Param) add(e automation.Event) error {
	if err := p.events.Add(e); err != nil {
		return p.wrap(err)
	}
	return nil
}

func (p *Param) wrap(err error) error {
	return fmt.Errorf("%w: %v param %q: %w", ErrConfiguration, p.node, p.name, err)
}

func (p *Param) clamp(v float64) float64 {
	if v < p.minValue {
		return p.minValue
	}
	if v > p.maxValue {
		return p.maxValue
	}
	return v
}
