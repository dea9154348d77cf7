package automation

import (
	"fmt"
	"math"
)

// Type is the kind of automation event.
type Type int

const (
	// SetValue sets a constant value at the start time.
	SetValue Type = iota
	// LinearRamp interpolates linearly from the previous value.
	LinearRamp
	// ExponentialRamp interpolates exponentially from the previous value.
	ExponentialRamp
	// SetTarget approaches the target value exponentially.
	SetTarget
	// SetValueCurve resamples an array of control points.
	SetValueCurve
	// CancelScheduledValues removes events starting at or after its time.
	CancelScheduledValues
	// CancelAndHold cancels and holds the value at its time.
	CancelAndHold
)

// Event is a single value-change instruction of a parameter schedule.
// Time is the start time of the event, except for ramps where it is the
// end time. The start of a ramp is defined by the event preceding it.
type Event struct {
	Type         Type
	Value        float64
	Time         float64
	TimeConstant float64
	Values       []float64
	Duration     float64

	// insertTime is the current time of the list when a ramp was added.
	insertTime float64
	// cut is the end of a truncated curve.
	cut       float64
	truncated bool
}

// SetValueAt returns an event that sets value at time.
func SetValueAt(value, time float64) Event {
	return Event{Type: SetValue, Value: value, Time: time}
}

// LinearRampTo returns an event that ramps linearly to value until endTime.
func LinearRampTo(value, endTime float64) Event {
	return Event{Type: LinearRamp, Value: value, Time: endTime}
}

// ExponentialRampTo returns an event that ramps exponentially to value
// until endTime.
func ExponentialRampTo(value, endTime float64) Event {
	return Event{Type: ExponentialRamp, Value: value, Time: endTime}
}

// SetTargetAt returns an event that approaches target from startTime.
func SetTargetAt(target, startTime, timeConstant float64) Event {
	return Event{Type: SetTarget, Value: target, Time: startTime, TimeConstant: timeConstant}
}

// SetValueCurveAt returns an event that follows values during duration
// starting at startTime. Values are copied.
func SetValueCurveAt(values []float64, startTime, duration float64) Event {
	return Event{
		Type:     SetValueCurve,
		Values:   append([]float64(nil), values...),
		Time:     startTime,
		Duration: duration,
	}
}

// CancelScheduledValuesAt returns an event that cancels the schedule at time.
func CancelScheduledValuesAt(time float64) Event {
	return Event{Type: CancelScheduledValues, Time: time}
}

// CancelAndHoldAt returns an event that cancels the schedule at time and
// holds the value it had at that time.
func CancelAndHoldAt(time float64) Event {
	return Event{Type: CancelAndHold, Time: time}
}

// IsRamp returns true for linear and exponential ramps.
func (e Event) IsRamp() bool {
	return e.Type == LinearRamp || e.Type == ExponentialRamp
}

// End returns the time when the event stops changing the value. For a
// curve it's the end of its interval, for other events it's Time.
func (e Event) End() float64 {
	if e.Type != SetValueCurve {
		return e.Time
	}
	if e.truncated {
		return e.cut
	}
	return e.Time + e.Duration
}

// String returns a readable representation of the event.
func (e Event) String() string {
	switch e.Type {
	case SetValue:
		return fmt.Sprintf("%v(%v, %v)", e.Type, e.Value, e.Time)
	case LinearRamp, ExponentialRamp:
		return fmt.Sprintf("%v(%v, %v)", e.Type, e.Value, e.Time)
	case SetTarget:
		return fmt.Sprintf("%v(%v, %v, %v)", e.Type, e.Value, e.Time, e.TimeConstant)
	case SetValueCurve:
		return fmt.Sprintf("%v(%d values, %v, %v)", e.Type, len(e.Values), e.Time, e.Duration)
	}
	return fmt.Sprintf("%v(%v)", e.Type, e.Time)
}

func (e Event) validate() error {
	if !finite(e.Value) || !finite(e.Time) || !finite(e.TimeConstant) || !finite(e.Duration) {
		return fmt.Errorf("%w: %v has non-finite argument", ErrInvalidEvent, e.Type)
	}
	if e.Time < 0 {
		return fmt.Errorf("%w: %v has negative time %v", ErrInvalidEvent, e.Type, e.Time)
	}
	switch e.Type {
	case SetTarget:
		if e.TimeConstant < 0 {
			return fmt.Errorf("%w: negative time constant %v", ErrInvalidEvent, e.TimeConstant)
		}
	case SetValueCurve:
		if len(e.Values) < 2 {
			return fmt.Errorf("%w: curve needs at least 2 values, got %d", ErrInvalidEvent, len(e.Values))
		}
		if e.Duration <= 0 {
			return fmt.Errorf("%w: curve duration %v must be positive", ErrInvalidEvent, e.Duration)
		}
		for _, v := range e.Values {
			if !finite(v) {
				return fmt.Errorf("%w: curve has non-finite value", ErrInvalidEvent)
			}
		}
	case SetValue, LinearRamp, ExponentialRamp, CancelScheduledValues, CancelAndHold:
	default:
		return fmt.Errorf("%w: unknown type %d", ErrInvalidEvent, e.Type)
	}
	return nil
}

// curveValueAt returns the value of the curve at time, holding the value
// at the end of the curve afterwards.
func (e Event) curveValueAt(time float64) float64 {
	if end := e.End(); time >= end {
		if !e.truncated {
			return e.Values[len(e.Values)-1]
		}
		time = end
	}
	index := (time - e.Time) / e.Duration * float64(len(e.Values)-1)
	return interpolate(e.Values, index)
}

func interpolate(values []float64, index float64) float64 {
	last := float64(len(values) - 1)
	if index <= 0 {
		return values[0]
	}
	if index >= last {
		return values[len(values)-1]
	}
	lower := math.Floor(index)
	upper := math.Ceil(index)
	if lower == upper {
		return values[int(lower)]
	}
	return (1-(index-lower))*values[int(lower)] + (1-(upper-index))*values[int(upper)]
}

// linearValue is the value of linear ramp from (t0, v0) to (t1, v1) at t.
func linearValue(t, t0, v0, t1, v1 float64) float64 {
	if t <= t0 {
		return v0
	}
	if t >= t1 {
		return v1
	}
	return v0 + (v1-v0)*(t-t0)/(t1-t0)
}

// exponentialValue is the value of exponential ramp from (t0, v0) to
// (t1, v1) at t. The curve is undefined when v0 is zero or signs differ,
// v1 is returned after t0 instead.
func exponentialValue(t, t0, v0, t1, v1 float64) float64 {
	if v0 == v1 {
		return v1
	}
	if v0 == 0 || (v0 > 0) != (v1 > 0) {
		if t <= t0 {
			return v0
		}
		return v1
	}
	if t <= t0 {
		return v0
	}
	if t >= t1 {
		return v1
	}
	return v0 * math.Pow(v1/v0, (t-t0)/(t1-t0))
}

// targetValue is the value of set target event started with v0 at t.
func targetValue(t, v0 float64, e Event) float64 {
	if t <= e.Time {
		return v0
	}
	if e.TimeConstant == 0 {
		return e.Value
	}
	return e.Value + (v0-e.Value)*math.Exp(-(t-e.Time)/e.TimeConstant)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// String returns the name of event type.
func (t Type) String() string {
	switch t {
	case SetValue:
		return "setValue"
	case LinearRamp:
		return "linearRamp"
	case ExponentialRamp:
		return "exponentialRamp"
	case SetTarget:
		return "setTarget"
	case SetValueCurve:
		return "setValueCurve"
	case CancelScheduledValues:
		return "cancelScheduledValues"
	case CancelAndHold:
		return "cancelAndHold"
	}
	return "unknown"
}
