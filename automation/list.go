// Package automation implements a time-ordered schedule of parameter value
// changes and reconstructs the value curve it describes.
package automation

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrInvalidEvent is returned when event has invalid arguments.
	ErrInvalidEvent = errors.New("invalid automation event")
	// ErrOverlap is returned when event would overlap a value curve.
	ErrOverlap = errors.New("overlapping automation events")
)

// List is a time-ordered sequence of automation events of a single
// parameter. Zero value is not usable, use NewList.
type List struct {
	defaultValue float64
	current      float64
	events       []Event
}

// NewList returns an empty list with provided default value.
func NewList(defaultValue float64) *List {
	return &List{defaultValue: defaultValue}
}

// DefaultValue returns the value used before any event.
func (l *List) DefaultValue() float64 {
	return l.defaultValue
}

// Len returns number of scheduled events.
func (l *List) Len() int {
	return len(l.events)
}

// Events returns a copy of scheduled events.
func (l *List) Events() []Event {
	return append([]Event(nil), l.events...)
}

// Clone returns an independent copy of the list.
func (l *List) Clone() *List {
	return &List{
		defaultValue: l.defaultValue,
		current:      l.current,
		events:       l.Events(),
	}
}

// Add inserts event preserving time order. Cancel events are applied
// immediately and are not stored.
func (l *List) Add(e Event) error {
	if err := e.validate(); err != nil {
		return err
	}
	switch e.Type {
	case CancelScheduledValues:
		l.cancel(e.Time)
		return nil
	case CancelAndHold:
		v := l.ValueAt(e.Time)
		l.cancel(e.Time)
		l.insert(len(l.events), SetValueAt(v, e.Time))
		return nil
	}

	if e.IsRamp() {
		e.insertTime = l.current
	}
	index := l.indexAfter(e.Time)
	if index > 0 {
		if prev := l.events[index-1]; prev.Type == SetValueCurve && prev.End() > e.Time {
			return fmt.Errorf("%w: %v inside %v", ErrOverlap, e, prev)
		}
	}
	if e.Type == SetValueCurve && index < len(l.events) && e.End() > l.events[index].Time {
		return fmt.Errorf("%w: %v covers %v", ErrOverlap, e, l.events[index])
	}
	l.insert(index, e)
	return nil
}

// CancelScheduledValues removes all events starting at or after time.
func (l *List) CancelScheduledValues(time float64) error {
	return l.Add(CancelScheduledValuesAt(time))
}

// CancelAndHold removes all events starting at or after time and holds
// the value the schedule had at that time.
func (l *List) CancelAndHold(time float64) error {
	return l.Add(CancelAndHoldAt(time))
}

// Flush discards events that are entirely in the past relative to time.
// Events needed to compute values at or after time are kept.
func (l *List) Flush(time float64) {
	if time > l.current {
		l.current = time
	}
	index := l.indexAfter(time)
	if index < 2 {
		return
	}
	remaining := append([]Event(nil), l.events[index-1:]...)
	if first := remaining[0]; first.Type == SetTarget {
		v := l.valueOfEventAt(index-2, first.Time)
		remaining = append([]Event{SetValueAt(v, first.Time)}, remaining...)
	}
	l.events = remaining
}

// ValueAt returns value of the parameter at time.
func (l *List) ValueAt(time float64) float64 {
	if len(l.events) == 0 {
		return l.defaultValue
	}
	next := l.indexAfter(time)
	cur := next - 1

	var following *Event
	if next < len(l.events) {
		following = &l.events[next]
	}
	followedByRamp := following != nil && following.IsRamp()

	if cur >= 0 {
		current := l.events[cur]
		switch {
		case current.Type == SetTarget && (!followedByRamp || following.insertTime > time):
			return targetValue(time, l.valueOfEventAt(cur-1, current.Time), current)
		case current.Type == SetValue && !followedByRamp:
			return current.Value
		case current.Type == SetValueCurve && (!followedByRamp || current.End() > time):
			return current.curveValueAt(time)
		case current.IsRamp() && !followedByRamp:
			return current.Value
		}
	}

	if followedByRamp {
		t0, v0 := l.previous(next)
		if following.Type == ExponentialRamp {
			return exponentialValue(time, t0, v0, following.Time, following.Value)
		}
		return linearValue(time, t0, v0, following.Time, following.Value)
	}
	return l.defaultValue
}

// Fill writes values for consecutive frames starting at frame into dst.
func (l *List) Fill(dst []float32, frame int, sampleRate int) {
	for i := range dst {
		dst[i] = float32(l.ValueAt(float64(frame+i) / float64(sampleRate)))
	}
}

// indexAfter returns index of the first event with time greater than time.
func (l *List) indexAfter(time float64) int {
	return sort.Search(len(l.events), func(i int) bool {
		return l.events[i].Time > time
	})
}

func (l *List) insert(index int, e Event) {
	l.events = append(l.events, Event{})
	copy(l.events[index+1:], l.events[index:])
	l.events[index] = e
}

// previous returns end time and value of the event preceding index. It
// defines where a ramp at index starts.
func (l *List) previous(index int) (float64, float64) {
	if index == 0 {
		return l.events[index].insertTime, l.defaultValue
	}
	p := l.events[index-1]
	switch p.Type {
	case SetValueCurve:
		return p.End(), p.curveValueAt(p.End())
	case SetTarget:
		return p.Time, l.valueOfEventAt(index-2, p.Time)
	}
	return p.Time, p.Value
}

// start returns the time when event at index starts to change the value.
func (l *List) start(index int) float64 {
	if l.events[index].IsRamp() {
		t, _ := l.previous(index)
		return t
	}
	return l.events[index].Time
}

// valueOfEventAt returns the value set by event at index at time.
func (l *List) valueOfEventAt(index int, time float64) float64 {
	if index < 0 {
		return l.defaultValue
	}
	e := l.events[index]
	switch e.Type {
	case SetValueCurve:
		return e.curveValueAt(time)
	case SetTarget:
		return targetValue(time, l.valueOfEventAt(index-1, e.Time), e)
	}
	return e.Value
}

// cancel removes events starting at or after time and truncates events
// spanning it.
func (l *List) cancel(time float64) {
	kept := make([]Event, 0, len(l.events))
	for i, e := range l.events {
		if l.start(i) >= time {
			break
		}
		switch {
		case e.IsRamp() && e.Time > time:
			t0, v0 := l.previous(i)
			if e.Type == ExponentialRamp {
				e.Value = exponentialValue(time, t0, v0, e.Time, e.Value)
			} else {
				e.Value = linearValue(time, t0, v0, e.Time, e.Value)
			}
			e.Time = time
		case e.Type == SetValueCurve && e.End() > time:
			e.cut = time
			e.truncated = true
		}
		kept = append(kept, e)
	}
	l.events = kept
}
