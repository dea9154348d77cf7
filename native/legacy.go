package native

import (
	"math"

	"pipelined.dev/render/automation"
)

// LegacyBackend evaluates parameters once per quantum and maps value
// curves onto sample frames before they are scheduled.
type LegacyBackend struct {
	*Backend
}

// Legacy returns a backend that supports all implemented kinds without
// per-sample automation.
func Legacy() *LegacyBackend {
	b := New()
	b.perSample = false
	return &LegacyBackend{Backend: b}
}

// AdaptValueCurve resamples values so that every sample frame inside the
// curve interval gets its own control point. The last value is set at the
// end of the interval.
func (LegacyBackend) AdaptValueCurve(values []float64, startTime, duration float64, sampleRate int) []automation.Event {
	sr := float64(sampleRate)
	endTime := startTime + duration
	firstSample := math.Ceil(startTime * sr)
	lastSample := math.Floor(endTime * sr)
	frames := int(lastSample - firstSample)
	if frames < 2 {
		return []automation.Event{automation.SetValueCurveAt(values, startTime, duration)}
	}

	resampled := make([]float64, frames)
	scale := float64(len(values)-1) / duration
	for i := range resampled {
		position := scale * ((firstSample+float64(i))/sr - startTime)
		resampled[i] = interpolate(values, position)
	}
	return []automation.Event{
		automation.SetValueCurveAt(resampled, startTime, duration),
		automation.SetValueAt(values[len(values)-1], endTime),
	}
}

func interpolate(values []float64, position float64) float64 {
	lower := int(math.Floor(position))
	if lower < 0 {
		return values[0]
	}
	if lower >= len(values)-1 {
		return values[len(values)-1]
	}
	frac := position - float64(lower)
	return values[lower] + (values[lower+1]-values[lower])*frac
}
