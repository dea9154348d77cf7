package render

import (
	"context"

	"pipelined.dev/render/automation"
	"pipelined.dev/render/signal"
)

// task computes the automation curve of a parameter in its own goroutine.
// The result is consumed once with await.
type task struct {
	done   chan struct{}
	values []float32
}

// startAutomation computes values of events for every frame of length. If
// perSample is false, the value at the start of every quantum is repeated
// for the whole quantum.
func (s *Session) startAutomation(events *automation.List, perSample bool) *task {
	t := &task{done: make(chan struct{})}
	s.tasks = append(s.tasks, t)
	length, sampleRate := s.length, s.graph.sampleRate
	go func() {
		defer close(t.done)
		values := make([]float32, length)
		if perSample {
			events.Fill(values, 0, sampleRate)
		} else {
			for offset := 0; offset < length; offset += signal.Quantum {
				v := float32(events.ValueAt(float64(offset) / float64(sampleRate)))
				for i := offset; i < offset+signal.Quantum && i < length; i++ {
					values[i] = v
				}
			}
		}
		t.values = values
	}()
	return t
}

// await blocks until values are computed or context is done.
func (t *task) await(ctx context.Context) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case <-t.done:
		return t.values, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *task) wait() {
	<-t.done
}
