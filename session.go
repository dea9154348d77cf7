package render

import (
	"context"
	"fmt"

	"pipelined.dev/render/metric"
	"pipelined.dev/render/signal"
)

// Session holds the state of a single render call. Every node is rendered
// at most once per session, except nodes reached through a cycle.
type Session struct {
	ctx    context.Context
	graph  *Graph
	length int
	cache  map[*Node][]signal.Float32
	trace  trace
	tasks  []*task
}

func newSession(ctx context.Context, g *Graph, length int) *Session {
	return &Session{
		ctx:    ctx,
		graph:  g,
		length: length,
		cache:  make(map[*Node][]signal.Float32),
		trace:  newTrace(),
	}
}

// drain waits for all started tasks.
func (s *Session) drain() {
	for _, t := range s.tasks {
		t.wait()
	}
	s.tasks = nil
}

// notify reports processing error to the handler or logs it.
func (s *Session) notify(n *Node, err error) {
	pe := &ProcessorError{NodeID: n.id, Processor: n.processor, Err: err}
	if s.graph.metrics {
		metric.AddError(n.kind.String())
	}
	if s.graph.onError == nil {
		s.graph.log.Warn(pe.Error())
		return
	}
	s.graph.onError(pe)
}

// meter returns a function that captures metrics of node render.
func (s *Session) meter(n *Node) metric.MeasureFunc {
	if !s.graph.metrics {
		return func(int64) {}
	}
	return metric.Meter(n.kind.String(), s.graph.sampleRate)
}

// trace is a stack of nodes currently being rendered.
type trace struct {
	stack   []*Node
	visited map[*Node]struct{}
}

func newTrace() trace {
	return trace{visited: make(map[*Node]struct{})}
}

func (t *trace) push(n *Node) {
	t.stack = append(t.stack, n)
	t.visited[n] = struct{}{}
}

func (t *trace) pop() {
	n := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	delete(t.visited, n)
}

func (t *trace) contains(n *Node) bool {
	_, ok := t.visited[n]
	return ok
}

func (t *trace) String() string {
	return fmt.Sprintf("%v", t.stack)
}
