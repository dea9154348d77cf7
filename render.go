package render

import (
	"context"
	"fmt"
	"time"

	"pipelined.dev/render/signal"
)

// Render renders totalLength frames of graph destination. The graph is
// rendered in whole quanta and the result is truncated to totalLength.
// Context is checked while parameter curves are awaited.
func (g *Graph) Render(ctx context.Context, totalLength int) (signal.Float32, error) {
	outputs, err := g.RenderNode(ctx, g.destination, totalLength)
	if err != nil {
		return nil, err
	}
	return outputs[0], nil
}

// RenderNode renders totalLength frames of every output of node.
func (g *Graph) RenderNode(ctx context.Context, n *Node, totalLength int) ([]signal.Float32, error) {
	if totalLength <= 0 {
		return nil, fmt.Errorf("%w: length %d must be positive", ErrConfiguration, totalLength)
	}
	s := newSession(ctx, g, signal.PaddedLength(totalLength))
	defer s.drain()

	start := time.Now()
	outputs, err := s.render(n)
	if err != nil {
		g.log.Debug(fmt.Sprintf("graph %s: render failed: %v", g.uid, err))
		return nil, err
	}
	result := make([]signal.Float32, len(outputs))
	for i := range outputs {
		result[i] = outputs[i].Slice(0, totalLength)
	}
	g.log.Info(fmt.Sprintf("graph %s: rendered %v of %v in %v", g.uid, signal.DurationOf(g.sampleRate, int64(totalLength)), n, time.Since(start)))
	return result, nil
}
