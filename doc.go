/*
Package render renders audio graphs offline.

# Concept

A Graph is a set of nodes connected output to input. Every graph has a
destination node and the result of the render is the signal of its input.
The graph is rendered depth-first starting from the destination:

	every input renders the nodes connected to it;
	inputs with multiple connections are mixed and summed;
	parameter values are computed from automation events;
	the node is rendered by its kind.

Every node is rendered once per Render call and the result is reused by
all its consumers. When a node is reached again while it's still being
rendered, the graph has a cycle and that node contributes silence.

The signal is processed in quanta of 128 frames. The rendered length is
rounded up to whole quanta and the result is truncated back.

# Nodes

Native kinds like gain or delay are rendered by a Backend. Worklet nodes run
a Processor registered with Graph.RegisterProcessor. If backend can't render
worklets, the processor is simulated: it's called for every quantum with
copies of inputs and parameter values, and its outputs are copied into the
result. A processor stops when it returns false or an error. Errors are
delivered as ProcessorError to the handler set with
WithProcessorErrorHandler and don't abort the render.

# Errors

Invalid arguments are reported with ErrConfiguration, malformed connections
with ErrGraph and nodes that no strategy can render with ErrUnsupported.
Use errors.Is to check them.
*/
package render
