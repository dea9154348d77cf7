package render

import (
	"fmt"
	"strings"
)

// Kind is the type of a processing node.
type Kind int

// Node kinds known to the renderer.
const (
	KindDestination Kind = iota
	KindGain
	KindDelay
	KindConstantSource
	KindBufferSource
	KindAnalyser
	KindChannelMerger
	KindChannelSplitter
	KindWorklet
)

var kindNames = []string{
	KindDestination:     "destination",
	KindGain:            "gain",
	KindDelay:           "delay",
	KindConstantSource:  "constant-source",
	KindBufferSource:    "buffer-source",
	KindAnalyser:        "analyser",
	KindChannelMerger:   "channel-merger",
	KindChannelSplitter: "channel-splitter",
	KindWorklet:         "worklet",
}

// Kinds returns all node kinds.
func Kinds() []Kind {
	kinds := make([]Kind, len(kindNames))
	for i := range kindNames {
		kinds[i] = Kind(i)
	}
	return kinds
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind returns kind by its name.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if strings.EqualFold(n, name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown node kind %q", ErrConfiguration, name)
}

// ChannelCountMode defines how the number of channels of an input is
// computed from its connections.
type ChannelCountMode int

const (
	// Max uses the maximum number of channels of all connections.
	Max ChannelCountMode = iota
	// ClampedMax is Max limited by the channel count of the node.
	ClampedMax
	// Explicit always uses the channel count of the node.
	Explicit
)

func (m ChannelCountMode) String() string {
	switch m {
	case Max:
		return "max"
	case ClampedMax:
		return "clamped-max"
	case Explicit:
		return "explicit"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseChannelCountMode returns channel count mode by its name.
func ParseChannelCountMode(name string) (ChannelCountMode, error) {
	for _, m := range []ChannelCountMode{Max, ClampedMax, Explicit} {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown channel count mode %q", ErrConfiguration, name)
}

// channels computes the number of channels of an input with provided
// number of channels of every connection.
func (m ChannelCountMode) channels(channelCount int, sources []int) int {
	if m == Explicit {
		return channelCount
	}
	computed := 1
	for _, c := range sources {
		if c > computed {
			computed = c
		}
	}
	if m == ClampedMax && computed > channelCount {
		return channelCount
	}
	return computed
}
