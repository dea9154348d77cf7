package main

import (
	"flag"
	"fmt"
	"io"

	"pipelined.dev/render"
	"pipelined.dev/render/graphfile"
	"pipelined.dev/render/native"
)

type kindsCommand struct {
	backend string
}

func (cmd *kindsCommand) Name() string {
	return "kinds"
}

func (cmd *kindsCommand) Help() string {
	return "Show node kinds rendered natively by backend"
}

func (cmd *kindsCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.backend, "backend", graphfile.BackendStandard, "backend: standard, legacy or none")
}

func (cmd *kindsCommand) Run(w io.Writer) error {
	var caps render.Capabilities
	switch cmd.backend {
	case graphfile.BackendStandard:
		caps = native.New().Capabilities()
	case graphfile.BackendLegacy:
		caps = native.Legacy().Capabilities()
	case graphfile.BackendNone:
		caps = render.Capabilities{PerSampleAutomation: true}
	default:
		return fmt.Errorf("unknown backend %q", cmd.backend)
	}
	fmt.Fprintf(w, "Backend: %s\n", cmd.backend)
	fmt.Fprintf(w, "Per-sample automation: %v\n", caps.PerSampleAutomation)
	for _, kind := range render.Kinds() {
		mode := "simulated"
		switch {
		case kind == render.KindDestination:
			mode = "graph"
		case caps.Supports(kind):
			mode = "native"
		case kind != render.KindWorklet:
			mode = "unsupported"
		}
		fmt.Fprintf(w, "\t%v\t%s\n", kind, mode)
	}
	return nil
}
