package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"

	"pipelined.dev/render"
	"pipelined.dev/render/graphfile"
	"pipelined.dev/render/log"
	"pipelined.dev/render/metric"
	sig "pipelined.dev/render/signal"
	"pipelined.dev/render/wav"
)

type renderCommand struct {
	graph   string
	out     string
	bits    int
	metrics bool
}

func (cmd *renderCommand) Name() string {
	return "render"
}

func (cmd *renderCommand) Help() string {
	return "Render graph file into wav"
}

func (cmd *renderCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.graph, "graph", "", "graph file to render (required)")
	fs.StringVar(&cmd.out, "out", "", "output wav file (required)")
	fs.IntVar(&cmd.bits, "bits", 16, "bit depth of output: 16, 24 or 32")
	fs.BoolVar(&cmd.metrics, "metrics", false, "print node metrics after render")
}

func (cmd *renderCommand) Run(w io.Writer) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	sink, err := wav.NewSink(sig.BitDepth(cmd.bits))
	if err != nil {
		return err
	}
	file, err := graphfile.Load(cmd.graph)
	if err != nil {
		return err
	}

	l := log.GetLogger()
	g, err := file.Build(
		render.WithLogger(l),
		render.WithMetrics(),
		render.WithProcessorErrorHandler(func(e *render.ProcessorError) {
			log.WithNode(l, e.NodeID, e.Processor).Warn(e.Err)
		}),
	)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	result, err := g.Render(ctx, g.Length)
	if err != nil {
		return err
	}
	if err := sink.WriteFile(cmd.out, g.SampleRate(), result); err != nil {
		return err
	}
	fmt.Fprintf(w, "Rendered %v to %s\n", sig.DurationOf(g.SampleRate(), int64(g.Length)), cmd.out)
	if cmd.metrics {
		printMetrics(w, metric.GetAll())
	}
	return nil
}

func (cmd *renderCommand) Validate() error {
	var message string
	if cmd.graph == "" {
		message = message + "Missing -graph required flag\n"
	}
	if cmd.out == "" {
		message = message + "Missing -out required flag\n"
	}
	if message != "" {
		return errors.New(message)
	}
	return nil
}

func printMetrics(w io.Writer, all map[string]map[string]string) {
	kinds := make([]string, 0, len(all))
	for kind := range all {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		counters := all[kind]
		names := make([]string, 0, len(counters))
		for name := range counters {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(w, "%s:\n", kind)
		for _, name := range names {
			fmt.Fprintf(w, "\t%s\t%s\n", name, counters[name])
		}
	}
}
