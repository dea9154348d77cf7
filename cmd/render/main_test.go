package main

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"

	"pipelined.dev/render/signal"
)

const graph = `
sampleRate: 8000
channels: 2
duration: 0.05
nodes:
  - id: offset
    kind: constant-source
    params:
      offset:
        value: 0.5
connections:
  - {from: offset, to: destination}
`

func TestInit(t *testing.T) {
	//check if commands are registered
	assert.Equal(t, 2, len(commands))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	graphPath := filepath.Join(dir, "graph.yaml")
	out := filepath.Join(dir, "out.wav")
	assert.NoError(t, ioutil.WriteFile(graphPath, []byte(graph), 0644))

	tests := []struct {
		description string
		args        []string
		code        int
		output      string
	}{
		{
			description: "usage",
			args:        []string{"render"},
			code:        errorExitCode,
			output:      "Usage: render <command>",
		},
		{
			description: "unknown command",
			args:        []string{"render", "play"},
			code:        errorExitCode,
			output:      "Commands:",
		},
		{
			description: "missing flags",
			args:        []string{"render", "render"},
			code:        errorExitCode,
			output:      "Missing -graph required flag",
		},
		{
			description: "bad bit depth",
			args:        []string{"render", "render", "-graph", graphPath, "-out", out, "-bits", "8"},
			code:        errorExitCode,
			output:      "Command failed",
		},
		{
			description: "render",
			args:        []string{"render", "render", "-graph", graphPath, "-out", out, "-metrics"},
			code:        successExitCode,
			output:      "constant-source:",
		},
		{
			description: "kinds",
			args:        []string{"render", "kinds", "-backend", "legacy"},
			code:        successExitCode,
			output:      "Per-sample automation: false",
		},
		{
			description: "unknown backend",
			args:        []string{"render", "kinds", "-backend", "remote"},
			code:        errorExitCode,
			output:      "unknown backend",
		},
	}
	for _, test := range tests {
		var buf bytes.Buffer
		c := config{args: test.args, stdout: &buf}
		assert.Equal(t, test.code, c.run(), test.description)
		assert.Contains(t, buf.String(), test.output, test.description)
	}

	f, err := os.Open(out)
	assert.NoError(t, err)
	defer f.Close()
	d := wav.NewDecoder(f)
	ib, err := d.FullPCMBuffer()
	assert.NoError(t, err)
	assert.Equal(t, uint32(8000), d.SampleRate)
	assert.Equal(t, 2, ib.Format.NumChannels)
	assert.Equal(t, 400, ib.NumFrames())
	assert.Equal(t, signal.Float32{{0.5}, {0.5}}.AsInterInt(signal.BitDepth16), ib.Data[798:])
}
