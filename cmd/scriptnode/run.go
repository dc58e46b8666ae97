package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/soundloom/scriptnode"
	"github.com/soundloom/scriptnode/internal/logging"
	"github.com/soundloom/scriptnode/pkg/audio"
	"github.com/soundloom/scriptnode/pkg/midi"
	"github.com/soundloom/scriptnode/pkg/port"
)

var (
	runBlocks int
	runRate   float64
	runBlock  int
)

var runCmd = &cobra.Command{
	Use:   "run <script.lua>",
	Short: "Render a script offline and report per-block timing",
	Long:  `Loads the script into a node, renders the requested number of blocks against synthetic buffers, and reports timing. A stand-in for a host graph during script development.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if runBlocks < 1 {
			return fmt.Errorf("--blocks must be at least 1, got %d", runBlocks)
		}
		text, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		node, err := scriptnode.New(
			scriptnode.WithScript(string(text)),
			scriptnode.WithLogger(logging.New(slog.LevelInfo)),
		)
		if err != nil {
			return err
		}
		defer node.Close()

		ports, err := node.CreatePorts()
		if err != nil {
			return fmt.Errorf("derive ports: %w", err)
		}
		channels := ports.Count(port.Audio, true)
		if n := ports.Count(port.Audio, false); n > channels {
			channels = n
		}
		if channels < 1 {
			channels = 1
		}
		streams := ports.Count(port.Midi, true)
		if n := ports.Count(port.Midi, false); n > streams {
			streams = n
		}

		buf := audio.New(channels, runBlock)
		bufs := make([]*midi.Buffer, streams)
		for i := range bufs {
			bufs[i] = &midi.Buffer{}
		}
		pipe := midi.NewPipe(bufs...)

		node.PrepareToRender(runRate, runBlock)
		var total, worst time.Duration
		for i := 0; i < runBlocks; i++ {
			start := time.Now()
			node.Render(buf, pipe)
			d := time.Since(start)
			total += d
			if d > worst {
				worst = d
			}
		}
		node.ReleaseResources()

		budget := time.Duration(float64(runBlock) / runRate * float64(time.Second))
		fmt.Printf("rendered %d blocks of %d frames at %.0f Hz\n", runBlocks, runBlock, runRate)
		fmt.Printf("avg %v  worst %v  block budget %v\n", total/time.Duration(runBlocks), worst, budget)
		return nil
	},
}

func init() {
	runCmd.Flags().IntVar(&runBlocks, "blocks", 1000, "number of blocks to render")
	runCmd.Flags().Float64Var(&runRate, "rate", 48000, "sample rate in Hz")
	runCmd.Flags().IntVar(&runBlock, "block-size", 512, "frames per block")
	rootCmd.AddCommand(runCmd)
}
