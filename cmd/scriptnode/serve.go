package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/soundloom/scriptnode"
	"github.com/soundloom/scriptnode/internal/logging"
	"github.com/soundloom/scriptnode/pkg/audio"
	"github.com/soundloom/scriptnode/pkg/midi"
	"github.com/soundloom/scriptnode/pkg/observability"
	"github.com/soundloom/scriptnode/pkg/port"
)

var (
	serveAddr  string
	serveRate  float64
	serveBlock int
)

var serveCmd = &cobra.Command{
	Use:   "serve [script.lua]",
	Short: "Host a node on a block clock with an HTTP control surface",
	Long: `Runs a node on a goroutine paced at the block period and exposes:

  GET  /status   current script, ports and prepared state
  POST /script   replace the running script (validated before swap)
  GET  /metrics  Prometheus metrics

This is a non-real-time development host, not an audio engine.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.New(slog.LevelInfo)

		opts := []scriptnode.Option{scriptnode.WithLogger(logger)}
		if len(args) == 1 {
			text, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			opts = append(opts, scriptnode.WithScript(string(text)))
		}

		metrics := observability.NewMetrics()
		reg := prometheus.NewRegistry()
		if err := metrics.Register(reg); err != nil {
			return err
		}
		opts = append(opts, scriptnode.WithMetrics(metrics))

		node, err := scriptnode.New(opts...)
		if err != nil {
			return err
		}
		defer node.Close()

		if _, err := node.CreatePorts(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go blockClock(ctx, node, serveRate, serveBlock)

		r := chi.NewRouter()
		r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"script":   node.Script(),
				"draft":    node.Draft(),
				"prepared": node.Prepared(),
				"ports":    portViews(node.Ports()),
			})
		})
		r.Post("/script", func(w http.ResponseWriter, req *http.Request) {
			body, err := io.ReadAll(req.Body)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if err := node.LoadScript(string(body)); err != nil {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			if _, err := node.CreatePorts(); err != nil {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
		r.Get("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP)

		srv := &http.Server{Addr: serveAddr, Handler: r}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		logger.Info("serving", "addr", serveAddr, "rate", serveRate, "block", serveBlock)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	},
}

// blockClock renders the node at the block period until ctx is done,
// resizing its scratch buffers when the port layout changes.
func blockClock(ctx context.Context, node *scriptnode.Node, rate float64, block int) {
	node.PrepareToRender(rate, block)
	defer node.ReleaseResources()

	period := time.Duration(float64(block) / rate * float64(time.Second))
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	var buf *audio.Buffer
	var pipe *midi.Pipe
	channels, streams := -1, -1

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ports := node.Ports()
			ch := ports.Count(port.Audio, true)
			if n := ports.Count(port.Audio, false); n > ch {
				ch = n
			}
			if ch < 1 {
				ch = 1
			}
			st := ports.Count(port.Midi, true)
			if n := ports.Count(port.Midi, false); n > st {
				st = n
			}
			if ch != channels || st != streams {
				channels, streams = ch, st
				buf = audio.New(channels, block)
				bufs := make([]*midi.Buffer, streams)
				for i := range bufs {
					bufs[i] = &midi.Buffer{}
				}
				pipe = midi.NewPipe(bufs...)
			}
			node.Render(buf, pipe)
		}
	}
}

type portView struct {
	Index   int    `json:"index"`
	Type    string `json:"type"`
	Channel int    `json:"channel"`
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
	IsInput bool   `json:"is_input"`
}

func portViews(ports port.List) []portView {
	views := make([]portView, len(ports))
	for i, p := range ports {
		views[i] = portView{
			Index:   p.Index,
			Type:    p.Type.String(),
			Channel: p.Channel,
			Symbol:  p.Symbol,
			Name:    p.Name,
			IsInput: p.IsInput,
		}
	}
	return views
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().Float64Var(&serveRate, "rate", 48000, "sample rate in Hz")
	serveCmd.Flags().IntVar(&serveBlock, "block-size", 512, "frames per block")
	rootCmd.AddCommand(serveCmd)
}
