package scriptnode

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/soundloom/scriptnode/internal/logging"
	"github.com/soundloom/scriptnode/pkg/audio"
	"github.com/soundloom/scriptnode/pkg/midi"
	"github.com/soundloom/scriptnode/pkg/observability"
	"github.com/soundloom/scriptnode/pkg/port"
	"github.com/soundloom/scriptnode/pkg/script"
)

// Node is the graph-visible façade around one active script Context.
//
// Two execution contexts touch a Node: the host's real-time render thread
// (PrepareToRender, Render, ReleaseResources) and a control thread
// (LoadScript, SetState, GetState). The only shared mutable resource is the
// active Context slot, guarded by a single mutex: the control thread holds
// it just long enough to swap the pointer, the render thread holds it for
// exactly one render call.
type Node struct {
	mu         sync.Mutex
	ctx        *script.Context
	prepared   bool
	sampleRate float64
	blockSize  int

	script string
	draft  string
	ports  port.List

	logger  *slog.Logger
	metrics *observability.Metrics
	initial string

	lmu       sync.Mutex
	listeners []func()
}

// Option configures a Node.
type Option func(*Node)

// WithLogger sets a structured logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Node) {
		n.logger = logger
	}
}

// WithMetrics attaches Prometheus instrumentation to the node lifecycle.
func WithMetrics(m *observability.Metrics) Option {
	return func(n *Node) {
		n.metrics = m
	}
}

// WithScript overrides the built-in default script for the initial load.
func WithScript(text string) Option {
	return func(n *Node) {
		n.initial = text
	}
}

// New constructs a Node with its initial script already validated, loaded
// and installed. It fails if that script does not survive validation.
func New(opts ...Option) (*Node, error) {
	n := &Node{
		logger:  logging.NewNop(),
		initial: DefaultScript,
	}
	for _, opt := range opts {
		opt(n)
	}
	if err := n.LoadScript(n.initial); err != nil {
		return nil, fmt.Errorf("initial script: %w", err)
	}
	return n, nil
}

// LoadScript validates newText and, only on success, hot-swaps it in as the
// active Context. The operation is all-or-nothing: any failure leaves the
// committed script and the active Context untouched.
//
// The freshly validated text is loaded into a second, fresh Context (the
// validation Context is throwaway), prepared with the node's current sample
// rate and block size if the node is already prepared, and only then
// published. The old Context is released and destroyed outside the lock, so
// an in-flight render never observes a half-swapped Context.
func (n *Node) LoadScript(newText string) error {
	if err := script.Validate(newText); err != nil {
		if n.metrics != nil {
			n.metrics.LoadFailures.Inc()
		}
		n.logger.Warn("script rejected", "err", err)
		return err
	}

	fresh := script.NewContext()
	if err := fresh.Load(newText); err != nil {
		fresh.Release()
		fresh.Close()
		if n.metrics != nil {
			n.metrics.LoadFailures.Inc()
		}
		return err
	}

	n.mu.Lock()
	prepared, rate, block := n.prepared, n.sampleRate, n.blockSize
	n.mu.Unlock()

	var old *script.Context
	for {
		if prepared {
			if err := fresh.Prepare(rate, block); err != nil {
				fresh.Release()
				fresh.Close()
				if n.metrics != nil {
					n.metrics.LoadFailures.Inc()
				}
				return err
			}
		}

		n.mu.Lock()
		if n.prepared != prepared {
			// PrepareToRender or ReleaseResources landed between the
			// snapshot and the swap; redo the hook work so the published
			// Context matches the node's prepared state.
			prepared, rate, block = n.prepared, n.sampleRate, n.blockSize
			n.mu.Unlock()
			if !prepared {
				if err := fresh.Release(); err != nil {
					n.logger.Warn("release hook failed", "err", err)
				}
			}
			continue
		}
		old = n.ctx
		n.ctx = fresh
		n.script = newText
		n.draft = newText
		n.mu.Unlock()
		break
	}

	if old != nil {
		old.Release()
		old.Close()
	}

	if n.metrics != nil {
		n.metrics.ScriptLoads.Inc()
	}
	n.logger.Info("script loaded", "bytes", len(newText))
	return nil
}

// PrepareToRender records the host sample rate and block size and forwards
// to the active Context. Idempotent while prepared.
func (n *Node) PrepareToRender(rate float64, block int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.prepared {
		return
	}
	n.sampleRate = rate
	n.blockSize = block
	if n.ctx != nil {
		if err := n.ctx.Prepare(rate, block); err != nil {
			n.logger.Warn("prepare hook failed", "err", err)
		}
	}
	n.prepared = true
}

// ReleaseResources forwards to the active Context's release hook and leaves
// the prepared state. No-op when not prepared.
func (n *Node) ReleaseResources() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.prepared {
		return
	}
	n.prepared = false
	if n.ctx != nil {
		if err := n.ctx.Release(); err != nil {
			n.logger.Warn("release hook failed", "err", err)
		}
	}
}

// Render runs one block through the active Context. The lock is held for the
// whole call: swaps are rare and user-initiated, renders short relative to
// the block period, so simplicity wins over zero-wait concurrency here.
// A script error inside the block is contained and only counted.
func (n *Node) Render(a *audio.Buffer, m *midi.Pipe) {
	start := time.Now()
	n.mu.Lock()
	var err error
	if n.ctx != nil {
		err = n.ctx.Render(a, m)
	}
	n.mu.Unlock()

	if n.metrics != nil {
		n.metrics.RenderBlocks.Inc()
		n.metrics.RenderDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			n.metrics.RenderErrors.Inc()
		}
	}
}

// CreatePorts derives the port list from the active script and caches it.
// The host treats the returned list as fixed until the next call; the node
// must not be asked to change its port count while prepared.
func (n *Node) CreatePorts() (port.List, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ctx == nil {
		return nil, nil
	}
	var ports port.List
	if err := n.ctx.CreatePorts(&ports); err != nil {
		return nil, err
	}
	n.ports = ports
	return append(port.List(nil), ports...), nil
}

// Ports returns the list cached by the last CreatePorts call.
func (n *Node) Ports() port.List {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append(port.List(nil), n.ports...)
}

// Script returns the committed script text.
func (n *Node) Script() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.script
}

// Draft returns the unvalidated, editable-in-progress script copy.
func (n *Node) Draft() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.draft
}

// SetDraft stores edited-but-uncommitted script text for UI round-trip.
// It never affects execution.
func (n *Node) SetDraft(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.draft = text
}

// Prepared reports whether the node is between PrepareToRender and
// ReleaseResources.
func (n *Node) Prepared() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.prepared
}

// OnChange registers a listener notified after a successful SetState-driven
// reload.
func (n *Node) OnChange(fn func()) {
	n.lmu.Lock()
	defer n.lmu.Unlock()
	n.listeners = append(n.listeners, fn)
}

func (n *Node) notify() {
	n.lmu.Lock()
	listeners := make([]func(), len(n.listeners))
	copy(listeners, n.listeners)
	n.lmu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// Close releases and destroys the active Context. The node must not be
// rendered afterwards.
func (n *Node) Close() {
	n.mu.Lock()
	old := n.ctx
	n.ctx = nil
	n.prepared = false
	n.mu.Unlock()
	if old != nil {
		old.Release()
		old.Close()
	}
}
