package script

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	lua "github.com/yuin/gopher-lua"

	"github.com/soundloom/scriptnode/pkg/audio"
	"github.com/soundloom/scriptnode/pkg/midi"
	"github.com/soundloom/scriptnode/pkg/port"
)

// ParamSpec is one control parameter declared by a script's node_params
// entry point. Missing fields fall back to the zero-config defaults below.
type ParamSpec struct {
	Name    string  `mapstructure:"name"`
	Label   string  `mapstructure:"label"`
	Type    string  `mapstructure:"type"`
	Flow    string  `mapstructure:"flow"`
	Min     float64 `mapstructure:"min"`
	Max     float64 `mapstructure:"max"`
	Default float64 `mapstructure:"default"`
}

func defaultParamSpec() ParamSpec {
	return ParamSpec{
		Name:    "Param",
		Type:    "float",
		Flow:    "input",
		Min:     0.0,
		Max:     1.0,
		Default: 1.0,
	}
}

// Symbol derives the parameter's stable port symbol from its display name:
// trimmed, lower-cased, spaces replaced with underscores.
func (p ParamSpec) Symbol() string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(p.Name)), " ", "_")
}

// Context owns one loaded script bound to its own interpreter instance.
// It is load-once and single-owner: the node façade holds exactly one active
// Context, and never renders a Context concurrently with its destruction.
//
// Load, CreatePorts, Prepare and Release may allocate and must stay off the
// render thread. Render is the only real-time-safe operation.
type Context struct {
	rt     *Runtime
	render *lua.LFunction

	// Reused argument userdata so Render does not allocate per block.
	audioUD *lua.LUserData
	midiUD  *lua.LUserData

	loaded bool
}

// NewContext returns an empty, unloaded Context.
func NewContext() *Context {
	return &Context{}
}

// Ready reports whether a script is loaded and its render entry point
// resolved. Only a ready Context may be rendered.
func (c *Context) Ready() bool { return c.loaded }

// Load compiles and executes the script text once, installs the host
// bindings and resolves the mandatory node_render entry point. It never
// panics past its boundary: every failure comes back as a typed error and
// leaves the Context not ready.
func (c *Context) Load(text string) error {
	if c.loaded {
		return ErrAlreadyLoaded
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	registerTypes(rt.state)

	if err := rt.Exec(text); err != nil {
		rt.Close()
		return err
	}

	render, ok := rt.Function(EntryRender)
	if !ok {
		rt.Close()
		return ErrNoRenderFunction
	}

	c.rt = rt
	c.render = render
	c.audioUD = rt.state.NewUserData()
	rt.state.SetMetatable(c.audioUD, rt.state.GetTypeMetatable(audioTypeName))
	c.midiUD = rt.state.NewUserData()
	rt.state.SetMetatable(c.midiUD, rt.state.GetTypeMetatable(midiPipeTypeName))
	c.loaded = true
	return nil
}

// CreatePorts derives the script's port list and appends it to ports.
// Group order is fixed: audio in, audio out, MIDI in, MIDI out, then control
// parameters; channel numbering restarts at zero per group.
//
// Derivation is atomic: if any entry point raises, nothing is appended and
// the error is returned. No-op when the Context is not ready.
func (c *Context) CreatePorts(ports *port.List) error {
	if !c.Ready() {
		return nil
	}

	scratch := port.List{}
	if err := c.addIOPorts(&scratch); err != nil {
		return err
	}
	if err := c.addParams(&scratch); err != nil {
		return err
	}
	// Re-index on append so Index stays strictly increasing across the
	// whole destination list.
	for _, p := range scratch {
		if err := ports.Add(p.Type, len(*ports), p.Channel, p.Symbol, p.Name, p.IsInput); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) addIOPorts(ports *port.List) error {
	ret, invoked, err := c.rt.TryInvoke(EntryIOPorts)
	if err != nil {
		return err
	}
	if !invoked {
		return nil
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return &InterpreterError{Op: EntryIOPorts, Err: fmt.Errorf("expected a table, got %s", ret.Type())}
	}
	// Accept either a flat table or a single nested entry.
	if tbl.Len() > 0 {
		if nested, ok := tbl.RawGetInt(1).(*lua.LTable); ok {
			tbl = nested
		}
	}

	count := func(field string) int {
		if n, ok := tbl.RawGetString(field).(lua.LNumber); ok {
			return int(n)
		}
		return 0
	}
	audioIns := count("audio_ins")
	audioOuts := count("audio_outs")
	midiIns := count("midi_ins")
	midiOuts := count("midi_outs")

	index := len(*ports)
	add := func(t port.Type, n int, slug, name string, isInput bool) error {
		for i := 0; i < n; i++ {
			if err := ports.Add(t, index, i,
				fmt.Sprintf("%s_%d", slug, i+1),
				fmt.Sprintf("%s %d", name, i+1),
				isInput); err != nil {
				return err
			}
			index++
		}
		return nil
	}
	if err := add(port.Audio, audioIns, "in", "In", true); err != nil {
		return err
	}
	if err := add(port.Audio, audioOuts, "out", "Out", false); err != nil {
		return err
	}
	if err := add(port.Midi, midiIns, "midi_in", "MIDI In", true); err != nil {
		return err
	}
	return add(port.Midi, midiOuts, "midi_out", "MIDI Out", false)
}

func (c *Context) addParams(ports *port.List) error {
	ret, invoked, err := c.rt.TryInvoke(EntryParams)
	if err != nil {
		return err
	}
	if !invoked {
		return nil
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return &InterpreterError{Op: EntryParams, Err: fmt.Errorf("expected a table, got %s", ret.Type())}
	}

	index := len(*ports)
	inChan, outChan := 0, 0
	for i := 1; i <= tbl.Len(); i++ {
		entry, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			return &InterpreterError{Op: EntryParams, Err: fmt.Errorf("param %d: expected a table", i)}
		}

		spec := defaultParamSpec()
		if err := mapstructure.WeakDecode(tableToMap(entry), &spec); err != nil {
			return &InterpreterError{Op: EntryParams, Err: fmt.Errorf("param %d: %w", i, err)}
		}
		if spec.Flow != "input" && spec.Flow != "output" {
			return &InterpreterError{Op: EntryParams, Err: fmt.Errorf("param %d: flow must be input or output, got %q", i, spec.Flow)}
		}

		isInput := spec.Flow == "input"
		channel := outChan
		if isInput {
			channel = inChan
			inChan++
		} else {
			outChan++
		}
		if err := ports.Add(port.Control, index, channel, spec.Symbol(), spec.Name, isInput); err != nil {
			return err
		}
		index++
	}
	return nil
}

// Prepare invokes the script's prepare hook with the host sample rate and
// block size, then forces an interpreter collection pass so per-prepare
// garbage never carries over to the render path. No-op when not ready.
func (c *Context) Prepare(rate float64, block int) error {
	if !c.Ready() {
		return nil
	}
	_, _, err := c.rt.TryInvoke(EntryPrepare, lua.LNumber(rate), lua.LNumber(block))
	c.rt.CollectGarbage()
	return err
}

// Release invokes the script's release hook, then collects garbage. Safe to
// call repeatedly; no-op when not ready.
func (c *Context) Release() error {
	if !c.Ready() {
		return nil
	}
	_, _, err := c.rt.TryInvoke(EntryRelease)
	c.rt.CollectGarbage()
	return err
}

// Render invokes the pre-resolved render entry point against the live audio
// buffer and MIDI pipe. The call is protected: a script error is returned
// for accounting but never propagates as a panic, and the block simply keeps
// whatever the script wrote before failing. The caller must serialize Render
// against Release/Close on the same Context.
func (c *Context) Render(a *audio.Buffer, m *midi.Pipe) error {
	if !c.loaded {
		return nil
	}
	c.audioUD.Value = a
	c.midiUD.Value = m
	if err := c.rt.state.CallByParam(lua.P{
		Fn:      c.render,
		NRet:    0,
		Protect: true,
	}, c.audioUD, c.midiUD); err != nil {
		return &InterpreterError{Op: EntryRender, Err: err}
	}
	return nil
}

// Close shuts the interpreter down and marks the Context not ready. The
// owner must guarantee no Render is in flight.
func (c *Context) Close() {
	if c.rt != nil {
		c.rt.Close()
		c.rt = nil
	}
	c.render = nil
	c.audioUD = nil
	c.midiUD = nil
	c.loaded = false
}
