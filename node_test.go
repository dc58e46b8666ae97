package scriptnode

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundloom/scriptnode/pkg/audio"
	"github.com/soundloom/scriptnode/pkg/midi"
	"github.com/soundloom/scriptnode/pkg/port"
	"github.com/soundloom/scriptnode/pkg/script"
)

// markerScript returns a script whose render writes v into sample (0,0),
// so tests can tell which script produced a block.
func markerScript(v string) string {
	return `
		function node_io_ports()
		    return { audio_ins = 1, audio_outs = 1 }
		end
		function node_render(audio, midi)
		    audio:set(0, 0, ` + v + `)
		end
	`
}

func renderOnce(n *Node) *audio.Buffer {
	buf := audio.New(1, 4)
	n.Render(buf, midi.NewPipe())
	return buf
}

func TestNew_DefaultScript(t *testing.T) {
	n, err := New()
	require.NoError(t, err)
	defer n.Close()

	assert.Equal(t, DefaultScript, n.Script())
	assert.Equal(t, DefaultScript, n.Draft())
	assert.False(t, n.Prepared())
}

// Scenario A: the default script yields 6 I/O ports plus the Volume param,
// with fixed group order and per-group channel numbering.
func TestNode_CreatePorts_DefaultScript(t *testing.T) {
	n, err := New()
	require.NoError(t, err)
	defer n.Close()

	ports, err := n.CreatePorts()
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"in_1", "in_2", "out_1", "out_2", "midi_in_1", "midi_out_1", "volume"},
		ports.Symbols())
	for i, p := range ports {
		assert.Equal(t, i, p.Index)
	}
	assert.Equal(t, 2, ports.Count(port.Audio, true))
	assert.Equal(t, 2, ports.Count(port.Audio, false))
	assert.Equal(t, 1, ports.Count(port.Midi, true))
	assert.Equal(t, 1, ports.Count(port.Midi, false))
	assert.Equal(t, 1, ports.Count(port.Control, true))

	// The cached copy matches.
	assert.Equal(t, ports.Symbols(), n.Ports().Symbols())
}

// Scenario B: loading an empty script fails and the active context is
// untouched.
func TestNode_LoadScript_Empty(t *testing.T) {
	n, err := New(WithScript(markerScript("1.0")))
	require.NoError(t, err)
	defer n.Close()

	err = n.LoadScript("")
	assert.ErrorIs(t, err, script.ErrScriptEmpty)
	assert.Equal(t, markerScript("1.0"), n.Script())

	buf := renderOnce(n)
	assert.EqualValues(t, 1, buf.Sample(0, 0), "old script must still render")
}

// Scenario C: a script whose render raises fails validation with the script
// error, and the prior script stays active.
func TestNode_LoadScript_AllOrNothing(t *testing.T) {
	n, err := New(WithScript(markerScript("1.0")))
	require.NoError(t, err)
	defer n.Close()

	bad := `
		function node_render(audio, midi)
		    error('kaboom on first call')
		end
	`
	err = n.LoadScript(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom on first call")
	assert.Equal(t, markerScript("1.0"), n.Script(), "committed script unchanged")

	buf := renderOnce(n)
	assert.EqualValues(t, 1, buf.Sample(0, 0))
}

func TestNode_LoadScript_SwapsBehavior(t *testing.T) {
	n, err := New(WithScript(markerScript("1.0")))
	require.NoError(t, err)
	defer n.Close()

	require.NoError(t, n.LoadScript(markerScript("2.0")))
	buf := renderOnce(n)
	assert.EqualValues(t, 2, buf.Sample(0, 0))
	assert.Equal(t, markerScript("2.0"), n.Draft(), "draft follows commit")
}

// A node already prepared must prepare the incoming context before
// publishing it, so the first render after a swap never hits an unprepared
// script.
func TestNode_LoadScript_PreparesBeforePublish(t *testing.T) {
	n, err := New(WithScript(markerScript("1.0")))
	require.NoError(t, err)
	defer n.Close()

	n.PrepareToRender(48000, 4)
	require.True(t, n.Prepared())

	dependsOnPrepare := `
		armed = false
		function node_prepare(rate, block)
		    armed = true
		end
		function node_render(audio, midi)
		    if armed then
		        audio:set(0, 0, 5.0)
		    end
		end
	`
	require.NoError(t, n.LoadScript(dependsOnPrepare))

	buf := renderOnce(n)
	assert.EqualValues(t, 5, buf.Sample(0, 0))
}

// A PrepareToRender or ReleaseResources racing a LoadScript must never
// publish a context whose hook state disagrees with the node's prepared
// flag: the swap re-checks the flag and redoes the hook work if it flipped.
func TestNode_LoadScript_PrepareRaceConsistency(t *testing.T) {
	hooked := `
		armed = 0.0
		function node_io_ports()
		    return { audio_ins = 1, audio_outs = 1 }
		end
		function node_prepare(rate, block)
		    armed = 1.0
		end
		function node_release()
		    armed = 0.0
		end
		function node_render(audio, midi)
		    audio:set(0, 0, armed)
		end
	`
	n, err := New(WithScript(hooked))
	require.NoError(t, err)
	defer n.Close()

	var (
		done atomic.Bool
		wg   sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for !done.Load() {
			n.PrepareToRender(48000, 4)
			n.ReleaseResources()
		}
	}()

	for i := 0; i < 50; i++ {
		require.NoError(t, n.LoadScript(hooked))
	}
	done.Store(true)
	wg.Wait()

	if !n.Prepared() {
		n.PrepareToRender(48000, 4)
	}
	buf := renderOnce(n)
	assert.EqualValues(t, 1, buf.Sample(0, 0), "active context missed its prepare hook")
}

func TestNode_PrepareRelease_Idempotent(t *testing.T) {
	n, err := New()
	require.NoError(t, err)
	defer n.Close()

	n.PrepareToRender(44100, 64)
	n.PrepareToRender(96000, 128) // ignored while prepared
	assert.True(t, n.Prepared())

	n.ReleaseResources()
	assert.False(t, n.Prepared())
	n.ReleaseResources() // no-op
}

func TestNode_Render_AfterClose(t *testing.T) {
	n, err := New()
	require.NoError(t, err)
	n.Close()
	// Must not panic.
	renderOnce(n)
}

// Hot-swap atomicity: concurrent renders interleaved with sequential
// successful loads always see either the pre- or post-swap script, never a
// mixture, and nothing crashes.
func TestNode_HotSwap_Atomic(t *testing.T) {
	n, err := New(WithScript(markerScript("1.0")))
	require.NoError(t, err)
	defer n.Close()
	n.PrepareToRender(48000, 4)

	var (
		done       atomic.Bool
		violations atomic.Int64
		wg         sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		buf := audio.New(1, 4)
		pipe := midi.NewPipe()
		for !done.Load() {
			n.Render(buf, pipe)
			if v := buf.Sample(0, 0); v != 1 && v != 2 {
				violations.Add(1)
			}
		}
	}()

	for i := 0; i < 20; i++ {
		text := markerScript("2.0")
		if i%2 == 1 {
			text = markerScript("1.0")
		}
		require.NoError(t, n.LoadScript(text))
		time.Sleep(time.Millisecond)
	}

	done.Store(true)
	wg.Wait()
	assert.Zero(t, violations.Load(), "render observed a partially-swapped context")
}

func TestNode_StateRoundTrip(t *testing.T) {
	n1, err := New(WithScript(markerScript("2.0")))
	require.NoError(t, err)
	defer n1.Close()
	n1.SetDraft("-- editing in progress")

	blob, err := n1.GetState()
	require.NoError(t, err)

	n2, err := New()
	require.NoError(t, err)
	defer n2.Close()

	notified := false
	n2.OnChange(func() { notified = true })

	require.NoError(t, n2.SetState(blob))
	assert.Equal(t, n1.Script(), n2.Script())
	assert.Equal(t, "-- editing in progress", n2.Draft())
	assert.True(t, notified, "listeners must fire after a SetState reload")

	buf := renderOnce(n2)
	assert.EqualValues(t, 2, buf.Sample(0, 0))
}

func TestNode_SetState_InvalidScriptKeepsPrior(t *testing.T) {
	n, err := New(WithScript(markerScript("1.0")))
	require.NoError(t, err)
	defer n.Close()

	notified := false
	n.OnChange(func() { notified = true })

	// A blob with an empty script must fail and leave the node alone.
	err = n.SetState([]byte("script: \"\"\ndraft: \"\"\n"))
	assert.ErrorIs(t, err, script.ErrScriptEmpty)
	assert.Equal(t, markerScript("1.0"), n.Script())
	assert.False(t, notified)

	// Garbage that is not even a mapping fails at decode.
	err = n.SetState([]byte(":\n:::"))
	assert.Error(t, err)
	assert.Equal(t, markerScript("1.0"), n.Script())
}

func TestNode_SetDraft_DoesNotAffectExecution(t *testing.T) {
	n, err := New(WithScript(markerScript("1.0")))
	require.NoError(t, err)
	defer n.Close()

	n.SetDraft("this is not even lua")
	buf := renderOnce(n)
	assert.EqualValues(t, 1, buf.Sample(0, 0))
	assert.Equal(t, "this is not even lua", n.Draft())
	assert.Equal(t, markerScript("1.0"), n.Script())
}
