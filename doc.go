/*
Package scriptnode implements a scriptable real-time audio/MIDI processing
node: a graph node whose per-block behavior is defined by a small Lua script
instead of compiled code.

A Node participates in a host audio graph through the usual lifecycle —
PrepareToRender once before rendering starts, Render once per block on the
real-time thread, ReleaseResources when stopping — while a control thread
may replace the running script at any time with LoadScript.

Candidate scripts never reach the render path unproven. LoadScript first
dry-runs the full prepare/render/release lifecycle against synthetic buffers
(see pkg/script.Validate), then loads the text into a fresh interpreter
Context and atomically swaps it in under the render lock. A failed load
leaves the previous script active.

# Usage

	node, err := scriptnode.New()
	if err != nil {
		log.Fatal(err)
	}
	defer node.Close()

	ports, _ := node.CreatePorts()
	_ = ports // wire host buffers from the port list

	node.PrepareToRender(48000, 512)
	buf := audio.New(2, 512)
	pipe := midi.NewPipe(&midi.Buffer{}, &midi.Buffer{})
	for i := 0; i < blocks; i++ {
		node.Render(buf, pipe)
	}
	node.ReleaseResources()

Scripts declare their port layout and hooks with the node_io_ports,
node_params, node_prepare, node_render and node_release entry points; see
pkg/script for the contract and cmd/scriptnode's docs command for the Lua
API reference.
*/
package scriptnode
