/*
Package script embeds a Lua interpreter behind a narrow, typed seam and runs
user scripts as audio/MIDI processors.

A script defines up to five entry points:

	node_io_ports()          -- declare audio/MIDI channel counts
	node_params()            -- declare control parameters
	node_prepare(rate, block)
	node_render(audio, midi) -- mandatory
	node_release()

A Context owns one interpreter instance and is load-once: Load compiles the
script, restricts the standard library to base and string facilities,
installs the audio/MIDI host bindings and resolves node_render. Prepare,
Render and Release forward to the script's hooks; Render is the only
operation that runs on the real-time path and is guarded so interpreter
errors never escape as panics.

Validate dry-runs a candidate script's whole lifecycle against synthetic
buffers sized from its own declared ports, so an untrusted script's first
execution never happens inside the audio callback.
*/
package script
