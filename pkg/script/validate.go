package script

import (
	"strings"

	"github.com/soundloom/scriptnode/pkg/audio"
	"github.com/soundloom/scriptnode/pkg/midi"
	"github.com/soundloom/scriptnode/pkg/port"
)

// Dry-run policy numbers. Their exact values are a policy choice; scripts
// must not depend on them.
const (
	ValidateSampleRate = 44100.0
	ValidateBlockSize  = 1024
)

// Validate proves a candidate script can run its full lifecycle before it is
// allowed anywhere near the live audio path. It builds a throwaway Context,
// derives the script's ports, synthesizes dummy audio/MIDI buffers sized
// from those ports, and runs prepare, one render, and release against them.
//
// The first error at any step is returned; nil means the script is accepted
// as load-safe. Validation runs entirely on the calling thread.
func Validate(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrScriptEmpty
	}

	ctx := NewContext()
	defer ctx.Close()

	if err := ctx.Load(text); err != nil {
		return err
	}

	var ports port.List
	if err := ctx.CreatePorts(&ports); err != nil {
		return err
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

	buf := audio.New(channels, ValidateBlockSize)
	bufs := make([]*midi.Buffer, streams)
	for i := range bufs {
		bufs[i] = &midi.Buffer{}
	}
	pipe := midi.NewPipe(bufs...)

	if err := ctx.Prepare(ValidateSampleRate, ValidateBlockSize); err != nil {
		return err
	}
	if err := ctx.Render(buf, pipe); err != nil {
		return err
	}
	return ctx.Release()
}
