package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/soundloom/scriptnode/pkg/audio"
	"github.com/soundloom/scriptnode/pkg/midi"
)

// Metatable names for the host capability objects bound into scripts.
const (
	audioTypeName      = "scriptnode.audio_buffer"
	midiPipeTypeName   = "scriptnode.midi_pipe"
	midiBufferTypeName = "scriptnode.midi_buffer"
	midiMsgTypeName    = "scriptnode.midi_message"
)

// registerTypes installs the audio/MIDI userdata types into an interpreter.
// Channel and stream indices exposed to scripts are 0-based.
func registerTypes(L *lua.LState) {
	mt := L.NewTypeMetatable(audioTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), audioMethods))

	mt = L.NewTypeMetatable(midiPipeTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), midiPipeMethods))

	mt = L.NewTypeMetatable(midiBufferTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), midiBufferMethods))

	mt = L.NewTypeMetatable(midiMsgTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), midiMsgMethods))
	L.SetField(mt, "__tostring", L.NewFunction(midiMsgToString))
}

func checkAudio(L *lua.LState) *audio.Buffer {
	ud := L.CheckUserData(1)
	if b, ok := ud.Value.(*audio.Buffer); ok {
		return b
	}
	L.ArgError(1, "audio buffer expected")
	return nil
}

var audioMethods = map[string]lua.LGFunction{
	"clear": func(L *lua.LState) int {
		checkAudio(L).Clear()
		return 0
	},
	"clear_channel": func(L *lua.LState) int {
		b := checkAudio(L)
		ch := L.CheckInt(2)
		if ch >= 0 && ch < b.NumChannels() {
			b.ClearChannel(ch)
		}
		return 0
	},
	"num_channels": func(L *lua.LState) int {
		L.Push(lua.LNumber(checkAudio(L).NumChannels()))
		return 1
	},
	"num_frames": func(L *lua.LState) int {
		L.Push(lua.LNumber(checkAudio(L).NumFrames()))
		return 1
	},
	"get": func(L *lua.LState) int {
		b := checkAudio(L)
		ch, frame := L.CheckInt(2), L.CheckInt(3)
		if ch < 0 || ch >= b.NumChannels() || frame < 0 || frame >= b.NumFrames() {
			L.Push(lua.LNumber(0))
			return 1
		}
		L.Push(lua.LNumber(b.Sample(ch, frame)))
		return 1
	},
	"set": func(L *lua.LState) int {
		b := checkAudio(L)
		ch, frame := L.CheckInt(2), L.CheckInt(3)
		v := float32(L.CheckNumber(4))
		if ch >= 0 && ch < b.NumChannels() && frame >= 0 && frame < b.NumFrames() {
			b.SetSample(ch, frame, v)
		}
		return 0
	},
	"apply_gain": func(L *lua.LState) int {
		checkAudio(L).ApplyGain(float32(L.CheckNumber(2)))
		return 0
	},
}

func checkMidiPipe(L *lua.LState) *midi.Pipe {
	ud := L.CheckUserData(1)
	if p, ok := ud.Value.(*midi.Pipe); ok {
		return p
	}
	L.ArgError(1, "midi pipe expected")
	return nil
}

var midiPipeMethods = map[string]lua.LGFunction{
	"size": func(L *lua.LState) int {
		L.Push(lua.LNumber(checkMidiPipe(L).Size()))
		return 1
	},
	"get_read_buffer": func(L *lua.LState) int {
		p := checkMidiPipe(L)
		buf := p.Read(L.CheckInt(2))
		if buf == nil {
			L.Push(lua.LNil)
			return 1
		}
		ud := L.NewUserData()
		ud.Value = buf
		L.SetMetatable(ud, L.GetTypeMetatable(midiBufferTypeName))
		L.Push(ud)
		return 1
	},
}

func checkMidiBuffer(L *lua.LState) *midi.Buffer {
	ud := L.CheckUserData(1)
	if b, ok := ud.Value.(*midi.Buffer); ok {
		return b
	}
	L.ArgError(1, "midi buffer expected")
	return nil
}

var midiBufferMethods = map[string]lua.LGFunction{
	"size": func(L *lua.LState) int {
		L.Push(lua.LNumber(checkMidiBuffer(L).Len()))
		return 1
	},
	"clear": func(L *lua.LState) int {
		checkMidiBuffer(L).Clear()
		return 0
	},
	// iter returns a closure usable in a generic for:
	//   for msg in buf:iter() do ... end
	"iter": func(L *lua.LState) int {
		msgs := checkMidiBuffer(L).Messages()
		i := 0
		L.Push(L.NewFunction(func(L *lua.LState) int {
			if i >= len(msgs) {
				L.Push(lua.LNil)
				return 1
			}
			ud := L.NewUserData()
			ud.Value = msgs[i]
			i++
			L.SetMetatable(ud, L.GetTypeMetatable(midiMsgTypeName))
			L.Push(ud)
			return 1
		}))
		return 1
	},
	"add_note_on": func(L *lua.LState) int {
		b := checkMidiBuffer(L)
		ch := L.CheckInt(2)
		note := byte(L.CheckInt(3))
		vel := byte(L.CheckInt(4))
		frame := L.OptInt(5, 0)
		b.Add(midi.NoteOn(ch, note, vel, frame))
		return 0
	},
	"add_note_off": func(L *lua.LState) int {
		b := checkMidiBuffer(L)
		ch := L.CheckInt(2)
		note := byte(L.CheckInt(3))
		frame := L.OptInt(4, 0)
		b.Add(midi.NoteOff(ch, note, frame))
		return 0
	},
}

func checkMidiMsg(L *lua.LState) midi.Message {
	ud := L.CheckUserData(1)
	if m, ok := ud.Value.(midi.Message); ok {
		return m
	}
	L.ArgError(1, "midi message expected")
	return midi.Message{}
}

var midiMsgMethods = map[string]lua.LGFunction{
	"status": func(L *lua.LState) int {
		L.Push(lua.LNumber(checkMidiMsg(L).Status()))
		return 1
	},
	"channel": func(L *lua.LState) int {
		L.Push(lua.LNumber(checkMidiMsg(L).Channel()))
		return 1
	},
	"frame": func(L *lua.LState) int {
		L.Push(lua.LNumber(checkMidiMsg(L).Frame))
		return 1
	},
	"note": func(L *lua.LState) int {
		m := checkMidiMsg(L)
		if len(m.Data) > 1 {
			L.Push(lua.LNumber(m.Data[1]))
		} else {
			L.Push(lua.LNumber(0))
		}
		return 1
	},
	"velocity": func(L *lua.LState) int {
		m := checkMidiMsg(L)
		if len(m.Data) > 2 {
			L.Push(lua.LNumber(m.Data[2]))
		} else {
			L.Push(lua.LNumber(0))
		}
		return 1
	},
	"is_note_on": func(L *lua.LState) int {
		L.Push(lua.LBool(checkMidiMsg(L).IsNoteOn()))
		return 1
	},
	"is_note_off": func(L *lua.LState) int {
		L.Push(lua.LBool(checkMidiMsg(L).IsNoteOff()))
		return 1
	},
}

func midiMsgToString(L *lua.LState) int {
	L.Push(lua.LString(checkMidiMsg(L).String()))
	return 1
}
