package scriptnode

// DefaultScript is the template every new node starts from. It provides
// stereo audio in and out with one MIDI input and one MIDI output, clears
// the audio buffer and logs incoming MIDI messages.
const DefaultScript = `--- Script node template.
--
-- Provides stereo audio in and out with one MIDI input and one MIDI
-- output. Clears the audio buffer and logs MIDI messages.

function node_io_ports()
    return {
        audio_ins  = 2,
        audio_outs = 2,
        midi_ins   = 1,
        midi_outs  = 1
    }
end

-- Return parameters
function node_params()
    return {
        {
            name    = "Volume",
            label   = "dB",
            type    = "float",
            flow    = "input",
            min     = -90.0,
            max     = 24.0,
            default = 0.0
        }
    }
end

-- Prepare for rendering
function node_prepare(rate, block)
    print(string.format('prepare rate = %d block = %d', rate, block))
end

-- Render audio and MIDI
function node_render(audio, midi)
    audio:clear()
    local mb = midi:get_read_buffer(0)
    for msg in mb:iter() do
        print(tostring(msg))
    end
    mb:clear()
end

--- Release node resources
-- Free anything allocated in node_prepare here.
function node_release()
end
`
