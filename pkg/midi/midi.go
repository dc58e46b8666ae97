// Package midi provides the MIDI message, buffer and pipe types the host
// graph exchanges with a node. A pipe bundles one buffer per MIDI stream;
// scripts consume a stream with a read-iterate-clear contract.
package midi

import "fmt"

// Message is one raw MIDI event with the frame offset it occurs at inside
// the current block.
type Message struct {
	Data  []byte
	Frame int
}

// NoteOn builds a note-on message on the given channel (0-15).
func NoteOn(channel int, note, velocity byte, frame int) Message {
	return Message{Data: []byte{0x90 | byte(channel&0x0f), note, velocity}, Frame: frame}
}

// NoteOff builds a note-off message on the given channel (0-15).
func NoteOff(channel int, note byte, frame int) Message {
	return Message{Data: []byte{0x80 | byte(channel&0x0f), note, 0}, Frame: frame}
}

// ControlChange builds a CC message on the given channel (0-15).
func ControlChange(channel int, controller, value byte, frame int) Message {
	return Message{Data: []byte{0xb0 | byte(channel&0x0f), controller, value}, Frame: frame}
}

// Status returns the status byte, or zero for an empty message.
func (m Message) Status() byte {
	if len(m.Data) == 0 {
		return 0
	}
	return m.Data[0]
}

// Channel returns the 0-based MIDI channel encoded in the status byte.
func (m Message) Channel() int {
	return int(m.Status() & 0x0f)
}

// IsNoteOn reports whether the message is a note-on with non-zero velocity.
func (m Message) IsNoteOn() bool {
	return m.Status()&0xf0 == 0x90 && len(m.Data) > 2 && m.Data[2] > 0
}

// IsNoteOff reports whether the message is a note-off, or a note-on with
// zero velocity (running status convention).
func (m Message) IsNoteOff() bool {
	s := m.Status() & 0xf0
	return s == 0x80 || (s == 0x90 && len(m.Data) > 2 && m.Data[2] == 0)
}

// String formats the message for logs.
func (m Message) String() string {
	switch {
	case m.IsNoteOn():
		return fmt.Sprintf("note_on ch=%d note=%d vel=%d frame=%d", m.Channel(), m.Data[1], m.Data[2], m.Frame)
	case m.IsNoteOff():
		return fmt.Sprintf("note_off ch=%d note=%d frame=%d", m.Channel(), m.Data[1], m.Frame)
	default:
		return fmt.Sprintf("midi % x frame=%d", m.Data, m.Frame)
	}
}

// Buffer is an ordered list of messages for one MIDI stream inside one block.
// Not safe for concurrent use.
type Buffer struct {
	msgs []Message
}

// Add appends a message, keeping insertion order.
func (b *Buffer) Add(m Message) {
	b.msgs = append(b.msgs, m)
}

// Len returns the number of pending messages.
func (b *Buffer) Len() int { return len(b.msgs) }

// Messages returns the pending messages in order. The slice aliases the
// buffer; callers iterate it and then Clear.
func (b *Buffer) Messages() []Message { return b.msgs }

// Clear drops all pending messages but keeps the backing storage, so a
// buffer reused across blocks settles into a steady allocation state.
func (b *Buffer) Clear() { b.msgs = b.msgs[:0] }

// Pipe bundles the MIDI buffers a node sees during one render call, one per
// stream. Stream indices are 0-based.
type Pipe struct {
	bufs []*Buffer
}

// NewPipe builds a pipe over the given stream buffers.
func NewPipe(bufs ...*Buffer) *Pipe {
	return &Pipe{bufs: bufs}
}

// Size returns the number of streams.
func (p *Pipe) Size() int { return len(p.bufs) }

// Read returns the buffer for stream i, or nil if out of range. The caller
// reads, iterates and clears; the pipe itself never mutates buffers.
func (p *Pipe) Read(i int) *Buffer {
	if i < 0 || i >= len(p.bufs) {
		return nil
	}
	return p.bufs[i]
}
