package port

import "fmt"

// Type classifies what kind of signal a port carries.
type Type int

const (
	Audio Type = iota
	Midi
	Control
)

// String returns a human readable name for the port type.
func (t Type) String() string {
	switch t {
	case Audio:
		return "audio"
	case Midi:
		return "midi"
	case Control:
		return "control"
	default:
		return "unknown"
	}
}

// Port describes one typed, directional connection point on a graph node.
// Index is global and unique across the node; Channel restarts at zero for
// each (type, direction) group.
type Port struct {
	Type    Type
	Index   int
	Channel int
	Symbol  string
	Name    string
	IsInput bool
}

// List is an ordered sequence of port descriptors. The order is the contract
// the host graph uses to wire buffers, so reordering is a breaking change.
type List []Port

// Add appends one descriptor. Indices must be assigned in declaration order:
// the new port's Index has to equal the current length of the list, which
// also guarantees no two descriptors share an index.
func (l *List) Add(t Type, index, channel int, symbol, name string, isInput bool) error {
	if index != len(*l) {
		return fmt.Errorf("port %q: index %d out of declaration order (want %d)", symbol, index, len(*l))
	}
	*l = append(*l, Port{
		Type:    t,
		Index:   index,
		Channel: channel,
		Symbol:  symbol,
		Name:    name,
		IsInput: isInput,
	})
	return nil
}

// Count returns the number of ports matching the given type and direction.
func (l List) Count(t Type, isInput bool) int {
	n := 0
	for _, p := range l {
		if p.Type == t && p.IsInput == isInput {
			n++
		}
	}
	return n
}

// Symbols returns the port symbols in declaration order.
func (l List) Symbols() []string {
	syms := make([]string, len(l))
	for i, p := range l {
		syms[i] = p.Symbol
	}
	return syms
}

// Find returns the first port with the given symbol.
func (l List) Find(symbol string) (Port, bool) {
	for _, p := range l {
		if p.Symbol == symbol {
			return p, true
		}
	}
	return Port{}, false
}
