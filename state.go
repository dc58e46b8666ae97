package scriptnode

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// nodeState is the persisted shape of a node: the committed script plus the
// draft copy kept for UI round-trip. The blob is a tagged key/value mapping;
// only the key names are contractual.
type nodeState struct {
	Script string `yaml:"script"`
	Draft  string `yaml:"draft"`
}

// GetState serializes the committed and draft script text.
func (n *Node) GetState() ([]byte, error) {
	n.mu.Lock()
	st := nodeState{Script: n.script, Draft: n.draft}
	n.mu.Unlock()
	return yaml.Marshal(st)
}

// SetState restores a node from a blob produced by GetState. The embedded
// script goes through the full validate-and-swap path: a blob carrying an
// invalid or empty script fails here and the node keeps its prior working
// script instead of going silent. Listeners are notified on success.
func (n *Node) SetState(blob []byte) error {
	var st nodeState
	if err := yaml.Unmarshal(blob, &st); err != nil {
		return fmt.Errorf("decode state: %w", err)
	}
	if err := n.LoadScript(st.Script); err != nil {
		return err
	}
	if st.Draft != "" && st.Draft != st.Script {
		n.SetDraft(st.Draft)
	}
	n.notify()
	return nil
}
