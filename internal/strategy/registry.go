package strategy

import "fmt"

// Spec is the JSON-decoded shape of a node's "strategy" object in a
// network profile: a "type" discriminator plus strategy-specific
// parameters, all optional with documented defaults.
type Spec struct {
	Type               string `json:"type"`
	PropagationDelayMs int64  `json:"propagation_delay_ms,omitempty"`
	PostponeMs         int64  `json:"postpone_ms,omitempty"`
	K                  int    `json:"k,omitempty"`
}

// Build constructs the Strategy named by Spec.Type. Recognized values
// are "honest", "selfish", "delayed_honest", "postponed_publish", and
// "k_lead_selfish".
func (s Spec) Build() (Strategy, error) {
	switch s.Type {
	case "", "honest":
		return NewHonest(), nil
	case "selfish":
		return NewSelfish(), nil
	case "delayed_honest":
		return NewDelayedHonest(s.PropagationDelayMs), nil
	case "postponed_publish":
		return NewPostponedPublish(s.PostponeMs), nil
	case "k_lead_selfish":
		return NewKLeadSelfish(s.K), nil
	default:
		return nil, fmt.Errorf("strategy: unknown type %q", s.Type)
	}
}
