// Package tie implements the fork-choice tie-breaking rule. The
// simulation engine carries the configured Rule and hands it to
// strategies through their Env; ArrivingWins is applied by the selfish
// strategies to their public-tip bookkeeping.
package tie

import (
	"fmt"

	"github.com/tamaroning/blocksim/internal/block"
)

// Rule selects how equal-height competing tips are resolved.
type Rule int

const (
	// Longest never switches on equal heights.
	Longest Rule = iota
	// Random adopts the challenger iff it has the higher Rand value.
	Random
	// Time adopts the challenger iff it was produced earlier.
	Time
)

// Parse converts a CLI/profile string into a Rule.
func Parse(s string) (Rule, error) {
	switch s {
	case "longest":
		return Longest, nil
	case "random":
		return Random, nil
	case "time":
		return Time, nil
	default:
		return Longest, fmt.Errorf("tie: unknown rule %q", s)
	}
}

func (r Rule) String() string {
	switch r {
	case Longest:
		return "longest"
	case Random:
		return "random"
	case Time:
		return "time"
	default:
		return "unknown"
	}
}

// ArrivingWins reports whether arriving should replace current as a
// node's tip, per §4.6 fork-choice:
//
//   - strictly taller always wins;
//   - equal height only switches when the node did not itself mine
//     current, and only per the configured rule (random: higher Rand
//     wins; time: earlier-observed wins; longest: never switches).
func ArrivingWins(rule Rule, recipientMinedCurrent bool, current, arriving block.Block) bool {
	if arriving.Height > current.Height {
		return true
	}
	if arriving.Height != current.Height || recipientMinedCurrent {
		return false
	}
	switch rule {
	case Random:
		return current.Rand < arriving.Rand
	case Time:
		return current.Time > arriving.Time
	default: // Longest
		return false
	}
}
