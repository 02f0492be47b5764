// Package protocol implements the pure difficulty-retargeting and
// mining-time-sampling functions for the two supported consensus
// protocols. Both functions are pure given their inputs; the RNG
// source is injected by the caller so a run stays reproducible from a
// fixed seed (§4.4).
package protocol

import (
	"math/rand"

	"github.com/tamaroning/blocksim/internal/block"
	"gonum.org/v1/gonum/stat/distuv"
)

// Protocol is selected once at run start and never changes mid-run.
type Protocol interface {
	Name() string
	DefaultDifficulty() float64
	// CalculateDifficulty derives the child difficulty given the
	// parent block, the simulated time the child is produced, and a
	// pool to walk ancestors through (needed for Bitcoin's epoch
	// retarget, which looks back 2015 blocks).
	CalculateDifficulty(parent block.Block, currentTime int64, pool *block.Pool) float64
	// CalculateGenerationTime samples a mining completion delay (in
	// simulated ms) for a block of the given difficulty and hashrate.
	CalculateGenerationTime(rng *rand.Rand, difficulty float64, hashrate int64) int64
}

// sampleExp draws one Exp(1) sample using gonum's distuv, backed by
// the caller's *rand.Rand so the whole run stays reproducible from a
// single seed.
func sampleExp(rng *rand.Rand) float64 {
	dist := distuv.Exp{Rate: 1, Src: rng}
	return dist.Rand()
}

// Parse converts a CLI/profile string into a Protocol.
func Parse(name string) (Protocol, error) {
	switch name {
	case "bitcoin":
		return Bitcoin{}, nil
	case "ethereum":
		return Ethereum{}, nil
	default:
		return nil, &UnknownProtocolError{Name: name}
	}
}

// UnknownProtocolError is returned by Parse for an unrecognized name.
type UnknownProtocolError struct {
	Name string
}

func (e *UnknownProtocolError) Error() string {
	return "protocol: unknown protocol " + e.Name
}
