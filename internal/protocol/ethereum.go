package protocol

import (
	"math"
	"math/rand"

	"github.com/tamaroning/blocksim/internal/block"
)

// Ethereum implements the Homestead-style difficulty bomb-free
// retarget; uncles are ignored (§4.4 "uncles ignored").
type Ethereum struct{}

func (Ethereum) Name() string { return "Ethereum" }

func (Ethereum) DefaultDifficulty() float64 { return math.Pow(2, 32) }

func (e Ethereum) CalculateDifficulty(parent block.Block, _ int64, pool *block.Pool) float64 {
	if parent.Height == 0 || parent.Height == 1 {
		return e.DefaultDifficulty()
	}

	grandparent := pool.MustGet(parent.Prev)
	deltaSeconds := (parent.Time - grandparent.Time) / 1000
	a := math.Max(-99, float64(1-deltaSeconds/10))

	adjustment := math.Floor(parent.Difficulty/2048) * a
	return parent.Difficulty + adjustment
}

func (Ethereum) CalculateGenerationTime(rng *rand.Rand, difficulty float64, hashrate int64) int64 {
	expectedTime := difficulty / float64(hashrate)
	return int64(sampleExp(rng) * expectedTime)
}
