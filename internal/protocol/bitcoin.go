package protocol

import (
	"math"
	"math/rand"

	"github.com/tamaroning/blocksim/internal/block"
)

const (
	btcEpoch                = 2016
	btcTargetGenerationTime = 600_000 // ms
)

// Bitcoin retargets difficulty every 2016 blocks against a 600s target
// block interval.
type Bitcoin struct{}

func (Bitcoin) Name() string { return "Bitcoin" }

func (Bitcoin) DefaultDifficulty() float64 { return 1 }

func (Bitcoin) CalculateDifficulty(parent block.Block, currentTime int64, pool *block.Pool) float64 {
	newHeight := parent.Height + 1
	if newHeight%btcEpoch != 0 || newHeight < btcEpoch {
		return parent.Difficulty
	}

	// Walk back 2015 blocks from the parent to find the first block in
	// this epoch; the retarget uses the average generation time over
	// that 2015-block window.
	first := parent
	for i := 0; i < btcEpoch-1; i++ {
		first = pool.MustGet(first.Prev)
	}

	avg := float64(currentTime-first.Time) / float64(btcEpoch-1)
	ratio := avg / float64(btcTargetGenerationTime)
	ratio = math.Max(0.25, math.Min(4.0, ratio))

	return parent.Difficulty / ratio
}

func (Bitcoin) CalculateGenerationTime(rng *rand.Rand, difficulty float64, hashrate int64) int64 {
	expectedHash := difficulty * math.Pow(2, 32)
	expectedTime := expectedHash / float64(hashrate)
	return int64(sampleExp(rng) * expectedTime)
}
