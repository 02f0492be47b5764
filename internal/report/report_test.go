package report

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tamaroning/blocksim/internal/block"
	"github.com/tamaroning/blocksim/internal/node"
	"github.com/tamaroning/blocksim/internal/strategy"
)

func buildChain(t *testing.T) (*block.Pool, []*node.Node) {
	t.Helper()
	pool := block.NewPool(1.0)
	b1 := pool.Append(block.Block{ID: pool.NextID(), Height: 1, Prev: 0, Minter: 0, MiningTime: 100, Difficulty: 1.0})
	b2 := pool.Append(block.Block{ID: pool.NextID(), Height: 2, Prev: b1, Minter: 1, MiningTime: 150, Difficulty: 1.1})
	_ = pool.Append(block.Block{ID: pool.NextID(), Height: 3, Prev: b2, Minter: 0, MiningTime: 120, Difficulty: 1.2})

	nodes := []*node.Node{
		node.New(0, 1000, strategy.NewHonest()),
		node.New(1, 2000, strategy.NewSelfish()),
	}
	return pool, nodes
}

func TestFairnessSharesSumToOne(t *testing.T) {
	pool, nodes := buildChain(t)
	rows := Fairness(pool, nodes, 3000)

	var totalReward, totalHashrateShare float64
	for _, r := range rows {
		totalReward += r.RewardShare
		totalHashrateShare += r.HashrateShare
	}
	require.InDelta(t, 1.0, totalReward, 1e-9)
	require.InDelta(t, 1.0, totalHashrateShare, 1e-9)
}

func TestFairnessSortedDescending(t *testing.T) {
	pool, nodes := buildChain(t)
	rows := Fairness(pool, nodes, 3000)
	for i := 1; i < len(rows); i++ {
		require.GreaterOrEqual(t, rows[i-1].Fairness, rows[i].Fairness)
	}
}

func TestWriteMainChainCSV(t *testing.T) {
	pool, _ := buildChain(t)
	path := t.TempDir() + "/mainchain.csv"
	require.NoError(t, WriteMainChainCSV(path, pool))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, "round,difficulty,mining_time")
	require.Contains(t, content, "1,1,100")
}

func TestWriteFairnessCSV(t *testing.T) {
	pool, nodes := buildChain(t)
	rows := Fairness(pool, nodes, 3000)
	path := t.TempDir() + "/fairness.csv"
	require.NoError(t, WriteFairnessCSV(path, rows))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, "node_id,strategy,reward_share,hashrate_share,fairness")
}
