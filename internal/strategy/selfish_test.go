package strategy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tamaroning/blocksim/internal/block"
	"github.com/tamaroning/blocksim/internal/tie"
)

func countPropagations(actions []Action) int {
	n := 0
	for _, a := range actions {
		if a.Kind == ActionPropagate {
			n++
		}
	}
	return n
}

func hasRestart(actions []Action) bool {
	for _, a := range actions {
		if a.Kind == ActionRestartMining {
			return true
		}
	}
	return false
}

func TestSelfishKeepsLeadPrivateAfterFirstMine(t *testing.T) {
	pool := newTestPool()
	env := &Env{Pool: pool, NumNodes: 3, Tie: tie.Longest}
	s := NewSelfish()

	b1 := pool.Append(block.Block{ID: pool.NextID(), Height: 1, Prev: 0, Minter: 0})
	actions := s.OnMiningBlock(b1, 0, env, 0)

	require.Equal(t, 0, countPropagations(actions), "a 1-block lead must stay private")
	require.True(t, hasRestart(actions))
	require.Equal(t, b1, s.PrivateTip)
	require.Equal(t, 1, s.PrivateBranchLen)
}

func TestSelfishKeepsUncontestedTwoBlockLeadPrivate(t *testing.T) {
	pool := newTestPool()
	env := &Env{Pool: pool, NumNodes: 3, Tie: tie.Longest}
	s := NewSelfish()

	b1 := pool.Append(block.Block{ID: pool.NextID(), Height: 1, Prev: 0, Minter: 0})
	s.OnMiningBlock(b1, 0, env, 0)
	b2 := pool.Append(block.Block{ID: pool.NextID(), Height: 2, Prev: b1, Minter: 0})
	actions := s.OnMiningBlock(b2, 0, env, 0)

	require.Equal(t, 0, countPropagations(actions), "a lead of 1 before mining is not a race win, so nothing is published")
	require.Equal(t, 2, s.PrivateBranchLen)
}

func TestSelfishAbandonsWhenPublicChainCatchesUp(t *testing.T) {
	pool := newTestPool()
	env := &Env{Pool: pool, NumNodes: 2, Tie: tie.Longest}
	s := NewSelfish()

	priv1 := pool.Append(block.Block{ID: pool.NextID(), Height: 1, Prev: 0, Minter: 0})
	s.OnMiningBlock(priv1, 0, env, 0)

	// A 1-block lead meeting an honest block is a 1-vs-1 race (priv1 is
	// published); the next honest block on top of pub1 wins it.
	pub1 := pool.Append(block.Block{ID: pool.NextID(), Height: 1, Prev: 0, Minter: 1})
	s.OnReceivingBlock(pub1, 0, env, 0)
	pub2 := pool.Append(block.Block{ID: pool.NextID(), Height: 2, Prev: pub1, Minter: 1})
	actions := s.OnReceivingBlock(pub2, 0, env, 0)

	require.Equal(t, 0, countPropagations(actions))
	require.Equal(t, s.PublicTip, s.PrivateTip)
	require.Equal(t, 0, s.PrivateBranchLen)
}

func TestSelfishPublishesWholeBranchOnArrivalAtTwoBlockLead(t *testing.T) {
	pool := newTestPool()
	env := &Env{Pool: pool, NumNodes: 2, Tie: tie.Longest}
	s := NewSelfish()

	priv1 := pool.Append(block.Block{ID: pool.NextID(), Height: 1, Prev: 0, Minter: 0})
	s.OnMiningBlock(priv1, 0, env, 0)
	priv2 := pool.Append(block.Block{ID: pool.NextID(), Height: 2, Prev: priv1, Minter: 0})
	s.OnMiningBlock(priv2, 0, env, 0)

	// The private branch is 2 blocks ahead of a still-genesis public
	// tip; any arrival at this lead publishes the whole branch.
	pub1 := pool.Append(block.Block{ID: pool.NextID(), Height: 1, Prev: 0, Minter: 1})
	actions := s.OnReceivingBlock(pub1, 0, env, 0)
	require.Equal(t, 0, s.PrivateBranchLen, "a 2-block lead publishes the whole branch on any arrival")
	require.False(t, hasRestart(actions), "mining stays on the private tip, so the timer is not resampled")
}

func TestSelfishFirstUnpublishedIsOldestBlockOfPrivateBranch(t *testing.T) {
	pool := newTestPool()
	env := &Env{Pool: pool, NumNodes: 2, Tie: tie.Longest}
	s := NewSelfish()

	b1 := pool.Append(block.Block{ID: pool.NextID(), Height: 1, Prev: 0, Minter: 0})
	s.OnMiningBlock(b1, 0, env, 0)
	b2 := pool.Append(block.Block{ID: pool.NextID(), Height: 2, Prev: b1, Minter: 0})
	// Publish manually so PrivateBranchLen resets but PrivateTip advances
	// again, to reach a 3+ lead scenario.
	s.PrivateBranchLen = 0
	s.PublicTip = 0
	s.OnMiningBlock(b2, 0, env, 0)
	b3 := pool.Append(block.Block{ID: pool.NextID(), Height: 3, Prev: b2, Minter: 0})
	s.OnMiningBlock(b3, 0, env, 0)

	require.Equal(t, b2, s.firstUnpublished(env))
}
