package strategy

import (
	"github.com/tamaroning/blocksim/internal/block"
	"github.com/tamaroning/blocksim/internal/tie"
)

// KLeadSelfish generalizes Selfish: it only releases its private
// branch once its lead over the public chain reaches K blocks.
// K=2 reproduces Selfish exactly.
type KLeadSelfish struct {
	PublicTip        block.ID
	PrivateTip       block.ID
	PrivateBranchLen int
	K                int
}

// NewKLeadSelfish returns a KLeadSelfish strategy requiring a lead of
// k blocks before publishing. k is clamped to a minimum of 2.
func NewKLeadSelfish(k int) *KLeadSelfish {
	if k < 2 {
		k = 2
	}
	return &KLeadSelfish{PublicTip: 0, PrivateTip: 0, PrivateBranchLen: 0, K: k}
}

func (s *KLeadSelfish) Name() string { return "k_lead_selfish" }

func (s *KLeadSelfish) privateBranch(env *Env) []block.ID {
	ids := make([]block.ID, 0, s.PrivateBranchLen)
	cur := s.PrivateTip
	for i := 0; i < s.PrivateBranchLen; i++ {
		ids = append(ids, cur)
		cur = env.Pool.MustGet(cur).Prev
	}
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids
}

func (s *KLeadSelfish) firstUnpublished(env *Env) block.ID {
	cur := s.PrivateTip
	for i := 0; i < s.PrivateBranchLen-1; i++ {
		cur = env.Pool.MustGet(cur).Prev
	}
	return cur
}

func (s *KLeadSelfish) OnMiningBlock(blockID block.ID, _ int64, env *Env, _ int) []Action {
	privHeight := env.Pool.MustGet(s.PrivateTip).Height
	pubHeight := env.Pool.MustGet(s.PublicTip).Height
	deltaPrev := privHeight - pubHeight

	s.PrivateTip = blockID
	s.PrivateBranchLen++

	var actions []Action
	if deltaPrev == 0 && s.PrivateBranchLen == s.K {
		for _, id := range s.privateBranch(env) {
			actions = append(actions, broadcast(env, id)...)
		}
		s.PrivateBranchLen = 0
	}
	actions = append(actions, RestartMining(s.PrivateTip))
	return actions
}

func (s *KLeadSelfish) OnReceivingBlock(blockID block.ID, _ int64, env *Env, nodeID int) []Action {
	arriving := env.Pool.MustGet(blockID)
	privHeight := env.Pool.MustGet(s.PrivateTip).Height
	publicBlock := env.Pool.MustGet(s.PublicTip)
	deltaPrev := privHeight - publicBlock.Height

	if tie.ArrivingWins(env.Tie, publicBlock.Minter == nodeID, publicBlock, arriving) {
		s.PublicTip = blockID
	}

	k := block.Height(s.K)
	var actions []Action
	switch {
	case deltaPrev <= 0:
		s.PrivateTip = s.PublicTip
		s.PrivateBranchLen = 0
		actions = append(actions, RestartMining(s.PrivateTip))
	case deltaPrev < k:
		actions = append(actions, broadcast(env, s.PrivateTip)...)
	case deltaPrev == k:
		for _, id := range s.privateBranch(env) {
			actions = append(actions, broadcast(env, id)...)
		}
		s.PrivateBranchLen = 0
	default:
		actions = append(actions, broadcast(env, s.firstUnpublished(env))...)
	}

	return actions
}
