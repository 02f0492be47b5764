// Package report summarizes a finished simulation: console hashrate
// and fairness summaries via logrus, and CSV export of the main chain
// and per-node fairness (§4.7, §6 "CSV" sections).
package report

import (
	"encoding/csv"
	"os"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tamaroning/blocksim/internal/block"
	"github.com/tamaroning/blocksim/internal/node"
)

// NodeFairness is one row of the fairness report/CSV (§6 "CSV —
// fairness").
type NodeFairness struct {
	NodeID        int
	Strategy      string
	RewardShare   float64
	HashrateShare float64
	Fairness      float64
}

// Fairness walks the main chain, counts blocks minted by each node,
// and derives reward/hashrate shares and the resulting fairness ratio
// (§4.7). It returns rows sorted by Fairness descending.
func Fairness(pool *block.Pool, nodes []*node.Node, totalHashrate int64) []NodeFairness {
	chain := pool.MainChain()
	mined := make([]int, len(nodes))
	mainChainLen := 0
	for _, id := range chain {
		b := pool.MustGet(id)
		if !b.HasParent() {
			continue // genesis isn't anyone's reward
		}
		mined[b.Minter]++
		mainChainLen++
	}

	rows := make([]NodeFairness, len(nodes))
	for i, n := range nodes {
		var rewardShare float64
		if mainChainLen > 0 {
			rewardShare = float64(mined[i]) / float64(mainChainLen)
		}
		var hashrateShare float64
		if totalHashrate > 0 {
			hashrateShare = float64(n.Hashrate) / float64(totalHashrate)
		}
		var fairness float64
		if hashrateShare > 0 {
			fairness = rewardShare / hashrateShare
		}
		rows[i] = NodeFairness{
			NodeID:        i,
			Strategy:      n.Strategy.Name(),
			RewardShare:   rewardShare,
			HashrateShare: hashrateShare,
			Fairness:      fairness,
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Fairness > rows[j].Fairness })
	return rows
}

// PrintSummary logs per-node hashrates and the run's headline
// statistics (§4.7).
func PrintSummary(log *logrus.Logger, pool *block.Pool, nodes []*node.Node, currentTime int64, currentRound block.Height, totalHashrate int64) {
	for _, n := range nodes {
		var share float64
		if totalHashrate > 0 {
			share = float64(n.Hashrate) / float64(totalHashrate) * 100
		}
		log.Infof("node %d hashrate=%d (%.2f%%) strategy=%s", n.ID, n.Hashrate, share, n.Strategy.Name())
	}

	chain := pool.MainChain()
	tip := pool.MustGet(chain[len(chain)-1])

	var totalInterval int64
	intervals := 0
	for i := 1; i < len(chain); i++ {
		b := pool.MustGet(chain[i])
		prev := pool.MustGet(chain[i-1])
		totalInterval += b.Time - prev.Time
		intervals++
	}
	var meanInterval float64
	if intervals > 0 {
		meanInterval = float64(totalInterval) / float64(intervals)
	}

	log.Infof("current_time=%d current_round=%d total_blocks=%d mainchain_length=%d tip_difficulty=%.4f mean_inter_block_time=%.2f",
		currentTime, currentRound, pool.Len(), len(chain), tip.Difficulty, meanInterval)
}

// PrintFairness logs up to 30 fairness rows, sorted descending (§4.7).
func PrintFairness(log *logrus.Logger, rows []NodeFairness) {
	n := len(rows)
	if n > 30 {
		n = 30
	}
	for _, r := range rows[:n] {
		log.Infof("node_id=%d strategy=%s reward_share=%.4f hashrate_share=%.4f fairness=%.4f",
			r.NodeID, r.Strategy, r.RewardShare, r.HashrateShare, r.Fairness)
	}
}

// WriteMainChainCSV writes one row per main-chain block, genesis
// excluded, with columns round/difficulty/mining_time (§6 "CSV —
// main-chain").
func WriteMainChainCSV(path string, pool *block.Pool) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "report: creating %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"round", "difficulty", "mining_time"}); err != nil {
		return errors.Wrapf(err, "report: writing header to %s", path)
	}
	for _, id := range pool.MainChain() {
		b := pool.MustGet(id)
		if !b.HasParent() {
			continue
		}
		row := []string{
			strconv.FormatInt(int64(b.Height), 10),
			strconv.FormatFloat(b.Difficulty, 'f', -1, 64),
			strconv.FormatInt(b.MiningTime, 10),
		}
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "report: writing row to %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrapf(err, "report: flushing %s", path)
	}
	return nil
}

// WriteFairnessCSV writes one row per node with columns
// node_id/strategy/reward_share/hashrate_share/fairness (§6 "CSV —
// fairness").
func WriteFairnessCSV(path string, rows []NodeFairness) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "report: creating %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"node_id", "strategy", "reward_share", "hashrate_share", "fairness"}); err != nil {
		return errors.Wrapf(err, "report: writing header to %s", path)
	}
	for _, r := range rows {
		row := []string{
			strconv.Itoa(r.NodeID),
			r.Strategy,
			strconv.FormatFloat(r.RewardShare, 'f', -1, 64),
			strconv.FormatFloat(r.HashrateShare, 'f', -1, 64),
			strconv.FormatFloat(r.Fairness, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "report: writing row to %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrapf(err, "report: flushing %s", path)
	}
	return nil
}
