// Command blocksim runs a discrete-event simulation of proof-of-work
// block propagation, fork resolution, difficulty adjustment, and
// mining-strategy fairness.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tamaroning/blocksim/internal/engine"
	"github.com/tamaroning/blocksim/internal/node"
	"github.com/tamaroning/blocksim/internal/profile"
	"github.com/tamaroning/blocksim/internal/protocol"
	"github.com/tamaroning/blocksim/internal/report"
	"github.com/tamaroning/blocksim/internal/strategy"
	"github.com/tamaroning/blocksim/internal/tie"
)

const defaultHashrate = 1000

func main() {
	log := logrus.New()
	setLevelFromEnv(log)

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("simulation invariant violated: %v", r)
			os.Exit(1)
		}
	}()

	if err := newRootCmd(log).Execute(); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

// setLevelFromEnv applies BLOCKSIM_LOG (unset|error|warn|info|debug|
// trace), the module's concrete stand-in for the spec's "RUST_LOG-
// style level filter" (§6).
func setLevelFromEnv(log *logrus.Logger) {
	lvl, err := logrus.ParseLevel(os.Getenv("BLOCKSIM_LOG"))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
}

type runFlags struct {
	numNodes int
	seed     int64
	seedSet  bool
	endRound int64
	tieRule  string
	delay    int64
	protoStr string
	output   string
	output2  string
	profile  string
}

func newRootCmd(log *logrus.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "blocksim",
		Short: "Discrete-event simulator of proof-of-work consensus dynamics",
	}
	root.AddCommand(newRunCmd(log))
	return root
}

func newRunCmd(log *logrus.Logger) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation and report its results",
		RunE: func(cmd *cobra.Command, args []string) error {
			f.seedSet = cmd.Flags().Changed("seed")
			return runSimulation(log, f)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&f.numNodes, "num-nodes", 10, "number of miners when no --profile is given")
	flags.Int64Var(&f.seed, "seed", 0, "RNG seed (default: time-derived if unset)")
	flags.Int64Var(&f.endRound, "end-round", 10, "terminate once some block reaches this height")
	flags.StringVar(&f.tieRule, "tie", "longest", "fork-choice tie-break: longest|random|time")
	flags.Int64Var(&f.delay, "delay", 600, "one-hop propagation delay, simulated ms")
	flags.StringVar(&f.protoStr, "protocol", "bitcoin", "consensus protocol: bitcoin|ethereum")
	flags.StringVar(&f.output, "output", "", "CSV path for main-chain records")
	flags.StringVar(&f.output2, "output2", "", "CSV path for fairness records")
	flags.StringVar(&f.profile, "profile", "", "JSON network profile path; supersedes --num-nodes")

	return cmd
}

func runSimulation(log *logrus.Logger, f *runFlags) error {
	nodes, err := loadNodes(f)
	if err != nil {
		return errors.Wrap(err, "blocksim: loading nodes")
	}

	proto, err := protocol.Parse(f.protoStr)
	if err != nil {
		return errors.Wrap(err, "blocksim: parsing --protocol")
	}

	tieRule, err := tie.Parse(f.tieRule)
	if err != nil {
		return errors.Wrap(err, "blocksim: parsing --tie")
	}

	seed := f.seed
	if !f.seedSet {
		seed = rand.New(rand.NewSource(time.Now().UnixNano())).Int63()
	}

	e := engine.New(engine.Config{
		Nodes:    nodes,
		Protocol: proto,
		Tie:      tieRule,
		Delay:    f.delay,
		EndRound: f.endRound,
		Seed:     seed,
		Log:      log,
	})

	log.Infof("starting run: nodes=%d protocol=%s tie=%s seed=%d end_round=%d", len(nodes), proto.Name(), tieRule, seed, f.endRound)
	e.Run(context.Background())

	report.PrintSummary(log, e.Pool(), e.Nodes(), e.CurrentTime(), e.CurrentRound(), e.TotalHashrate())
	rows := report.Fairness(e.Pool(), e.Nodes(), e.TotalHashrate())
	report.PrintFairness(log, rows)

	if f.output != "" {
		if err := report.WriteMainChainCSV(f.output, e.Pool()); err != nil {
			return errors.Wrap(err, "blocksim: writing --output")
		}
	}
	if f.output2 != "" {
		if err := report.WriteFairnessCSV(f.output2, rows); err != nil {
			return errors.Wrap(err, "blocksim: writing --output2")
		}
	}

	return nil
}

// loadNodes builds the node table either from a JSON profile or from
// --num-nodes equal-hashrate honest miners (§6 "Profile JSON
// supersedes --num-nodes and default hashrates").
func loadNodes(f *runFlags) ([]*node.Node, error) {
	if f.profile != "" {
		net, err := profile.Load(f.profile)
		if err != nil {
			return nil, err
		}
		return net.BuildNodes()
	}

	if f.numNodes <= 0 {
		return nil, fmt.Errorf("blocksim: --num-nodes must be positive, got %d", f.numNodes)
	}
	nodes := make([]*node.Node, f.numNodes)
	for i := range nodes {
		nodes[i] = node.New(node.ID(i), defaultHashrate, strategy.NewHonest())
	}
	return nodes, nil
}
