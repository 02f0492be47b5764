// Package profile loads a JSON network profile describing the node
// count, hashrates, and per-node mining strategies for a run,
// superseding --num-nodes and default hashrates when given (§6).
package profile

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/tamaroning/blocksim/internal/node"
	"github.com/tamaroning/blocksim/internal/strategy"
)

// NodeProfile is one entry of the "nodes" array: a hashrate and a
// strategy discriminator (§6 "Profile JSON").
type NodeProfile struct {
	Hashrate int64         `json:"hashrate"`
	Strategy strategy.Spec `json:"strategy"`
}

// Network is the top-level shape of a profile file. Node index in the
// slice is the node's ID.
type Network struct {
	Nodes []NodeProfile `json:"nodes"`
}

// Load reads and decodes a network profile from path.
func Load(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "profile: reading %s", path)
	}
	var net Network
	if err := json.Unmarshal(data, &net); err != nil {
		return nil, errors.Wrapf(err, "profile: parsing %s", path)
	}
	if len(net.Nodes) == 0 {
		return nil, errors.Errorf("profile: %s defines no nodes", path)
	}
	return &net, nil
}

// BuildNodes instantiates one *node.Node per profile entry, in order,
// so slice index equals node.ID.
func (n *Network) BuildNodes() ([]*node.Node, error) {
	nodes := make([]*node.Node, len(n.Nodes))
	for i, np := range n.Nodes {
		strat, err := np.Strategy.Build()
		if err != nil {
			return nil, errors.Wrapf(err, "profile: node %d", i)
		}
		nodes[i] = node.New(node.ID(i), np.Hashrate, strat)
	}
	return nodes, nil
}
