package strategy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tamaroning/blocksim/internal/block"
)

func TestDelayedHonestAddsExtraLatencyToPropagation(t *testing.T) {
	pool := newTestPool()
	b1 := pool.Append(block.Block{ID: pool.NextID(), Height: 1, Prev: 0, Minter: 0})
	env := &Env{Pool: pool, NumNodes: 2}

	d := NewDelayedHonest(250)
	actions := d.OnMiningBlock(b1, 0, env, 0)

	for _, a := range actions {
		if a.Kind == ActionPropagate {
			require.Equal(t, int64(250), a.After)
		}
	}
}

func TestPostponedPublishAddsExtraLatencyToPropagation(t *testing.T) {
	pool := newTestPool()
	b1 := pool.Append(block.Block{ID: pool.NextID(), Height: 1, Prev: 0, Minter: 0})
	env := &Env{Pool: pool, NumNodes: 2}

	p := NewPostponedPublish(400)
	actions := p.OnMiningBlock(b1, 0, env, 0)

	for _, a := range actions {
		if a.Kind == ActionPropagate {
			require.Equal(t, int64(400), a.After)
		}
	}
}
