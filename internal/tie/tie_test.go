package tie

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tamaroning/blocksim/internal/block"
)

func TestArrivingWinsTallerAlwaysWins(t *testing.T) {
	current := block.Block{Height: 1}
	arriving := block.Block{Height: 2}
	for _, r := range []Rule{Longest, Random, Time} {
		require.True(t, ArrivingWins(r, true, current, arriving), "rule %s", r)
		require.True(t, ArrivingWins(r, false, current, arriving), "rule %s", r)
	}
}

func TestArrivingWinsEqualHeightRecipientMinedCurrent(t *testing.T) {
	current := block.Block{Height: 1, Rand: 0, Time: 100}
	arriving := block.Block{Height: 1, Rand: 99, Time: 1}
	for _, r := range []Rule{Longest, Random, Time} {
		require.False(t, ArrivingWins(r, true, current, arriving), "rule %s", r)
	}
}

func TestArrivingWinsLongestNeverSwitchesOnTie(t *testing.T) {
	current := block.Block{Height: 1, Rand: 0}
	arriving := block.Block{Height: 1, Rand: 999}
	require.False(t, ArrivingWins(Longest, false, current, arriving))
}

func TestArrivingWinsRandomHigherRandWins(t *testing.T) {
	current := block.Block{Height: 1, Rand: 10}
	higher := block.Block{Height: 1, Rand: 20}
	lower := block.Block{Height: 1, Rand: 5}
	require.True(t, ArrivingWins(Random, false, current, higher))
	require.False(t, ArrivingWins(Random, false, current, lower))
}

func TestArrivingWinsTimeEarlierWins(t *testing.T) {
	current := block.Block{Height: 1, Time: 100}
	earlier := block.Block{Height: 1, Time: 50}
	later := block.Block{Height: 1, Time: 150}
	require.True(t, ArrivingWins(Time, false, current, earlier))
	require.False(t, ArrivingWins(Time, false, current, later))
}

func TestParse(t *testing.T) {
	cases := map[string]Rule{"longest": Longest, "random": Random, "time": Time}
	for s, want := range cases {
		got, err := Parse(s)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := Parse("bogus")
	require.Error(t, err)
}
