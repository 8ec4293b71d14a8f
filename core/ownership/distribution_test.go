package ownership

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDistribution_SpecExample: holdings of 50/30/20 percent give
// mean 33.33, median 30 and a top-10% concentration of 50.
func TestDistribution_SpecExample(t *testing.T) {
	holdings := []Holding{
		{Address: "H2", Balance: 300},
		{Address: "H1", Balance: 500},
		{Address: "H3", Balance: 200},
	}

	snap := Distribution(holdings, 1000, 10)
	assert.Equal(t, 3, snap.HolderCount)
	assert.InDelta(t, 33.333333, snap.MeanPercent, 1e-4)
	assert.InDelta(t, 30.0, snap.MedianPercent, 1e-9)
	assert.InDelta(t, 50.0, snap.ConcentrationRatio, 1e-9)

	require.Len(t, snap.TopHolders, 3)
	assert.Equal(t, "H1", snap.TopHolders[0].Address)
	assert.InDelta(t, 50.0, snap.TopHolders[0].Percent, 1e-9)
}

// TestDistribution_MedianEvenCount averages the two middle values.
func TestDistribution_MedianEvenCount(t *testing.T) {
	holdings := []Holding{
		{Address: "H1", Balance: 400},
		{Address: "H2", Balance: 300},
		{Address: "H3", Balance: 200},
		{Address: "H4", Balance: 100},
	}

	snap := Distribution(holdings, 1000, 10)
	assert.Equal(t, 4, snap.HolderCount)
	assert.InDelta(t, 25.0, snap.MedianPercent, 1e-9) // (30+20)/2
}

// TestDistribution_ConcentrationMinimumOneHolder: with fewer than ten
// holders the top-10% bucket still contains at least one holder.
func TestDistribution_ConcentrationMinimumOneHolder(t *testing.T) {
	snap := Distribution([]Holding{{Address: "H1", Balance: 250}}, 1000, 10)
	assert.Equal(t, 1, snap.HolderCount)
	assert.InDelta(t, 25.0, snap.ConcentrationRatio, 1e-9)
}

// TestDistribution_ConcentrationCeil: 11 holders -> ceil(1.1) = 2 holders.
func TestDistribution_ConcentrationCeil(t *testing.T) {
	holdings := make([]Holding, 0, 11)
	for i := 0; i < 11; i++ {
		holdings = append(holdings, Holding{Address: string(rune('A' + i)), Balance: uint64(100 - i)})
	}

	snap := Distribution(holdings, 10000, 5)
	assert.Equal(t, 11, snap.HolderCount)
	assert.Len(t, snap.TopHolders, 5)
	assert.InDelta(t, float64(100+99)/10000*100, snap.ConcentrationRatio, 1e-9)
}

// TestDistribution_Empty returns zero values without panicking.
func TestDistribution_Empty(t *testing.T) {
	snap := Distribution(nil, 1000, 10)
	assert.Equal(t, 0, snap.HolderCount)
	assert.Empty(t, snap.TopHolders)
	assert.Zero(t, snap.MeanPercent)
	assert.Zero(t, snap.MedianPercent)
	assert.Zero(t, snap.ConcentrationRatio)

	snap = Distribution([]Holding{{Address: "H1", Balance: 10}}, 0, 10)
	assert.Equal(t, 0, snap.HolderCount, "zero supply yields no statistics")
}

// TestDistribution_Pure: the input slice is left untouched.
func TestDistribution_Pure(t *testing.T) {
	holdings := []Holding{
		{Address: "H2", Balance: 300},
		{Address: "H1", Balance: 500},
	}

	_ = Distribution(holdings, 1000, 10)
	assert.Equal(t, "H2", holdings[0].Address)
	assert.Zero(t, holdings[0].Percent)
}
