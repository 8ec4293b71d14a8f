package ownership

import (
	"math"
	"sort"
)

// DistributionSnapshot holds derived ownership statistics for one asset.
// It is computed on demand and never persisted.
type DistributionSnapshot struct {
	// HolderCount is the number of holders with a nonzero balance.
	HolderCount int `json:"holder_count"`

	// TopHolders are the largest holdings, biggest first, at most K entries.
	TopHolders []Holding `json:"top_holders"`

	// MeanPercent is the average ownership percentage across holders.
	MeanPercent float64 `json:"mean_percent"`

	// MedianPercent is the median ownership percentage. For an even holder
	// count it is the average of the two middle values.
	MedianPercent float64 `json:"median_percent"`

	// ConcentrationRatio is the summed ownership percentage of the largest
	// ceil(N*0.1) holders, with a minimum of one holder.
	ConcentrationRatio float64 `json:"concentration_ratio"`
}

// Distribution computes ownership statistics over a holdings snapshot.
// It is a pure function: the input slice is not modified and no state is
// touched. topK bounds the TopHolders list; a non-positive value means 10.
func Distribution(holdings []Holding, totalSupply uint64, topK int) DistributionSnapshot {
	if topK <= 0 {
		topK = 10
	}

	snap := DistributionSnapshot{TopHolders: []Holding{}}
	if len(holdings) == 0 || totalSupply == 0 {
		return snap
	}

	sorted := make([]Holding, len(holdings))
	copy(sorted, holdings)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Balance != sorted[j].Balance {
			return sorted[i].Balance > sorted[j].Balance
		}
		return sorted[i].Address < sorted[j].Address
	})

	percents := make([]float64, len(sorted))
	var sum float64
	for i := range sorted {
		percents[i] = float64(sorted[i].Balance) / float64(totalSupply) * 100
		sorted[i].Percent = percents[i]
		sum += percents[i]
	}

	n := len(sorted)
	snap.HolderCount = n
	snap.MeanPercent = sum / float64(n)

	// percents is sorted descending; the median does not care about direction.
	if n%2 == 1 {
		snap.MedianPercent = percents[n/2]
	} else {
		snap.MedianPercent = (percents[n/2-1] + percents[n/2]) / 2
	}

	top := int(math.Ceil(float64(n) * 0.1))
	if top < 1 {
		top = 1
	}
	for i := 0; i < top; i++ {
		snap.ConcentrationRatio += percents[i]
	}

	if topK > n {
		topK = n
	}
	snap.TopHolders = sorted[:topK]
	return snap
}
