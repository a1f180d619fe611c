package monitoring

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/urbanride/dispatch/core/model"
	"github.com/urbanride/dispatch/core/queue"
)

// TierStats summarizes the revenue score distribution of one tier. It gives
// the dashboard collaborator a cheap view of queue health without shipping
// every entry.
type TierStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
}

// Summary aggregates per-tier statistics from one queue snapshot.
type Summary struct {
	P0 TierStats `json:"P0"`
	P1 TierStats `json:"P1"`
	P2 TierStats `json:"P2"`
}

// Summarize computes score statistics for each tier of the snapshot.
func Summarize(snap queue.Snapshot) Summary {
	return Summary{
		P0: tierStats(snap.P0),
		P1: tierStats(snap.P1),
		P2: tierStats(snap.P2),
	}
}

func tierStats(entries []model.QueueEntry) TierStats {
	if len(entries) == 0 {
		return TierStats{}
	}
	scores := make([]float64, len(entries))
	for i, e := range entries {
		scores[i] = e.RevenueScore
	}
	sort.Float64s(scores)
	mean, std := stat.MeanStdDev(scores, nil)
	ts := TierStats{
		Count: len(scores),
		Mean:  mean,
		Min:   scores[0],
		Max:   scores[len(scores)-1],
		P50:   stat.Quantile(0.5, stat.Empirical, scores, nil),
		P90:   stat.Quantile(0.9, stat.Empirical, scores, nil),
	}
	// MeanStdDev returns NaN for a single sample.
	if len(scores) > 1 {
		ts.StdDev = std
	}
	return ts
}
