package valuation

import (
	"fmt"
	"math"

	"github.com/fantasylab/fantasy-lab/internal/category"
	"github.com/fantasylab/fantasy-lab/internal/model"
)

// ZScore returns the sign-adjusted z-score of value against avg. A zero
// standard deviation yields exactly 0.
func ZScore(value float64, avg model.LeagueAverage, lowerIsBetter bool) float64 {
	if avg.Std == 0 {
		return 0
	}
	z := (value - avg.Mean) / avg.Std
	if lowerIsBetter {
		return -z
	}
	return z
}

// Score computes z-scores for every category and sums the non-punted ones.
// Punted categories are still scored and stored.
func Score(p model.Player, avgs model.LeagueAverages, punts category.PuntSet) (model.ScoredPlayer, error) {
	zs := make(map[category.Key]float64, category.Count())
	total := 0.0

	for _, k := range category.All() {
		avg, ok := avgs[k]
		if !ok {
			return model.ScoredPlayer{}, fmt.Errorf("%w for category %s", ErrMissingLeagueAverage, k)
		}
		if !finite(avg.Mean) || !finite(avg.Std) || avg.Std < 0 {
			return model.ScoredPlayer{}, fmt.Errorf("%w: league average for %s is {mean: %v, std: %v}", ErrMalformedValue, k, avg.Mean, avg.Std)
		}
		v, ok := p.Stat(k)
		if !ok {
			return model.ScoredPlayer{}, fmt.Errorf("%w %s for player %s", ErrMissingStat, k, p.ID)
		}
		if !finite(v) {
			return model.ScoredPlayer{}, fmt.Errorf("%w: player %s %s = %v", ErrMalformedValue, p.ID, k, v)
		}

		z := ZScore(v, avg, k.LowerIsBetter())
		zs[k] = z
		if !punts.Contains(k) {
			total += z
		}
	}

	return model.ScoredPlayer{Player: p, ZScores: zs, TotalValue: total}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
