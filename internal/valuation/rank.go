package valuation

import (
	"sort"

	"github.com/fantasylab/fantasy-lab/internal/category"
	"github.com/fantasylab/fantasy-lab/internal/model"
)

// Rank scores every player and orders them by total value, highest first.
// Equal totals keep their input order. Any scoring error aborts the pass.
func Rank(players []model.Player, avgs model.LeagueAverages, punts category.PuntSet) ([]model.ScoredPlayer, error) {
	out := make([]model.ScoredPlayer, 0, len(players))
	for _, p := range players {
		sp, err := Score(p, avgs, punts)
		if err != nil {
			return nil, err
		}
		out = append(out, sp)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalValue > out[j].TotalValue
	})
	return out, nil
}

// RankOf returns the 1-based position of id in a ranked list, or 0.
func RankOf(ranked []model.ScoredPlayer, id model.PlayerID) int {
	for i := range ranked {
		if ranked[i].ID == id {
			return i + 1
		}
	}
	return 0
}
