package valuation

import (
	"fmt"

	"github.com/fantasylab/fantasy-lab/internal/category"
	"github.com/fantasylab/fantasy-lab/internal/model"
)

// PreviewResult compares a roster before and after adding one candidate.
// Before is nil when the current roster is empty.
type PreviewResult struct {
	Candidate model.ScoredPlayer       `json:"candidate"`
	Before    *model.TeamSummary       `json:"before"`
	After     model.TeamSummary        `json:"after"`
	Delta     map[category.Key]float64 `json:"delta"`
	DeltaTV   float64                  `json:"delta_total_value"`
}

// Preview evaluates adding candidate to r. Both come from the same ranked list,
// so the comparison is always made under one punt configuration.
func Preview(ranked []model.ScoredPlayer, r Roster, candidate model.PlayerID) (PreviewResult, error) {
	idx := RankOf(ranked, candidate)
	if idx == 0 {
		return PreviewResult{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, candidate)
	}
	withCandidate, err := r.Add(candidate)
	if err != nil {
		return PreviewResult{}, err
	}

	current, _ := FilterRoster(ranked, r)
	next, _ := FilterRoster(ranked, withCandidate)

	after, _ := Aggregate(next)
	res := PreviewResult{
		Candidate: ranked[idx-1],
		After:     after,
		Delta:     make(map[category.Key]float64, category.Count()),
	}

	before, ok := Aggregate(current)
	if ok {
		res.Before = &before
	}
	for _, c := range category.All() {
		res.Delta[c] = after.ZScores[c] - before.ZScores[c]
	}
	res.DeltaTV = after.TotalValue - before.TotalValue
	return res, nil
}
