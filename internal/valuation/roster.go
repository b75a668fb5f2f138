package valuation

import (
	"fmt"

	"github.com/fantasylab/fantasy-lab/internal/category"
	"github.com/fantasylab/fantasy-lab/internal/model"
)

// Roster is an ordered, duplicate-free list of player ids. Add and Remove
// return new rosters.
type Roster []model.PlayerID

// NewRoster builds a roster, rejecting duplicate ids.
func NewRoster(ids ...model.PlayerID) (Roster, error) {
	r := make(Roster, 0, len(ids))
	for _, id := range ids {
		next, err := r.Add(id)
		if err != nil {
			return nil, err
		}
		r = next
	}
	return r, nil
}

func (r Roster) Contains(id model.PlayerID) bool {
	for _, existing := range r {
		if existing == id {
			return true
		}
	}
	return false
}

func (r Roster) Add(id model.PlayerID) (Roster, error) {
	if r.Contains(id) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateRosterPlayer, id)
	}
	out := make(Roster, len(r), len(r)+1)
	copy(out, r)
	return append(out, id), nil
}

func (r Roster) Remove(id model.PlayerID) Roster {
	out := make(Roster, 0, len(r))
	for _, existing := range r {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

// FilterRoster restricts ranked to the roster's members, keeping ranked order.
// Ids not present in ranked are returned as missing, in roster order.
func FilterRoster(ranked []model.ScoredPlayer, r Roster) (members []model.ScoredPlayer, missing []model.PlayerID) {
	want := make(map[model.PlayerID]bool, len(r))
	for _, id := range r {
		want[id] = false
	}
	members = make([]model.ScoredPlayer, 0, len(r))
	for _, sp := range ranked {
		if _, ok := want[sp.ID]; ok {
			members = append(members, sp)
			want[sp.ID] = true
		}
	}
	for _, id := range r {
		if !want[id] {
			missing = append(missing, id)
		}
	}
	return members, missing
}

// Aggregate averages z-scores and total value over an already-scored roster.
// It reports false for an empty roster instead of dividing by zero.
func Aggregate(roster []model.ScoredPlayer) (model.TeamSummary, bool) {
	if len(roster) == 0 {
		return model.TeamSummary{}, false
	}

	k := float64(len(roster))
	sums := make(map[category.Key]float64, category.Count())
	total := 0.0
	for _, sp := range roster {
		for _, c := range category.All() {
			sums[c] += sp.ZScores[c]
		}
		total += sp.TotalValue
	}

	means := make(map[category.Key]float64, len(sums))
	for c, s := range sums {
		means[c] = s / k
	}
	return model.TeamSummary{
		Size:       len(roster),
		ZScores:    means,
		TotalValue: total / k,
	}, true
}
