package dataset

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fantasylab/fantasy-lab/internal/category"
	"github.com/fantasylab/fantasy-lab/internal/model"
	"github.com/fantasylab/fantasy-lab/internal/store"
)

// DefaultFile is the dataset path relative to the raw store root.
const DefaultFile = "nba_stats.json"

var ErrMalformed = errors.New("malformed dataset")

// Load reads rel from st, decodes it and validates it.
func Load(st *store.JSONStore, rel string) (*model.Dataset, error) {
	raw, err := st.ReadRaw(rel)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*model.Dataset, error) {
	var ds model.Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := checkAverageFields(raw); err != nil {
		return nil, err
	}
	if err := Validate(&ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// checkAverageFields rejects league averages that are null or lack mean or
// std. Decoding into model.LeagueAverage would turn those into zeros, and a
// zero std is indistinguishable from a real zero-variance category.
func checkAverageFields(raw []byte) error {
	var shape struct {
		LeagueAverages map[string]*struct {
			Mean *float64 `json:"mean"`
			Std  *float64 `json:"std"`
		} `json:"league_averages"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	for _, k := range category.All() {
		avg, ok := shape.LeagueAverages[string(k)]
		if !ok {
			continue // reported by Validate
		}
		if avg == nil || avg.Mean == nil || avg.Std == nil {
			return fmt.Errorf("%w: missing league average for category %s (mean and std required)", ErrMalformed, k)
		}
	}
	return nil
}

// Validate checks everything the scorer relies on so a bad file is rejected
// once at load time instead of on every ranking pass.
func Validate(ds *model.Dataset) error {
	if ds.LeagueAverages == nil {
		return fmt.Errorf("%w: league_averages missing", ErrMalformed)
	}
	for _, k := range category.All() {
		avg, ok := ds.LeagueAverages[k]
		if !ok {
			return fmt.Errorf("%w: missing league average for category %s", ErrMalformed, k)
		}
		if avg.Std < 0 {
			return fmt.Errorf("%w: negative std for category %s", ErrMalformed, k)
		}
	}
	if ds.Players == nil {
		return fmt.Errorf("%w: players missing", ErrMalformed)
	}

	seen := make(map[model.PlayerID]int, len(ds.Players))
	for i, p := range ds.Players {
		if p.ID == "" {
			return fmt.Errorf("%w: player at index %d has no id", ErrMalformed, i)
		}
		if j, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate player id %s (index %d and %d)", ErrMalformed, p.ID, j, i)
		}
		seen[p.ID] = i
		for _, k := range category.All() {
			if _, ok := p.Stat(k); !ok {
				return fmt.Errorf("%w: player %s missing stat field %s", ErrMalformed, p.ID, k)
			}
		}
	}
	return nil
}

// FindPlayer returns the player with id, if present.
func FindPlayer(ds *model.Dataset, id model.PlayerID) (model.Player, bool) {
	for _, p := range ds.Players {
		if p.ID == id {
			return p, true
		}
	}
	return model.Player{}, false
}
