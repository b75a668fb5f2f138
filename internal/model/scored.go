package model

import (
	"encoding/json"

	"github.com/fantasylab/fantasy-lab/internal/category"
)

// ScoredPlayer is a Player plus its sign-adjusted z-scores for one punt set.
// Positive z always means better than league average.
type ScoredPlayer struct {
	Player
	ZScores    map[category.Key]float64
	TotalValue float64
}

// MarshalJSON keeps the original flat player fields and appends the derived ones.
// Defined explicitly so the embedded Player.MarshalJSON is not promoted.
func (s ScoredPlayer) MarshalJSON() ([]byte, error) {
	out := s.Player.flatten()
	out["z_scores"] = s.ZScores
	out["total_value"] = s.TotalValue
	return json.Marshal(out)
}

// TeamSummary is the per-category mean across a roster.
type TeamSummary struct {
	Size       int                      `json:"size"`
	ZScores    map[category.Key]float64 `json:"z_scores"`
	TotalValue float64                  `json:"total_value"`
}
