package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fantasylab/fantasy-lab/internal/category"
)

// PlayerID is opaque. The dataset may carry it as a JSON string or integer.
type PlayerID string

func (id *PlayerID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = PlayerID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("player id must be a string or number: %w", err)
	}
	*id = PlayerID(n.String())
	return nil
}

type LeagueAverage struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

type LeagueAverages map[category.Key]LeagueAverage

// Player is one raw dataset row. Stats holds one value per category key that
// was present in the source; a missing key is a malformed row.
type Player struct {
	ID    PlayerID
	Name  string
	Team  string
	GP    int
	Stats map[category.Key]float64
}

type playerFields struct {
	ID   PlayerID `json:"id"`
	Name string   `json:"name"`
	Team string   `json:"team"`
	GP   int      `json:"gp"`
}

func (p *Player) UnmarshalJSON(b []byte) error {
	var base playerFields
	if err := json.Unmarshal(b, &base); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	stats := make(map[category.Key]float64, category.Count())
	for _, k := range category.All() {
		v, ok := raw[string(k)]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			continue
		}
		var f float64
		if err := json.Unmarshal(v, &f); err != nil {
			return fmt.Errorf("player %s field %s: %w", base.ID, k, err)
		}
		stats[k] = f
	}
	*p = Player{ID: base.ID, Name: base.Name, Team: base.Team, GP: base.GP, Stats: stats}
	return nil
}

func (p Player) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.flatten())
}

func (p Player) flatten() map[string]any {
	out := map[string]any{
		"id":   p.ID,
		"name": p.Name,
		"team": p.Team,
		"gp":   p.GP,
	}
	for k, v := range p.Stats {
		out[string(k)] = v
	}
	return out
}

// Stat returns the raw value for k and whether the row carries it.
func (p Player) Stat(k category.Key) (float64, bool) {
	v, ok := p.Stats[k]
	return v, ok
}

type Meta struct {
	Season      string `json:"season"`
	LastUpdated string `json:"last_updated"`
}

type Dataset struct {
	Meta           Meta           `json:"meta"`
	LeagueAverages LeagueAverages `json:"league_averages"`
	Players        []Player       `json:"players"`
}
