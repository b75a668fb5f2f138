package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fantasylab/fantasy-lab/internal/category"
	"github.com/fantasylab/fantasy-lab/internal/model"
	"github.com/fantasylab/fantasy-lab/internal/store"
	"github.com/fantasylab/fantasy-lab/internal/valuation"
)

type RankedPlayer struct {
	Rank   int                `json:"rank"`
	Player model.ScoredPlayer `json:"player"`
}

type RankingsReport struct {
	RunID          string         `json:"run_id"`
	Season         string         `json:"season"`
	LastUpdated    string         `json:"last_updated"`
	GeneratedAtUTC string         `json:"generated_at_utc"`
	Punted         []category.Key `json:"punted"`
	Active         []category.Key `json:"active"`
	Limit          int            `json:"limit"`
	TotalPlayers   int            `json:"total_players"`
	Players        []RankedPlayer `json:"players"`
}

type TeamReport struct {
	RunID          string                   `json:"run_id"`
	Season         string                   `json:"season"`
	LastUpdated    string                   `json:"last_updated"`
	GeneratedAtUTC string                   `json:"generated_at_utc"`
	Punted         []category.Key           `json:"punted"`
	Roster         []model.PlayerID         `json:"roster"`
	Members        []RankedPlayer           `json:"members"`
	Empty          bool                     `json:"empty"`
	Summary        *model.TeamSummary       `json:"summary,omitempty"`
	Missing        []model.PlayerID         `json:"missing,omitempty"`
	Preview        *valuation.PreviewResult `json:"preview,omitempty"`
}

type PlayerReport struct {
	Season string             `json:"season"`
	Punted []category.Key     `json:"punted"`
	Rank   int                `json:"rank"`
	Of     int                `json:"of"`
	Player model.ScoredPlayer `json:"player"`
	// Percentile is 100 for the top player and 0 for the last.
	Percentile float64 `json:"percentile"`
}

type LeagueAveragesReport struct {
	Meta       model.Meta           `json:"meta"`
	Categories []category.Info      `json:"categories"`
	Averages   model.LeagueAverages `json:"league_averages"`
	Players    int                  `json:"players"`
}

func NewRunID() string {
	return uuid.NewString()
}

func generatedAt() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// BuildRankings ranks the whole dataset under punts. limit <= 0 keeps every player.
func BuildRankings(ds *model.Dataset, punts category.PuntSet, limit int, runID string) (*RankingsReport, error) {
	ranked, err := valuation.Rank(ds.Players, ds.LeagueAverages, punts)
	if err != nil {
		return nil, err
	}
	return RankingsFrom(ds, ranked, punts, limit, runID), nil
}

// RankingsFrom builds the report from an already ranked list.
func RankingsFrom(ds *model.Dataset, ranked []model.ScoredPlayer, punts category.PuntSet, limit int, runID string) *RankingsReport {
	n := len(ranked)
	if limit > 0 && limit < n {
		n = limit
	}
	players := make([]RankedPlayer, 0, n)
	for i := 0; i < n; i++ {
		players = append(players, RankedPlayer{Rank: i + 1, Player: ranked[i]})
	}
	return &RankingsReport{
		RunID:          runID,
		Season:         ds.Meta.Season,
		LastUpdated:    ds.Meta.LastUpdated,
		GeneratedAtUTC: generatedAt(),
		Punted:         punts.Keys(),
		Active:         punts.Active(),
		Limit:          limit,
		TotalPlayers:   len(ranked),
		Players:        players,
	}
}

// BuildTeam summarizes roster under punts. Members keep ranked order; ids not
// in the dataset are reported in Missing. previewID is optional.
func BuildTeam(ds *model.Dataset, punts category.PuntSet, roster valuation.Roster, previewID model.PlayerID, runID string) (*TeamReport, error) {
	ranked, err := valuation.Rank(ds.Players, ds.LeagueAverages, punts)
	if err != nil {
		return nil, err
	}

	members, missing := valuation.FilterRoster(ranked, roster)
	rep := &TeamReport{
		RunID:          runID,
		Season:         ds.Meta.Season,
		LastUpdated:    ds.Meta.LastUpdated,
		GeneratedAtUTC: generatedAt(),
		Punted:         punts.Keys(),
		Roster:         []model.PlayerID(roster),
		Members:        make([]RankedPlayer, 0, len(members)),
		Missing:        missing,
	}
	if rep.Roster == nil {
		rep.Roster = []model.PlayerID{}
	}
	for _, m := range members {
		rep.Members = append(rep.Members, RankedPlayer{Rank: valuation.RankOf(ranked, m.ID), Player: m})
	}

	if summary, ok := valuation.Aggregate(members); ok {
		rep.Summary = &summary
	} else {
		rep.Empty = true
	}

	if previewID != "" {
		pr, err := valuation.Preview(ranked, roster, previewID)
		if err != nil {
			return nil, fmt.Errorf("preview %s: %w", previewID, err)
		}
		rep.Preview = &pr
	}
	return rep, nil
}

// BuildPlayer scores a single player in the context of the full ranking.
func BuildPlayer(ds *model.Dataset, punts category.PuntSet, id model.PlayerID) (*PlayerReport, error) {
	ranked, err := valuation.Rank(ds.Players, ds.LeagueAverages, punts)
	if err != nil {
		return nil, err
	}
	rank := valuation.RankOf(ranked, id)
	if rank == 0 {
		return nil, fmt.Errorf("%w: %s", valuation.ErrPlayerNotFound, id)
	}
	pct := 100.0
	if len(ranked) > 1 {
		pct = float64(len(ranked)-rank) / float64(len(ranked)-1) * 100
	}
	return &PlayerReport{
		Season:     ds.Meta.Season,
		Punted:     punts.Keys(),
		Rank:       rank,
		Of:         len(ranked),
		Player:     ranked[rank-1],
		Percentile: pct,
	}, nil
}

func BuildLeagueAverages(ds *model.Dataset) *LeagueAveragesReport {
	return &LeagueAveragesReport{
		Meta:       ds.Meta,
		Categories: category.Describe(),
		Averages:   ds.LeagueAverages,
		Players:    len(ds.Players),
	}
}

// RankingsPath is the derived-store location for a rankings report.
func RankingsPath(punts category.PuntSet) string {
	name := "none"
	if punts.Len() > 0 {
		name = strings.ReplaceAll(punts.String(), ",", "_")
	}
	return fmt.Sprintf("rankings/punt_%s.json", name)
}

func TeamPath(runID string) string {
	return fmt.Sprintf("team/%s.json", runID)
}

// Write stores v as indented JSON under rel in the derived store.
func Write(st *store.JSONStore, rel string, v any) error {
	if err := st.WriteJSON(rel, v); err != nil {
		return fmt.Errorf("write report %s: %w", rel, err)
	}
	return nil
}
