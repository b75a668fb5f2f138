package report

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/fantasylab/fantasy-lab/internal/category"
	"github.com/fantasylab/fantasy-lab/internal/model"
	"github.com/fantasylab/fantasy-lab/internal/store"
	"github.com/fantasylab/fantasy-lab/internal/valuation"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// testDataset has mean 0 / std 1 everywhere so a player's points value is its
// total when every other stat is 0.
func testDataset() *model.Dataset {
	avgs := make(model.LeagueAverages, category.Count())
	for _, k := range category.All() {
		avgs[k] = model.LeagueAverage{Mean: 0, Std: 1}
	}
	row := func(id string, pts, to float64) model.Player {
		stats := make(map[category.Key]float64, category.Count())
		for _, k := range category.All() {
			stats[k] = 0
		}
		stats[category.PTS] = pts
		stats[category.TO] = to
		return model.Player{ID: model.PlayerID(id), Name: "P" + id, Stats: stats}
	}
	return &model.Dataset{
		Meta:           model.Meta{Season: "2024-25", LastUpdated: "2025-04-14"},
		LeagueAverages: avgs,
		Players: []model.Player{
			row("a", 1, 0),
			row("b", 3, 0),
			row("c", 2, 4),
			row("d", -1, 0),
		},
	}
}

func rankedIDs(players []RankedPlayer) []model.PlayerID {
	out := make([]model.PlayerID, len(players))
	for i, p := range players {
		out[i] = p.Player.ID
	}
	return out
}

func equalIDs(a, b []model.PlayerID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// BuildRankings
// ---------------------------------------------------------------------------

func TestBuildRankings_OrderAndLimit(t *testing.T) {
	ds := testDataset()
	rep, err := BuildRankings(ds, category.PuntSet{}, 2, "run-1")
	if err != nil {
		t.Fatalf("BuildRankings: %v", err)
	}
	// c: 2 - 4 = -2, so order is b(3), a(1), d(-1), c(-2)
	if got, want := rankedIDs(rep.Players), []model.PlayerID{"b", "a"}; !equalIDs(got, want) {
		t.Errorf("players = %v, want %v", got, want)
	}
	if rep.TotalPlayers != 4 {
		t.Errorf("TotalPlayers = %d, want 4", rep.TotalPlayers)
	}
	if rep.Players[0].Rank != 1 || rep.Players[1].Rank != 2 {
		t.Errorf("ranks = %d,%d, want 1,2", rep.Players[0].Rank, rep.Players[1].Rank)
	}
	if rep.Season != "2024-25" || rep.RunID != "run-1" {
		t.Errorf("Season/RunID = %q/%q", rep.Season, rep.RunID)
	}
	if len(rep.Active) != category.Count() || len(rep.Punted) != 0 {
		t.Errorf("Active/Punted lengths = %d/%d", len(rep.Active), len(rep.Punted))
	}
}

func TestBuildRankings_PuntTurnovers(t *testing.T) {
	rep, err := BuildRankings(testDataset(), category.NewPuntSet(category.TO), 0, "run")
	if err != nil {
		t.Fatalf("BuildRankings: %v", err)
	}
	want := []model.PlayerID{"b", "c", "a", "d"}
	if got := rankedIDs(rep.Players); !equalIDs(got, want) {
		t.Errorf("players = %v, want %v", got, want)
	}
	if len(rep.Punted) != 1 || rep.Punted[0] != category.TO {
		t.Errorf("Punted = %v, want [to]", rep.Punted)
	}
}

func TestBuildRankings_ScoringError(t *testing.T) {
	ds := testDataset()
	delete(ds.LeagueAverages, category.STL)
	if _, err := BuildRankings(ds, category.PuntSet{}, 0, "run"); !errors.Is(err, valuation.ErrMissingLeagueAverage) {
		t.Fatalf("err = %v, want ErrMissingLeagueAverage", err)
	}
}

// ---------------------------------------------------------------------------
// BuildTeam
// ---------------------------------------------------------------------------

func TestBuildTeam_MembersInRankedOrder(t *testing.T) {
	roster, _ := valuation.NewRoster("d", "b", "zz")
	rep, err := BuildTeam(testDataset(), category.PuntSet{}, roster, "", "run")
	if err != nil {
		t.Fatalf("BuildTeam: %v", err)
	}
	if got, want := rankedIDs(rep.Members), []model.PlayerID{"b", "d"}; !equalIDs(got, want) {
		t.Errorf("members = %v, want %v", got, want)
	}
	if rep.Members[0].Rank != 1 || rep.Members[1].Rank != 3 {
		t.Errorf("member ranks = %d,%d, want 1,3", rep.Members[0].Rank, rep.Members[1].Rank)
	}
	if !equalIDs(rep.Missing, []model.PlayerID{"zz"}) {
		t.Errorf("Missing = %v, want [zz]", rep.Missing)
	}
	if rep.Empty || rep.Summary == nil {
		t.Fatal("expected a summary")
	}
	if rep.Summary.Size != 2 || rep.Summary.TotalValue != 1 {
		t.Errorf("Summary = %+v, want size 2, total 1", rep.Summary)
	}
}

func TestBuildTeam_Empty(t *testing.T) {
	rep, err := BuildTeam(testDataset(), category.PuntSet{}, nil, "", "run")
	if err != nil {
		t.Fatalf("BuildTeam: %v", err)
	}
	if !rep.Empty || rep.Summary != nil {
		t.Errorf("Empty/Summary = %v/%v, want true/nil", rep.Empty, rep.Summary)
	}
	b, err := json.Marshal(rep)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["empty"] != true {
		t.Errorf("json empty = %v, want true", out["empty"])
	}
	if _, ok := out["summary"]; ok {
		t.Error("json should omit summary for an empty roster")
	}
	if roster, ok := out["roster"].([]any); !ok || len(roster) != 0 {
		t.Errorf("json roster = %v, want []", out["roster"])
	}
}

func TestBuildTeam_Preview(t *testing.T) {
	roster, _ := valuation.NewRoster("a")
	rep, err := BuildTeam(testDataset(), category.PuntSet{}, roster, "b", "run")
	if err != nil {
		t.Fatalf("BuildTeam: %v", err)
	}
	if rep.Preview == nil {
		t.Fatal("expected preview")
	}
	if rep.Preview.DeltaTV != 1 {
		t.Errorf("DeltaTV = %v, want 1 (mean 1 -> mean 2)", rep.Preview.DeltaTV)
	}

	if _, err := BuildTeam(testDataset(), category.PuntSet{}, roster, "a", "run"); !errors.Is(err, valuation.ErrDuplicateRosterPlayer) {
		t.Errorf("err = %v, want ErrDuplicateRosterPlayer", err)
	}
	if _, err := BuildTeam(testDataset(), category.PuntSet{}, roster, "nobody", "run"); !errors.Is(err, valuation.ErrPlayerNotFound) {
		t.Errorf("err = %v, want ErrPlayerNotFound", err)
	}
}

// ---------------------------------------------------------------------------
// BuildPlayer / BuildLeagueAverages
// ---------------------------------------------------------------------------

func TestBuildPlayer(t *testing.T) {
	rep, err := BuildPlayer(testDataset(), category.PuntSet{}, "a")
	if err != nil {
		t.Fatalf("BuildPlayer: %v", err)
	}
	if rep.Rank != 2 || rep.Of != 4 {
		t.Errorf("Rank/Of = %d/%d, want 2/4", rep.Rank, rep.Of)
	}
	if want := 200.0 / 3; math.Abs(rep.Percentile-want) > 1e-9 {
		t.Errorf("Percentile = %v, want %v", rep.Percentile, want)
	}

	if _, err := BuildPlayer(testDataset(), category.PuntSet{}, "nobody"); !errors.Is(err, valuation.ErrPlayerNotFound) {
		t.Errorf("err = %v, want ErrPlayerNotFound", err)
	}
}

func TestBuildLeagueAverages(t *testing.T) {
	rep := BuildLeagueAverages(testDataset())
	if rep.Players != 4 {
		t.Errorf("Players = %d, want 4", rep.Players)
	}
	if len(rep.Categories) != category.Count() {
		t.Errorf("Categories = %d, want %d", len(rep.Categories), category.Count())
	}
	if rep.Meta.Season != "2024-25" {
		t.Errorf("Season = %q", rep.Meta.Season)
	}
}

// ---------------------------------------------------------------------------
// Paths / Write
// ---------------------------------------------------------------------------

func TestRankingsPath(t *testing.T) {
	if got := RankingsPath(category.PuntSet{}); got != "rankings/punt_none.json" {
		t.Errorf("RankingsPath(empty) = %q", got)
	}
	if got := RankingsPath(category.NewPuntSet(category.TO, category.FGPct)); got != "rankings/punt_fg_pct_to.json" {
		t.Errorf("RankingsPath(to,fg_pct) = %q", got)
	}
}

func TestWrite(t *testing.T) {
	st := store.NewJSONStore(t.TempDir())
	rep, err := BuildRankings(testDataset(), category.PuntSet{}, 0, NewRunID())
	if err != nil {
		t.Fatalf("BuildRankings: %v", err)
	}
	rel := RankingsPath(category.PuntSet{})
	if err := Write(st, rel, rep); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var back map[string]any
	if err := st.ReadJSON(rel, &back); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if back["run_id"] != rep.RunID {
		t.Errorf("run_id = %v, want %v", back["run_id"], rep.RunID)
	}
	players, _ := back["players"].([]any)
	if len(players) != 4 {
		t.Errorf("players = %d, want 4", len(players))
	}
}
