package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/fantasylab/fantasy-lab/internal/category"
	"github.com/fantasylab/fantasy-lab/internal/config"
	"github.com/fantasylab/fantasy-lab/internal/dataset"
	"github.com/fantasylab/fantasy-lab/internal/fetch"
	"github.com/fantasylab/fantasy-lab/internal/logging"
	"github.com/fantasylab/fantasy-lab/internal/model"
	"github.com/fantasylab/fantasy-lab/internal/report"
	"github.com/fantasylab/fantasy-lab/internal/store"
	"github.com/fantasylab/fantasy-lab/internal/valuation"
)

var log *logrus.Entry

func main() {
	var (
		configPath  = flag.String("config", "fantasy-lab.toml", "path to TOML config (missing file = defaults)")
		rawRoot     = flag.String("raw-root", "", "directory holding the dataset (overrides config)")
		derivedRoot = flag.String("derived-root", "", "root directory for derived JSON (overrides config)")
		url         = flag.String("url", "", "remote dataset URL (overrides config)")
		refreshNow  = flag.Bool("refresh", false, "fetch the dataset before computing")
		punt        = flag.String("punt", "", "comma-separated categories to punt, e.g. to,fg_pct")
		limit       = flag.Int("limit", 25, "players to print (0 = all)")
		roster      = flag.String("roster", "", "comma-separated player ids; prints a team report instead of rankings")
		previewID   = flag.String("preview", "", "player id to preview adding to -roster")
		write       = flag.Bool("write", false, "write the report to derived root")
		sweep       = flag.Bool("sweep", false, "write rankings for every single-category punt")
		quiet       = flag.Bool("quiet", false, "suppress logs")
		writeConfig = flag.String("write-config", "", "write the effective config to this path and exit")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath, overrides{RawRoot: *rawRoot, DerivedRoot: *derivedRoot, URL: *url})
	must(err)
	if *writeConfig != "" {
		must(cfg.Save(*writeConfig))
		fmt.Println("wrote", *writeConfig)
		return
	}

	if *quiet {
		log = logging.Discard()
	} else {
		logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
		must(err)
		log = logrus.NewEntry(logger).WithField("component", "dev")
	}

	st := store.NewJSONStore(cfg.Data.RawRoot)
	derived := store.NewJSONStore(cfg.Data.DerivedRoot)

	if *refreshNow || !st.Exists(cfg.Data.DatasetFile) {
		if cfg.Fetch.URL == "" {
			must(fmt.Errorf("dataset %s missing and no fetch url configured", st.Path(cfg.Data.DatasetFile)))
		}
		interval, err := cfg.GetFetchInterval()
		must(err)
		client := fetch.NewClient(st, rate.Every(interval))
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		_, err = client.RefreshDataset(ctx, cfg.Fetch.URL, cfg.Data.DatasetFile, true)
		cancel()
		must(err)
		log.WithField("url", cfg.Fetch.URL).Info("dataset refreshed")
	}

	ds, err := dataset.Load(st, cfg.Data.DatasetFile)
	must(err)
	log.WithFields(logrus.Fields{"season": ds.Meta.Season, "players": len(ds.Players)}).Info("dataset loaded")

	punts, err := category.ParsePuntList(*punt)
	must(err)

	if *sweep {
		must(writeSweep(derived, ds))
		return
	}

	runID := report.NewRunID()
	var (
		out any
		rel string
	)
	if *roster != "" {
		r, err := valuation.NewRoster(splitIDs(*roster)...)
		must(err)
		rep, err := report.BuildTeam(ds, punts, r, model.PlayerID(*previewID), runID)
		must(err)
		if len(rep.Missing) > 0 {
			log.WithField("missing", rep.Missing).Warn("roster ids not in dataset")
		}
		out, rel = rep, report.TeamPath(runID)
	} else {
		rep, err := report.BuildRankings(ds, punts, *limit, runID)
		must(err)
		out, rel = rep, report.RankingsPath(punts)
	}

	if *write {
		must(report.Write(derived, rel, out))
		log.WithField("path", derived.Path(rel)).Info("wrote report")
		return
	}
	b, err := json.MarshalIndent(out, "", "  ")
	must(err)
	fmt.Println(string(b))
}

type overrides struct {
	RawRoot     string
	DerivedRoot string
	URL         string
}

// loadConfig reads path, applies env and flag overrides, then validates.
func loadConfig(path string, o overrides) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if o.RawRoot != "" {
		cfg.Data.RawRoot = o.RawRoot
	}
	if o.DerivedRoot != "" {
		cfg.Data.DerivedRoot = o.DerivedRoot
	}
	if o.URL != "" {
		cfg.Fetch.URL = o.URL
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// writeSweep writes the unpunted rankings plus one file per single-category punt.
func writeSweep(derived *store.JSONStore, ds *model.Dataset) error {
	sets := []category.PuntSet{{}}
	for _, k := range category.All() {
		sets = append(sets, category.NewPuntSet(k))
	}
	for _, punts := range sets {
		rep, err := report.BuildRankings(ds, punts, 0, report.NewRunID())
		if err != nil {
			return err
		}
		rel := report.RankingsPath(punts)
		if err := report.Write(derived, rel, rep); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"punt": punts.String(), "path": derived.Path(rel)}).Info("wrote rankings")
	}
	return nil
}

func splitIDs(s string) []model.PlayerID {
	parts := strings.Split(s, ",")
	out := make([]model.PlayerID, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, model.PlayerID(p))
		}
	}
	return out
}

func must(err error) {
	if err == nil {
		return
	}
	if log != nil {
		log.WithError(err).Fatal("dev failed")
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
