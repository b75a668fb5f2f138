package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fantasylab/fantasy-lab/internal/cache"
	"github.com/fantasylab/fantasy-lab/internal/category"
	"github.com/fantasylab/fantasy-lab/internal/dataset"
	"github.com/fantasylab/fantasy-lab/internal/model"
	"github.com/fantasylab/fantasy-lab/internal/report"
	"github.com/fantasylab/fantasy-lab/internal/store"
	"github.com/fantasylab/fantasy-lab/internal/valuation"
)

var (
	errBadRequest = errors.New("bad request")
	errNoDataset  = errors.New("dataset not loaded")
)

type ServerConfig struct {
	CacheTTL     time.Duration
	WriteDerived bool
	MaxLimit     int
}

// app holds everything a tool or REST handler needs. Every method reads the
// dataset once so a concurrent reload never mixes two versions in one reply.
type app struct {
	cfg     ServerConfig
	holder  *dataset.Holder
	cache   cache.Cache
	derived *store.JSONStore
	log     *logrus.Entry
}

func newApp(cfg ServerConfig, h *dataset.Holder, c cache.Cache, derived *store.JSONStore, log *logrus.Entry) *app {
	if c == nil {
		c = cache.Nop{}
	}
	return &app{cfg: cfg, holder: h, cache: c, derived: derived, log: log}
}

func (a *app) current() (*model.Dataset, uint64, error) {
	ds, v := a.holder.Current()
	if ds == nil {
		return nil, 0, errNoDataset
	}
	return ds, v, nil
}

func (a *app) checkLimit(limit int) error {
	if limit < 0 {
		return fmt.Errorf("%w: limit must be >= 0", errBadRequest)
	}
	if a.cfg.MaxLimit > 0 && limit > a.cfg.MaxLimit {
		return fmt.Errorf("%w: limit must be <= %d", errBadRequest, a.cfg.MaxLimit)
	}
	return nil
}

func (a *app) categories() ([]byte, error) {
	return json.MarshalIndent(map[string]any{"categories": category.Describe()}, "", "  ")
}

// rankings returns the serialized rankings report, memoized on
// (dataset version, punt set, limit).
func (a *app) rankings(ctx context.Context, punts category.PuntSet, limit int) ([]byte, error) {
	if err := a.checkLimit(limit); err != nil {
		return nil, err
	}
	ds, version, err := a.current()
	if err != nil {
		return nil, err
	}

	key := cache.Key(version, "rankings", punts.String(), strconv.Itoa(limit))
	if b, ok, err := a.cache.Get(ctx, key); err != nil {
		a.log.WithError(err).Warn("cache get failed")
	} else if ok {
		return b, nil
	}

	runID := report.NewRunID()
	log := a.log.WithFields(logrus.Fields{"run_id": runID, "punt": punts.String(), "version": version})
	start := time.Now()

	rep, err := report.BuildRankings(ds, punts, limit, runID)
	if err != nil {
		log.WithError(err).Error("ranking pass failed")
		return nil, err
	}
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"players": rep.TotalPlayers, "elapsed": time.Since(start)}).Debug("ranking pass")

	if err := a.cache.Set(ctx, key, b, a.cfg.CacheTTL); err != nil {
		log.WithError(err).Warn("cache set failed")
	}
	if a.cfg.WriteDerived && a.derived != nil && limit == 0 {
		if err := report.Write(a.derived, report.RankingsPath(punts), rep); err != nil {
			log.WithError(err).Warn("write derived rankings failed")
		}
	}
	return b, nil
}

type teamRequest struct {
	Punt      []string         `json:"punt"`
	Roster    []model.PlayerID `json:"roster"`
	PreviewID model.PlayerID   `json:"preview_id,omitempty"`
}

func (a *app) team(req teamRequest) ([]byte, error) {
	punts, err := category.ParsePuntSet(req.Punt)
	if err != nil {
		return nil, err
	}
	roster, err := valuation.NewRoster(req.Roster...)
	if err != nil {
		return nil, err
	}
	ds, _, err := a.current()
	if err != nil {
		return nil, err
	}

	runID := report.NewRunID()
	rep, err := report.BuildTeam(ds, punts, roster, req.PreviewID, runID)
	if err != nil {
		return nil, err
	}
	if len(rep.Missing) > 0 {
		a.log.WithFields(logrus.Fields{"run_id": runID, "missing": rep.Missing}).Warn("roster ids not in dataset")
	}
	if a.cfg.WriteDerived && a.derived != nil {
		if err := report.Write(a.derived, report.TeamPath(runID), rep); err != nil {
			a.log.WithError(err).Warn("write derived team report failed")
		}
	}
	return json.MarshalIndent(rep, "", "  ")
}

func (a *app) player(id model.PlayerID, punts category.PuntSet) ([]byte, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", errBadRequest)
	}
	ds, _, err := a.current()
	if err != nil {
		return nil, err
	}
	if _, ok := dataset.FindPlayer(ds, id); !ok {
		return nil, fmt.Errorf("%w: %s", valuation.ErrPlayerNotFound, id)
	}
	rep, err := report.BuildPlayer(ds, punts, id)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(rep, "", "  ")
}

func (a *app) leagueAverages() ([]byte, error) {
	ds, _, err := a.current()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(report.BuildLeagueAverages(ds), "", "  ")
}

// isClientError reports whether err was caused by the request rather than the
// dataset or the server.
func isClientError(err error) bool {
	return errors.Is(err, errBadRequest) ||
		errors.Is(err, category.ErrUnknownCategory) ||
		errors.Is(err, valuation.ErrDuplicateRosterPlayer)
}

func isNotFound(err error) bool {
	return errors.Is(err, valuation.ErrPlayerNotFound)
}
