package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/fantasylab/fantasy-lab/internal/cache"
	"github.com/fantasylab/fantasy-lab/internal/config"
	"github.com/fantasylab/fantasy-lab/internal/dataset"
	"github.com/fantasylab/fantasy-lab/internal/fetch"
	"github.com/fantasylab/fantasy-lab/internal/logging"
	"github.com/fantasylab/fantasy-lab/internal/store"
)

func main() {
	var (
		configPath   = flag.String("config", "fantasy-lab.toml", "path to TOML config (missing file = defaults)")
		addr         = flag.String("addr", "", "HTTP listen address (overrides config)")
		mcpPath      = flag.String("path", "", "HTTP path for MCP endpoint (overrides config)")
		rawRoot      = flag.String("raw-root", "", "directory holding the dataset (overrides config)")
		derivedRoot  = flag.String("derived-root", "", "directory for written reports (overrides config)")
		writeDerived = flag.Bool("write-derived", false, "write computed reports to derived root")
		maxLimit     = flag.Int("max-limit", 500, "largest allowed rankings limit (0 = unbounded)")
		requireAuth  = flag.Bool("require-auth", true, "require API key auth via FANTASY_LAB_API_KEY")
		authHeader   = flag.String("auth-header", "X-API-Key", "HTTP header to read API key from")
		logLevel     = flag.String("log-level", "", "log level (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	cfg.ApplyEnv()
	overrideString(&cfg.Server.Addr, *addr)
	overrideString(&cfg.Server.MCPPath, *mcpPath)
	overrideString(&cfg.Data.RawRoot, *rawRoot)
	overrideString(&cfg.Data.DerivedRoot, *derivedRoot)
	overrideString(&cfg.Log.Level, *logLevel)
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("invalid config")
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		logrus.WithError(err).Fatal("configure logging")
	}
	log := logrus.NewEntry(logger).WithField("component", "fantasy-server")

	apiKey := strings.TrimSpace(os.Getenv("FANTASY_LAB_API_KEY"))
	if *requireAuth && apiKey == "" {
		log.Fatal("FANTASY_LAB_API_KEY is required (set env var or run with --require-auth=false)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rawStore := store.NewJSONStore(cfg.Data.RawRoot)
	if !rawStore.Exists(cfg.Data.DatasetFile) && cfg.Fetch.URL != "" {
		if err := refresh(ctx, cfg, rawStore, log); err != nil {
			log.WithError(err).Fatal("initial dataset fetch")
		}
	}
	ds, err := dataset.Load(rawStore, cfg.Data.DatasetFile)
	if err != nil {
		log.WithError(err).Fatal("load dataset")
	}
	holder := dataset.NewHolder(ds)
	log.WithFields(logrus.Fields{"season": ds.Meta.Season, "players": len(ds.Players)}).Info("dataset loaded")

	memo, closeCache, err := openCache(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("open cache")
	}
	defer closeCache()

	ttl, _ := cfg.GetCacheTTL()
	timeout, _ := cfg.GetServerTimeout()
	a := newApp(ServerConfig{
		CacheTTL:     ttl,
		WriteDerived: *writeDerived,
		MaxLimit:     *maxLimit,
	}, holder, memo, store.NewJSONStore(cfg.Data.DerivedRoot), log)

	if cfg.Data.Watch {
		w := dataset.NewWatcher(rawStore, cfg.Data.DatasetFile, holder, log)
		go func() {
			if err := w.Run(ctx); err != nil {
				log.WithError(err).Error("dataset watcher stopped")
			}
		}()
	}

	server, registry := newMCPServer(a)
	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: newRouter(routerConfig{
			MCPPath:        cfg.Server.MCPPath,
			APIKey:         apiKey,
			AuthHeader:     *authHeader,
			AllowedOrigins: cfg.AllowedOrigins(),
			Timeout:        timeout,
		}, a, handler, registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("shutdown")
		}
	}()

	log.Infof("MCP HTTP server listening on %s%s", cfg.Server.Addr, cfg.Server.MCPPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("serve")
	}
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func refresh(ctx context.Context, cfg *config.Config, st *store.JSONStore, log *logrus.Entry) error {
	interval, _ := cfg.GetFetchInterval()
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	client := fetch.NewClient(st, limit)
	ds, err := client.RefreshDataset(ctx, cfg.Fetch.URL, cfg.Data.DatasetFile, true)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"url": cfg.Fetch.URL, "season": ds.Meta.Season}).Info("dataset fetched")
	return nil
}

func openCache(ctx context.Context, cfg *config.Config) (cache.Cache, func(), error) {
	if !cfg.Cache.Enabled {
		return cache.Nop{}, func() {}, nil
	}
	switch cfg.Cache.Backend {
	case "redis":
		rc, err := cache.NewRedis(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return rc, func() { _ = rc.Close() }, nil
	default:
		return cache.NewMemory(cfg.Cache.MaxSize), func() {}, nil
	}
}
