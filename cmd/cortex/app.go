package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cortexhq/cortex/internal/api"
	"github.com/cortexhq/cortex/internal/config"
	"github.com/cortexhq/cortex/internal/session"
	"github.com/cortexhq/cortex/internal/storage/local"
	"github.com/cortexhq/cortex/internal/storage/sqlite"
)

// app wires the pieces every command needs: config, the credential
// store, and an API client that attaches the stored token.
type app struct {
	cfg      *config.Config
	local    *config.LocalConfig
	dir      string
	store    *local.Store
	sessions *session.Store
	client   *api.Resilient
}

func newApp() (*app, error) {
	cfg := config.Load()
	setupLogging(cfg)

	dir, err := config.EnsureCortexDir()
	if err != nil {
		return nil, err
	}

	localCfg, err := config.LoadLocalConfig()
	if err != nil {
		return nil, err
	}

	store, err := local.NewStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	sessions, err := session.NewStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}

	baseURL := cfg.APIBaseURL
	if localCfg.API.BaseURL != "" {
		baseURL = localCfg.API.BaseURL
	}
	timeout := cfg.TimeoutSeconds
	if localCfg.API.TimeoutSeconds > 0 {
		timeout = localCfg.API.TimeoutSeconds
	}

	client := api.NewClient(baseURL, sessions,
		api.WithTimeout(time.Duration(timeout)*time.Second),
		api.WithUserAgent("cortex-cli/"+Version))

	return &app{
		cfg:      cfg,
		local:    localCfg,
		dir:      dir,
		store:    store,
		sessions: sessions,
		client:   api.NewResilient(client, api.DefaultResilientConfig()),
	}, nil
}

func setupLogging(cfg *config.Config) {
	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// requireAuth fails fast when no credential is stored
func (a *app) requireAuth() error {
	if a.sessions.Token() == "" {
		return fmt.Errorf("not signed in (run 'cortex login' first)")
	}
	return nil
}

// openCache opens the offline cache database, migrating as needed
func (a *app) openCache() (*sqlite.DB, error) {
	db, err := sqlite.Open(filepath.Join(a.dir, "cache", "cortex.db"))
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache: %w", err)
	}
	if version, err := db.Version(); err == nil {
		slog.Debug("cache ready", "schema_version", version)
	}
	return db, nil
}
