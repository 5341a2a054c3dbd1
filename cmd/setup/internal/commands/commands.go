package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Osmandiyaka/mindbloom-sub000/internal/api"
	"github.com/Osmandiyaka/mindbloom-sub000/internal/logger"
	"github.com/Osmandiyaka/mindbloom-sub000/internal/setup"
	"github.com/Osmandiyaka/mindbloom-sub000/internal/store"
	"github.com/Osmandiyaka/mindbloom-sub000/internal/store/disk"
	"github.com/Osmandiyaka/mindbloom-sub000/internal/store/postgres"
)

type Globals struct {
	Debug      bool
	Version    string
	ConfigPath string
}

// Config is the yaml config file the CLI reads. Token and base URL may also
// come from the environment. When DatabaseURL is set the local snapshot
// mirror lives in PostgreSQL instead of the on-disk cache, so multiple
// operator machines share one mirror.
type Config struct {
	BaseURL     string `yaml:"base_url"`
	Token       string `yaml:"token"`
	TenantID    string `yaml:"tenant_id"`
	CacheDir    string `yaml:"cache_dir"`
	DatabaseURL string `yaml:"database_url"`
}

// loadConfig reads the yaml file then applies environment overrides. A
// missing file is fine when the environment supplies everything.
func loadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if v := os.Getenv("MINDBLOOM_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("MINDBLOOM_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("MINDBLOOM_DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if cfg.BaseURL == "" {
		return Config{}, fmt.Errorf("base_url is required (config file or MINDBLOOM_BASE_URL)")
	}
	if cfg.Token == "" {
		return Config{}, fmt.Errorf("token is required (config file or MINDBLOOM_TOKEN)")
	}
	if cfg.CacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("failed to resolve home dir: %w", err)
		}
		cfg.CacheDir = filepath.Join(home, ".mindbloom", "setup-cache")
	}
	return cfg, nil
}

// buildWizard assembles the full engine from config: api clients, the
// two-tier progress store, and the wizard with its sub-stores. The returned
// wizard is not yet initialized.
func buildWizard(globals *Globals) (*setup.Wizard, string, error) {
	cfg, err := loadConfig(globals.ConfigPath)
	if err != nil {
		return nil, "", err
	}

	log := logger.Setup(globals.Debug)

	tenantID := cfg.TenantID
	if tenantID == "" {
		tenantID, err = api.TenantFromToken(cfg.Token)
		if err != nil {
			return nil, "", fmt.Errorf("failed to resolve tenant: %w", err)
		}
	}

	httpClient := &http.Client{
		Transport: logger.NewHTTPRequests(nil, log),
	}
	base := api.New(api.Config{
		BaseURL:    cfg.BaseURL,
		Token:      cfg.Token,
		HTTPClient: httpClient,
		Logger:     log,
	})

	var local store.SnapshotStore
	if cfg.DatabaseURL != "" {
		local, err = postgres.NewSnapshotStore(context.Background(), postgres.Config{ConnString: cfg.DatabaseURL})
	} else {
		local, err = disk.NewSnapshotStore(cfg.CacheDir)
	}
	if err != nil {
		return nil, "", err
	}
	progress := store.NewProgressStore(local, api.NewTenantsClient(base), log)

	wizard := setup.New(setup.Config{
		TenantID: tenantID,
		Progress: progress,
		Clients: setup.Clients{
			Schools: api.NewSchoolsClient(base),
			Classes: api.NewClassesClient(base),
			Levels:  api.NewLevelsClient(base),
			Users:   api.NewUsersClient(base),
		},
		Logger: log.With().Str("tenant_id", tenantID).Logger(),
	})
	return wizard, tenantID, nil
}
