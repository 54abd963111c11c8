package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"canaswarm/config"
	decisionImp "canaswarm/pkg/decision/serviceImp"
	"canaswarm/pkg/field/service"
	fieldImp "canaswarm/pkg/field/serviceImp"
	"canaswarm/pkg/logging"
	"canaswarm/pkg/storage/repository"
	"canaswarm/pkg/storage/repositoryImp"
)

// overrides holds command-line values that take precedence over the environment.
type overrides struct {
	port     string
	storage  string
	dataDir  string
	dbPath   string
	logLevel string
}

func (o *overrides) apply(cmd *cobra.Command, cfg *config.AppConfig) {
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port = o.port
	}
	if flags.Changed("storage") {
		cfg.StorageBackend = o.storage
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = o.dataDir
	}
	if flags.Changed("db-path") {
		cfg.DBPath = o.dbPath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
}

type app struct {
	cfg    config.AppConfig
	log    *zap.Logger
	store  repository.Store
	fields service.FieldService
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("closing store", zap.Error(err))
	}
	_ = a.log.Sync()
}

func loadConfig(cmd *cobra.Command, o *overrides) (config.AppConfig, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	o.apply(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func newApp(cfg config.AppConfig, log *zap.Logger) (*app, error) {
	store, err := repositoryImp.Open(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StorageBackend, err)
	}
	decisions := decisionImp.NewDecisionService(time.Now)
	return &app{
		cfg:    cfg,
		log:    log,
		store:  store,
		fields: fieldImp.NewFieldService(store, decisions, cfg.HistoryLimit, log),
	}, nil
}

// withApp wires config, logger and store around a one-shot command.
func withApp(o *overrides, run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, o)
		if err != nil {
			return err
		}
		log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return err
		}
		a, err := newApp(cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd, a, args)
	}
}

func newRootCmd() *cobra.Command {
	o := &overrides{}
	root := &cobra.Command{
		Use:   "canaswarm",
		Short: "CanaSwarm Intelligence: turns precision-agriculture recommendations into prioritized field decisions",
		Long: `CanaSwarm Intelligence ingests per-zone recommendations for a field,
derives a prioritized action plan and keeps the history of every decision.

Without a subcommand it serves the HTTP API. The subcommands operate
directly on the configured store.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         runServer(o),
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.storage, "storage", config.BackendMemory, "storage backend: memory, sqlite or postgres (env STORAGE_BACKEND)")
	pf.StringVar(&o.dataDir, "data-dir", "data", "directory of the memory backend's JSON files (env DATA_DIR)")
	pf.StringVar(&o.dbPath, "db-path", "data/intelligence.db", "sqlite database file (env DB_PATH)")
	pf.StringVar(&o.logLevel, "log-level", "info", "debug, info, warn or error (env LOG_LEVEL)")
	root.Flags().StringVar(&o.port, "port", "6000", "HTTP listen port (env PORT)")

	root.AddCommand(
		newIngestCmd(o),
		newDecisionCmd(o),
		newRecomputeCmd(o),
		newHistoryCmd(o),
		newFieldsCmd(o),
		newStatsCmd(o),
		newExportCmd(o),
	)
	return root
}
