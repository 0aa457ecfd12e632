package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/rinexis/authreview/pkg/analysis"
	"github.com/rinexis/authreview/pkg/api"
	"github.com/rinexis/authreview/pkg/auth"
	"github.com/rinexis/authreview/pkg/config"
	"github.com/rinexis/authreview/pkg/datasets"
	"github.com/rinexis/authreview/pkg/graphql"
	"github.com/rinexis/authreview/pkg/logging"
	"github.com/rinexis/authreview/pkg/server"
	"github.com/rinexis/authreview/pkg/store"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "Path to YAML configuration file")
	listenAddr := flag.String("listen", "", "Listen address (overrides config)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(*logLevel))
	logger.Info("Authorization review server starting", logging.String("version", version))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Failed to load configuration", logging.Error(err))
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
	}

	if err := run(cfg, *configPath, logger); err != nil {
		logger.Error("Server exited with error", logging.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, configPath string, logger *logging.JSONLogger) error {
	ctx := context.Background()

	jwtManager, err := auth.NewJWTManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.TokenDuration.Std(),
		cfg.Auth.RefreshDuration.Std())
	if err != nil {
		return fmt.Errorf("failed to create token manager: %w", err)
	}

	directory, persist, err := openDirectory(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if err := bootstrapAdmin(ctx, directory, cfg.Auth.BootstrapAdmin, logger); err != nil {
		return err
	}
	persist()

	archive, err := openArchive(ctx, cfg, logger)
	if err != nil {
		return err
	}

	results := analysis.NewResultStore()

	schema, err := graphql.BuildSchema(results)
	if err != nil {
		return fmt.Errorf("failed to build GraphQL schema: %w", err)
	}

	apiServer := api.NewServer(api.Config{
		Directory:  directory,
		JWTManager: jwtManager,
		Results:    results,
		Archive:    archive,
		GraphQL:    graphql.NewHandler(schema),
		Logger:     logger,
		CORS:       api.NewCORSConfig(cfg.Server.AllowedOrigins),
		MaxRows:    cfg.Analysis.MaxRows,
		PageSize:   cfg.Analysis.PageSize,
		Version:    version,
	})

	srv := server.NewGracefulServer(cfg.Server.ListenAddr, apiServer.Handler(), logger)

	// SIGHUP re-validates the config file so operators catch mistakes
	// before a restart. Applied settings only change on restart.
	srv.SetConfigReloadFunc(func() error {
		if _, err := config.Load(configPath); err != nil {
			return err
		}
		logger.Info("Configuration file is valid; restart to apply changes")
		return nil
	})

	// Flush the account file before the signal handler exits the process
	go func() {
		<-srv.ShutdownChannel()
		persist()
	}()

	err = srv.Start()
	persist()
	return err
}

// openDirectory selects the account store: PostgreSQL when a URL is
// configured, otherwise the in-memory store backed by a JSON file under the
// data directory. The returned persist func is a no-op for PostgreSQL.
func openDirectory(ctx context.Context, cfg *config.Config, logger logging.Logger) (auth.Directory, func(), error) {
	if cfg.Storage.PostgresURL != "" {
		logger.Info("Using PostgreSQL account store", logging.Component("store"))
		pg, err := store.NewPGDirectory(ctx, cfg.Storage.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		return pg, func() {}, nil
	}

	logger.Info("Using file-backed account store",
		logging.Component("store"),
		logging.String("data_dir", cfg.Storage.DataDir))
	users := auth.NewUserStore()
	if err := users.LoadUsers(cfg.Storage.DataDir); err != nil {
		return nil, nil, fmt.Errorf("failed to load user accounts: %w", err)
	}

	persist := func() {
		if err := users.SaveUsers(cfg.Storage.DataDir); err != nil {
			logger.Error("Failed to save user accounts", logging.Error(err))
		}
	}
	return users, persist, nil
}

// bootstrapAdmin seeds the configured admin account if it does not exist yet
func bootstrapAdmin(ctx context.Context, directory auth.Directory, admin config.BootstrapUser, logger logging.Logger) error {
	if admin.Username == "" || admin.Password == "" {
		return nil
	}

	_, err := directory.GetUserByUsername(ctx, admin.Username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, auth.ErrUserNotFound) {
		return fmt.Errorf("failed to look up bootstrap admin: %w", err)
	}

	email := admin.Email
	if email == "" {
		email = admin.Username + "@localhost"
	}

	if _, err := directory.CreateUser(ctx, admin.Username, email, admin.Password, auth.RoleAdmin, auth.AdminPermissions()); err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	logger.Info("Bootstrap admin account created", logging.Username(admin.Username))
	return nil
}

// openArchive creates the dataset archive, with S3 replication when a bucket
// is configured
func openArchive(ctx context.Context, cfg *config.Config, logger logging.Logger) (*datasets.Archive, error) {
	var replicator datasets.Replicator
	if cfg.Storage.S3Bucket != "" {
		s3rep, err := datasets.NewS3Replicator(ctx,
			cfg.Storage.S3Bucket,
			cfg.Storage.S3Region,
			cfg.Storage.S3AccessKey,
			cfg.Storage.S3SecretKey)
		if err != nil {
			return nil, fmt.Errorf("failed to configure S3 replication: %w", err)
		}
		logger.Info("Dataset replication to S3 enabled", logging.String("bucket", cfg.Storage.S3Bucket))
		replicator = s3rep
	}

	archive, err := datasets.NewArchive(cfg.Storage.DataDir, replicator, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset archive: %w", err)
	}
	logger.Info("Dataset archive opened",
		logging.Component("datasets"),
		logging.Bool("s3_replication", replicator != nil))
	return archive, nil
}
