package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yearendparty/banquet/backend/internal/auth"
	"github.com/yearendparty/banquet/backend/internal/config"
	"github.com/yearendparty/banquet/backend/internal/database"
	"github.com/yearendparty/banquet/backend/internal/fortune"
	"github.com/yearendparty/banquet/backend/internal/logging"
	"github.com/yearendparty/banquet/backend/internal/seating"
	"github.com/yearendparty/banquet/backend/internal/server"
	"github.com/yearendparty/banquet/backend/internal/voting"
	"go.uber.org/zap"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "banquet-api",
		Short: "Annual meeting seating and photo-voting backend",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("uploads-dir", defaults.GetString("uploads.dir"), "Directory for uploaded photos")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("admin-passcode", "", "Admin passcode (empty leaves admin routes open)")
	cmd.PersistentFlags().String("admin-signing-secret", "", "Admin token signing secret (overrides env)")
	cmd.PersistentFlags().String("fortune-api-key", "", "Text-generation API key (overrides env)")
	cmd.PersistentFlags().String("fortune-api-url", defaults.GetString("fortune.api_url"), "Text-generation API base URL")
	cmd.PersistentFlags().String("fortune-model", defaults.GetString("fortune.model"), "Text-generation model name")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "uploads.dir", "uploads-dir")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "admin.passcode", "admin-passcode")
	bindFlag(cmd, "admin.signing_secret", "admin-signing-secret")
	bindFlag(cmd, "fortune.api_key", "fortune-api-key")
	bindFlag(cmd, "fortune.api_url", "fortune-api-url")
	bindFlag(cmd, "fortune.model", "fortune-model")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if err := os.MkdirAll(appConfig.UploadsDir, 0o755); err != nil {
		return err
	}

	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	idProvider := seating.NewUUIDProvider()

	seatingService, err := seating.NewService(seating.ServiceConfig{
		Database: db,
		Clock:    time.Now,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	if err := seatingService.EnsureSeedData(ctx); err != nil {
		return err
	}

	votingService, err := voting.NewService(voting.ServiceConfig{
		Database:   db,
		Clock:      time.Now,
		IDProvider: idProvider,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	fortuneClient := fortune.NewClient(fortune.ClientConfig{
		APIKey:  appConfig.FortuneAPIKey,
		BaseURL: appConfig.FortuneAPIURL,
		Model:   appConfig.FortuneModel,
		Logger:  logger,
	})

	tokenManager := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte(appConfig.AdminSigningSecret),
		Passcode:      appConfig.AdminPasscode,
	})

	handler, err := server.NewHTTPHandler(server.Dependencies{
		SeatingService: seatingService,
		VotingService:  votingService,
		FortuneClient:  fortuneClient,
		TokenManager:   tokenManager,
		Broadcaster:    server.NewTallyBroadcaster(),
		UploadsDir:     appConfig.UploadsDir,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
