package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"memeclash/internal/app"
	"memeclash/internal/config"
	"memeclash/internal/content"
	"memeclash/internal/domain"
	"memeclash/internal/i18n"
	"memeclash/internal/logging"
	httpTransport "memeclash/internal/transport/http"
)

const releaseVersion = "0.1.0"

func main() {
	if err := newCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// flagKeys maps command line flags onto their viper config keys
var flagKeys = map[string]string{
	"host":        "server.host",
	"port":        "server.port",
	"env":         "server.env",
	"public-url":  "server.public_url",
	"content-dir": "content.dir",
	"log-level":   "logging.level",
	"log-format":  "logging.format",
}

func newCmd() *cobra.Command {
	v := config.NewViper()
	var configPath string

	cmd := &cobra.Command{
		Use:           "memeclash",
		Short:         "Real-time server for a judge-based meme party game.",
		Args:          cobra.NoArgs,
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, configPath)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	fs.String("host", "0.0.0.0", "address to bind to (env: MEMECLASH_SERVER_HOST)")
	fs.StringP("port", "p", "8080", "port to listen on (env: MEMECLASH_SERVER_PORT)")
	fs.String("env", "development", "development or production (env: MEMECLASH_SERVER_ENV)")
	fs.String("public-url", "", "external base URL for invite links (env: MEMECLASH_SERVER_PUBLIC_URL)")
	fs.String("content-dir", "", "directory overriding the built-in memes and phrases (env: MEMECLASH_CONTENT_DIR)")
	fs.String("log-level", "info", "debug, info, warn or error (env: MEMECLASH_LOGGING_LEVEL)")
	fs.String("log-format", "console", "json or console (env: MEMECLASH_LOGGING_FORMAT)")

	bindFlags(v, fs)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetVersionTemplate("memeclash v{{.Version}}\n")

	return cmd
}

// bindFlags lets explicitly set flags win over config file and env values
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			_ = v.BindPFlag(key, f)
		}
	})
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("starting memeclash server",
		zap.String("env", cfg.Server.Env),
		zap.String("addr", cfg.GetAddr()),
	)

	pool, err := content.Load(cfg.Content.Dir, cfg.Game.DefaultLocale)
	if err != nil {
		return fmt.Errorf("loading content: %w", err)
	}
	translator, err := i18n.Load(cfg.Game.DefaultLocale)
	if err != nil {
		return fmt.Errorf("loading translations: %w", err)
	}
	logger.Info("content loaded",
		zap.Int("memes", pool.MemeCount()),
		zap.Strings("phraseLocales", pool.Locales()),
		zap.Strings("errorLocales", translator.Supported()),
	)

	hub := app.NewGameHub(app.Options{
		Room: domain.RoomSettings{
			MinPlayers:    cfg.Game.MinPlayers,
			MaxPlayers:    cfg.Game.MaxPlayers,
			HandSize:      cfg.Game.HandSize,
			PhraseOptions: cfg.Game.PhraseOptions,
		},
		RoomCodeLength: cfg.Game.RoomCodeLength,
		ReconnectGrace: cfg.Game.ReconnectGrace,
		AbandonTimeout: cfg.Game.AbandonTimeout,
		Scheduler:      app.SystemScheduler,
	}, pool, translator, logger)
	defer hub.Close()

	server := httpTransport.NewServer(cfg, hub, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
	return nil
}
