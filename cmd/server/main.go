package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/chatrelay/internal/app"
	"github.com/vovakirdan/chatrelay/internal/auth"
	"github.com/vovakirdan/chatrelay/internal/config"
	applog "github.com/vovakirdan/chatrelay/internal/log"
	"github.com/vovakirdan/chatrelay/internal/store/sqlite"
)

type rootOptions struct {
	configPath string
	logLevel   string
	addr       string
	dbPath     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "chatrelay",
		Short:         "Real-time room chat relay over WebSocket",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "sqlite database path override")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat relay server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	serve.Flags().StringVar(&opts.addr, "addr", "", "HTTP listen address override")
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(serve, newTokenCmd(opts), newUserCmd(opts))
	return root
}

// loadConfig resolves configuration and applies command line overrides.
func loadConfig(opts *rootOptions) (config.Config, *zerolog.Logger, error) {
	bootLogger := applog.New(opts.logLevel, "console")

	cfg, path, err := config.Load(bootLogger, opts.configPath)
	if err != nil {
		return cfg, bootLogger, err
	}
	cfg.UpdateFrom(config.Config{
		Addr:         opts.addr,
		LogLevel:     opts.logLevel,
		DatabasePath: opts.dbPath,
	})

	logger := applog.New(cfg.LogLevel, cfg.LogFormat)
	logger.Debug().Str("config_path", path).Msg("configuration loaded")
	return cfg, logger, nil
}

func runServe(parent context.Context, opts *rootOptions) error {
	cfg, logger, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(&cfg, logger)
	if err != nil {
		return err
	}

	logger.Info().Str("addr", cfg.Addr).Msg("starting chatrelay")
	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for a user id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if userID <= 0 {
				return fmt.Errorf("--user-id must be positive")
			}

			token, err := auth.GenerateToken(app.JWTConfig(&cfg), userID, auth.TokenTypeAccess, cfg.AccessTokenTTL)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user-id", 0, "user id to embed in the token")
	return cmd
}

func newUserCmd(opts *rootOptions) *cobra.Command {
	var username, password string

	user := &cobra.Command{
		Use:   "user",
		Short: "Manage the user directory",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Register a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			st, err := sqlite.New(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("init store: %w", err)
			}
			defer st.Close()

			service := auth.NewService(st, app.JWTConfig(&cfg))
			created, _, err := service.Signup(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			logger.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("user created")
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", created.ID, created.Username)
			return nil
		},
	}
	add.Flags().StringVar(&username, "username", "", "username")
	add.Flags().StringVar(&password, "password", "", "password")
	_ = add.MarkFlagRequired("username")
	_ = add.MarkFlagRequired("password")

	user.AddCommand(add)
	return user
}
