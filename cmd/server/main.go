package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"taskflow/internal/config"
	"taskflow/internal/devserver"
	"taskflow/internal/logging"
)

type serverFlags struct {
	configPath string
	addr       string
	secret     string
	ttl        time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags serverFlags
	cmd := &cobra.Command{
		Use:           "taskflow-server",
		Short:         "Run the in-memory task API for local development",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logger := logging.Component(logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format), "devserver")

			srv, err := buildServer(cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&flags.configPath, "config", "", "Config file (default: layered ~/.taskflow and ./.taskflow)")
	cmd.Flags().StringVar(&flags.addr, "addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().StringVar(&flags.secret, "secret", "", "Token signing secret (overrides TASKFLOW_JWT_SECRET)")
	cmd.Flags().DurationVar(&flags.ttl, "ttl", 0, "Token lifetime (overrides server.token_ttl)")
	return cmd
}

func loadConfig(flags serverFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if flags.addr != "" {
		cfg.Server.Addr = flags.addr
	}
	if flags.secret != "" {
		cfg.Server.Secret = flags.secret
	}
	if flags.ttl > 0 {
		cfg.Server.TokenTTL = flags.ttl
	}
	return cfg, nil
}

// buildServer fills in a throwaway secret when none is configured, so tokens
// stop verifying after a restart.
func buildServer(cfg *config.Config, logger zerolog.Logger) (*devserver.Server, error) {
	secret := cfg.Server.Secret
	if secret == "" {
		var b [32]byte
		if _, err := rand.Read(b[:]); err != nil {
			return nil, err
		}
		secret = hex.EncodeToString(b[:])
		logger.Warn().Msg("no token secret configured, using a random one for this run")
	}
	return devserver.New(devserver.Options{
		Secret:   secret,
		TokenTTL: cfg.Server.TokenTTL,
		Logger:   logger,
	})
}
