package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/example/camp-scheduler/internal/bccamp"
	"github.com/example/camp-scheduler/internal/browser"
	"github.com/example/camp-scheduler/internal/config"
	"github.com/example/camp-scheduler/internal/configstore"
	"github.com/example/camp-scheduler/internal/crypto"
	"github.com/example/camp-scheduler/internal/db"
	"github.com/example/camp-scheduler/internal/migrate"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

var debug bool

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "campsched",
		Short: "Watches BC Parks campsite availability and books matching sites the moment they open",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			level, err := zerolog.ParseLevel(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("invalid LOG_LEVEL: %w", err)
			}
			if debug {
				level = zerolog.DebugLevel
			}
			zerolog.SetGlobalLevel(level)
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
			return nil
		},
	}

	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newEquipmentCmd())
	root.AddCommand(newLocationsCmd())
	root.AddCommand(newCategoriesCmd())
	root.AddCommand(newAvailabilityCmd())
	root.AddCommand(newReserveCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newNotifyCmd())
	root.AddCommand(newServeCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func apiClient(cfg config.Config) *bccamp.Client {
	return bccamp.NewWithBaseURL(cfg.APIBaseURL)
}

func sessionFactory(cfg config.Config) func(ctx context.Context) (browser.Driver, error) {
	return func(ctx context.Context) (browser.Driver, error) {
		s, err := browser.NewSession(ctx, browser.Options{
			ExecPath: cfg.ChromePath,
			Headless: cfg.Headless,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// openStore connects, runs migrations and builds the encrypted config
// store. The returned closer shuts the pool down.
func openStore(ctx context.Context, cfg config.Config) (*configstore.Store, func(), error) {
	if err := cfg.RequireEncryptionKey(); err != nil {
		return nil, nil, err
	}
	aead, err := crypto.New(cfg.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("CONFIG_ENC_KEY: %w", err)
	}

	d, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := migrate.Up(ctx, d); err != nil {
		d.Close()
		return nil, nil, err
	}
	return &configstore.Store{DB: d, AEAD: aead}, d.Close, nil
}
