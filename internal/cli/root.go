// Package cli implements the ctl operations command.
package cli

import (
	"fmt"
	"slices"

	"github.com/ceramica/backend/internal/infrastructure/config"
	"github.com/ceramica/backend/internal/infrastructure/logger"
	"github.com/ceramica/backend/internal/infrastructure/persistence"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ValidFormats defines the allowed output formats
var ValidFormats = []string{"text", "json"}

// RootOptions holds global flags for all commands
type RootOptions struct {
	Format   string
	LogLevel string

	deps   Deps
	logger *zap.Logger
}

// Deps opens the resources commands run against. Tests replace them with
// SQLite-backed versions.
type Deps struct {
	LoadConfig   func() (*config.Config, error)
	OpenDatabase func(cfg *config.Config, log *zap.Logger) (*persistence.Database, error)
}

// DefaultDeps loads the service configuration and connects to PostgreSQL
func DefaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		OpenDatabase: func(cfg *config.Config, log *zap.Logger) (*persistence.Database, error) {
			return persistence.NewDatabase(&cfg.Database, logger.NewGormLogger(log, logger.GormLevel("warn"), 0))
		},
	}
}

// NewRootCommand creates the ctl root command
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithDeps(DefaultDeps())
}

// NewRootCommandWithDeps creates the root command over the given resources
func NewRootCommandWithDeps(deps Deps) *cobra.Command {
	opts := &RootOptions{deps: deps}

	cmd := &cobra.Command{
		Use:   "ctl",
		Short: "Ceramica operations tool",
		Long:  "Runs schema migrations, seeds reference data and reconciles inventory reservations.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			log, err := logger.New(logger.Config{
				Level:  opts.LogLevel,
				Format: "console",
				Output: "stderr",
			})
			if err != nil {
				return err
			}
			opts.logger = log
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "log level (debug|info|warn|error)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewInventoryCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

// Logger returns the logger built from --log-level
func (o *RootOptions) Logger() *zap.Logger {
	if o.logger == nil {
		return zap.NewNop()
	}
	return o.logger
}

// open loads configuration and connects to the database
func (o *RootOptions) open() (*config.Config, *persistence.Database, error) {
	cfg, err := o.deps.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	db, err := o.deps.OpenDatabase(cfg, o.Logger())
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return cfg, db, nil
}
