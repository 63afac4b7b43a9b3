package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/ceramica/backend/internal/infrastructure/migration"
	"github.com/ceramica/backend/migrations"
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command and its subcommands
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database schema migrations",
		Long: `Manage the PostgreSQL schema with versioned migrations.

Migrations are read from --path when given, otherwise from the set
embedded in the binary.`,
	}
	cmd.PersistentFlags().StringVar(&path, "path", "", "directory holding *.up.sql and *.down.sql files")

	run := func(fn func(m *migration.Migrator, cmd *cobra.Command) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			m, err := openMigrator(rootOpts, path)
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()
			if err := fn(m, cmd); err != nil {
				return err
			}
			return printVersion(m, rootOpts.Format, cmd.OutOrStdout())
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE:  run(func(m *migration.Migrator, _ *cobra.Command) error { return m.Up() }),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every applied migration",
		Args:  cobra.NoArgs,
		RunE:  run(func(m *migration.Migrator, _ *cobra.Command) error { return m.Down() }),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "steps N",
		Short: "Apply N migrations, or roll back when N is negative",
		Args:  intArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, _ := strconv.Atoi(args[0])
			return run(func(m *migration.Migrator, _ *cobra.Command) error { return m.Steps(n) })(cmd, args)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE:  run(func(*migration.Migrator, *cobra.Command) error { return nil }),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "force V",
		Short: "Set the schema version without running migrations, clearing the dirty flag",
		Args:  intArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, _ := strconv.Atoi(args[0])
			return run(func(m *migration.Migrator, _ *cobra.Command) error { return m.Force(v) })(cmd, args)
		},
	})

	var description string
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Write an empty up/down migration pair numbered after the latest one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := path
			if dir == "" {
				dir = "migrations"
			}
			mf, err := migration.CreateMigration(dir, args[0], description)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), rootOpts.Format, mf, func(w io.Writer) {
				printf(w, "created %s\ncreated %s\n", mf.UpPath, mf.DownPath)
			})
		},
	}
	create.Flags().StringVarP(&description, "description", "d", "", "comment written at the top of the up file")
	cmd.AddCommand(create)

	return cmd
}

// intArg accepts exactly one integer argument
func intArg(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("accepts 1 arg, received %d", len(args))
	}
	if _, err := strconv.Atoi(args[0]); err != nil {
		return fmt.Errorf("invalid number %q", args[0])
	}
	return nil
}

func openMigrator(rootOpts *RootOptions, path string) (*migration.Migrator, error) {
	cfg, db, err := rootOpts.open()
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = cfg.Database.MigrationsPath
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, err
	}
	// the migrator owns the pool from here on and closes it
	return migration.New(sqlDB, migrations.FS, path, rootOpts.Logger())
}

type versionResult struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

func printVersion(m *migration.Migrator, format string, w io.Writer) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	res := versionResult{Version: version, Dirty: dirty}
	return printResult(w, format, res, func(w io.Writer) {
		if dirty {
			printf(w, "schema version %d (dirty)\n", version)
			return
		}
		printf(w, "schema version %d\n", version)
	})
}
