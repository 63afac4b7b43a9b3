package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	catalogapp "github.com/ceramica/backend/internal/application/catalog"
	"github.com/ceramica/backend/internal/infrastructure/persistence"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// SeedOptions holds flags for the seed commands
type SeedOptions struct {
	*RootOptions
	File string
}

// NewSeedCommand creates the seed command
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load reference data",
	}
	cmd.AddCommand(newSeedAreasCommand(rootOpts))
	return cmd
}

func newSeedAreasCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "areas",
		Short: "Create or update the area taxonomy from a YAML file",
		Long: `Upsert areas and their subareas by name.

Existing entries get their description updated; nothing is deleted.

Example file:

  areas:
    - name: Produccion
      description: Taller
      subareas:
        - name: Esmaltado
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeedAreas(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "taxonomy YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

type seedFile struct {
	Areas []catalogapp.SeedArea `yaml:"areas"`
}

// ParseSeedAreas decodes a taxonomy document
func ParseSeedAreas(r io.Reader) ([]catalogapp.SeedArea, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("seed file is empty")
		}
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if len(f.Areas) == 0 {
		return nil, fmt.Errorf("seed file defines no areas")
	}
	return f.Areas, nil
}

func runSeedAreas(ctx context.Context, opts *SeedOptions, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fh, err := os.Open(opts.File)
	if err != nil {
		return err
	}
	defer fh.Close()

	areas, err := ParseSeedAreas(fh)
	if err != nil {
		return err
	}

	_, db, err := opts.open()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	repos := persistence.NewRepositories(db.DB)
	svc := catalogapp.NewAreaService(repos.AreaRepo(), persistence.NewGormTransactionScope(db.DB), opts.Logger())
	res, err := svc.Seed(ctx, areas)
	if err != nil {
		return err
	}
	opts.Logger().Info("Area taxonomy seeded",
		zap.String("file", opts.File),
		zap.Int("areas_created", res.AreasCreated),
		zap.Int("subareas_created", res.SubareasCreated),
	)

	return printResult(w, opts.Format, res, func(w io.Writer) {
		printf(w, "areas: %d created, %d updated\n", res.AreasCreated, res.AreasUpdated)
		printf(w, "subareas: %d created, %d updated\n", res.SubareasCreated, res.SubareasUpdated)
	})
}
