package cli

import (
	"context"
	"io"

	inventoryapp "github.com/ceramica/backend/internal/application/inventory"
	"github.com/ceramica/backend/internal/infrastructure/persistence"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ReconcileOptions holds flags for inventory reconcile
type ReconcileOptions struct {
	*RootOptions
	Fix bool
}

// NewInventoryCommand creates the inventory command
func NewInventoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Inspect and repair production inventory",
	}
	cmd.AddCommand(newReconcileCommand(rootOpts))
	return cmd
}

func newReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReconcileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare apartados with active allocations",
		Long: `Report produccion rows whose apartados differ from the sum of their
active allocations. With --fix, apartados is rewritten to that sum and an
adjustment movement is recorded. Rows where the sum exceeds the row
quantity are reported but never fixed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReconcile(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&opts.Fix, "fix", false, "rewrite apartados to match allocations")
	return cmd
}

func runReconcile(ctx context.Context, opts *ReconcileOptions, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	_, db, err := opts.open()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	log := opts.Logger()
	repos := persistence.NewRepositories(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)
	svc := inventoryapp.NewProduccionService(
		repos.ProduccionRepo(), repos.MovementRepo(), repos.AllocationRepo(),
		scope, inventoryapp.NewAllocator(log), log,
	)

	drifts, err := svc.Reconcile(ctx, opts.Fix, nil)
	if err != nil {
		return err
	}
	log.Info("Inventory reconciled", zap.Int("drifts", len(drifts)), zap.Bool("fix", opts.Fix))

	if drifts == nil {
		drifts = []inventoryapp.Drift{}
	}
	return printResult(w, opts.Format, drifts, func(w io.Writer) {
		if len(drifts) == 0 {
			printf(w, "no drift found\n")
			return
		}
		for _, d := range drifts {
			status := "drift"
			if d.Fixed {
				status = "fixed"
			}
			printf(w, "%s %s %s/%s/%s quantity=%d apartados=%d allocated=%d",
				status, d.InventoryID, d.Producto, d.Etapa, d.Color, d.Quantity, d.Apartados, d.Allocated)
			if d.Reason != "" {
				printf(w, " (%s)", d.Reason)
			}
			printf(w, "\n")
		}
	})
}
