package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kitbox/pkg/kitbox"
	"github.com/mesh-intelligence/kitbox/pkg/types"
)

// seedReport is the --json output of seed.
type seedReport struct {
	ComponentTypes int            `json:"component_types"`
	Boxes          int            `json:"boxes"`
	Stock          int            `json:"stock"`
	SkippedStock   int            `json:"skipped_stock"`
	Summary        *types.Summary `json:"summary"`
}

func newSeedCmd(a *app) *cobra.Command {
	var (
		reset         bool
		withInventory bool
		catalogPath   string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the component catalog and boxes",
		Long: "Load the built-in Raspberry Pi Pico kit catalog and boxes, or a TOML\n" +
			"catalog given with --catalog. Seeding is skipped when the catalog is\n" +
			"already populated unless --reset is given, which empties every table first.",
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := kitbox.BuiltInCatalog()
			if catalogPath != "" {
				c, err := kitbox.LoadCatalog(catalogPath)
				if err != nil {
					return userError(err)
				}
				catalog = c
			}

			return a.withUnseededBackend(func(b *kitbox.Backend) error {
				ctx := cmd.Context()
				res, err := b.Seed(ctx, catalog, reset)
				if err != nil {
					return fmt.Errorf("seed catalog: %w", err)
				}
				report := seedReport{ComponentTypes: res.ComponentTypes, Boxes: res.Boxes}

				if withInventory {
					stock, err := b.SeedStock(ctx, catalog.Stock)
					if err != nil {
						return fmt.Errorf("seed inventory: %w", err)
					}
					report.Stock = stock.Stock
					report.SkippedStock = stock.SkippedStock
				}

				l, err := b.Ledger()
				if err != nil {
					return err
				}
				if report.Summary, err = l.Summary(ctx); err != nil {
					return err
				}
				a.logger.Debug().
					Int("component_types", report.ComponentTypes).
					Int("boxes", report.Boxes).
					Int("stock", report.Stock).
					Msg("seed complete")

				return a.emit(cmd, report, func(w io.Writer) {
					if report.ComponentTypes == 0 && report.Boxes == 0 {
						fmt.Fprintln(w, "Catalog already populated; use --reset to reseed")
					} else {
						fmt.Fprintf(w, "Seeded %d component types and %d boxes\n", report.ComponentTypes, report.Boxes)
					}
					if withInventory {
						fmt.Fprintf(w, "Stocked %d lines (%d skipped)\n", report.Stock, report.SkippedStock)
					}
					fmt.Fprintf(w, "Inventory: %d boxes, %d component types, %d entries\n",
						report.Summary.Boxes, report.Summary.ComponentTypes, report.Summary.Entries)
					for _, bs := range report.Summary.PerBox {
						fmt.Fprintf(w, "  %s: %d types, %d items\n", bs.BoxName, bs.ComponentTypes, bs.TotalItems)
					}
				})
			})
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "delete all boxes, component types and inventory first")
	cmd.Flags().BoolVar(&withInventory, "with-inventory", false, "also load the sample inventory")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "TOML catalog file to load instead of the built-in catalog")
	return cmd
}
