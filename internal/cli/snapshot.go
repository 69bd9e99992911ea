package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kitbox/pkg/kitbox"
)

// exportReport is the --json output of export.
type exportReport struct {
	*kitbox.ExportResult
	Report string `json:"report,omitempty"`
}

func newExportCmd(a *app) *cobra.Command {
	var xlsxPath string
	cmd := &cobra.Command{
		Use:   "export <dir>",
		Short: "Write a JSONL snapshot of the inventory",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b *kitbox.Backend) error {
				res, err := b.Export(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("export: %w", err)
				}
				report := exportReport{ExportResult: res}
				if xlsxPath != "" {
					if err := b.WriteReport(cmd.Context(), xlsxPath); err != nil {
						return fmt.Errorf("write report: %w", err)
					}
					report.Report = xlsxPath
				}
				return a.emit(cmd, report, func(w io.Writer) {
					fmt.Fprintf(w, "Exported %d boxes, %d component types, %d entries to %s\n",
						res.Boxes, res.ComponentTypes, res.Entries, res.Dir)
					fmt.Fprintln(w, "  snapshot:", res.SnapshotID)
					if xlsxPath != "" {
						fmt.Fprintln(w, "  report:  ", xlsxPath)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write an Excel report to this file")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Load a JSONL snapshot into an empty store",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withUnseededBackend(func(b *kitbox.Backend) error {
				res, err := b.Import(cmd.Context(), args[0])
				if errors.Is(err, kitbox.ErrStoreNotEmpty) {
					return userError(fmt.Errorf("import: %w (run seed --reset or use an empty data dir)", err))
				}
				if err != nil {
					return fmt.Errorf("import: %w", err)
				}
				return a.emit(cmd, res, func(w io.Writer) {
					fmt.Fprintf(w, "Imported %d boxes, %d component types, %d entries (%d skipped)\n",
						res.Boxes, res.ComponentTypes, res.Entries, res.Skipped)
				})
			})
		},
	}
}
