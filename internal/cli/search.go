package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kitbox/pkg/kitbox"
)

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find which boxes hold components matching a name",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b *kitbox.Backend) error {
				l, err := b.Ledger()
				if err != nil {
					return err
				}
				hits, err := l.Search(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				return a.emit(cmd, hits, func(w io.Writer) {
					if len(hits) == 0 {
						fmt.Fprintf(w, "No components matching %q\n", args[0])
						return
					}
					tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "COMPONENT\tBOX\tQTY")
					for _, h := range hits {
						fmt.Fprintf(tw, "%s\t%s\t%d\n", h.ComponentName, h.BoxName, h.Quantity)
					}
					tw.Flush()
				})
			})
		},
	}
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print inventory totals",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b *kitbox.Backend) error {
				l, err := b.Ledger()
				if err != nil {
					return err
				}
				sum, err := l.Summary(cmd.Context())
				if err != nil {
					return err
				}
				return a.emit(cmd, sum, func(w io.Writer) {
					fmt.Fprintf(w, "Boxes: %d\nComponent types: %d\nEntries: %d\n", sum.Boxes, sum.ComponentTypes, sum.Entries)
				})
			})
		},
	}
}
