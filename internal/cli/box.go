package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kitbox/pkg/kitbox"
	"github.com/mesh-intelligence/kitbox/pkg/types"
)

func newBoxCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "box",
		Short: "Manage storage boxes",
	}
	cmd.AddCommand(newBoxCreateCmd(a))
	cmd.AddCommand(newBoxListCmd(a))
	cmd.AddCommand(newBoxShowCmd(a))
	cmd.AddCommand(newBoxDeleteCmd(a))
	return cmd
}

func newBoxCreateCmd(a *app) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Register a new box",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b *kitbox.Backend) error {
				tbl, err := b.GetTable(types.TableBoxes)
				if err != nil {
					return err
				}
				box := &types.Box{Name: args[0], Description: description}
				if _, err := tbl.Set("", box); err != nil {
					return fmt.Errorf("create box: %w", err)
				}
				return a.emit(cmd, box, func(w io.Writer) {
					fmt.Fprintf(w, "Created box %d: %s\n", box.ID, box.Name)
				})
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "box description")
	return cmd
}

func newBoxListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List boxes with their contents summary",
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
				return a.emit(cmd, sum.PerBox, func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tNAME\tTYPES\tITEMS")
					for _, bs := range sum.PerBox {
						fmt.Fprintf(tw, "%d\t%s\t%d\t%d\n", bs.BoxID, bs.BoxName, bs.ComponentTypes, bs.TotalItems)
					}
					tw.Flush()
				})
			})
		},
	}
}

// boxView is a box together with its contents.
type boxView struct {
	Box        *types.Box      `json:"box"`
	Components []types.BoxItem `json:"components"`
}

func newBoxShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <box>",
		Short: "Show the contents of a box",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b *kitbox.Backend) error {
				view, err := loadBoxView(cmd.Context(), b, args[0])
				if err != nil {
					return err
				}
				return a.emit(cmd, view, func(w io.Writer) {
					fmt.Fprintf(w, "%s (id %d)\n", view.Box.Name, view.Box.ID)
					if view.Box.Description != "" {
						fmt.Fprintln(w, view.Box.Description)
					}
					if len(view.Components) == 0 {
						fmt.Fprintln(w, "  (empty)")
						return
					}
					tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "  ID\tCOMPONENT\tCATEGORY\tQTY\tMAX")
					for _, it := range view.Components {
						fmt.Fprintf(tw, "  %d\t%s\t%s\t%d\t%d\n", it.ComponentTypeID, it.Name, it.Category, it.Quantity, it.MaxPerBox)
					}
					tw.Flush()
				})
			})
		},
	}
}

func loadBoxView(ctx context.Context, b *kitbox.Backend, ref string) (*boxView, error) {
	box, err := resolveBox(b, ref)
	if err != nil {
		return nil, err
	}
	l, err := b.Ledger()
	if err != nil {
		return nil, err
	}
	items, err := l.BoxContents(ctx, box.ID)
	if err != nil {
		return nil, err
	}
	return &boxView{Box: box, Components: items}, nil
}

func newBoxDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <box>",
		Short: "Delete a box and everything it holds",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b *kitbox.Backend) error {
				box, err := resolveBox(b, args[0])
				if err != nil {
					return err
				}
				tbl, err := b.GetTable(types.TableBoxes)
				if err != nil {
					return err
				}
				if err := tbl.Delete(types.FormatID(box.ID)); err != nil {
					if errors.Is(err, types.ErrNotFound) {
						return fmt.Errorf("box %q: %w", args[0], err)
					}
					return fmt.Errorf("delete box: %w", err)
				}
				return a.emit(cmd, box, func(w io.Writer) {
					fmt.Fprintf(w, "Deleted box %d: %s\n", box.ID, box.Name)
				})
			})
		},
	}
}
