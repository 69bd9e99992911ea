package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kitbox/pkg/kitbox"
	"github.com/mesh-intelligence/kitbox/pkg/types"
)

func newComponentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "component",
		Aliases: []string{"components"},
		Short:   "Manage the component type catalog",
	}
	cmd.AddCommand(newComponentCreateCmd(a))
	cmd.AddCommand(newComponentListCmd(a))
	return cmd
}

func newComponentCreateCmd(a *app) *cobra.Command {
	var (
		description string
		category    string
		maxPerBox   int
	)
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Add a component type to the catalog",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b *kitbox.Backend) error {
				tbl, err := b.GetTable(types.TableComponentTypes)
				if err != nil {
					return err
				}
				ct := &types.ComponentType{
					Name:        args[0],
					Description: description,
					Category:    category,
					MaxPerBox:   maxPerBox,
				}
				if _, err := tbl.Set("", ct); err != nil {
					return fmt.Errorf("create component type: %w", err)
				}
				return a.emit(cmd, ct, func(w io.Writer) {
					fmt.Fprintf(w, "Created component type %d: %s (max %d per box)\n", ct.ID, ct.Name, ct.MaxPerBox)
				})
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "component description")
	cmd.Flags().StringVarP(&category, "category", "c", "", "component category")
	cmd.Flags().IntVarP(&maxPerBox, "max", "m", 0, "maximum units per box")
	return cmd
}

func newComponentListCmd(a *app) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List component types",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b *kitbox.Backend) error {
				tbl, err := b.GetTable(types.TableComponentTypes)
				if err != nil {
					return err
				}
				filter := map[string]any{}
				if category != "" {
					filter["category"] = category
				}
				rows, err := tbl.Fetch(filter)
				if err != nil {
					return err
				}
				list := make([]*types.ComponentType, 0, len(rows))
				for _, r := range rows {
					list = append(list, r.(*types.ComponentType))
				}
				return a.emit(cmd, list, func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tMAX")
					for _, ct := range list {
						fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", ct.ID, ct.Name, ct.Category, ct.MaxPerBox)
					}
					tw.Flush()
				})
			})
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only list this category")
	return cmd
}
