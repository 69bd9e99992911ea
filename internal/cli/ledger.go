package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kitbox/pkg/kitbox"
	"github.com/mesh-intelligence/kitbox/pkg/types"
)

const quantityHelp = "Arguments after -- are not parsed as flags, e.g. kitbox add -- <box> <component> -1"

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <box> <component> <quantity>",
		Short: "Put components into a box",
		Long: `Put components into a box. The box and component may be given by id or exact name.
` + quantityHelp,
		Args:  exactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := parseQuantity(args[2])
			if err != nil {
				return err
			}
			return a.withBackend(func(b *kitbox.Backend) error {
				box, ct, err := resolvePair(b, args[0], args[1])
				if err != nil {
					return err
				}
				l, err := b.Ledger()
				if err != nil {
					return err
				}
				m, err := l.Add(cmd.Context(), box.ID, ct.ID, qty)
				if err != nil {
					return err
				}
				return a.emit(cmd, m, func(w io.Writer) {
					fmt.Fprintf(w, "Added %d %s(s) to %s (now %d of %d)\n",
						qty, m.ComponentType.Name, m.To.Name, m.ToAfter, m.ComponentType.MaxPerBox)
				})
			})
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <box> <component> <quantity>",
		Short: "Take components out of a box",
		Long:  "Take components out of a box.\n" + quantityHelp,
		Args:  exactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := parseQuantity(args[2])
			if err != nil {
				return err
			}
			return a.withBackend(func(b *kitbox.Backend) error {
				box, ct, err := resolvePair(b, args[0], args[1])
				if err != nil {
					return err
				}
				l, err := b.Ledger()
				if err != nil {
					return err
				}
				m, err := l.Remove(cmd.Context(), box.ID, ct.ID, qty)
				if err != nil {
					return err
				}
				return a.emit(cmd, m, func(w io.Writer) {
					fmt.Fprintf(w, "Removed %d %s(s) from %s (%d left)\n",
						qty, m.ComponentType.Name, m.From.Name, m.FromAfter)
				})
			})
		},
	}
}

func newTransferCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <from-box> <to-box> <component> <quantity>",
		Short: "Move components between boxes",
		Long:  "Move components between boxes in one step.\n" + quantityHelp,
		Args:  exactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := parseQuantity(args[3])
			if err != nil {
				return err
			}
			return a.withBackend(func(b *kitbox.Backend) error {
				from, ct, err := resolvePair(b, args[0], args[2])
				if err != nil {
					return err
				}
				to, err := resolveBox(b, args[1])
				if err != nil {
					return err
				}
				l, err := b.Ledger()
				if err != nil {
					return err
				}
				m, err := l.Transfer(cmd.Context(), from.ID, to.ID, ct.ID, qty)
				if err != nil {
					return err
				}
				return a.emit(cmd, m, func(w io.Writer) {
					fmt.Fprintf(w, "Transferred %d %s(s) from %s to %s\n",
						qty, m.ComponentType.Name, m.From.Name, m.To.Name)
				})
			})
		},
	}
}

func resolvePair(inv types.Inventory, boxRef, typeRef string) (*types.Box, *types.ComponentType, error) {
	box, err := resolveBox(inv, boxRef)
	if err != nil {
		return nil, nil, err
	}
	ct, err := resolveComponentType(inv, typeRef)
	if err != nil {
		return nil, nil, err
	}
	return box, ct, nil
}
