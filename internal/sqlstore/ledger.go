// This file implements the inventory ledger: add, remove, and transfer, each
// inside one database transaction.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/kitbox/pkg/types"
)

var _ types.Ledger = (*ledger)(nil)

// ledger implements types.Ledger over the box_components table. Capacity
// rules come from the planners in pkg/types; this file only reads the
// current state and writes the planned result.
type ledger struct {
	backend *Backend
}

const selectEntry = "SELECT entry_id, box_id, component_type_id, quantity, last_updated FROM box_components"

// inTx runs fn inside a transaction and commits when fn succeeds. Any error
// rolls back every write fn made.
func (l *ledger) inTx(ctx context.Context, fn func(tx *sql.Tx, lockRows string) error) error {
	db, err := l.backend.acquire()
	if err != nil {
		return err
	}
	defer l.backend.release()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx, l.backend.dialect.lockRows); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing ledger transaction: %w", err)
	}
	return nil
}

// Add puts quantity units of a component type into a box.
func (l *ledger) Add(ctx context.Context, boxID, componentTypeID int64, quantity int) (*types.Movement, error) {
	if err := types.CheckQuantity(quantity); err != nil {
		return nil, err
	}

	var m *types.Movement
	err := l.inTx(ctx, func(tx *sql.Tx, lockRows string) error {
		box, err := getBox(ctx, tx, boxID, "")
		if err != nil {
			return err
		}
		ct, err := getComponentType(ctx, tx, componentTypeID, "")
		if err != nil {
			return err
		}
		entry, err := getEntry(ctx, tx, boxID, componentTypeID, lockRows)
		if err != nil {
			return err
		}

		current := quantityOf(entry)
		next, err := types.PlanAdd(current, quantity, *ct)
		if err != nil {
			return err
		}
		if err := writeEntry(ctx, tx, boxID, componentTypeID, entry, next); err != nil {
			return err
		}

		m = &types.Movement{
			ComponentType: *ct,
			Quantity:      quantity,
			To:            box,
			ToBefore:      current,
			ToAfter:       next,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Remove takes quantity units of a component type out of a box. The entry
// is deleted when it reaches zero.
func (l *ledger) Remove(ctx context.Context, boxID, componentTypeID int64, quantity int) (*types.Movement, error) {
	if err := types.CheckQuantity(quantity); err != nil {
		return nil, err
	}

	var m *types.Movement
	err := l.inTx(ctx, func(tx *sql.Tx, lockRows string) error {
		entry, err := getEntry(ctx, tx, boxID, componentTypeID, lockRows)
		if err != nil {
			return err
		}

		current := quantityOf(entry)
		next, err := types.PlanRemove(current, entry != nil, quantity)
		if err != nil {
			return err
		}

		box, err := getBox(ctx, tx, boxID, "")
		if err != nil {
			return err
		}
		ct, err := getComponentType(ctx, tx, componentTypeID, "")
		if err != nil {
			return err
		}
		if err := writeEntry(ctx, tx, boxID, componentTypeID, entry, next); err != nil {
			return err
		}

		m = &types.Movement{
			ComponentType: *ct,
			Quantity:      quantity,
			From:          box,
			FromBefore:    current,
			FromAfter:     next,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Transfer moves quantity units from one box to another. The debit and the
// credit are written in the same transaction.
func (l *ledger) Transfer(ctx context.Context, fromBoxID, toBoxID, componentTypeID int64, quantity int) (*types.Movement, error) {
	if err := types.CheckTransfer(fromBoxID, toBoxID, quantity); err != nil {
		return nil, err
	}

	var m *types.Movement
	err := l.inTx(ctx, func(tx *sql.Tx, lockRows string) error {
		src, err := getEntry(ctx, tx, fromBoxID, componentTypeID, lockRows)
		if err != nil {
			return err
		}
		if err := types.CheckSource(quantityOf(src), src != nil, quantity); err != nil {
			return err
		}

		ct, err := getComponentType(ctx, tx, componentTypeID, "")
		if err != nil {
			return err
		}
		dst, err := getEntry(ctx, tx, toBoxID, componentTypeID, lockRows)
		if err != nil {
			return err
		}

		srcBefore, dstBefore := quantityOf(src), quantityOf(dst)
		srcAfter, dstAfter, err := types.PlanTransfer(
			fromBoxID, toBoxID, srcBefore, src != nil, dstBefore, quantity, *ct)
		if err != nil {
			return err
		}

		from, err := getBox(ctx, tx, fromBoxID, "")
		if err != nil {
			return err
		}
		to, err := getBox(ctx, tx, toBoxID, "")
		if err != nil {
			return err
		}

		if err := writeEntry(ctx, tx, fromBoxID, componentTypeID, src, srcAfter); err != nil {
			return err
		}
		if err := writeEntry(ctx, tx, toBoxID, componentTypeID, dst, dstAfter); err != nil {
			return err
		}

		m = &types.Movement{
			ComponentType: *ct,
			Quantity:      quantity,
			From:          from,
			FromBefore:    srcBefore,
			FromAfter:     srcAfter,
			To:            to,
			ToBefore:      dstBefore,
			ToAfter:       dstAfter,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Get returns the entry for a (box, component type) pair.
func (l *ledger) Get(ctx context.Context, boxID, componentTypeID int64) (*types.Entry, error) {
	db, err := l.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer l.backend.release()

	entry, err := getEntry(ctx, db, boxID, componentTypeID, "")
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, &types.LedgerError{Err: types.ErrEntryNotFound}
	}
	return entry, nil
}

// getEntry loads the entry for a pair, returning nil when the box holds none
// of the component type.
func getEntry(ctx context.Context, q queryer, boxID, componentTypeID int64, lockRows string) (*types.Entry, error) {
	row := q.QueryRowContext(ctx,
		selectEntry+" WHERE box_id = ? AND component_type_id = ?"+lockRows,
		boxID, componentTypeID,
	)
	var e types.Entry
	var lastUpdated string
	err := row.Scan(&e.ID, &e.BoxID, &e.ComponentTypeID, &e.Quantity, &lastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting entry for box %d component type %d: %w", boxID, componentTypeID, err)
	}
	if e.LastUpdated, err = parseTime(lastUpdated, "entry last_updated"); err != nil {
		return nil, err
	}
	return &e, nil
}

// writeEntry stores quantity for a pair: delete at zero, insert when the
// pair had no entry, update otherwise.
func writeEntry(ctx context.Context, tx *sql.Tx, boxID, componentTypeID int64, existing *types.Entry, quantity int) error {
	ts := formatTime(now())
	switch {
	case quantity == 0 && existing != nil:
		if _, err := tx.ExecContext(ctx, "DELETE FROM box_components WHERE entry_id = ?", existing.ID); err != nil {
			return fmt.Errorf("deleting entry: %w", err)
		}
	case quantity == 0:
		// Nothing stored and nothing to store.
	case existing == nil:
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO box_components (box_id, component_type_id, quantity, last_updated) VALUES (?, ?, ?, ?)",
			boxID, componentTypeID, quantity, ts,
		); err != nil {
			return fmt.Errorf("inserting entry: %w", err)
		}
	default:
		if _, err := tx.ExecContext(ctx,
			"UPDATE box_components SET quantity = ?, last_updated = ? WHERE entry_id = ?",
			quantity, ts, existing.ID,
		); err != nil {
			return fmt.Errorf("updating entry: %w", err)
		}
	}
	return nil
}

func quantityOf(e *types.Entry) int {
	if e == nil {
		return 0
	}
	return e.Quantity
}
