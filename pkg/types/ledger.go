package types

import (
	"context"
	"errors"
	"fmt"
)

// Ledger mutates and reads the quantities held in boxes. Each mutating
// operation runs as one storage transaction: a rejected call leaves the
// ledger exactly as it was.
type Ledger interface {
	// Add puts quantity units of a component type into a box.
	// Fails with ErrInvalidQuantity or ErrCapacityExceeded.
	Add(ctx context.Context, boxID, componentTypeID int64, quantity int) (*Movement, error)

	// Remove takes quantity units out of a box, deleting the entry at zero.
	// Fails with ErrInvalidQuantity, ErrEntryNotFound or ErrInsufficientQuantity.
	Remove(ctx context.Context, boxID, componentTypeID int64, quantity int) (*Movement, error)

	// Transfer moves quantity units between two boxes. The debit and the
	// credit commit together.
	Transfer(ctx context.Context, fromBoxID, toBoxID, componentTypeID int64, quantity int) (*Movement, error)

	// Get returns the entry for a (box, component type) pair.
	// Returns ErrEntryNotFound when the box holds none.
	Get(ctx context.Context, boxID, componentTypeID int64) (*Entry, error)

	// BoxContents lists a box's entries joined with their component types,
	// ordered by component name.
	BoxContents(ctx context.Context, boxID int64) ([]BoxItem, error)

	// Search returns every entry whose component name contains query.
	Search(ctx context.Context, query string) ([]SearchHit, error)

	// Summary reports per-box and global counts.
	Summary(ctx context.Context) (*Summary, error)
}

// Movement describes a successful ledger mutation. Add fills To, Remove
// fills From, Transfer fills both.
type Movement struct {
	ComponentType ComponentType `json:"component_type"`
	Quantity      int           `json:"quantity"`
	From          *Box          `json:"from,omitempty"`
	FromBefore    int           `json:"from_before"`
	FromAfter     int           `json:"from_after"`
	To            *Box          `json:"to,omitempty"`
	ToBefore      int           `json:"to_before"`
	ToAfter       int           `json:"to_after"`
}

// Ledger operation errors.
var (
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrCapacityExceeded     = errors.New("capacity exceeded")
	ErrEntryNotFound        = errors.New("component not found in box")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	ErrSameBoxTransfer      = errors.New("cannot transfer to the same box")
)

// LedgerError carries the quantities behind a rejected ledger operation.
// It unwraps to one of the ledger sentinel errors.
type LedgerError struct {
	Err       error
	Component string
	Quantity  int // requested
	Current   int // quantity held where the check failed
	Max       int // capacity, for ErrCapacityExceeded
}

func (e *LedgerError) Error() string {
	switch e.Err {
	case ErrCapacityExceeded:
		return fmt.Sprintf("%s: %s requested %d, current %d, max %d",
			e.Err, e.Component, e.Quantity, e.Current, e.Max)
	case ErrInsufficientQuantity:
		return fmt.Sprintf("%s: requested %d, available %d", e.Err, e.Quantity, e.Current)
	default:
		return e.Err.Error()
	}
}

func (e *LedgerError) Unwrap() error { return e.Err }

// CheckQuantity rejects non-positive quantities.
func CheckQuantity(quantity int) error {
	if quantity <= 0 {
		return &LedgerError{Err: ErrInvalidQuantity, Quantity: quantity}
	}
	return nil
}

// CheckTransfer runs the checks that need no stored state: distinct boxes
// first, then a positive quantity.
func CheckTransfer(fromBoxID, toBoxID int64, quantity int) error {
	if fromBoxID == toBoxID {
		return &LedgerError{Err: ErrSameBoxTransfer, Quantity: quantity}
	}
	return CheckQuantity(quantity)
}

// PlanAdd returns the quantity a box holds after adding quantity units to
// current, or the reason the add is rejected.
func PlanAdd(current, quantity int, ct ComponentType) (int, error) {
	if err := CheckQuantity(quantity); err != nil {
		return current, err
	}
	// Compare against the remaining headroom so huge requests cannot overflow.
	if quantity > ct.MaxPerBox-current {
		return current, &LedgerError{
			Err:       ErrCapacityExceeded,
			Component: ct.Name,
			Quantity:  quantity,
			Current:   current,
			Max:       ct.MaxPerBox,
		}
	}
	return current + quantity, nil
}

// PlanRemove returns the quantity left after removing quantity units from an
// entry. A result of zero means the entry must be deleted.
func PlanRemove(current int, exists bool, quantity int) (int, error) {
	if err := CheckQuantity(quantity); err != nil {
		return current, err
	}
	if !exists {
		return 0, &LedgerError{Err: ErrEntryNotFound, Quantity: quantity}
	}
	if current < quantity {
		return current, &LedgerError{Err: ErrInsufficientQuantity, Quantity: quantity, Current: current}
	}
	return current - quantity, nil
}

// CheckSource rejects a transfer whose source entry is absent or short.
func CheckSource(current int, exists bool, quantity int) error {
	if !exists || current < quantity {
		return &LedgerError{Err: ErrInsufficientQuantity, Quantity: quantity, Current: current}
	}
	return nil
}

// PlanTransfer returns the source and destination quantities after moving
// quantity units. Their sum always equals src + dst.
func PlanTransfer(fromBoxID, toBoxID int64, src int, srcExists bool, dst int, quantity int, ct ComponentType) (int, int, error) {
	if err := CheckTransfer(fromBoxID, toBoxID, quantity); err != nil {
		return src, dst, err
	}
	if err := CheckSource(src, srcExists, quantity); err != nil {
		return src, dst, err
	}
	dstAfter, err := PlanAdd(dst, quantity, ct)
	if err != nil {
		return src, dst, err
	}
	return src - quantity, dstAfter, nil
}

// domainErrors maps each caller-facing sentinel to a stable code used in
// logs and metrics.
var domainErrors = []struct {
	err  error
	code string
}{
	{ErrInvalidQuantity, "invalid_quantity"},
	{ErrCapacityExceeded, "capacity_exceeded"},
	{ErrEntryNotFound, "entry_not_found"},
	{ErrInsufficientQuantity, "insufficient_quantity"},
	{ErrSameBoxTransfer, "same_box_transfer"},
	{ErrNotFound, "not_found"},
	{ErrDuplicateName, "duplicate_name"},
	{ErrInvalidName, "invalid_name"},
	{ErrInvalidCapacity, "invalid_capacity"},
	{ErrInvalidID, "invalid_id"},
	{ErrImmutable, "immutable"},
	{ErrInUse, "in_use"},
}

// ErrorCode returns a short code for err: "ok" for nil, the domain code for
// errors wrapping a sentinel from this package, "error" otherwise.
func ErrorCode(err error) string {
	if err == nil {
		return "ok"
	}
	for _, d := range domainErrors {
		if errors.Is(err, d.err) {
			return d.code
		}
	}
	return "error"
}

// IsDomainError reports whether err is a rejection caused by caller input
// rather than a storage or system failure.
func IsDomainError(err error) bool {
	code := ErrorCode(err)
	return code != "ok" && code != "error"
}
