package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mesh-intelligence/kitbox/internal/observability"
	"github.com/mesh-intelligence/kitbox/pkg/types"
)

// Ledger operation names, used in logs and metrics.
const (
	opAdd      = "add"
	opRemove   = "remove"
	opTransfer = "transfer"
)

// Every ledger outcome, including rejections, is answered with 200 and a
// {success, message} body.

func (s *Server) addComponent(c *gin.Context) {
	f, err := bindFields(c)
	if err != nil {
		s.reject(c, opAdd, err)
		return
	}
	boxID, typeID, qty, err := parseStockRequest(f)
	if err != nil {
		s.reject(c, opAdd, err)
		return
	}

	l, err := s.inv.Ledger()
	if err != nil {
		s.reject(c, opAdd, err)
		return
	}
	m, err := l.Add(c.Request.Context(), boxID, typeID, qty)
	if err != nil {
		s.reject(c, opAdd, err)
		return
	}
	s.accept(c, opAdd, fmt.Sprintf("Added %d %s(s) to %s", qty, m.ComponentType.Name, m.To.Name))
}

func (s *Server) removeComponent(c *gin.Context) {
	f, err := bindFields(c)
	if err != nil {
		s.reject(c, opRemove, err)
		return
	}
	boxID, typeID, qty, err := parseStockRequest(f)
	if err != nil {
		s.reject(c, opRemove, err)
		return
	}

	l, err := s.inv.Ledger()
	if err != nil {
		s.reject(c, opRemove, err)
		return
	}
	m, err := l.Remove(c.Request.Context(), boxID, typeID, qty)
	if err != nil {
		s.reject(c, opRemove, err)
		return
	}
	s.accept(c, opRemove, fmt.Sprintf("Removed %d %s(s) from %s", qty, m.ComponentType.Name, m.From.Name))
}

func (s *Server) transferComponent(c *gin.Context) {
	f, err := bindFields(c)
	if err != nil {
		s.reject(c, opTransfer, err)
		return
	}
	fromID, err := f.int64("from_box_id")
	if err != nil {
		s.reject(c, opTransfer, err)
		return
	}
	toID, err := f.int64("to_box_id")
	if err != nil {
		s.reject(c, opTransfer, err)
		return
	}
	typeID, err := f.int64("component_type_id")
	if err != nil {
		s.reject(c, opTransfer, err)
		return
	}
	qty, err := f.int("quantity")
	if err != nil {
		s.reject(c, opTransfer, err)
		return
	}

	l, err := s.inv.Ledger()
	if err != nil {
		s.reject(c, opTransfer, err)
		return
	}
	m, err := l.Transfer(c.Request.Context(), fromID, toID, typeID, qty)
	if err != nil {
		s.reject(c, opTransfer, err)
		return
	}
	s.accept(c, opTransfer, fmt.Sprintf("Transferred %d %s(s) from %s to %s",
		qty, m.ComponentType.Name, m.From.Name, m.To.Name))
}

func parseStockRequest(f fields) (boxID, typeID int64, qty int, err error) {
	if boxID, err = f.int64("box_id"); err != nil {
		return
	}
	if typeID, err = f.int64("component_type_id"); err != nil {
		return
	}
	qty, err = f.int("quantity")
	return
}

// boxComponent is one row of the get_box_components response.
type boxComponent struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

func (s *Server) getBoxComponents(c *gin.Context) {
	boxID, err := strconv.ParseInt(c.Param("box_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, failure("Box not found"))
		return
	}
	l, err := s.inv.Ledger()
	if err != nil {
		s.internalError(c, err)
		return
	}
	items, err := l.BoxContents(c.Request.Context(), boxID)
	if err != nil {
		s.internalError(c, err)
		return
	}
	out := make([]boxComponent, 0, len(items))
	for _, it := range items {
		out = append(out, boxComponent{ID: it.ComponentTypeID, Name: it.Name, Quantity: it.Quantity})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) accept(c *gin.Context, op, message string) {
	observability.RecordLedgerOperation(op, types.ErrorCode(nil))
	c.JSON(http.StatusOK, ok(message))
}

// reject answers a failed ledger request. Domain rejections log at info,
// anything else at error.
func (s *Server) reject(c *gin.Context, op string, err error) {
	code := types.ErrorCode(err)
	if errors.Is(err, errBadBody) || isFieldError(err) {
		code = "bad_request"
	}
	observability.RecordLedgerOperation(op, code)

	event := s.logger.Info()
	if code == "error" {
		event = s.logger.Error()
	}
	event.
		Str("op", op).
		Str("result", code).
		Str("request_id", observability.GetRequestID(c)).
		Err(err).
		Msg("ledger operation rejected")

	c.JSON(http.StatusOK, failure(ledgerMessage(op, err)))
}

// ledgerMessage renders err in the wording clients of the API expect.
func ledgerMessage(op string, err error) string {
	var le *types.LedgerError
	hasDetail := errors.As(err, &le)

	switch {
	case errors.Is(err, types.ErrInvalidQuantity):
		return "Quantity must be positive"
	case errors.Is(err, types.ErrSameBoxTransfer):
		return "Cannot transfer to the same box"
	case errors.Is(err, types.ErrEntryNotFound):
		return "Component not found in box"
	case errors.Is(err, types.ErrCapacityExceeded) && hasDetail:
		if op == opTransfer {
			return fmt.Sprintf("Transfer would exceed capacity. Max: %d, Current in destination: %d", le.Max, le.Current)
		}
		return fmt.Sprintf("Cannot add %d %s(s). Maximum allowed: %d, Current: %d",
			le.Quantity, le.Component, le.Max, le.Current)
	case errors.Is(err, types.ErrInsufficientQuantity) && hasDetail:
		if op == opTransfer {
			return "Insufficient quantity in source box"
		}
		return fmt.Sprintf("Cannot remove %d items. Only %d available", le.Quantity, le.Current)
	default:
		return err.Error()
	}
}
