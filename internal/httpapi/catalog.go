package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mesh-intelligence/kitbox/internal/observability"
	"github.com/mesh-intelligence/kitbox/pkg/types"
)

func (s *Server) listBoxes(c *gin.Context) {
	tbl, err := s.inv.GetTable(types.TableBoxes)
	if err != nil {
		s.internalError(c, err)
		return
	}
	rows, err := tbl.Fetch(nil)
	if err != nil {
		s.internalError(c, err)
		return
	}
	boxes := make([]*types.Box, 0, len(rows))
	for _, r := range rows {
		boxes = append(boxes, r.(*types.Box))
	}
	c.JSON(http.StatusOK, boxes)
}

func (s *Server) createBox(c *gin.Context) {
	f, err := bindFields(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, failure(err.Error()))
		return
	}
	box := &types.Box{Name: f.string("name"), Description: f.string("description")}

	tbl, err := s.inv.GetTable(types.TableBoxes)
	if err != nil {
		s.internalError(c, err)
		return
	}
	id, err := tbl.Set("", box)
	switch {
	case errors.Is(err, types.ErrDuplicateName):
		c.JSON(http.StatusOK, failure("Box name already exists!"))
		return
	case errors.Is(err, types.ErrInvalidName):
		c.JSON(http.StatusOK, failure("Box name is required"))
		return
	case err != nil:
		s.internalError(c, err)
		return
	}

	s.logger.Info().Str("box_id", id).Str("name", box.Name).Msg("box created")
	res := ok("Box added successfully!")
	res.ID = box.ID
	c.JSON(http.StatusOK, res)
}

// boxDetail is the GET /api/boxes/:box_id response.
type boxDetail struct {
	Box        *types.Box      `json:"box"`
	Components []types.BoxItem `json:"components"`
}

func (s *Server) showBox(c *gin.Context) {
	boxID, err := strconv.ParseInt(c.Param("box_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, failure("Box not found"))
		return
	}
	tbl, err := s.inv.GetTable(types.TableBoxes)
	if err != nil {
		s.internalError(c, err)
		return
	}
	got, err := tbl.Get(types.FormatID(boxID))
	if errors.Is(err, types.ErrNotFound) || errors.Is(err, types.ErrInvalidID) {
		c.JSON(http.StatusNotFound, failure("Box not found"))
		return
	}
	if err != nil {
		s.internalError(c, err)
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
	c.JSON(http.StatusOK, boxDetail{Box: got.(*types.Box), Components: items})
}

func (s *Server) deleteBox(c *gin.Context) {
	tbl, err := s.inv.GetTable(types.TableBoxes)
	if err != nil {
		s.internalError(c, err)
		return
	}
	err = tbl.Delete(c.Param("box_id"))
	if errors.Is(err, types.ErrNotFound) || errors.Is(err, types.ErrInvalidID) {
		c.JSON(http.StatusNotFound, failure("Box not found"))
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	s.logger.Info().Str("box_id", c.Param("box_id")).Msg("box deleted")
	c.JSON(http.StatusOK, ok("Box deleted successfully!"))
}

func (s *Server) listComponentTypes(c *gin.Context) {
	filter := map[string]any{}
	if category := c.Query("category"); category != "" {
		filter["category"] = category
	}
	tbl, err := s.inv.GetTable(types.TableComponentTypes)
	if err != nil {
		s.internalError(c, err)
		return
	}
	rows, err := tbl.Fetch(filter)
	if err != nil {
		s.internalError(c, err)
		return
	}
	out := make([]*types.ComponentType, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.(*types.ComponentType))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createComponentType(c *gin.Context) {
	f, err := bindFields(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, failure(err.Error()))
		return
	}
	capacity, err := f.int("max_per_box")
	if err != nil {
		c.JSON(http.StatusOK, failure(err.Error()))
		return
	}
	ct := &types.ComponentType{
		Name:        f.string("name"),
		Description: f.string("description"),
		Category:    f.string("category"),
		MaxPerBox:   capacity,
	}

	tbl, err := s.inv.GetTable(types.TableComponentTypes)
	if err != nil {
		s.internalError(c, err)
		return
	}
	id, err := tbl.Set("", ct)
	switch {
	case errors.Is(err, types.ErrDuplicateName):
		c.JSON(http.StatusOK, failure("Component type already exists!"))
		return
	case errors.Is(err, types.ErrInvalidName):
		c.JSON(http.StatusOK, failure("Component name is required"))
		return
	case errors.Is(err, types.ErrInvalidCapacity):
		c.JSON(http.StatusOK, failure("Max per box must be positive"))
		return
	case err != nil:
		s.internalError(c, err)
		return
	}

	s.logger.Info().Str("component_type_id", id).Str("name", ct.Name).Msg("component type created")
	res := ok("Component type added successfully!")
	res.ID = ct.ID
	c.JSON(http.StatusOK, res)
}

// searchResponse is the GET /api/search response.
type searchResponse struct {
	Query   string            `json:"query"`
	Results []types.SearchHit `json:"results"`
}

func (s *Server) search(c *gin.Context) {
	q := c.Query("q")
	l, err := s.inv.Ledger()
	if err != nil {
		s.internalError(c, err)
		return
	}
	hits, err := l.Search(c.Request.Context(), q)
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, searchResponse{Query: q, Results: hits})
}

func (s *Server) summary(c *gin.Context) {
	l, err := s.inv.Ledger()
	if err != nil {
		s.internalError(c, err)
		return
	}
	sum, err := l.Summary(c.Request.Context())
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *Server) internalError(c *gin.Context, err error) {
	s.logger.Error().
		Str("request_id", observability.GetRequestID(c)).
		Str("path", c.FullPath()).
		Err(err).
		Msg("request failed")
	c.JSON(http.StatusInternalServerError, failure("internal error"))
}
