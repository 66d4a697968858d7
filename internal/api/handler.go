package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	coreerrors "github.com/helios-lab/project-helios/internal/core/errors"
	"github.com/helios-lab/project-helios/internal/diagram"
	"github.com/helios-lab/project-helios/internal/query"
	"github.com/helios-lab/project-helios/internal/rdb"
)

// EntryResponse is the list/detail payload for entries.
type EntryResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Snapshots  int    `json:"snapshots"`
	Components int    `json:"components"`
	Tables     int    `json:"tables"`
}

// ComponentResponse is the detail payload for one component.
type ComponentResponse struct {
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes"`
	Modes      []string          `json:"modes"`
}

// SelectRequest is the request body for POST /v1/entries/{id}/select.
// Either Components or Query must be set; Query targets are column-ordered
// by identifier, Components keep the given order.
type SelectRequest struct {
	Components    []string `json:"components,omitempty"`
	Query         string   `json:"query,omitempty"`
	Mode          string   `json:"mode"`
	Sign          *float64 `json:"sign,omitempty"`
	Buckets       *int     `json:"buckets,omitempty"`
	MaterializeAs string   `json:"materialize_as,omitempty"`
}

// TableResponse is the table-shaped payload for selections and materialized
// tables.
type TableResponse struct {
	Mode      string       `json:"mode"`
	Sign      float64      `json:"sign"`
	Buckets   int          `json:"buckets,omitempty"`
	RowLabels []string     `json:"row_labels"`
	Columns   []rdb.Column `json:"columns"`
	Empty     bool         `json:"empty"`
}

func toTableResponse(r *rdb.Result) TableResponse {
	return TableResponse{
		Mode:      r.Mode,
		Sign:      r.Sign,
		Buckets:   r.Buckets,
		RowLabels: r.RowLabels(),
		Columns:   r.Columns,
		Empty:     r.Empty(),
	}
}

func (s *Service) handleListEntries(c *gin.Context) {
	entries := s.db.Entries()
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	c.JSON(http.StatusOK, gin.H{"entries": out})
}

func (s *Service) handleGetEntry(c *gin.Context) {
	e, err := s.entry(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toEntryResponse(e))
}

func (s *Service) handleListComponents(c *gin.Context) {
	e, err := s.entry(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	predicate := c.Query("query")
	if predicate == "" {
		c.JSON(http.StatusOK, gin.H{"components": e.Metadata().Components()})
		return
	}

	matched, err := e.Query(predicate)
	if err != nil {
		s.metrics.QueriesTotal.WithLabelValues("error").Inc()
		writeError(c, err)
		return
	}
	s.metrics.QueriesTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{"components": matched.Sorted()})
}

func (s *Service) handleGetComponent(c *gin.Context) {
	e, err := s.entry(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	name := c.Param("name")
	attrs, err := e.Metadata().AttributesOf(name)
	if err != nil {
		writeError(c, err)
		return
	}
	modes, err := e.Modes(name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ComponentResponse{Name: name, Attributes: attrs, Modes: modes})
}

func (s *Service) handleSelect(c *gin.Context) {
	e, err := s.entry(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, coreerrors.ErrorResponse{
			ErrorType: coreerrors.HttpInvalidJsonError,
			Message:   err.Error(),
		})
		return
	}
	if req.Mode == "" {
		c.JSON(http.StatusBadRequest, coreerrors.ErrorResponse{
			ErrorType: coreerrors.HttpInvalidJsonError,
			Message:   "mode is required",
		})
		return
	}
	if len(req.Components) == 0 && req.Query == "" {
		c.JSON(http.StatusBadRequest, coreerrors.ErrorResponse{
			ErrorType: coreerrors.HttpInvalidJsonError,
			Message:   "either components or query is required",
		})
		return
	}

	var opts []rdb.SelectOption
	if req.Sign != nil {
		opts = append(opts, rdb.WithSign(*req.Sign))
	}
	if req.Buckets != nil {
		opts = append(opts, rdb.WithBuckets(*req.Buckets))
	}

	var result *rdb.Result
	if req.Query != "" {
		matched, err := e.Query(req.Query)
		if err != nil {
			s.metrics.SelectionsTotal.WithLabelValues("error").Inc()
			writeError(c, err)
			return
		}
		result, err = e.SelectSet(matched, req.Mode, opts...)
		if err != nil {
			s.metrics.SelectionsTotal.WithLabelValues("error").Inc()
			writeError(c, err)
			return
		}
	} else {
		result, err = e.Select(req.Components, req.Mode, opts...)
		if err != nil {
			s.metrics.SelectionsTotal.WithLabelValues("error").Inc()
			writeError(c, err)
			return
		}
	}
	s.metrics.SelectionsTotal.WithLabelValues("ok").Inc()

	if req.MaterializeAs != "" {
		if err := result.ToTable(req.MaterializeAs); err != nil {
			writeError(c, err)
			return
		}
		s.metrics.MaterializationsTotal.Inc()
	}

	c.JSON(http.StatusOK, toTableResponse(result))
}

func (s *Service) handleListTables(c *gin.Context) {
	e, err := s.entry(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tables": e.Tables()})
}

func (s *Service) handleGetTable(c *gin.Context) {
	e, err := s.entry(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	name := c.Param("name")
	result, ok := e.Table(name)
	if !ok {
		c.JSON(http.StatusNotFound, coreerrors.ErrorResponse{
			ErrorType: coreerrors.HttpNotFoundError,
			Message:   "no materialized table named " + name,
		})
		return
	}
	c.JSON(http.StatusOK, toTableResponse(result))
}

func (s *Service) handleDiagram(c *gin.Context) {
	e, err := s.entry(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	sketch, err := diagram.FromEntry(e)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, coreerrors.ErrorResponse{
			ErrorType: coreerrors.HttpDiagramError,
			Message:   err.Error(),
		})
		return
	}

	c.Header("Content-Type", "application/xml")
	c.Header("Content-Disposition", `attachment; filename="`+e.Name()+`.drawio"`)
	c.Status(http.StatusOK)
	if err := sketch.WriteTo(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

func toEntryResponse(e *rdb.Entry) EntryResponse {
	return EntryResponse{
		ID:         e.ID(),
		Name:       e.Name(),
		Snapshots:  len(e.Snapshots()),
		Components: len(e.Metadata().Components()),
		Tables:     len(e.Tables()),
	}
}

// writeError maps selection-engine failures onto HTTP error responses. The
// UI never sees raw internal errors.
func writeError(c *gin.Context, err error) {
	var queryErr *query.Error
	var missingErr *rdb.MissingSeriesError
	var aggErr *rdb.AggregationError

	switch {
	case errors.As(err, &queryErr):
		c.JSON(http.StatusBadRequest, coreerrors.ErrorResponse{
			ErrorType: coreerrors.HttpInvalidQueryError,
			Message:   queryErr.Error(),
		})
	case errors.As(err, &missingErr):
		c.JSON(http.StatusNotFound, coreerrors.ErrorResponse{
			ErrorType: coreerrors.HttpMissingSeriesError,
			Message:   missingErr.Error(),
			Details: map[string]string{
				"component": missingErr.Component,
				"mode":      missingErr.Mode,
			},
		})
	case errors.As(err, &aggErr):
		c.JSON(http.StatusBadRequest, coreerrors.ErrorResponse{
			ErrorType: coreerrors.HttpInvalidAggregationError,
			Message:   aggErr.Error(),
		})
	case errors.Is(err, rdb.ErrEntryNotFound), errors.Is(err, rdb.ErrComponentNotFound):
		c.JSON(http.StatusNotFound, coreerrors.ErrorResponse{
			ErrorType: coreerrors.HttpNotFoundError,
			Message:   err.Error(),
		})
	case errors.Is(err, rdb.ErrDuplicateEntry):
		c.JSON(http.StatusConflict, coreerrors.ErrorResponse{
			ErrorType: coreerrors.HttpDuplicateEntryError,
			Message:   err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, coreerrors.ErrorResponse{
			ErrorType: coreerrors.HttpInternalError,
			Message:   err.Error(),
		})
	}
}
