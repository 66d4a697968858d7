// Package api exposes the inspection UI's HTTP surface. It is a pure
// consumer of the result database's query/select/materialize contract and
// translates selection-engine failures into user-visible error responses.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/helios-lab/project-helios/internal/rdb"
)

// Service wires the inspection handlers to a result database.
type Service struct {
	db      *rdb.Database
	metrics *Metrics
}

// NewService creates the inspection API service.
func NewService(db *rdb.Database) *Service {
	return &Service{
		db:      db,
		metrics: NewMetrics(),
	}
}

// RegisterRoutes registers the inspection endpoints on the Gin engine.
func (s *Service) RegisterRoutes(r *gin.Engine) {
	v1 := r.Group("/v1")
	{
		v1.GET("/entries", s.handleListEntries)
		v1.GET("/entries/:id", s.handleGetEntry)
		v1.GET("/entries/:id/components", s.handleListComponents)
		v1.GET("/entries/:id/components/:name", s.handleGetComponent)
		v1.POST("/entries/:id/select", s.handleSelect)
		v1.GET("/entries/:id/tables", s.handleListTables)
		v1.GET("/entries/:id/tables/:name", s.handleGetTable)
		v1.GET("/entries/:id/diagram", s.handleDiagram)
	}
}

// entry resolves an entry by id, falling back to the registered name so the
// UI can use human-readable URLs.
func (s *Service) entry(idOrName string) (*rdb.Entry, error) {
	if e, err := s.db.Get(idOrName); err == nil {
		return e, nil
	}
	return s.db.GetByName(idOrName)
}
