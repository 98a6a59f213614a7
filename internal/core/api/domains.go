package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oakmoss/percolate/internal/types"
)

type createDomainRequest struct {
	Name     string `json:"name" binding:"required"`
	Kind     string `json:"kind" binding:"required"`
	Nullable bool   `json:"nullable"`
	Min      *int64 `json:"min"`
	Max      *int64 `json:"max"`
}

type domainResponse struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Nullable bool   `json:"nullable"`
	Min      *int64 `json:"min,omitempty"`
	Max      *int64 `json:"max,omitempty"`
}

// handleCreateDomain registers a field domain. The engine validates
// first; the row is persisted only after the engine accepts, so a
// replayed corpus never contains a domain the engine would reject.
func (s *Service) handleCreateDomain(c *gin.Context) {
	var req createDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind := types.ParseDomainKind(req.Kind)
	if kind == types.DomainUnspecified {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown domain kind: " + req.Kind})
		return
	}

	var min, max int64
	if kind.Integer() {
		if req.Min == nil || req.Max == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "integer domains require min and max"})
			return
		}
		min, max = *req.Min, *req.Max
	}

	var err error
	switch kind {
	case types.DomainSymbol:
		err = s.engine.AddSymbolDomain(req.Name, req.Nullable)
	case types.DomainInteger:
		err = s.engine.AddIntegerDomain(req.Name, req.Nullable, min, max)
	case types.DomainSymbolList:
		err = s.engine.AddSymbolListDomain(req.Name, req.Nullable)
	case types.DomainIntegerList:
		err = s.engine.AddIntegerListDomain(req.Name, req.Nullable, min, max)
	}
	if err != nil {
		if errors.Is(err, types.ErrDuplicateDomain) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, types.ErrInvalidRange) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.queries.Exec("insert-domain",
		req.Name, kind.String(), req.Nullable, req.Min, req.Max, now); err != nil {
		// Engine already holds the domain; the registration survives
		// until restart but will not replay. Surface the store failure.
		s.logger.Error("domain persisted to engine but not to store",
			"domain", req.Name, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to persist domain"})
		return
	}

	c.JSON(http.StatusCreated, domainResponse{
		Name:     req.Name,
		Kind:     kind.String(),
		Nullable: req.Nullable,
		Min:      req.Min,
		Max:      req.Max,
	})
}

// handleListDomains returns registered domains sorted by name.
func (s *Service) handleListDomains(c *gin.Context) {
	domains := s.engine.Domains()

	out := make([]domainResponse, 0, len(domains))
	for _, d := range domains {
		resp := domainResponse{
			Name:     d.Name,
			Kind:     d.Kind.String(),
			Nullable: d.Nullable,
		}
		if d.Kind.Integer() {
			min, max := d.Min, d.Max
			resp.Min, resp.Max = &min, &max
		}
		out = append(out, resp)
	}

	c.JSON(http.StatusOK, gin.H{"domains": out})
}
