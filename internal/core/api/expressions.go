package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oakmoss/percolate/internal/types"
)

// ID is a pointer so that id 0, a legal expression id, is
// distinguishable from a missing field.
type createExpressionRequest struct {
	ID         *int64 `json:"id" binding:"required"`
	Expression string `json:"expression" binding:"required"`
}

// handleCreateExpression compiles and inserts one expression. The
// engine validates and interns first; the row is persisted only after
// the engine accepts, with the insert rolled back if the store fails.
func (s *Service) handleCreateExpression(c *gin.Context) {
	var req createExpressionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := *req.ID

	if err := s.engine.Insert(id, req.Expression); err != nil {
		if errors.Is(err, types.ErrDuplicateID) {
			expressionOps.WithLabelValues("insert", "rejected").Inc()
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}

		status, reason := compileStatus(err)
		compileErrors.WithLabelValues(reason).Inc()
		expressionOps.WithLabelValues("insert", "rejected").Inc()

		resp := gin.H{"error": err.Error()}
		var synErr *types.SyntaxError
		if errors.As(err, &synErr) {
			resp["position"] = synErr.Pos
		}
		c.JSON(status, resp)
		return
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.queries.Exec("insert-expression", id, req.Expression, now); err != nil {
		// Roll the engine back so memory and store stay in sync.
		_ = s.engine.Remove(id)
		expressionOps.WithLabelValues("insert", "error").Inc()
		s.logger.Error("failed to persist expression", "id", id, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to persist expression"})
		return
	}

	expressionOps.WithLabelValues("insert", "ok").Inc()
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// handleDeleteExpression removes one expression by id.
func (s *Service) handleDeleteExpression(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expression id must be an integer"})
		return
	}

	if err := s.engine.Remove(id); err != nil {
		if errors.Is(err, types.ErrUnknownID) {
			expressionOps.WithLabelValues("remove", "rejected").Inc()
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		expressionOps.WithLabelValues("remove", "error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if _, err := s.queries.Exec("delete-expression", id); err != nil {
		// Engine already dropped it; the row replays on restart only if
		// this delete is retried. Log loudly and report the store failure.
		expressionOps.WithLabelValues("remove", "error").Inc()
		s.logger.Error("expression removed from engine but not from store",
			"id", id, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to persist removal"})
		return
	}

	expressionOps.WithLabelValues("remove", "ok").Inc()
	c.JSON(http.StatusOK, gin.H{"id": id})
}
