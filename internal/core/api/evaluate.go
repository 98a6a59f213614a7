package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oakmoss/percolate/internal/engine"
)

type evaluateRequest struct {
	Event map[string]json.RawMessage `json:"event"`
}

type evaluateResponse struct {
	Matches []int64 `json:"matches"`
}

// handleEvaluate builds an event from the request body and returns the
// ids of all matching expressions in ascending order. Evaluation is
// read-only; unknown symbol values are accepted and simply never match.
func (s *Service) handleEvaluate(c *gin.Context) {
	start := time.Now()

	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		evaluateLatency.WithLabelValues("invalid_event").Observe(time.Since(start).Seconds())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Event == nil {
		evaluateLatency.WithLabelValues("invalid_event").Observe(time.Since(start).Seconds())
		c.JSON(http.StatusBadRequest, gin.H{"error": "event is required"})
		return
	}

	builder := s.engine.NewEvent()
	for field, raw := range req.Event {
		if err := setEventField(builder, field, raw); err != nil {
			evaluateLatency.WithLabelValues("invalid_event").Observe(time.Since(start).Seconds())
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": fmt.Sprintf("field %q: %s", field, err),
			})
			return
		}
	}

	matches := s.engine.Evaluate(builder.Build())

	evaluateLatency.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	evaluateMatches.Observe(float64(len(matches)))

	c.JSON(http.StatusOK, evaluateResponse{Matches: matches})
}

// setEventField decodes one JSON field value into the builder. Strings
// map to symbols, numbers to integers, and homogeneous arrays to the
// matching list kind. The builder enforces the registered domain.
func setEventField(builder *engine.EventBuilder, field string, raw json.RawMessage) error {
	var value interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil {
		return err
	}

	switch v := value.(type) {
	case string:
		return builder.SetSymbol(field, v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return fmt.Errorf("value must be an integer: %w", err)
		}
		return builder.SetInteger(field, n)
	case []interface{}:
		return setEventList(builder, field, v)
	default:
		return fmt.Errorf("value must be a string, integer, or array")
	}
}

// setEventList decodes a JSON array into a symbol or integer list. The
// first element decides the element type; mixed arrays are rejected.
func setEventList(builder *engine.EventBuilder, field string, elems []interface{}) error {
	if len(elems) == 0 {
		// An empty array carries no element type. Try symbols first so
		// empty? works on symbol lists; fall back to integer lists.
		if err := builder.SetSymbolList(field, nil); err == nil {
			return nil
		}
		return builder.SetIntegerList(field, nil)
	}

	switch elems[0].(type) {
	case string:
		values := make([]string, 0, len(elems))
		for _, e := range elems {
			s, ok := e.(string)
			if !ok {
				return fmt.Errorf("array mixes strings and other types")
			}
			values = append(values, s)
		}
		return builder.SetSymbolList(field, values)
	case json.Number:
		values := make([]int64, 0, len(elems))
		for _, e := range elems {
			num, ok := e.(json.Number)
			if !ok {
				return fmt.Errorf("array mixes numbers and other types")
			}
			n, err := num.Int64()
			if err != nil {
				return fmt.Errorf("array element must be an integer: %w", err)
			}
			values = append(values, n)
		}
		return builder.SetIntegerList(field, values)
	default:
		return fmt.Errorf("array elements must be strings or integers")
	}
}
