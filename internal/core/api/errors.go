package api

import (
	"errors"
	"net/http"

	"github.com/oakmoss/percolate/internal/types"
)

// compileStatus maps a compilation failure to an HTTP status and a
// metrics reason label. Malformed text is 400; text that parses but
// fails validation against the registered domains is 422.
func compileStatus(err error) (int, string) {
	switch {
	case errors.Is(err, types.ErrSyntax):
		return http.StatusBadRequest, "syntax"
	case errors.Is(err, types.ErrExpressionTooLarge):
		return http.StatusBadRequest, "limit"
	case errors.Is(err, types.ErrTooManySetValues):
		return http.StatusUnprocessableEntity, "limit"
	case errors.Is(err, types.ErrUnknownField):
		return http.StatusUnprocessableEntity, "unknown_field"
	case errors.Is(err, types.ErrTypeMismatch):
		return http.StatusUnprocessableEntity, "type_mismatch"
	case errors.Is(err, types.ErrOutOfRange):
		return http.StatusUnprocessableEntity, "out_of_range"
	case errors.Is(err, types.ErrInvalidOperator):
		return http.StatusUnprocessableEntity, "invalid_operator"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
