package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/schedmate/internal/dashboard"
	"github.com/BruksfildServices01/schedmate/internal/httperr"
)

// writeMutationError translates a dashboard mutation failure into the
// JSON error envelope. Anything else is an internal error.
func writeMutationError(c *gin.Context, err error) {
	merr, ok := dashboard.AsMutationError(err)
	if !ok {
		_ = c.Error(err)
		httperr.Internal(c, "internal_error", "Something went wrong. Please try again.")
		return
	}

	code := string(merr.Kind)
	switch merr.Kind {
	case dashboard.KindValidation:
		httperr.BadRequest(c, code, merr.Message)
	case dashboard.KindNotFound:
		httperr.NotFound(c, code, merr.Message)
	case dashboard.KindUnauthenticated:
		httperr.Unauthorized(c, code, merr.Message)
	case dashboard.KindConfirmation:
		httperr.Write(c, http.StatusPreconditionRequired, code, merr.Message)
	case dashboard.KindUnavailable:
		httperr.Write(c, http.StatusServiceUnavailable, code, merr.Message)
	default:
		_ = c.Error(merr)
		httperr.WriteRetryable(c, http.StatusBadGateway, code, merr.Message)
	}
}
