package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dealership/pkg/apperror"
	"dealership/pkg/response"
)

// respondError maps the service error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is an internal error and keeps its message out of the
// response body.
func respondError(c *gin.Context, err error) {
	var (
		notFound  *apperror.NotFoundError
		duplicate *apperror.DuplicateError
		rule      *apperror.BusinessRuleError
		invalidOp *apperror.InvalidOperationError
	)
	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	case errors.As(err, &duplicate):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
	case errors.As(err, &rule):
		c.JSON(http.StatusUnprocessableEntity, response.Error(http.StatusUnprocessableEntity, err.Error()))
	case errors.As(err, &invalidOp):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "internal error"))
	}
}

// actor identifies who performs a mutation for the audit trail. Upstream
// gateways set X-Actor; everything else is attributed to the system.
func actor(c *gin.Context) string {
	if a := c.GetHeader("X-Actor"); a != "" {
		return a
	}
	return "system"
}
