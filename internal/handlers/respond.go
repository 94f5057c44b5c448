package handler

import (
	"errors"
	"net/http"
	"strconv"

	"invoice-dashboard-backend/internal/apperr"
	"invoice-dashboard-backend/internal/services/invoicing"

	"github.com/gin-gonic/gin"
)

// pageParam reads ?page=, falling back to the first page.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func respondQueryError(c *gin.Context, err error) {
	_ = c.Error(err)
	var qe *apperr.QueryError
	if errors.As(err, &qe) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": qe.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// respondCommand maps a command result onto a response. ok is only used when
// the command succeeded.
func respondCommand(c *gin.Context, out invoicing.Outcome, err error, ok int, body gin.H) {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "details": ve.Violations})
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	case out.NotFound:
		c.JSON(http.StatusNotFound, gin.H{"message": out.Message})
	case !out.OK():
		c.JSON(http.StatusInternalServerError, gin.H{"message": out.Message})
	default:
		c.JSON(ok, body)
	}
}
