package handler

import (
	"net/http"

	"invoice-dashboard-backend/internal/services/reporting"

	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	queries *reporting.Service
}

func NewCustomerHandler(queries *reporting.Service) *CustomerHandler {
	return &CustomerHandler{queries: queries}
}

func (h *CustomerHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	query := c.Query("query")

	rows, err := h.queries.FetchFilteredCustomersPage(ctx, query, pageParam(c), reporting.DefaultPageSize)
	if err != nil {
		respondQueryError(c, err)
		return
	}
	pages, err := h.queries.FetchCustomersPageCount(ctx, query, reporting.DefaultPageSize)
	if err != nil {
		respondQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": rows, "total_pages": pages})
}

// Options feeds the customer select of the invoice forms.
func (h *CustomerHandler) Options(c *gin.Context) {
	rows, err := h.queries.FetchCustomersForSelect(c.Request.Context())
	if err != nil {
		respondQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
