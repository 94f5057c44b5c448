package handler

import (
	"net/http"

	"invoice-dashboard-backend/internal/services/reporting"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	queries *reporting.Service
}

func NewDashboardHandler(queries *reporting.Service) *DashboardHandler {
	return &DashboardHandler{queries: queries}
}

func (h *DashboardHandler) Cards(c *gin.Context) {
	summary, err := h.queries.FetchCardSummary(c.Request.Context())
	if err != nil {
		respondQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *DashboardHandler) LatestInvoices(c *gin.Context) {
	rows, err := h.queries.FetchLatestInvoices(c.Request.Context(), reporting.DefaultLatestLimit)
	if err != nil {
		respondQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Revenue amounts are whole dollars.
func (h *DashboardHandler) Revenue(c *gin.Context) {
	rows, err := h.queries.FetchRevenue(c.Request.Context())
	if err != nil {
		respondQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
