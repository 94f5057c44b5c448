package handler

import (
	"net/http"

	"invoice-dashboard-backend/internal/currency"
	"invoice-dashboard-backend/internal/services/invoicing"
	"invoice-dashboard-backend/internal/services/reporting"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	commands *invoicing.Service
	queries  *reporting.Service
}

func NewInvoiceHandler(commands *invoicing.Service, queries *reporting.Service) *InvoiceHandler {
	return &InvoiceHandler{commands: commands, queries: queries}
}

type invoiceListItem struct {
	reporting.InvoiceListItem
	AmountDisplay string `json:"amount_display"`
}

// List serves one page of the invoices table.
func (h *InvoiceHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	query := c.Query("query")

	rows, err := h.queries.FetchFilteredInvoices(ctx, query, pageParam(c), reporting.DefaultPageSize)
	if err != nil {
		respondQueryError(c, err)
		return
	}
	pages, err := h.queries.FetchInvoicesPageCount(ctx, query, reporting.DefaultPageSize)
	if err != nil {
		respondQueryError(c, err)
		return
	}

	items := make([]invoiceListItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, invoiceListItem{InvoiceListItem: r, AmountDisplay: currency.Format(r.Amount)})
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total_pages": pages})
}

func (h *InvoiceHandler) Get(c *gin.Context) {
	form, err := h.queries.FetchInvoiceByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondQueryError(c, err)
		return
	}
	if form == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
		return
	}
	c.JSON(http.StatusOK, form)
}

func (h *InvoiceHandler) Create(c *gin.Context) {
	var in invoicing.InvoiceInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	out, err := h.commands.CreateInvoice(c.Request.Context(), in)
	respondCommand(c, out, err, http.StatusCreated, gin.H{"message": "invoice created"})
}

func (h *InvoiceHandler) Update(c *gin.Context) {
	var in invoicing.InvoiceInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	out, err := h.commands.UpdateInvoice(c.Request.Context(), c.Param("id"), in)
	respondCommand(c, out, err, http.StatusOK, gin.H{"message": "invoice updated"})
}

func (h *InvoiceHandler) Delete(c *gin.Context) {
	out := h.commands.DeleteInvoice(c.Request.Context(), c.Param("id"))
	respondCommand(c, out, nil, http.StatusOK, gin.H{"message": "invoice deleted"})
}
