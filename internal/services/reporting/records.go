package reporting

import (
	"time"

	"invoice-dashboard-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Amounts are always cents. Records whose listing is shown as-is also carry
// the formatted *Display strings.

type CardSummary struct {
	NumberOfInvoices    int64  `json:"number_of_invoices"`
	NumberOfCustomers   int64  `json:"number_of_customers"`
	TotalPaid           int64  `json:"total_paid"`
	TotalPending        int64  `json:"total_pending"`
	TotalPaidDisplay    string `json:"total_paid_display"`
	TotalPendingDisplay string `json:"total_pending_display"`
}

type LatestInvoice struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	ImageURL      string    `json:"image_url"`
	Amount        int64     `json:"amount"`
	AmountDisplay string    `json:"amount_display"`
}

type InvoiceListItem struct {
	ID         uuid.UUID            `json:"id"`
	CustomerID uuid.UUID            `json:"customer_id"`
	Name       string               `json:"name"`
	Email      string               `json:"email"`
	ImageURL   string               `json:"image_url"`
	Amount     int64                `json:"amount"`
	Date       string               `json:"date"`
	Status     models.InvoiceStatus `json:"status"`
}

// InvoiceForm prefills the edit form. Amount is in dollars.
type InvoiceForm struct {
	ID         uuid.UUID            `json:"id"`
	CustomerID uuid.UUID            `json:"customer_id"`
	Amount     decimal.Decimal      `json:"amount"`
	Status     models.InvoiceStatus `json:"status"`
}

type CustomerOption struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type CustomerTableRow struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	ImageURL            string    `json:"image_url"`
	TotalInvoices       int64     `json:"total_invoices"`
	TotalPending        int64     `json:"total_pending"`
	TotalPaid           int64     `json:"total_paid"`
	TotalPendingDisplay string    `json:"total_pending_display"`
	TotalPaidDisplay    string    `json:"total_paid_display"`
}

func isoDate(d datatypes.Date) string {
	return time.Time(d).Format(time.DateOnly)
}
