package repository

import (
	"context"
	"errors"

	"invoice-dashboard-backend/internal/apperr"
	"invoice-dashboard-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceRow is an invoice joined with its customer.
type InvoiceRow struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Amount     int64
	Date       datatypes.Date
	Status     models.InvoiceStatus
	Name       string
	Email      string
	ImageURL   string
}

type StatusTotal struct {
	Status models.InvoiceStatus
	Count  int64
	Sum    int64
}

// Columns matched by the invoice search box.
var invoiceSearchColumns = []string{
	"c.name",
	"c.email",
	"CAST(i.amount AS TEXT)",
	"CAST(i.date AS TEXT)",
	"i.status",
}

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(inv).Error
}

// Update rewrites customer, amount and status of one invoice and returns the
// number of rows touched.
func (r *InvoiceRepository) Update(ctx context.Context, id, customerID uuid.UUID, amount int64, status models.InvoiceStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"customer_id": customerID,
			"amount":      amount,
			"status":      status,
		})
	return result.RowsAffected, result.Error
}

func (r *InvoiceRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Invoice{})
	return result.RowsAffected, result.Error
}

// GetByID returns apperr.ErrNotFound when no invoice has id.
func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *InvoiceRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("invoices AS i").
		Joins("JOIN customers c ON c.id = i.customer_id")
}

const invoiceRowColumns = "i.id, i.customer_id, i.amount, i.date, i.status, c.name, c.email, c.image_url"

// Latest returns the newest invoices, newest first. Equal dates fall back to id descending.
func (r *InvoiceRepository) Latest(ctx context.Context, limit int) ([]InvoiceRow, error) {
	var rows []InvoiceRow
	err := r.joined(ctx).
		Select(invoiceRowColumns).
		Order("i.date DESC").
		Order("i.id DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// Search returns one page of invoices whose customer name, email, amount,
// date or status contains query, ignoring case.
func (r *InvoiceRepository) Search(ctx context.Context, query string, limit, offset int) ([]InvoiceRow, error) {
	cond, args := anyContains(r.db, query, invoiceSearchColumns...)
	var rows []InvoiceRow
	err := r.joined(ctx).
		Select(invoiceRowColumns).
		Where(cond, args...).
		Order("i.date DESC").
		Order("i.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	return rows, err
}

// CountMatching counts the rows Search would page through.
func (r *InvoiceRepository) CountMatching(ctx context.Context, query string) (int64, error) {
	cond, args := anyContains(r.db, query, invoiceSearchColumns...)
	var n int64
	err := r.joined(ctx).Where(cond, args...).Count(&n).Error
	return n, err
}

func (r *InvoiceRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Invoice{}).Count(&n).Error
	return n, err
}

// TotalsByStatus returns invoice count and amount sum per status. Statuses
// with no invoices are absent.
func (r *InvoiceRepository) TotalsByStatus(ctx context.Context) ([]StatusTotal, error) {
	var rows []StatusTotal
	err := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Select("status, COUNT(*) AS count, CAST(COALESCE(SUM(amount), 0) AS BIGINT) AS sum").
		Group("status").
		Scan(&rows).Error
	return rows, err
}
