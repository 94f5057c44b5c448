package repository

import (
	"context"

	"invoice-dashboard-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerOption struct {
	ID   uuid.UUID
	Name string
}

// CustomerTotals is a customer with aggregates over its invoices.
type CustomerTotals struct {
	ID            uuid.UUID
	Name          string
	Email         string
	ImageURL      string
	TotalInvoices int64
	TotalPending  int64
	TotalPaid     int64
}

var customerSearchColumns = []string{"c.name", "c.email"}

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).Count(&n).Error
	return n, err
}

// Options lists every customer by name for select inputs.
func (r *CustomerRepository) Options(ctx context.Context) ([]CustomerOption, error) {
	var rows []CustomerOption
	err := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Select("id, name").
		Order("name ASC").
		Order("id ASC").
		Scan(&rows).Error
	return rows, err
}

// SearchWithTotals returns one page of customers whose name or email contains
// query, each with invoice count and pending/paid sums.
func (r *CustomerRepository) SearchWithTotals(ctx context.Context, query string, limit, offset int) ([]CustomerTotals, error) {
	cond, args := anyContains(r.db, query, customerSearchColumns...)
	var rows []CustomerTotals
	err := r.db.WithContext(ctx).
		Table("customers AS c").
		Select(`c.id, c.name, c.email, c.image_url,
			COUNT(i.id) AS total_invoices,
			CAST(COALESCE(SUM(CASE WHEN i.status = 'pending' THEN i.amount ELSE 0 END), 0) AS BIGINT) AS total_pending,
			CAST(COALESCE(SUM(CASE WHEN i.status = 'paid' THEN i.amount ELSE 0 END), 0) AS BIGINT) AS total_paid`).
		Joins("LEFT JOIN invoices i ON i.customer_id = c.id").
		Where(cond, args...).
		Group("c.id, c.name, c.email, c.image_url").
		Order("c.name ASC").
		Order("c.id ASC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	return rows, err
}

func (r *CustomerRepository) CountMatching(ctx context.Context, query string) (int64, error) {
	cond, args := anyContains(r.db, query, customerSearchColumns...)
	var n int64
	err := r.db.WithContext(ctx).Table("customers AS c").Where(cond, args...).Count(&n).Error
	return n, err
}
