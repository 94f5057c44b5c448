package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// Valid reports whether s is one of the two persisted statuses.
func (s InvoiceStatus) Valid() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusPaid
}

// Invoice amounts are stored in cents.
type Invoice struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID uuid.UUID      `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer   Customer       `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"-"`
	Amount     int64          `gorm:"not null" json:"amount"`
	Status     InvoiceStatus  `gorm:"type:varchar(16);not null;index" json:"status"`
	Date       datatypes.Date `gorm:"not null;index" json:"date"`
}
