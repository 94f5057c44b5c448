package models

// Revenue is kept in whole dollars, unlike Invoice.Amount.
type Revenue struct {
	Month   string `gorm:"primaryKey;size:3" json:"month"`
	Revenue int64  `gorm:"not null" json:"revenue"`
}
