package repository

import (
	"context"

	"invoice-dashboard-backend/internal/models"

	"gorm.io/gorm"
)

type RevenueRepository struct {
	db *gorm.DB
}

func NewRevenueRepository(db *gorm.DB) *RevenueRepository {
	return &RevenueRepository{db: db}
}

func (r *RevenueRepository) All(ctx context.Context) ([]models.Revenue, error) {
	var rows []models.Revenue
	err := r.db.WithContext(ctx).Find(&rows).Error
	return rows, err
}
