package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/solmount/enquiry-api/internal/domain"
	"gorm.io/gorm"
)

type QuotationRepository struct {
	db *gorm.DB
}

func NewQuotationRepository(db *gorm.DB) *QuotationRepository {
	return &QuotationRepository{db: db}
}

// Create persists a quotation together with its line items
func (r *QuotationRepository) Create(ctx context.Context, quotation *domain.Quotation) error {
	return r.db.WithContext(ctx).Create(quotation).Error
}

func (r *QuotationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quotation, error) {
	var quotation domain.Quotation
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Items").
		First(&quotation, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *QuotationRepository) ListByEnquiry(ctx context.Context, enquiryID uuid.UUID) ([]domain.Quotation, error) {
	var quotations []domain.Quotation
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("enquiry_id = ?", enquiryID).
		Order("created_at DESC").
		Find(&quotations).Error
	return quotations, err
}

func (r *QuotationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.DocumentStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.Quotation{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// CountForYear returns the number of quotations created in a calendar year,
// used for sequential document numbering
func (r *QuotationRepository) CountForYear(ctx context.Context, year int) (int64, error) {
	var count int64
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	err := r.db.WithContext(ctx).
		Model(&domain.Quotation{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	return count, err
}
