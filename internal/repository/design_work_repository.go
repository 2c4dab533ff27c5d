package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/solmount/enquiry-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DesignWorkRepository struct {
	db *gorm.DB
}

func NewDesignWorkRepository(db *gorm.DB) *DesignWorkRepository {
	return &DesignWorkRepository{db: db}
}

func (r *DesignWorkRepository) Create(ctx context.Context, work *domain.DesignWork) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(work).Error
}

func (r *DesignWorkRepository) GetByEnquiry(ctx context.Context, enquiryID uuid.UUID) (*domain.DesignWork, error) {
	var work domain.DesignWork
	err := r.db.WithContext(ctx).
		Preload("Designer").
		First(&work, "enquiry_id = ?", enquiryID).Error
	if err != nil {
		return nil, err
	}
	return &work, nil
}

func (r *DesignWorkRepository) Update(ctx context.Context, work *domain.DesignWork) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(work).Error
}

// ListByDesigner returns a designer's open work records, oldest first
func (r *DesignWorkRepository) ListByDesigner(ctx context.Context, designerID uuid.UUID) ([]domain.DesignWork, error) {
	var works []domain.DesignWork
	err := r.db.WithContext(ctx).
		Preload("Enquiry").
		Preload("Enquiry.Client").
		Where("designer_id = ? AND design_status <> ?", designerID, domain.DesignStatusCompleted).
		Order("created_at ASC").
		Find(&works).Error
	return works, err
}
