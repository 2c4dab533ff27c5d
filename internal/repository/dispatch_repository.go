package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/solmount/enquiry-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DispatchRepository struct {
	db *gorm.DB
}

func NewDispatchRepository(db *gorm.DB) *DispatchRepository {
	return &DispatchRepository{db: db}
}

func (r *DispatchRepository) Create(ctx context.Context, work *domain.DispatchWork) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(work).Error
}

func (r *DispatchRepository) GetByEnquiry(ctx context.Context, enquiryID uuid.UUID) (*domain.DispatchWork, error) {
	var work domain.DispatchWork
	err := r.db.WithContext(ctx).
		Preload("Assignee").
		First(&work, "enquiry_id = ?", enquiryID).Error
	if err != nil {
		return nil, err
	}
	return &work, nil
}

func (r *DispatchRepository) Update(ctx context.Context, work *domain.DispatchWork) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(work).Error
}

// ListByAssignee returns pending dispatch records for a user
func (r *DispatchRepository) ListByAssignee(ctx context.Context, userID uuid.UUID) ([]domain.DispatchWork, error) {
	var works []domain.DispatchWork
	err := r.db.WithContext(ctx).
		Preload("Enquiry").
		Preload("Enquiry.Client").
		Where("dispatch_assigned_to = ? AND status = ?", userID, domain.DispatchStatusPending).
		Order("created_at ASC").
		Find(&works).Error
	return works, err
}
