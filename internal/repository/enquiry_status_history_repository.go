package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/solmount/enquiry-api/internal/domain"
	"gorm.io/gorm"
)

// EnquiryStatusHistoryRepository manages the append-only transition log.
// Entries are created, never updated or deleted.
type EnquiryStatusHistoryRepository struct {
	db *gorm.DB
}

func NewEnquiryStatusHistoryRepository(db *gorm.DB) *EnquiryStatusHistoryRepository {
	return &EnquiryStatusHistoryRepository{db: db}
}

func (r *EnquiryStatusHistoryRepository) Create(ctx context.Context, entry *domain.EnquiryStatusHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByEnquiry returns the transition log for an enquiry in chronological order
func (r *EnquiryStatusHistoryRepository) ListByEnquiry(ctx context.Context, enquiryID uuid.UUID) ([]domain.EnquiryStatusHistory, error) {
	var entries []domain.EnquiryStatusHistory
	err := r.db.WithContext(ctx).
		Preload("AssignedUser").
		Where("enquiry_id = ?", enquiryID).
		Order("changed_at ASC").
		Find(&entries).Error
	return entries, err
}

// HasParticipant reports whether the user ever appears as the assigned person
// in the enquiry's history. Past participants retain read access after the
// work moves on.
func (r *EnquiryStatusHistoryRepository) HasParticipant(ctx context.Context, enquiryID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.EnquiryStatusHistory{}).
		Where("enquiry_id = ? AND assigned_person = ?", enquiryID, userID).
		Count(&count).Error
	return count > 0, err
}
