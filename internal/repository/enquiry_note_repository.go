package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/solmount/enquiry-api/internal/domain"
	"gorm.io/gorm"
)

type EnquiryNoteRepository struct {
	db *gorm.DB
}

func NewEnquiryNoteRepository(db *gorm.DB) *EnquiryNoteRepository {
	return &EnquiryNoteRepository{db: db}
}

func (r *EnquiryNoteRepository) Create(ctx context.Context, note *domain.EnquiryNote) error {
	return r.db.WithContext(ctx).Create(note).Error
}

// ListByEnquiry returns notes for an enquiry, newest first
func (r *EnquiryNoteRepository) ListByEnquiry(ctx context.Context, enquiryID uuid.UUID) ([]domain.EnquiryNote, error) {
	var notes []domain.EnquiryNote
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("enquiry_id = ?", enquiryID).
		Order("created_at DESC").
		Find(&notes).Error
	return notes, err
}
