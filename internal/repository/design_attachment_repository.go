package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/solmount/enquiry-api/internal/domain"
	"gorm.io/gorm"
)

type DesignAttachmentRepository struct {
	db *gorm.DB
}

func NewDesignAttachmentRepository(db *gorm.DB) *DesignAttachmentRepository {
	return &DesignAttachmentRepository{db: db}
}

func (r *DesignAttachmentRepository) Create(ctx context.Context, attachment *domain.DesignAttachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *DesignAttachmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DesignAttachment, error) {
	var attachment domain.DesignAttachment
	err := r.db.WithContext(ctx).
		Preload("Uploader").
		First(&attachment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *DesignAttachmentRepository) ListByEnquiry(ctx context.Context, enquiryID uuid.UUID) ([]domain.DesignAttachment, error) {
	var attachments []domain.DesignAttachment
	err := r.db.WithContext(ctx).
		Preload("Uploader").
		Where("enquiry_id = ?", enquiryID).
		Order("created_at DESC").
		Find(&attachments).Error
	return attachments, err
}

func (r *DesignAttachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.DesignAttachment{}, "id = ?", id).Error
}
