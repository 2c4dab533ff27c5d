package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/solmount/enquiry-api/internal/auth"
	"github.com/solmount/enquiry-api/internal/domain"
	"github.com/solmount/enquiry-api/internal/mapper"
	"github.com/solmount/enquiry-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuotationService manages quotations raised against enquiries
type QuotationService struct {
	quotationRepo *repository.QuotationRepository
	enquiryRepo   *repository.EnquiryRepository
	notifications *NotificationService
	logger        *zap.Logger
}

// NewQuotationService creates a new QuotationService instance
func NewQuotationService(
	quotationRepo *repository.QuotationRepository,
	enquiryRepo *repository.EnquiryRepository,
	notifications *NotificationService,
	logger *zap.Logger,
) *QuotationService {
	return &QuotationService{
		quotationRepo: quotationRepo,
		enquiryRepo:   enquiryRepo,
		notifications: notifications,
		logger:        logger,
	}
}

// Create raises a new quotation with its line items
func (s *QuotationService) Create(ctx context.Context, req *domain.CreateQuotationRequest) (*domain.QuotationDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	enquiry, err := s.enquiryRepo.GetByID(ctx, req.EnquiryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get enquiry: %w", err)
	}

	quotation := &domain.Quotation{
		QuotationNum: req.QuotationNum,
		EnquiryID:    enquiry.ID,
		ClientID:     enquiry.ClientID,
		PreparedBy:   userCtx.UserID,
		Subtotal:     req.Subtotal,
		Discount:     req.Discount,
		Tax:          req.Tax,
		GrandTotal:   req.GrandTotal,
		Status:       domain.DocumentStatusDraft,
	}
	for _, item := range req.Items {
		quotation.Items = append(quotation.Items, domain.QuotationItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		})
	}

	if err := s.quotationRepo.Create(ctx, quotation); err != nil {
		return nil, fmt.Errorf("failed to create quotation: %w", err)
	}

	s.logger.Info("quotation created",
		zap.String("quotationNum", quotation.QuotationNum),
		zap.String("enquiryID", enquiry.ID.String()),
	)

	s.notifications.NotifyAdmins(ctx, Payload{
		Type:       domain.NotificationTypeQuotationCreated,
		Title:      "Quotation created",
		Message:    fmt.Sprintf("Quotation %s created for enquiry %s", quotation.QuotationNum, enquiry.EnquiryNum),
		EnquiryID:  &enquiry.ID,
		EnquiryNum: enquiry.EnquiryNum,
	})

	dto := mapper.ToQuotationDTO(quotation)
	return &dto, nil
}

// GetByID returns a single quotation with its items
func (s *QuotationService) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuotationDTO, error) {
	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}
	dto := mapper.ToQuotationDTO(quotation)
	return &dto, nil
}

// ListByEnquiry returns all quotations raised against an enquiry
func (s *QuotationService) ListByEnquiry(ctx context.Context, enquiryID uuid.UUID) ([]domain.QuotationDTO, error) {
	quotations, err := s.quotationRepo.ListByEnquiry(ctx, enquiryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotations: %w", err)
	}
	dtos := make([]domain.QuotationDTO, 0, len(quotations))
	for i := range quotations {
		dtos = append(dtos, mapper.ToQuotationDTO(&quotations[i]))
	}
	return dtos, nil
}

// UpdateStatus moves the quotation through its draft/sent/accepted lifecycle
func (s *QuotationService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.DocumentStatus) (*domain.QuotationDTO, error) {
	if _, err := s.quotationRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}

	if err := s.quotationRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update quotation status: %w", err)
	}
	return s.GetByID(ctx, id)
}
