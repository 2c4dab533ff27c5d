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

// InvoiceService manages invoices raised against enquiries
type InvoiceService struct {
	invoiceRepo   *repository.InvoiceRepository
	enquiryRepo   *repository.EnquiryRepository
	notifications *NotificationService
	logger        *zap.Logger
}

// NewInvoiceService creates a new InvoiceService instance
func NewInvoiceService(
	invoiceRepo *repository.InvoiceRepository,
	enquiryRepo *repository.EnquiryRepository,
	notifications *NotificationService,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:   invoiceRepo,
		enquiryRepo:   enquiryRepo,
		notifications: notifications,
		logger:        logger,
	}
}

// Create raises a new invoice with its line items
func (s *InvoiceService) Create(ctx context.Context, req *domain.CreateInvoiceRequest) (*domain.InvoiceDTO, error) {
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

	invoice := &domain.Invoice{
		InvoiceNum: req.InvoiceNum,
		EnquiryID:  enquiry.ID,
		ClientID:   enquiry.ClientID,
		PreparedBy: userCtx.UserID,
		Subtotal:   req.Subtotal,
		Discount:   req.Discount,
		Tax:        req.Tax,
		GrandTotal: req.GrandTotal,
		Status:     domain.DocumentStatusDraft,
	}
	for _, item := range req.Items {
		invoice.Items = append(invoice.Items, domain.InvoiceItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		})
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.logger.Info("invoice created",
		zap.String("invoiceNum", invoice.InvoiceNum),
		zap.String("enquiryID", enquiry.ID.String()),
	)

	s.notifications.NotifyAdmins(ctx, Payload{
		Type:       domain.NotificationTypeInvoiceCreated,
		Title:      "Invoice created",
		Message:    fmt.Sprintf("Invoice %s created for enquiry %s", invoice.InvoiceNum, enquiry.EnquiryNum),
		EnquiryID:  &enquiry.ID,
		EnquiryNum: enquiry.EnquiryNum,
	})

	dto := mapper.ToInvoiceDTO(invoice)
	return &dto, nil
}

// GetByID returns a single invoice with its items
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.InvoiceDTO, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	dto := mapper.ToInvoiceDTO(invoice)
	return &dto, nil
}

// ListByEnquiry returns all invoices raised against an enquiry
func (s *InvoiceService) ListByEnquiry(ctx context.Context, enquiryID uuid.UUID) ([]domain.InvoiceDTO, error) {
	invoices, err := s.invoiceRepo.ListByEnquiry(ctx, enquiryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	dtos := make([]domain.InvoiceDTO, 0, len(invoices))
	for i := range invoices {
		dtos = append(dtos, mapper.ToInvoiceDTO(&invoices[i]))
	}
	return dtos, nil
}

// UpdateStatus moves the invoice through its draft/sent/accepted lifecycle
func (s *InvoiceService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.DocumentStatus) (*domain.InvoiceDTO, error) {
	if _, err := s.invoiceRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	if err := s.invoiceRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update invoice status: %w", err)
	}
	return s.GetByID(ctx, id)
}
