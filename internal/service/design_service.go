package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/solmount/enquiry-api/internal/auth"
	"github.com/solmount/enquiry-api/internal/domain"
	"github.com/solmount/enquiry-api/internal/mapper"
	"github.com/solmount/enquiry-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DesignService handles the design-stage sub-workflow
type DesignService struct {
	designRepo     *repository.DesignWorkRepository
	attachmentRepo *repository.DesignAttachmentRepository
	enquiryRepo    *repository.EnquiryRepository
	userRepo       *repository.UserRepository
	workflow       *WorkflowService
	notifications  *NotificationService
	logger         *zap.Logger
}

// NewDesignService creates a new DesignService instance
func NewDesignService(
	designRepo *repository.DesignWorkRepository,
	attachmentRepo *repository.DesignAttachmentRepository,
	enquiryRepo *repository.EnquiryRepository,
	userRepo *repository.UserRepository,
	workflow *WorkflowService,
	notifications *NotificationService,
	logger *zap.Logger,
) *DesignService {
	return &DesignService{
		designRepo:     designRepo,
		attachmentRepo: attachmentRepo,
		enquiryRepo:    enquiryRepo,
		userRepo:       userRepo,
		workflow:       workflow,
		notifications:  notifications,
		logger:         logger,
	}
}

// AssignDesigner moves the enquiry into the Design stage, owned by the given
// designer, and upserts the design work record
func (s *DesignService) AssignDesigner(ctx context.Context, enquiryID uuid.UUID, req *domain.AssignDesignerRequest) (*domain.DesignWorkDTO, error) {
	if _, ok := auth.FromContext(ctx); !ok {
		return nil, ErrUserContextRequired
	}

	enquiry, err := s.enquiryRepo.GetByID(ctx, enquiryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get enquiry: %w", err)
	}

	designer, err := s.userRepo.GetByID(ctx, req.DesignerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get designer: %w", err)
	}
	if designer.Role != domain.RoleDesigner {
		return nil, fmt.Errorf("%w: user %s is not a designer", ErrInvalidInput, designer.ID)
	}

	enquiry.Status = domain.StatusDesign
	enquiry.CurrentAssignedPerson = designer.ID
	enquiry.WorkAssignedDate = time.Now()

	if err := s.enquiryRepo.Update(ctx, enquiry); err != nil {
		return nil, fmt.Errorf("failed to update enquiry: %w", err)
	}

	work, err := s.upsertWork(ctx, enquiry, designer, req.ClientRequirements)
	if err != nil {
		return nil, err
	}

	if err := s.workflow.RecordTransition(ctx, enquiry.ID, domain.StatusDesign, designer.ID, "Assigned to design"); err != nil {
		return nil, err
	}

	s.notifications.NotifyUser(ctx, designer.ID, Payload{
		Type:       domain.NotificationTypeDesignAssigned,
		Title:      "Design work assigned",
		Message:    fmt.Sprintf("Enquiry %s assigned to you for design", enquiry.EnquiryNum),
		EnquiryID:  &enquiry.ID,
		EnquiryNum: enquiry.EnquiryNum,
	})

	dto := mapper.ToDesignWorkDTO(work)
	return &dto, nil
}

// GetByEnquiry returns the enquiry's design work record
func (s *DesignService) GetByEnquiry(ctx context.Context, enquiryID uuid.UUID) (*domain.DesignWorkDTO, error) {
	work, err := s.designRepo.GetByEnquiry(ctx, enquiryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get design work: %w", err)
	}
	dto := mapper.ToDesignWorkDTO(work)
	return &dto, nil
}

// SaveProgress records intermediate design notes and marks the work
// in progress. The enquiry itself is untouched.
func (s *DesignService) SaveProgress(ctx context.Context, enquiryID uuid.UUID, req *domain.SaveDesignProgressRequest) (*domain.DesignWorkDTO, error) {
	work, err := s.ownedWork(ctx, enquiryID)
	if err != nil {
		return nil, err
	}

	if req.DesignerNotes != "" {
		work.DesignerNotes = req.DesignerNotes
	}
	if req.ClientRequirements != "" {
		work.ClientRequirements = req.ClientRequirements
	}
	work.DesignStatus = domain.DesignStatusInProgress

	if err := s.designRepo.Update(ctx, work); err != nil {
		return nil, fmt.Errorf("failed to update design work: %w", err)
	}

	dto := mapper.ToDesignWorkDTO(work)
	return &dto, nil
}

// CompleteAndReturn finishes the design work and hands the enquiry back to
// the salesperson who created it, at the BOQ stage
func (s *DesignService) CompleteAndReturn(ctx context.Context, enquiryID uuid.UUID, req *domain.CompleteDesignRequest) (*domain.DesignWorkDTO, error) {
	work, err := s.ownedWork(ctx, enquiryID)
	if err != nil {
		return nil, err
	}

	enquiry, err := s.enquiryRepo.GetByID(ctx, work.EnquiryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get enquiry: %w", err)
	}

	now := time.Now()
	work.DesignStatus = domain.DesignStatusCompleted
	work.CompletedAt = &now
	if err := s.designRepo.Update(ctx, work); err != nil {
		return nil, fmt.Errorf("failed to update design work: %w", err)
	}

	// Work always returns to the original salesperson
	enquiry.Status = domain.StatusBOQ
	enquiry.CurrentAssignedPerson = enquiry.EnquiryBy
	enquiry.WorkAssignedDate = now
	if err := s.enquiryRepo.Update(ctx, enquiry); err != nil {
		return nil, fmt.Errorf("failed to update enquiry: %w", err)
	}

	note := "Design completed, returned to salesperson for BOQ"
	if req.Note != "" {
		note = req.Note
	}
	if err := s.workflow.RecordTransition(ctx, enquiry.ID, domain.StatusBOQ, enquiry.EnquiryBy, note); err != nil {
		return nil, err
	}

	s.logger.Info("design completed",
		zap.String("enquiryID", enquiry.ID.String()),
		zap.String("designerID", work.DesignerID.String()),
		zap.String("returnedTo", enquiry.EnquiryBy.String()),
	)

	s.notifications.NotifyUser(ctx, enquiry.EnquiryBy, Payload{
		Type:       domain.NotificationTypeDesignCompleted,
		Title:      "Design completed",
		Message:    fmt.Sprintf("Design for enquiry %s is complete, ready for BOQ", enquiry.EnquiryNum),
		EnquiryID:  &enquiry.ID,
		EnquiryNum: enquiry.EnquiryNum,
	})

	dto := mapper.ToDesignWorkDTO(work)
	return &dto, nil
}

// AddAttachment stores drawing file metadata on the enquiry
func (s *DesignService) AddAttachment(ctx context.Context, enquiryID uuid.UUID, req *domain.CreateAttachmentRequest) (*domain.DesignAttachmentDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	if _, err := s.enquiryRepo.GetByID(ctx, enquiryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get enquiry: %w", err)
	}

	attachment := &domain.DesignAttachment{
		EnquiryID:   enquiryID,
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Size:        req.Size,
		FileURL:     req.FileURL,
		UploadedBy:  userCtx.UserID,
	}
	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		return nil, fmt.Errorf("failed to create attachment: %w", err)
	}

	dto := mapper.ToDesignAttachmentDTO(attachment)
	return &dto, nil
}

// ListAttachments returns the enquiry's drawing attachments
func (s *DesignService) ListAttachments(ctx context.Context, enquiryID uuid.UUID) ([]domain.DesignAttachmentDTO, error) {
	attachments, err := s.attachmentRepo.ListByEnquiry(ctx, enquiryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}

	dtos := make([]domain.DesignAttachmentDTO, len(attachments))
	for i := range attachments {
		dtos[i] = mapper.ToDesignAttachmentDTO(&attachments[i])
	}
	return dtos, nil
}

// DeleteAttachment removes attachment metadata. Only the uploader or an
// admin may delete.
func (s *DesignService) DeleteAttachment(ctx context.Context, id uuid.UUID) error {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUserContextRequired
	}

	attachment, err := s.attachmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get attachment: %w", err)
	}

	if attachment.UploadedBy != userCtx.UserID && !userCtx.Role.IsAdmin() {
		return ErrPermissionDenied
	}

	return s.attachmentRepo.Delete(ctx, id)
}

// ownedWork loads the enquiry's design work and checks that the caller is
// its designer or an admin
func (s *DesignService) ownedWork(ctx context.Context, enquiryID uuid.UUID) (*domain.DesignWork, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	work, err := s.designRepo.GetByEnquiry(ctx, enquiryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get design work: %w", err)
	}

	if work.DesignerID != userCtx.UserID && !userCtx.Role.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	return work, nil
}

func (s *DesignService) upsertWork(ctx context.Context, enquiry *domain.Enquiry, designer *domain.User, requirements string) (*domain.DesignWork, error) {
	work, err := s.designRepo.GetByEnquiry(ctx, enquiry.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		work = &domain.DesignWork{
			EnquiryID:          enquiry.ID,
			DesignerID:         designer.ID,
			ClientRequirements: requirements,
			DesignStatus:       domain.DesignStatusPending,
		}
		if err := s.designRepo.Create(ctx, work); err != nil {
			return nil, fmt.Errorf("failed to create design work: %w", err)
		}
		return work, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get design work: %w", err)
	}

	work.DesignerID = designer.ID
	work.DesignStatus = domain.DesignStatusPending
	work.CompletedAt = nil
	if requirements != "" {
		work.ClientRequirements = requirements
	}
	if err := s.designRepo.Update(ctx, work); err != nil {
		return nil, fmt.Errorf("failed to update design work: %w", err)
	}
	return work, nil
}
