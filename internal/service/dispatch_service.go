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

// DispatchService handles the dispatch-stage work records
type DispatchService struct {
	dispatchRepo  *repository.DispatchRepository
	enquiryRepo   *repository.EnquiryRepository
	userRepo      *repository.UserRepository
	workflow      *WorkflowService
	notifications *NotificationService
	logger        *zap.Logger
}

// NewDispatchService creates a new DispatchService instance
func NewDispatchService(
	dispatchRepo *repository.DispatchRepository,
	enquiryRepo *repository.EnquiryRepository,
	userRepo *repository.UserRepository,
	workflow *WorkflowService,
	notifications *NotificationService,
	logger *zap.Logger,
) *DispatchService {
	return &DispatchService{
		dispatchRepo:  dispatchRepo,
		enquiryRepo:   enquiryRepo,
		userRepo:      userRepo,
		workflow:      workflow,
		notifications: notifications,
		logger:        logger,
	}
}

// AssignDispatch hands the enquiry to a dispatch assignee and upserts its
// dispatch work record
func (s *DispatchService) AssignDispatch(ctx context.Context, enquiryID uuid.UUID, req *domain.AssignDispatchRequest) (*domain.DispatchWorkDTO, error) {
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

	assignee, err := s.userRepo.GetByID(ctx, req.DispatchAssignedTo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get assignee: %w", err)
	}

	enquiry.Status = domain.StatusReadyForDispatch
	enquiry.CurrentAssignedPerson = assignee.ID
	enquiry.WorkAssignedDate = time.Now()
	if err := s.enquiryRepo.Update(ctx, enquiry); err != nil {
		return nil, fmt.Errorf("failed to update enquiry: %w", err)
	}

	work, err := s.upsertWork(ctx, enquiry, assignee.ID)
	if err != nil {
		return nil, err
	}

	if err := s.workflow.RecordTransition(ctx, enquiry.ID, domain.StatusReadyForDispatch, assignee.ID, "Assigned to dispatch"); err != nil {
		return nil, err
	}

	s.notifications.NotifyUser(ctx, assignee.ID, Payload{
		Type:       domain.NotificationTypeDispatchAssigned,
		Title:      "Dispatch work assigned",
		Message:    fmt.Sprintf("Enquiry %s assigned to you for dispatch", enquiry.EnquiryNum),
		EnquiryID:  &enquiry.ID,
		EnquiryNum: enquiry.EnquiryNum,
	})

	dto := mapper.ToDispatchWorkDTO(work)
	return &dto, nil
}

// GetByEnquiry returns the enquiry's dispatch work record
func (s *DispatchService) GetByEnquiry(ctx context.Context, enquiryID uuid.UUID) (*domain.DispatchWorkDTO, error) {
	work, err := s.dispatchRepo.GetByEnquiry(ctx, enquiryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get dispatch work: %w", err)
	}
	dto := mapper.ToDispatchWorkDTO(work)
	return &dto, nil
}

// UpdateDispatch applies a partial update to the dispatch record. Moving the
// record to dispatched also closes the enquiry as Dispatched and notifies the
// original salesperson.
func (s *DispatchService) UpdateDispatch(ctx context.Context, enquiryID uuid.UUID, req *domain.UpdateDispatchRequest) (*domain.DispatchWorkDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	work, err := s.dispatchRepo.GetByEnquiry(ctx, enquiryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get dispatch work: %w", err)
	}
	if work.DispatchAssignedTo != userCtx.UserID && !userCtx.Role.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	if req.TrackingNumber != "" {
		work.TrackingNumber = req.TrackingNumber
	}
	if req.DispatchDate != nil {
		parsed, err := parseDate(*req.DispatchDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid dispatchDate: %v", ErrInvalidInput, err)
		}
		work.DispatchDate = &parsed
	}
	if req.EstimatedDeliveryDate != nil {
		parsed, err := parseDate(*req.EstimatedDeliveryDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid estimatedDeliveryDate: %v", ErrInvalidInput, err)
		}
		work.EstimatedDeliveryDate = &parsed
	}
	if req.Notes != "" {
		work.Notes = req.Notes
	}

	becameDispatched := false
	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, fmt.Errorf("%w: unknown dispatch status %q", ErrInvalidInput, *req.Status)
		}
		becameDispatched = *req.Status == domain.DispatchStatusDispatched && work.Status != domain.DispatchStatusDispatched
		work.Status = *req.Status
		if becameDispatched && work.DispatchDate == nil {
			now := time.Now()
			work.DispatchDate = &now
		}
	}

	if err := s.dispatchRepo.Update(ctx, work); err != nil {
		return nil, fmt.Errorf("failed to update dispatch work: %w", err)
	}

	if becameDispatched {
		if err := s.closeEnquiry(ctx, work); err != nil {
			return nil, err
		}
	}

	dto := mapper.ToDispatchWorkDTO(work)
	return &dto, nil
}

// ListForAssignee returns the caller's pending dispatch queue
func (s *DispatchService) ListForAssignee(ctx context.Context, userID uuid.UUID) ([]domain.DispatchWorkDTO, error) {
	works, err := s.dispatchRepo.ListByAssignee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dispatch work: %w", err)
	}
	dtos := make([]domain.DispatchWorkDTO, 0, len(works))
	for i := range works {
		dtos = append(dtos, mapper.ToDispatchWorkDTO(&works[i]))
	}
	return dtos, nil
}

func (s *DispatchService) closeEnquiry(ctx context.Context, work *domain.DispatchWork) error {
	enquiry, err := s.enquiryRepo.GetByID(ctx, work.EnquiryID)
	if err != nil {
		return fmt.Errorf("failed to get enquiry: %w", err)
	}

	enquiry.Status = domain.StatusDispatched
	if err := s.enquiryRepo.Update(ctx, enquiry); err != nil {
		return fmt.Errorf("failed to update enquiry: %w", err)
	}

	if err := s.workflow.RecordTransition(ctx, enquiry.ID, domain.StatusDispatched, enquiry.CurrentAssignedPerson, "Order dispatched"); err != nil {
		return err
	}

	s.logger.Info("enquiry dispatched",
		zap.String("enquiryID", enquiry.ID.String()),
		zap.String("trackingNumber", work.TrackingNumber),
	)

	s.notifications.NotifyUser(ctx, enquiry.EnquiryBy, Payload{
		Type:       domain.NotificationTypeEnquiryDispatched,
		Title:      "Order dispatched",
		Message:    fmt.Sprintf("Enquiry %s has been dispatched", enquiry.EnquiryNum),
		EnquiryID:  &enquiry.ID,
		EnquiryNum: enquiry.EnquiryNum,
	})
	return nil
}

func (s *DispatchService) upsertWork(ctx context.Context, enquiry *domain.Enquiry, assigneeID uuid.UUID) (*domain.DispatchWork, error) {
	work, err := s.dispatchRepo.GetByEnquiry(ctx, enquiry.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		work = &domain.DispatchWork{
			EnquiryID:          enquiry.ID,
			DispatchAssignedTo: assigneeID,
			Status:             domain.DispatchStatusPending,
		}
		if err := s.dispatchRepo.Create(ctx, work); err != nil {
			return nil, fmt.Errorf("failed to create dispatch work: %w", err)
		}
		return work, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dispatch work: %w", err)
	}

	work.DispatchAssignedTo = assigneeID
	work.Status = domain.DispatchStatusPending
	if err := s.dispatchRepo.Update(ctx, work); err != nil {
		return nil, fmt.Errorf("failed to update dispatch work: %w", err)
	}
	return work, nil
}

// parseDate accepts both date-only and RFC3339 timestamps
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
