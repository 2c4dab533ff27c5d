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

// EnquiryService handles enquiry reads and commentary. All mutation of the
// workflow fields goes through WorkflowService.
type EnquiryService struct {
	enquiryRepo   *repository.EnquiryRepository
	historyRepo   *repository.EnquiryStatusHistoryRepository
	noteRepo      *repository.EnquiryNoteRepository
	notifications *NotificationService
	logger        *zap.Logger
}

// NewEnquiryService creates a new EnquiryService instance
func NewEnquiryService(
	enquiryRepo *repository.EnquiryRepository,
	historyRepo *repository.EnquiryStatusHistoryRepository,
	noteRepo *repository.EnquiryNoteRepository,
	notifications *NotificationService,
	logger *zap.Logger,
) *EnquiryService {
	return &EnquiryService{
		enquiryRepo:   enquiryRepo,
		historyRepo:   historyRepo,
		noteRepo:      noteRepo,
		notifications: notifications,
		logger:        logger,
	}
}

// GetByID returns a single enquiry. Beyond the live visibility rules, anyone
// who ever held the enquiry (per the status history) keeps read access.
func (s *EnquiryService) GetByID(ctx context.Context, id uuid.UUID) (*domain.EnquiryDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	enquiry, err := s.enquiryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get enquiry: %w", err)
	}

	allowed, err := s.canAccess(ctx, userCtx, enquiry)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrPermissionDenied
	}

	dto := mapper.ToEnquiryDTO(enquiry)
	return &dto, nil
}

// List returns enquiries visible to the requesting user
func (s *EnquiryService) List(ctx context.Context, page, pageSize int, filters *repository.EnquiryFilters, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	if _, ok := auth.FromContext(ctx); !ok {
		return nil, ErrUserContextRequired
	}

	page, pageSize = clampPage(page, pageSize)

	enquiries, total, err := s.enquiryRepo.List(ctx, page, pageSize, filters, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list enquiries: %w", err)
	}

	dtos := make([]domain.EnquiryDTO, len(enquiries))
	for i := range enquiries {
		dtos[i] = mapper.ToEnquiryDTO(&enquiries[i])
	}

	return paginated(dtos, total, page, pageSize), nil
}

// ListWorkedOn returns enquiries the current user created or was ever
// assigned on, surfacing historical involvement beyond the live scope
func (s *EnquiryService) ListWorkedOn(ctx context.Context, page, pageSize int) (*domain.PaginatedResponse, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	page, pageSize = clampPage(page, pageSize)

	enquiries, total, err := s.enquiryRepo.ListWorkedOn(ctx, userCtx.UserID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list worked enquiries: %w", err)
	}

	dtos := make([]domain.EnquiryDTO, len(enquiries))
	for i := range enquiries {
		dtos[i] = mapper.ToEnquiryDTO(&enquiries[i])
	}

	return paginated(dtos, total, page, pageSize), nil
}

// GetHistory returns the enquiry's transition log in chronological order
func (s *EnquiryService) GetHistory(ctx context.Context, enquiryID uuid.UUID) ([]domain.StatusHistoryDTO, error) {
	if err := s.requireAccess(ctx, enquiryID); err != nil {
		return nil, err
	}

	entries, err := s.historyRepo.ListByEnquiry(ctx, enquiryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	dtos := make([]domain.StatusHistoryDTO, len(entries))
	for i := range entries {
		dtos[i] = mapper.ToStatusHistoryDTO(&entries[i])
	}
	return dtos, nil
}

// ListNotes returns the enquiry's free-text notes, newest first
func (s *EnquiryService) ListNotes(ctx context.Context, enquiryID uuid.UUID) ([]domain.EnquiryNoteDTO, error) {
	if err := s.requireAccess(ctx, enquiryID); err != nil {
		return nil, err
	}

	notes, err := s.noteRepo.ListByEnquiry(ctx, enquiryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	dtos := make([]domain.EnquiryNoteDTO, len(notes))
	for i := range notes {
		dtos[i] = mapper.ToEnquiryNoteDTO(&notes[i])
	}
	return dtos, nil
}

// AddNote appends commentary to an enquiry and tells the current owner
func (s *EnquiryService) AddNote(ctx context.Context, enquiryID uuid.UUID, req *domain.CreateNoteRequest) (*domain.EnquiryNoteDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	enquiry, err := s.enquiryRepo.GetByID(ctx, enquiryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get enquiry: %w", err)
	}

	allowed, err := s.canAccess(ctx, userCtx, enquiry)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrPermissionDenied
	}

	note := &domain.EnquiryNote{
		EnquiryID: enquiryID,
		AuthorID:  userCtx.UserID,
		Note:      req.Note,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	if enquiry.CurrentAssignedPerson != userCtx.UserID {
		s.notifications.NotifyUser(ctx, enquiry.CurrentAssignedPerson, Payload{
			Type:       domain.NotificationTypeCommunicationLogged,
			Title:      "New note",
			Message:    fmt.Sprintf("%s added a note on enquiry %s", userCtx.Name, enquiry.EnquiryNum),
			EnquiryID:  &enquiry.ID,
			EnquiryNum: enquiry.EnquiryNum,
		})
	}

	note.Author = &domain.User{ID: userCtx.UserID, Name: userCtx.Name}
	dto := mapper.ToEnquiryNoteDTO(note)
	return &dto, nil
}

func (s *EnquiryService) requireAccess(ctx context.Context, enquiryID uuid.UUID) error {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUserContextRequired
	}

	enquiry, err := s.enquiryRepo.GetByID(ctx, enquiryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get enquiry: %w", err)
	}

	allowed, err := s.canAccess(ctx, userCtx, enquiry)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrPermissionDenied
	}
	return nil
}

func (s *EnquiryService) canAccess(ctx context.Context, userCtx *auth.UserContext, enquiry *domain.Enquiry) (bool, error) {
	if userCtx.Role.IsAdmin() {
		return true, nil
	}
	if enquiry.CurrentAssignedPerson == userCtx.UserID {
		return true, nil
	}
	// The originator grant applies to salesmen only; other roles rely on
	// current assignment or past participation
	if userCtx.Role == domain.RoleSalesman && enquiry.EnquiryBy == userCtx.UserID {
		return true, nil
	}

	// Past participants keep read access
	participated, err := s.historyRepo.HasParticipant(ctx, enquiry.ID, userCtx.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to check history: %w", err)
	}
	return participated, nil
}

func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > repository.MaxPageSize {
		pageSize = repository.MaxPageSize
	}
	return page, pageSize
}

func paginated(data interface{}, total int64, page, pageSize int) *domain.PaginatedResponse {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
