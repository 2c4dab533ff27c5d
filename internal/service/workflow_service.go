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

// WorkflowConfig tunes the workflow engine
type WorkflowConfig struct {
	// Strict rejects stage jumps outside the transition table. The default is
	// permissive: any authorized actor may set any stage explicitly.
	Strict bool
}

// allowedTransitions is the opt-in strict-mode table. The conventional
// forward path, a back-step from BOQ to Design for rework, and the Hotdip
// skip for materials that need no galvanization.
var allowedTransitions = map[domain.EnquiryStatus][]domain.EnquiryStatus{
	domain.StatusEnquiry:            {domain.StatusDesign, domain.StatusBOQ},
	domain.StatusDesign:             {domain.StatusBOQ},
	domain.StatusBOQ:                {domain.StatusDesign, domain.StatusReadyForProduction},
	domain.StatusReadyForProduction: {domain.StatusPurchaseWaiting, domain.StatusInProduction},
	domain.StatusPurchaseWaiting:    {domain.StatusInProduction},
	domain.StatusInProduction:       {domain.StatusProductionComplete},
	domain.StatusProductionComplete: {domain.StatusHotdip, domain.StatusReadyForDispatch},
	domain.StatusHotdip:             {domain.StatusReadyForDispatch},
	domain.StatusReadyForDispatch:   {domain.StatusDispatched},
	domain.StatusDispatched:         {},
}

// provisionKey selects the auto-provisioning action for a transition
type provisionKey struct {
	status domain.EnquiryStatus
	role   domain.UserRole
}

// WorkflowService is the enquiry workflow engine: stage transitions,
// assignment, order numbering, stage-record auto-provisioning and the audit
// history that goes with all of it.
type WorkflowService struct {
	enquiryRepo    *repository.EnquiryRepository
	historyRepo    *repository.EnquiryStatusHistoryRepository
	noteRepo       *repository.EnquiryNoteRepository
	userRepo       *repository.UserRepository
	clientRepo     *repository.ClientRepository
	designRepo     *repository.DesignWorkRepository
	productionRepo *repository.ProductionRepository
	sequenceRepo   *repository.OrderSequenceRepository
	notifications  *NotificationService
	config         WorkflowConfig
	logger         *zap.Logger

	provisioners map[provisionKey]func(ctx context.Context, enquiry *domain.Enquiry, assignee *domain.User) error
}

// NewWorkflowService creates a new WorkflowService instance
func NewWorkflowService(
	enquiryRepo *repository.EnquiryRepository,
	historyRepo *repository.EnquiryStatusHistoryRepository,
	noteRepo *repository.EnquiryNoteRepository,
	userRepo *repository.UserRepository,
	clientRepo *repository.ClientRepository,
	designRepo *repository.DesignWorkRepository,
	productionRepo *repository.ProductionRepository,
	sequenceRepo *repository.OrderSequenceRepository,
	notifications *NotificationService,
	config WorkflowConfig,
	logger *zap.Logger,
) *WorkflowService {
	s := &WorkflowService{
		enquiryRepo:    enquiryRepo,
		historyRepo:    historyRepo,
		noteRepo:       noteRepo,
		userRepo:       userRepo,
		clientRepo:     clientRepo,
		designRepo:     designRepo,
		productionRepo: productionRepo,
		sequenceRepo:   sequenceRepo,
		notifications:  notifications,
		config:         config,
		logger:         logger,
	}

	s.provisioners = map[provisionKey]func(ctx context.Context, enquiry *domain.Enquiry, assignee *domain.User) error{
		{domain.StatusDesign, domain.RoleDesigner}:                s.provisionDesignWork,
		{domain.StatusReadyForProduction, domain.RoleProduction}: s.provisionProductionWorkflow,
	}

	return s
}

// CreateEnquiry registers a new enquiry owned by the creating salesperson.
// The enquiry starts in the Enquiry stage with a freshly allocated order
// number and a single history row.
func (s *WorkflowService) CreateEnquiry(ctx context.Context, req *domain.CreateEnquiryRequest) (*domain.EnquiryDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	if !req.MaterialType.IsValid() {
		return nil, fmt.Errorf("%w: unknown material type %q", ErrInvalidInput, req.MaterialType)
	}

	if _, err := s.clientRepo.GetByID(ctx, req.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	enquiryNum := req.EnquiryNum
	if enquiryNum == "" {
		enquiryNum = fmt.Sprintf("ENQ-%d", time.Now().UnixMilli())
	}

	orderNumber, err := s.sequenceRepo.NextOrderNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate order number: %w", err)
	}

	now := time.Now()
	enquiry := &domain.Enquiry{
		EnquiryNum:            enquiryNum,
		ClientID:              req.ClientID,
		MaterialType:          req.MaterialType,
		Detail:                req.Detail,
		EnquiryAmount:         req.EnquiryAmount,
		Status:                domain.StatusEnquiry,
		EnquiryBy:             userCtx.UserID,
		CurrentAssignedPerson: userCtx.UserID,
		WorkAssignedDate:      now,
		OrderNumber:           &orderNumber,
	}

	if err := s.enquiryRepo.Create(ctx, enquiry); err != nil {
		return nil, fmt.Errorf("failed to create enquiry: %w", err)
	}

	if err := s.recordTransition(ctx, enquiry.ID, domain.StatusEnquiry, userCtx.UserID, "Enquiry created"); err != nil {
		return nil, err
	}

	s.logger.Info("enquiry created",
		zap.String("enquiryID", enquiry.ID.String()),
		zap.String("enquiryNum", enquiry.EnquiryNum),
		zap.String("orderNumber", orderNumber),
		zap.String("createdBy", userCtx.UserID.String()),
	)

	s.notifications.NotifyAdmins(ctx, Payload{
		Type:       domain.NotificationTypeEnquiryCreated,
		Title:      "New enquiry",
		Message:    fmt.Sprintf("Enquiry %s created by %s", enquiry.EnquiryNum, userCtx.Name),
		EnquiryID:  &enquiry.ID,
		EnquiryNum: enquiry.EnquiryNum,
	})

	loaded, err := s.enquiryRepo.GetByID(ctx, enquiry.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload enquiry: %w", err)
	}
	dto := mapper.ToEnquiryDTO(loaded)
	return &dto, nil
}

// SetStatus moves an enquiry to a new workflow stage. The target assignee is
// the explicit assignedPersonId when given, otherwise the current owner.
// Stage-specific work records are provisioned automatically based on the
// (stage, assignee role) combination; those side effects are best-effort and
// never roll back the stage change itself.
func (s *WorkflowService) SetStatus(ctx context.Context, enquiryID uuid.UUID, req *domain.SetStatusRequest) (*domain.EnquiryDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}

	enquiry, err := s.enquiryRepo.GetByID(ctx, enquiryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get enquiry: %w", err)
	}

	if s.config.Strict && !s.transitionAllowed(enquiry.Status, req.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, enquiry.Status, req.Status)
	}

	assigneeID := enquiry.CurrentAssignedPerson
	if req.AssignedPersonID != nil {
		assigneeID = *req.AssignedPersonID
	}

	assignee, err := s.userRepo.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get assignee: %w", err)
	}

	oldStatus := enquiry.Status
	now := time.Now()

	enquiry.Status = req.Status
	enquiry.CurrentAssignedPerson = assigneeID
	enquiry.WorkAssignedDate = now

	// Production-ready enquiries get an order number if they don't have one.
	// Allocation failure is tolerated; the stage change still goes through.
	if req.Status == domain.StatusReadyForProduction && enquiry.OrderNumber == nil {
		orderNumber, seqErr := s.sequenceRepo.NextOrderNumber(ctx)
		if seqErr != nil {
			s.logger.Warn("failed to allocate order number on stage change",
				zap.String("enquiryID", enquiry.ID.String()),
				zap.Error(seqErr),
			)
		} else {
			enquiry.OrderNumber = &orderNumber
			enquiry.OrderDate = &now
		}
	}

	if err := s.enquiryRepo.Update(ctx, enquiry); err != nil {
		return nil, fmt.Errorf("failed to update enquiry: %w", err)
	}

	s.provision(ctx, enquiry, assignee)

	note := req.Note
	if note == "" {
		note = fmt.Sprintf("Status changed from %s to %s", oldStatus, req.Status)
	}
	if err := s.recordTransition(ctx, enquiry.ID, req.Status, assigneeID, note); err != nil {
		return nil, err
	}

	if req.Note != "" {
		s.appendNote(ctx, enquiry.ID, userCtx.UserID, req.Note)
	}

	s.logger.Info("enquiry status changed",
		zap.String("enquiryID", enquiry.ID.String()),
		zap.String("from", string(oldStatus)),
		zap.String("to", string(req.Status)),
		zap.String("assignee", assigneeID.String()),
		zap.String("actor", userCtx.UserID.String()),
	)

	statusPayload := Payload{
		Type:       domain.NotificationTypeStatusChange,
		Title:      "Status changed",
		Message:    fmt.Sprintf("Enquiry %s moved from %s to %s", enquiry.EnquiryNum, oldStatus, req.Status),
		EnquiryID:  &enquiry.ID,
		EnquiryNum: enquiry.EnquiryNum,
		Data:       map[string]any{"from": oldStatus, "to": req.Status},
	}
	s.notifications.NotifyUser(ctx, assigneeID, Payload{
		Type:       domain.NotificationTypeAssignment,
		Title:      "Enquiry assigned",
		Message:    fmt.Sprintf("Enquiry %s assigned to you at stage %s", enquiry.EnquiryNum, req.Status),
		EnquiryID:  &enquiry.ID,
		EnquiryNum: enquiry.EnquiryNum,
	})
	s.notifications.NotifyAdmins(ctx, statusPayload)
	s.notifications.NotifyEnquiryTopic(ctx, enquiry.ID, statusPayload)

	loaded, err := s.enquiryRepo.GetByID(ctx, enquiry.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload enquiry: %w", err)
	}
	dto := mapper.ToEnquiryDTO(loaded)
	return &dto, nil
}

// Assign hands the enquiry to a different owner without changing its stage
func (s *WorkflowService) Assign(ctx context.Context, enquiryID uuid.UUID, req *domain.AssignRequest) (*domain.EnquiryDTO, error) {
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

	if _, err := s.userRepo.GetByID(ctx, req.AssignedPersonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get assignee: %w", err)
	}

	enquiry.CurrentAssignedPerson = req.AssignedPersonID
	enquiry.WorkAssignedDate = time.Now()

	if err := s.enquiryRepo.Update(ctx, enquiry); err != nil {
		return nil, fmt.Errorf("failed to update enquiry: %w", err)
	}

	note := req.Note
	if note == "" {
		note = "Reassigned"
	}
	if err := s.recordTransition(ctx, enquiry.ID, enquiry.Status, req.AssignedPersonID, note); err != nil {
		return nil, err
	}

	if req.Note != "" {
		s.appendNote(ctx, enquiry.ID, userCtx.UserID, req.Note)
	}

	assignPayload := Payload{
		Type:       domain.NotificationTypeAssignment,
		Title:      "Enquiry assigned",
		Message:    fmt.Sprintf("Enquiry %s assigned to you", enquiry.EnquiryNum),
		EnquiryID:  &enquiry.ID,
		EnquiryNum: enquiry.EnquiryNum,
	}
	s.notifications.NotifyUser(ctx, req.AssignedPersonID, assignPayload)
	s.notifications.NotifyEnquiryTopic(ctx, enquiry.ID, assignPayload)

	loaded, err := s.enquiryRepo.GetByID(ctx, enquiry.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload enquiry: %w", err)
	}
	dto := mapper.ToEnquiryDTO(loaded)
	return &dto, nil
}

// ConfirmOrder marks the enquiry as a confirmed order: the order number is
// kept if already assigned (set-once), the enquiry moves to
// ReadyForProduction and a production workflow is provisioned for the chosen
// production user, or the first available one when none is given.
func (s *WorkflowService) ConfirmOrder(ctx context.Context, enquiryID uuid.UUID, req *domain.ConfirmOrderRequest) (*domain.EnquiryDTO, error) {
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

	var productionUser *domain.User
	if req.ProductionUserID != nil {
		productionUser, err = s.userRepo.GetByID(ctx, *req.ProductionUserID)
	} else {
		productionUser, err = s.userRepo.FirstByRole(ctx, domain.RoleProduction)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no production user available", ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to resolve production user: %w", err)
	}

	now := time.Now()

	// Order numbers are set once and never overwritten
	if enquiry.OrderNumber == nil {
		orderNumber := req.OrderNumber
		if orderNumber == "" {
			orderNumber, err = s.sequenceRepo.NextOrderNumber(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to allocate order number: %w", err)
			}
		}
		enquiry.OrderNumber = &orderNumber
	}
	if enquiry.OrderDate == nil {
		enquiry.OrderDate = &now
	}

	enquiry.Status = domain.StatusReadyForProduction
	enquiry.CurrentAssignedPerson = productionUser.ID
	enquiry.WorkAssignedDate = now

	if err := s.enquiryRepo.Update(ctx, enquiry); err != nil {
		return nil, fmt.Errorf("failed to update enquiry: %w", err)
	}

	s.provision(ctx, enquiry, productionUser)

	note := fmt.Sprintf("Order %s confirmed, assigned to production", *enquiry.OrderNumber)
	if err := s.recordTransition(ctx, enquiry.ID, domain.StatusReadyForProduction, productionUser.ID, note); err != nil {
		return nil, err
	}

	s.logger.Info("order confirmed",
		zap.String("enquiryID", enquiry.ID.String()),
		zap.String("orderNumber", *enquiry.OrderNumber),
		zap.String("productionUser", productionUser.ID.String()),
		zap.String("actor", userCtx.UserID.String()),
	)

	confirmPayload := Payload{
		Type:       domain.NotificationTypeOrderConfirmed,
		Title:      "Order confirmed",
		Message:    fmt.Sprintf("Order %s confirmed for enquiry %s", *enquiry.OrderNumber, enquiry.EnquiryNum),
		EnquiryID:  &enquiry.ID,
		EnquiryNum: enquiry.EnquiryNum,
		Data:       map[string]any{"orderNumber": *enquiry.OrderNumber},
	}
	s.notifications.NotifyUser(ctx, productionUser.ID, confirmPayload)
	if enquiry.EnquiryBy != productionUser.ID {
		s.notifications.NotifyUser(ctx, enquiry.EnquiryBy, confirmPayload)
	}

	loaded, err := s.enquiryRepo.GetByID(ctx, enquiry.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload enquiry: %w", err)
	}
	dto := mapper.ToEnquiryDTO(loaded)
	return &dto, nil
}

// RecordTransition appends an audit row for a stage change made by a
// sub-workflow service
func (s *WorkflowService) RecordTransition(ctx context.Context, enquiryID uuid.UUID, status domain.EnquiryStatus, assigneeID uuid.UUID, note string) error {
	return s.recordTransition(ctx, enquiryID, status, assigneeID, note)
}

func (s *WorkflowService) recordTransition(ctx context.Context, enquiryID uuid.UUID, status domain.EnquiryStatus, assigneeID uuid.UUID, note string) error {
	entry := &domain.EnquiryStatusHistory{
		EnquiryID:      enquiryID,
		Status:         status,
		AssignedPerson: assigneeID,
		Note:           note,
		ChangedAt:      time.Now(),
	}
	if err := s.historyRepo.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to record status history: %w", err)
	}
	return nil
}

// provision runs the auto-provisioning action for the (stage, assignee role)
// combination, if one is registered. Failures are logged and skipped; the
// stage change is the source of truth.
func (s *WorkflowService) provision(ctx context.Context, enquiry *domain.Enquiry, assignee *domain.User) {
	fn, ok := s.provisioners[provisionKey{enquiry.Status, assignee.Role}]
	if !ok {
		return
	}
	if err := fn(ctx, enquiry, assignee); err != nil {
		s.logger.Warn("stage record provisioning failed",
			zap.String("enquiryID", enquiry.ID.String()),
			zap.String("status", string(enquiry.Status)),
			zap.String("assigneeRole", string(assignee.Role)),
			zap.Error(err),
		)
	}
}

func (s *WorkflowService) provisionDesignWork(ctx context.Context, enquiry *domain.Enquiry, assignee *domain.User) error {
	work, err := s.designRepo.GetByEnquiry(ctx, enquiry.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.designRepo.Create(ctx, &domain.DesignWork{
			EnquiryID:    enquiry.ID,
			DesignerID:   assignee.ID,
			DesignStatus: domain.DesignStatusPending,
		})
	}
	if err != nil {
		return err
	}

	work.DesignerID = assignee.ID
	work.DesignStatus = domain.DesignStatusPending
	work.CompletedAt = nil
	return s.designRepo.Update(ctx, work)
}

func (s *WorkflowService) provisionProductionWorkflow(ctx context.Context, enquiry *domain.Enquiry, assignee *domain.User) error {
	workflow, err := s.productionRepo.GetWorkflowByEnquiry(ctx, enquiry.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.productionRepo.CreateWorkflow(ctx, &domain.ProductionWorkflow{
			EnquiryID:      enquiry.ID,
			ProductionLead: assignee.ID,
			Status:         domain.ProductionStatusNotStarted,
		})
	}
	if err != nil {
		return err
	}

	workflow.ProductionLead = assignee.ID
	workflow.Status = domain.ProductionStatusNotStarted
	return s.productionRepo.UpdateWorkflow(ctx, workflow)
}

func (s *WorkflowService) appendNote(ctx context.Context, enquiryID, authorID uuid.UUID, note string) {
	err := s.noteRepo.Create(ctx, &domain.EnquiryNote{
		EnquiryID: enquiryID,
		AuthorID:  authorID,
		Note:      note,
	})
	if err != nil {
		s.logger.Warn("failed to append enquiry note",
			zap.String("enquiryID", enquiryID.String()),
			zap.Error(err),
		)
	}
}

func (s *WorkflowService) transitionAllowed(from, to domain.EnquiryStatus) bool {
	if from == to {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
