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

// ProductionService handles the production-stage sub-workflow
type ProductionService struct {
	productionRepo *repository.ProductionRepository
	enquiryRepo    *repository.EnquiryRepository
	userRepo       *repository.UserRepository
	workflow       *WorkflowService
	notifications  *NotificationService
	logger         *zap.Logger
}

// NewProductionService creates a new ProductionService instance
func NewProductionService(
	productionRepo *repository.ProductionRepository,
	enquiryRepo *repository.EnquiryRepository,
	userRepo *repository.UserRepository,
	workflow *WorkflowService,
	notifications *NotificationService,
	logger *zap.Logger,
) *ProductionService {
	return &ProductionService{
		productionRepo: productionRepo,
		enquiryRepo:    enquiryRepo,
		userRepo:       userRepo,
		workflow:       workflow,
		notifications:  notifications,
		logger:         logger,
	}
}

// AssignProduction moves the enquiry into ReadyForProduction, owned by the
// given production lead, and upserts the production workflow
func (s *ProductionService) AssignProduction(ctx context.Context, enquiryID uuid.UUID, req *domain.AssignProductionRequest) (*domain.ProductionWorkflowDTO, error) {
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

	lead, err := s.userRepo.GetByID(ctx, req.ProductionLeadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get production lead: %w", err)
	}
	if lead.Role != domain.RoleProduction {
		return nil, fmt.Errorf("%w: user %s is not a production user", ErrInvalidInput, lead.ID)
	}

	enquiry.Status = domain.StatusReadyForProduction
	enquiry.CurrentAssignedPerson = lead.ID
	enquiry.WorkAssignedDate = time.Now()

	if err := s.enquiryRepo.Update(ctx, enquiry); err != nil {
		return nil, fmt.Errorf("failed to update enquiry: %w", err)
	}

	workflow, err := s.upsertWorkflow(ctx, enquiry, lead)
	if err != nil {
		return nil, err
	}

	if err := s.workflow.RecordTransition(ctx, enquiry.ID, domain.StatusReadyForProduction, lead.ID, "Assigned to production"); err != nil {
		return nil, err
	}

	s.notifications.NotifyUser(ctx, lead.ID, Payload{
		Type:       domain.NotificationTypeProductionAssigned,
		Title:      "Production work assigned",
		Message:    fmt.Sprintf("Enquiry %s assigned to you for production", enquiry.EnquiryNum),
		EnquiryID:  &enquiry.ID,
		EnquiryNum: enquiry.EnquiryNum,
	})

	dto := mapper.ToProductionWorkflowDTO(workflow)
	return &dto, nil
}

// GetByEnquiry returns the enquiry's production workflow with its tasks
func (s *ProductionService) GetByEnquiry(ctx context.Context, enquiryID uuid.UUID) (*domain.ProductionWorkflowDTO, error) {
	workflow, err := s.productionRepo.GetWorkflowByEnquiry(ctx, enquiryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get production workflow: %w", err)
	}
	dto := mapper.ToProductionWorkflowDTO(workflow)
	return &dto, nil
}

// StartWorkflow begins production: the workflow moves to in_progress at the
// cutting step and the enquiry itself moves to InProduction
func (s *ProductionService) StartWorkflow(ctx context.Context, workflowID uuid.UUID) (*domain.ProductionWorkflowDTO, error) {
	workflow, err := s.ownedWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	workflow.Status = domain.ProductionStatusInProgress
	workflow.StartedAt = &now
	// cutting is the default opening step, not an enforced sequence
	workflow.CurrentStep = string(domain.StepCutting)

	if err := s.productionRepo.UpdateWorkflow(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to update production workflow: %w", err)
	}

	enquiry, err := s.enquiryRepo.GetByID(ctx, workflow.EnquiryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get enquiry: %w", err)
	}

	enquiry.Status = domain.StatusInProduction
	enquiry.WorkAssignedDate = now
	if err := s.enquiryRepo.Update(ctx, enquiry); err != nil {
		return nil, fmt.Errorf("failed to update enquiry: %w", err)
	}

	if err := s.workflow.RecordTransition(ctx, enquiry.ID, domain.StatusInProduction, enquiry.CurrentAssignedPerson, "Production started"); err != nil {
		return nil, err
	}

	s.logger.Info("production started",
		zap.String("workflowID", workflow.ID.String()),
		zap.String("enquiryID", enquiry.ID.String()),
	)

	dto := mapper.ToProductionWorkflowDTO(workflow)
	return &dto, nil
}

// CreateTask adds a task step to the workflow
func (s *ProductionService) CreateTask(ctx context.Context, workflowID uuid.UUID, req *domain.CreateTaskRequest) (*domain.ProductionTaskDTO, error) {
	if !req.Step.IsValid() {
		return nil, fmt.Errorf("%w: unknown production step %q", ErrInvalidInput, req.Step)
	}

	workflow, err := s.ownedWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	task := &domain.ProductionTask{
		WorkflowID: workflow.ID,
		Step:       req.Step,
		AssignedTo: req.AssignedTo,
		Status:     domain.TaskStatusPending,
		Notes:      req.Notes,
	}
	if err := s.productionRepo.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	dto := mapper.ToProductionTaskDTO(task)
	return &dto, nil
}

// UpdateTask applies a partial update. Moving to in_progress stamps
// startedAt once; moving to completed stamps completedAt once.
func (s *ProductionService) UpdateTask(ctx context.Context, taskID uuid.UUID, req *domain.UpdateTaskRequest) (*domain.ProductionTaskDTO, error) {
	task, err := s.productionRepo.GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if _, err := s.ownedWorkflow(ctx, task.WorkflowID); err != nil {
		return nil, err
	}

	now := time.Now()
	if req.Status != "" {
		task.Status = req.Status
		switch req.Status {
		case domain.TaskStatusInProgress:
			if task.StartedAt == nil {
				task.StartedAt = &now
			}
		case domain.TaskStatusCompleted:
			if task.CompletedAt == nil {
				task.CompletedAt = &now
			}
		}
	}
	if req.AssignedTo != nil {
		task.AssignedTo = req.AssignedTo
	}
	if req.Notes != "" {
		task.Notes = req.Notes
	}

	if err := s.productionRepo.UpdateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	dto := mapper.ToProductionTaskDTO(task)
	return &dto, nil
}

// CompleteWorkflow finishes production and returns the enquiry to its
// original salesperson at ReadyForDispatch. Every task must be completed
// first.
func (s *ProductionService) CompleteWorkflow(ctx context.Context, workflowID uuid.UUID) (*domain.ProductionWorkflowDTO, error) {
	workflow, err := s.ownedWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	done, err := s.productionRepo.AllTasksCompleted(ctx, workflow.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check tasks: %w", err)
	}
	if !done {
		return nil, ErrTasksIncomplete
	}

	now := time.Now()
	workflow.Status = domain.ProductionStatusCompleted
	workflow.CompletedAt = &now
	if err := s.productionRepo.UpdateWorkflow(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to update production workflow: %w", err)
	}

	enquiry, err := s.enquiryRepo.GetByID(ctx, workflow.EnquiryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get enquiry: %w", err)
	}

	enquiry.Status = domain.StatusReadyForDispatch
	enquiry.CurrentAssignedPerson = enquiry.EnquiryBy
	enquiry.WorkAssignedDate = now
	if err := s.enquiryRepo.Update(ctx, enquiry); err != nil {
		return nil, fmt.Errorf("failed to update enquiry: %w", err)
	}

	if err := s.workflow.RecordTransition(ctx, enquiry.ID, domain.StatusReadyForDispatch, enquiry.EnquiryBy, "Production completed, ready for dispatch"); err != nil {
		return nil, err
	}

	s.logger.Info("production completed",
		zap.String("workflowID", workflow.ID.String()),
		zap.String("enquiryID", enquiry.ID.String()),
		zap.String("returnedTo", enquiry.EnquiryBy.String()),
	)

	s.notifications.NotifyUser(ctx, enquiry.EnquiryBy, Payload{
		Type:       domain.NotificationTypeProductionCompleted,
		Title:      "Production completed",
		Message:    fmt.Sprintf("Production for enquiry %s is complete, ready for dispatch", enquiry.EnquiryNum),
		EnquiryID:  &enquiry.ID,
		EnquiryNum: enquiry.EnquiryNum,
	})

	dto := mapper.ToProductionWorkflowDTO(workflow)
	return &dto, nil
}

// ownedWorkflow loads the workflow and checks the caller is its production
// lead or an admin
func (s *ProductionService) ownedWorkflow(ctx context.Context, workflowID uuid.UUID) (*domain.ProductionWorkflow, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	workflow, err := s.productionRepo.GetWorkflowByID(ctx, workflowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get production workflow: %w", err)
	}

	if workflow.ProductionLead != userCtx.UserID && !userCtx.Role.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	return workflow, nil
}

func (s *ProductionService) upsertWorkflow(ctx context.Context, enquiry *domain.Enquiry, lead *domain.User) (*domain.ProductionWorkflow, error) {
	workflow, err := s.productionRepo.GetWorkflowByEnquiry(ctx, enquiry.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		workflow = &domain.ProductionWorkflow{
			EnquiryID:      enquiry.ID,
			ProductionLead: lead.ID,
			Status:         domain.ProductionStatusNotStarted,
		}
		if err := s.productionRepo.CreateWorkflow(ctx, workflow); err != nil {
			return nil, fmt.Errorf("failed to create production workflow: %w", err)
		}
		return workflow, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get production workflow: %w", err)
	}

	workflow.ProductionLead = lead.ID
	workflow.Status = domain.ProductionStatusNotStarted
	if err := s.productionRepo.UpdateWorkflow(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to update production workflow: %w", err)
	}
	return workflow, nil
}
