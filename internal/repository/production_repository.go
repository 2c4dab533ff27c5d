package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/solmount/enquiry-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductionRepository struct {
	db *gorm.DB
}

func NewProductionRepository(db *gorm.DB) *ProductionRepository {
	return &ProductionRepository{db: db}
}

func (r *ProductionRepository) CreateWorkflow(ctx context.Context, workflow *domain.ProductionWorkflow) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(workflow).Error
}

func (r *ProductionRepository) GetWorkflowByEnquiry(ctx context.Context, enquiryID uuid.UUID) (*domain.ProductionWorkflow, error) {
	var workflow domain.ProductionWorkflow
	err := r.db.WithContext(ctx).
		Preload("Lead").
		Preload("Tasks").
		Preload("Tasks.Assignee").
		First(&workflow, "enquiry_id = ?", enquiryID).Error
	if err != nil {
		return nil, err
	}
	return &workflow, nil
}

func (r *ProductionRepository) GetWorkflowByID(ctx context.Context, id uuid.UUID) (*domain.ProductionWorkflow, error) {
	var workflow domain.ProductionWorkflow
	err := r.db.WithContext(ctx).
		Preload("Lead").
		Preload("Tasks").
		Preload("Tasks.Assignee").
		First(&workflow, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &workflow, nil
}

func (r *ProductionRepository) UpdateWorkflow(ctx context.Context, workflow *domain.ProductionWorkflow) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(workflow).Error
}

func (r *ProductionRepository) CreateTask(ctx context.Context, task *domain.ProductionTask) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

func (r *ProductionRepository) GetTaskByID(ctx context.Context, id uuid.UUID) (*domain.ProductionTask, error) {
	var task domain.ProductionTask
	err := r.db.WithContext(ctx).
		Preload("Assignee").
		First(&task, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *ProductionRepository) UpdateTask(ctx context.Context, task *domain.ProductionTask) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error
}

// AllTasksCompleted reports whether every task in the workflow is completed.
// A workflow with no tasks counts as completed.
func (r *ProductionRepository) AllTasksCompleted(ctx context.Context, workflowID uuid.UUID) (bool, error) {
	var pending int64
	err := r.db.WithContext(ctx).
		Model(&domain.ProductionTask{}).
		Where("workflow_id = ? AND status <> ?", workflowID, domain.TaskStatusCompleted).
		Count(&pending).Error
	return pending == 0, err
}

// ListByLead returns the open workflows led by a production user
func (r *ProductionRepository) ListByLead(ctx context.Context, leadID uuid.UUID) ([]domain.ProductionWorkflow, error) {
	var workflows []domain.ProductionWorkflow
	err := r.db.WithContext(ctx).
		Preload("Enquiry").
		Preload("Tasks").
		Where("production_lead = ? AND status <> ?", leadID, domain.ProductionStatusCompleted).
		Order("created_at ASC").
		Find(&workflows).Error
	return workflows, err
}
