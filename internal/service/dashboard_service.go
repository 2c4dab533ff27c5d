package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/solmount/enquiry-api/internal/domain"
	"github.com/solmount/enquiry-api/internal/repository"
	"go.uber.org/zap"
)

// DashboardService derives read-only metrics over the enquiry set
type DashboardService struct {
	enquiryRepo *repository.EnquiryRepository
	userRepo    *repository.UserRepository
	logger      *zap.Logger
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(enquiryRepo *repository.EnquiryRepository, userRepo *repository.UserRepository, logger *zap.Logger) *DashboardService {
	return &DashboardService{enquiryRepo: enquiryRepo, userRepo: userRepo, logger: logger}
}

// GetMetrics aggregates enquiry counts and amounts for the dashboard
func (s *DashboardService) GetMetrics(ctx context.Context) (*domain.DashboardMetrics, error) {
	byStatus, err := s.enquiryRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	byMaterial, err := s.enquiryRepo.CountByMaterial(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count by material: %w", err)
	}

	open, confirmed, err := s.enquiryRepo.SumEnquiryAmounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum amounts: %w", err)
	}

	var total int64
	for _, n := range byStatus {
		total += n
	}

	return &domain.DashboardMetrics{
		TotalEnquiries:    total,
		TotalAmount:       open + confirmed,
		ByStatus:          byStatus,
		ByMaterial:        byMaterial,
		DispatchedCount:   byStatus[domain.StatusDispatched],
		InProductionCount: byStatus[domain.StatusInProduction],
	}, nil
}

// GetWorkloads returns live assignment counts per user, busiest first.
// Dispatched enquiries are excluded from the counts.
func (s *DashboardService) GetWorkloads(ctx context.Context) ([]domain.UserWorkloadDTO, error) {
	counts, err := s.enquiryRepo.CountAssignedPerUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count assignments: %w", err)
	}

	workloads := make([]domain.UserWorkloadDTO, 0, len(counts))
	for userID, assigned := range counts {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			// stale assignment referencing a removed user
			s.logger.Warn("skipping workload for unknown user", zap.String("userID", userID.String()))
			continue
		}
		workloads = append(workloads, domain.UserWorkloadDTO{
			UserID:   user.ID,
			UserName: user.Name,
			Role:     user.Role,
			Assigned: assigned,
		})
	}

	sort.Slice(workloads, func(i, j int) bool {
		if workloads[i].Assigned != workloads[j].Assigned {
			return workloads[i].Assigned > workloads[j].Assigned
		}
		return workloads[i].UserName < workloads[j].UserName
	})
	return workloads, nil
}
