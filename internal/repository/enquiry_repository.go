package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/solmount/enquiry-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnquiryFilters contains all filter options for listing enquiries
type EnquiryFilters struct {
	Status        *domain.EnquiryStatus
	ClientID      *uuid.UUID
	MaterialType  *domain.MaterialType
	AssignedTo    *uuid.UUID
	EnquiryBy     *uuid.UUID
	HasOrder      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	SearchQuery   *string
}

type EnquiryRepository struct {
	db *gorm.DB
}

func NewEnquiryRepository(db *gorm.DB) *EnquiryRepository {
	return &EnquiryRepository{db: db}
}

func (r *EnquiryRepository) Create(ctx context.Context, enquiry *domain.Enquiry) error {
	// Omit associations to avoid GORM trying to validate related records
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(enquiry).Error
}

// GetByID loads an enquiry with its related records. Visibility is enforced
// by the service layer, which also grants access to past participants.
func (r *EnquiryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Enquiry, error) {
	var enquiry domain.Enquiry
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("EnquiryByUser").
		Preload("AssignedUser").
		First(&enquiry, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &enquiry, nil
}

func (r *EnquiryRepository) GetByEnquiryNum(ctx context.Context, enquiryNum string) (*domain.Enquiry, error) {
	var enquiry domain.Enquiry
	err := r.db.WithContext(ctx).
		Preload("Client").
		First(&enquiry, "enquiry_num = ?", enquiryNum).Error
	if err != nil {
		return nil, err
	}
	return &enquiry, nil
}

func (r *EnquiryRepository) Update(ctx context.Context, enquiry *domain.Enquiry) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(enquiry).Error
}

// List returns enquiries visible to the requesting user, filtered and paginated
func (r *EnquiryRepository) List(ctx context.Context, page, pageSize int, filters *EnquiryFilters, sort SortConfig) ([]domain.Enquiry, int64, error) {
	var enquiries []domain.Enquiry
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Enquiry{}).
		Preload("Client").
		Preload("EnquiryByUser").
		Preload("AssignedUser")

	query = ApplyVisibilityScope(ctx, query)
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	fieldMap := map[string]string{
		"createdAt":     "created_at",
		"updatedAt":     "updated_at",
		"enquiryNum":    "enquiry_num",
		"status":        "status",
		"enquiryAmount": "enquiry_amount",
	}
	query = query.Order(BuildOrderClause(sort, fieldMap, "created_at"))

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Find(&enquiries).Error

	return enquiries, total, err
}

// ListWorkedOn returns enquiries the user has ever been assigned on, drawn
// from the status history. This surfaces past work that the current
// visibility scope no longer covers.
func (r *EnquiryRepository) ListWorkedOn(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]domain.Enquiry, int64, error) {
	var enquiries []domain.Enquiry
	var total int64

	sub := r.db.WithContext(ctx).Table("enquiry_status_history").
		Select("DISTINCT enquiry_id").
		Where("assigned_person = ?", userID)

	query := r.db.WithContext(ctx).Model(&domain.Enquiry{}).
		Preload("Client").
		Preload("AssignedUser").
		Where("id IN (?) OR enquiry_by = ?", sub, userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("updated_at DESC").Offset(offset).Limit(pageSize).Find(&enquiries).Error

	return enquiries, total, err
}

// MaxOrderNumberSuffix returns the highest numeric suffix among assigned
// order numbers, scanning rows that follow the ORD- format. Used to seed the
// order sequence on first use.
func (r *EnquiryRepository) MaxOrderNumberSuffix(ctx context.Context) (int, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&domain.Enquiry{}).
		Where("order_number IS NOT NULL").
		Pluck("order_number", &numbers).Error
	if err != nil {
		return 0, err
	}

	max := 0
	for _, n := range numbers {
		if suffix := domain.OrderNumberSuffix(n); suffix > max {
			max = suffix
		}
	}
	return max, nil
}

// CountByStatus returns enquiry counts grouped by workflow stage
func (r *EnquiryRepository) CountByStatus(ctx context.Context) (map[domain.EnquiryStatus]int64, error) {
	type row struct {
		Status domain.EnquiryStatus
		Count  int64
	}

	var rows []row
	query := r.db.WithContext(ctx).Model(&domain.Enquiry{}).
		Select("status, COUNT(*) as count").
		Group("status")
	query = ApplyVisibilityScope(ctx, query)
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[domain.EnquiryStatus]int64)
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// CountByMaterial returns enquiry counts grouped by material type
func (r *EnquiryRepository) CountByMaterial(ctx context.Context) (map[domain.MaterialType]int64, error) {
	type row struct {
		MaterialType domain.MaterialType
		Count        int64
	}

	var rows []row
	query := r.db.WithContext(ctx).Model(&domain.Enquiry{}).
		Select("material_type, COUNT(*) as count").
		Group("material_type")
	query = ApplyVisibilityScope(ctx, query)
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[domain.MaterialType]int64)
	for _, r := range rows {
		counts[r.MaterialType] = r.Count
	}
	return counts, nil
}

// SumEnquiryAmounts returns the total estimated value of visible enquiries,
// split into open and confirmed (order number assigned)
func (r *EnquiryRepository) SumEnquiryAmounts(ctx context.Context) (open float64, confirmed float64, err error) {
	type row struct {
		Confirmed bool
		Total     float64
	}

	var rows []row
	query := r.db.WithContext(ctx).Model(&domain.Enquiry{}).
		Select("order_number IS NOT NULL as confirmed, COALESCE(SUM(enquiry_amount), 0) as total").
		Group("order_number IS NOT NULL")
	query = ApplyVisibilityScope(ctx, query)
	if err = query.Scan(&rows).Error; err != nil {
		return 0, 0, err
	}

	for _, r := range rows {
		if r.Confirmed {
			confirmed = r.Total
		} else {
			open = r.Total
		}
	}
	return open, confirmed, nil
}

// CountAssignedPerUser returns the number of currently assigned enquiries per
// user, for workload views
func (r *EnquiryRepository) CountAssignedPerUser(ctx context.Context) (map[uuid.UUID]int64, error) {
	type row struct {
		CurrentAssignedPerson uuid.UUID
		Count                 int64
	}

	var rows []row
	err := r.db.WithContext(ctx).Model(&domain.Enquiry{}).
		Select("current_assigned_person, COUNT(*) as count").
		Where("status <> ?", domain.StatusDispatched).
		Group("current_assigned_person").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int64)
	for _, r := range rows {
		counts[r.CurrentAssignedPerson] = r.Count
	}
	return counts, nil
}

func (r *EnquiryRepository) applyFilters(query *gorm.DB, filters *EnquiryFilters) *gorm.DB {
	if filters == nil {
		return query
	}

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	if filters.ClientID != nil {
		query = query.Where("client_id = ?", *filters.ClientID)
	}

	if filters.MaterialType != nil {
		query = query.Where("material_type = ?", *filters.MaterialType)
	}

	if filters.AssignedTo != nil {
		query = query.Where("current_assigned_person = ?", *filters.AssignedTo)
	}

	if filters.EnquiryBy != nil {
		query = query.Where("enquiry_by = ?", *filters.EnquiryBy)
	}

	if filters.HasOrder != nil {
		if *filters.HasOrder {
			query = query.Where("order_number IS NOT NULL")
		} else {
			query = query.Where("order_number IS NULL")
		}
	}

	if filters.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filters.CreatedAfter)
	}

	if filters.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filters.CreatedBefore)
	}

	if filters.SearchQuery != nil && *filters.SearchQuery != "" {
		pattern := "%" + strings.ToLower(*filters.SearchQuery) + "%"
		query = query.Where("LOWER(enquiry_num) LIKE ? OR LOWER(detail) LIKE ? OR LOWER(order_number) LIKE ?",
			pattern, pattern, pattern)
	}

	return query
}
