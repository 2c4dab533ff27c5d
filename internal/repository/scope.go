package repository

import (
	"context"
	"strings"

	"github.com/solmount/enquiry-api/internal/auth"
	"github.com/solmount/enquiry-api/internal/domain"
	"gorm.io/gorm"
)

// MaxPageSize is the maximum allowed page size for paginated queries
const MaxPageSize = 200

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// SortConfig holds sorting configuration for list queries
type SortConfig struct {
	Field string    // The field to sort by (API field name)
	Order SortOrder // asc or desc
}

// DefaultSortConfig returns a default sort configuration (created_at DESC)
func DefaultSortConfig() SortConfig {
	return SortConfig{
		Field: "createdAt",
		Order: SortOrderDesc,
	}
}

// ParseSortOrder parses a string into SortOrder, defaulting to desc
func ParseSortOrder(s string) SortOrder {
	if strings.ToLower(s) == "asc" {
		return SortOrderAsc
	}
	return SortOrderDesc
}

// BuildOrderClause builds the SQL ORDER BY clause from field mapping and sort config.
// fieldMap maps API field names to database column names; unknown fields fall
// back to the default column.
func BuildOrderClause(config SortConfig, fieldMap map[string]string, defaultColumn string) string {
	column, ok := fieldMap[config.Field]
	if !ok {
		column = defaultColumn
	}

	order := "DESC"
	if config.Order == SortOrderAsc {
		order = "ASC"
	}

	return column + " " + order
}

// ApplyVisibilityScope restricts an enquiry query to what the requesting user
// may see. Admin roles see everything; salesmen see enquiries they created or
// currently own; every other role sees only enquiries currently assigned to
// them.
func ApplyVisibilityScope(ctx context.Context, query *gorm.DB) *gorm.DB {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		// No user context means an internal caller; do not restrict
		return query
	}
	if userCtx.Role.IsAdmin() {
		return query
	}
	if userCtx.Role == domain.RoleSalesman {
		return query.Where("enquiry_by = ? OR current_assigned_person = ?", userCtx.UserID, userCtx.UserID)
	}
	return query.Where("current_assigned_person = ?", userCtx.UserID)
}

// ApplyVisibilityScopeWithAlias applies the visibility scope with a table
// qualifier, for queries that join the enquiries table.
func ApplyVisibilityScopeWithAlias(ctx context.Context, query *gorm.DB, alias string) *gorm.DB {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return query
	}
	if userCtx.Role.IsAdmin() {
		return query
	}
	if userCtx.Role == domain.RoleSalesman {
		return query.Where(alias+".enquiry_by = ? OR "+alias+".current_assigned_person = ?", userCtx.UserID, userCtx.UserID)
	}
	return query.Where(alias+".current_assigned_person = ?", userCtx.UserID)
}
