package domain

import (
	"github.com/google/uuid"
)

// DTOs for API requests and responses

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// PaginatedResponse wraps list results with paging metadata
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

type UserDTO struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone,omitempty"`
	Role           UserRole  `json:"role"`
	WorkflowStatus []string  `json:"workflowStatus,omitempty"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      string    `json:"createdAt"` // ISO 8601
	UpdatedAt      string    `json:"updatedAt"` // ISO 8601
}

type CreateUserRequest struct {
	Email          string   `json:"email" validate:"required,email"`
	Name           string   `json:"name" validate:"required,max=200"`
	Phone          string   `json:"phone,omitempty" validate:"omitempty,max=50"`
	Role           UserRole `json:"role" validate:"required"`
	WorkflowStatus []string `json:"workflowStatus,omitempty"`
	Password       string   `json:"password" validate:"required,min=8"`
}

type UpdateUserRequest struct {
	Name           string    `json:"name,omitempty" validate:"omitempty,max=200"`
	Phone          string    `json:"phone,omitempty" validate:"omitempty,max=50"`
	Role           *UserRole `json:"role,omitempty"`
	WorkflowStatus []string  `json:"workflowStatus,omitempty"`
	IsActive       *bool     `json:"isActive,omitempty"`
}

type ClientDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contactPerson,omitempty"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	City          string    `json:"city,omitempty"`
	State         string    `json:"state,omitempty"`
	Pincode       string    `json:"pincode,omitempty"`
	GSTNumber     string    `json:"gstNumber,omitempty"`
	CreatedAt     string    `json:"createdAt"`
	UpdatedAt     string    `json:"updatedAt"`
}

type CreateClientRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	ContactPerson string `json:"contactPerson,omitempty" validate:"omitempty,max=200"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	Phone         string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address       string `json:"address,omitempty" validate:"omitempty,max=500"`
	City          string `json:"city,omitempty" validate:"omitempty,max=100"`
	State         string `json:"state,omitempty" validate:"omitempty,max=100"`
	Pincode       string `json:"pincode,omitempty" validate:"omitempty,max=20"`
	GSTNumber     string `json:"gstNumber,omitempty" validate:"omitempty,max=50"`
}

type UpdateClientRequest struct {
	Name          string `json:"name,omitempty" validate:"omitempty,max=200"`
	ContactPerson string `json:"contactPerson,omitempty" validate:"omitempty,max=200"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	Phone         string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address       string `json:"address,omitempty" validate:"omitempty,max=500"`
	City          string `json:"city,omitempty" validate:"omitempty,max=100"`
	State         string `json:"state,omitempty" validate:"omitempty,max=100"`
	Pincode       string `json:"pincode,omitempty" validate:"omitempty,max=20"`
	GSTNumber     string `json:"gstNumber,omitempty" validate:"omitempty,max=50"`
}

type EnquiryDTO struct {
	ID                    uuid.UUID     `json:"id"`
	EnquiryNum            string        `json:"enquiryNum"`
	ClientID              uuid.UUID     `json:"clientId"`
	ClientName            string        `json:"clientName,omitempty"`
	MaterialType          MaterialType  `json:"materialType"`
	Detail                string        `json:"detail,omitempty"`
	EnquiryAmount         float64       `json:"enquiryAmount"`
	Status                EnquiryStatus `json:"status"`
	EnquiryBy             uuid.UUID     `json:"enquiryBy"`
	EnquiryByName         string        `json:"enquiryByName,omitempty"`
	CurrentAssignedPerson uuid.UUID     `json:"currentAssignedPerson"`
	AssignedPersonName    string        `json:"assignedPersonName,omitempty"`
	WorkAssignedDate      string        `json:"workAssignedDate"`
	OrderNumber           *string       `json:"orderNumber,omitempty"`
	OrderDate             *string       `json:"orderDate,omitempty"`
	CreatedAt             string        `json:"createdAt"`
	UpdatedAt             string        `json:"updatedAt"`
}

type CreateEnquiryRequest struct {
	EnquiryNum    string       `json:"enquiryNum,omitempty" validate:"omitempty,max=50"`
	ClientID      uuid.UUID    `json:"clientId" validate:"required"`
	MaterialType  MaterialType `json:"materialType" validate:"required"`
	Detail        string       `json:"detail" validate:"required"`
	EnquiryAmount float64      `json:"enquiryAmount" validate:"gte=0"`
}

type SetStatusRequest struct {
	Status           EnquiryStatus `json:"status" validate:"required"`
	AssignedPersonID *uuid.UUID    `json:"assignedPersonId,omitempty"`
	Note             string        `json:"note,omitempty"`
}

type AssignRequest struct {
	AssignedPersonID uuid.UUID `json:"assignedPersonId" validate:"required"`
	Note             string    `json:"note,omitempty"`
}

type ConfirmOrderRequest struct {
	OrderNumber      string     `json:"orderNumber,omitempty" validate:"omitempty,max=50"`
	ProductionUserID *uuid.UUID `json:"productionUserId,omitempty"`
}

type StatusHistoryDTO struct {
	ID                 uuid.UUID     `json:"id"`
	EnquiryID          uuid.UUID     `json:"enquiryId"`
	Status             EnquiryStatus `json:"status"`
	AssignedPerson     uuid.UUID     `json:"assignedPerson"`
	AssignedPersonName string        `json:"assignedPersonName,omitempty"`
	Note               string        `json:"note,omitempty"`
	ChangedAt          string        `json:"changedAt"`
}

type EnquiryNoteDTO struct {
	ID         uuid.UUID `json:"id"`
	EnquiryID  uuid.UUID `json:"enquiryId"`
	AuthorID   uuid.UUID `json:"authorId"`
	AuthorName string    `json:"authorName,omitempty"`
	Note       string    `json:"note"`
	CreatedAt  string    `json:"createdAt"`
}

type CreateNoteRequest struct {
	Note string `json:"note" validate:"required"`
}

type DesignWorkDTO struct {
	ID                 uuid.UUID    `json:"id"`
	EnquiryID          uuid.UUID    `json:"enquiryId"`
	EnquiryNum         string       `json:"enquiryNum,omitempty"`
	DesignerID         uuid.UUID    `json:"designerId"`
	DesignerName       string       `json:"designerName,omitempty"`
	ClientRequirements string       `json:"clientRequirements,omitempty"`
	DesignerNotes      string       `json:"designerNotes,omitempty"`
	DesignStatus       DesignStatus `json:"designStatus"`
	CompletedAt        *string      `json:"completedAt,omitempty"`
	CreatedAt          string       `json:"createdAt"`
	UpdatedAt          string       `json:"updatedAt"`
}

type AssignDesignerRequest struct {
	DesignerID         uuid.UUID `json:"designerId" validate:"required"`
	ClientRequirements string    `json:"clientRequirements,omitempty"`
}

type SaveDesignProgressRequest struct {
	DesignerNotes      string `json:"designerNotes,omitempty"`
	ClientRequirements string `json:"clientRequirements,omitempty"`
}

type CompleteDesignRequest struct {
	Note string `json:"note,omitempty"`
}

type DesignAttachmentDTO struct {
	ID           uuid.UUID `json:"id"`
	EnquiryID    uuid.UUID `json:"enquiryId"`
	Filename     string    `json:"filename"`
	ContentType  string    `json:"contentType,omitempty"`
	Size         int64     `json:"size"`
	FileURL      string    `json:"fileUrl"`
	UploadedBy   uuid.UUID `json:"uploadedBy"`
	UploaderName string    `json:"uploaderName,omitempty"`
	CreatedAt    string    `json:"createdAt"`
}

type CreateAttachmentRequest struct {
	Filename    string `json:"filename" validate:"required,max=255"`
	ContentType string `json:"contentType,omitempty" validate:"omitempty,max=100"`
	Size        int64  `json:"size" validate:"gte=0"`
	FileURL     string `json:"fileUrl" validate:"required,max=500"`
}

type ProductionWorkflowDTO struct {
	ID             uuid.UUID           `json:"id"`
	EnquiryID      uuid.UUID           `json:"enquiryId"`
	EnquiryNum     string              `json:"enquiryNum,omitempty"`
	ProductionLead uuid.UUID           `json:"productionLead"`
	LeadName       string              `json:"leadName,omitempty"`
	Status         ProductionStatus    `json:"status"`
	CurrentStep    string              `json:"currentStep,omitempty"`
	Notes          string              `json:"notes,omitempty"`
	StartedAt      *string             `json:"startedAt,omitempty"`
	CompletedAt    *string             `json:"completedAt,omitempty"`
	Tasks          []ProductionTaskDTO `json:"tasks,omitempty"`
	CreatedAt      string              `json:"createdAt"`
	UpdatedAt      string              `json:"updatedAt"`
}

type ProductionTaskDTO struct {
	ID           uuid.UUID      `json:"id"`
	WorkflowID   uuid.UUID      `json:"workflowId"`
	Step         ProductionStep `json:"step"`
	AssignedTo   *uuid.UUID     `json:"assignedTo,omitempty"`
	AssigneeName string         `json:"assigneeName,omitempty"`
	Status       TaskStatus     `json:"status"`
	Notes        string         `json:"notes,omitempty"`
	StartedAt    *string        `json:"startedAt,omitempty"`
	CompletedAt  *string        `json:"completedAt,omitempty"`
}

type AssignProductionRequest struct {
	ProductionLeadID uuid.UUID `json:"productionLeadId" validate:"required"`
}

type CreateTaskRequest struct {
	Step       ProductionStep `json:"step" validate:"required"`
	AssignedTo *uuid.UUID     `json:"assignedTo,omitempty"`
	Notes      string         `json:"notes,omitempty"`
}

type UpdateTaskRequest struct {
	Status     TaskStatus `json:"status,omitempty"`
	AssignedTo *uuid.UUID `json:"assignedTo,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

type DispatchWorkDTO struct {
	ID                    uuid.UUID      `json:"id"`
	EnquiryID             uuid.UUID      `json:"enquiryId"`
	EnquiryNum            string         `json:"enquiryNum,omitempty"`
	DispatchAssignedTo    uuid.UUID      `json:"dispatchAssignedTo"`
	AssigneeName          string         `json:"assigneeName,omitempty"`
	TrackingNumber        string         `json:"trackingNumber,omitempty"`
	DispatchDate          *string        `json:"dispatchDate,omitempty"`
	EstimatedDeliveryDate *string        `json:"estimatedDeliveryDate,omitempty"`
	Status                DispatchStatus `json:"status"`
	Notes                 string         `json:"notes,omitempty"`
	CreatedAt             string         `json:"createdAt"`
	UpdatedAt             string         `json:"updatedAt"`
}

type AssignDispatchRequest struct {
	DispatchAssignedTo uuid.UUID `json:"dispatchAssignedTo" validate:"required"`
}

type UpdateDispatchRequest struct {
	TrackingNumber        string          `json:"trackingNumber,omitempty" validate:"omitempty,max=100"`
	DispatchDate          *string         `json:"dispatchDate,omitempty"`
	EstimatedDeliveryDate *string         `json:"estimatedDeliveryDate,omitempty"`
	Status                *DispatchStatus `json:"status,omitempty"`
	Notes                 string          `json:"notes,omitempty"`
}

type DocumentItemRequest struct {
	Description string  `json:"description" validate:"required,max=500"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
	Unit        string  `json:"unit,omitempty" validate:"omitempty,max=50"`
	UnitPrice   float64 `json:"unitPrice" validate:"gte=0"`
	Amount      float64 `json:"amount" validate:"gte=0"`
}

type CreateQuotationRequest struct {
	QuotationNum string                `json:"quotationNum" validate:"required,max=50"`
	EnquiryID    uuid.UUID             `json:"enquiryId" validate:"required"`
	Subtotal     float64               `json:"subtotal" validate:"gte=0"`
	Discount     float64               `json:"discount" validate:"gte=0"`
	Tax          float64               `json:"tax" validate:"gte=0"`
	GrandTotal   float64               `json:"grandTotal" validate:"gte=0"`
	Items        []DocumentItemRequest `json:"items" validate:"required,min=1,dive"`
}

type QuotationDTO struct {
	ID           uuid.UUID         `json:"id"`
	QuotationNum string            `json:"quotationNum"`
	EnquiryID    uuid.UUID         `json:"enquiryId"`
	ClientID     uuid.UUID         `json:"clientId"`
	PreparedBy   uuid.UUID         `json:"preparedBy"`
	Subtotal     float64           `json:"subtotal"`
	Discount     float64           `json:"discount"`
	Tax          float64           `json:"tax"`
	GrandTotal   float64           `json:"grandTotal"`
	Status       DocumentStatus    `json:"status"`
	Items        []DocumentItemDTO `json:"items,omitempty"`
	CreatedAt    string            `json:"createdAt"`
	UpdatedAt    string            `json:"updatedAt"`
}

type CreateInvoiceRequest struct {
	InvoiceNum string                `json:"invoiceNum" validate:"required,max=50"`
	EnquiryID  uuid.UUID             `json:"enquiryId" validate:"required"`
	Subtotal   float64               `json:"subtotal" validate:"gte=0"`
	Discount   float64               `json:"discount" validate:"gte=0"`
	Tax        float64               `json:"tax" validate:"gte=0"`
	GrandTotal float64               `json:"grandTotal" validate:"gte=0"`
	Items      []DocumentItemRequest `json:"items" validate:"required,min=1,dive"`
}

type InvoiceDTO struct {
	ID         uuid.UUID         `json:"id"`
	InvoiceNum string            `json:"invoiceNum"`
	EnquiryID  uuid.UUID         `json:"enquiryId"`
	ClientID   uuid.UUID         `json:"clientId"`
	PreparedBy uuid.UUID         `json:"preparedBy"`
	Subtotal   float64           `json:"subtotal"`
	Discount   float64           `json:"discount"`
	Tax        float64           `json:"tax"`
	GrandTotal float64           `json:"grandTotal"`
	Status     DocumentStatus    `json:"status"`
	Items      []DocumentItemDTO `json:"items,omitempty"`
	CreatedAt  string            `json:"createdAt"`
	UpdatedAt  string            `json:"updatedAt"`
}

type DocumentItemDTO struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Quantity    float64   `json:"quantity"`
	Unit        string    `json:"unit,omitempty"`
	UnitPrice   float64   `json:"unitPrice"`
	Amount      float64   `json:"amount"`
}

type UpdateDocumentStatusRequest struct {
	Status DocumentStatus `json:"status" validate:"required,oneof=draft sent accepted"`
}

type NotificationDTO struct {
	ID         uuid.UUID  `json:"id"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	EnquiryID  *uuid.UUID `json:"enquiryId,omitempty"`
	EnquiryNum string     `json:"enquiryNum,omitempty"`
	Read       bool       `json:"read"`
	ReadAt     *string    `json:"readAt,omitempty"`
	CreatedAt  string     `json:"createdAt"`
}

// UnreadCountDTO holds the count of unread notifications
type UnreadCountDTO struct {
	Count int `json:"count"`
}

// DashboardMetrics holds derived read-only metrics over the enquiry set
type DashboardMetrics struct {
	TotalEnquiries    int64                   `json:"totalEnquiries"`
	TotalAmount       float64                 `json:"totalAmount"`
	ByStatus          map[EnquiryStatus]int64 `json:"byStatus"`
	ByMaterial        map[MaterialType]int64  `json:"byMaterial"`
	DispatchedCount   int64                   `json:"dispatchedCount"`
	InProductionCount int64                   `json:"inProductionCount"`
}

// UserWorkloadDTO holds the number of live assignments per user
type UserWorkloadDTO struct {
	UserID   uuid.UUID `json:"userId"`
	UserName string    `json:"userName"`
	Role     UserRole  `json:"role"`
	Assigned int64     `json:"assigned"`
}
