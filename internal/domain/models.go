package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when the database has no uuid default (sqlite)
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// UserRole represents a user's functional role in the workflow
type UserRole string

const (
	RoleSuperAdmin UserRole = "superadmin"
	RoleDirector   UserRole = "director"
	RoleSalesman   UserRole = "salesman"
	RoleDesigner   UserRole = "designer"
	RoleProduction UserRole = "production"
	RolePurchase   UserRole = "purchase"
)

// IsValid checks if the UserRole is a valid enum value
func (r UserRole) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleDirector, RoleSalesman, RoleDesigner, RoleProduction, RolePurchase:
		return true
	}
	return false
}

// IsAdmin reports whether the role has unrestricted visibility
func (r UserRole) IsAdmin() bool {
	return r == RoleSuperAdmin || r == RoleDirector
}

// User represents a user in the system
type User struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string         `gorm:"type:varchar(255);not null;unique" json:"email"`
	Name           string         `gorm:"type:varchar(200);not null" json:"name"`
	Phone          string         `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Role           UserRole       `gorm:"type:varchar(50);not null;index" json:"role"`
	WorkflowStatus datatypes.JSON `gorm:"column:workflow_status" json:"workflowStatus,omitempty"`
	PasswordHash   string         `gorm:"type:varchar(255);column:password_hash" json:"-"`
	IsActive       bool           `gorm:"not null;default:true;column:is_active" json:"isActive"`
	LastLoginAt    *time.Time     `gorm:"column:last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// BeforeCreate assigns an ID when the database has no uuid default (sqlite)
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Client represents a customer organization
type Client struct {
	BaseModel
	Name          string    `gorm:"type:varchar(200);not null;index"`
	ContactPerson string    `gorm:"type:varchar(200);column:contact_person"`
	Email         string    `gorm:"type:varchar(255)"`
	Phone         string    `gorm:"type:varchar(50)"`
	Address       string    `gorm:"type:varchar(500)"`
	City          string    `gorm:"type:varchar(100)"`
	State         string    `gorm:"type:varchar(100)"`
	Pincode       string    `gorm:"type:varchar(20)"`
	GSTNumber     string    `gorm:"type:varchar(50);column:gst_number"`
	Enquiries     []Enquiry `gorm:"foreignKey:ClientID"`
}

// MaterialType represents the structure material requested in an enquiry
type MaterialType string

const (
	MaterialAluminium MaterialType = "Aluminium"
	MaterialGI        MaterialType = "GI"
	MaterialGP        MaterialType = "GP"
	MaterialBOS       MaterialType = "BOS"
)

// IsValid checks if the MaterialType is a valid enum value
func (m MaterialType) IsValid() bool {
	switch m {
	case MaterialAluminium, MaterialGI, MaterialGP, MaterialBOS:
		return true
	}
	return false
}

// EnquiryStatus represents a stage in the enquiry workflow
type EnquiryStatus string

const (
	StatusEnquiry            EnquiryStatus = "Enquiry"
	StatusDesign             EnquiryStatus = "Design"
	StatusBOQ                EnquiryStatus = "BOQ"
	StatusReadyForProduction EnquiryStatus = "ReadyForProduction"
	StatusPurchaseWaiting    EnquiryStatus = "PurchaseWaiting"
	StatusInProduction       EnquiryStatus = "InProduction"
	StatusProductionComplete EnquiryStatus = "ProductionComplete"
	StatusHotdip             EnquiryStatus = "Hotdip"
	StatusReadyForDispatch   EnquiryStatus = "ReadyForDispatch"
	StatusDispatched         EnquiryStatus = "Dispatched"
)

// AllEnquiryStatuses lists the workflow stages in conventional forward order
var AllEnquiryStatuses = []EnquiryStatus{
	StatusEnquiry,
	StatusDesign,
	StatusBOQ,
	StatusReadyForProduction,
	StatusPurchaseWaiting,
	StatusInProduction,
	StatusProductionComplete,
	StatusHotdip,
	StatusReadyForDispatch,
	StatusDispatched,
}

// IsValid checks if the EnquiryStatus is a valid enum value
func (s EnquiryStatus) IsValid() bool {
	for _, known := range AllEnquiryStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Enquiry is the central workflow entity. It is created by a salesperson and
// moves through the departmental stages; currentAssignedPerson is the single
// owner at any point in time, enquiryBy is the permanent home owner the work
// returns to after sub-stages complete.
type Enquiry struct {
	BaseModel
	EnquiryNum            string        `gorm:"type:varchar(50);not null;unique;index;column:enquiry_num"`
	ClientID              uuid.UUID     `gorm:"type:uuid;not null;index;column:client_id"`
	Client                *Client       `gorm:"foreignKey:ClientID"`
	MaterialType          MaterialType  `gorm:"type:varchar(50);not null;column:material_type"`
	Detail                string        `gorm:"type:text"`
	EnquiryAmount         float64       `gorm:"type:decimal(15,2);not null;default:0;column:enquiry_amount"`
	Status                EnquiryStatus `gorm:"type:varchar(50);not null;default:'Enquiry';index"`
	EnquiryBy             uuid.UUID     `gorm:"type:uuid;not null;index;column:enquiry_by"`
	EnquiryByUser         *User         `gorm:"foreignKey:EnquiryBy"`
	CurrentAssignedPerson uuid.UUID     `gorm:"type:uuid;not null;index;column:current_assigned_person"`
	AssignedUser          *User         `gorm:"foreignKey:CurrentAssignedPerson"`
	WorkAssignedDate      time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP;column:work_assigned_date"`
	OrderNumber           *string       `gorm:"type:varchar(50);unique;column:order_number"`
	OrderDate             *time.Time    `gorm:"column:order_date"`
}

// OrderNumberSuffix extracts the numeric suffix of an ORD-xxxx order number.
// Returns 0 when the number does not follow the expected format.
func OrderNumberSuffix(orderNumber string) int {
	const prefix = "ORD-"
	if !strings.HasPrefix(orderNumber, prefix) {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimPrefix(orderNumber, prefix))
	if err != nil {
		return 0
	}
	return n
}

// EnquiryStatusHistory is the append-only audit log of workflow transitions.
// One row per transition; rows are never updated or deleted.
type EnquiryStatusHistory struct {
	ID             uuid.UUID     `gorm:"type:uuid;primary_key"`
	EnquiryID      uuid.UUID     `gorm:"type:uuid;not null;index;column:enquiry_id"`
	Enquiry        *Enquiry      `gorm:"foreignKey:EnquiryID"`
	Status         EnquiryStatus `gorm:"type:varchar(50);not null"`
	AssignedPerson uuid.UUID     `gorm:"type:uuid;not null;index;column:assigned_person"`
	AssignedUser   *User         `gorm:"foreignKey:AssignedPerson"`
	Note           string        `gorm:"type:text"`
	ChangedAt      time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP;column:changed_at"`
}

// BeforeCreate assigns an ID when the database has no uuid default (sqlite)
func (h *EnquiryStatusHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// TableName overrides the default table name
func (EnquiryStatusHistory) TableName() string {
	return "enquiry_status_history"
}

// EnquiryNote is free-text commentary on an enquiry, independent of the
// status history
type EnquiryNote struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	EnquiryID uuid.UUID `gorm:"type:uuid;not null;index;column:enquiry_id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;column:author_id"`
	Author    *User     `gorm:"foreignKey:AuthorID"`
	Note      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when the database has no uuid default (sqlite)
func (n *EnquiryNote) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// DesignStatus represents the progress of a design work item
type DesignStatus string

const (
	DesignStatusPending    DesignStatus = "pending"
	DesignStatusInProgress DesignStatus = "in_progress"
	DesignStatusCompleted  DesignStatus = "completed"
)

// DesignWork is the design-stage work record, one per enquiry. It is
// provisioned automatically when an enquiry enters the Design stage with a
// designer assignee.
type DesignWork struct {
	BaseModel
	EnquiryID          uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex;column:enquiry_id"`
	Enquiry            *Enquiry     `gorm:"foreignKey:EnquiryID"`
	DesignerID         uuid.UUID    `gorm:"type:uuid;not null;index;column:designer_id"`
	Designer           *User        `gorm:"foreignKey:DesignerID"`
	ClientRequirements string       `gorm:"type:text;column:client_requirements"`
	DesignerNotes      string       `gorm:"type:text;column:designer_notes"`
	DesignStatus       DesignStatus `gorm:"type:varchar(50);not null;default:'pending';column:design_status"`
	CompletedAt        *time.Time   `gorm:"column:completed_at"`
}

// DesignAttachment holds file metadata for drawings uploaded during design
type DesignAttachment struct {
	BaseModel
	EnquiryID   uuid.UUID `gorm:"type:uuid;not null;index;column:enquiry_id"`
	Enquiry     *Enquiry  `gorm:"foreignKey:EnquiryID"`
	Filename    string    `gorm:"type:varchar(255);not null"`
	ContentType string    `gorm:"type:varchar(100);column:content_type"`
	Size        int64     `gorm:"not null;default:0"`
	FileURL     string    `gorm:"type:varchar(500);not null;column:file_url"`
	UploadedBy  uuid.UUID `gorm:"type:uuid;not null;column:uploaded_by"`
	Uploader    *User     `gorm:"foreignKey:UploadedBy"`
}

// ProductionStatus represents the progress of a production workflow
type ProductionStatus string

const (
	ProductionStatusNotStarted ProductionStatus = "not_started"
	ProductionStatusInProgress ProductionStatus = "in_progress"
	ProductionStatusCompleted  ProductionStatus = "completed"
)

// ProductionStep represents a production task step. Steps form an unordered
// set; no sequence is enforced between them.
type ProductionStep string

const (
	StepCutting      ProductionStep = "cutting"
	StepWelding      ProductionStep = "welding"
	StepFabrication  ProductionStep = "fabrication"
	StepAssembly     ProductionStep = "assembly"
	StepQualityCheck ProductionStep = "quality_check"
	StepPackaging    ProductionStep = "packaging"
)

// IsValid checks if the ProductionStep is a valid enum value
func (s ProductionStep) IsValid() bool {
	switch s {
	case StepCutting, StepWelding, StepFabrication, StepAssembly, StepQualityCheck, StepPackaging:
		return true
	}
	return false
}

// ProductionWorkflow is the production-stage work record, one per enquiry
type ProductionWorkflow struct {
	BaseModel
	EnquiryID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex;column:enquiry_id"`
	Enquiry        *Enquiry         `gorm:"foreignKey:EnquiryID"`
	ProductionLead uuid.UUID        `gorm:"type:uuid;not null;index;column:production_lead"`
	Lead           *User            `gorm:"foreignKey:ProductionLead"`
	Status         ProductionStatus `gorm:"type:varchar(50);not null;default:'not_started'"`
	CurrentStep    string           `gorm:"type:varchar(50);column:current_step"`
	Notes          string           `gorm:"type:text"`
	StartedAt      *time.Time       `gorm:"column:started_at"`
	CompletedAt    *time.Time       `gorm:"column:completed_at"`
	Tasks          []ProductionTask `gorm:"foreignKey:WorkflowID;constraint:OnDelete:CASCADE"`
}

// TaskStatus represents the progress of a single production task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// ProductionTask is a single step within a production workflow
type ProductionTask struct {
	BaseModel
	WorkflowID  uuid.UUID           `gorm:"type:uuid;not null;index;column:workflow_id"`
	Workflow    *ProductionWorkflow `gorm:"foreignKey:WorkflowID"`
	Step        ProductionStep      `gorm:"type:varchar(50);not null"`
	AssignedTo  *uuid.UUID          `gorm:"type:uuid;column:assigned_to"`
	Assignee    *User               `gorm:"foreignKey:AssignedTo"`
	Status      TaskStatus          `gorm:"type:varchar(50);not null;default:'pending'"`
	Notes       string              `gorm:"type:text"`
	StartedAt   *time.Time          `gorm:"column:started_at"`
	CompletedAt *time.Time          `gorm:"column:completed_at"`
}

// DispatchStatus represents the progress of a dispatch work record
type DispatchStatus string

const (
	DispatchStatusPending    DispatchStatus = "pending"
	DispatchStatusDispatched DispatchStatus = "dispatched"
	DispatchStatusDelivered  DispatchStatus = "delivered"
)

// IsValid checks if the DispatchStatus is a valid enum value
func (s DispatchStatus) IsValid() bool {
	switch s {
	case DispatchStatusPending, DispatchStatusDispatched, DispatchStatusDelivered:
		return true
	}
	return false
}

// DispatchWork is the dispatch-stage work record, one per enquiry
type DispatchWork struct {
	BaseModel
	EnquiryID             uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex;column:enquiry_id"`
	Enquiry               *Enquiry       `gorm:"foreignKey:EnquiryID"`
	DispatchAssignedTo    uuid.UUID      `gorm:"type:uuid;not null;index;column:dispatch_assigned_to"`
	Assignee              *User          `gorm:"foreignKey:DispatchAssignedTo"`
	TrackingNumber        string         `gorm:"type:varchar(100);column:tracking_number"`
	DispatchDate          *time.Time     `gorm:"column:dispatch_date"`
	EstimatedDeliveryDate *time.Time     `gorm:"column:estimated_delivery_date"`
	Status                DispatchStatus `gorm:"type:varchar(50);not null;default:'pending'"`
	Notes                 string         `gorm:"type:text"`
}

// DocumentStatus represents the lifecycle of a quotation or invoice
type DocumentStatus string

const (
	DocumentStatusDraft    DocumentStatus = "draft"
	DocumentStatusSent     DocumentStatus = "sent"
	DocumentStatusAccepted DocumentStatus = "accepted"
)

// Quotation is a financial document tied to an enquiry. Totals are computed
// by the caller and persisted as supplied.
type Quotation struct {
	BaseModel
	QuotationNum string          `gorm:"type:varchar(50);not null;unique;column:quotation_num"`
	EnquiryID    uuid.UUID       `gorm:"type:uuid;not null;index;column:enquiry_id"`
	Enquiry      *Enquiry        `gorm:"foreignKey:EnquiryID"`
	ClientID     uuid.UUID       `gorm:"type:uuid;not null;index;column:client_id"`
	Client       *Client         `gorm:"foreignKey:ClientID"`
	PreparedBy   uuid.UUID       `gorm:"type:uuid;not null;column:prepared_by"`
	Subtotal     float64         `gorm:"type:decimal(15,2);not null;default:0"`
	Discount     float64         `gorm:"type:decimal(15,2);not null;default:0"`
	Tax          float64         `gorm:"type:decimal(15,2);not null;default:0"`
	GrandTotal   float64         `gorm:"type:decimal(15,2);not null;default:0;column:grand_total"`
	Status       DocumentStatus  `gorm:"type:varchar(50);not null;default:'draft'"`
	Items        []QuotationItem `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE"`
}

// QuotationItem is a line item in a quotation
type QuotationItem struct {
	BaseModel
	QuotationID uuid.UUID `gorm:"type:uuid;not null;index;column:quotation_id"`
	Description string    `gorm:"type:varchar(500);not null"`
	Quantity    float64   `gorm:"type:decimal(10,2);not null;default:1"`
	Unit        string    `gorm:"type:varchar(50)"`
	UnitPrice   float64   `gorm:"type:decimal(15,2);not null;default:0;column:unit_price"`
	Amount      float64   `gorm:"type:decimal(15,2);not null;default:0"`
}

// Invoice is a financial document tied to an enquiry. Totals are computed by
// the caller and persisted as supplied.
type Invoice struct {
	BaseModel
	InvoiceNum string         `gorm:"type:varchar(50);not null;unique;column:invoice_num"`
	EnquiryID  uuid.UUID      `gorm:"type:uuid;not null;index;column:enquiry_id"`
	Enquiry    *Enquiry       `gorm:"foreignKey:EnquiryID"`
	ClientID   uuid.UUID      `gorm:"type:uuid;not null;index;column:client_id"`
	Client     *Client        `gorm:"foreignKey:ClientID"`
	PreparedBy uuid.UUID      `gorm:"type:uuid;not null;column:prepared_by"`
	Subtotal   float64        `gorm:"type:decimal(15,2);not null;default:0"`
	Discount   float64        `gorm:"type:decimal(15,2);not null;default:0"`
	Tax        float64        `gorm:"type:decimal(15,2);not null;default:0"`
	GrandTotal float64        `gorm:"type:decimal(15,2);not null;default:0;column:grand_total"`
	Status     DocumentStatus `gorm:"type:varchar(50);not null;default:'draft'"`
	Items      []InvoiceItem  `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// InvoiceItem is a line item in an invoice
type InvoiceItem struct {
	BaseModel
	InvoiceID   uuid.UUID `gorm:"type:uuid;not null;index;column:invoice_id"`
	Description string    `gorm:"type:varchar(500);not null"`
	Quantity    float64   `gorm:"type:decimal(10,2);not null;default:1"`
	Unit        string    `gorm:"type:varchar(50)"`
	UnitPrice   float64   `gorm:"type:decimal(15,2);not null;default:0;column:unit_price"`
	Amount      float64   `gorm:"type:decimal(15,2);not null;default:0"`
}

// NotificationType represents the type of notification
type NotificationType string

const (
	NotificationTypeAssignment          NotificationType = "assignment"
	NotificationTypeStatusChange        NotificationType = "status_change"
	NotificationTypeEnquiryCreated      NotificationType = "enquiry_created"
	NotificationTypeDesignAssigned      NotificationType = "design_assigned"
	NotificationTypeDesignCompleted     NotificationType = "design_completed"
	NotificationTypeProductionAssigned  NotificationType = "production_assigned"
	NotificationTypeProductionCompleted NotificationType = "production_completed"
	NotificationTypeDispatchAssigned    NotificationType = "dispatch_assigned"
	NotificationTypeEnquiryDispatched   NotificationType = "enquiry_dispatched"
	NotificationTypeOrderConfirmed      NotificationType = "order_confirmed"
	NotificationTypeCommunicationLogged NotificationType = "communication_logged"
	NotificationTypeQuotationCreated    NotificationType = "quotation_created"
	NotificationTypeInvoiceCreated      NotificationType = "invoice_created"
)

// Notification is a durable per-user notification log entry. Only the most
// recent entries are retained per user (see repository cap).
type Notification struct {
	BaseModel
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index;column:user_id"`
	Type       string         `gorm:"type:varchar(50);not null"`
	Title      string         `gorm:"type:varchar(200);not null"`
	Message    string         `gorm:"type:varchar(500);not null"`
	EnquiryID  *uuid.UUID     `gorm:"type:uuid;column:enquiry_id"`
	EnquiryNum string         `gorm:"type:varchar(50);column:enquiry_num"`
	Data       datatypes.JSON `gorm:"column:data"`
	Read       bool           `gorm:"column:read;not null;default:false;index"`
	ReadAt     *time.Time
}

// OrderSequence backs the sequential order numbering. A single row named
// "enquiry_order" holds the last used sequence; increments take a row lock so
// concurrent creations never produce duplicate order numbers.
type OrderSequence struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	Name         string    `gorm:"type:varchar(50);not null;unique"`
	LastSequence int       `gorm:"not null;default:0;column:last_sequence"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when the database has no uuid default (sqlite)
func (s *OrderSequence) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
