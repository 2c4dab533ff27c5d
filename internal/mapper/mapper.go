package mapper

import (
	"encoding/json"
	"time"

	"github.com/solmount/enquiry-api/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// ToUserDTO converts User to UserDTO
func ToUserDTO(user *domain.User) domain.UserDTO {
	var workflowStatus []string
	if len(user.WorkflowStatus) > 0 {
		// Stored as a JSON array; ignore malformed values
		_ = json.Unmarshal(user.WorkflowStatus, &workflowStatus)
	}

	return domain.UserDTO{
		ID:             user.ID,
		Email:          user.Email,
		Name:           user.Name,
		Phone:          user.Phone,
		Role:           user.Role,
		WorkflowStatus: workflowStatus,
		IsActive:       user.IsActive,
		CreatedAt:      formatTime(user.CreatedAt),
		UpdatedAt:      formatTime(user.UpdatedAt),
	}
}

// ToClientDTO converts Client to ClientDTO
func ToClientDTO(client *domain.Client) domain.ClientDTO {
	return domain.ClientDTO{
		ID:            client.ID,
		Name:          client.Name,
		ContactPerson: client.ContactPerson,
		Email:         client.Email,
		Phone:         client.Phone,
		Address:       client.Address,
		City:          client.City,
		State:         client.State,
		Pincode:       client.Pincode,
		GSTNumber:     client.GSTNumber,
		CreatedAt:     formatTime(client.CreatedAt),
		UpdatedAt:     formatTime(client.UpdatedAt),
	}
}

// ToEnquiryDTO converts Enquiry to EnquiryDTO
func ToEnquiryDTO(enquiry *domain.Enquiry) domain.EnquiryDTO {
	dto := domain.EnquiryDTO{
		ID:                    enquiry.ID,
		EnquiryNum:            enquiry.EnquiryNum,
		ClientID:              enquiry.ClientID,
		MaterialType:          enquiry.MaterialType,
		Detail:                enquiry.Detail,
		EnquiryAmount:         enquiry.EnquiryAmount,
		Status:                enquiry.Status,
		EnquiryBy:             enquiry.EnquiryBy,
		CurrentAssignedPerson: enquiry.CurrentAssignedPerson,
		WorkAssignedDate:      formatTime(enquiry.WorkAssignedDate),
		OrderNumber:           enquiry.OrderNumber,
		OrderDate:             formatTimePtr(enquiry.OrderDate),
		CreatedAt:             formatTime(enquiry.CreatedAt),
		UpdatedAt:             formatTime(enquiry.UpdatedAt),
	}

	if enquiry.Client != nil {
		dto.ClientName = enquiry.Client.Name
	}
	if enquiry.EnquiryByUser != nil {
		dto.EnquiryByName = enquiry.EnquiryByUser.Name
	}
	if enquiry.AssignedUser != nil {
		dto.AssignedPersonName = enquiry.AssignedUser.Name
	}

	return dto
}

// ToStatusHistoryDTO converts EnquiryStatusHistory to StatusHistoryDTO
func ToStatusHistoryDTO(entry *domain.EnquiryStatusHistory) domain.StatusHistoryDTO {
	dto := domain.StatusHistoryDTO{
		ID:             entry.ID,
		EnquiryID:      entry.EnquiryID,
		Status:         entry.Status,
		AssignedPerson: entry.AssignedPerson,
		Note:           entry.Note,
		ChangedAt:      formatTime(entry.ChangedAt),
	}
	if entry.AssignedUser != nil {
		dto.AssignedPersonName = entry.AssignedUser.Name
	}
	return dto
}

// ToEnquiryNoteDTO converts EnquiryNote to EnquiryNoteDTO
func ToEnquiryNoteDTO(note *domain.EnquiryNote) domain.EnquiryNoteDTO {
	dto := domain.EnquiryNoteDTO{
		ID:        note.ID,
		EnquiryID: note.EnquiryID,
		AuthorID:  note.AuthorID,
		Note:      note.Note,
		CreatedAt: formatTime(note.CreatedAt),
	}
	if note.Author != nil {
		dto.AuthorName = note.Author.Name
	}
	return dto
}

// ToDesignWorkDTO converts DesignWork to DesignWorkDTO
func ToDesignWorkDTO(work *domain.DesignWork) domain.DesignWorkDTO {
	dto := domain.DesignWorkDTO{
		ID:                 work.ID,
		EnquiryID:          work.EnquiryID,
		DesignerID:         work.DesignerID,
		ClientRequirements: work.ClientRequirements,
		DesignerNotes:      work.DesignerNotes,
		DesignStatus:       work.DesignStatus,
		CompletedAt:        formatTimePtr(work.CompletedAt),
		CreatedAt:          formatTime(work.CreatedAt),
		UpdatedAt:          formatTime(work.UpdatedAt),
	}
	if work.Enquiry != nil {
		dto.EnquiryNum = work.Enquiry.EnquiryNum
	}
	if work.Designer != nil {
		dto.DesignerName = work.Designer.Name
	}
	return dto
}

// ToDesignAttachmentDTO converts DesignAttachment to DesignAttachmentDTO
func ToDesignAttachmentDTO(attachment *domain.DesignAttachment) domain.DesignAttachmentDTO {
	dto := domain.DesignAttachmentDTO{
		ID:          attachment.ID,
		EnquiryID:   attachment.EnquiryID,
		Filename:    attachment.Filename,
		ContentType: attachment.ContentType,
		Size:        attachment.Size,
		FileURL:     attachment.FileURL,
		UploadedBy:  attachment.UploadedBy,
		CreatedAt:   formatTime(attachment.CreatedAt),
	}
	if attachment.Uploader != nil {
		dto.UploaderName = attachment.Uploader.Name
	}
	return dto
}

// ToProductionWorkflowDTO converts ProductionWorkflow to ProductionWorkflowDTO
func ToProductionWorkflowDTO(workflow *domain.ProductionWorkflow) domain.ProductionWorkflowDTO {
	dto := domain.ProductionWorkflowDTO{
		ID:             workflow.ID,
		EnquiryID:      workflow.EnquiryID,
		ProductionLead: workflow.ProductionLead,
		Status:         workflow.Status,
		CurrentStep:    workflow.CurrentStep,
		Notes:          workflow.Notes,
		StartedAt:      formatTimePtr(workflow.StartedAt),
		CompletedAt:    formatTimePtr(workflow.CompletedAt),
		CreatedAt:      formatTime(workflow.CreatedAt),
		UpdatedAt:      formatTime(workflow.UpdatedAt),
	}
	if workflow.Enquiry != nil {
		dto.EnquiryNum = workflow.Enquiry.EnquiryNum
	}
	if workflow.Lead != nil {
		dto.LeadName = workflow.Lead.Name
	}
	for i := range workflow.Tasks {
		dto.Tasks = append(dto.Tasks, ToProductionTaskDTO(&workflow.Tasks[i]))
	}
	return dto
}

// ToProductionTaskDTO converts ProductionTask to ProductionTaskDTO
func ToProductionTaskDTO(task *domain.ProductionTask) domain.ProductionTaskDTO {
	dto := domain.ProductionTaskDTO{
		ID:          task.ID,
		WorkflowID:  task.WorkflowID,
		Step:        task.Step,
		AssignedTo:  task.AssignedTo,
		Status:      task.Status,
		Notes:       task.Notes,
		StartedAt:   formatTimePtr(task.StartedAt),
		CompletedAt: formatTimePtr(task.CompletedAt),
	}
	if task.Assignee != nil {
		dto.AssigneeName = task.Assignee.Name
	}
	return dto
}

// ToDispatchWorkDTO converts DispatchWork to DispatchWorkDTO
func ToDispatchWorkDTO(work *domain.DispatchWork) domain.DispatchWorkDTO {
	dto := domain.DispatchWorkDTO{
		ID:                    work.ID,
		EnquiryID:             work.EnquiryID,
		DispatchAssignedTo:    work.DispatchAssignedTo,
		TrackingNumber:        work.TrackingNumber,
		DispatchDate:          formatTimePtr(work.DispatchDate),
		EstimatedDeliveryDate: formatTimePtr(work.EstimatedDeliveryDate),
		Status:                work.Status,
		Notes:                 work.Notes,
		CreatedAt:             formatTime(work.CreatedAt),
		UpdatedAt:             formatTime(work.UpdatedAt),
	}
	if work.Enquiry != nil {
		dto.EnquiryNum = work.Enquiry.EnquiryNum
	}
	if work.Assignee != nil {
		dto.AssigneeName = work.Assignee.Name
	}
	return dto
}

// ToQuotationDTO converts Quotation to QuotationDTO
func ToQuotationDTO(quotation *domain.Quotation) domain.QuotationDTO {
	dto := domain.QuotationDTO{
		ID:           quotation.ID,
		QuotationNum: quotation.QuotationNum,
		EnquiryID:    quotation.EnquiryID,
		ClientID:     quotation.ClientID,
		PreparedBy:   quotation.PreparedBy,
		Subtotal:     quotation.Subtotal,
		Discount:     quotation.Discount,
		Tax:          quotation.Tax,
		GrandTotal:   quotation.GrandTotal,
		Status:       quotation.Status,
		CreatedAt:    formatTime(quotation.CreatedAt),
		UpdatedAt:    formatTime(quotation.UpdatedAt),
	}
	for _, item := range quotation.Items {
		dto.Items = append(dto.Items, domain.DocumentItemDTO{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		})
	}
	return dto
}

// ToInvoiceDTO converts Invoice to InvoiceDTO
func ToInvoiceDTO(invoice *domain.Invoice) domain.InvoiceDTO {
	dto := domain.InvoiceDTO{
		ID:         invoice.ID,
		InvoiceNum: invoice.InvoiceNum,
		EnquiryID:  invoice.EnquiryID,
		ClientID:   invoice.ClientID,
		PreparedBy: invoice.PreparedBy,
		Subtotal:   invoice.Subtotal,
		Discount:   invoice.Discount,
		Tax:        invoice.Tax,
		GrandTotal: invoice.GrandTotal,
		Status:     invoice.Status,
		CreatedAt:  formatTime(invoice.CreatedAt),
		UpdatedAt:  formatTime(invoice.UpdatedAt),
	}
	for _, item := range invoice.Items {
		dto.Items = append(dto.Items, domain.DocumentItemDTO{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		})
	}
	return dto
}

// ToNotificationDTO converts Notification to NotificationDTO
func ToNotificationDTO(notification *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:         notification.ID,
		Type:       notification.Type,
		Title:      notification.Title,
		Message:    notification.Message,
		EnquiryID:  notification.EnquiryID,
		EnquiryNum: notification.EnquiryNum,
		Read:       notification.Read,
		ReadAt:     formatTimePtr(notification.ReadAt),
		CreatedAt:  formatTime(notification.CreatedAt),
	}
}
