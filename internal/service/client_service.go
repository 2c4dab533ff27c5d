package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/solmount/enquiry-api/internal/domain"
	"github.com/solmount/enquiry-api/internal/mapper"
	"github.com/solmount/enquiry-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ClientService manages the customer directory
type ClientService struct {
	clientRepo *repository.ClientRepository
	logger     *zap.Logger
}

// NewClientService creates a new ClientService instance
func NewClientService(clientRepo *repository.ClientRepository, logger *zap.Logger) *ClientService {
	return &ClientService{clientRepo: clientRepo, logger: logger}
}

// Create registers a new client
func (s *ClientService) Create(ctx context.Context, req *domain.CreateClientRequest) (*domain.ClientDTO, error) {
	client := &domain.Client{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		Pincode:       req.Pincode,
		GSTNumber:     req.GSTNumber,
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.logger.Info("client created",
		zap.String("clientID", client.ID.String()),
		zap.String("name", client.Name),
	)

	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

// GetByID returns a single client
func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ClientDTO, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

// Update applies a partial update to a client
func (s *ClientService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateClientRequest) (*domain.ClientDTO, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	if req.Name != "" {
		client.Name = req.Name
	}
	if req.ContactPerson != "" {
		client.ContactPerson = req.ContactPerson
	}
	if req.Email != "" {
		client.Email = req.Email
	}
	if req.Phone != "" {
		client.Phone = req.Phone
	}
	if req.Address != "" {
		client.Address = req.Address
	}
	if req.City != "" {
		client.City = req.City
	}
	if req.State != "" {
		client.State = req.State
	}
	if req.Pincode != "" {
		client.Pincode = req.Pincode
	}
	if req.GSTNumber != "" {
		client.GSTNumber = req.GSTNumber
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

// List returns clients matching the optional search term, paginated
func (s *ClientService) List(ctx context.Context, search string, page, pageSize int) (*domain.PaginatedResponse, error) {
	page, pageSize = clampPage(page, pageSize)

	clients, total, err := s.clientRepo.List(ctx, page, pageSize, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	dtos := make([]domain.ClientDTO, 0, len(clients))
	for i := range clients {
		dtos = append(dtos, mapper.ToClientDTO(&clients[i]))
	}
	return paginated(dtos, total, page, pageSize), nil
}

// Delete removes a client. Clients with enquiries cannot be deleted.
func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.clientRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClientNotFound
		}
		return fmt.Errorf("failed to get client: %w", err)
	}

	count, err := s.clientRepo.CountEnquiries(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count client enquiries: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: client has %d enquiries", ErrConflict, count)
	}

	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}
