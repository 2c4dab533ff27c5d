package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/solmount/enquiry-api/internal/auth"
	"github.com/solmount/enquiry-api/internal/domain"
	"github.com/solmount/enquiry-api/internal/mapper"
	"github.com/solmount/enquiry-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned when login fails. It deliberately does
// not distinguish an unknown email from a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserService manages user accounts and authentication
type UserService struct {
	userRepo *repository.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new UserService instance
func NewUserService(userRepo *repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

// Create registers a new user account
func (s *UserService) Create(ctx context.Context, req *domain.CreateUserRequest) (*domain.UserDTO, error) {
	if !req.Role.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, req.Role)
	}

	if existing, err := s.userRepo.GetByEmail(ctx, strings.ToLower(req.Email)); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        strings.ToLower(req.Email),
		Name:         req.Name,
		Phone:        req.Phone,
		Role:         req.Role,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if len(req.WorkflowStatus) > 0 {
		raw, err := json.Marshal(req.WorkflowStatus)
		if err != nil {
			return nil, fmt.Errorf("failed to encode workflow status: %w", err)
		}
		user.WorkflowStatus = raw
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created",
		zap.String("userID", user.ID.String()),
		zap.String("role", string(user.Role)),
	)

	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

// GetByID returns a single user
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserDTO, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

// Update applies a partial update. Role and active-flag changes require an
// admin caller.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateUserRequest) (*domain.UserDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Role != nil {
		if !userCtx.Role.IsAdmin() {
			return nil, ErrPermissionDenied
		}
		if !req.Role.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRole, *req.Role)
		}
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		if !userCtx.Role.IsAdmin() {
			return nil, ErrPermissionDenied
		}
		user.IsActive = *req.IsActive
	}
	if req.WorkflowStatus != nil {
		raw, err := json.Marshal(req.WorkflowStatus)
		if err != nil {
			return nil, fmt.Errorf("failed to encode workflow status: %w", err)
		}
		user.WorkflowStatus = raw
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

// List returns users, optionally filtered by role, paginated
func (s *UserService) List(ctx context.Context, role domain.UserRole, page, pageSize int) (*domain.PaginatedResponse, error) {
	if role != "" && !role.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	page, pageSize = clampPage(page, pageSize)

	users, total, err := s.userRepo.List(ctx, role, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	dtos := make([]domain.UserDTO, 0, len(users))
	for i := range users {
		dtos = append(dtos, mapper.ToUserDTO(&users[i]))
	}
	return paginated(dtos, total, page, pageSize), nil
}

// ListByRole returns all active users holding the given role
func (s *UserService) ListByRole(ctx context.Context, role domain.UserRole) ([]domain.UserDTO, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	users, err := s.userRepo.ListByRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	dtos := make([]domain.UserDTO, 0, len(users))
	for i := range users {
		dtos = append(dtos, mapper.ToUserDTO(&users[i]))
	}
	return dtos, nil
}

// Authenticate verifies the credentials and stamps last login
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Warn("failed to stamp last login", zap.Error(err))
	}
	return user, nil
}

// Deactivate disables a user account without deleting it
func (s *UserService) Deactivate(ctx context.Context, id uuid.UUID) error {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUserContextRequired
	}
	if !userCtx.Role.IsAdmin() {
		return ErrPermissionDenied
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	user.IsActive = false
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}
