package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/ecs-receipts/internal/domain/entity"
	"github.com/sangkips/ecs-receipts/internal/domain/repository"
	"github.com/sangkips/ecs-receipts/pkg/apperror"
	"github.com/sangkips/ecs-receipts/pkg/pagination"
	"github.com/sangkips/ecs-receipts/pkg/utils"
)

// UserService handles user management operations
type UserService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository, roleRepo repository.RoleRepository) *UserService {
	return &UserService{userRepo: userRepo, roleRepo: roleRepo}
}

// ListUsersInput represents the input for listing users
type ListUsersInput struct {
	Page    int
	PerPage int
	Search  string
}

// ListUsers returns a page of users with their roles
func (s *UserService) ListUsers(ctx context.Context, input *ListUsersInput) (*pagination.PaginatedResult[entity.User], error) {
	params := &pagination.PaginationParams{Page: input.Page, PerPage: input.PerPage}
	params.Validate()

	users, total, err := s.userRepo.List(ctx, params, input.Search)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(users, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// GetUser returns a user with roles
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetWithRoles(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

// CreateUserInput represents the input for creating an employee account
type CreateUserInput struct {
	EmpCode  string
	Name     string
	Email    string
	Branch   string
	Password string
	Role     string
}

// CreateUser registers an employee. Role defaults to employee.
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput) (*entity.User, error) {
	code := utils.NormalizeCode(input.EmpCode)
	existing, err := s.userRepo.GetByEmpCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Employee code already registered")
	}

	role, err := s.role(ctx, input.Role)
	if err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		EmpCode:  code,
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.TrimSpace(input.Email),
		Branch:   strings.TrimSpace(input.Branch),
		Password: hashed,
		Active:   true,
		Roles:    []entity.Role{*role},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, user.ID)
}

// UpdateUserInput carries optional changes; nil fields are left alone.
type UpdateUserInput struct {
	Name   *string
	Email  *string
	Branch *string
	Active *bool
	Role   *string
}

// UpdateUser applies the given changes
func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, input *UpdateUserInput) (*entity.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		user.Email = strings.TrimSpace(*input.Email)
	}
	if input.Branch != nil {
		user.Branch = strings.TrimSpace(*input.Branch)
	}
	if input.Active != nil {
		user.Active = *input.Active
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if input.Role != nil {
		role, err := s.role(ctx, *input.Role)
		if err != nil {
			return nil, err
		}
		if err := s.userRepo.SetRoles(ctx, user, []entity.Role{*role}); err != nil {
			return nil, err
		}
	}
	return s.GetUser(ctx, id)
}

// ResetPassword sets a new password without checking the old one.
func (s *UserService) ResetPassword(ctx context.Context, id uuid.UUID, password string) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	user.Password = hashed
	return s.userRepo.Update(ctx, user)
}

// DeleteUser removes a user. Admins cannot delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, actor Actor, id uuid.UUID) error {
	if actor.UserID == id {
		return apperror.NewBadRequestError("You cannot delete your own account")
	}
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, id)
}

func (s *UserService) role(ctx context.Context, name string) (*entity.Role, error) {
	if name == "" {
		name = entity.RoleEmployee
	}
	role, err := s.roleRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "role", Message: "unknown role " + name}})
	}
	return role, nil
}
