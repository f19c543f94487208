package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/ecs-receipts/internal/domain/entity"
	"github.com/sangkips/ecs-receipts/internal/domain/repository"
	"github.com/sangkips/ecs-receipts/internal/session"
	"github.com/sangkips/ecs-receipts/pkg/apperror"
	"github.com/sangkips/ecs-receipts/pkg/utils"
)

var errInvalidEmpCredentials = apperror.NewAppError(401, "Invalid employee code or password")

// AuthService handles authentication-related operations
type AuthService struct {
	userRepo   repository.UserRepository
	jwtManager *utils.JWTManager
	now        func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, jwtManager *utils.JWTManager) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		now:        time.Now,
	}
}

// LoginInput represents the login input
type LoginInput struct {
	EmpCode  string
	Password string
}

// LoginOutput represents the login output
type LoginOutput struct {
	User        *entity.User
	AccessToken string
}

// Login authenticates an employee by code and password.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByEmpCode(ctx, input.EmpCode)
	if err != nil {
		return nil, err
	}
	if user == nil || !utils.CheckPasswordHash(input.Password, user.Password) {
		return nil, errInvalidEmpCredentials
	}
	if !user.Active {
		return nil, apperror.NewAppError(403, "Account is disabled")
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.EmpCode, user.RoleNames(), user.GetPermissions())
	if err != nil {
		return nil, err
	}

	now := s.now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return &LoginOutput{User: user, AccessToken: accessToken}, nil
}

// Authenticate adapts Login to session.Authenticator for in-process sessions.
func (s *AuthService) Authenticate(ctx context.Context, empCode, password string) (*session.User, string, error) {
	out, err := s.Login(ctx, &LoginInput{EmpCode: empCode, Password: password})
	if err != nil {
		return nil, "", err
	}
	return SessionUser(out.User), out.AccessToken, nil
}

// Logout revokes the presented token.
func (s *AuthService) Logout(claims *utils.JWTClaims) {
	s.jwtManager.Revoke(claims)
}

// Me returns the current user with roles loaded.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

// ChangePasswordInput represents the change password input
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NewNotFoundError("User")
	}
	if !utils.CheckPasswordHash(input.CurrentPassword, user.Password) {
		return apperror.NewBadRequestError("Current password is incorrect")
	}

	hashed, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	return s.userRepo.Update(ctx, user)
}

// SessionUser converts a user row to the wizard's session view.
func SessionUser(u *entity.User) *session.User {
	return &session.User{
		ID:      u.ID.String(),
		EmpCode: u.EmpCode,
		Name:    u.Name,
		Email:   u.Email,
		Branch:  u.Branch,
		Role:    u.RoleName(),
	}
}
