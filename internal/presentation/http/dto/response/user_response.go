package response

import (
	"time"

	"github.com/sangkips/ecs-receipts/internal/domain/entity"
	"github.com/sangkips/ecs-receipts/pkg/pagination"
)

// UserResponse is the public view of an employee account.
type UserResponse struct {
	ID          string     `json:"id"`
	EmpCode     string     `json:"emp_code"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Branch      string     `json:"branch"`
	Role        string     `json:"role"`
	Active      bool       `json:"active"`
	Permissions []string   `json:"permissions,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		EmpCode:     u.EmpCode,
		Name:        u.Name,
		Email:       u.Email,
		Branch:      u.Branch,
		Role:        u.RoleName(),
		Active:      u.Active,
		Permissions: u.GetPermissions(),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func NewUserPage(page *pagination.PaginatedResult[entity.User]) *pagination.PaginatedResult[UserResponse] {
	items := make([]UserResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, NewUserResponse(&page.Items[i]))
	}
	return pagination.NewPaginatedResult(items, page.Pagination)
}

// LoginResponse carries the bearer token and the signed-in user.
type LoginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	User      UserResponse `json:"user"`
}
