package request

// CreateUserRequest registers an employee account
type CreateUserRequest struct {
	EmpCode  string `json:"emp_code" binding:"required,empcode"`
	Name     string `json:"name" binding:"required,min=2,max=255"`
	Email    string `json:"email" binding:"omitempty,email"`
	Branch   string `json:"branch" binding:"omitempty,max=255"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=admin employee"`
}

// UpdateUserRequest carries optional changes
type UpdateUserRequest struct {
	Name   *string `json:"name" binding:"omitempty,min=2,max=255"`
	Email  *string `json:"email" binding:"omitempty,email"`
	Branch *string `json:"branch" binding:"omitempty,max=255"`
	Active *bool   `json:"active"`
	Role   *string `json:"role" binding:"omitempty,oneof=admin employee"`
}

// ResetPasswordRequest sets a user's password
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

// UserFilterRequest represents user list parameters
type UserFilterRequest struct {
	Search  string `form:"search"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}
