package service

import (
	"github.com/google/uuid"
	"github.com/sangkips/ecs-receipts/internal/domain/entity"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID  uuid.UUID
	EmpCode string
	Roles   []string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	for _, r := range a.Roles {
		if r == entity.RoleAdmin {
			return true
		}
	}
	return false
}

// canSee reports whether the actor may read receipts issued under empCode.
func (a Actor) canSee(empCode string) bool {
	return a.IsAdmin() || empCode == a.EmpCode
}
