package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/ecs-receipts/internal/application/service"
	"github.com/sangkips/ecs-receipts/internal/presentation/http/middleware"
	"github.com/sangkips/ecs-receipts/internal/presentation/http/dto/response"
	"github.com/sangkips/ecs-receipts/internal/presentation/http/validation"
	"github.com/sangkips/ecs-receipts/pkg/apperror"
	"github.com/sangkips/ecs-receipts/pkg/utils"
)

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get(middleware.CtxUserID)
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// GetUserRoles extracts the user roles from the Gin context
func GetUserRoles(c *gin.Context) []string {
	return c.GetStringSlice(middleware.CtxRoles)
}

// GetToken returns the bearer token the request was authenticated with.
func GetToken(c *gin.Context) string {
	return c.GetString(middleware.CtxToken)
}

// GetClaims returns the validated token claims, if any.
func GetClaims(c *gin.Context) *utils.JWTClaims {
	v, ok := c.Get(middleware.CtxClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*utils.JWTClaims)
	return claims
}

// currentActor builds the service actor for the authenticated caller.
func currentActor(c *gin.Context) service.Actor {
	a := service.Actor{
		EmpCode: c.GetString(middleware.CtxEmpCode),
		Roles:   GetUserRoles(c),
	}
	if id := GetUserID(c); id != nil {
		a.UserID = *id
	}
	return a
}

func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		response.Error(c, validation.FieldErrors(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		response.Error(c, validation.FieldErrors(err))
		return false
	}
	return true
}

// paramUUID parses a path parameter, answering 400 when it is malformed.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := utils.ParseUUID(c.Param(name))
	if err != nil {
		response.Error(c, apperror.NewBadRequestError("Invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
