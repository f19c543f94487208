package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/ecs-receipts/internal/application/service"
	"github.com/sangkips/ecs-receipts/internal/presentation/http/dto/request"
	"github.com/sangkips/ecs-receipts/internal/presentation/http/dto/response"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService   *service.AuthService
	wizardService *service.WizardService
}

// NewAuthHandler creates a new auth handler. wizardService may be nil.
func NewAuthHandler(authService *service.AuthService, wizardService *service.WizardService) *AuthHandler {
	return &AuthHandler{authService: authService, wizardService: wizardService}
}

// Login handles employee login
// @Summary Login
// @Description Authenticate with an employee code and return a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Login credentials"
// @Success 200 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	output, err := h.authService.Login(c.Request.Context(), &service.LoginInput{
		EmpCode:  req.EmpCode,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Login successful", response.LoginResponse{
		Token:     output.AccessToken,
		TokenType: "Bearer",
		User:      response.NewUserResponse(output.User),
	})
}

// Logout revokes the current token and closes the caller's wizard
// @Summary Logout
// @Tags auth
// @Security BearerAuth
// @Success 200 {object} response.APIResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if claims := GetClaims(c); claims != nil {
		h.authService.Logout(claims)
	}
	if userID := GetUserID(c); userID != nil && h.wizardService != nil {
		h.wizardService.Discard(userID.String())
	}
	response.OK(c, "Logged out successfully", nil)
}

// Me returns the signed-in employee
// @Summary Current user
// @Tags auth
// @Security BearerAuth
// @Success 200 {object} response.APIResponse
// @Router /users/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	user, err := h.authService.Me(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Profile retrieved successfully", response.NewUserResponse(user))
}

// ChangePassword changes the signed-in employee's password
// @Summary Change password
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Param request body request.ChangePasswordRequest true "Passwords"
// @Success 200 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Router /users/me/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), *userID, &service.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Password changed successfully", nil)
}
