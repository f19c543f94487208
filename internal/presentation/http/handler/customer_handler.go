package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/ecs-receipts/internal/application/service"
	"github.com/sangkips/ecs-receipts/internal/presentation/http/dto/request"
	"github.com/sangkips/ecs-receipts/internal/presentation/http/dto/response"
)

// CustomerHandler serves the investor directory.
type CustomerHandler struct {
	investorService *service.InvestorService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(investorService *service.InvestorService) *CustomerHandler {
	return &CustomerHandler{investorService: investorService}
}

// Search finds investors by id, name or PAN
// @Summary Search Investors
// @Tags customers
// @Security BearerAuth
// @Param q query string false "Search text"
// @Success 200 {object} response.APIResponse
// @Router /customers [get]
func (h *CustomerHandler) Search(c *gin.Context) {
	var req request.InvestorSearchRequest
	if !bindQuery(c, &req) {
		return
	}
	response.OK(c, "Investors retrieved successfully", h.investorService.Search(req.Query))
}

// Create registers an investor
// @Summary Create Investor
// @Tags customers
// @Security BearerAuth
// @Param request body request.CreateInvestorRequest true "Investor"
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var req request.CreateInvestorRequest
	if !bindJSON(c, &req) {
		return
	}

	inv, err := h.investorService.Create(c.Request.Context(), currentActor(c), &service.CreateInvestorInput{
		InvestorID: req.InvestorID,
		Name:       req.Name,
		Address:    req.Address,
		PinCode:    req.PinCode,
		PAN:        req.PAN,
		Email:      req.Email,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Investor created successfully", inv.Info())
}
