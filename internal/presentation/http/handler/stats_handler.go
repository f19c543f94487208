package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/ecs-receipts/internal/application/service"
	"github.com/sangkips/ecs-receipts/internal/domain/repository"
	"github.com/sangkips/ecs-receipts/internal/presentation/http/dto/request"
	"github.com/sangkips/ecs-receipts/internal/presentation/http/dto/response"
)

// StatsHandler serves the dashboard figures.
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (h *StatsHandler) filter(c *gin.Context) (repository.StatsFilter, bool) {
	var req request.StatsFilterRequest
	if !bindQuery(c, &req) {
		return repository.StatsFilter{}, false
	}
	return repository.StatsFilter{From: req.From, To: req.To, EmpCode: req.EmpCode}, true
}

// Summary returns receipt count, total amount and per-employee totals
// @Summary Receipt Summary
// @Tags stats
// @Security BearerAuth
// @Param from query string false "From date"
// @Param to query string false "To date"
// @Param emp_code query string false "Employee code"
// @Success 200 {object} response.APIResponse
// @Router /stats/summary [get]
func (h *StatsHandler) Summary(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}

	out, err := h.statsService.Summary(c.Request.Context(), currentActor(c), f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Summary retrieved successfully", out)
}

// ByCategory returns totals per product category.
func (h *StatsHandler) ByCategory(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}

	out, err := h.statsService.ByCategory(c.Request.Context(), currentActor(c), f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Category totals retrieved successfully", out)
}

// ByDay returns totals per receipt date.
func (h *StatsHandler) ByDay(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}

	out, err := h.statsService.ByDay(c.Request.Context(), currentActor(c), f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Daily totals retrieved successfully", out)
}
