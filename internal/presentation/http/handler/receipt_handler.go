package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/ecs-receipts/internal/application/service"
	"github.com/sangkips/ecs-receipts/internal/domain/enum"
	"github.com/sangkips/ecs-receipts/internal/domain/repository"
	"github.com/sangkips/ecs-receipts/internal/presentation/http/dto/request"
	"github.com/sangkips/ecs-receipts/internal/presentation/http/dto/response"
	"github.com/sangkips/ecs-receipts/internal/receipt"
	"github.com/sangkips/ecs-receipts/pkg/apperror"
	"github.com/sangkips/ecs-receipts/pkg/pagination"
)

// ReceiptHandler handles persisted receipt HTTP requests
type ReceiptHandler struct {
	receiptService *service.ReceiptService
	exportService  *service.ExportService
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receiptService *service.ReceiptService, exportService *service.ExportService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService, exportService: exportService}
}

// Create stores a submitted receipt
// @Summary Create Receipt
// @Description Persist an assembled receipt record. Honours Idempotency-Key.
// @Tags receipts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replay protection key"
// @Success 201 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /receipts [post]
func (h *ReceiptHandler) Create(c *gin.Context) {
	var rec receipt.Record
	if !bindJSON(c, &rec) {
		return
	}

	r, err := h.receiptService.Create(c.Request.Context(), currentActor(c), rec)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Receipt saved successfully", response.NewReceiptResponse(r))
}

// List handles listing receipts with filters and pagination
// @Summary List Receipts
// @Tags receipts
// @Security BearerAuth
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param category query string false "MF, FD, BOND, NCD, IPO or INS"
// @Param issuer query string false "Issuer name contains"
// @Param emp_code query string false "Employee code"
// @Param status query string false "pending, verified or rejected"
// @Param include_deleted query bool false "Admins only"
// @Param sort query string false "field:dir, e.g. date:desc"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Items per page (per_page is also accepted)" default(15)
// @Success 200 {object} response.APIResponse
// @Router /receipts [get]
func (h *ReceiptHandler) List(c *gin.Context) {
	var req request.ReceiptFilterRequest
	if !bindQuery(c, &req) {
		return
	}
	filter, err := receiptFilter(req)
	if err != nil {
		response.Error(c, err)
		return
	}

	page, err := h.receiptService.List(c.Request.Context(), currentActor(c), filter, &pagination.PaginationParams{
		Page:    req.Page,
		PerPage: req.PageSize(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Receipts retrieved successfully", response.NewReceiptPage(page))
}

func receiptFilter(req request.ReceiptFilterRequest) (repository.ReceiptFilter, error) {
	f := repository.ReceiptFilter{
		From:           req.From,
		To:             req.To,
		Category:       req.Category,
		Issuer:         req.Issuer,
		EmpCode:        req.EmpCode,
		IncludeDeleted: req.IncludeDeleted,
		Sort:           req.Sort,
	}
	if req.Status != "" {
		st, err := enum.ParseReceiptStatus(req.Status)
		if err != nil {
			return f, apperror.NewBadRequestError(err.Error())
		}
		f.Status = &st
	}
	return f, nil
}

// Get handles getting a single receipt
// @Summary Get Receipt
// @Tags receipts
// @Security BearerAuth
// @Param id path string true "Receipt ID"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /receipts/{id} [get]
func (h *ReceiptHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	r, err := h.receiptService.Get(c.Request.Context(), currentActor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt retrieved successfully", response.NewReceiptResponse(r))
}

// ByEmployee lists the receipts issued under one employee code
// @Summary Receipts by Employee
// @Tags receipts
// @Security BearerAuth
// @Param code path string true "Employee code"
// @Success 200 {object} response.APIResponse
// @Router /receipts/emp/{code} [get]
func (h *ReceiptHandler) ByEmployee(c *gin.Context) {
	rows, err := h.receiptService.ByEmployee(c.Request.Context(), currentActor(c), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipts retrieved successfully", response.NewReceiptResponses(rows))
}

// Update replaces a receipt's record
// @Summary Update Receipt
// @Tags receipts
// @Security BearerAuth
// @Param id path string true "Receipt ID"
// @Success 200 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /receipts/{id} [patch]
func (h *ReceiptHandler) Update(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var rec receipt.Record
	if !bindJSON(c, &rec) {
		return
	}

	r, err := h.receiptService.Update(c.Request.Context(), currentActor(c), id, rec)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt updated successfully", response.NewReceiptResponse(r))
}

// Delete soft deletes a receipt
// @Summary Delete Receipt
// @Tags receipts
// @Security BearerAuth
// @Param id path string true "Receipt ID"
// @Param request body request.DeleteReceiptRequest true "Reason"
// @Success 200 {object} response.APIResponse
// @Router /receipts/{id} [delete]
func (h *ReceiptHandler) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req request.DeleteReceiptRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.receiptService.Delete(c.Request.Context(), currentActor(c), id, req.Reason); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt deleted successfully", nil)
}

// Restore undoes a soft delete
// @Summary Restore Receipt
// @Tags receipts
// @Security BearerAuth
// @Param id path string true "Receipt ID"
// @Success 200 {object} response.APIResponse
// @Router /receipts/{id}/restore [post]
func (h *ReceiptHandler) Restore(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	r, err := h.receiptService.Restore(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt restored successfully", response.NewReceiptResponse(r))
}

// SetStatus records the review outcome
// @Summary Set Receipt Status
// @Tags receipts
// @Security BearerAuth
// @Param id path string true "Receipt ID"
// @Param request body request.ReceiptStatusRequest true "Status"
// @Success 200 {object} response.APIResponse
// @Router /receipts/{id}/status [patch]
func (h *ReceiptHandler) SetStatus(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req request.ReceiptStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	st, err := enum.ParseReceiptStatus(req.Status)
	if err != nil {
		response.Error(c, apperror.NewBadRequestError(err.Error()))
		return
	}

	r, err := h.receiptService.SetStatus(c.Request.Context(), id, st)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt status updated", response.NewReceiptResponse(r))
}

// PDF downloads a stored receipt as PDF.
func (h *ReceiptHandler) PDF(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	data, r, err := h.receiptService.PDF(c.Request.Context(), currentActor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s.pdf"`, pdfName(r.ReceiptNo)))
	c.Data(http.StatusOK, "application/pdf", data)
}

// Export downloads the filtered receipts as an XLSX workbook.
func (h *ReceiptHandler) Export(c *gin.Context) {
	var req request.ReceiptFilterRequest
	if !bindQuery(c, &req) {
		return
	}
	filter, err := receiptFilter(req)
	if err != nil {
		response.Error(c, err)
		return
	}

	var buf bytes.Buffer
	n, err := h.exportService.ExportReceipts(c.Request.Context(), currentActor(c), filter, &buf)
	if err != nil {
		response.Error(c, err)
		return
	}

	name := "receipts-" + time.Now().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("X-Total-Count", strconv.Itoa(n))
	c.Data(http.StatusOK, service.XLSXContentType, buf.Bytes())
}

func pdfName(receiptNo string) string {
	if receiptNo == "" {
		return "receipt"
	}
	return receiptNo
}
