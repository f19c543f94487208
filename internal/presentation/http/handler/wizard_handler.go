package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/ecs-receipts/internal/application/service"
	"github.com/sangkips/ecs-receipts/internal/directory"
	"github.com/sangkips/ecs-receipts/internal/presentation/http/dto/request"
	"github.com/sangkips/ecs-receipts/internal/presentation/http/dto/response"
	"github.com/sangkips/ecs-receipts/internal/preview"
	"github.com/sangkips/ecs-receipts/internal/receipt"
	"github.com/sangkips/ecs-receipts/internal/wizard"
	"github.com/sangkips/ecs-receipts/pkg/apperror"
)

// PreviewStatusHeader reports the preview state on preview downloads.
const PreviewStatusHeader = "X-Preview-Status"

const previewWait = 10 * time.Second

// WizardHandler drives the caller's receipt wizard.
type WizardHandler struct {
	wizardService *service.WizardService
}

func NewWizardHandler(wizardService *service.WizardService) *WizardHandler {
	return &WizardHandler{wizardService: wizardService}
}

func (h *WizardHandler) entry(c *gin.Context) (*wizard.Entry, bool) {
	e, err := h.wizardService.Entry(c.Request.Context(), currentActor(c), GetToken(c))
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return e, true
}

// wizardError maps wizard and catalog errors onto HTTP answers.
func wizardError(err error) error {
	switch {
	case errors.Is(err, wizard.ErrEmployeeRequired),
		errors.Is(err, wizard.ErrInvestorRequired),
		errors.Is(err, wizard.ErrNoCategory),
		errors.Is(err, directory.ErrUnknownIssuer),
		errors.Is(err, directory.ErrUnknownScheme),
		errors.Is(err, receipt.ErrUnknownField),
		errors.Is(err, receipt.ErrInvalidOption):
		return apperror.NewAppError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, wizard.ErrWrongStep), errors.Is(err, wizard.ErrSaveInFlight):
		return apperror.NewAppError(http.StatusConflict, err.Error())
	case errors.Is(err, directory.ErrInvestorNotFound):
		return apperror.NewAppError(http.StatusNotFound, wizard.NoticeNoInvestor)
	}
	return err
}

// State returns the caller's wizard.
func (h *WizardHandler) State(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	response.OK(c, "Wizard retrieved", e.Machine.State())
}

// SetEmployee records the code typed at the first step and reports the
// live match. An unknown code is not an error.
func (h *WizardHandler) SetEmployee(c *gin.Context) {
	var req request.WizardEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}
	e, ok := h.entry(c)
	if !ok {
		return
	}

	match, err := e.Machine.SetEmployeeCode(req.EmpCode)
	if err != nil {
		response.ErrorWithData(c, wizardError(err), e.Machine.State())
		return
	}
	response.OK(c, "Employee updated", gin.H{
		"match": match,
		"state": e.Machine.State(),
	})
}

// SearchInvestors searches the directory and clears the selection.
func (h *WizardHandler) SearchInvestors(c *gin.Context) {
	var req request.InvestorSearchRequest
	if !bindQuery(c, &req) {
		return
	}
	e, ok := h.entry(c)
	if !ok {
		return
	}

	results, err := e.Machine.SearchInvestors(req.Query)
	if err != nil {
		response.Error(c, wizardError(err))
		return
	}
	if results == nil {
		results = []receipt.InvestorInfo{}
	}
	response.OK(c, "Investors retrieved", results)
}

// SelectInvestor picks the investor for the receipt.
func (h *WizardHandler) SelectInvestor(c *gin.Context) {
	var req request.WizardInvestorRequest
	if !bindJSON(c, &req) {
		return
	}
	e, ok := h.entry(c)
	if !ok {
		return
	}

	if _, err := e.Machine.SelectInvestor(req.InvestorID); err != nil {
		response.ErrorWithData(c, wizardError(err), e.Machine.State())
		return
	}
	response.OK(c, "Investor selected", e.Machine.State())
}

// UpdateProduct applies a category choice and field edits in order. It
// stops at the first rejected edit; earlier edits stay applied.
func (h *WizardHandler) UpdateProduct(c *gin.Context) {
	var req request.WizardProductRequest
	if !bindJSON(c, &req) {
		return
	}
	e, ok := h.entry(c)
	if !ok {
		return
	}
	m := e.Machine

	if req.Category != "" {
		cat, err := receipt.ParseCategory(req.Category)
		if err == nil {
			err = m.SelectCategory(cat)
		}
		if err != nil {
			response.ErrorWithData(c, wizardError(err), productView(m))
			return
		}
	}
	for _, f := range req.Fields {
		if err := m.SetField(f.Name, f.Value); err != nil {
			response.ErrorWithData(c, wizardError(fmt.Errorf("%s: %w", f.Name, err)), productView(m))
			return
		}
	}
	response.OK(c, "Product updated", productView(m))
}

func productView(m *wizard.Machine) gin.H {
	return gin.H{"state": m.State(), "options": m.Options()}
}

// Options returns the option lists of the product form.
func (h *WizardHandler) Options(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	response.OK(c, "Options retrieved", e.Machine.Options())
}

// Continue advances one step.
func (h *WizardHandler) Continue(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	st, err := e.Machine.Continue()
	if err != nil {
		response.ErrorWithData(c, wizardError(err), st)
		return
	}
	response.OK(c, "Moved to "+st.StepName, st)
}

// Back returns to the previous step.
func (h *WizardHandler) Back(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	st, err := e.Machine.Back()
	if err != nil {
		response.ErrorWithData(c, wizardError(err), st)
		return
	}
	response.OK(c, "Moved to "+st.StepName, st)
}

// Save submits the assembled receipt. A failure keeps the record for retry
// and reports the gateway's message.
func (h *WizardHandler) Save(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	id, err := e.Machine.Save(c.Request.Context())
	if err != nil {
		response.ErrorWithData(c, saveError(err), e.Machine.State())
		return
	}
	response.Created(c, "Receipt saved successfully", gin.H{
		"id":    id,
		"state": e.Machine.State(),
	})
}

func saveError(err error) error {
	if apperror.IsAppError(err) {
		return err
	}
	if mapped := wizardError(err); apperror.IsAppError(mapped) {
		return mapped
	}
	return apperror.NewAppError(http.StatusBadGateway, err.Error())
}

// Abandon resets the wizard without saving.
func (h *WizardHandler) Abandon(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	if err := e.Machine.Abandon(); err != nil {
		response.Error(c, wizardError(err))
		return
	}
	response.OK(c, "Wizard reset", e.Machine.State())
}

// Preview reports the state of the rendered preview.
func (h *WizardHandler) Preview(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	response.OK(c, "Preview status", e.Preview.Snapshot())
}

// PreviewPDF waits briefly for the pending render and streams the PDF.
func (h *WizardHandler) PreviewPDF(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), previewWait)
	defer cancel()

	rc, art, err := e.Preview.Open(ctx)
	if err != nil {
		snap := e.Preview.Snapshot()
		c.Header(PreviewStatusHeader, string(snap.Status))
		switch {
		case errors.Is(err, preview.ErrNoRecord):
			response.NotFound(c, err.Error())
		case errors.Is(err, preview.ErrNotAvailable), errors.Is(err, context.DeadlineExceeded):
			response.ErrorWithData(c, apperror.NewUnavailableError(preview.ErrNotAvailable.Error()), snap)
		default:
			response.Error(c, err)
		}
		return
	}
	defer rc.Close()

	c.Header(PreviewStatusHeader, string(preview.StatusReady))
	c.Header("Content-Disposition", `inline; filename="preview.pdf"`)
	c.Header("X-Preview-Generation", strconv.FormatUint(art.Generation, 10))
	c.DataFromReader(http.StatusOK, int64(art.Size), "application/pdf", rc, nil)
}

// PreviewText renders the assembled record as plain text.
func (h *WizardHandler) PreviewText(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	rec := e.Machine.Record()
	if rec == nil {
		response.NotFound(c, preview.ErrNoRecord.Error())
		return
	}
	c.String(http.StatusOK, preview.Text(preview.Layout(*rec)))
}
