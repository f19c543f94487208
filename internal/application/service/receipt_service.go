package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/ecs-receipts/internal/domain/entity"
	"github.com/sangkips/ecs-receipts/internal/domain/enum"
	"github.com/sangkips/ecs-receipts/internal/domain/repository"
	"github.com/sangkips/ecs-receipts/internal/preview"
	"github.com/sangkips/ecs-receipts/internal/receipt"
	"github.com/sangkips/ecs-receipts/pkg/apperror"
	"github.com/sangkips/ecs-receipts/pkg/email"
	"github.com/sangkips/ecs-receipts/pkg/pagination"
	"github.com/sangkips/ecs-receipts/pkg/utils"
	"gorm.io/gorm"
)

// Notifier delivers the investor acknowledgement.
type Notifier interface {
	SendReceiptAcknowledgement(toEmail string, data email.ReceiptEmail) error
}

// ReceiptService stores and manages issued receipts
type ReceiptService struct {
	repo      repository.ReceiptRepository
	assembler *receipt.Assembler
	pdf       *preview.PDFRenderer
	notifier  Notifier
	now       func() time.Time
}

// NewReceiptService creates a new receipt service. notifier may be nil.
func NewReceiptService(repo repository.ReceiptRepository, pdf *preview.PDFRenderer, notifier Notifier) *ReceiptService {
	return &ReceiptService{
		repo:      repo,
		assembler: receipt.NewAssembler(),
		pdf:       pdf,
		notifier:  notifier,
		now:       time.Now,
	}
}

// Create validates and stores a record on behalf of actor.
func (s *ReceiptService) Create(ctx context.Context, actor Actor, rec receipt.Record) (*entity.Receipt, error) {
	rec, err := s.prepare(rec)
	if err != nil {
		return nil, err
	}

	r, err := entity.NewReceiptFromRecord(rec, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}

	log.Info().
		Str("receipt_id", r.ID.String()).
		Str("receipt_no", r.ReceiptNo).
		Str("emp_code", r.EmpCode).
		Str("category", r.ProductCategory).
		Msg("receipt created")

	if s.notifier != nil && rec.Email != "" {
		go s.acknowledge(rec)
	}
	return r, nil
}

// prepare fills the receipt number and date when missing and rejects
// records the dashboard could not report on.
func (s *ReceiptService) prepare(rec receipt.Record) (receipt.Record, error) {
	var errs []apperror.FieldError

	rec.EmpCode = utils.NormalizeCode(rec.EmpCode)
	if rec.EmpCode == "" {
		errs = append(errs, apperror.FieldError{Field: "empCode", Message: "employee code is required"})
	}
	if rec.InvestorID == "" {
		errs = append(errs, apperror.FieldError{Field: "investorId", Message: "investor is required"})
	}
	c, err := receipt.ParseCategory(rec.ProductCategory)
	if err != nil {
		errs = append(errs, apperror.FieldError{Field: "product_category", Message: err.Error()})
	} else {
		rec.ProductCategory = string(c)
	}
	if rec.InvestmentAmount.IsNegative() {
		errs = append(errs, apperror.FieldError{Field: "investmentAmount", Message: "amount cannot be negative"})
	}
	if rec.Date == "" {
		rec.Date = s.now().Format(receipt.DateLayout)
	} else if _, err := time.Parse(receipt.DateLayout, rec.Date); err != nil {
		errs = append(errs, apperror.FieldError{Field: "date", Message: "date must be YYYY-MM-DD"})
	}
	if len(errs) > 0 {
		return rec, apperror.NewValidationError(errs)
	}

	if rec.ReceiptNo == "" {
		rec.ReceiptNo = s.assembler.NewReceiptNo()
	}
	return rec, nil
}

func (s *ReceiptService) acknowledge(rec receipt.Record) {
	err := s.notifier.SendReceiptAcknowledgement(rec.Email, email.ReceiptEmail{
		InvestorName: rec.InvestorName,
		ReceiptNo:    rec.ReceiptNo,
		Date:         preview.FormatDate(rec.Date),
		Category:     receipt.Category(rec.ProductCategory).Label(),
		Issuer:       rec.IssuerCompany,
		Scheme:       rec.SchemeName,
		Amount:       preview.FormatAmount(rec.InvestmentAmount),
		EmployeeName: rec.EmployeeName,
		Branch:       rec.Branch,
	})
	if err != nil {
		log.Error().Err(err).Str("receipt_no", rec.ReceiptNo).Msg("acknowledgement email failed")
	}
}

// List returns a page of receipts. Employees only ever see their own code
// and never see deleted receipts.
func (s *ReceiptService) List(ctx context.Context, actor Actor, filter repository.ReceiptFilter, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Receipt], error) {
	filter = s.scope(actor, filter)
	params.Validate()

	receipts, total, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(receipts, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// Export returns every receipt matching the filter.
func (s *ReceiptService) Export(ctx context.Context, actor Actor, filter repository.ReceiptFilter) ([]entity.Receipt, error) {
	return s.repo.ListAll(ctx, s.scope(actor, filter))
}

func (s *ReceiptService) scope(actor Actor, filter repository.ReceiptFilter) repository.ReceiptFilter {
	if !actor.IsAdmin() {
		filter.EmpCode = actor.EmpCode
		filter.IncludeDeleted = false
	}
	return filter
}

// Get returns one receipt the actor may see. Admins also see deleted ones.
func (s *ReceiptService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*entity.Receipt, error) {
	r, err := s.repo.GetByID(ctx, id, actor.IsAdmin())
	if err != nil {
		return nil, err
	}
	if r == nil || !actor.canSee(r.EmpCode) {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	return r, nil
}

// ByEmployee lists the live receipts issued under one employee code.
func (s *ReceiptService) ByEmployee(ctx context.Context, actor Actor, empCode string) ([]entity.Receipt, error) {
	code := utils.NormalizeCode(empCode)
	if !actor.canSee(code) {
		return nil, apperror.ErrForbidden
	}
	return s.repo.ListAll(ctx, repository.ReceiptFilter{EmpCode: code, Sort: "date:desc"})
}

// Update replaces the record of a receipt. Employees may only edit their own
// receipts while they are still pending.
func (s *ReceiptService) Update(ctx context.Context, actor Actor, id uuid.UUID, rec receipt.Record) (*entity.Receipt, error) {
	r, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if r.IsDeleted() {
		return nil, apperror.NewConflictError("Receipt is deleted")
	}
	if !actor.IsAdmin() && r.Status != enum.ReceiptStatusPending {
		return nil, apperror.NewConflictError("Only pending receipts can be edited")
	}

	if rec.ReceiptNo == "" {
		rec.ReceiptNo = r.ReceiptNo
	}
	if rec.Date == "" {
		rec.Date = r.ReceiptDate
	}
	rec, err = s.prepare(rec)
	if err != nil {
		return nil, err
	}
	if !actor.canSee(rec.EmpCode) {
		return nil, apperror.ErrForbidden
	}
	if err := r.Apply(rec); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Delete soft deletes a receipt, keeping who did it and why.
func (s *ReceiptService) Delete(ctx context.Context, actor Actor, id uuid.UUID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperror.NewValidationError([]apperror.FieldError{{Field: "reason", Message: "reason is required"}})
	}
	err := s.repo.SoftDelete(ctx, id, actor.UserID, reason)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NewNotFoundError("Receipt")
	}
	if err == nil {
		log.Info().Str("receipt_id", id.String()).Str("by", actor.EmpCode).Str("reason", reason).Msg("receipt deleted")
	}
	return err
}

// Restore undoes a soft delete.
func (s *ReceiptService) Restore(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	r, err := s.repo.GetByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	if !r.IsDeleted() {
		return nil, apperror.NewConflictError("Receipt is not deleted")
	}
	if err := s.repo.Restore(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id, false)
}

// SetStatus records the back-office review outcome.
func (s *ReceiptService) SetStatus(ctx context.Context, id uuid.UUID, status enum.ReceiptStatus) (*entity.Receipt, error) {
	r, err := s.repo.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	r.Status = status
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// PDF renders a stored receipt.
func (s *ReceiptService) PDF(ctx context.Context, actor Actor, id uuid.UUID) ([]byte, *entity.Receipt, error) {
	r, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	if err := s.pdf.Ready(); err != nil {
		return nil, nil, apperror.NewUnavailableError(preview.ErrNotAvailable.Error())
	}
	data, err := s.pdf.PDF(preview.Layout(r.Record()))
	if err != nil {
		return nil, nil, err
	}
	return data, r, nil
}
