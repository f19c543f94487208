package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sangkips/ecs-receipts/internal/directory"
	"github.com/sangkips/ecs-receipts/internal/domain/entity"
	"github.com/sangkips/ecs-receipts/internal/domain/repository"
	"github.com/sangkips/ecs-receipts/internal/receipt"
	"github.com/sangkips/ecs-receipts/pkg/apperror"
)

var panPattern = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)

// InvestorService manages investors registered through the API and keeps the
// in-memory directory in step with them.
type InvestorService struct {
	repo repository.InvestorRepository
	dir  *directory.Directory
}

// NewInvestorService creates a new investor service
func NewInvestorService(repo repository.InvestorRepository, dir *directory.Directory) *InvestorService {
	return &InvestorService{repo: repo, dir: dir}
}

// Sync loads every stored investor into the directory. Run once at start up.
func (s *InvestorService) Sync(ctx context.Context) error {
	investors, err := s.repo.All(ctx)
	if err != nil {
		return err
	}
	for i := range investors {
		s.dir.AddInvestor(investors[i].Info())
	}
	log.Info().Int("count", len(investors)).Msg("stored investors loaded into directory")
	return nil
}

// Search matches the directory, reference and stored investors alike.
func (s *InvestorService) Search(query string) []receipt.InvestorInfo {
	return s.dir.SearchInvestors(query)
}

// CreateInvestorInput represents the input for registering an investor
type CreateInvestorInput struct {
	InvestorID string
	Name       string
	Address    string
	PinCode    string
	PAN        string
	Email      string
}

// Create stores a new investor and makes it searchable.
func (s *InvestorService) Create(ctx context.Context, actor Actor, input *CreateInvestorInput) (*entity.Investor, error) {
	id := strings.TrimSpace(input.InvestorID)
	pan := strings.ToUpper(strings.TrimSpace(input.PAN))
	if pan != "" && !panPattern.MatchString(pan) {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "pan", Message: "PAN must look like ABCDE1234F"}})
	}

	if _, err := s.dir.Investor(id); err == nil {
		return nil, apperror.NewConflictError("Investor ID already exists")
	} else if !errors.Is(err, directory.ErrInvestorNotFound) {
		return nil, err
	}

	inv := &entity.Investor{
		InvestorID: id,
		Name:       strings.TrimSpace(input.Name),
		Address:    strings.TrimSpace(input.Address),
		PinCode:    strings.TrimSpace(input.PinCode),
		PAN:        pan,
		Email:      strings.TrimSpace(input.Email),
		CreatedBy:  actor.UserID,
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, err
	}
	s.dir.AddInvestor(inv.Info())
	return inv, nil
}
