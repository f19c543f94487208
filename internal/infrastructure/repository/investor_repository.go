package repository

import (
	"context"
	"errors"

	"github.com/sangkips/ecs-receipts/internal/domain/entity"
	domainRepo "github.com/sangkips/ecs-receipts/internal/domain/repository"
	"github.com/sangkips/ecs-receipts/pkg/pagination"
	"gorm.io/gorm"
)

type investorRepository struct {
	db *gorm.DB
}

// NewInvestorRepository creates a new investor repository
func NewInvestorRepository(db *gorm.DB) domainRepo.InvestorRepository {
	return &investorRepository{db: db}
}

func (r *investorRepository) Create(ctx context.Context, investor *entity.Investor) error {
	return r.db.WithContext(ctx).Create(investor).Error
}

func (r *investorRepository) GetByInvestorID(ctx context.Context, investorID string) (*entity.Investor, error) {
	var investor entity.Investor
	err := r.db.WithContext(ctx).First(&investor, "investor_id = ?", investorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &investor, err
}

func (r *investorRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Investor, int64, error) {
	var investors []entity.Investor
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Investor{})
	if search != "" {
		like := containsPattern(search)
		query = query.Where(`LOWER(investor_id) LIKE ? ESCAPE '\' OR LOWER(name) LIKE ? ESCAPE '\' OR LOWER(pan) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`,
			like, like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("created_at DESC").
		Find(&investors).Error
	return investors, total, err
}

func (r *investorRepository) All(ctx context.Context) ([]entity.Investor, error) {
	var investors []entity.Investor
	err := r.db.WithContext(ctx).Order("investor_id").Find(&investors).Error
	return investors, err
}
