package repository

import (
	"context"

	"github.com/sangkips/ecs-receipts/internal/domain/entity"
	"github.com/sangkips/ecs-receipts/pkg/pagination"
)

// InvestorRepository defines the interface for investor data operations
type InvestorRepository interface {
	Create(ctx context.Context, investor *entity.Investor) error
	GetByInvestorID(ctx context.Context, investorID string) (*entity.Investor, error)
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Investor, int64, error)
	All(ctx context.Context) ([]entity.Investor, error)
}
