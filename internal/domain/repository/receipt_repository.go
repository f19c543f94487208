package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sangkips/ecs-receipts/internal/domain/entity"
	"github.com/sangkips/ecs-receipts/internal/domain/enum"
	"github.com/sangkips/ecs-receipts/internal/receipt"
	"github.com/sangkips/ecs-receipts/pkg/pagination"
)

// ReceiptFilter narrows receipt listings. Dates are inclusive YYYY-MM-DD
// bounds on the receipt date. Sort is "field:dir".
type ReceiptFilter struct {
	From           string
	To             string
	Category       string
	Issuer         string
	EmpCode        string
	Status         *enum.ReceiptStatus
	IncludeDeleted bool
	Sort           string
}

// ReceiptRepository defines the interface for receipt data operations
type ReceiptRepository interface {
	Create(ctx context.Context, receipt *entity.Receipt) error
	GetByID(ctx context.Context, id uuid.UUID, withDeleted bool) (*entity.Receipt, error)
	Update(ctx context.Context, receipt *entity.Receipt) error
	SoftDelete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID, reason string) error
	Restore(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ReceiptFilter, params *pagination.PaginationParams) ([]entity.Receipt, int64, error)
	// ListAll returns every match without paging, for exports.
	ListAll(ctx context.Context, filter ReceiptFilter) ([]entity.Receipt, error)
}

// StatsFilter scopes dashboard aggregates.
type StatsFilter struct {
	From    string
	To      string
	EmpCode string
}

// StatsRepository aggregates live (not deleted) receipts.
type StatsRepository interface {
	Totals(ctx context.Context, filter StatsFilter) (int64, decimal.Decimal, error)
	ByEmployee(ctx context.Context, filter StatsFilter) ([]receipt.EmployeeTotal, error)
	ByCategory(ctx context.Context, filter StatsFilter) ([]receipt.CategoryTotal, error)
	ByDay(ctx context.Context, filter StatsFilter) ([]receipt.DayTotal, error)
}
