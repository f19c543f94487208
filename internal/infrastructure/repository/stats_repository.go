package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sangkips/ecs-receipts/internal/domain/entity"
	domainRepo "github.com/sangkips/ecs-receipts/internal/domain/repository"
	"github.com/sangkips/ecs-receipts/internal/receipt"
	"gorm.io/gorm"
)

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *gorm.DB) domainRepo.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) base(ctx context.Context, f domainRepo.StatsFilter) *gorm.DB {
	return r.db.WithContext(ctx).Model(&entity.Receipt{}).Scopes(StatsScope(f))
}

func (r *statsRepository) Totals(ctx context.Context, f domainRepo.StatsFilter) (int64, decimal.Decimal, error) {
	var row struct {
		Count  int64
		Amount decimal.Decimal
	}
	err := r.base(ctx, f).
		Select("COUNT(*) AS count, COALESCE(SUM(investment_amount), 0) AS amount").
		Scan(&row).Error
	return row.Count, row.Amount, err
}

func (r *statsRepository) ByEmployee(ctx context.Context, f domainRepo.StatsFilter) ([]receipt.EmployeeTotal, error) {
	var results []receipt.EmployeeTotal
	err := r.base(ctx, f).
		Select("emp_code, MAX(employee_name) AS employee_name, COUNT(*) AS count, COALESCE(SUM(investment_amount), 0) AS amount").
		Group("emp_code").
		Order("amount DESC").
		Scan(&results).Error
	return results, err
}

func (r *statsRepository) ByCategory(ctx context.Context, f domainRepo.StatsFilter) ([]receipt.CategoryTotal, error) {
	var results []receipt.CategoryTotal
	err := r.base(ctx, f).
		Select("product_category AS category, COUNT(*) AS count, COALESCE(SUM(investment_amount), 0) AS amount").
		Group("product_category").
		Order("product_category").
		Scan(&results).Error
	return results, err
}

func (r *statsRepository) ByDay(ctx context.Context, f domainRepo.StatsFilter) ([]receipt.DayTotal, error) {
	var results []receipt.DayTotal
	err := r.base(ctx, f).
		Select("receipt_date AS day, COUNT(*) AS count, COALESCE(SUM(investment_amount), 0) AS amount").
		Group("receipt_date").
		Order("receipt_date").
		Scan(&results).Error
	return results, err
}
