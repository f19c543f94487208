package service

import (
	"context"

	"github.com/sangkips/ecs-receipts/internal/domain/repository"
	"github.com/sangkips/ecs-receipts/internal/receipt"
	"github.com/sangkips/ecs-receipts/pkg/utils"
	"golang.org/x/sync/errgroup"
)

// StatsService serves the dashboard aggregates
type StatsService struct {
	repo repository.StatsRepository
}

// NewStatsService creates a new stats service
func NewStatsService(repo repository.StatsRepository) *StatsService {
	return &StatsService{repo: repo}
}

func (s *StatsService) scope(actor Actor, f repository.StatsFilter) repository.StatsFilter {
	f.EmpCode = utils.NormalizeCode(f.EmpCode)
	if !actor.IsAdmin() {
		f.EmpCode = actor.EmpCode
	}
	return f
}

// Summary returns totals and the per-employee breakdown.
func (s *StatsService) Summary(ctx context.Context, actor Actor, f repository.StatsFilter) (*receipt.Summary, error) {
	f = s.scope(actor, f)
	out := &receipt.Summary{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, amount, err := s.repo.Totals(gctx, f)
		out.TotalReceipts, out.TotalAmount = count, amount
		return err
	})
	g.Go(func() error {
		rows, err := s.repo.ByEmployee(gctx, f)
		out.ByEmployee = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if out.ByEmployee == nil {
		out.ByEmployee = []receipt.EmployeeTotal{}
	}
	return out, nil
}

func (s *StatsService) ByCategory(ctx context.Context, actor Actor, f repository.StatsFilter) ([]receipt.CategoryTotal, error) {
	rows, err := s.repo.ByCategory(ctx, s.scope(actor, f))
	if rows == nil && err == nil {
		rows = []receipt.CategoryTotal{}
	}
	return rows, err
}

func (s *StatsService) ByDay(ctx context.Context, actor Actor, f repository.StatsFilter) ([]receipt.DayTotal, error) {
	rows, err := s.repo.ByDay(ctx, s.scope(actor, f))
	if rows == nil && err == nil {
		rows = []receipt.DayTotal{}
	}
	return rows, err
}
