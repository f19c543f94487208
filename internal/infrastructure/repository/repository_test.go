package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sangkips/ecs-receipts/internal/domain/entity"
	"github.com/sangkips/ecs-receipts/internal/domain/enum"
	domainRepo "github.com/sangkips/ecs-receipts/internal/domain/repository"
	"github.com/sangkips/ecs-receipts/internal/infrastructure/database"
	"github.com/sangkips/ecs-receipts/internal/receipt"
	"github.com/sangkips/ecs-receipts/pkg/pagination"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewSQLiteDB(":memory:", false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newReceipt(t *testing.T, no, date, emp, category, issuer string, amount int64) *entity.Receipt {
	t.Helper()
	rec := receipt.Record{
		ReceiptNo:    no,
		Date:         date,
		EmpCode:      emp,
		EmployeeName: "Employee " + emp,
		InvestorID:   "INV001",
		InvestorName: "Asha Mehta",
		ProductFields: receipt.ProductFields{
			ProductCategory:  category,
			IssuerCompany:    issuer,
			InvestmentAmount: decimal.NewFromInt(amount),
		},
	}
	r, err := entity.NewReceiptFromRecord(rec, uuid.New())
	require.NoError(t, err)
	return r
}

func seedReceipts(t *testing.T, repo domainRepo.ReceiptRepository) []*entity.Receipt {
	t.Helper()
	rs := []*entity.Receipt{
		newReceipt(t, "R1", "2024-03-01", "E100", "MF", "HDFC Mutual Fund", 10000),
		newReceipt(t, "R2", "2024-03-02", "E100", "FD", "Bajaj Finance", 50000),
		newReceipt(t, "R3", "2024-03-02", "E200", "MF", "ICICI Prudential", 25000),
		newReceipt(t, "R4", "2024-03-05", "E200", "INS", "LIC", 15000),
	}
	for _, r := range rs {
		require.NoError(t, repo.Create(context.Background(), r))
	}
	return rs
}

func TestReceiptRepository_ListFilters(t *testing.T) {
	repo := NewReceiptRepository(setupDB(t))
	seedReceipts(t, repo)
	ctx := context.Background()
	params := &pagination.PaginationParams{Page: 1, PerPage: 10}

	tests := []struct {
		name   string
		filter domainRepo.ReceiptFilter
		want   []string
	}{
		{"all", domainRepo.ReceiptFilter{Sort: "receipt_no:asc"}, []string{"R1", "R2", "R3", "R4"}},
		{"date window", domainRepo.ReceiptFilter{From: "2024-03-02", To: "2024-03-02", Sort: "receipt_no:asc"}, []string{"R2", "R3"}},
		{"category is case-insensitive", domainRepo.ReceiptFilter{Category: "mf", Sort: "receipt_no:asc"}, []string{"R1", "R3"}},
		{"issuer substring", domainRepo.ReceiptFilter{Issuer: "bajaj"}, []string{"R2"}},
		{"employee", domainRepo.ReceiptFilter{EmpCode: "e200", Sort: "amount:desc"}, []string{"R3", "R4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := repo.List(ctx, tt.filter, params)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.want)), total)
			var nos []string
			for _, r := range got {
				nos = append(nos, r.ReceiptNo)
			}
			assert.Equal(t, tt.want, nos)
		})
	}
}

func TestReceiptRepository_IssuerWildcardsAreLiteral(t *testing.T) {
	repo := NewReceiptRepository(setupDB(t))
	seedReceipts(t, repo)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newReceipt(t, "R5", "2024-03-06", "E100", "BOND", "Alpha_Beta 100% Yield", 5000)))

	for _, issuer := range []string{"%", "_", "100%", "a_b"} {
		got, total, err := repo.List(ctx, domainRepo.ReceiptFilter{Issuer: issuer}, &pagination.PaginationParams{Page: 1, PerPage: 10})
		require.NoError(t, err, issuer)
		assert.Equal(t, int64(1), total, issuer)
		require.Len(t, got, 1, issuer)
		assert.Equal(t, "R5", got[0].ReceiptNo, issuer)
	}

	_, total, err := repo.List(ctx, domainRepo.ReceiptFilter{Issuer: "ab"}, &pagination.PaginationParams{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, `%50\% off\_now%`, containsPattern("50% OFF_now"))
	assert.Equal(t, `%c:\\fund%`, containsPattern(`C:\Fund`))
}

func TestReceiptRepository_ListPaginates(t *testing.T) {
	repo := NewReceiptRepository(setupDB(t))
	seedReceipts(t, repo)

	got, total, err := repo.List(context.Background(), domainRepo.ReceiptFilter{Sort: "receipt_no:asc"}, &pagination.PaginationParams{Page: 2, PerPage: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, got, 1)
	assert.Equal(t, "R4", got[0].ReceiptNo)
}

func TestReceiptRepository_StatusFilter(t *testing.T) {
	repo := NewReceiptRepository(setupDB(t))
	rs := seedReceipts(t, repo)
	ctx := context.Background()

	rs[1].Status = enum.ReceiptStatusVerified
	require.NoError(t, repo.Update(ctx, rs[1]))

	verified := enum.ReceiptStatusVerified
	got, err := repo.ListAll(ctx, domainRepo.ReceiptFilter{Status: &verified})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "R2", got[0].ReceiptNo)
}

func TestReceiptRepository_SoftDeleteAndRestore(t *testing.T) {
	repo := NewReceiptRepository(setupDB(t))
	rs := seedReceipts(t, repo)
	ctx := context.Background()
	admin := uuid.New()

	require.NoError(t, repo.SoftDelete(ctx, rs[0].ID, admin, "duplicate entry"))

	live, err := repo.GetByID(ctx, rs[0].ID, false)
	require.NoError(t, err)
	assert.Nil(t, live)

	deleted, err := repo.GetByID(ctx, rs[0].ID, true)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.True(t, deleted.IsDeleted())
	assert.Equal(t, "duplicate entry", deleted.DeleteReason)
	require.NotNil(t, deleted.DeletedBy)
	assert.Equal(t, admin, *deleted.DeletedBy)

	all, err := repo.ListAll(ctx, domainRepo.ReceiptFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	all, err = repo.ListAll(ctx, domainRepo.ReceiptFilter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	// deleting twice finds nothing
	assert.ErrorIs(t, repo.SoftDelete(ctx, rs[0].ID, admin, "again"), gorm.ErrRecordNotFound)

	require.NoError(t, repo.Restore(ctx, rs[0].ID))
	restored, err := repo.GetByID(ctx, rs[0].ID, false)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.False(t, restored.IsDeleted())
	assert.Nil(t, restored.DeletedBy)
	assert.Empty(t, restored.DeleteReason)
}

func TestReceiptRepository_RecordRoundTrip(t *testing.T) {
	repo := NewReceiptRepository(setupDB(t))
	r := newReceipt(t, "R9", "2024-04-10", "E300", "BOND", "REC Ltd", 120000)
	require.NoError(t, repo.Create(context.Background(), r))

	got, err := repo.GetByID(context.Background(), r.ID, false)
	require.NoError(t, err)
	require.NotNil(t, got)
	rec := got.Record()
	assert.Equal(t, "R9", rec.ReceiptNo)
	assert.Equal(t, "BOND", rec.ProductCategory)
	assert.Equal(t, "120000", rec.InvestmentAmount.String())
	assert.Equal(t, enum.ReceiptStatusPending, got.Status)
}

func TestSortOrder(t *testing.T) {
	assert.Equal(t, "created_at DESC", SortOrder(""))
	assert.Equal(t, "created_at DESC", SortOrder("password:asc"))
	assert.Equal(t, "receipt_date ASC", SortOrder("date:asc"))
	assert.Equal(t, "investment_amount DESC", SortOrder("Amount"))
	assert.Equal(t, "issuer_company DESC", SortOrder("issuer:desc"))
}

func TestStatsRepository(t *testing.T) {
	db := setupDB(t)
	receipts := NewReceiptRepository(db)
	rs := seedReceipts(t, receipts)
	require.NoError(t, receipts.SoftDelete(context.Background(), rs[3].ID, uuid.New(), "wrong investor"))

	stats := NewStatsRepository(db)
	ctx := context.Background()

	count, amount, err := stats.Totals(ctx, domainRepo.StatsFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.Equal(t, "85000", amount.String())

	count, amount, err = stats.Totals(ctx, domainRepo.StatsFilter{EmpCode: "E100"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, "60000", amount.String())

	byEmp, err := stats.ByEmployee(ctx, domainRepo.StatsFilter{})
	require.NoError(t, err)
	require.Len(t, byEmp, 2)
	assert.Equal(t, "E100", byEmp[0].EmpCode)
	assert.Equal(t, "Employee E100", byEmp[0].EmployeeName)

	byCat, err := stats.ByCategory(ctx, domainRepo.StatsFilter{})
	require.NoError(t, err)
	require.Len(t, byCat, 2)
	assert.Equal(t, "FD", byCat[0].Category)
	assert.Equal(t, "MF", byCat[1].Category)
	assert.Equal(t, int64(2), byCat[1].Count)
	assert.Equal(t, "35000", byCat[1].Amount.String())

	byDay, err := stats.ByDay(ctx, domainRepo.StatsFilter{From: "2024-03-02"})
	require.NoError(t, err)
	require.Len(t, byDay, 1)
	assert.Equal(t, "2024-03-02", byDay[0].Day)
	assert.Equal(t, int64(2), byDay[0].Count)
}

func TestUserRepository(t *testing.T) {
	db := setupDB(t)
	users := NewUserRepository(db)
	roles := NewRoleRepository(db)
	ctx := context.Background()

	role := &entity.Role{Name: entity.RoleEmployee, GuardName: "web"}
	require.NoError(t, roles.Create(ctx, role))

	u := &entity.User{EmpCode: "E100", Name: "Ravi Kumar", Active: true}
	require.NoError(t, users.Create(ctx, u))

	got, err := users.GetByEmpCode(ctx, "E100")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	missing, err := users.GetByEmpCode(ctx, "E999")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, users.SetRoles(ctx, u, []entity.Role{*role}))
	withRoles, err := users.GetWithRoles(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, withRoles.Roles, 1)
	assert.Equal(t, entity.RoleEmployee, withRoles.Roles[0].Name)

	list, total, err := users.List(ctx, &pagination.PaginationParams{Page: 1, PerPage: 10}, "ravi")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)
}

func TestIdempotencyRepository(t *testing.T) {
	repo := NewIdempotencyRepository(setupDB(t))
	ctx := context.Background()
	user := uuid.New()

	live := &entity.IdempotencyKey{Key: "k1", UserID: user, Endpoint: "POST /api/receipts", ResponseCode: 201, ExpiresAt: time.Now().Add(time.Hour)}
	stale := &entity.IdempotencyKey{Key: "k2", UserID: user, Endpoint: "POST /api/receipts", ResponseCode: 201, ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, repo.Create(ctx, live))
	require.NoError(t, repo.Create(ctx, stale))

	got, err := repo.GetByKey(ctx, "k1", user)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 201, got.ResponseCode)

	got, err = repo.GetByKey(ctx, "k1", uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.GetByKey(ctx, "k2", user)
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
