package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/ecs-receipts/internal/domain/entity"
	domainRepo "github.com/sangkips/ecs-receipts/internal/domain/repository"
	"github.com/sangkips/ecs-receipts/pkg/pagination"
	"gorm.io/gorm"
)

type receiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository creates a new receipt repository
func NewReceiptRepository(db *gorm.DB) domainRepo.ReceiptRepository {
	return &receiptRepository{db: db}
}

func (r *receiptRepository) Create(ctx context.Context, receipt *entity.Receipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

func (r *receiptRepository) GetByID(ctx context.Context, id uuid.UUID, withDeleted bool) (*entity.Receipt, error) {
	var receipt entity.Receipt
	query := r.db.WithContext(ctx)
	if withDeleted {
		query = query.Unscoped()
	}
	err := query.First(&receipt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &receipt, err
}

func (r *receiptRepository) Update(ctx context.Context, receipt *entity.Receipt) error {
	return r.db.WithContext(ctx).Save(receipt).Error
}

// SoftDelete records who deleted the receipt and why, then stamps deleted_at.
func (r *receiptRepository) SoftDelete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.Receipt{}).Where("id = ?", id).
			Updates(map[string]interface{}{"deleted_by": deletedBy, "delete_reason": reason})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Delete(&entity.Receipt{}, "id = ?", id).Error
	})
}

func (r *receiptRepository) Restore(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Model(&entity.Receipt{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"deleted_at": nil, "deleted_by": nil, "delete_reason": ""}).Error
}

func (r *receiptRepository) List(ctx context.Context, filter domainRepo.ReceiptFilter, params *pagination.PaginationParams) ([]entity.Receipt, int64, error) {
	var receipts []entity.Receipt
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Receipt{}).Scopes(ReceiptScope(filter))

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order(SortOrder(filter.Sort)).
		Find(&receipts).Error

	return receipts, total, err
}

func (r *receiptRepository) ListAll(ctx context.Context, filter domainRepo.ReceiptFilter) ([]entity.Receipt, error) {
	var receipts []entity.Receipt
	err := r.db.WithContext(ctx).
		Scopes(ReceiptScope(filter)).
		Order(SortOrder(filter.Sort)).
		Find(&receipts).Error
	return receipts, err
}
