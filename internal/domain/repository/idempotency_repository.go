package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/ecs-receipts/internal/domain/entity"
)

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// GetByKey retrieves an unexpired key by its key string and user ID
	GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error)
	Create(ctx context.Context, ikey *entity.IdempotencyKey) error
	// DeleteExpired removes expired keys and reports how many went
	DeleteExpired(ctx context.Context) (int64, error)
}
