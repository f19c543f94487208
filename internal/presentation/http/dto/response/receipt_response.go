package response

import (
	"time"

	"github.com/sangkips/ecs-receipts/internal/domain/entity"
	"github.com/sangkips/ecs-receipts/internal/receipt"
	"github.com/sangkips/ecs-receipts/pkg/pagination"
)

// ReceiptResponse is a stored receipt: the flat record plus bookkeeping.
type ReceiptResponse struct {
	ID           string     `json:"id"`
	Status       string     `json:"status"`
	CreatedBy    string     `json:"created_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	DeleteReason string     `json:"delete_reason,omitempty"`
	receipt.Record
}

func NewReceiptResponse(r *entity.Receipt) ReceiptResponse {
	out := ReceiptResponse{
		ID:           r.ID.String(),
		Status:       r.Status.String(),
		CreatedBy:    r.CreatedBy.String(),
		CreatedAt:    r.CreatedAt,
		DeleteReason: r.DeleteReason,
		Record:       r.Record(),
	}
	if r.DeletedAt.Valid {
		t := r.DeletedAt.Time
		out.DeletedAt = &t
	}
	return out
}

func NewReceiptResponses(rs []entity.Receipt) []ReceiptResponse {
	out := make([]ReceiptResponse, 0, len(rs))
	for i := range rs {
		out = append(out, NewReceiptResponse(&rs[i]))
	}
	return out
}

// NewReceiptPage maps a page of entities to responses.
func NewReceiptPage(page *pagination.PaginatedResult[entity.Receipt]) *pagination.PaginatedResult[ReceiptResponse] {
	return pagination.NewPaginatedResult(NewReceiptResponses(page.Items), page.Pagination)
}
