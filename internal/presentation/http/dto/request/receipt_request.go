package request

// ReceiptFilterRequest represents receipt list parameters
type ReceiptFilterRequest struct {
	From           string `form:"from" binding:"omitempty,isodate"`
	To             string `form:"to" binding:"omitempty,isodate"`
	Category       string `form:"category" binding:"omitempty,category"`
	Issuer         string `form:"issuer"`
	EmpCode        string `form:"emp_code" binding:"omitempty,empcode"`
	Status         string `form:"status" binding:"omitempty,oneof=pending verified rejected"`
	IncludeDeleted bool   `form:"include_deleted"`
	Sort           string `form:"sort"`
	Page           int    `form:"page"`
	Size           int    `form:"size"`
	PerPage        int    `form:"per_page"`
}

// PageSize prefers size and falls back to per_page.
func (r ReceiptFilterRequest) PageSize() int {
	if r.Size > 0 {
		return r.Size
	}
	return r.PerPage
}

// DeleteReceiptRequest explains a soft delete
type DeleteReceiptRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ReceiptStatusRequest changes the review status
type ReceiptStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending verified rejected"`
}

// StatsFilterRequest scopes dashboard figures
type StatsFilterRequest struct {
	From    string `form:"from" binding:"omitempty,isodate"`
	To      string `form:"to" binding:"omitempty,isodate"`
	EmpCode string `form:"emp_code" binding:"omitempty,empcode"`
}
