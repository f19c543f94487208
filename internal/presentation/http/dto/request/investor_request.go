package request

// CreateInvestorRequest registers an investor
type CreateInvestorRequest struct {
	InvestorID string `json:"investorId" binding:"required,max=50"`
	Name       string `json:"investorName" binding:"required,min=2,max=255"`
	Address    string `json:"investorAddress" binding:"omitempty,max=1000"`
	PinCode    string `json:"pinCode" binding:"omitempty,len=6,numeric"`
	PAN        string `json:"pan" binding:"omitempty,len=10,alphanum"`
	Email      string `json:"email" binding:"omitempty,email"`
}

// InvestorSearchRequest represents investor search parameters
type InvestorSearchRequest struct {
	Query string `form:"q"`
}
