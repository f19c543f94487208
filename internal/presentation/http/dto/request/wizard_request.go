package request

// WizardEmployeeRequest sets the employee code typed at the first step
type WizardEmployeeRequest struct {
	EmpCode string `json:"emp_code"`
}

// WizardInvestorRequest picks an investor at the second step
type WizardInvestorRequest struct {
	InvestorID string `json:"investorId" binding:"required"`
}

// WizardFieldValue is one product field edit.
type WizardFieldValue struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value"`
}

// WizardProductRequest edits the product step. Category, when present, is
// applied first; fields are then applied in order so an issuer change
// clears a scheme set earlier in the same request.
type WizardProductRequest struct {
	Category string             `json:"category" binding:"omitempty,category"`
	Fields   []WizardFieldValue `json:"fields" binding:"dive"`
}
