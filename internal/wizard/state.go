package wizard

import (
	"strings"

	"github.com/sangkips/ecs-receipts/internal/receipt"
)

// State is a serializable snapshot of a machine.
type State struct {
	Step          Step                   `json:"step"`
	StepName      string                 `json:"step_name"`
	EmpCode       string                 `json:"emp_code"`
	Employee      receipt.EmployeeSeed   `json:"employee"`
	EmployeeFound bool                   `json:"employee_found"`
	Notice        string                 `json:"notice,omitempty"`
	Query         string                 `json:"query"`
	Results       []receipt.InvestorInfo `json:"results,omitempty"`
	Investor      *receipt.InvestorSeed  `json:"investor,omitempty"`
	Category      receipt.Category       `json:"category,omitempty"`
	Product       receipt.Product        `json:"product,omitempty"`
	Record        *receipt.Record        `json:"record,omitempty"`
	Saving        bool                   `json:"saving"`
	SaveError     string                 `json:"save_error,omitempty"`
	LastSavedID   string                 `json:"last_saved_id,omitempty"`
	CanContinue   bool                   `json:"can_continue"`
	CanBack       bool                   `json:"can_back"`
}

// State returns a snapshot that shares nothing with the machine.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := State{
		Step:          m.step,
		StepName:      m.step.String(),
		EmpCode:       m.empCode,
		Employee:      m.employee,
		EmployeeFound: m.empFound,
		Notice:        m.notice,
		Query:         m.query,
		Saving:        m.saving,
		SaveError:     m.saveErr,
		LastSavedID:   m.lastSavedID,
		CanBack:       m.step > StepEmployee && !m.saving,
	}
	if m.results != nil {
		s.Results = append([]receipt.InvestorInfo(nil), m.results...)
	}
	if m.investor != nil {
		inv := *m.investor
		if inv.Info != nil {
			info := *inv.Info
			inv.Info = &info
		}
		s.Investor = &inv
	}
	if m.product != nil {
		s.Category = m.product.Category()
		s.Product = receipt.Clone(m.product)
	}
	if m.record != nil {
		r := *m.record
		s.Record = &r
	}

	switch m.step {
	case StepEmployee:
		s.CanContinue = strings.TrimSpace(m.empCode) != ""
	case StepInvestor:
		s.CanContinue = m.investor != nil
	case StepProduct:
		s.CanContinue = true
	}
	return s
}
