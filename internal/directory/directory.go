package directory

import (
	"errors"
	"strings"
	"sync"

	"github.com/sangkips/ecs-receipts/internal/receipt"
)

const (
	// DefaultResults is returned for an empty investor query.
	DefaultResults = 25
	// MaxResults caps any investor search.
	MaxResults = 50
)

var (
	ErrInvestorNotFound = errors.New("investor not found")
	ErrUnknownIssuer    = errors.New("issuer is not in the catalog")
	ErrUnknownScheme    = errors.New("scheme is not offered by the issuer")
)

// Employee is one row of the employee master.
type Employee struct {
	Code   string `json:"Code" yaml:"code"`
	Name   string `json:"Name" yaml:"name"`
	Branch string `json:"Branch" yaml:"branch"`
}

// Issuer lists the schemes offered by one company.
type Issuer struct {
	Company string   `json:"company" yaml:"company"`
	Schemes []string `json:"schemes" yaml:"schemes"`
}

// InsuranceIssuer is an insurer with its product lines.
type InsuranceIssuer struct {
	Company     string             `json:"company" yaml:"company"`
	Subsections []InsuranceSection `json:"subsections" yaml:"subsections"`
}

// InsuranceSection is one category of an insurer, e.g. Term or Health.
type InsuranceSection struct {
	Name     string   `json:"name" yaml:"name"`
	Products []string `json:"products" yaml:"products"`
}

// Directory holds the reference data the wizard draws its options from.
// It is safe for concurrent use; investors can be added at runtime.
type Directory struct {
	mu        sync.RWMutex
	employees map[string]Employee
	investors []receipt.InvestorInfo
	byID      map[string]int

	mf        []Issuer
	nonMF     []Issuer
	insurance []InsuranceIssuer
}

// New builds a directory from already-decoded data.
func New(employees []Employee, investors []receipt.InvestorInfo, mf, nonMF []Issuer, insurance []InsuranceIssuer) *Directory {
	d := &Directory{
		employees: make(map[string]Employee, len(employees)),
		byID:      make(map[string]int, len(investors)),
		mf:        mf,
		nonMF:     nonMF,
		insurance: insurance,
	}
	for _, e := range employees {
		key := employeeKey(e.Code)
		if key == "" {
			continue
		}
		d.employees[key] = e
	}
	for _, inv := range investors {
		d.addLocked(inv)
	}
	return d
}

func employeeKey(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// LookupEmployee matches a code exactly, ignoring case and surrounding space.
func (d *Directory) LookupEmployee(code string) (Employee, bool) {
	key := employeeKey(code)
	if key == "" {
		return Employee{}, false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.employees[key]
	return e, ok
}

// EmployeeCount returns the number of indexed employees.
func (d *Directory) EmployeeCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.employees)
}

// SearchInvestors does a case-insensitive substring match over id, name,
// address, PAN and email. An empty query returns the first DefaultResults
// investors; otherwise at most MaxResults are returned.
func (d *Directory) SearchInvestors(query string) []receipt.InvestorInfo {
	q := strings.ToLower(strings.TrimSpace(query))

	d.mu.RLock()
	defer d.mu.RUnlock()

	if q == "" {
		n := len(d.investors)
		if n > DefaultResults {
			n = DefaultResults
		}
		out := make([]receipt.InvestorInfo, n)
		copy(out, d.investors[:n])
		return out
	}

	out := make([]receipt.InvestorInfo, 0, 8)
	for _, inv := range d.investors {
		if matches(inv, q) {
			out = append(out, inv)
			if len(out) == MaxResults {
				break
			}
		}
	}
	return out
}

func matches(inv receipt.InvestorInfo, q string) bool {
	for _, s := range []string{inv.InvestorID, inv.InvestorName, inv.InvestorAddress, inv.PAN, inv.Email} {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

// Investor returns the investor with the given id.
func (d *Directory) Investor(id string) (receipt.InvestorInfo, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i, ok := d.byID[strings.TrimSpace(id)]
	if !ok {
		return receipt.InvestorInfo{}, ErrInvestorNotFound
	}
	return d.investors[i], nil
}

// AddInvestor inserts or replaces an investor by id.
func (d *Directory) AddInvestor(inv receipt.InvestorInfo) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addLocked(inv)
}

func (d *Directory) addLocked(inv receipt.InvestorInfo) {
	inv.InvestorID = strings.TrimSpace(inv.InvestorID)
	if inv.InvestorID == "" {
		return
	}
	if i, ok := d.byID[inv.InvestorID]; ok {
		d.investors[i] = inv
		return
	}
	d.byID[inv.InvestorID] = len(d.investors)
	d.investors = append(d.investors, inv)
}
