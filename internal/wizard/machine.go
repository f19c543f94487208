package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sangkips/ecs-receipts/internal/directory"
	"github.com/sangkips/ecs-receipts/internal/receipt"
	"github.com/sangkips/ecs-receipts/internal/session"
)

// Step is a wizard position.
type Step int

const (
	StepEmployee Step = iota + 1
	StepInvestor
	StepProduct
	StepPreview
)

var stepNames = [...]string{"", "employee", "investor", "product", "preview"}

func (s Step) String() string {
	if s < StepEmployee || s > StepPreview {
		return "unknown"
	}
	return stepNames[s]
}

var (
	ErrEmployeeRequired = errors.New("employee code is required")
	ErrInvestorRequired = errors.New("select an investor to continue")
	ErrWrongStep        = errors.New("action is not available at this step")
	ErrSaveInFlight     = errors.New("a save is already in progress")
	ErrNoCategory       = errors.New("choose a product category first")
)

// Notices shown inline for lookup misses.
const (
	NoticeNoEmployee = "No match for that code."
	NoticeNoInvestor = "Investor not found."
)

// Directory is the reference data the machine reads from.
type Directory interface {
	LookupEmployee(code string) (directory.Employee, bool)
	SearchInvestors(query string) []receipt.InvestorInfo
	Investor(id string) (receipt.InvestorInfo, error)
	Issuers(c receipt.Category) []string
	Schemes(c receipt.Category, issuer string) []string
	InsuranceCategories(issuer string) []string
	InsuranceProducts(issuer, category string) []string
	CheckIssuer(c receipt.Category, issuer string) error
	CheckScheme(c receipt.Category, issuer, scheme string) error
}

// Gateway persists a finished receipt and returns its id.
type Gateway interface {
	CreateReceipt(ctx context.Context, rec receipt.Record) (string, error)
}

// Machine is the four-step receipt wizard of one user. All methods are safe
// for concurrent use; the lock is never held across a gateway call.
type Machine struct {
	mu   sync.Mutex
	dir  Directory
	sess session.Session
	gw   Gateway
	asm  *receipt.Assembler
	now  func() time.Time

	onRecord func(version uint64, rec *receipt.Record)
	version  uint64

	step        Step
	empCode     string
	employee    receipt.EmployeeSeed
	empFound    bool
	notice      string
	query       string
	results     []receipt.InvestorInfo
	investor    *receipt.InvestorSeed
	product     receipt.Product
	record      *receipt.Record
	saving      bool
	saveErr     string
	lastSavedID string
	lastActive  time.Time
}

type Option func(*Machine)

// WithAssembler replaces the receipt assembler.
func WithAssembler(a *receipt.Assembler) Option {
	return func(m *Machine) { m.asm = a }
}

// OnRecordChange registers fn to be called with the new record whenever it is
// assembled or discarded (nil). fn is called without the machine lock held,
// so concurrent calls may arrive out of order; version increases with every
// change and fn must ignore a version older than one it already applied.
func OnRecordChange(fn func(version uint64, rec *receipt.Record)) Option {
	return func(m *Machine) { m.onRecord = fn }
}

// WithClock replaces the activity clock.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// New returns a machine at the Employee step, pre-filled from the session user.
func New(dir Directory, sess session.Session, gw Gateway, opts ...Option) *Machine {
	m := &Machine{
		dir:  dir,
		sess: sess,
		gw:   gw,
		asm:  receipt.NewAssembler(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.mu.Lock()
	m.resetLocked()
	m.mu.Unlock()
	return m
}

// EmployeeMatch is the live result of typing a code at Step 1.
type EmployeeMatch struct {
	Found  bool   `json:"found"`
	Name   string `json:"name"`
	Branch string `json:"branch"`
}

// SetEmployeeCode records the typed code and resolves it against the
// directory. A miss is not an error.
func (m *Machine) SetEmployeeCode(code string) (EmployeeMatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != StepEmployee {
		return EmployeeMatch{}, ErrWrongStep
	}
	m.touchLocked()
	m.setEmployeeLocked(code)
	return EmployeeMatch{Found: m.empFound, Name: m.employee.EmployeeName, Branch: m.employee.Branch}, nil
}

func (m *Machine) setEmployeeLocked(code string) {
	m.empCode = code
	trimmed := strings.TrimSpace(code)
	m.employee = receipt.EmployeeSeed{EmpCode: trimmed}
	m.empFound = false
	m.notice = ""

	if trimmed == "" {
		return
	}
	if e, ok := m.dir.LookupEmployee(trimmed); ok {
		m.employee.EmployeeName = e.Name
		m.employee.Branch = e.Branch
		m.empFound = true
		return
	}
	if u := m.currentUser(); u != nil && strings.EqualFold(u.EmpCode, trimmed) {
		m.employee.EmployeeName = u.Name
		m.employee.Branch = u.Branch
		m.empFound = true
		return
	}
	m.notice = NoticeNoEmployee
}

func (m *Machine) currentUser() *session.User {
	if m.sess == nil {
		return nil
	}
	return m.sess.CurrentUser()
}

// Continue advances one step. Entering Preview normalizes the product form
// and assembles the record.
func (m *Machine) Continue() (State, error) {
	m.mu.Lock()
	var (
		version uint64
		rec     *receipt.Record
	)
	switch m.step {
	case StepEmployee:
		if strings.TrimSpace(m.empCode) == "" {
			m.mu.Unlock()
			return m.State(), ErrEmployeeRequired
		}
		if m.results == nil {
			m.results = m.dir.SearchInvestors(m.query)
		}
		m.notice = ""
		m.step = StepInvestor
	case StepInvestor:
		if m.investor == nil {
			m.mu.Unlock()
			return m.State(), ErrInvestorRequired
		}
		m.notice = ""
		m.step = StepProduct
	case StepProduct:
		var fields receipt.ProductFields
		if m.product != nil {
			fields = receipt.Normalize(m.product)
		}
		r := m.asm.Assemble(m.employee, *m.investor, fields)
		m.record = &r
		m.saveErr = ""
		m.step = StepPreview
		version, rec = m.nextVersionLocked(), &r
	default:
		m.mu.Unlock()
		return m.State(), ErrWrongStep
	}
	m.touchLocked()
	m.mu.Unlock()

	if version != 0 {
		m.notify(version, rec)
	}
	return m.State(), nil
}

// Back moves one step back. Leaving Preview discards the record.
func (m *Machine) Back() (State, error) {
	m.mu.Lock()
	if m.saving {
		m.mu.Unlock()
		return m.State(), ErrSaveInFlight
	}
	if m.step <= StepEmployee {
		m.mu.Unlock()
		return m.State(), ErrWrongStep
	}
	var version uint64
	if m.step == StepPreview {
		m.record = nil
		m.saveErr = ""
		version = m.nextVersionLocked()
	}
	m.step--
	m.notice = ""
	m.touchLocked()
	m.mu.Unlock()

	if version != 0 {
		m.notify(version, nil)
	}
	return m.State(), nil
}

// SearchInvestors runs a directory search and clears the current selection.
func (m *Machine) SearchInvestors(query string) ([]receipt.InvestorInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != StepInvestor {
		return nil, ErrWrongStep
	}
	m.touchLocked()
	m.query = query
	m.results = m.dir.SearchInvestors(query)
	m.investor = nil
	m.notice = ""
	return append([]receipt.InvestorInfo(nil), m.results...), nil
}

// SelectInvestor picks one investor by id.
func (m *Machine) SelectInvestor(id string) (*receipt.InvestorSeed, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != StepInvestor {
		return nil, ErrWrongStep
	}
	m.touchLocked()
	info, err := m.dir.Investor(id)
	if err != nil {
		m.notice = NoticeNoInvestor
		return nil, err
	}
	m.notice = ""
	m.investor = &receipt.InvestorSeed{InvestorID: info.InvestorID, Info: &info}
	seed := *m.investor
	return &seed, nil
}

// SelectCategory starts a fresh form for c. Re-selecting the active
// category keeps the form.
func (m *Machine) SelectCategory(c receipt.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != StepProduct {
		return ErrWrongStep
	}
	m.touchLocked()
	if m.product != nil && m.product.Category() == c {
		return nil
	}
	p, err := receipt.NewProduct(c)
	if err != nil {
		return err
	}
	m.product = p
	return nil
}

// SetIssuer selects an issuer from the catalog of the active category.
// Descendant selections are cleared when the issuer changes.
func (m *Machine) SetIssuer(name string) error {
	return m.editProduct(func(p receipt.Product) error {
		if name != "" {
			if err := m.dir.CheckIssuer(p.Category(), name); err != nil {
				return err
			}
		}
		return p.Set("issuer", name)
	})
}

// SetScheme selects a scheme of the chosen issuer. Not used for insurance.
func (m *Machine) SetScheme(name string) error {
	return m.editProduct(func(p receipt.Product) error {
		if p.Category() == receipt.CategoryINS {
			return fmt.Errorf("%w: insurance uses category and product", receipt.ErrUnknownField)
		}
		if name != "" {
			if err := m.dir.CheckScheme(p.Category(), p.Issuer(), name); err != nil {
				return err
			}
		}
		return p.Set("scheme", name)
	})
}

// SetInsuranceCategory selects a category of the chosen insurer.
func (m *Machine) SetInsuranceCategory(name string) error {
	return m.editProduct(func(p receipt.Product) error {
		ins, ok := p.(*receipt.InsuranceInput)
		if !ok {
			return fmt.Errorf("%w: category applies to insurance only", receipt.ErrUnknownField)
		}
		if name != "" && !contains(m.dir.InsuranceCategories(ins.IssuerName), name) {
			return fmt.Errorf("%w: %q / %q", directory.ErrUnknownScheme, ins.IssuerName, name)
		}
		return ins.Set("category", name)
	})
}

// SetInsuranceProduct selects a product of the chosen insurance category.
func (m *Machine) SetInsuranceProduct(name string) error {
	return m.editProduct(func(p receipt.Product) error {
		ins, ok := p.(*receipt.InsuranceInput)
		if !ok {
			return fmt.Errorf("%w: product applies to insurance only", receipt.ErrUnknownField)
		}
		if name != "" && !contains(m.dir.InsuranceProducts(ins.IssuerName, ins.InsCategory), name) {
			return fmt.Errorf("%w: %q / %q", directory.ErrUnknownScheme, ins.InsCategory, name)
		}
		return ins.Set("product", name)
	})
}

// SetField assigns one form field by name. Catalog-backed fields go through
// their validating setters.
func (m *Machine) SetField(name, value string) error {
	switch name {
	case "issuer":
		return m.SetIssuer(value)
	case "scheme":
		return m.SetScheme(value)
	}
	m.mu.Lock()
	isIns := m.product != nil && m.product.Category() == receipt.CategoryINS
	m.mu.Unlock()
	if isIns {
		switch name {
		case "category":
			return m.SetInsuranceCategory(value)
		case "product":
			return m.SetInsuranceProduct(value)
		}
	}
	return m.editProduct(func(p receipt.Product) error {
		return p.Set(name, value)
	})
}

func (m *Machine) editProduct(fn func(receipt.Product) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != StepProduct {
		return ErrWrongStep
	}
	if m.product == nil {
		return ErrNoCategory
	}
	m.touchLocked()
	return fn(m.product)
}

// Options are the choices the product form offers right now.
type Options struct {
	Categories          []receipt.Category `json:"categories"`
	Category            receipt.Category   `json:"category,omitempty"`
	Issuers             []string           `json:"issuers,omitempty"`
	Schemes             []string           `json:"schemes,omitempty"`
	InsuranceCategories []string           `json:"insurance_categories,omitempty"`
	InsuranceProducts   []string           `json:"insurance_products,omitempty"`
	SchemeOptions       []string           `json:"scheme_options,omitempty"`
	TxnModes            []string           `json:"txn_modes,omitempty"`
	TxnKinds            []string           `json:"txn_kinds,omitempty"`
	ClientTypes         []string           `json:"client_types,omitempty"`
	InterestPayables    []string           `json:"interest_payables,omitempty"`
	InterestFrequencies []string           `json:"interest_frequencies,omitempty"`
}

// Options derives the option lists for the active category and selections.
func (m *Machine) Options() Options {
	m.mu.Lock()
	var p receipt.Product
	if m.product != nil {
		p = receipt.Clone(m.product)
	}
	m.mu.Unlock()

	opts := Options{Categories: receipt.Categories}
	if p == nil {
		return opts
	}
	c := p.Category()
	opts.Category = c
	opts.Issuers = m.dir.Issuers(c)

	switch v := p.(type) {
	case *receipt.MutualFundInput:
		opts.Schemes = m.dir.Schemes(c, v.IssuerName)
		opts.SchemeOptions = receipt.SchemeOptions
		opts.TxnModes = receipt.TxnModes
		opts.TxnKinds = receipt.TxnKinds
	case *receipt.FixedDepositInput:
		opts.Schemes = m.dir.Schemes(c, v.IssuerName)
		opts.ClientTypes = receipt.ClientTypes
		opts.InterestPayables = receipt.InterestPayables
		opts.InterestFrequencies = receipt.InterestFrequencies
	case *receipt.InsuranceInput:
		opts.InsuranceCategories = m.dir.InsuranceCategories(v.IssuerName)
		opts.InsuranceProducts = m.dir.InsuranceProducts(v.IssuerName, v.InsCategory)
	case *receipt.ListedIssueInput:
		opts.Schemes = m.dir.Schemes(c, v.IssuerName)
	}
	return opts
}

// Save submits the record. On success the machine returns to Step 1 with
// all seeds cleared; on failure the record is kept and the message is
// available in State().SaveError for retry.
func (m *Machine) Save(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.step != StepPreview || m.record == nil {
		m.mu.Unlock()
		return "", ErrWrongStep
	}
	if m.saving {
		m.mu.Unlock()
		return "", ErrSaveInFlight
	}
	rec := *m.record
	m.saving = true
	m.saveErr = ""
	m.touchLocked()
	m.mu.Unlock()

	id, err := m.gw.CreateReceipt(ctx, rec)

	m.mu.Lock()
	m.saving = false
	if err != nil {
		m.saveErr = err.Error()
		m.mu.Unlock()
		return "", err
	}
	m.resetLocked()
	m.lastSavedID = id
	version := m.nextVersionLocked()
	m.mu.Unlock()

	m.notify(version, nil)
	return id, nil
}

// Abandon resets the wizard without saving.
func (m *Machine) Abandon() error {
	m.mu.Lock()
	if m.saving {
		m.mu.Unlock()
		return ErrSaveInFlight
	}
	var version uint64
	if m.record != nil {
		version = m.nextVersionLocked()
	}
	m.resetLocked()
	m.mu.Unlock()

	if version != 0 {
		m.notify(version, nil)
	}
	return nil
}

// Record returns a copy of the assembled record, if any.
func (m *Machine) Record() *receipt.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.record == nil {
		return nil
	}
	r := *m.record
	return &r
}

// Saving reports whether a submit is in flight.
func (m *Machine) Saving() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saving
}

// LastActive is the time of the last user action.
func (m *Machine) LastActive() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastActive
}

func (m *Machine) resetLocked() {
	m.step = StepEmployee
	m.empCode = ""
	m.employee = receipt.EmployeeSeed{}
	m.empFound = false
	m.notice = ""
	m.query = ""
	m.results = nil
	m.investor = nil
	m.product = nil
	m.record = nil
	m.saveErr = ""
	m.touchLocked()

	if u := m.currentUser(); u != nil && u.EmpCode != "" {
		m.setEmployeeLocked(u.EmpCode)
	}
}

func (m *Machine) touchLocked() {
	m.lastActive = m.now()
}

func (m *Machine) nextVersionLocked() uint64 {
	m.version++
	return m.version
}

func (m *Machine) notify(version uint64, rec *receipt.Record) {
	if m.onRecord != nil {
		m.onRecord(version, rec)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
