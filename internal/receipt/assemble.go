package receipt

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// DateLayout is the receipt date format.
const DateLayout = "2006-01-02"

// Template returns the product defaults every receipt starts from.
func Template() ProductFields {
	return ProductFields{
		Mode:    modeLumpSum,
		TxnType: txnFresh,
	}
}

// Assembler builds receipt records. The clock and random source are
// replaceable so tests can pin receipt numbers and dates.
type Assembler struct {
	mu  sync.Mutex
	now func() time.Time
	rnd *rand.Rand
}

// NewAssembler returns an assembler on the wall clock.
func NewAssembler() *Assembler {
	return &Assembler{
		now: time.Now,
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithClock replaces the clock.
func (a *Assembler) WithClock(now func() time.Time) *Assembler {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.now = now
	return a
}

// WithSeed replaces the random source used for receipt number suffixes.
func (a *Assembler) WithSeed(seed int64) *Assembler {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rnd = rand.New(rand.NewSource(seed))
	return a
}

// NewReceiptNo returns ECS-<YYYYMMDD>-<1000..9999>. The suffix is random and
// not unique; the persisted id is the durable identifier.
func (a *Assembler) NewReceiptNo() string {
	no, _ := a.next()
	return no
}

func (a *Assembler) next() (string, time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.now()
	return fmt.Sprintf("ECS-%s-%d", now.Format("20060102"), 1000+a.rnd.Intn(9000)), now
}

// Assemble merges the seeds and normalized product fields into a fresh record.
// The date and the receipt number use the calendar day in the clock's own
// location, not UTC.
func (a *Assembler) Assemble(emp EmployeeSeed, inv InvestorSeed, product ProductFields) Record {
	no, now := a.next()
	rec := Record{
		ReceiptNo:    no,
		Date:         now.Format(DateLayout),
		Branch:       emp.Branch,
		EmployeeName: emp.EmployeeName,
		EmpCode:      emp.EmpCode,
		InvestorID:   inv.InvestorID,
	}
	if inv.Info != nil {
		rec.InvestorName = inv.Info.InvestorName
		rec.InvestorAddress = inv.Info.InvestorAddress
		rec.PinCode = inv.Info.PinCode
		rec.PAN = inv.Info.PAN
		rec.Email = inv.Info.Email
	}
	rec.ProductFields = Merge(Template(), product)
	return rec
}

// Merge overlays the non-empty fields of over onto base. The amount always
// comes from over since normalization has already resolved it.
func Merge(base, over ProductFields) ProductFields {
	out := base
	dst := out.textFields()
	src := over.textFields()
	for i := range dst {
		if *src[i] != "" {
			*dst[i] = *src[i]
		}
	}
	out.InvestmentAmount = over.InvestmentAmount
	return out
}
