package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/ecs-receipts/internal/directory"
	"github.com/sangkips/ecs-receipts/internal/preview"
	"github.com/sangkips/ecs-receipts/internal/receipt"
	"github.com/sangkips/ecs-receipts/internal/session"
)

type fakeGateway struct {
	mu      sync.Mutex
	err     error
	block   chan struct{}
	entered chan struct{}
	saved   []receipt.Record
}

func (g *fakeGateway) CreateReceipt(_ context.Context, rec receipt.Record) (string, error) {
	if g.block != nil {
		close(g.entered)
		<-g.block
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	g.saved = append(g.saved, rec)
	return "rcpt-1", nil
}

func testDirectory() *directory.Directory {
	return directory.New(
		[]directory.Employee{{Code: "ECS497", Name: "Jane Doe", Branch: "Mumbai"}},
		[]receipt.InvestorInfo{
			{InvestorID: "1001", InvestorName: "Ravi Kumar", Email: "ravi@example.com"},
			{InvestorID: "1002", InvestorName: "Anita Sharma"},
		},
		[]directory.Issuer{
			{Company: "ABC Mutual Fund", Schemes: []string{"Growth Fund", "Liquid Fund"}},
			{Company: "Horizon Mutual Fund", Schemes: []string{"Tax Saver Fund"}},
		},
		[]directory.Issuer{{Company: "REC Limited", Schemes: []string{"Tax Free Bond"}}},
		[]directory.InsuranceIssuer{{Company: "Secure Life", Subsections: []directory.InsuranceSection{
			{Name: "Term", Products: []string{"Term Shield"}},
			{Name: "Endowment", Products: []string{"Smart Savings"}},
		}}},
	)
}

func newMachine(gw Gateway, opts ...Option) *Machine {
	return New(testDirectory(), session.NewLocal(nil), gw, opts...)
}

// toPreview drives a machine to Step 4 with an MF selection.
func toPreview(t *testing.T, m *Machine) {
	t.Helper()
	_, err := m.SetEmployeeCode("ECS497")
	require.NoError(t, err)
	_, err = m.Continue()
	require.NoError(t, err)
	_, err = m.SelectInvestor("1001")
	require.NoError(t, err)
	_, err = m.Continue()
	require.NoError(t, err)
	require.NoError(t, m.SelectCategory(receipt.CategoryMF))
	require.NoError(t, m.SetIssuer("ABC Mutual Fund"))
	require.NoError(t, m.SetScheme("Growth Fund"))
	require.NoError(t, m.SetField("investmentAmount", "50000"))
	st, err := m.Continue()
	require.NoError(t, err)
	require.Equal(t, StepPreview, st.Step)
}

func TestEmployeeStep_KnownCode(t *testing.T) {
	m := newMachine(&fakeGateway{})

	match, err := m.SetEmployeeCode(" ecs497 ")
	require.NoError(t, err)
	assert.True(t, match.Found)
	assert.Equal(t, "Jane Doe", match.Name)
	assert.Equal(t, "Mumbai", match.Branch)
	assert.Empty(t, m.State().Notice)
}

func TestEmployeeStep_UnknownCodeDoesNotBlock(t *testing.T) {
	m := newMachine(&fakeGateway{})

	match, err := m.SetEmployeeCode("ZZZ999")
	require.NoError(t, err)
	assert.False(t, match.Found)
	assert.Equal(t, NoticeNoEmployee, m.State().Notice)

	st, err := m.Continue()
	require.NoError(t, err)
	assert.Equal(t, StepInvestor, st.Step)
	assert.Equal(t, "ZZZ999", st.Employee.EmpCode)
	assert.Empty(t, st.Employee.EmployeeName)
	assert.Empty(t, st.Employee.Branch)
}

func TestEmployeeStep_RequiresCode(t *testing.T) {
	m := newMachine(&fakeGateway{})
	_, _ = m.SetEmployeeCode("   ")

	st, err := m.Continue()
	assert.ErrorIs(t, err, ErrEmployeeRequired)
	assert.Equal(t, StepEmployee, st.Step)
	assert.False(t, st.CanContinue)

	_, err = m.Back()
	assert.ErrorIs(t, err, ErrWrongStep)
}

func TestEmployeeStep_PrefilledFromSession(t *testing.T) {
	sess := session.NewLocal(nil).Restore(&session.User{ID: "u1", EmpCode: "HQ001", Name: "Asha Rao", Branch: "Head Office"}, "tok")
	m := New(testDirectory(), sess, &fakeGateway{})

	st := m.State()
	assert.Equal(t, "HQ001", st.EmpCode)
	assert.True(t, st.EmployeeFound)
	assert.Equal(t, "Asha Rao", st.Employee.EmployeeName)
	assert.True(t, st.CanContinue)
}

func TestInvestorStep(t *testing.T) {
	m := newMachine(&fakeGateway{})
	_, _ = m.SetEmployeeCode("ECS497")
	st, err := m.Continue()
	require.NoError(t, err)
	assert.Len(t, st.Results, 2, "empty query lists the directory")

	_, err = m.Continue()
	assert.ErrorIs(t, err, ErrInvestorRequired)

	_, err = m.SelectInvestor("4040")
	assert.ErrorIs(t, err, directory.ErrInvestorNotFound)
	assert.Equal(t, NoticeNoInvestor, m.State().Notice)

	seed, err := m.SelectInvestor("1001")
	require.NoError(t, err)
	assert.Equal(t, "Ravi Kumar", seed.Info.InvestorName)
	assert.True(t, m.State().CanContinue)

	results, err := m.SearchInvestors("anita")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Nil(t, m.State().Investor, "searching clears the selection")
}

func TestProductStep_IssuerChangeResetsDependents(t *testing.T) {
	m := newMachine(&fakeGateway{})
	_, _ = m.SetEmployeeCode("ECS497")
	_, _ = m.Continue()
	_, _ = m.SelectInvestor("1001")
	_, _ = m.Continue()

	assert.ErrorIs(t, m.SetIssuer("ABC Mutual Fund"), ErrNoCategory)
	require.NoError(t, m.SelectCategory(receipt.CategoryMF))
	assert.ErrorIs(t, m.SetIssuer("REC Limited"), directory.ErrUnknownIssuer)

	require.NoError(t, m.SetIssuer("ABC Mutual Fund"))
	require.NoError(t, m.SetScheme("Growth Fund"))
	assert.ErrorIs(t, m.SetScheme("Tax Saver Fund"), directory.ErrUnknownScheme)

	require.NoError(t, m.SetIssuer("Horizon Mutual Fund"))
	opts := m.Options()
	assert.Equal(t, []string{"Tax Saver Fund"}, opts.Schemes)
	mf := m.State().Product.(*receipt.MutualFundInput)
	assert.Empty(t, mf.Scheme)
}

func TestProductStep_InsuranceCascade(t *testing.T) {
	m := newMachine(&fakeGateway{})
	_, _ = m.SetEmployeeCode("ECS497")
	_, _ = m.Continue()
	_, _ = m.SelectInvestor("1001")
	_, _ = m.Continue()

	require.NoError(t, m.SelectCategory(receipt.CategoryINS))
	require.NoError(t, m.SetField("issuer", "Secure Life"))
	require.NoError(t, m.SetField("category", "Term"))
	assert.Equal(t, []string{"Term Shield"}, m.Options().InsuranceProducts)
	require.NoError(t, m.SetField("product", "Term Shield"))
	assert.Error(t, m.SetInsuranceProduct("Smart Savings"))

	require.NoError(t, m.SetInsuranceCategory("Endowment"))
	ins := m.State().Product.(*receipt.InsuranceInput)
	assert.Empty(t, ins.InsProduct)
	assert.Equal(t, []string{"Smart Savings"}, m.Options().InsuranceProducts)

	assert.Error(t, m.SetScheme("Term Shield"))
}

func TestPreviewStep_MutualFundRecord(t *testing.T) {
	m := newMachine(&fakeGateway{})
	toPreview(t, m)

	rec := m.Record()
	require.NotNil(t, rec)
	assert.True(t, rec.InvestmentAmount.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, "ABC Mutual Fund", rec.IssuerCompany)
	assert.Equal(t, "Growth Fund", rec.SchemeName)
	assert.Equal(t, "Jane Doe", rec.EmployeeName)
	assert.Equal(t, "Mumbai", rec.Branch)
	assert.Equal(t, "Ravi Kumar", rec.InvestorName)

	_, err := m.Continue()
	assert.ErrorIs(t, err, ErrWrongStep)
}

func TestPreviewStep_BackDiscardsRecord(t *testing.T) {
	var notified []*receipt.Record
	m := newMachine(&fakeGateway{}, OnRecordChange(func(_ uint64, r *receipt.Record) { notified = append(notified, r) }))
	toPreview(t, m)

	st, err := m.Back()
	require.NoError(t, err)
	assert.Equal(t, StepProduct, st.Step)
	assert.Nil(t, st.Record)
	require.Len(t, notified, 2)
	assert.NotNil(t, notified[0])
	assert.Nil(t, notified[1])

	mf := st.Product.(*receipt.MutualFundInput)
	assert.Equal(t, "Growth Fund", mf.Scheme, "product form survives going back")
}

func TestContinueWithoutCategoryStillAssembles(t *testing.T) {
	m := newMachine(&fakeGateway{})
	_, _ = m.SetEmployeeCode("ECS497")
	_, _ = m.Continue()
	_, _ = m.SelectInvestor("1002")
	_, _ = m.Continue()

	st, err := m.Continue()
	require.NoError(t, err)
	require.NotNil(t, st.Record)
	assert.True(t, st.Record.InvestmentAmount.IsZero())
	assert.Equal(t, "Lump Sum", st.Record.Mode)
}

func TestSave_Success(t *testing.T) {
	gw := &fakeGateway{}
	m := newMachine(gw)
	toPreview(t, m)

	id, err := m.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rcpt-1", id)

	st := m.State()
	assert.Equal(t, StepEmployee, st.Step)
	assert.Nil(t, st.Record)
	assert.Nil(t, st.Investor)
	assert.Nil(t, st.Product)
	assert.Empty(t, st.EmpCode)
	assert.Equal(t, "rcpt-1", st.LastSavedID)
	require.Len(t, gw.saved, 1)
	assert.Equal(t, "ECS497", gw.saved[0].EmpCode)
}

func TestSave_FailureKeepsRecord(t *testing.T) {
	m := newMachine(&fakeGateway{err: errors.New("timeout")})
	toPreview(t, m)
	before := m.Record()

	_, err := m.Save(context.Background())
	assert.EqualError(t, err, "timeout")

	st := m.State()
	assert.Equal(t, StepPreview, st.Step)
	assert.Equal(t, "timeout", st.SaveError)
	assert.Equal(t, before, st.Record)
	assert.False(t, st.Saving)
}

func TestSave_SingleInFlight(t *testing.T) {
	gw := &fakeGateway{block: make(chan struct{}), entered: make(chan struct{})}
	m := newMachine(gw)
	toPreview(t, m)

	done := make(chan error, 1)
	go func() {
		_, err := m.Save(context.Background())
		done <- err
	}()
	<-gw.entered

	_, err := m.Save(context.Background())
	assert.ErrorIs(t, err, ErrSaveInFlight)
	_, err = m.Back()
	assert.ErrorIs(t, err, ErrSaveInFlight)
	assert.ErrorIs(t, m.Abandon(), ErrSaveInFlight)
	assert.True(t, m.State().Saving)

	close(gw.block)
	require.NoError(t, <-done)
	assert.Equal(t, StepEmployee, m.State().Step)
}

func TestAbandon(t *testing.T) {
	var last *receipt.Record
	called := false
	m := newMachine(&fakeGateway{}, OnRecordChange(func(_ uint64, r *receipt.Record) { last, called = r, true }))
	toPreview(t, m)

	require.NoError(t, m.Abandon())
	assert.True(t, called)
	assert.Nil(t, last)
	assert.Equal(t, StepEmployee, m.State().Step)
}

func TestWrongStepActions(t *testing.T) {
	m := newMachine(&fakeGateway{})
	_, err := m.SearchInvestors("x")
	assert.ErrorIs(t, err, ErrWrongStep)
	assert.ErrorIs(t, m.SelectCategory(receipt.CategoryFD), ErrWrongStep)
	_, err = m.Save(context.Background())
	assert.ErrorIs(t, err, ErrWrongStep)
}

func TestRegistry(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	built := 0
	reg := NewRegistry(30*time.Minute, func(sess session.Session) *Entry {
		built++
		return &Entry{Machine: New(testDirectory(), sess, &fakeGateway{}, WithClock(clock))}
	})
	reg.now = clock

	alice := &session.User{ID: "a", EmpCode: "ECS497"}
	e1 := reg.Get(alice, "t1")
	e2 := reg.Get(alice, "t1")
	assert.Same(t, e1, e2)
	assert.Equal(t, 1, built)
	assert.Equal(t, "Jane Doe", e1.Machine.State().Employee.EmployeeName)

	reg.Get(&session.User{ID: "b"}, "t2")
	assert.Equal(t, 2, reg.Len())

	now = now.Add(31 * time.Minute)
	assert.Equal(t, 2, reg.Evict())
	assert.Equal(t, 0, reg.Len())

	reg.Get(alice, "t1")
	reg.Drop("a")
	assert.Equal(t, 0, reg.Len())
}

func TestRecordChange_VersionsIncrease(t *testing.T) {
	var versions []uint64
	m := newMachine(&fakeGateway{}, OnRecordChange(func(v uint64, _ *receipt.Record) { versions = append(versions, v) }))
	toPreview(t, m)
	_, err := m.Back()
	require.NoError(t, err)
	_, err = m.Continue()
	require.NoError(t, err)
	require.NoError(t, m.Abandon())

	assert.Equal(t, []uint64{1, 2, 3, 4}, versions)
}

func TestRecordChange_LateRecordDoesNotReachPreview(t *testing.T) {
	regen := preview.NewRegenerator(func(_ context.Context, rec receipt.Record) ([]byte, error) {
		return []byte(rec.ReceiptNo), nil
	}, preview.NewMemoryStore(), preview.WithDelay(0))
	defer regen.Close()

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	m := newMachine(&fakeGateway{}, OnRecordChange(func(v uint64, rec *receipt.Record) {
		if rec != nil {
			once.Do(func() {
				close(entered)
				<-release
			})
		}
		regen.Apply(v, rec)
	}))

	_, _ = m.SetEmployeeCode("ECS497")
	_, _ = m.Continue()
	_, _ = m.SelectInvestor("1001")
	_, _ = m.Continue()
	require.NoError(t, m.SelectCategory(receipt.CategoryMF))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = m.Continue()
	}()
	<-entered

	st, err := m.Back()
	require.NoError(t, err)
	assert.Equal(t, StepProduct, st.Step)

	close(release)
	<-done

	assert.Nil(t, m.Record())
	assert.Equal(t, preview.StatusIdle, regen.Snapshot().Status)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = regen.Await(ctx)
	assert.ErrorIs(t, err, preview.ErrNoRecord)
}
