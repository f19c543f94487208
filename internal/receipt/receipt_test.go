package receipt

import (
	"encoding/json"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)
}

func TestNormalize_MutualFundScenario(t *testing.T) {
	p, err := NewProduct(CategoryMF)
	require.NoError(t, err)
	require.NoError(t, p.Set("issuer", "ABC Mutual Fund"))
	require.NoError(t, p.Set("scheme", "Growth Fund"))
	require.NoError(t, p.Set("investmentAmount", "50000"))

	f := Normalize(p)
	assert.True(t, f.InvestmentAmount.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, "ABC Mutual Fund", f.IssuerCompany)
	assert.Equal(t, "Growth Fund", f.SchemeName)
	assert.Equal(t, "MF", f.ProductCategory)
	assert.Equal(t, "Lump Sum", f.Mode)
	assert.Equal(t, "Fresh", f.TxnType)
}

func TestNormalize_EmptyAmountIsZeroForEveryCategory(t *testing.T) {
	for _, c := range Categories {
		t.Run(string(c), func(t *testing.T) {
			p, err := NewProduct(c)
			require.NoError(t, err)
			f := Normalize(p)
			assert.True(t, f.InvestmentAmount.IsZero())
			assert.Equal(t, string(c), f.ProductCategory)
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "0"},
		{"   ", "0"},
		{"abc", "0"},
		{"12.5", "12.5"},
		{"1,00,000", "100000"},
		{" 750 ", "750"},
	}
	for _, tt := range tests {
		got := ParseAmount(tt.in)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "ParseAmount(%q) = %s", tt.in, got)
	}
}

func TestMutualFund_InstrumentExclusivity(t *testing.T) {
	in := &MutualFundInput{TxnMode: "Lump Sum", TxnKind: "Fresh"}

	require.NoError(t, in.Set("chequeNo", "000123"))
	f := Normalize(in)
	assert.Equal(t, "Cheque", f.InstrumentType)
	assert.Equal(t, "000123", f.InstrumentNo)

	require.NoError(t, in.Set("txnRef", "UTR998"))
	assert.Empty(t, in.ChequeNo, "setting a reference clears the cheque")
	f = Normalize(in)
	assert.Equal(t, "Online Ref", f.InstrumentType)
	assert.Equal(t, "UTR998", f.InstrumentNo)

	require.NoError(t, in.Set("chequeNo", "000124"))
	assert.Empty(t, in.TxnRef)

	require.NoError(t, in.Set("chequeNo", ""))
	f = Normalize(in)
	assert.Empty(t, f.InstrumentType)
	assert.Empty(t, f.InstrumentNo)
}

func TestMutualFund_PeriodicDetailOnlyForPeriodicModes(t *testing.T) {
	in := &MutualFundInput{TxnMode: "Lump Sum", TxnKind: "Fresh"}
	require.NoError(t, in.Set("periodicType", "12 months"))
	assert.Empty(t, Normalize(in).SipStpSwpPeriod)

	require.NoError(t, in.Set("txnMode", "SIP"))
	assert.Equal(t, "12 months", Normalize(in).SipStpSwpPeriod)

	require.NoError(t, in.Set("txnKind", "Addl. Purchase"))
	assert.Equal(t, "Addl. Purchase", Normalize(in).TxnType)

	assert.ErrorIs(t, in.Set("txnMode", "Daily"), ErrInvalidOption)
	assert.ErrorIs(t, in.Set("premiumAmount", "1"), ErrUnknownField)
}

func TestFixedDeposit_FrequencyOnlyWhenNonCumulative(t *testing.T) {
	p, err := NewProduct(CategoryFD)
	require.NoError(t, err)
	require.NoError(t, p.Set("interestFrequency", "Q"))
	require.NoError(t, p.Set("renewalFdrNo", "FDR-7"))
	require.NoError(t, p.Set("maturityDueDate", "2027-01-01"))

	f := Normalize(p)
	assert.Equal(t, "Q", f.InterestFrequency)
	assert.Equal(t, "FDR-7", f.FdrDematPolicy)
	assert.Equal(t, "2027-01-01", f.RenewalDueDate)
	assert.Equal(t, "Fresh", f.TxnType)
	assert.Equal(t, "Lump Sum", f.Mode)
	assert.Equal(t, "Individual", f.ClientType)

	require.NoError(t, p.Set("interestPayable", "Cum (Comp)"))
	assert.Empty(t, Normalize(p).InterestFrequency)
}

func TestInsurance_FieldMapping(t *testing.T) {
	in := &InsuranceInput{}
	require.NoError(t, in.Set("issuer", "Secure Life"))
	require.NoError(t, in.Set("category", "Term"))
	require.NoError(t, in.Set("product", "Term Shield"))
	require.NoError(t, in.Set("premiumAmount", "12000"))
	require.NoError(t, in.Set("policyNo", "POL-1"))
	require.NoError(t, in.Set("dateOfIssue", "2025-01-01"))
	require.NoError(t, in.Set("sumAssured", "1000000"))

	f := Normalize(in)
	assert.True(t, f.InvestmentAmount.Equal(decimal.NewFromInt(12000)))
	assert.Equal(t, "POL-1", f.FolioPolicyNo)
	assert.Equal(t, "Term", f.IssuerCategory)
	assert.Equal(t, "Term Shield", f.SchemeName)
	assert.Equal(t, "2025-01-01", f.From)
	assert.Equal(t, "1000000", f.UnitsOrAmount)

	require.NoError(t, in.Set("issuer", "Other Life"))
	assert.Empty(t, in.InsCategory)
	assert.Empty(t, in.InsProduct)
}

func TestListedIssues_DifferOnlyByCategory(t *testing.T) {
	var got []ProductFields
	for _, c := range []Category{CategoryBOND, CategoryNCD, CategoryIPO} {
		p, err := NewProduct(c)
		require.NoError(t, err)
		require.NoError(t, p.Set("issuer", "Acme Infra"))
		require.NoError(t, p.Set("scheme", "Series A"))
		require.NoError(t, p.Set("investmentAmount", "10000"))
		require.NoError(t, p.Set("applicationNo", "APP-1"))
		got = append(got, Normalize(p))
	}
	for _, f := range got {
		assert.Equal(t, "APP-1", f.FolioPolicyNo)
		assert.Equal(t, got[0].SchemeName, f.SchemeName)
		assert.True(t, got[0].InvestmentAmount.Equal(f.InvestmentAmount))
	}
	assert.Equal(t, "BOND", got[0].ProductCategory)
	assert.Equal(t, "IPO", got[2].ProductCategory)
}

func TestIssuerChangeClearsScheme(t *testing.T) {
	in := &ListedIssueInput{Kind: CategoryNCD}
	require.NoError(t, in.Set("issuer", "A"))
	require.NoError(t, in.Set("scheme", "S1"))
	require.NoError(t, in.Set("issuer", "A"))
	assert.Equal(t, "S1", in.Scheme, "re-selecting the same issuer keeps the scheme")
	require.NoError(t, in.Set("issuer", "B"))
	assert.Empty(t, in.Scheme)
}

func TestAssemble(t *testing.T) {
	a := NewAssembler().WithClock(fixedClock).WithSeed(7)
	emp := EmployeeSeed{EmpCode: "ECS497", EmployeeName: "Jane Doe", Branch: "Mumbai"}
	inv := InvestorSeed{
		InvestorID: "1001",
		Info: &InvestorInfo{
			InvestorID: "1001", InvestorName: "Ravi Kumar", InvestorAddress: "12 MG Road",
			PinCode: "400001", PAN: "ABCDE1234F", Email: "ravi@example.com",
		},
	}
	fields := ProductFields{ProductCategory: "MF", SchemeName: "Growth Fund", InvestmentAmount: decimal.NewFromInt(500)}

	first := a.Assemble(emp, inv, fields)
	second := a.Assemble(emp, inv, fields)

	assert.Regexp(t, regexp.MustCompile(`^ECS-20250314-[1-9]\d{3}$`), first.ReceiptNo)
	assert.Equal(t, "2025-03-14", first.Date)
	assert.Equal(t, "Jane Doe", first.EmployeeName)
	assert.Equal(t, "Ravi Kumar", first.InvestorName)
	assert.Equal(t, "Lump Sum", first.Mode, "template default kept when product leaves it empty")
	assert.Equal(t, "Fresh", first.TxnType)
	assert.Empty(t, first.ClientType)

	second.ReceiptNo = first.ReceiptNo
	assert.Equal(t, first, second)
}

func TestAssemble_WithoutInvestorInfoKeepsID(t *testing.T) {
	a := NewAssembler().WithClock(fixedClock)
	rec := a.Assemble(EmployeeSeed{EmpCode: "X1"}, InvestorSeed{InvestorID: "77"}, Template())
	assert.Equal(t, "77", rec.InvestorID)
	assert.Empty(t, rec.InvestorName)
	assert.Empty(t, rec.Email)
}

func TestRecordJSONShape(t *testing.T) {
	rec := NewAssembler().WithClock(fixedClock).Assemble(
		EmployeeSeed{EmpCode: "E1"},
		InvestorSeed{InvestorID: "1"},
		ProductFields{ProductCategory: "FD", InvestmentAmount: decimal.NewFromInt(25000)},
	)
	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.True(t, ParseAmount(fmt.Sprint(m["investmentAmount"])).Equal(decimal.NewFromInt(25000)))
	assert.Equal(t, "FD", m["product_category"])
	assert.Contains(t, m, "sip_stp_swp_period")
	assert.Contains(t, m, "fdr_demat_policy")
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" ncd ")
	require.NoError(t, err)
	assert.Equal(t, CategoryNCD, c)

	_, err = ParseCategory("ULIP")
	assert.Error(t, err)
}

func TestImportLeavesDecimalEncodingAlone(t *testing.T) {
	assert.False(t, decimal.MarshalJSONWithoutQuotes, "amount encoding is chosen by the binary, not by this package")
}

func TestAssemble_DateUsesClockLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	early := func() time.Time { return time.Date(2025, 3, 14, 2, 0, 0, 0, ist) }

	rec := NewAssembler().WithClock(early).Assemble(EmployeeSeed{}, InvestorSeed{InvestorID: "1"}, ProductFields{})
	assert.Equal(t, "2025-03-14", rec.Date)
	assert.Regexp(t, `^ECS-20250314-\d{4}$`, rec.ReceiptNo)
}
