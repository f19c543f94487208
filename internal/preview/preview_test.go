package preview

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/ecs-receipts/internal/receipt"
)

func sampleRecord() receipt.Record {
	return receipt.Record{
		ReceiptNo:    "ECS-20250314-4821",
		Date:         "2025-03-14",
		Branch:       "Mumbai",
		EmployeeName: "Jane Doe",
		EmpCode:      "ECS497",
		InvestorID:   "1001",
		InvestorName: "Ravi Kumar",
		PAN:          "ABCDE1234F",
		ProductFields: receipt.ProductFields{
			ProductCategory:  "MF",
			IssuerCompany:    "ABC Mutual Fund",
			IssuerCategory:   "Mutual Fund",
			SchemeName:       "Growth Fund",
			InvestmentAmount: decimal.NewFromInt(50000),
			Mode:             "Lump Sum",
			TxnType:          "Fresh",
		},
	}
}

func TestLayout_EveryFieldExactlyOnce(t *testing.T) {
	raw, err := json.Marshal(sampleRecord())
	require.NoError(t, err)
	var keys map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &keys))

	seen := map[string]int{}
	for _, f := range Layout(sampleRecord()).Fields() {
		seen[f.Key]++
	}
	for k := range keys {
		assert.Equal(t, 1, seen[k], "field %s", k)
	}
	assert.Len(t, seen, len(keys))
}

func TestLayout_EmptyValuesUsePlaceholder(t *testing.T) {
	doc := Layout(sampleRecord())
	for _, f := range doc.Fields() {
		if f.Value == "" {
			assert.Equal(t, Placeholder, f.Display(), f.Key)
		} else {
			assert.Equal(t, f.Value, f.Display(), f.Key)
		}
	}

	var email Field
	for _, f := range doc.Fields() {
		if f.Key == "email" {
			email = f
		}
	}
	assert.Equal(t, Placeholder, email.Display())
}

func TestFormatting(t *testing.T) {
	assert.Contains(t, FormatAmount(decimal.NewFromInt(50000)), "50,000.00")
	assert.True(t, strings.HasPrefix(FormatAmount(decimal.Zero), "INR 0.00"))
	assert.Equal(t, "", FormatAmountText("  "))
	assert.Equal(t, "on maturity", FormatAmountText("on maturity"))
	assert.Contains(t, FormatAmountText("1250.5"), "1,250.50")

	assert.Equal(t, "14/03/2025", FormatDate("2025-03-14"))
	assert.Equal(t, "next year", FormatDate("next year"))
}

func TestText(t *testing.T) {
	out := Text(Layout(sampleRecord()))
	assert.Contains(t, out, "ECS-20250314-4821")
	assert.Contains(t, out, "Growth Fund")
	assert.Contains(t, out, "Investment Details")
	assert.Contains(t, out, Placeholder)
	assert.Equal(t, 1, strings.Count(out, "ABCDE1234F"))
	assert.Contains(t, out, "Thank you for choosing us.")
}

func TestESCPOS(t *testing.T) {
	ticket := ESCPOS(Layout(sampleRecord()), 48)
	assert.True(t, bytes.HasPrefix(ticket, []byte{0x1B, '@'}))
	assert.True(t, bytes.HasSuffix(ticket, []byte{0x1D, 'V', 0x01}))
	assert.Contains(t, string(ticket), "ECS-20250314-4821")
	assert.NotContains(t, string(ticket), Placeholder)
}

func TestPDFRenderer(t *testing.T) {
	r := NewPDFRenderer("")
	require.NoError(t, r.Ready())

	data, err := r.PDF(Layout(sampleRecord()))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestPDFRenderer_MissingLogo(t *testing.T) {
	r := NewPDFRenderer("does-not-exist.png")
	assert.Error(t, r.Ready())
	_, err := r.PDF(Layout(sampleRecord()))
	assert.Error(t, err)
}
