package preview

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/sangkips/ecs-receipts/internal/receipt"
)

// Placeholder stands in for an empty value.
const Placeholder = "—"

// DisplayDateLayout is how dates are printed on a receipt.
const DisplayDateLayout = "02/01/2006"

var indianEnglish = language.MustParse("en-IN")

// FormatAmount renders an amount with Indian digit grouping and two decimals.
func FormatAmount(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	p := message.NewPrinter(indianEnglish)
	return "INR " + p.Sprint(number.Decimal(f, number.Scale(2)))
}

// FormatAmountText formats a free-text amount. Text that is not a number is
// returned unchanged.
func FormatAmountText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return s
	}
	return FormatAmount(d)
}

// FormatDate turns YYYY-MM-DD into DD/MM/YYYY. Other text is kept.
func FormatDate(s string) string {
	t, err := time.Parse(receipt.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return t.Format(DisplayDateLayout)
}
