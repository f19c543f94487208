package preview

import (
	"github.com/sangkips/ecs-receipts/internal/receipt"
)

const (
	Brand       = "ECS Financial"
	BrandLine   = "AMFI Registered Mutual Fund Distributor"
	Acknowledge = "Thank you for choosing us. We acknowledge the receipt of your payment and truly appreciate your trust. Be assured of our best services at all times."
)

// Field is one labelled value. Key is the record's JSON field name.
type Field struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Display returns the value or the placeholder.
func (f Field) Display() string {
	if f.Value == "" {
		return Placeholder
	}
	return f.Value
}

type Section struct {
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// Document is a receipt laid out for display, independent of output format.
type Document struct {
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle"`
	ReceiptNo string    `json:"receipt_no"`
	Header    []Field   `json:"header"`
	Sections  []Section `json:"sections"`
	Footer    string    `json:"footer"`
}

// Fields returns every field of the document in reading order.
func (d Document) Fields() []Field {
	out := append([]Field(nil), d.Header...)
	for _, s := range d.Sections {
		out = append(out, s.Fields...)
	}
	return out
}

// Layout arranges every record field exactly once.
func Layout(r receipt.Record) Document {
	return Document{
		Title:     Brand,
		Subtitle:  BrandLine,
		ReceiptNo: r.ReceiptNo,
		Header: []Field{
			{"receiptNo", "Receipt No", r.ReceiptNo},
			{"date", "Date", FormatDate(r.Date)},
			{"branch", "Branch", r.Branch},
		},
		Sections: []Section{
			{"Employee", []Field{
				{"employeeName", "Name", r.EmployeeName},
				{"empCode", "Code", r.EmpCode},
			}},
			{"Investor", []Field{
				{"investorId", "Investor ID", r.InvestorID},
				{"investorName", "Name", r.InvestorName},
				{"investorAddress", "Address", r.InvestorAddress},
				{"pinCode", "PIN", r.PinCode},
				{"pan", "PAN", r.PAN},
				{"email", "Email", r.Email},
			}},
			{"Investment Details", []Field{
				{"product_category", "Product Category", r.ProductCategory},
				{"txnType", "Transaction", r.TxnType},
				{"mode", "Mode", r.Mode},
				{"sip_stp_swp_period", "Period", r.SipStpSwpPeriod},
				{"noOfInstallments", "Installments", r.NoOfInstallments},
				{"from", "From", r.From},
				{"to", "To", r.To},
				{"unitsOrAmount", "Units / Amount", r.UnitsOrAmount},
				{"investmentAmount", "Investment Amount", FormatAmount(r.InvestmentAmount)},
			}},
			{"Scheme / Issuer", []Field{
				{"issuerCompany", "Issuer", r.IssuerCompany},
				{"issuerCategory", "Issuer Category", r.IssuerCategory},
				{"schemeName", "Scheme", r.SchemeName},
				{"schemeOption", "Option", r.SchemeOption},
				{"folioPolicyNo", "Appln / Folio / Policy No", r.FolioPolicyNo},
			}},
			{"FD / Bonds / NCD", []Field{
				{"fdType", "Type", r.FDType},
				{"clientType", "Client Type", r.ClientType},
				{"depositPeriodYM", "Deposit Period (Y/M)", r.DepositPeriodYM},
				{"roi", "ROI (%)", r.ROI},
				{"interestPayable", "Interest Payable", r.InterestPayable},
				{"interestFrequency", "Frequency", r.InterestFrequency},
			}},
			{"Payment Instrument", []Field{
				{"instrumentType", "Type", r.InstrumentType},
				{"instrumentNo", "Number", r.InstrumentNo},
				{"instrumentDate", "Date", FormatDate(r.InstrumentDate)},
				{"bankName", "Bank", r.BankName},
				{"bankBranch", "Branch", r.BankBranch},
			}},
			{"Account / Maturity", []Field{
				{"fdr_demat_policy", "FDR / Demat / Policy", r.FdrDematPolicy},
				{"renewalDueDate", "Renewal / Maturity Due", FormatDate(r.RenewalDueDate)},
				{"maturityAmount", "Maturity Amount", FormatAmountText(r.MaturityAmount)},
				{"renewalAmount", "Renewal Amount", FormatAmountText(r.RenewalAmount)},
			}},
		},
		Footer: Acknowledge,
	}
}
