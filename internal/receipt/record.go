package receipt

import (
	"github.com/shopspring/decimal"
)

// EmployeeSeed is captured at the Employee step.
type EmployeeSeed struct {
	EmpCode      string `json:"empCode"`
	EmployeeName string `json:"employeeName"`
	Branch       string `json:"branch"`
}

// InvestorInfo is the display data of the chosen investor.
type InvestorInfo struct {
	InvestorID      string `json:"investorId"`
	InvestorName    string `json:"investorName"`
	InvestorAddress string `json:"investorAddress"`
	PinCode         string `json:"pinCode"`
	PAN             string `json:"pan"`
	Email           string `json:"email"`
}

// InvestorSeed is captured at the Investor step. Info may be nil when only
// the id is known.
type InvestorSeed struct {
	InvestorID string        `json:"investorId"`
	Info       *InvestorInfo `json:"investorInfo"`
}

// ProductFields is the product-dependent half of a receipt.
type ProductFields struct {
	ProductCategory   string          `json:"product_category"`
	IssuerCompany     string          `json:"issuerCompany"`
	IssuerCategory    string          `json:"issuerCategory"`
	SchemeName        string          `json:"schemeName"`
	SchemeOption      string          `json:"schemeOption"`
	InvestmentAmount  decimal.Decimal `json:"investmentAmount"`
	FolioPolicyNo     string          `json:"folioPolicyNo"`
	Mode              string          `json:"mode"`
	SipStpSwpPeriod   string          `json:"sip_stp_swp_period"`
	NoOfInstallments  string          `json:"noOfInstallments"`
	TxnType           string          `json:"txnType"`
	From              string          `json:"from"`
	To                string          `json:"to"`
	UnitsOrAmount     string          `json:"unitsOrAmount"`
	FDType            string          `json:"fdType"`
	ClientType        string          `json:"clientType"`
	DepositPeriodYM   string          `json:"depositPeriodYM"`
	ROI               string          `json:"roi"`
	InterestPayable   string          `json:"interestPayable"`
	InterestFrequency string          `json:"interestFrequency"`
	InstrumentType    string          `json:"instrumentType"`
	InstrumentNo      string          `json:"instrumentNo"`
	InstrumentDate    string          `json:"instrumentDate"`
	BankName          string          `json:"bankName"`
	BankBranch        string          `json:"bankBranch"`
	FdrDematPolicy    string          `json:"fdr_demat_policy"`
	RenewalDueDate    string          `json:"renewalDueDate"`
	MaturityAmount    string          `json:"maturityAmount"`
	RenewalAmount     string          `json:"renewalAmount"`
}

// textFields returns pointers to every string field in declaration order.
func (p *ProductFields) textFields() []*string {
	return []*string{
		&p.ProductCategory, &p.IssuerCompany, &p.IssuerCategory, &p.SchemeName,
		&p.SchemeOption, &p.FolioPolicyNo, &p.Mode, &p.SipStpSwpPeriod,
		&p.NoOfInstallments, &p.TxnType, &p.From, &p.To, &p.UnitsOrAmount,
		&p.FDType, &p.ClientType, &p.DepositPeriodYM, &p.ROI, &p.InterestPayable,
		&p.InterestFrequency, &p.InstrumentType, &p.InstrumentNo, &p.InstrumentDate,
		&p.BankName, &p.BankBranch, &p.FdrDematPolicy, &p.RenewalDueDate,
		&p.MaturityAmount, &p.RenewalAmount,
	}
}

// Record is the flat receipt handed to the preview and persisted by the gateway.
type Record struct {
	ReceiptNo       string `json:"receiptNo"`
	Date            string `json:"date"`
	Branch          string `json:"branch"`
	EmployeeName    string `json:"employeeName"`
	EmpCode         string `json:"empCode"`
	InvestorID      string `json:"investorId"`
	InvestorName    string `json:"investorName"`
	InvestorAddress string `json:"investorAddress"`
	PinCode         string `json:"pinCode"`
	PAN             string `json:"pan"`
	Email           string `json:"email"`
	ProductFields
}

// Category returns the record's product category, or "" if it is not a known one.
func (r Record) Category() Category {
	c := Category(r.ProductCategory)
	if c.Valid() {
		return c
	}
	return ""
}
