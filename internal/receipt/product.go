package receipt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownField  = errors.New("unknown field")
	ErrInvalidOption = errors.New("value is not an allowed option")
)

// Option lists offered by the product forms.
var (
	SchemeOptions       = []string{"Growth", "IDCW", "ELSS"}
	TxnModes            = []string{"Lump Sum", "SIP", "STP", "SWP", "Switch Scheme"}
	TxnKinds            = []string{"Fresh", "Addl. Purchase"}
	ClientTypes         = []string{"Individual", "Sr. Citizen"}
	InterestPayables    = []string{"Non-Cum", "Cum (Comp)"}
	InterestFrequencies = []string{"M", "Q", "H", "Y"}
)

const (
	modeLumpSum       = "Lump Sum"
	txnFresh          = "Fresh"
	txnAddlPurchase   = "Addl. Purchase"
	interestNonCum    = "Non-Cum"
	instrumentOnline  = "Online Ref"
	instrumentCheque  = "Cheque"
	defaultClientType = "Individual"
	defaultFrequency  = "M"
)

// Product is the raw step-3 input of one category. The set of
// implementations is closed: MutualFundInput, FixedDepositInput,
// InsuranceInput and ListedIssueInput.
type Product interface {
	Category() Category
	Issuer() string
	// Set assigns a single form field by its JSON name.
	Set(field, value string) error
	normalize() ProductFields
}

// NewProduct returns an empty form for c with the defaults the forms start with.
func NewProduct(c Category) (Product, error) {
	switch c {
	case CategoryMF:
		return &MutualFundInput{TxnMode: modeLumpSum, TxnKind: txnFresh}, nil
	case CategoryFD:
		return &FixedDepositInput{
			ClientType:        defaultClientType,
			InterestPayable:   interestNonCum,
			InterestFrequency: defaultFrequency,
		}, nil
	case CategoryINS:
		return &InsuranceInput{}, nil
	case CategoryBOND, CategoryNCD, CategoryIPO:
		return &ListedIssueInput{Kind: c}, nil
	}
	return nil, fmt.Errorf("unknown product category %q", c)
}

// Normalize maps raw product input into the flat receipt fields.
func Normalize(p Product) ProductFields {
	f := p.normalize()
	f.ProductCategory = string(p.Category())
	return f
}

// ParseAmount converts form text to a decimal. Blank or malformed text is 0.
func ParseAmount(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// IsPeriodicMode reports whether mode carries a SIP/STP/SWP schedule.
func IsPeriodicMode(mode string) bool {
	switch mode {
	case "SIP", "STP", "SWP":
		return true
	}
	return false
}

func oneOf(field, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %s=%q", ErrInvalidOption, field, value)
}

func unknown(c Category, field string) error {
	return fmt.Errorf("%w: %s has no field %q", ErrUnknownField, c, field)
}

// MutualFundInput is the MF form.
type MutualFundInput struct {
	IssuerName       string `json:"issuer"`
	Scheme           string `json:"scheme"`
	SchemeOption     string `json:"schemeOption"`
	InvestmentAmount string `json:"investmentAmount"`
	FolioPolicyNo    string `json:"folioPolicyNo"`
	TxnMode          string `json:"txnMode"`
	TxnKind          string `json:"txnKind"`
	PeriodicType     string `json:"periodicType"`
	NoOfInstallments string `json:"noOfInstallments"`
	TxnRef           string `json:"txnRef"`
	ChequeNo         string `json:"chequeNo"`
	InstrumentDate   string `json:"instrumentDate"`
	BankName         string `json:"bankName"`
	BankBranch       string `json:"bankBranch"`
}

func (*MutualFundInput) Category() Category { return CategoryMF }
func (in *MutualFundInput) Issuer() string  { return in.IssuerName }

func (in *MutualFundInput) Set(field, value string) error {
	switch field {
	case "issuer":
		if value != in.IssuerName {
			in.Scheme = ""
		}
		in.IssuerName = value
	case "scheme":
		in.Scheme = value
	case "schemeOption":
		if value != "" {
			if err := oneOf(field, value, SchemeOptions); err != nil {
				return err
			}
		}
		in.SchemeOption = value
	case "investmentAmount":
		in.InvestmentAmount = value
	case "folioPolicyNo":
		in.FolioPolicyNo = value
	case "txnMode":
		if err := oneOf(field, value, TxnModes); err != nil {
			return err
		}
		in.TxnMode = value
	case "txnKind":
		if err := oneOf(field, value, TxnKinds); err != nil {
			return err
		}
		in.TxnKind = value
	case "periodicType":
		in.PeriodicType = value
	case "noOfInstallments":
		in.NoOfInstallments = value
	case "txnRef":
		// Online reference and cheque number are mutually exclusive.
		in.TxnRef = value
		if value != "" {
			in.ChequeNo = ""
		}
	case "chequeNo":
		in.ChequeNo = value
		if value != "" {
			in.TxnRef = ""
		}
	case "instrumentDate":
		in.InstrumentDate = value
	case "bankName":
		in.BankName = value
	case "bankBranch":
		in.BankBranch = value
	default:
		return unknown(CategoryMF, field)
	}
	return nil
}

func (in *MutualFundInput) normalize() ProductFields {
	f := ProductFields{
		IssuerCompany:    in.IssuerName,
		IssuerCategory:   CategoryMF.Label(),
		SchemeName:       in.Scheme,
		SchemeOption:     in.SchemeOption,
		InvestmentAmount: ParseAmount(in.InvestmentAmount),
		FolioPolicyNo:    in.FolioPolicyNo,
		Mode:             in.TxnMode,
		TxnType:          txnFresh,
		InstrumentDate:   in.InstrumentDate,
		BankName:         in.BankName,
		BankBranch:       in.BankBranch,
	}
	if in.TxnKind == txnAddlPurchase {
		f.TxnType = txnAddlPurchase
	}
	if IsPeriodicMode(in.TxnMode) {
		f.SipStpSwpPeriod = in.PeriodicType
		f.NoOfInstallments = in.NoOfInstallments
	}
	switch {
	case in.TxnRef != "":
		f.InstrumentType = instrumentOnline
		f.InstrumentNo = in.TxnRef
	case in.ChequeNo != "":
		f.InstrumentType = instrumentCheque
		f.InstrumentNo = in.ChequeNo
	}
	return f
}

// FixedDepositInput is the FD form.
type FixedDepositInput struct {
	IssuerName        string `json:"issuer"`
	Scheme            string `json:"scheme"`
	InvestmentAmount  string `json:"investmentAmount"`
	ApplicationNo     string `json:"applicationNo"`
	ClientType        string `json:"clientType"`
	DepositPeriodYM   string `json:"depositPeriodYM"`
	ROI               string `json:"roi"`
	InterestPayable   string `json:"interestPayable"`
	InterestFrequency string `json:"interestFrequency"`
	RenewalFdrNo      string `json:"renewalFdrNo"`
	MaturityDueDate   string `json:"maturityDueDate"`
	MaturityAmount    string `json:"maturityAmount"`
}

func (*FixedDepositInput) Category() Category { return CategoryFD }
func (in *FixedDepositInput) Issuer() string  { return in.IssuerName }

func (in *FixedDepositInput) Set(field, value string) error {
	switch field {
	case "issuer":
		if value != in.IssuerName {
			in.Scheme = ""
		}
		in.IssuerName = value
	case "scheme":
		in.Scheme = value
	case "investmentAmount":
		in.InvestmentAmount = value
	case "applicationNo":
		in.ApplicationNo = value
	case "clientType":
		if err := oneOf(field, value, ClientTypes); err != nil {
			return err
		}
		in.ClientType = value
	case "depositPeriodYM":
		in.DepositPeriodYM = value
	case "roi":
		in.ROI = value
	case "interestPayable":
		if err := oneOf(field, value, InterestPayables); err != nil {
			return err
		}
		in.InterestPayable = value
	case "interestFrequency":
		if err := oneOf(field, value, InterestFrequencies); err != nil {
			return err
		}
		in.InterestFrequency = value
	case "renewalFdrNo":
		in.RenewalFdrNo = value
	case "maturityDueDate":
		in.MaturityDueDate = value
	case "maturityAmount":
		in.MaturityAmount = value
	default:
		return unknown(CategoryFD, field)
	}
	return nil
}

func (in *FixedDepositInput) normalize() ProductFields {
	f := ProductFields{
		IssuerCompany:    in.IssuerName,
		IssuerCategory:   CategoryFD.Label(),
		SchemeName:       in.Scheme,
		InvestmentAmount: ParseAmount(in.InvestmentAmount),
		FolioPolicyNo:    in.ApplicationNo,
		ClientType:       in.ClientType,
		DepositPeriodYM:  in.DepositPeriodYM,
		ROI:              in.ROI,
		InterestPayable:  in.InterestPayable,
		FdrDematPolicy:   in.RenewalFdrNo,
		RenewalDueDate:   in.MaturityDueDate,
		MaturityAmount:   in.MaturityAmount,
		TxnType:          txnFresh,
		Mode:             modeLumpSum,
	}
	if in.InterestPayable == interestNonCum {
		f.InterestFrequency = in.InterestFrequency
	}
	return f
}

// InsuranceInput is the INS form. Issuer, category and product form a cascade.
type InsuranceInput struct {
	IssuerName      string `json:"issuer"`
	InsCategory     string `json:"category"`
	InsProduct      string `json:"product"`
	PremiumAmount   string `json:"premiumAmount"`
	PolicyNo        string `json:"policyNo"`
	DateOfIssue     string `json:"dateOfIssue"`
	RenewalDate     string `json:"renewalDate"`
	SumAssured      string `json:"sumAssured"`
	PremiumTerm     string `json:"premiumTerm"`
	RenewalPolicyNo string `json:"renewalPolicyNo"`
	RenewalAmount   string `json:"renewalAmount"`
	RenewalDueDate  string `json:"renewalDueDate"`
}

func (*InsuranceInput) Category() Category { return CategoryINS }
func (in *InsuranceInput) Issuer() string  { return in.IssuerName }

func (in *InsuranceInput) Set(field, value string) error {
	switch field {
	case "issuer":
		if value != in.IssuerName {
			in.InsCategory = ""
			in.InsProduct = ""
		}
		in.IssuerName = value
	case "category":
		if value != in.InsCategory {
			in.InsProduct = ""
		}
		in.InsCategory = value
	case "product":
		in.InsProduct = value
	case "premiumAmount":
		in.PremiumAmount = value
	case "policyNo":
		in.PolicyNo = value
	case "dateOfIssue":
		in.DateOfIssue = value
	case "renewalDate":
		in.RenewalDate = value
	case "sumAssured":
		in.SumAssured = value
	case "premiumTerm":
		in.PremiumTerm = value
	case "renewalPolicyNo":
		in.RenewalPolicyNo = value
	case "renewalAmount":
		in.RenewalAmount = value
	case "renewalDueDate":
		in.RenewalDueDate = value
	default:
		return unknown(CategoryINS, field)
	}
	return nil
}

func (in *InsuranceInput) normalize() ProductFields {
	return ProductFields{
		IssuerCompany:    in.IssuerName,
		IssuerCategory:   in.InsCategory,
		SchemeName:       in.InsProduct,
		InvestmentAmount: ParseAmount(in.PremiumAmount),
		FolioPolicyNo:    in.PolicyNo,
		From:             in.DateOfIssue,
		To:               in.RenewalDate,
		UnitsOrAmount:    in.SumAssured,
		DepositPeriodYM:  in.PremiumTerm,
		FdrDematPolicy:   in.RenewalPolicyNo,
		RenewalAmount:    in.RenewalAmount,
		RenewalDueDate:   in.RenewalDueDate,
		TxnType:          txnFresh,
		Mode:             modeLumpSum,
	}
}

// ListedIssueInput covers BOND, NCD and IPO, which only differ by Kind.
type ListedIssueInput struct {
	Kind             Category `json:"-"`
	IssuerName       string   `json:"issuer"`
	Scheme           string   `json:"scheme"`
	InvestmentAmount string   `json:"investmentAmount"`
	ApplicationNo    string   `json:"applicationNo"`
}

func (in *ListedIssueInput) Category() Category { return in.Kind }
func (in *ListedIssueInput) Issuer() string     { return in.IssuerName }

func (in *ListedIssueInput) Set(field, value string) error {
	switch field {
	case "issuer":
		if value != in.IssuerName {
			in.Scheme = ""
		}
		in.IssuerName = value
	case "scheme":
		in.Scheme = value
	case "investmentAmount":
		in.InvestmentAmount = value
	case "applicationNo":
		in.ApplicationNo = value
	default:
		return unknown(in.Kind, field)
	}
	return nil
}

func (in *ListedIssueInput) normalize() ProductFields {
	return ProductFields{
		IssuerCompany:    in.IssuerName,
		IssuerCategory:   in.Kind.Label(),
		SchemeName:       in.Scheme,
		InvestmentAmount: ParseAmount(in.InvestmentAmount),
		FolioPolicyNo:    in.ApplicationNo,
		TxnType:          txnFresh,
		Mode:             modeLumpSum,
	}
}

// Clone returns an independent copy of p.
func Clone(p Product) Product {
	switch v := p.(type) {
	case *MutualFundInput:
		cp := *v
		return &cp
	case *FixedDepositInput:
		cp := *v
		return &cp
	case *InsuranceInput:
		cp := *v
		return &cp
	case *ListedIssueInput:
		cp := *v
		return &cp
	}
	return nil
}
