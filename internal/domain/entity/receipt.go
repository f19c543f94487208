package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sangkips/ecs-receipts/internal/domain/enum"
	"github.com/sangkips/ecs-receipts/internal/receipt"
)

// Receipt is a saved acknowledgement. Every record field has its own column
// so lists and stats can filter on them; Payload keeps the record exactly as
// it was submitted.
type Receipt struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ReceiptNo   string    `gorm:"size:32;index;not null"`
	ReceiptDate string    `gorm:"size:10;index;not null"`

	Branch          string `gorm:"size:255"`
	EmployeeName    string `gorm:"size:255"`
	EmpCode         string `gorm:"size:50;index;not null"`
	InvestorID      string `gorm:"size:50;index"`
	InvestorName    string `gorm:"size:255"`
	InvestorAddress string `gorm:"type:text"`
	PinCode         string `gorm:"size:10"`
	PAN             string `gorm:"size:10"`
	Email           string `gorm:"size:255"`

	ProductCategory   string          `gorm:"size:10;index"`
	IssuerCompany     string          `gorm:"size:255;index"`
	IssuerCategory    string          `gorm:"size:255"`
	SchemeName        string          `gorm:"size:255"`
	SchemeOption      string          `gorm:"size:100"`
	InvestmentAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	FolioPolicyNo     string          `gorm:"size:100"`
	Mode              string          `gorm:"size:50"`
	SipStpSwpPeriod   string          `gorm:"size:50"`
	NoOfInstallments  string          `gorm:"size:20"`
	TxnType           string          `gorm:"size:50"`
	FromDate          string          `gorm:"size:10"`
	ToDate            string          `gorm:"size:10"`
	UnitsOrAmount     string          `gorm:"size:50"`
	FDType            string          `gorm:"column:fd_type;size:50"`
	ClientType        string          `gorm:"size:50"`
	DepositPeriodYM   string          `gorm:"column:deposit_period_ym;size:20"`
	ROI               string          `gorm:"column:roi;size:20"`
	InterestPayable   string          `gorm:"size:50"`
	InterestFrequency string          `gorm:"size:20"`
	InstrumentType    string          `gorm:"size:20"`
	InstrumentNo      string          `gorm:"size:100"`
	InstrumentDate    string          `gorm:"size:10"`
	BankName          string          `gorm:"size:255"`
	BankBranch        string          `gorm:"size:255"`
	FdrDematPolicy    string          `gorm:"size:100"`
	RenewalDueDate    string          `gorm:"size:10"`
	MaturityAmount    string          `gorm:"size:50"`
	RenewalAmount     string          `gorm:"size:50"`

	Status       enum.ReceiptStatus `gorm:"type:smallint;not null;default:0"`
	CreatedBy    uuid.UUID          `gorm:"type:uuid;index"`
	DeletedBy    *uuid.UUID         `gorm:"type:uuid"`
	DeleteReason string             `gorm:"type:text"`
	Payload      datatypes.JSON

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (r *Receipt) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (Receipt) TableName() string {
	return "receipts"
}

// NewReceiptFromRecord builds a pending receipt owned by createdBy.
func NewReceiptFromRecord(rec receipt.Record, createdBy uuid.UUID) (*Receipt, error) {
	r := &Receipt{CreatedBy: createdBy, Status: enum.ReceiptStatusPending}
	if err := r.Apply(rec); err != nil {
		return nil, err
	}
	return r, nil
}

// Apply copies rec into the columns and refreshes the payload.
func (r *Receipt) Apply(rec receipt.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	r.Payload = datatypes.JSON(payload)

	r.ReceiptNo = rec.ReceiptNo
	r.ReceiptDate = rec.Date
	r.Branch = rec.Branch
	r.EmployeeName = rec.EmployeeName
	r.EmpCode = rec.EmpCode
	r.InvestorID = rec.InvestorID
	r.InvestorName = rec.InvestorName
	r.InvestorAddress = rec.InvestorAddress
	r.PinCode = rec.PinCode
	r.PAN = rec.PAN
	r.Email = rec.Email

	p := rec.ProductFields
	r.ProductCategory = p.ProductCategory
	r.IssuerCompany = p.IssuerCompany
	r.IssuerCategory = p.IssuerCategory
	r.SchemeName = p.SchemeName
	r.SchemeOption = p.SchemeOption
	r.InvestmentAmount = p.InvestmentAmount
	r.FolioPolicyNo = p.FolioPolicyNo
	r.Mode = p.Mode
	r.SipStpSwpPeriod = p.SipStpSwpPeriod
	r.NoOfInstallments = p.NoOfInstallments
	r.TxnType = p.TxnType
	r.FromDate = p.From
	r.ToDate = p.To
	r.UnitsOrAmount = p.UnitsOrAmount
	r.FDType = p.FDType
	r.ClientType = p.ClientType
	r.DepositPeriodYM = p.DepositPeriodYM
	r.ROI = p.ROI
	r.InterestPayable = p.InterestPayable
	r.InterestFrequency = p.InterestFrequency
	r.InstrumentType = p.InstrumentType
	r.InstrumentNo = p.InstrumentNo
	r.InstrumentDate = p.InstrumentDate
	r.BankName = p.BankName
	r.BankBranch = p.BankBranch
	r.FdrDematPolicy = p.FdrDematPolicy
	r.RenewalDueDate = p.RenewalDueDate
	r.MaturityAmount = p.MaturityAmount
	r.RenewalAmount = p.RenewalAmount
	return nil
}

// Record rebuilds the flat receipt from the columns.
func (r *Receipt) Record() receipt.Record {
	return receipt.Record{
		ReceiptNo:       r.ReceiptNo,
		Date:            r.ReceiptDate,
		Branch:          r.Branch,
		EmployeeName:    r.EmployeeName,
		EmpCode:         r.EmpCode,
		InvestorID:      r.InvestorID,
		InvestorName:    r.InvestorName,
		InvestorAddress: r.InvestorAddress,
		PinCode:         r.PinCode,
		PAN:             r.PAN,
		Email:           r.Email,
		ProductFields: receipt.ProductFields{
			ProductCategory:   r.ProductCategory,
			IssuerCompany:     r.IssuerCompany,
			IssuerCategory:    r.IssuerCategory,
			SchemeName:        r.SchemeName,
			SchemeOption:      r.SchemeOption,
			InvestmentAmount:  r.InvestmentAmount,
			FolioPolicyNo:     r.FolioPolicyNo,
			Mode:              r.Mode,
			SipStpSwpPeriod:   r.SipStpSwpPeriod,
			NoOfInstallments:  r.NoOfInstallments,
			TxnType:           r.TxnType,
			From:              r.FromDate,
			To:                r.ToDate,
			UnitsOrAmount:     r.UnitsOrAmount,
			FDType:            r.FDType,
			ClientType:        r.ClientType,
			DepositPeriodYM:   r.DepositPeriodYM,
			ROI:               r.ROI,
			InterestPayable:   r.InterestPayable,
			InterestFrequency: r.InterestFrequency,
			InstrumentType:    r.InstrumentType,
			InstrumentNo:      r.InstrumentNo,
			InstrumentDate:    r.InstrumentDate,
			BankName:          r.BankName,
			BankBranch:        r.BankBranch,
			FdrDematPolicy:    r.FdrDematPolicy,
			RenewalDueDate:    r.RenewalDueDate,
			MaturityAmount:    r.MaturityAmount,
			RenewalAmount:     r.RenewalAmount,
		},
	}
}

// IsDeleted reports whether the receipt has been soft deleted.
func (r *Receipt) IsDeleted() bool {
	return r.DeletedAt.Valid
}
