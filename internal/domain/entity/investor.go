package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangkips/ecs-receipts/internal/receipt"
)

// Investor is an investor registered through the API. Investors from the
// reference dataset are not stored; both sets are merged in the directory.
type Investor struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	InvestorID string         `gorm:"size:50;uniqueIndex;not null" json:"investorId"`
	Name       string         `gorm:"size:255;not null" json:"investorName"`
	Address    string         `gorm:"type:text" json:"investorAddress"`
	PinCode    string         `gorm:"size:10" json:"pinCode"`
	PAN        string         `gorm:"size:10;index" json:"pan"`
	Email      string         `gorm:"size:255" json:"email"`
	CreatedBy  uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (i *Investor) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (Investor) TableName() string {
	return "investors"
}

// Info converts the row to the directory form.
func (i *Investor) Info() receipt.InvestorInfo {
	return receipt.InvestorInfo{
		InvestorID:      i.InvestorID,
		InvestorName:    i.Name,
		InvestorAddress: i.Address,
		PinCode:         i.PinCode,
		PAN:             i.PAN,
		Email:           i.Email,
	}
}
