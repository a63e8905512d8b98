package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	FinancialEntryIncome  = "income"
	FinancialEntryExpense = "expense"
)

// FinancialEntry is a single receivable or payable tracked on the dashboard.
type FinancialEntry struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	Kind        string         `gorm:"type:varchar(20);not null" json:"kind" validate:"oneof=income expense"`
	Description string         `gorm:"type:varchar(255)" json:"description" validate:"required,max=255"`
	AmountCents int64          `gorm:"not null" json:"amount_cents" validate:"gte=0"`
	DueAt       *time.Time     `gorm:"type:timestamp;default:null" json:"due_at"`
	Paid        bool           `gorm:"default:false" json:"paid"`
	GatewayRef  string         `gorm:"type:varchar(191);default:null;index" json:"gateway_ref"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (f *FinancialEntry) Validate() error {
	v := validator.New()

	return v.Struct(f)
}
