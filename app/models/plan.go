package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	BillingIntervalMonthly = "monthly"
	BillingIntervalYearly  = "yearly"
)

// Plan is a resale plan offered to clients: a number of WhatsApp-instance
// credits for a recurring price.
type Plan struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"type:varchar(100);uniqueIndex" json:"name" validate:"required,min=2,max=100"`
	Description     string         `gorm:"type:text" json:"description" validate:"max=1000"`
	PriceCents      int64          `gorm:"not null;default:0" json:"price_cents" validate:"gte=0"`
	Currency        string         `gorm:"type:varchar(10);default:'BRL'" json:"currency"`
	Credits         int            `gorm:"not null;default:1" json:"credits" validate:"gte=1"`
	BillingInterval string         `gorm:"type:varchar(20);default:'monthly'" json:"billing_interval" validate:"oneof=monthly yearly"`
	IsActive        bool           `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Plan) Validate() error {
	v := validator.New()

	return v.Struct(p)
}
