package models

import (
	"strings"
	"time"
)

// SingletonConfigID is the fixed primary key shared by all integration config
// tables. Each table intentionally holds at most one live row; writes are
// idempotent upserts keyed on this id and the last writer wins.
const SingletonConfigID = 1

// MercadoPagoConfig holds the Mercado Pago gateway credentials.
type MercadoPagoConfig struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AccessToken   string    `gorm:"type:varchar(255);not null" json:"access_token"`
	PublicKey     string    `gorm:"type:varchar(255);not null" json:"public_key"`
	WebhookSecret string    `gorm:"type:varchar(255)" json:"webhook_secret"`
	Enabled       bool      `gorm:"default:true" json:"enabled"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// MissingFields lists the required fields that are empty.
func (c *MercadoPagoConfig) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(c.AccessToken) == "" {
		missing = append(missing, "access_token")
	}
	if strings.TrimSpace(c.PublicKey) == "" {
		missing = append(missing, "public_key")
	}
	return missing
}

// PagBankConfig holds the PagBank (PagSeguro) gateway credentials.
type PagBankConfig struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"type:varchar(255);not null" json:"token"`
	Email     string    `gorm:"type:varchar(200);not null" json:"email"`
	Sandbox   bool      `gorm:"default:false" json:"sandbox"`
	Enabled   bool      `gorm:"default:true" json:"enabled"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *PagBankConfig) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(c.Token) == "" {
		missing = append(missing, "token")
	}
	if strings.TrimSpace(c.Email) == "" {
		missing = append(missing, "email")
	}
	return missing
}
