package models

import (
	"strings"
	"time"
)

// EvolutionConfig points the backend at the Evolution API server that hosts
// the resold WhatsApp instances.
type EvolutionConfig struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BaseURL   string    `gorm:"type:varchar(255);not null" json:"base_url"`
	APIKey    string    `gorm:"type:varchar(255);not null" json:"api_key"`
	Enabled   bool      `gorm:"default:true" json:"enabled"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *EvolutionConfig) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(c.BaseURL) == "" {
		missing = append(missing, "base_url")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		missing = append(missing, "api_key")
	}
	return missing
}

// N8NConfig holds the n8n automation webhook target.
type N8NConfig struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	WebhookURL string    `gorm:"type:varchar(255);not null" json:"webhook_url"`
	AuthHeader string    `gorm:"type:varchar(255)" json:"auth_header"`
	Enabled    bool      `gorm:"default:true" json:"enabled"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *N8NConfig) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(c.WebhookURL) == "" {
		missing = append(missing, "webhook_url")
	}
	return missing
}
