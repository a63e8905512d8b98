package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ConnectionStatusConnecting   = "connecting"
	ConnectionStatusConnected    = "connected"
	ConnectionStatusDisconnected = "disconnected"
)

// Instance mirrors the live status of a WhatsApp connection hosted on the
// Evolution API server. Status updates arrive via webhook and are keyed by
// instance name, which is unique across the platform.
type Instance struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UUID             string         `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	Name             string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	UserID           uint           `gorm:"not null;index" json:"user_id"`
	ConnectionStatus string         `gorm:"type:varchar(20);default:'disconnected'" json:"connection_status"`
	LastConnectedAt  *time.Time     `gorm:"type:timestamp;default:null" json:"last_connected_at"`
	QRCode           string         `gorm:"type:longtext" json:"qr_code,omitempty"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// NormalizeConnectionState maps the Evolution state vocabulary to our
// tri-state connection status. Anything unknown counts as disconnected.
func NormalizeConnectionState(state string) string {
	switch state {
	case "connecting":
		return ConnectionStatusConnecting
	case "open":
		return ConnectionStatusConnected
	case "close":
		return ConnectionStatusDisconnected
	default:
		return ConnectionStatusDisconnected
	}
}
