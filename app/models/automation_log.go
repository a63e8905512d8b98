package models

import "time"

// AutomationLog is the append-only history of n8n automation callbacks and
// the requests we relayed to n8n. Same access pattern as WebhookEvent.
type AutomationLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index" json:"user_id"`
	EventType    string    `gorm:"type:varchar(100);index" json:"event_type"`
	PayloadJSON  string    `gorm:"type:longtext" json:"payload_json"`
	ResponseJSON string    `gorm:"type:longtext" json:"response_json"`
	StatusCode   int       `gorm:"default:0" json:"status_code"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
