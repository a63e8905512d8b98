package models

import "time"

// WebhookEvent is an append-only audit row for inbound Evolution API
// webhooks. Rows are never mutated after insert and are queried in
// reverse-chronological order with a fixed page limit.
type WebhookEvent struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index" json:"user_id"`
	InstanceID   *uint     `gorm:"index" json:"instance_id,omitempty"`
	InstanceName string    `gorm:"type:varchar(100);index" json:"instance_name"`
	EventType    string    `gorm:"type:varchar(100);index" json:"event_type"`
	PayloadJSON  string    `gorm:"type:longtext" json:"payload_json"`
	ResponseJSON string    `gorm:"type:longtext" json:"response_json"`
	StatusCode   int       `gorm:"default:0" json:"status_code"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
