package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusSuspended = "suspended"
	SubscriptionStatusCanceled  = "canceled"
)

// Subscription ties a client to a plan. Price and plan name are denormalized
// so later plan edits do not retroactively change what a client pays.
// Mutated by admin actions and by the credit-expiry housekeeping job.
type Subscription struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	PlanID          uint           `gorm:"index" json:"plan_id"`
	PlanName        string         `gorm:"type:varchar(100)" json:"plan_name"`
	PriceCents      int64          `gorm:"not null;default:0" json:"price_cents"`
	Status          string         `gorm:"type:varchar(20);default:'active';index" json:"status"`
	NextBillingAt   *time.Time     `gorm:"type:timestamp;default:null" json:"next_billing_at"`
	CreditsExpireAt *time.Time     `gorm:"type:timestamp;default:null;index" json:"credits_expire_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// IsExpired reports whether the subscription's credits are past their expiry
// timestamp at the given instant.
func (s *Subscription) IsExpired(now time.Time) bool {
	return s.CreditsExpireAt != nil && s.CreditsExpireAt.Before(now)
}
