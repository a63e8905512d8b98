package repository

import (
	"time"

	"github.com/ZapResell/ZapAdmin/app/models"
	"gorm.io/gorm"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

func (r *subscriptionRepository) GetByID(id uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.First(&sub, id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) GetByUserID(userID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) Update(sub *models.Subscription) error {
	return r.db.Save(sub).Error
}

// UpdateStatus flips the subscription status in a single UPDATE.
func (r *subscriptionRepository) UpdateStatus(id uint, status string) error {
	tx := r.db.Model(&models.Subscription{}).Where("id = ?", id).Update("status", status)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListExpired returns active subscriptions whose credits expired before now.
// A row already flipped away from active is excluded, which is what makes the
// housekeeping sweep safe to re-run.
func (r *subscriptionRepository) ListExpired(now time.Time) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.
		Where("status = ? AND credits_expire_at IS NOT NULL AND credits_expire_at < ?", models.SubscriptionStatusActive, now).
		Order("credits_expire_at ASC").
		Find(&subs).Error
	return subs, err
}
