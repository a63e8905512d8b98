package repository

import (
	"github.com/ZapResell/ZapAdmin/app/models"
	"gorm.io/gorm"
)

// historyRepository implements the HistoryRepository interface. Both history
// tables are read through the same generic query so the owner/tag filter
// logic exists exactly once.
type historyRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new history repository instance
func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) CreateWebhookEvent(event *models.WebhookEvent) error {
	return r.db.Create(event).Error
}

func (r *historyRepository) CreateAutomationLog(entry *models.AutomationLog) error {
	return r.db.Create(entry).Error
}

func (r *historyRepository) ListWebhookEvents(filter HistoryFilter) ([]models.WebhookEvent, error) {
	return queryHistory[models.WebhookEvent](r.db, filter)
}

func (r *historyRepository) ListAutomationLogs(filter HistoryFilter) ([]models.AutomationLog, error) {
	return queryHistory[models.AutomationLog](r.db, filter)
}

// queryHistory builds the shared history read: owner filter unless admin,
// optional event-type tag membership, newest first, capped page.
func queryHistory[T any](db *gorm.DB, filter HistoryFilter) ([]T, error) {
	var rows []T
	query := db.Order("created_at DESC").Limit(HistoryPageLimit)
	if !filter.IsAdmin {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if len(filter.EventTypes) > 0 {
		query = query.Where("event_type IN ?", filter.EventTypes)
	}
	err := query.Find(&rows).Error
	return rows, err
}
