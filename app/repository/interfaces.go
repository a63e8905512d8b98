package repository

import (
	"time"

	"github.com/ZapResell/ZapAdmin/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	AssignRole(userID uint, role string) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	Search(query string) ([]models.User, error)
}

// PlanRepository defines the interface for plan-related database operations
type PlanRepository interface {
	Create(plan *models.Plan) error
	GetByID(id uint) (*models.Plan, error)
	GetAll() ([]models.Plan, error)
	GetActive() ([]models.Plan, error)
	Update(plan *models.Plan) error
	Delete(id uint) error
}

// SubscriptionRepository defines the interface for subscription operations
type SubscriptionRepository interface {
	Create(sub *models.Subscription) error
	GetByID(id uint) (*models.Subscription, error)
	GetByUserID(userID uint) ([]models.Subscription, error)
	Update(sub *models.Subscription) error
	UpdateStatus(id uint, status string) error
	ListExpired(now time.Time) ([]models.Subscription, error)
}

// FinancialEntryRepository defines the interface for financial entries
type FinancialEntryRepository interface {
	Create(entry *models.FinancialEntry) error
	GetByID(id uint) (*models.FinancialEntry, error)
	Update(entry *models.FinancialEntry) error
	Delete(id uint) error
	List(filter OwnerFilter) ([]models.FinancialEntry, error)
}

// ConfigRepository provides the singleton config rows for every integration.
// Each getter returns (nil, nil) when no row has been stored yet; each upsert
// writes the fixed-id row idempotently (last writer wins).
type ConfigRepository interface {
	GetMercadoPago() (*models.MercadoPagoConfig, error)
	UpsertMercadoPago(cfg *models.MercadoPagoConfig) (*models.MercadoPagoConfig, error)
	GetPagBank() (*models.PagBankConfig, error)
	UpsertPagBank(cfg *models.PagBankConfig) (*models.PagBankConfig, error)
	GetEvolution() (*models.EvolutionConfig, error)
	UpsertEvolution(cfg *models.EvolutionConfig) (*models.EvolutionConfig, error)
	GetN8N() (*models.N8NConfig, error)
	UpsertN8N(cfg *models.N8NConfig) (*models.N8NConfig, error)
}

// InstanceRepository defines the interface for WhatsApp instance rows
type InstanceRepository interface {
	Create(instance *models.Instance) error
	GetByID(id uint) (*models.Instance, error)
	GetByName(name string) (*models.Instance, error)
	GetByUserID(userID uint) ([]models.Instance, error)
	List(filter OwnerFilter) ([]models.Instance, error)
	Update(instance *models.Instance) error
	Delete(id uint) error
	// UpdateStatusByName writes the live connection status keyed by instance
	// name. lastConnectedAt is only written when non-nil.
	UpdateStatusByName(name, status string, lastConnectedAt *time.Time) error
	SaveQRCode(name, qr string) error
}

// HistoryRepository is the single read/write path for the append-only history
// tables. Reads are owner-filtered unless the caller is admin, optionally
// filtered by event-type tags, newest first, capped at HistoryPageLimit.
type HistoryRepository interface {
	CreateWebhookEvent(event *models.WebhookEvent) error
	CreateAutomationLog(entry *models.AutomationLog) error
	ListWebhookEvents(filter HistoryFilter) ([]models.WebhookEvent, error)
	ListAutomationLogs(filter HistoryFilter) ([]models.AutomationLog, error)
}

// HistoryPageLimit caps every history query.
const HistoryPageLimit = 50

// OwnerFilter scopes a listing to its owner unless the caller is admin.
type OwnerFilter struct {
	UserID  uint
	IsAdmin bool
}

// HistoryFilter parameterizes the generic history read path.
type HistoryFilter struct {
	UserID     uint
	IsAdmin    bool
	EventTypes []string
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Plan         PlanRepository
	Subscription SubscriptionRepository
	Financial    FinancialEntryRepository
	Config       ConfigRepository
	Instance     InstanceRepository
	History      HistoryRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Plan:         NewPlanRepository(db),
		Subscription: NewSubscriptionRepository(db),
		Financial:    NewFinancialEntryRepository(db),
		Config:       NewConfigRepository(db),
		Instance:     NewInstanceRepository(db),
		History:      NewHistoryRepository(db),
	}
}
