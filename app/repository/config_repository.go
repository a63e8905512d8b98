package repository

import (
	"errors"

	"github.com/ZapResell/ZapAdmin/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// configRepository implements the ConfigRepository interface. All config
// tables share the same singleton contract, so the typed methods delegate to
// two generic helpers.
type configRepository struct {
	db *gorm.DB
}

// NewConfigRepository creates a new integration config repository instance
func NewConfigRepository(db *gorm.DB) ConfigRepository {
	return &configRepository{db: db}
}

// getSingleton fetches the fixed-id row; (nil, nil) when none exists yet.
func getSingleton[T any](db *gorm.DB) (*T, error) {
	var cfg T
	err := db.First(&cfg, models.SingletonConfigID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// upsertSingleton writes the fixed-id row idempotently. Concurrent writers
// race on the same id and the last writer wins; there is no concurrency token.
func upsertSingleton[T any](db *gorm.DB, cfg *T, columns []string) (*T, error) {
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(append(columns, "updated_at")),
	}).Create(cfg).Error; err != nil {
		return nil, err
	}

	// Re-read so the caller gets the stored row including timestamps.
	var stored T
	if err := db.First(&stored, models.SingletonConfigID).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *configRepository) GetMercadoPago() (*models.MercadoPagoConfig, error) {
	return getSingleton[models.MercadoPagoConfig](r.db)
}

func (r *configRepository) UpsertMercadoPago(cfg *models.MercadoPagoConfig) (*models.MercadoPagoConfig, error) {
	cfg.ID = models.SingletonConfigID
	return upsertSingleton(r.db, cfg, []string{"access_token", "public_key", "webhook_secret", "enabled"})
}

func (r *configRepository) GetPagBank() (*models.PagBankConfig, error) {
	return getSingleton[models.PagBankConfig](r.db)
}

func (r *configRepository) UpsertPagBank(cfg *models.PagBankConfig) (*models.PagBankConfig, error) {
	cfg.ID = models.SingletonConfigID
	return upsertSingleton(r.db, cfg, []string{"token", "email", "sandbox", "enabled"})
}

func (r *configRepository) GetEvolution() (*models.EvolutionConfig, error) {
	return getSingleton[models.EvolutionConfig](r.db)
}

func (r *configRepository) UpsertEvolution(cfg *models.EvolutionConfig) (*models.EvolutionConfig, error) {
	cfg.ID = models.SingletonConfigID
	return upsertSingleton(r.db, cfg, []string{"base_url", "api_key", "enabled"})
}

func (r *configRepository) GetN8N() (*models.N8NConfig, error) {
	return getSingleton[models.N8NConfig](r.db)
}

func (r *configRepository) UpsertN8N(cfg *models.N8NConfig) (*models.N8NConfig, error) {
	cfg.ID = models.SingletonConfigID
	return upsertSingleton(r.db, cfg, []string{"webhook_url", "auth_header", "enabled"})
}
