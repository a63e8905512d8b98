package repository

import (
	"github.com/ZapResell/ZapAdmin/app/models"
	"gorm.io/gorm"
)

// financialEntryRepository implements the FinancialEntryRepository interface
type financialEntryRepository struct {
	db *gorm.DB
}

// NewFinancialEntryRepository creates a new financial entry repository instance
func NewFinancialEntryRepository(db *gorm.DB) FinancialEntryRepository {
	return &financialEntryRepository{db: db}
}

func (r *financialEntryRepository) Create(entry *models.FinancialEntry) error {
	return r.db.Create(entry).Error
}

func (r *financialEntryRepository) GetByID(id uint) (*models.FinancialEntry, error) {
	var entry models.FinancialEntry
	err := r.db.First(&entry, id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *financialEntryRepository) Update(entry *models.FinancialEntry) error {
	return r.db.Save(entry).Error
}

func (r *financialEntryRepository) Delete(id uint) error {
	return r.db.Delete(&models.FinancialEntry{}, id).Error
}

// List returns entries newest first, scoped to the owner unless admin.
func (r *financialEntryRepository) List(filter OwnerFilter) ([]models.FinancialEntry, error) {
	var entries []models.FinancialEntry
	query := r.db.Order("created_at DESC")
	if !filter.IsAdmin {
		query = query.Where("user_id = ?", filter.UserID)
	}
	err := query.Find(&entries).Error
	return entries, err
}
