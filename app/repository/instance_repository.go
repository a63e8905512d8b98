package repository

import (
	"time"

	"github.com/ZapResell/ZapAdmin/app/models"
	"gorm.io/gorm"
)

// instanceRepository implements the InstanceRepository interface
type instanceRepository struct {
	db *gorm.DB
}

// NewInstanceRepository creates a new instance repository instance
func NewInstanceRepository(db *gorm.DB) InstanceRepository {
	return &instanceRepository{db: db}
}

func (r *instanceRepository) Create(instance *models.Instance) error {
	return r.db.Create(instance).Error
}

func (r *instanceRepository) GetByID(id uint) (*models.Instance, error) {
	var instance models.Instance
	err := r.db.First(&instance, id).Error
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

func (r *instanceRepository) GetByName(name string) (*models.Instance, error) {
	var instance models.Instance
	err := r.db.Where("name = ?", name).First(&instance).Error
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

func (r *instanceRepository) GetByUserID(userID uint) ([]models.Instance, error) {
	var instances []models.Instance
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&instances).Error
	return instances, err
}

// List returns instances newest first, scoped to the owner unless admin.
func (r *instanceRepository) List(filter OwnerFilter) ([]models.Instance, error) {
	var instances []models.Instance
	query := r.db.Order("created_at DESC")
	if !filter.IsAdmin {
		query = query.Where("user_id = ?", filter.UserID)
	}
	err := query.Find(&instances).Error
	return instances, err
}

func (r *instanceRepository) Update(instance *models.Instance) error {
	return r.db.Save(instance).Error
}

func (r *instanceRepository) Delete(id uint) error {
	return r.db.Delete(&models.Instance{}, id).Error
}

// UpdateStatusByName writes the live connection status keyed by instance
// name. The webhook receiver trusts the name it extracted from the payload;
// there is no ownership check on this path (see DESIGN.md).
func (r *instanceRepository) UpdateStatusByName(name, status string, lastConnectedAt *time.Time) error {
	updates := map[string]interface{}{
		"connection_status": status,
	}
	if lastConnectedAt != nil {
		updates["last_connected_at"] = lastConnectedAt
	}
	// Existence is checked explicitly rather than via RowsAffected: MySQL
	// reports changed rows, so a redelivered event writing the same status
	// would count as zero and look like a missing instance.
	var instance models.Instance
	if err := r.db.Select("id").Where("name = ?", name).First(&instance).Error; err != nil {
		return err
	}
	return r.db.Model(&models.Instance{}).Where("id = ?", instance.ID).Updates(updates).Error
}

func (r *instanceRepository) SaveQRCode(name, qr string) error {
	return r.db.Model(&models.Instance{}).Where("name = ?", name).Update("qr_code", qr).Error
}
