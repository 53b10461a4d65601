package repository

import (
	"time"

	"github.com/votacontrol/attendance-api/internal/models"
	"github.com/votacontrol/attendance-api/internal/utils"
	"gorm.io/gorm"
)

// GormLeaderRepository is a GORM implementation of LeaderRepository
type GormLeaderRepository struct {
	db *gorm.DB
}

// NewLeaderRepository creates a new LeaderRepository
func NewLeaderRepository(db *gorm.DB) LeaderRepository {
	return &GormLeaderRepository{db: db}
}

// Create creates a new leader
func (r *GormLeaderRepository) Create(leader *models.Leader) error {
	return r.db.Create(leader).Error
}

// FindByID finds a leader by ID with optional preloading
func (r *GormLeaderRepository) FindByID(id uint64, preload ...string) (*models.Leader, error) {
	var leader models.Leader
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&leader, id).Error; err != nil {
		return nil, err
	}
	return &leader, nil
}

// FindByCedula finds a leader by cedula, optionally excluding one ID
func (r *GormLeaderRepository) FindByCedula(cedula string, excludeID uint64) (*models.Leader, error) {
	var leader models.Leader
	query := r.db.Where("cedula_lider = ?", cedula)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.First(&leader).Error; err != nil {
		return nil, err
	}
	return &leader, nil
}

func (r *GormLeaderRepository) applyFilter(query *gorm.DB, filter LeaderFilter) *gorm.DB {
	if filter.Origen != "" {
		query = query.Where("origen = ?", filter.Origen)
	}
	if filter.CheckedIn != nil {
		query = query.Where("checked_in = ?", *filter.CheckedIn)
	}
	if filter.Query != "" {
		needle := "%" + utils.NormalizeText(filter.Query) + "%"
		query = query.Where(r.db.
			Where("nombres_norm LIKE ?", needle).
			Or("apellidos_norm LIKE ?", needle).
			Or("cedula_norm LIKE ?", needle).
			Or("telefono_norm LIKE ?", needle).
			Or("zona_barrio_norm LIKE ?", needle))
	}
	return query
}

// List returns leaders matching the filter, ordered by apellidos then nombres
func (r *GormLeaderRepository) List(filter LeaderFilter) ([]models.Leader, error) {
	var leaders []models.Leader
	err := r.applyFilter(r.db.Model(&models.Leader{}), filter).
		Order("apellidos_lider ASC, nombres_lider ASC").
		Find(&leaders).Error
	return leaders, err
}

// Update updates a leader
func (r *GormLeaderRepository) Update(leader *models.Leader) error {
	return r.db.Save(leader).Error
}

// Delete deletes a leader together with its interval history. The
// business rule that a leader with voters cannot be deleted lives in
// the service; this method assumes it already passed.
func (r *GormLeaderRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("leader_id = ?", id).Delete(&models.LeaderCheckIn{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Leader{}, id).Error
	})
}

// Count counts leaders matching the filter
func (r *GormLeaderRepository) Count(filter LeaderFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.Model(&models.Leader{}), filter).Count(&count).Error
	return count, err
}

// CountVoters counts the voters assigned to a leader
func (r *GormLeaderRepository) CountVoters(leaderID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Voter{}).Where("leader_id = ?", leaderID).Count(&count).Error
	return count, err
}

// ToggleCheckIn flips the leader's checked-in state inside a single
// transaction. Same contract as the voter variant.
func (r *GormLeaderRepository) ToggleCheckIn(leaderID, userID uint64, now time.Time) (bool, error) {
	var nowCheckedIn bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var leader models.Leader
		if err := tx.First(&leader, leaderID).Error; err != nil {
			return err
		}

		if leader.CheckedIn {
			if err := tx.Model(&models.LeaderCheckIn{}).
				Where("leader_id = ? AND checked_out_at IS NULL", leaderID).
				Update("checked_out_at", now).Error; err != nil {
				return err
			}
			if err := tx.Model(&leader).Updates(map[string]interface{}{
				"checked_in":    false,
				"checked_in_at": nil,
			}).Error; err != nil {
				return err
			}
			nowCheckedIn = false
			return nil
		}

		record := models.LeaderCheckIn{
			LeaderID:    leaderID,
			CheckedInAt: now,
			UserID:      userID,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		if err := tx.Model(&leader).Updates(map[string]interface{}{
			"checked_in":    true,
			"checked_in_at": now,
		}).Error; err != nil {
			return err
		}
		nowCheckedIn = true
		return nil
	})
	return nowCheckedIn, err
}

// ListCheckIns returns a leader's interval history, newest first
func (r *GormLeaderRepository) ListCheckIns(leaderID uint64) ([]models.LeaderCheckIn, error) {
	var checkIns []models.LeaderCheckIn
	err := r.db.Where("leader_id = ?", leaderID).
		Order("checked_in_at DESC").
		Find(&checkIns).Error
	return checkIns, err
}
