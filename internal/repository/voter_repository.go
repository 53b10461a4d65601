package repository

import (
	"time"

	"github.com/votacontrol/attendance-api/internal/models"
	"github.com/votacontrol/attendance-api/internal/utils"
	"gorm.io/gorm"
)

// GormVoterRepository is a GORM implementation of VoterRepository
type GormVoterRepository struct {
	db *gorm.DB
}

// NewVoterRepository creates a new VoterRepository
func NewVoterRepository(db *gorm.DB) VoterRepository {
	return &GormVoterRepository{db: db}
}

// Create creates a new voter
func (r *GormVoterRepository) Create(voter *models.Voter) error {
	return r.db.Create(voter).Error
}

// FindByID finds a voter by ID with optional preloading
func (r *GormVoterRepository) FindByID(id uint64, preload ...string) (*models.Voter, error) {
	var voter models.Voter
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&voter, id).Error; err != nil {
		return nil, err
	}
	return &voter, nil
}

// FindByCedula finds a voter by cedula, optionally excluding one ID
// (used when updating a voter to skip its own row).
func (r *GormVoterRepository) FindByCedula(cedula string, excludeID uint64) (*models.Voter, error) {
	var voter models.Voter
	query := r.db.Where("cedula_votante = ?", cedula)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.First(&voter).Error; err != nil {
		return nil, err
	}
	return &voter, nil
}

// applyFilter assembles the WHERE predicate for a VoterFilter.
func (r *GormVoterRepository) applyFilter(query *gorm.DB, filter VoterFilter) *gorm.DB {
	switch filter.Leader.Kind {
	case LeaderNone:
		query = query.Where("voters.leader_id IS NULL")
	case LeaderByID:
		query = query.Where("voters.leader_id = ?", filter.Leader.ID)
	}

	if filter.Colegio != "" {
		query = query.Where("voters.donde_vota = ?", filter.Colegio)
	}
	if filter.Mesa != "" {
		query = query.Where("voters.mesa_votacion = ?", filter.Mesa)
	}
	if filter.Origen != "" {
		query = query.Where("voters.origen = ?", filter.Origen)
	}
	if filter.CheckedIn != nil {
		query = query.Where("voters.checked_in = ?", *filter.CheckedIn)
	}

	if filter.Query != "" {
		needle := "%" + utils.NormalizeText(filter.Query) + "%"
		leaderSub := r.db.Model(&models.Leader{}).
			Select("1").
			Where("leaders.id = voters.leader_id").
			Where(r.db.
				Where("leaders.nombres_norm LIKE ?", needle).
				Or("leaders.apellidos_norm LIKE ?", needle).
				Or("leaders.cedula_norm LIKE ?", needle))

		query = query.Where(r.db.
			Where("voters.cedula_norm LIKE ?", needle).
			Or("voters.nombres_norm LIKE ?", needle).
			Or("voters.apellidos_norm LIKE ?", needle).
			Or("voters.donde_vota_norm LIKE ?", needle).
			Or("voters.mesa_votacion_norm LIKE ?", needle).
			Or("EXISTS (?)", leaderSub))
	}

	return query
}

// List returns voters matching the filter with the leader preloaded
func (r *GormVoterRepository) List(filter VoterFilter) ([]models.Voter, error) {
	var voters []models.Voter

	query := r.applyFilter(r.db.Model(&models.Voter{}), filter)

	if filter.OrderByCheckInDesc {
		query = query.Order("voters.checked_in_at DESC")
	} else {
		query = query.Order("voters.apellidos ASC, voters.nombres ASC")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	if err := query.Preload("Leader").Find(&voters).Error; err != nil {
		return nil, err
	}
	return voters, nil
}

// Update updates a voter
func (r *GormVoterRepository) Update(voter *models.Voter) error {
	return r.db.Save(voter).Error
}

// Delete deletes a voter together with its interval history.
func (r *GormVoterRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("voter_id = ?", id).Delete(&models.VoterCheckIn{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Voter{}, id).Error
	})
}

// Count counts voters matching the filter
func (r *GormVoterRepository) Count(filter VoterFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.Model(&models.Voter{}), filter).Count(&count).Error
	return count, err
}

// CountByColegio groups matching voters by polling place
func (r *GormVoterRepository) CountByColegio(filter VoterFilter, limit int) ([]ColegioCount, error) {
	var rows []ColegioCount
	query := r.applyFilter(r.db.Model(&models.Voter{}), filter).
		Select("voters.donde_vota AS colegio, COUNT(*) AS count").
		Where("voters.donde_vota IS NOT NULL AND voters.donde_vota <> ''").
		Group("voters.donde_vota").
		Order("count DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Scan(&rows).Error
	return rows, err
}

// CountByMesa groups matching voters by (colegio, mesa)
func (r *GormVoterRepository) CountByMesa(filter VoterFilter) ([]MesaCount, error) {
	var rows []MesaCount
	err := r.applyFilter(r.db.Model(&models.Voter{}), filter).
		Select("voters.donde_vota AS colegio, voters.mesa_votacion AS mesa, COUNT(*) AS count").
		Where("voters.donde_vota IS NOT NULL AND voters.donde_vota <> ''").
		Where("voters.mesa_votacion IS NOT NULL AND voters.mesa_votacion <> ''").
		Group("voters.donde_vota, voters.mesa_votacion").
		Order("count DESC, voters.mesa_votacion ASC").
		Scan(&rows).Error
	return rows, err
}

// CountByLeader groups matching voters by leader, excluding independents
func (r *GormVoterRepository) CountByLeader(filter VoterFilter) ([]LeaderCount, error) {
	var rows []LeaderCount
	err := r.applyFilter(r.db.Model(&models.Voter{}), filter).
		Select("voters.leader_id AS leader_id, COUNT(*) AS count").
		Where("voters.leader_id IS NOT NULL").
		Group("voters.leader_id").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

// DistinctColegios lists the known polling places
func (r *GormVoterRepository) DistinctColegios() ([]string, error) {
	var colegios []string
	err := r.db.Model(&models.Voter{}).
		Where("donde_vota IS NOT NULL AND donde_vota <> ''").
		Distinct("donde_vota").
		Order("donde_vota ASC").
		Pluck("donde_vota", &colegios).Error
	return colegios, err
}

// DistinctMesas lists the known tables of one polling place
func (r *GormVoterRepository) DistinctMesas(colegio string) ([]string, error) {
	var mesas []string
	err := r.db.Model(&models.Voter{}).
		Where("donde_vota = ?", colegio).
		Where("mesa_votacion IS NOT NULL AND mesa_votacion <> ''").
		Distinct("mesa_votacion").
		Order("mesa_votacion ASC").
		Pluck("mesa_votacion", &mesas).Error
	return mesas, err
}

// ToggleCheckIn flips the voter's checked-in state inside a single
// transaction so the flag and the interval log cannot diverge under
// concurrent toggles. Toggling off closes every open interval; under
// the invariant there is exactly one, and closing strays restores it.
func (r *GormVoterRepository) ToggleCheckIn(voterID, userID uint64, now time.Time) (bool, error) {
	var nowCheckedIn bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var voter models.Voter
		if err := tx.First(&voter, voterID).Error; err != nil {
			return err
		}

		if voter.CheckedIn {
			if err := tx.Model(&models.VoterCheckIn{}).
				Where("voter_id = ? AND checked_out_at IS NULL", voterID).
				Update("checked_out_at", now).Error; err != nil {
				return err
			}
			if err := tx.Model(&voter).Updates(map[string]interface{}{
				"checked_in":    false,
				"checked_in_at": nil,
			}).Error; err != nil {
				return err
			}
			nowCheckedIn = false
			return nil
		}

		record := models.VoterCheckIn{
			VoterID:     voterID,
			CheckedInAt: now,
			UserID:      userID,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		if err := tx.Model(&voter).Updates(map[string]interface{}{
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

// ListCheckIns returns a voter's interval history, newest first
func (r *GormVoterRepository) ListCheckIns(voterID uint64) ([]models.VoterCheckIn, error) {
	var checkIns []models.VoterCheckIn
	err := r.db.Where("voter_id = ?", voterID).
		Order("checked_in_at DESC").
		Find(&checkIns).Error
	return checkIns, err
}
