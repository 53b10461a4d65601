package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/votacontrol/attendance-api/internal/models"
	"github.com/votacontrol/attendance-api/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Leader{},
		&models.Voter{},
		&models.LeaderCheckIn{},
		&models.VoterCheckIn{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

func createTestLeader(t *testing.T, db *gorm.DB, nombres, apellidos string) *models.Leader {
	t.Helper()
	leader := &models.Leader{
		NombresLider:   nombres,
		ApellidosLider: apellidos,
		Origen:         models.OrigenNuevo,
		NombresNorm:    utils.NormalizeText(nombres),
		ApellidosNorm:  utils.NormalizeText(apellidos),
	}
	require.NoError(t, db.Create(leader).Error)
	return leader
}

func createTestVoter(t *testing.T, db *gorm.DB, cedula, nombres, apellidos, colegio, mesa string, leaderID *uint64) *models.Voter {
	t.Helper()
	voter := &models.Voter{
		CedulaVotante: cedula,
		Nombres:       nombres,
		Apellidos:     apellidos,
		DondeVota:     optionalStr(colegio),
		MesaVotacion:  optionalStr(mesa),
		LeaderID:      leaderID,
		Estado:        "Votó",
		Origen:        models.OrigenNuevo,
		CedulaNorm:    utils.NormalizeText(cedula),
		NombresNorm:   utils.NormalizeText(nombres),
		ApellidosNorm: utils.NormalizeText(apellidos),
	}
	voter.DondeVotaNorm = utils.NormalizeOptional(voter.DondeVota)
	voter.MesaVotacionNorm = utils.NormalizeOptional(voter.MesaVotacion)
	require.NoError(t, db.Create(voter).Error)
	return voter
}

func optionalStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func TestParseLeaderSelector(t *testing.T) {
	tests := []struct {
		input string
		want  LeaderSelector
	}{
		{"", LeaderSelector{Kind: LeaderAll}},
		{"all", LeaderSelector{Kind: LeaderAll}},
		{"  all  ", LeaderSelector{Kind: LeaderAll}},
		{"none", LeaderSelector{Kind: LeaderNone}},
		{"7", LeaderSelector{Kind: LeaderByID, ID: 7}},
		{" 12 ", LeaderSelector{Kind: LeaderByID, ID: 12}},
		// Malformed values degrade to no constraint, never an error.
		{"-5", LeaderSelector{Kind: LeaderAll}},
		{"0", LeaderSelector{Kind: LeaderAll}},
		{"abc", LeaderSelector{Kind: LeaderAll}},
		{"7x", LeaderSelector{Kind: LeaderAll}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.want, ParseLeaderSelector(tt.input))
		})
	}
}

func TestVoterRepository_NormalizedSearch(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewVoterRepository(db)

	createTestVoter(t, db, "10000001", "José", "Pérez", "Colegio San Juan", "1", nil)
	createTestVoter(t, db, "10000002", "Maria", "Gomez", "Colegio San Juan", "2", nil)

	voters, err := repo.List(VoterFilter{Query: "jose"})
	require.NoError(t, err)
	require.Len(t, voters, 1)
	require.Equal(t, "José", voters[0].Nombres)

	// The accented query matches the unaccented row as well.
	voters, err = repo.List(VoterFilter{Query: "GÓMEZ"})
	require.NoError(t, err)
	require.Len(t, voters, 1)
	require.Equal(t, "Maria", voters[0].Nombres)

	voters, err = repo.List(VoterFilter{Query: "san juan"})
	require.NoError(t, err)
	require.Len(t, voters, 2)
}

func TestVoterRepository_SearchMatchesLeaderName(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewVoterRepository(db)

	leader := createTestLeader(t, db, "Ramón", "Valdés")
	createTestVoter(t, db, "10000001", "Ana", "Rojas", "", "", &leader.ID)
	createTestVoter(t, db, "10000002", "Luis", "Soto", "", "", nil)

	voters, err := repo.List(VoterFilter{Query: "valdes"})
	require.NoError(t, err)
	require.Len(t, voters, 1)
	require.Equal(t, "Ana", voters[0].Nombres)
}

func TestVoterRepository_LeaderSelector(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewVoterRepository(db)

	leader := createTestLeader(t, db, "Carlos", "Mata")
	createTestVoter(t, db, "10000001", "Ana", "Rojas", "", "", &leader.ID)
	createTestVoter(t, db, "10000002", "Luis", "Soto", "", "", nil)
	createTestVoter(t, db, "10000003", "Eva", "Cano", "", "", nil)

	all, err := repo.Count(VoterFilter{Leader: LeaderSelector{Kind: LeaderAll}})
	require.NoError(t, err)
	require.EqualValues(t, 3, all)

	none, err := repo.Count(VoterFilter{Leader: LeaderSelector{Kind: LeaderNone}})
	require.NoError(t, err)
	require.EqualValues(t, 2, none)

	byID, err := repo.Count(VoterFilter{Leader: LeaderSelector{Kind: LeaderByID, ID: leader.ID}})
	require.NoError(t, err)
	require.EqualValues(t, 1, byID)
}

func TestVoterRepository_ListOrderAndLimit(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewVoterRepository(db)

	createTestVoter(t, db, "10000001", "Zoe", "Zapata", "", "", nil)
	createTestVoter(t, db, "10000002", "Ana", "Arias", "", "", nil)
	createTestVoter(t, db, "10000003", "Mia", "Mora", "", "", nil)

	voters, err := repo.List(VoterFilter{})
	require.NoError(t, err)
	require.Len(t, voters, 3)
	require.Equal(t, "Arias", voters[0].Apellidos)
	require.Equal(t, "Mora", voters[1].Apellidos)
	require.Equal(t, "Zapata", voters[2].Apellidos)

	capped, err := repo.List(VoterFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, capped, 2)

	uncapped, err := repo.List(VoterFilter{Limit: 0})
	require.NoError(t, err)
	require.Len(t, uncapped, 3)
}

func TestVoterRepository_GroupingsSumToFilteredTotal(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewVoterRepository(db)

	l1 := createTestLeader(t, db, "Carlos", "Mata")
	l2 := createTestLeader(t, db, "Diana", "Ruiz")
	createTestVoter(t, db, "10000001", "Ana", "Rojas", "Colegio A", "1", &l1.ID)
	createTestVoter(t, db, "10000002", "Luis", "Soto", "Colegio A", "2", &l1.ID)
	createTestVoter(t, db, "10000003", "Eva", "Cano", "Colegio B", "1", &l2.ID)
	createTestVoter(t, db, "10000004", "Pol", "Vega", "Colegio B", "1", nil)
	createTestVoter(t, db, "10000005", "Sol", "Lara", "", "", nil)

	total, err := repo.Count(VoterFilter{})
	require.NoError(t, err)

	independents, err := repo.Count(VoterFilter{Leader: LeaderSelector{Kind: LeaderNone}})
	require.NoError(t, err)

	grouped, err := repo.CountByLeader(VoterFilter{})
	require.NoError(t, err)

	var assigned int64
	for _, g := range grouped {
		assigned += g.Count
	}
	require.Equal(t, total, assigned+independents)

	// Per-colegio rows exclude voters without a polling place.
	porColegio, err := repo.CountByColegio(VoterFilter{}, 0)
	require.NoError(t, err)
	var placed int64
	for _, g := range porColegio {
		placed += g.Count
	}
	require.EqualValues(t, 4, placed)

	porMesa, err := repo.CountByMesa(VoterFilter{Colegio: "Colegio B"})
	require.NoError(t, err)
	require.Len(t, porMesa, 1)
	require.EqualValues(t, 2, porMesa[0].Count)
}

func TestVoterRepository_DistinctColegiosAndMesas(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewVoterRepository(db)

	createTestVoter(t, db, "10000001", "Ana", "Rojas", "Colegio B", "2", nil)
	createTestVoter(t, db, "10000002", "Luis", "Soto", "Colegio A", "1", nil)
	createTestVoter(t, db, "10000003", "Eva", "Cano", "Colegio B", "1", nil)
	createTestVoter(t, db, "10000004", "Sol", "Lara", "", "", nil)

	colegios, err := repo.DistinctColegios()
	require.NoError(t, err)
	require.Equal(t, []string{"Colegio A", "Colegio B"}, colegios)

	mesas, err := repo.DistinctMesas("Colegio B")
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, mesas)
}

func TestVoterRepository_ToggleCheckIn(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewVoterRepository(db)

	voter := createTestVoter(t, db, "10000001", "Ana", "Rojas", "", "", nil)
	now := time.Now()

	checkedIn, err := repo.ToggleCheckIn(voter.ID, 1, now)
	require.NoError(t, err)
	require.True(t, checkedIn)

	got, err := repo.FindByID(voter.ID)
	require.NoError(t, err)
	require.True(t, got.CheckedIn)
	require.NotNil(t, got.CheckedInAt)

	intervals, err := repo.ListCheckIns(voter.ID)
	require.NoError(t, err)
	require.Len(t, intervals, 1)
	require.Nil(t, intervals[0].CheckedOutAt)
	require.EqualValues(t, 1, intervals[0].UserID)

	checkedIn, err = repo.ToggleCheckIn(voter.ID, 2, now.Add(time.Minute))
	require.NoError(t, err)
	require.False(t, checkedIn)

	got, err = repo.FindByID(voter.ID)
	require.NoError(t, err)
	require.False(t, got.CheckedIn)
	require.Nil(t, got.CheckedInAt)

	// The interval is closed, not deleted.
	intervals, err = repo.ListCheckIns(voter.ID)
	require.NoError(t, err)
	require.Len(t, intervals, 1)
	require.NotNil(t, intervals[0].CheckedOutAt)
}

func TestVoterRepository_ToggleCheckIn_ClosesStrayOpenIntervals(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewVoterRepository(db)

	voter := createTestVoter(t, db, "10000001", "Ana", "Rojas", "", "", nil)

	// Simulate drift: two open intervals on a checked-in voter.
	now := time.Now()
	require.NoError(t, db.Create(&models.VoterCheckIn{VoterID: voter.ID, CheckedInAt: now.Add(-time.Hour), UserID: 1}).Error)
	require.NoError(t, db.Create(&models.VoterCheckIn{VoterID: voter.ID, CheckedInAt: now, UserID: 1}).Error)
	require.NoError(t, db.Model(voter).Updates(map[string]interface{}{"checked_in": true, "checked_in_at": now}).Error)

	checkedIn, err := repo.ToggleCheckIn(voter.ID, 1, now.Add(time.Minute))
	require.NoError(t, err)
	require.False(t, checkedIn)

	var open int64
	require.NoError(t, db.Model(&models.VoterCheckIn{}).
		Where("voter_id = ? AND checked_out_at IS NULL", voter.ID).
		Count(&open).Error)
	require.Zero(t, open)
}

func TestVoterRepository_ToggleCheckIn_NotFound(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewVoterRepository(db)

	_, err := repo.ToggleCheckIn(999, 1, time.Now())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestVoterRepository_DeleteRemovesHistory(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewVoterRepository(db)

	voter := createTestVoter(t, db, "10000001", "Ana", "Rojas", "", "", nil)
	_, err := repo.ToggleCheckIn(voter.ID, 1, time.Now())
	require.NoError(t, err)

	require.NoError(t, repo.Delete(voter.ID))

	_, err = repo.FindByID(voter.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var intervals int64
	require.NoError(t, db.Model(&models.VoterCheckIn{}).Where("voter_id = ?", voter.ID).Count(&intervals).Error)
	require.Zero(t, intervals)
}

func TestVoterRepository_DuplicateCedulaTranslated(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewVoterRepository(db)

	createTestVoter(t, db, "10000001", "Ana", "Rojas", "", "", nil)

	err := repo.Create(&models.Voter{
		CedulaVotante: "10000001",
		Nombres:       "Otra",
		Apellidos:     "Persona",
		Estado:        "Votó",
		Origen:        models.OrigenNuevo,
	})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
