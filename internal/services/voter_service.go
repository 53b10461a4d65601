package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/votacontrol/attendance-api/internal/constants"
	"github.com/votacontrol/attendance-api/internal/models"
	"github.com/votacontrol/attendance-api/internal/repository"
	"github.com/votacontrol/attendance-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrVoterNotFound    = errors.New("votante no encontrado")
	ErrVoterCedulaTaken = errors.New("ya existe un votante con esa cédula")
	ErrVoterCedula      = errors.New("cédula es obligatoria (mínimo 5 caracteres)")
	ErrVoterNombres     = errors.New("nombres es obligatorio")
	ErrVoterApellidos   = errors.New("apellidos es obligatorio")
	ErrInvalidLeader    = errors.New("líder inválido")
)

// VoterService handles voter business logic
type VoterService struct {
	voterRepo  repository.VoterRepository
	leaderRepo repository.LeaderRepository
}

// NewVoterService creates a new VoterService
func NewVoterService(voterRepo repository.VoterRepository, leaderRepo repository.LeaderRepository) *VoterService {
	return &VoterService{
		voterRepo:  voterRepo,
		leaderRepo: leaderRepo,
	}
}

// VoterInput represents the form fields of a voter. LeaderID carries
// the raw select value: "", "none" and "0" all mean independent.
type VoterInput struct {
	CedulaVotante string
	Nombres       string
	Apellidos     string
	DondeVota     string
	MesaVotacion  string
	LeaderID      *uint64
}

func (input VoterInput) validate() (VoterInput, error) {
	input.CedulaVotante = strings.TrimSpace(input.CedulaVotante)
	input.Nombres = strings.TrimSpace(input.Nombres)
	input.Apellidos = strings.TrimSpace(input.Apellidos)
	if len(input.CedulaVotante) < 5 {
		return input, ErrVoterCedula
	}
	if input.Nombres == "" {
		return input, ErrVoterNombres
	}
	if input.Apellidos == "" {
		return input, ErrVoterApellidos
	}
	return input, nil
}

func (input VoterInput) apply(voter *models.Voter) {
	voter.CedulaVotante = input.CedulaVotante
	voter.Nombres = input.Nombres
	voter.Apellidos = input.Apellidos
	voter.DondeVota = optional(input.DondeVota)
	voter.MesaVotacion = optional(input.MesaVotacion)
	voter.LeaderID = input.LeaderID

	voter.CedulaNorm = utils.NormalizeText(voter.CedulaVotante)
	voter.NombresNorm = utils.NormalizeText(voter.Nombres)
	voter.ApellidosNorm = utils.NormalizeText(voter.Apellidos)
	voter.DondeVotaNorm = utils.NormalizeOptional(voter.DondeVota)
	voter.MesaVotacionNorm = utils.NormalizeOptional(voter.MesaVotacion)
}

func (s *VoterService) ensureLeaderExists(leaderID *uint64) error {
	if leaderID == nil {
		return nil
	}
	if _, err := s.leaderRepo.FindByID(*leaderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidLeader
		}
		return fmt.Errorf("failed to check leader: %w", err)
	}
	return nil
}

func (s *VoterService) ensureCedulaFree(cedula string, excludeID uint64) error {
	_, err := s.voterRepo.FindByCedula(cedula, excludeID)
	if err == nil {
		return ErrVoterCedulaTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check cédula: %w", err)
	}
	return nil
}

// CreateVoter validates and creates a voter with estado "Votó" and
// origen "nuevo"
func (s *VoterService) CreateVoter(input VoterInput) (*models.Voter, error) {
	input, err := input.validate()
	if err != nil {
		return nil, err
	}

	if err := s.ensureCedulaFree(input.CedulaVotante, 0); err != nil {
		return nil, err
	}
	if err := s.ensureLeaderExists(input.LeaderID); err != nil {
		return nil, err
	}

	voter := &models.Voter{
		Estado: "Votó",
		Origen: models.OrigenNuevo,
	}
	input.apply(voter)

	if err := s.voterRepo.Create(voter); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrVoterCedulaTaken
		}
		return nil, fmt.Errorf("failed to create voter: %w", err)
	}
	return voter, nil
}

// UpdateVoter validates and updates an existing voter
func (s *VoterService) UpdateVoter(voterID uint64, input VoterInput) (*models.Voter, error) {
	input, err := input.validate()
	if err != nil {
		return nil, err
	}

	voter, err := s.voterRepo.FindByID(voterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVoterNotFound
		}
		return nil, fmt.Errorf("failed to find voter: %w", err)
	}

	if err := s.ensureCedulaFree(input.CedulaVotante, voterID); err != nil {
		return nil, err
	}
	if err := s.ensureLeaderExists(input.LeaderID); err != nil {
		return nil, err
	}

	input.apply(voter)

	if err := s.voterRepo.Update(voter); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrVoterCedulaTaken
		}
		return nil, fmt.Errorf("failed to update voter: %w", err)
	}
	return voter, nil
}

// GetVoter returns a voter with its leader and interval history
func (s *VoterService) GetVoter(voterID uint64) (*models.Voter, error) {
	voter, err := s.voterRepo.FindByID(voterID, "Leader", "CheckIns")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVoterNotFound
		}
		return nil, fmt.Errorf("failed to find voter: %w", err)
	}
	return voter, nil
}

// VoterListing is the split listing used by the attendance screen:
// pending voters ordered by name, confirmed voters ordered by most
// recent check-in.
type VoterListing struct {
	Pending   []models.Voter
	Confirmed []models.Voter
}

// ListVoters returns the pending/confirmed listings for a filter,
// each capped at the listing limit.
func (s *VoterService) ListVoters(filter repository.VoterFilter) (*VoterListing, error) {
	pendingFilter := filter
	checkedOut := false
	pendingFilter.CheckedIn = &checkedOut
	pendingFilter.Limit = constants.VoterListingCap

	confirmedFilter := filter
	checkedIn := true
	confirmedFilter.CheckedIn = &checkedIn
	confirmedFilter.OrderByCheckInDesc = true
	confirmedFilter.Limit = constants.VoterListingCap

	pending, err := s.voterRepo.List(pendingFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending voters: %w", err)
	}
	confirmed, err := s.voterRepo.List(confirmedFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmed voters: %w", err)
	}

	return &VoterListing{Pending: pending, Confirmed: confirmed}, nil
}

// ListForExport returns every voter matching the filter, uncapped and
// ordered by apellidos/nombres, with the leader preloaded.
func (s *VoterService) ListForExport(filter repository.VoterFilter) ([]models.Voter, error) {
	filter.Limit = 0
	filter.OrderByCheckInDesc = false
	voters, err := s.voterRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list voters for export: %w", err)
	}
	return voters, nil
}

// DeleteVoter deletes a voter and its history
func (s *VoterService) DeleteVoter(voterID uint64) error {
	if _, err := s.voterRepo.FindByID(voterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVoterNotFound
		}
		return fmt.Errorf("failed to find voter: %w", err)
	}
	if err := s.voterRepo.Delete(voterID); err != nil {
		return fmt.Errorf("failed to delete voter: %w", err)
	}
	return nil
}

// ToggleCheckIn flips the voter's attendance state, recording the
// acting user on the interval log.
func (s *VoterService) ToggleCheckIn(voterID, actorUserID uint64) (bool, error) {
	nowCheckedIn, err := s.voterRepo.ToggleCheckIn(voterID, actorUserID, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrVoterNotFound
		}
		return false, fmt.Errorf("failed to toggle voter check-in: %w", err)
	}
	return nowCheckedIn, nil
}

// Colegios lists known polling places for the filter dropdowns
func (s *VoterService) Colegios() ([]string, error) {
	colegios, err := s.voterRepo.DistinctColegios()
	if err != nil {
		return nil, fmt.Errorf("failed to list colegios: %w", err)
	}
	return colegios, nil
}

// Mesas lists known tables of a polling place
func (s *VoterService) Mesas(colegio string) ([]string, error) {
	colegio = strings.TrimSpace(colegio)
	if colegio == "" {
		return []string{}, nil
	}
	mesas, err := s.voterRepo.DistinctMesas(colegio)
	if err != nil {
		return nil, fmt.Errorf("failed to list mesas: %w", err)
	}
	return mesas, nil
}
