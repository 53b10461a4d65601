package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/votacontrol/attendance-api/internal/models"
	"github.com/votacontrol/attendance-api/internal/repository"
	"github.com/votacontrol/attendance-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrLeaderNotFound    = errors.New("líder no encontrado")
	ErrLeaderCedulaTaken = errors.New("ya existe un líder con esa cédula")
	ErrLeaderNombres     = errors.New("nombres es obligatorio")
	ErrLeaderApellidos   = errors.New("apellidos es obligatorio")
	ErrLeaderHasVoters   = errors.New("no se puede eliminar: el líder tiene votantes asociados")
)

// LeaderService handles leader business logic
type LeaderService struct {
	leaderRepo repository.LeaderRepository
}

// NewLeaderService creates a new LeaderService
func NewLeaderService(leaderRepo repository.LeaderRepository) *LeaderService {
	return &LeaderService{
		leaderRepo: leaderRepo,
	}
}

// LeaderInput represents the form fields of a leader
type LeaderInput struct {
	NombresLider   string
	ApellidosLider string
	CedulaLider    string
	Telefono       string
	ZonaBarrio     string
	Notas          string
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (input LeaderInput) validate() (LeaderInput, error) {
	input.NombresLider = strings.TrimSpace(input.NombresLider)
	input.ApellidosLider = strings.TrimSpace(input.ApellidosLider)
	if input.NombresLider == "" {
		return input, ErrLeaderNombres
	}
	if input.ApellidosLider == "" {
		return input, ErrLeaderApellidos
	}
	return input, nil
}

// apply copies the validated input onto the model and recomputes the
// normalized shadow columns. Every write path goes through here so a
// searchable field can never drift from its shadow.
func (input LeaderInput) apply(leader *models.Leader) {
	leader.NombresLider = input.NombresLider
	leader.ApellidosLider = input.ApellidosLider
	leader.CedulaLider = optional(input.CedulaLider)
	leader.Telefono = optional(input.Telefono)
	leader.ZonaBarrio = optional(input.ZonaBarrio)
	leader.Notas = optional(input.Notas)

	leader.NombresNorm = utils.NormalizeText(leader.NombresLider)
	leader.ApellidosNorm = utils.NormalizeText(leader.ApellidosLider)
	leader.CedulaNorm = utils.NormalizeOptional(leader.CedulaLider)
	leader.TelefonoNorm = utils.NormalizeOptional(leader.Telefono)
	leader.ZonaBarrioNorm = utils.NormalizeOptional(leader.ZonaBarrio)
}

// ensureCedulaFree is the friendly pre-check; the unique constraint is
// what actually enforces uniqueness on the write.
func (s *LeaderService) ensureCedulaFree(cedula string, excludeID uint64) error {
	if strings.TrimSpace(cedula) == "" {
		return nil
	}
	_, err := s.leaderRepo.FindByCedula(strings.TrimSpace(cedula), excludeID)
	if err == nil {
		return ErrLeaderCedulaTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check cédula: %w", err)
	}
	return nil
}

// CreateLeader validates and creates a leader with origen "nuevo"
func (s *LeaderService) CreateLeader(input LeaderInput) (*models.Leader, error) {
	input, err := input.validate()
	if err != nil {
		return nil, err
	}

	if err := s.ensureCedulaFree(input.CedulaLider, 0); err != nil {
		return nil, err
	}

	leader := &models.Leader{Origen: models.OrigenNuevo}
	input.apply(leader)

	if err := s.leaderRepo.Create(leader); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrLeaderCedulaTaken
		}
		return nil, fmt.Errorf("failed to create leader: %w", err)
	}
	return leader, nil
}

// UpdateLeader validates and updates an existing leader
func (s *LeaderService) UpdateLeader(leaderID uint64, input LeaderInput) (*models.Leader, error) {
	input, err := input.validate()
	if err != nil {
		return nil, err
	}

	leader, err := s.leaderRepo.FindByID(leaderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeaderNotFound
		}
		return nil, fmt.Errorf("failed to find leader: %w", err)
	}

	if err := s.ensureCedulaFree(input.CedulaLider, leaderID); err != nil {
		return nil, err
	}

	input.apply(leader)

	if err := s.leaderRepo.Update(leader); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrLeaderCedulaTaken
		}
		return nil, fmt.Errorf("failed to update leader: %w", err)
	}
	return leader, nil
}

// GetLeader returns a leader with its voters and interval history
func (s *LeaderService) GetLeader(leaderID uint64) (*models.Leader, error) {
	leader, err := s.leaderRepo.FindByID(leaderID, "Voters", "CheckIns")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeaderNotFound
		}
		return nil, fmt.Errorf("failed to find leader: %w", err)
	}
	return leader, nil
}

// ListLeaders returns leaders matching the filter
func (s *LeaderService) ListLeaders(filter repository.LeaderFilter) ([]models.Leader, error) {
	leaders, err := s.leaderRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaders: %w", err)
	}
	return leaders, nil
}

// DeleteLeader deletes a leader. Refused while voters remain assigned:
// voters are never cascaded or orphaned silently.
func (s *LeaderService) DeleteLeader(leaderID uint64) error {
	if _, err := s.leaderRepo.FindByID(leaderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLeaderNotFound
		}
		return fmt.Errorf("failed to find leader: %w", err)
	}

	count, err := s.leaderRepo.CountVoters(leaderID)
	if err != nil {
		return fmt.Errorf("failed to count voters: %w", err)
	}
	if count > 0 {
		return ErrLeaderHasVoters
	}

	if err := s.leaderRepo.Delete(leaderID); err != nil {
		return fmt.Errorf("failed to delete leader: %w", err)
	}
	return nil
}

// ToggleCheckIn flips the leader's attendance state, recording the
// acting user on the interval log.
func (s *LeaderService) ToggleCheckIn(leaderID, actorUserID uint64) (bool, error) {
	nowCheckedIn, err := s.leaderRepo.ToggleCheckIn(leaderID, actorUserID, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrLeaderNotFound
		}
		return false, fmt.Errorf("failed to toggle leader check-in: %w", err)
	}
	return nowCheckedIn, nil
}
