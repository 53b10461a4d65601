package repository

import (
	"strconv"
	"strings"
	"time"

	"github.com/votacontrol/attendance-api/internal/models"
)

// LeaderSelectorKind is the tri-state leader dimension of a voter filter.
type LeaderSelectorKind int

const (
	// LeaderAll imposes no leader constraint.
	LeaderAll LeaderSelectorKind = iota
	// LeaderNone constrains to independent voters (no leader).
	LeaderNone
	// LeaderByID constrains to one leader's voters.
	LeaderByID
)

// LeaderSelector is the parsed leader filter value.
type LeaderSelector struct {
	Kind LeaderSelectorKind
	ID   uint64
}

// ParseLeaderSelector parses the query-string leader filter. Empty or
// "all" selects everything, "none" selects independents, a positive
// integer selects one leader. Anything else degrades to all so that
// malformed input can never break a listing.
func ParseLeaderSelector(v string) LeaderSelector {
	s := strings.TrimSpace(v)
	if s == "" || s == "all" {
		return LeaderSelector{Kind: LeaderAll}
	}
	if s == "none" {
		return LeaderSelector{Kind: LeaderNone}
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err == nil && id > 0 {
		return LeaderSelector{Kind: LeaderByID, ID: id}
	}
	return LeaderSelector{Kind: LeaderAll}
}

// VoterFilter holds the combinable voter listing constraints. Zero
// values impose no constraint.
type VoterFilter struct {
	Leader  LeaderSelector
	Colegio string
	Mesa    string
	// Query is free text, matched as a normalized substring against the
	// voter's shadow columns and the assigned leader's.
	Query     string
	Origen    models.Origen
	CheckedIn *bool

	// OrderByCheckInDesc orders by most recent check-in instead of the
	// default apellidos/nombres.
	OrderByCheckInDesc bool
	// Limit caps the result set; 0 means no cap (exports).
	Limit int
}

// ColegioCount is one group-by-polling-place row.
type ColegioCount struct {
	Colegio string `json:"colegio"`
	Count   int64  `json:"count"`
}

// MesaCount is one group-by-table row within a polling place.
type MesaCount struct {
	Colegio string `json:"colegio"`
	Mesa    string `json:"mesa"`
	Count   int64  `json:"count"`
}

// LeaderCount is one group-by-leader row. A nil LeaderID would mean
// independents, but the grouping query excludes those; the independents
// bucket is counted separately.
type LeaderCount struct {
	LeaderID uint64 `json:"leader_id"`
	Count    int64  `json:"count"`
}

// LeaderFilter holds leader listing constraints.
type LeaderFilter struct {
	Query     string
	Origen    models.Origen
	CheckedIn *bool
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	FindByID(id uint64) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	Count() (int64, error)
}

// LeaderRepository defines the interface for leader data access
type LeaderRepository interface {
	Create(leader *models.Leader) error

	// FindByID finds a leader by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Leader, error)

	FindByCedula(cedula string, excludeID uint64) (*models.Leader, error)

	// List returns leaders matching the filter, ordered by apellidos
	// then nombres.
	List(filter LeaderFilter) ([]models.Leader, error)

	Update(leader *models.Leader) error
	Delete(id uint64) error
	Count(filter LeaderFilter) (int64, error)

	// CountVoters counts the voters assigned to a leader.
	CountVoters(leaderID uint64) (int64, error)

	// ToggleCheckIn atomically flips the leader's checked-in state and
	// maintains the interval log. Returns the new state.
	ToggleCheckIn(leaderID, userID uint64, now time.Time) (bool, error)

	// ListCheckIns returns a leader's interval history, newest first.
	ListCheckIns(leaderID uint64) ([]models.LeaderCheckIn, error)
}

// VoterRepository defines the interface for voter data access
type VoterRepository interface {
	Create(voter *models.Voter) error

	// FindByID finds a voter by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Voter, error)

	FindByCedula(cedula string, excludeID uint64) (*models.Voter, error)

	// List returns voters matching the filter with the leader preloaded.
	List(filter VoterFilter) ([]models.Voter, error)

	Update(voter *models.Voter) error
	Delete(id uint64) error

	// Count counts voters matching the filter.
	Count(filter VoterFilter) (int64, error)

	// CountByColegio groups matching voters by polling place, count
	// descending. limit 0 means no cap. Rows without a polling place
	// are excluded.
	CountByColegio(filter VoterFilter, limit int) ([]ColegioCount, error)

	// CountByMesa groups matching voters by (colegio, mesa). Rows
	// missing either dimension are excluded.
	CountByMesa(filter VoterFilter) ([]MesaCount, error)

	// CountByLeader groups matching voters by leader, excluding
	// independents.
	CountByLeader(filter VoterFilter) ([]LeaderCount, error)

	// DistinctColegios lists the known polling places, ascending.
	DistinctColegios() ([]string, error)

	// DistinctMesas lists the known tables of one polling place, ascending.
	DistinctMesas(colegio string) ([]string, error)

	// ToggleCheckIn atomically flips the voter's checked-in state and
	// maintains the interval log. Returns the new state.
	ToggleCheckIn(voterID, userID uint64, now time.Time) (bool, error)

	// ListCheckIns returns a voter's interval history, newest first.
	ListCheckIns(voterID uint64) ([]models.VoterCheckIn, error)
}
