package dto

import (
	"time"

	"github.com/votacontrol/attendance-api/internal/models"
	"github.com/votacontrol/attendance-api/internal/utils"
)

// LeaderRefDTO is the short leader reference embedded in voter responses
type LeaderRefDTO struct {
	ID             uint64 `json:"id"`
	NombresLider   string `json:"nombres_lider"`
	ApellidosLider string `json:"apellidos_lider"`
}

// CheckInDTO is one attendance interval in API responses
type CheckInDTO struct {
	ID                  uint64     `json:"id"`
	CheckedInAt         time.Time  `json:"checked_in_at"`
	CheckedInAtDisplay  string     `json:"checked_in_at_display"`
	CheckedOutAt        *time.Time `json:"checked_out_at"`
	CheckedOutAtDisplay string     `json:"checked_out_at_display,omitempty"`
	UserID              uint64     `json:"user_id"`
}

// LeaderDTO represents a leader in API responses
type LeaderDTO struct {
	ID                 uint64        `json:"id"`
	NombresLider       string        `json:"nombres_lider"`
	ApellidosLider     string        `json:"apellidos_lider"`
	CedulaLider        *string       `json:"cedula_lider"`
	Telefono           *string       `json:"telefono"`
	ZonaBarrio         *string       `json:"zona_barrio"`
	Notas              *string       `json:"notas"`
	Origen             models.Origen `json:"origen"`
	CheckedIn          bool          `json:"checked_in"`
	CheckedInAt        *time.Time    `json:"checked_in_at"`
	CheckedInAtDisplay string        `json:"checked_in_at_display,omitempty"`
	Voters             []VoterDTO    `json:"voters,omitempty"`
	CheckIns           []CheckInDTO  `json:"check_ins,omitempty"`
}

// ToLeaderRefDTO converts a Leader to its short reference
func ToLeaderRefDTO(leader models.Leader) LeaderRefDTO {
	return LeaderRefDTO{
		ID:             leader.ID,
		NombresLider:   leader.NombresLider,
		ApellidosLider: leader.ApellidosLider,
	}
}

// ToLeaderDTO converts a Leader model to its DTO, including any
// preloaded voters and check-in history
func ToLeaderDTO(leader models.Leader) LeaderDTO {
	dtoLeader := LeaderDTO{
		ID:                 leader.ID,
		NombresLider:       leader.NombresLider,
		ApellidosLider:     leader.ApellidosLider,
		CedulaLider:        leader.CedulaLider,
		Telefono:           leader.Telefono,
		ZonaBarrio:         leader.ZonaBarrio,
		Notas:              leader.Notas,
		Origen:             leader.Origen,
		CheckedIn:          leader.CheckedIn,
		CheckedInAt:        leader.CheckedInAt,
		CheckedInAtDisplay: utils.FormatDisplay(leader.CheckedInAt),
	}
	for _, v := range leader.Voters {
		dtoLeader.Voters = append(dtoLeader.Voters, ToVoterDTO(v))
	}
	for _, ci := range leader.CheckIns {
		dtoLeader.CheckIns = append(dtoLeader.CheckIns, CheckInDTO{
			ID:                  ci.ID,
			CheckedInAt:         ci.CheckedInAt,
			CheckedInAtDisplay:  utils.FormatDisplay(&ci.CheckedInAt),
			CheckedOutAt:        ci.CheckedOutAt,
			CheckedOutAtDisplay: utils.FormatDisplay(ci.CheckedOutAt),
			UserID:              ci.UserID,
		})
	}
	return dtoLeader
}
