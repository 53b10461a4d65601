package dto

import (
	"time"

	"github.com/votacontrol/attendance-api/internal/models"
	"github.com/votacontrol/attendance-api/internal/utils"
)

// VoterDTO represents a voter in API responses
type VoterDTO struct {
	ID                 uint64        `json:"id"`
	CedulaVotante      string        `json:"cedula_votante"`
	Nombres            string        `json:"nombres"`
	Apellidos          string        `json:"apellidos"`
	DondeVota          *string       `json:"donde_vota"`
	MesaVotacion       *string       `json:"mesa_votacion"`
	LeaderID           *uint64       `json:"leader_id"`
	Leader             *LeaderRefDTO `json:"leader,omitempty"`
	Estado             string        `json:"estado"`
	Origen             models.Origen `json:"origen"`
	CheckedIn          bool          `json:"checked_in"`
	CheckedInAt        *time.Time    `json:"checked_in_at"`
	CheckedInAtDisplay string        `json:"checked_in_at_display,omitempty"`
	FechaRegistro      time.Time     `json:"fecha_registro"`
	CheckIns           []CheckInDTO  `json:"check_ins,omitempty"`
}

// VoterListResponse is the split attendance listing
type VoterListResponse struct {
	Pending   []VoterDTO `json:"pending"`
	Confirmed []VoterDTO `json:"confirmed"`
	Colegios  []string   `json:"colegios"`
}

// ToVoterDTO converts a Voter model to its DTO, including the preloaded
// leader and check-in history
func ToVoterDTO(voter models.Voter) VoterDTO {
	dtoVoter := VoterDTO{
		ID:                 voter.ID,
		CedulaVotante:      voter.CedulaVotante,
		Nombres:            voter.Nombres,
		Apellidos:          voter.Apellidos,
		DondeVota:          voter.DondeVota,
		MesaVotacion:       voter.MesaVotacion,
		LeaderID:           voter.LeaderID,
		Estado:             voter.Estado,
		Origen:             voter.Origen,
		CheckedIn:          voter.CheckedIn,
		CheckedInAt:        voter.CheckedInAt,
		CheckedInAtDisplay: utils.FormatDisplay(voter.CheckedInAt),
		FechaRegistro:      voter.FechaRegistro,
	}
	if voter.Leader != nil {
		ref := ToLeaderRefDTO(*voter.Leader)
		dtoVoter.Leader = &ref
	}
	for _, ci := range voter.CheckIns {
		dtoVoter.CheckIns = append(dtoVoter.CheckIns, CheckInDTO{
			ID:                  ci.ID,
			CheckedInAt:         ci.CheckedInAt,
			CheckedInAtDisplay:  utils.FormatDisplay(&ci.CheckedInAt),
			CheckedOutAt:        ci.CheckedOutAt,
			CheckedOutAtDisplay: utils.FormatDisplay(ci.CheckedOutAt),
			UserID:              ci.UserID,
		})
	}
	return dtoVoter
}

// ToVoterDTOs converts a slice of voters
func ToVoterDTOs(voters []models.Voter) []VoterDTO {
	out := make([]VoterDTO, 0, len(voters))
	for _, v := range voters {
		out = append(out, ToVoterDTO(v))
	}
	return out
}
