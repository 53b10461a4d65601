package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/votacontrol/attendance-api/internal/dto"
	apierrors "github.com/votacontrol/attendance-api/internal/errors"
	"github.com/votacontrol/attendance-api/internal/middleware"
	"github.com/votacontrol/attendance-api/internal/repository"
	"github.com/votacontrol/attendance-api/internal/services"
)

// VoterHandler coordinates voter HTTP handlers
type VoterHandler struct {
	voterService *services.VoterService
}

// NewVoterHandler creates a new VoterHandler
func NewVoterHandler(voterService *services.VoterService) *VoterHandler {
	return &VoterHandler{
		voterService: voterService,
	}
}

// VoterRequest is the create/update payload. LeaderID zero or absent
// means independent.
type VoterRequest struct {
	CedulaVotante string  `json:"cedula_votante" binding:"required"`
	Nombres       string  `json:"nombres" binding:"required"`
	Apellidos     string  `json:"apellidos" binding:"required"`
	DondeVota     string  `json:"donde_vota"`
	MesaVotacion  string  `json:"mesa_votacion"`
	LeaderID      *uint64 `json:"leader_id"`
}

func (req VoterRequest) toInput() services.VoterInput {
	leaderID := req.LeaderID
	if leaderID != nil && *leaderID == 0 {
		leaderID = nil
	}
	return services.VoterInput{
		CedulaVotante: req.CedulaVotante,
		Nombres:       req.Nombres,
		Apellidos:     req.Apellidos,
		DondeVota:     req.DondeVota,
		MesaVotacion:  req.MesaVotacion,
		LeaderID:      leaderID,
	}
}

// voterFilterFromQuery assembles the voter filter from query-string
// parameters. Values are trimmed; a blank value means no constraint,
// and malformed values degrade to no constraint.
func voterFilterFromQuery(c *gin.Context) repository.VoterFilter {
	return repository.VoterFilter{
		Leader:  repository.ParseLeaderSelector(c.Query("leader")),
		Colegio: strings.TrimSpace(c.Query("colegio")),
		Mesa:    strings.TrimSpace(c.Query("mesa")),
		Query:   strings.TrimSpace(c.Query("q")),
	}
}

// ListVoters returns the pending/confirmed attendance listing for the
// requested filter
func (h *VoterHandler) ListVoters(c *gin.Context) {
	filter := voterFilterFromQuery(c)

	listing, err := h.voterService.ListVoters(filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to list voters")
		return
	}

	colegios, err := h.voterService.Colegios()
	if err != nil {
		apierrors.InternalError(c, "Failed to list colegios")
		return
	}

	c.JSON(http.StatusOK, dto.VoterListResponse{
		Pending:   dto.ToVoterDTOs(listing.Pending),
		Confirmed: dto.ToVoterDTOs(listing.Confirmed),
		Colegios:  colegios,
	})
}

// GetVoter returns one voter with its leader and check-in history
func (h *VoterHandler) GetVoter(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid voter id")
		return
	}

	voter, err := h.voterService.GetVoter(id)
	if err != nil {
		respondVoterError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToVoterDTO(*voter))
}

// CreateVoter creates a voter
func (h *VoterHandler) CreateVoter(c *gin.Context) {
	var req VoterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	voter, err := h.voterService.CreateVoter(req.toInput())
	if err != nil {
		respondVoterError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"voter":   dto.ToVoterDTO(*voter),
		"message": "Votante creado.",
		"tone":    "success",
	})
}

// UpdateVoter updates a voter
func (h *VoterHandler) UpdateVoter(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid voter id")
		return
	}

	var req VoterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	voter, err := h.voterService.UpdateVoter(id, req.toInput())
	if err != nil {
		respondVoterError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"voter":   dto.ToVoterDTO(*voter),
		"message": "Votante actualizado.",
		"tone":    "success",
	})
}

// DeleteVoter deletes a voter
func (h *VoterHandler) DeleteVoter(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid voter id")
		return
	}

	if err := h.voterService.DeleteVoter(id); err != nil {
		respondVoterError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Votante eliminado.",
		"tone":    "info",
	})
}

// ToggleCheckIn flips a voter's attendance state
func (h *VoterHandler) ToggleCheckIn(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid voter id")
		return
	}

	nowCheckedIn, err := h.voterService.ToggleCheckIn(id, userID)
	if err != nil {
		respondVoterError(c, err)
		return
	}

	message := "Votante desmarcado."
	tone := "info"
	if nowCheckedIn {
		message = "Votante confirmado."
		tone = "success"
	}
	c.JSON(http.StatusOK, gin.H{
		"checked_in": nowCheckedIn,
		"message":    message,
		"tone":       tone,
	})
}

// ListColegios returns the known polling places
func (h *VoterHandler) ListColegios(c *gin.Context) {
	colegios, err := h.voterService.Colegios()
	if err != nil {
		apierrors.InternalError(c, "Failed to list colegios")
		return
	}
	c.JSON(http.StatusOK, gin.H{"colegios": colegios})
}

// ListMesas returns the known tables of a polling place
func (h *VoterHandler) ListMesas(c *gin.Context) {
	mesas, err := h.voterService.Mesas(c.Query("colegio"))
	if err != nil {
		apierrors.InternalError(c, "Failed to list mesas")
		return
	}
	c.JSON(http.StatusOK, gin.H{"mesas": mesas})
}

func respondVoterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrVoterNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrVoterCedulaTaken):
		apierrors.AlreadyExists(c, err.Error())
	case errors.Is(err, services.ErrVoterCedula),
		errors.Is(err, services.ErrVoterNombres),
		errors.Is(err, services.ErrVoterApellidos),
		errors.Is(err, services.ErrInvalidLeader):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
