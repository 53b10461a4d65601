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

// LeaderHandler coordinates leader HTTP handlers
type LeaderHandler struct {
	leaderService *services.LeaderService
}

// NewLeaderHandler creates a new LeaderHandler
func NewLeaderHandler(leaderService *services.LeaderService) *LeaderHandler {
	return &LeaderHandler{
		leaderService: leaderService,
	}
}

// LeaderRequest is the create/update payload
type LeaderRequest struct {
	NombresLider   string `json:"nombres_lider" binding:"required"`
	ApellidosLider string `json:"apellidos_lider" binding:"required"`
	CedulaLider    string `json:"cedula_lider"`
	Telefono       string `json:"telefono"`
	ZonaBarrio     string `json:"zona_barrio"`
	Notas          string `json:"notas"`
}

func (req LeaderRequest) toInput() services.LeaderInput {
	return services.LeaderInput{
		NombresLider:   req.NombresLider,
		ApellidosLider: req.ApellidosLider,
		CedulaLider:    req.CedulaLider,
		Telefono:       req.Telefono,
		ZonaBarrio:     req.ZonaBarrio,
		Notas:          req.Notas,
	}
}

// ListLeaders returns all leaders, optionally filtered by free text
func (h *LeaderHandler) ListLeaders(c *gin.Context) {
	filter := repository.LeaderFilter{
		Query: strings.TrimSpace(c.Query("q")),
	}

	leaders, err := h.leaderService.ListLeaders(filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to list leaders")
		return
	}

	out := make([]dto.LeaderDTO, 0, len(leaders))
	for _, l := range leaders {
		out = append(out, dto.ToLeaderDTO(l))
	}
	c.JSON(http.StatusOK, gin.H{"leaders": out})
}

// GetLeader returns one leader with its voters and check-in history
func (h *LeaderHandler) GetLeader(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid leader id")
		return
	}

	leader, err := h.leaderService.GetLeader(id)
	if err != nil {
		respondLeaderError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToLeaderDTO(*leader))
}

// CreateLeader creates a leader
func (h *LeaderHandler) CreateLeader(c *gin.Context) {
	var req LeaderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	leader, err := h.leaderService.CreateLeader(req.toInput())
	if err != nil {
		respondLeaderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"leader":  dto.ToLeaderDTO(*leader),
		"message": "Líder creado.",
		"tone":    "success",
	})
}

// UpdateLeader updates a leader
func (h *LeaderHandler) UpdateLeader(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid leader id")
		return
	}

	var req LeaderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	leader, err := h.leaderService.UpdateLeader(id, req.toInput())
	if err != nil {
		respondLeaderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leader":  dto.ToLeaderDTO(*leader),
		"message": "Líder actualizado.",
		"tone":    "success",
	})
}

// DeleteLeader deletes a leader without voters. Deletion is refused
// with a warning tone while voters remain assigned.
func (h *LeaderHandler) DeleteLeader(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid leader id")
		return
	}

	if err := h.leaderService.DeleteLeader(id); err != nil {
		if errors.Is(err, services.ErrLeaderHasVoters) {
			c.JSON(http.StatusConflict, gin.H{
				"code":    apierrors.ErrCodeConflict,
				"message": err.Error(),
				"tone":    "warning",
			})
			return
		}
		respondLeaderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Líder eliminado.",
		"tone":    "info",
	})
}

// ToggleCheckIn flips a leader's attendance state
func (h *LeaderHandler) ToggleCheckIn(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid leader id")
		return
	}

	nowCheckedIn, err := h.leaderService.ToggleCheckIn(id, userID)
	if err != nil {
		respondLeaderError(c, err)
		return
	}

	message := "Líder desmarcado."
	tone := "info"
	if nowCheckedIn {
		message = "Líder marcado como llegó."
		tone = "success"
	}
	c.JSON(http.StatusOK, gin.H{
		"checked_in": nowCheckedIn,
		"message":    message,
		"tone":       tone,
	})
}

func respondLeaderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrLeaderNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrLeaderCedulaTaken):
		apierrors.AlreadyExists(c, err.Error())
	case errors.Is(err, services.ErrLeaderNombres),
		errors.Is(err, services.ErrLeaderApellidos):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrLeaderHasVoters):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
