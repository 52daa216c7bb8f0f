package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/dto"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/service"
	pkgerrors "github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/errors"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/response"
)

// TeamHandler teams of a company
type TeamHandler struct {
	teamSvc service.TeamService
}

// NewTeamHandler creates a TeamHandler
func NewTeamHandler(teamSvc service.TeamService) *TeamHandler {
	return &TeamHandler{teamSvc: teamSvc}
}

// ListTeams
// GET /api/v1/teams
func (h *TeamHandler) ListTeams(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	teams, err := h.teamSvc.ListTeams(c.Request.Context(), caller)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, gin.H{"list": teams})
}

// CreateTeam
// POST /api/v1/teams
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	team, err := h.teamSvc.CreateTeam(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.Created(c, team)
}

// GetTeam
// GET /api/v1/teams/:id
func (h *TeamHandler) GetTeam(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	team, err := h.teamSvc.GetTeam(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, team)
}

// UpdateTeam
// PUT /api/v1/teams/:id
func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	team, err := h.teamSvc.UpdateTeam(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, team)
}

// DeleteTeam
// DELETE /api/v1/teams/:id
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.teamSvc.DeleteTeam(c.Request.Context(), caller, c.Param("id")); err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, nil)
}

// SetMembers replaces the team membership
// PUT /api/v1/teams/:id/members
func (h *TeamHandler) SetMembers(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.SetTeamMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	team, err := h.teamSvc.SetMembers(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, team)
}

// handleTeamError maps team errors to responses
func (h *TeamHandler) handleTeamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotAllowed):
		response.Forbidden(c, response.CodeForbidden, err.Error())
	case errors.Is(err, service.ErrNoCompany):
		response.Forbidden(c, 14001, err.Error())
	case errors.Is(err, service.ErrTeamNotFound):
		response.NotFound(c, 14002, err.Error())
	case errors.Is(err, service.ErrInvalidTeamManager):
		response.BadRequest(c, 14003, err.Error())
	case errors.Is(err, service.ErrManagerHasTeam):
		response.Conflict(c, 14004, err.Error())
	case errors.Is(err, service.ErrInvalidTeamMember):
		response.BadRequest(c, 14005, err.Error())
	case errors.Is(err, service.ErrPatternNotFound):
		response.NotFound(c, 14006, err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, response.CodeConflict, err.Error())
	default:
		response.InternalError(c)
	}
}
