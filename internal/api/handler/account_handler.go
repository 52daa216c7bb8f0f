package handler

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/dto"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/service"
	pkgerrors "github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/errors"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/response"
)

// AccountHandler members and profiles
type AccountHandler struct {
	accountSvc service.AccountService
}

// NewAccountHandler creates an AccountHandler
func NewAccountHandler(accountSvc service.AccountService) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc}
}

// SignupEmployee registers an HR, Manager or Employee in the caller's company
// POST /api/v1/members
func (h *AccountHandler) SignupEmployee(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.SignupEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.accountSvc.SignupEmployee(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleAccountError(c, err)
		return
	}

	response.Created(c, result)
}

// ImportMembers creates members from an uploaded .xlsx sheet
// POST /api/v1/members/import (multipart field "file")
func (h *AccountHandler) ImportMembers(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, response.CodeValidation, "file is required")
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		response.BadRequest(c, response.CodeValidation, "only .xlsx files are accepted")
		return
	}

	file, err := header.Open()
	if err != nil {
		response.BadRequest(c, response.CodeValidation, "could not read the uploaded file")
		return
	}
	defer file.Close()

	rows, err := service.ParseMemberSheet(file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrImportNoData),
			errors.Is(err, service.ErrImportBadHeader),
			errors.Is(err, service.ErrImportTooManyRows):
			response.BadRequest(c, 12020, err.Error())
		default:
			response.BadRequest(c, 12021, "could not read the uploaded file")
		}
		return
	}

	result, err := h.accountSvc.ImportMembers(c.Request.Context(), caller, rows)
	if err != nil {
		h.handleAccountError(c, err)
		return
	}

	response.OK(c, result)
}

// CompanyMembers the caller's company with its members grouped by role
// GET /api/v1/company/members
func (h *AccountHandler) CompanyMembers(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	members, err := h.accountSvc.CompanyMembers(c.Request.Context(), caller)
	if err != nil {
		h.handleAccountError(c, err)
		return
	}

	response.OK(c, members)
}

// GetProfile profile or company page by slug
// GET /api/v1/profiles/:slug
func (h *AccountHandler) GetProfile(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	detail, err := h.accountSvc.GetProfile(c.Request.Context(), caller, c.Param("slug"))
	if err != nil {
		h.handleAccountError(c, err)
		return
	}

	response.OK(c, detail)
}

// UpdateOwnProfile edits the caller's own account
// PUT /api/v1/profiles/me
func (h *AccountHandler) UpdateOwnProfile(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateOwnProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	detail, err := h.accountSvc.UpdateOwnProfile(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleAccountError(c, err)
		return
	}

	response.OK(c, detail)
}

// FullUpdateProfile edits any account of the company
// PUT /api/v1/profiles/:slug
func (h *AccountHandler) FullUpdateProfile(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.FullUpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	detail, err := h.accountSvc.FullUpdateProfile(c.Request.Context(), caller, c.Param("slug"), &req)
	if err != nil {
		h.handleAccountError(c, err)
		return
	}

	response.OK(c, detail)
}

// handleAccountError maps account errors to responses
func (h *AccountHandler) handleAccountError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotAllowedToRegister),
		errors.Is(err, service.ErrNotAllowedToEdit),
		errors.Is(err, service.ErrNotAllowedToViewMembers):
		response.Forbidden(c, response.CodeForbidden, err.Error())
	case errors.Is(err, service.ErrRegisterWithoutCompany),
		errors.Is(err, service.ErrNoCompany):
		response.Forbidden(c, 12001, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12002, err.Error())
	case errors.Is(err, service.ErrEmailExists):
		response.Conflict(c, 12003, err.Error())
	case errors.Is(err, service.ErrEmployeeIDExists):
		response.Conflict(c, 12004, err.Error())
	case errors.Is(err, service.ErrManagedByRequired):
		response.BadRequest(c, 12005, err.Error())
	case errors.Is(err, service.ErrManagesTeamRequired):
		response.BadRequest(c, 12006, err.Error())
	case errors.Is(err, service.ErrInvalidManager):
		response.BadRequest(c, 12007, err.Error())
	case errors.Is(err, service.ErrInvalidPhoneNumber):
		response.BadRequest(c, 12008, err.Error())
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 12009, err.Error())
	case errors.Is(err, service.ErrCannotDeactivateSelf):
		response.BadRequest(c, 12010, err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, response.CodeConflict, err.Error())
	default:
		response.InternalError(c)
	}
}
