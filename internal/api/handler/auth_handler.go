package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/api/middleware"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/dto"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/service"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/response"
)

// AuthHandler sign-up, login and token endpoints
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// SignupCompany registers a company and signs its owner in
// POST /api/v1/auth/signup/company
func (h *AuthHandler) SignupCompany(c *gin.Context) {
	var req dto.SignupCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	signedIn := c.GetString(middleware.CtxUserID) != ""
	result, err := h.authSvc.SignupCompany(c.Request.Context(), &req, signedIn)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.Created(c, result)
}

// Login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// RefreshToken exchanges a refresh token for a new pair
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout revokes the access token
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), claims.ID, claims.Remaining()); err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, nil)
}

// ChangePassword
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), caller.UserID, &req); err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, nil)
}

// Me the signed in user, for the index page
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	me, err := h.authSvc.Me(c.Request.Context(), caller.UserID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, me)
}

// Permissions held by the caller
// GET /api/v1/auth/permissions
func (h *AuthHandler) Permissions(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	response.OK(c, h.authSvc.Permissions(caller.UserType))
}

// handleAuthError maps auth errors to responses
func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAlreadyAuthenticated):
		response.BadRequest(c, 11001, err.Error())
	case errors.Is(err, service.ErrEmailExists):
		response.Conflict(c, 11002, err.Error())
	case errors.Is(err, service.ErrPasswordMismatch):
		response.BadRequest(c, 11003, err.Error())
	case errors.Is(err, service.ErrPasswordTooShort):
		response.BadRequest(c, 11004, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 11005, err.Error())
	case errors.Is(err, service.ErrUserInactive):
		response.Forbidden(c, 11006, err.Error())
	case errors.Is(err, service.ErrInvalidRefreshToken):
		response.Unauthorized(c, 11007, err.Error())
	case errors.Is(err, service.ErrTokenRevoked):
		response.Unauthorized(c, 11008, err.Error())
	case errors.Is(err, service.ErrOldPasswordMismatch):
		response.BadRequest(c, 11009, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11010, err.Error())
	default:
		response.InternalError(c)
	}
}
