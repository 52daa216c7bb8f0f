package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/dto"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/service"
	pkgerrors "github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/errors"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ShiftHandler shift patterns and assignments
type ShiftHandler struct {
	shiftSvc service.ShiftService
}

// NewShiftHandler creates a ShiftHandler
func NewShiftHandler(shiftSvc service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftSvc: shiftSvc}
}

// ListPatterns
// GET /api/v1/shift-patterns
func (h *ShiftHandler) ListPatterns(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.PatternListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	patterns, total, err := h.shiftSvc.ListPatterns(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OKPage(c, patterns, total, req.GetPage(), req.GetPageSize())
}

// CreatePattern creates a pattern and generates its assignments
// POST /api/v1/shift-patterns
func (h *ShiftHandler) CreatePattern(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreatePatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	pattern, err := h.shiftSvc.CreatePattern(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.Created(c, pattern)
}

// GetPattern
// GET /api/v1/shift-patterns/:id
func (h *ShiftHandler) GetPattern(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	pattern, err := h.shiftSvc.GetPattern(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, pattern)
}

// UpdatePattern
// PUT /api/v1/shift-patterns/:id
func (h *ShiftHandler) UpdatePattern(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdatePatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	pattern, err := h.shiftSvc.UpdatePattern(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, pattern)
}

// DeletePattern
// DELETE /api/v1/shift-patterns/:id
func (h *ShiftHandler) DeletePattern(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.shiftSvc.DeletePattern(c.Request.Context(), caller, c.Param("id")); err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, nil)
}

// Generate fills missing assignments up to the horizon
// POST /api/v1/shift-patterns/:id/generate
func (h *ShiftHandler) Generate(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.shiftSvc.Generate(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, result)
}

// ListAssignments
// GET /api/v1/shift-patterns/:id/assignments?from=&to=
func (h *ShiftHandler) ListAssignments(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var q dto.AssignmentRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	rows, err := h.shiftSvc.ListAssignments(c.Request.Context(), caller, c.Param("id"), &q)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, gin.H{"list": rows})
}

// Preview expands an unsaved pattern
// POST /api/v1/shift-patterns/preview
func (h *ShiftHandler) Preview(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	rows, err := h.shiftSvc.Preview(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, gin.H{"list": rows})
}

// ExportAssignments downloads the assignments as .xlsx
// GET /api/v1/shift-patterns/:id/export?from=&to=
func (h *ShiftHandler) ExportAssignments(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var q dto.AssignmentRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	buf, filename, err := h.shiftSvc.ExportAssignments(c.Request.Context(), caller, c.Param("id"), &q)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// handleShiftError maps scheduling errors to responses
func (h *ShiftHandler) handleShiftError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotAllowed):
		response.Forbidden(c, response.CodeForbidden, err.Error())
	case errors.Is(err, service.ErrNoCompany):
		response.Forbidden(c, 13001, err.Error())
	case errors.Is(err, service.ErrPatternNotFound):
		response.NotFound(c, 13002, err.Error())
	case errors.Is(err, service.ErrPatternNameExists):
		response.Conflict(c, 13003, err.Error())
	case errors.Is(err, service.ErrBlockDaysRequired),
		errors.Is(err, service.ErrBlockTooLong),
		errors.Is(err, service.ErrInvalidShiftTime),
		errors.Is(err, service.ErrEmptyCycle):
		response.BadRequest(c, 13004, err.Error())
	case errors.Is(err, service.ErrPatternStartNotMonday):
		response.BadRequest(c, 13005, err.Error())
	case errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 13006, err.Error())
	case errors.Is(err, service.ErrPreviewRangeTooLong):
		response.BadRequest(c, 13007, err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, response.CodeConflict, err.Error())
	default:
		response.InternalError(c)
	}
}
