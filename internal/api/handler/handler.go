package handler

import "github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/service"

// Handler groups every HTTP handler.
type Handler struct {
	Auth    *AuthHandler
	Account *AccountHandler
	Shift   *ShiftHandler
	Team    *TeamHandler
}

// NewHandler creates the handler aggregate.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(svc.Auth),
		Account: NewAccountHandler(svc.Account),
		Shift:   NewShiftHandler(svc.Shift),
		Team:    NewTeamHandler(svc.Team),
	}
}
