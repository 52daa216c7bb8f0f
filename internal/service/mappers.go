package service

import (
	"time"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/dto"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/model"
)

// ── model → dto ──

func toMeResponse(user *model.User) dto.MeResponse {
	return dto.MeResponse{
		UserID:             user.UserID,
		Email:              user.Email,
		UserType:           user.UserType,
		Slug:               user.Slug(),
		DisplayName:        user.DisplayName(),
		CompanyID:          user.CompanyID(),
		MustChangePassword: user.MustChangePassword,
	}
}

func toProfileResponse(p *model.Profile) dto.ProfileResponse {
	resp := dto.ProfileResponse{
		ProfileID:      p.ProfileID,
		UserID:         p.UserID,
		Slug:           p.Slug,
		Role:           p.Role,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		FullName:       p.FullName(),
		EmployeeID:     p.EmployeeID,
		ManagedByID:    p.ManagedByID,
		DateOfHire:     p.DateOfHire.String(),
		DaysOffLeft:    p.DaysOffLeft,
		PhoneNumber:    p.PhoneNumber,
		Address:        p.Address,
		ProfilePicture: p.ProfilePicture,
		ManagesTeam:    p.ManagesTeam,
		TeamID:         p.TeamID,
		Version:        p.Version,
	}
	if p.User != nil {
		resp.Email = p.User.Email
		resp.IsActive = p.User.IsActive
	}
	if p.ManagedBy != nil {
		resp.ManagedByName = p.ManagedBy.FullName()
	}
	if p.DateOfBirth != nil && !p.DateOfBirth.IsZero() {
		s := p.DateOfBirth.String()
		resp.DateOfBirth = &s
	}
	return resp
}

func toCompanyResponse(c *model.Company, email string) dto.CompanyResponse {
	return dto.CompanyResponse{
		CompanyID:           c.CompanyID,
		UserID:              c.UserID,
		CompanyName:         c.CompanyName,
		Slug:                c.Slug,
		Email:               email,
		DaysOffPerYear:      c.DaysOffPerYear,
		TransferableDaysOff: c.TransferableDaysOff,
		Version:             c.Version,
	}
}

// groupMembers splits company profiles by role.
func groupMembers(company dto.CompanyResponse, profiles []model.Profile) *dto.MembersResponse {
	resp := &dto.MembersResponse{
		Company:   company,
		HRs:       []dto.ProfileResponse{},
		Managers:  []dto.ProfileResponse{},
		Employees: []dto.ProfileResponse{},
	}
	for i := range profiles {
		p := toProfileResponse(&profiles[i])
		switch profiles[i].Role {
		case model.UserTypeHR:
			resp.HRs = append(resp.HRs, p)
		case model.UserTypeManager:
			resp.Managers = append(resp.Managers, p)
		default:
			resp.Employees = append(resp.Employees, p)
		}
	}
	return resp
}

func toProfileSummary(p *model.Profile) dto.ProfileSummary {
	return dto.ProfileSummary{
		ProfileID:  p.ProfileID,
		Slug:       p.Slug,
		FullName:   p.FullName(),
		Role:       p.Role,
		EmployeeID: p.EmployeeID,
	}
}

func toBlockResponse(b *model.ShiftBlock) dto.ShiftBlockResponse {
	days := make([]int, len(b.WorkingDays))
	copy(days, b.WorkingDays)
	return dto.ShiftBlockResponse{
		BlockID:         b.BlockID,
		Kind:            b.Kind,
		WorkingDays:     days,
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		DurationMinutes: b.DurationMinutes,
		Order:           b.Order,
	}
}

func toPatternResponse(p *model.ShiftPattern) dto.PatternResponse {
	blocks := make([]dto.ShiftBlockResponse, 0, len(p.Blocks))
	for i := range p.Blocks {
		blocks = append(blocks, toBlockResponse(&p.Blocks[i]))
	}
	return dto.PatternResponse{
		PatternID:     p.PatternID,
		Name:          p.Name,
		Description:   p.Description,
		StartDate:     p.StartDate.String(),
		RotationWeeks: p.RotationWeeks,
		Blocks:        blocks,
		Version:       p.Version,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
}

func toAssignmentResponse(date model.Date, b *model.ShiftBlock) dto.AssignmentResponse {
	resp := dto.AssignmentResponse{
		Date:    date.String(),
		Weekday: date.Weekday().String(),
	}
	if b != nil {
		resp.BlockID = b.BlockID
		resp.Order = b.Order
		resp.StartTime = b.StartTime
		resp.EndTime = b.EndTime
		resp.DurationMinutes = b.DurationMinutes
	}
	return resp
}

func toTeamResponse(t *model.Team) dto.TeamResponse {
	resp := dto.TeamResponse{
		TeamID:  t.TeamID,
		Name:    t.Name,
		Members: make([]dto.ProfileSummary, 0, len(t.Members)),
		Version: t.Version,
	}
	if t.Manager != nil {
		m := toProfileSummary(t.Manager)
		resp.Manager = &m
	}
	if t.ShiftPattern != nil {
		resp.ShiftPattern = &dto.PatternSummary{PatternID: t.ShiftPattern.PatternID, Name: t.ShiftPattern.Name}
	}
	for i := range t.Members {
		resp.Members = append(resp.Members, toProfileSummary(&t.Members[i]))
	}
	return resp
}
