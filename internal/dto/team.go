package dto

// ── teams ──

// CreateTeamRequest new team in the caller's company
type CreateTeamRequest struct {
	Name           string  `json:"name"             binding:"required,min=3,max=50"`
	ManagerID      *string `json:"manager_id"       binding:"omitempty,max=36"`
	ShiftPatternID *string `json:"shift_pattern_id" binding:"omitempty,max=36"`
}

// UpdateTeamRequest nil leaves a field unchanged, "" clears a reference
type UpdateTeamRequest struct {
	Name           *string `json:"name"             binding:"omitempty,min=3,max=50"`
	ManagerID      *string `json:"manager_id"       binding:"omitempty,max=36"`
	ShiftPatternID *string `json:"shift_pattern_id" binding:"omitempty,max=36"`
	Version        int     `json:"version"          binding:"omitempty,min=1"`
}

// SetTeamMembersRequest full replacement of the membership
type SetTeamMembersRequest struct {
	ProfileIDs []string `json:"profile_ids" binding:"max=500,dive,required,max=36"`
}

// ProfileSummary short profile reference
type ProfileSummary struct {
	ProfileID  string `json:"profile_id"`
	Slug       string `json:"slug"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	EmployeeID string `json:"employee_id"`
}

// PatternSummary short pattern reference
type PatternSummary struct {
	PatternID string `json:"pattern_id"`
	Name      string `json:"name"`
}

// TeamResponse team with its manager, pattern and members
type TeamResponse struct {
	TeamID       string           `json:"team_id"`
	Name         string           `json:"name"`
	Manager      *ProfileSummary  `json:"manager,omitempty"`
	ShiftPattern *PatternSummary  `json:"shift_pattern,omitempty"`
	Members      []ProfileSummary `json:"members"`
	Version      int              `json:"version"`
}
