package dto

// ── shift patterns ──

// ShiftBlockRequest one block: either selected_days or days_on + days_off
type ShiftBlockRequest struct {
	SelectedDays    []int  `json:"selected_days"    binding:"omitempty,max=7,dive,min=1,max=7"`
	DaysOn          *int   `json:"days_on"          binding:"omitempty,min=1,max=28"`
	DaysOff         *int   `json:"days_off"         binding:"omitempty,min=1,max=28"`
	StartTime       string `json:"start_time"       binding:"required,datetime=15:04"`
	EndTime         string `json:"end_time"         binding:"required,datetime=15:04"`
	DurationMinutes *int   `json:"duration_minutes" binding:"omitempty,min=1,max=1440"`
	Order           int    `json:"order"            binding:"min=0"`
}

// CreatePatternRequest pattern with its blocks
type CreatePatternRequest struct {
	Name          string              `json:"name"           binding:"required,min=3,max=50"`
	Description   string              `json:"description"    binding:"max=2000"`
	StartDate     string              `json:"start_date"     binding:"omitempty,datetime=2006-01-02"`
	RotationWeeks int                 `json:"rotation_weeks" binding:"omitempty,min=1,max=52"`
	Blocks        []ShiftBlockRequest `json:"blocks"         binding:"omitempty,dive"`
}

// UpdatePatternRequest a nil field is left unchanged; a non-nil blocks list replaces all blocks
type UpdatePatternRequest struct {
	Name          *string             `json:"name"           binding:"omitempty,min=3,max=50"`
	Description   *string             `json:"description"    binding:"omitempty,max=2000"`
	StartDate     *string             `json:"start_date"     binding:"omitempty,datetime=2006-01-02"`
	RotationWeeks *int                `json:"rotation_weeks" binding:"omitempty,min=1,max=52"`
	Blocks        []ShiftBlockRequest `json:"blocks"         binding:"omitempty,dive"`
	Version       int                 `json:"version"        binding:"omitempty,min=1"`
}

// PreviewRequest expands an unsaved pattern over [from, to]
type PreviewRequest struct {
	StartDate string              `json:"start_date" binding:"required,datetime=2006-01-02"`
	From      string              `json:"from"       binding:"required,datetime=2006-01-02"`
	To        string              `json:"to"         binding:"required,datetime=2006-01-02"`
	Blocks    []ShiftBlockRequest `json:"blocks"     binding:"required,min=1,dive"`
}

// AssignmentRangeQuery optional date window, defaults to the generation horizon
type AssignmentRangeQuery struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to"   binding:"omitempty,datetime=2006-01-02"`
}

// PatternListRequest list filter
type PatternListRequest struct {
	PaginationRequest
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// ShiftBlockResponse stored block
type ShiftBlockResponse struct {
	BlockID         string `json:"block_id,omitempty"`
	Kind            string `json:"kind"`
	WorkingDays     []int  `json:"working_days"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
	Order           int    `json:"order"`
}

// PatternResponse stored pattern
type PatternResponse struct {
	PatternID     string               `json:"pattern_id"`
	Name          string               `json:"name"`
	Description   string               `json:"description,omitempty"`
	StartDate     string               `json:"start_date"`
	RotationWeeks int                  `json:"rotation_weeks"`
	Blocks        []ShiftBlockResponse `json:"blocks"`
	Version       int                  `json:"version"`
	CreatedAt     string               `json:"created_at"`
}

// AssignmentResponse one working day
type AssignmentResponse struct {
	Date            string `json:"date"`
	Weekday         string `json:"weekday"`
	BlockID         string `json:"block_id,omitempty"`
	Order           int    `json:"order"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
}

// GenerateResponse outcome of a generation run
type GenerateResponse struct {
	PatternID string `json:"pattern_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Expanded  int    `json:"expanded"` // working days in the horizon
	Inserted  int64  `json:"inserted"` // rows not present before
}
