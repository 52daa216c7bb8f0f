package dto

// ── members ──

// SignupEmployeeRequest registers an HR, Manager or Employee in the caller's company
type SignupEmployeeRequest struct {
	FirstName   string  `json:"first_name"    binding:"required,min=2,max=30"`
	LastName    string  `json:"last_name"     binding:"required,min=2,max=30"`
	Email       string  `json:"email"         binding:"required,email,max=254"`
	EmployeeID  string  `json:"employee_id"   binding:"required,min=1,max=20"`
	DateOfHire  string  `json:"date_of_hire"  binding:"omitempty,datetime=2006-01-02"`
	Role        string  `json:"role"          binding:"required,oneof=Employee Manager HR"`
	ManagedBy   *string `json:"managed_by"    binding:"omitempty,max=36"`
	DaysOffLeft int     `json:"days_off_left" binding:"min=0"`
	ManagesTeam *string `json:"manages_team"  binding:"omitempty,min=3,max=50"`
}

// SignupEmployeeResponse created member with its one-time password
type SignupEmployeeResponse struct {
	Member       ProfileResponse `json:"member"`
	TempPassword string          `json:"temp_password"`
}

// ImportMembersResponse result of a spreadsheet import
type ImportMembersResponse struct {
	Total   int              `json:"total"`
	Success int              `json:"success"`
	Failed  int              `json:"failed"`
	Errors  []ImportRowError `json:"errors,omitempty"`
	Created []ImportedMember `json:"created,omitempty"`
}

// ImportRowError why a row was skipped
type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportedMember created row with its one-time password
type ImportedMember struct {
	Row          int    `json:"row"`
	Email        string `json:"email"`
	Slug         string `json:"slug"`
	TempPassword string `json:"temp_password"`
}

// ── profiles ──

// UpdateOwnProfileRequest partial edit of the caller's own account.
// Company users may change company_name; profile users the contact fields.
type UpdateOwnProfileRequest struct {
	Email          *string `json:"email"           binding:"omitempty,email,max=254"`
	CompanyName    *string `json:"company_name"    binding:"omitempty,min=3,max=50"`
	PhoneNumber    *string `json:"phone_number"    binding:"omitempty,max=15"`
	Address        *string `json:"address"         binding:"omitempty,max=200"`
	DateOfBirth    *string `json:"date_of_birth"   binding:"omitempty,datetime=2006-01-02"`
	ProfilePicture *string `json:"profile_picture" binding:"omitempty,url,max=500"`
}

// FullUpdateProfileRequest edit of any account of the company by HR or Company users
type FullUpdateProfileRequest struct {
	Email    *string `json:"email"     binding:"omitempty,email,max=254"`
	IsActive *bool   `json:"is_active"`

	FirstName      *string `json:"first_name"      binding:"omitempty,min=2,max=30"`
	LastName       *string `json:"last_name"       binding:"omitempty,min=2,max=30"`
	EmployeeID     *string `json:"employee_id"     binding:"omitempty,min=1,max=20"`
	ManagedBy      *string `json:"managed_by"      binding:"omitempty,max=36"` // "" clears
	DateOfHire     *string `json:"date_of_hire"    binding:"omitempty,datetime=2006-01-02"`
	DaysOffLeft    *int    `json:"days_off_left"   binding:"omitempty,min=0"`
	PhoneNumber    *string `json:"phone_number"    binding:"omitempty,max=15"`
	Address        *string `json:"address"         binding:"omitempty,max=200"`
	DateOfBirth    *string `json:"date_of_birth"   binding:"omitempty,datetime=2006-01-02"`
	ProfilePicture *string `json:"profile_picture" binding:"omitempty,url,max=500"`
	ManagesTeam    *string `json:"manages_team"    binding:"omitempty,min=3,max=50"`

	CompanyName         *string `json:"company_name"          binding:"omitempty,min=3,max=50"`
	DaysOffPerYear      *int    `json:"days_off_per_year"     binding:"omitempty,min=0"`
	TransferableDaysOff *int    `json:"transferable_days_off" binding:"omitempty,min=0"`

	// Version, when set, must match the stored row
	Version int `json:"version" binding:"omitempty,min=1"`
}

// ProfileResponse HR / Manager / Employee profile
type ProfileResponse struct {
	ProfileID      string  `json:"profile_id"`
	UserID         string  `json:"user_id"`
	Slug           string  `json:"slug"`
	Role           string  `json:"role"`
	Email          string  `json:"email"`
	IsActive       bool    `json:"is_active"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	FullName       string  `json:"full_name"`
	EmployeeID     string  `json:"employee_id"`
	ManagedByID    *string `json:"managed_by_id,omitempty"`
	ManagedByName  string  `json:"managed_by_name,omitempty"`
	DateOfHire     string  `json:"date_of_hire"`
	DaysOffLeft    int     `json:"days_off_left"`
	PhoneNumber    *string `json:"phone_number,omitempty"`
	Address        *string `json:"address,omitempty"`
	DateOfBirth    *string `json:"date_of_birth,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	ManagesTeam    *string `json:"manages_team,omitempty"`
	TeamID         *string `json:"team_id,omitempty"`
	Version        int     `json:"version"`
}

// CompanyResponse company account
type CompanyResponse struct {
	CompanyID           string `json:"company_id"`
	UserID              string `json:"user_id"`
	CompanyName         string `json:"company_name"`
	Slug                string `json:"slug"`
	Email               string `json:"email"`
	DaysOffPerYear      int    `json:"days_off_per_year"`
	TransferableDaysOff int    `json:"transferable_days_off"`
	Version             int    `json:"version"`
}

// MembersResponse company with its members grouped by role
type MembersResponse struct {
	Company   CompanyResponse   `json:"company"`
	HRs       []ProfileResponse `json:"hrs"`
	Managers  []ProfileResponse `json:"managers"`
	Employees []ProfileResponse `json:"employees"`
}

// ProfileDetailResponse profile page: the user, its profile or company, and the company members
type ProfileDetailResponse struct {
	UserID   string           `json:"user_id"`
	Email    string           `json:"email"`
	UserType string           `json:"user_type"`
	IsActive bool             `json:"is_active"`
	Slug     string           `json:"slug"`
	Profile  *ProfileResponse `json:"profile,omitempty"`
	Company  *CompanyResponse `json:"company,omitempty"`
	Members  *MembersResponse `json:"members,omitempty"`
}
