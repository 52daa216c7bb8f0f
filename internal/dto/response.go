package dto

// ── auth responses ──

// TokenResponse token pair with the signed in user
type TokenResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int64      `json:"expires_in"` // access token lifetime in seconds
	User         MeResponse `json:"user"`
}

// MeResponse the caller as shown on the index page
type MeResponse struct {
	UserID             string `json:"user_id"`
	Email              string `json:"email"`
	UserType           string `json:"user_type"`
	Slug               string `json:"slug"`
	DisplayName        string `json:"display_name"`
	CompanyID          string `json:"company_id,omitempty"`
	MustChangePassword bool   `json:"must_change_password"`
}

// PermissionsResponse permissions held by the caller
type PermissionsResponse struct {
	UserType    string   `json:"user_type"`
	Permissions []string `json:"permissions"`
}

// ── pagination ──

// PaginationRequest common page parameters
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage page number, default 1
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize page size, default 20
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset row offset of the page
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}
