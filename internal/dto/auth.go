package dto

// ── auth ──

// SignupCompanyRequest public company registration
type SignupCompanyRequest struct {
	CompanyName string `json:"company_name" binding:"required,min=3,max=50"`
	Email       string `json:"email"        binding:"required,email,max=254"`
	Password1   string `json:"password1"    binding:"required"`
	Password2   string `json:"password2"    binding:"required"`
}

// LoginRequest email + password
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest exchanges a refresh token for a new pair
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest change own password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,max=128"`
}
