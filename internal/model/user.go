package model

import (
	"time"

	"gorm.io/gorm"
)

// User types. One per role; the value is also the permission group name.
const (
	UserTypeCompany  = "Company"
	UserTypeHR       = "HR"
	UserTypeManager  = "Manager"
	UserTypeEmployee = "Employee"
)

// UserTypes lists every valid user type.
var UserTypes = []string{UserTypeCompany, UserTypeHR, UserTypeManager, UserTypeEmployee}

// User login account, table users. Email is the login name.
type User struct {
	UserID             string     `gorm:"size:36;primaryKey"                          json:"user_id"`
	Email              string     `gorm:"size:254;not null;uniqueIndex"               json:"email"`
	PasswordHash       string     `gorm:"size:255;not null"                           json:"-"`
	UserType           string     `gorm:"size:20;not null;default:'Employee'"         json:"user_type"`
	IsActive           bool       `gorm:"not null;default:true"                       json:"is_active"`
	IsStaff            bool       `gorm:"not null;default:false"                      json:"is_staff"`
	DateJoined         time.Time  `gorm:"not null"                                    json:"date_joined"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	MustChangePassword bool       `gorm:"not null;default:false"                      json:"must_change_password"`
	VersionedModel

	// at most one of these is set, depending on UserType
	Company *Company `gorm:"foreignKey:UserID;references:UserID" json:"company,omitempty"`
	Profile *Profile `gorm:"foreignKey:UserID;references:UserID" json:"profile,omitempty"`
}

// TableName table name
func (User) TableName() string { return "users" }

// BeforeCreate assigns the id and join date.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	newID(&u.UserID)
	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now()
	}
	return nil
}

// Slug is the public identifier of the user's company or profile.
func (u *User) Slug() string {
	switch {
	case u.UserType == UserTypeCompany && u.Company != nil:
		return u.Company.Slug
	case u.UserType != UserTypeCompany && u.Profile != nil:
		return u.Profile.Slug
	}
	return ""
}

// CompanyID resolves the tenant the user belongs to, "" when unknown.
func (u *User) CompanyID() string {
	if u.Company != nil {
		return u.Company.CompanyID
	}
	if u.Profile != nil {
		return u.Profile.CompanyID
	}
	return ""
}

// DisplayName company name for Company users, full name otherwise.
func (u *User) DisplayName() string {
	if u.Company != nil {
		return u.Company.CompanyName
	}
	if u.Profile != nil {
		return u.Profile.FullName()
	}
	return ""
}
