package model

import "gorm.io/gorm"

// Profile limits
const (
	MinNameLength        = 2
	MaxNameLength        = 30
	MaxEmployeeIDLength  = 20
	MaxPhoneNumberLength = 15
	MaxAddressLength     = 200
	MinManagesTeamLength = 3
	MaxManagesTeamLength = 50
)

// Profile HR / Manager / Employee record, table profiles.
// Role tags the variant; ManagesTeam only applies to managers.
type Profile struct {
	ProfileID      string  `gorm:"size:36;primaryKey"                                         json:"profile_id"`
	UserID         string  `gorm:"size:36;not null;uniqueIndex"                               json:"user_id"`
	CompanyID      string  `gorm:"size:36;not null;index;uniqueIndex:idx_profile_company_emp" json:"company_id"`
	Role           string  `gorm:"size:20;not null"                                           json:"role"`
	Slug           string  `gorm:"size:100;not null;uniqueIndex"                              json:"slug"`
	FirstName      string  `gorm:"size:30;not null"                                           json:"first_name"`
	LastName       string  `gorm:"size:30;not null"                                           json:"last_name"`
	EmployeeID     string  `gorm:"size:20;not null;uniqueIndex:idx_profile_company_emp"       json:"employee_id"`
	ManagedByID    *string `gorm:"size:36;index"                                              json:"managed_by_id,omitempty"`
	DateOfHire     Date    `gorm:"not null"                                                   json:"date_of_hire"`
	DaysOffLeft    int     `gorm:"not null;default:0"                                         json:"days_off_left"`
	PhoneNumber    *string `gorm:"size:15"                                                    json:"phone_number,omitempty"`
	Address        *string `gorm:"size:200"                                                   json:"address,omitempty"`
	DateOfBirth    *Date   `json:"date_of_birth,omitempty"`
	ProfilePicture *string `gorm:"size:500"                                                   json:"profile_picture,omitempty"`
	ManagesTeam    *string `gorm:"size:50"                                                    json:"manages_team,omitempty"`
	TeamID         *string `gorm:"size:36;index"                                              json:"team_id,omitempty"`
	VersionedModel

	// The key names exist on both sides, so gorm reads these two as has-one.
	// The profiles -> users/companies keys come from User.Profile and
	// Company.Profiles instead.
	User      *User    `gorm:"foreignKey:UserID;references:UserID;constraint:-"       json:"user,omitempty"`
	Company   *Company `gorm:"foreignKey:CompanyID;references:CompanyID;constraint:-" json:"-"`
	ManagedBy *Profile `gorm:"foreignKey:ManagedByID;references:ProfileID"            json:"managed_by,omitempty"`
}

// TableName table name
func (Profile) TableName() string { return "profiles" }

// BeforeCreate assigns the id.
func (p *Profile) BeforeCreate(_ *gorm.DB) error {
	newID(&p.ProfileID)
	return nil
}

// FullName "first last"
func (p *Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}

// IsManager reports whether the profile can manage other profiles.
func (p *Profile) IsManager() bool { return p.Role == UserTypeManager }
