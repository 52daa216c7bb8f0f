package model

import "gorm.io/gorm"

// Company limits
const (
	MinCompanyNameLength = 3
	MaxCompanyNameLength = 50
	MaxSlugLength        = 100
)

// Company tenant root, table companies. Owned one-to-one by a Company user.
type Company struct {
	CompanyID           string `gorm:"size:36;primaryKey"              json:"company_id"`
	UserID              string `gorm:"size:36;not null;uniqueIndex"    json:"user_id"`
	CompanyName         string `gorm:"size:50;not null"                json:"company_name"`
	Slug                string `gorm:"size:100;not null;uniqueIndex"   json:"slug"`
	DaysOffPerYear      int    `gorm:"not null;default:0"              json:"days_off_per_year"`
	TransferableDaysOff int    `gorm:"not null;default:0"              json:"transferable_days_off"`
	VersionedModel

	Profiles []Profile `gorm:"foreignKey:CompanyID;references:CompanyID" json:"-"`
}

// TableName table name
func (Company) TableName() string { return "companies" }

// BeforeCreate assigns the id.
func (c *Company) BeforeCreate(_ *gorm.DB) error {
	newID(&c.CompanyID)
	return nil
}
