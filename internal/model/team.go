package model

import "gorm.io/gorm"

// Team limits
const (
	MinTeamNameLength = 3
	MaxTeamNameLength = 50
)

// Team group of employees under a manager, table teams
type Team struct {
	TeamID         string  `gorm:"size:36;primaryKey"        json:"team_id"`
	CompanyID      string  `gorm:"size:36;not null;index"    json:"company_id"`
	Name           string  `gorm:"size:50;not null"          json:"name"`
	ManagerID      *string `gorm:"size:36;uniqueIndex"       json:"manager_id,omitempty"`
	ShiftPatternID *string `gorm:"size:36;index"             json:"shift_pattern_id,omitempty"`
	VersionedModel

	Manager      *Profile      `gorm:"foreignKey:ManagerID;references:ProfileID"        json:"manager,omitempty"`
	ShiftPattern *ShiftPattern `gorm:"foreignKey:ShiftPatternID;references:PatternID"   json:"shift_pattern,omitempty"`
	Members      []Profile     `gorm:"foreignKey:TeamID;references:TeamID"              json:"members,omitempty"`
}

// TableName table name
func (Team) TableName() string { return "teams" }

// BeforeCreate assigns the id.
func (t *Team) BeforeCreate(_ *gorm.DB) error {
	newID(&t.TeamID)
	return nil
}

// All returns every model in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Company{},
		&Profile{},
		&ShiftPattern{},
		&ShiftBlock{},
		&ShiftAssignment{},
		&Team{},
	}
}
