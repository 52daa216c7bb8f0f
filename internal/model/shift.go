package model

import "gorm.io/gorm"

// Shift pattern limits
const (
	MinPatternNameLength = 3
	MaxPatternNameLength = 50
	MinRotationWeeks     = 1
	MaxRotationWeeks     = 52
	MaxDaysOnOff         = 28
	MaxWorkingDays       = 2 * MaxDaysOnOff
)

// Block kinds. A weekly block is a Monday..Sunday bitmap, a cycle block is
// days-on followed by days-off.
const (
	BlockKindWeekly = "weekly"
	BlockKindCycle  = "cycle"
)

// ShiftPattern named rotation owned by a company, table shift_patterns
type ShiftPattern struct {
	PatternID     string `gorm:"size:36;primaryKey"       json:"pattern_id"`
	CompanyID     string `gorm:"size:36;not null;index"  json:"company_id"`
	Name          string `gorm:"size:50;not null"        json:"name"`
	Description   string `gorm:"type:text"               json:"description,omitempty"`
	StartDate     Date   `gorm:"not null"                json:"start_date"`
	RotationWeeks int    `gorm:"not null;default:1"      json:"rotation_weeks"`
	VersionedModel

	Blocks []ShiftBlock `gorm:"foreignKey:PatternID;references:PatternID" json:"blocks,omitempty"`
}

// TableName table name
func (ShiftPattern) TableName() string { return "shift_patterns" }

// BeforeCreate assigns the id.
func (p *ShiftPattern) BeforeCreate(_ *gorm.DB) error {
	newID(&p.PatternID)
	return nil
}

// LiveUniqueIndexes a deleted pattern frees its name.
func (ShiftPattern) LiveUniqueIndexes() map[string][]string {
	return map[string][]string{"idx_pattern_company_name": {"company_id", "name"}}
}

// HasWeeklyBlock reports whether any block is weekday based.
func (p *ShiftPattern) HasWeeklyBlock() bool {
	for i := range p.Blocks {
		if p.Blocks[i].Kind == BlockKindWeekly {
			return true
		}
	}
	return false
}

// ShiftBlock one working/off-day bitmap of a pattern, table shift_blocks
type ShiftBlock struct {
	BlockID         string   `gorm:"size:36;primaryKey"          json:"block_id"`
	PatternID       string   `gorm:"size:36;not null;index"      json:"pattern_id"`
	Kind            string   `gorm:"size:10;not null"            json:"kind"`
	WorkingDays     IntArray `gorm:"type:text;not null"          json:"working_days"`
	StartTime       string   `gorm:"size:5;not null"             json:"start_time"`
	EndTime         string   `gorm:"size:5;not null"             json:"end_time"`
	DurationMinutes int      `gorm:"not null"                    json:"duration_minutes"`
	Order           int      `gorm:"column:sort_order;not null"  json:"order"`
	BaseModel
}

// TableName table name
func (ShiftBlock) TableName() string { return "shift_blocks" }

// BeforeCreate assigns the id.
func (b *ShiftBlock) BeforeCreate(_ *gorm.DB) error {
	newID(&b.BlockID)
	return nil
}

// ShiftAssignment a generated working day of a block, table shift_assignments
type ShiftAssignment struct {
	AssignmentID string `gorm:"size:36;primaryKey"                                json:"assignment_id"`
	ShiftBlockID string `gorm:"size:36;not null;uniqueIndex:idx_assignment_block_date" json:"shift_block_id"`
	Date         Date   `gorm:"not null;uniqueIndex:idx_assignment_block_date;index"  json:"date"`
	CreatedAt    int64  `gorm:"autoCreateTime"                                    json:"-"`

	ShiftBlock *ShiftBlock `gorm:"foreignKey:ShiftBlockID;references:BlockID" json:"shift_block,omitempty"`
}

// TableName table name
func (ShiftAssignment) TableName() string { return "shift_assignments" }

// BeforeCreate assigns the id.
func (a *ShiftAssignment) BeforeCreate(_ *gorm.DB) error {
	newID(&a.AssignmentID)
	return nil
}
