package model

// Team represents a tenant: every entity in the system is scoped to one team
type Team struct {
	BaseModel
	Name string `gorm:"type:varchar(128);uniqueIndex;not null" json:"name"`
	Slug string `gorm:"type:varchar(64);uniqueIndex;not null" json:"slug"`
}

// TableName specifies the table name for Team model
func (Team) TableName() string {
	return "teams"
}
