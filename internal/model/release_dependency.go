package model

import "time"

// DependencyType represents the kind of relationship a dependency edge carries.
// Only blocks edges participate in blocked-status resolution; the other two
// are informational.
type DependencyType string

const (
	DependencyTypeBlocks         DependencyType = "blocks"
	DependencyTypeSoftDependency DependencyType = "soft_dependency"
	DependencyTypeRequiresSync   DependencyType = "requires_sync"
)

// Valid reports whether t is a known dependency type
func (t DependencyType) Valid() bool {
	switch t {
	case DependencyTypeBlocks, DependencyTypeSoftDependency, DependencyTypeRequiresSync:
		return true
	}
	return false
}

// ReleaseDependency is a directed edge: the dependent release cannot safely
// proceed until the blocking release satisfies this edge. At most one edge
// exists per ordered (dependent, blocking) pair.
type ReleaseDependency struct {
	BaseModel
	DependentReleaseID int            `gorm:"not null;index;uniqueIndex:uk_dependent_blocking" json:"dependent_release_id"`
	BlockingReleaseID  int            `gorm:"not null;index;uniqueIndex:uk_dependent_blocking" json:"blocking_release_id"`
	Type               DependencyType `gorm:"type:varchar(32);not null;default:'blocks'" json:"type"`
	Description        string         `gorm:"type:varchar(512)" json:"description"`
	IsResolved         bool           `gorm:"not null;default:false" json:"is_resolved"`
	ResolvedAt         *time.Time     `json:"resolved_at"`

	// Relations
	DependentRelease *Release `gorm:"foreignKey:DependentReleaseID" json:"dependent_release,omitempty"`
	BlockingRelease  *Release `gorm:"foreignKey:BlockingReleaseID" json:"blocking_release,omitempty"`
}

// TableName specifies the table name for ReleaseDependency model
func (ReleaseDependency) TableName() string {
	return "release_dependencies"
}
