package models

// LevelStatus is the lifecycle state of an academic level.
type LevelStatus string

const (
	LevelStatusActive   LevelStatus = "Active"
	LevelStatusArchived LevelStatus = "Archived"
)

// AcademicLevel is one entry of the tenant's level ladder (e.g. "Primary",
// "Grade 7"). SortOrder is dense across the ladder, starting at 1.
type AcademicLevel struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Code      string      `json:"code,omitempty"`
	Group     string      `json:"group,omitempty"`
	SortOrder int         `json:"sortOrder"`
	Status    LevelStatus `json:"status"`
}

// LevelImpact reports what depends on a level before it is deleted.
type LevelImpact struct {
	Classes  int `json:"classes"`
	Students int `json:"students"`
}
