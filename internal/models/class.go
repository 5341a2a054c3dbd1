package models

// RowStatus is the lifecycle state shared by class and section rows.
type RowStatus string

const (
	RowStatusActive   RowStatus = "Active"
	RowStatusInactive RowStatus = "Inactive"
)

// ClassRow is one class (e.g. "Grade 7") in the tenant's workspace.
// SortOrder is dense per class list, starting at 1.
//
// LegacyLevel and LegacySections only appear in snapshots written by old
// clients that stored classes as flat {name, level, sections} rows; the
// migration layer consumes them on load and they are never written back.
type ClassRow struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code,omitempty"`
	SortOrder int       `json:"sortOrder"`
	SchoolIDs []string  `json:"schoolIds"`
	Notes     string    `json:"notes,omitempty"`
	Status    RowStatus `json:"status"`

	LegacyLevel    string `json:"level,omitempty"`
	LegacySections string `json:"sections,omitempty"`
}

// Clone returns a copy that shares no slice storage with the receiver.
func (c ClassRow) Clone() ClassRow {
	clone := c
	clone.SchoolIDs = append([]string(nil), c.SchoolIDs...)
	return clone
}

// SectionRow is one section within a class. ClassID must always reference an
// existing ClassRow; SortOrder is dense within the owning class, starting
// at 1.
type SectionRow struct {
	ID        string    `json:"id"`
	ClassID   string    `json:"classId"`
	Name      string    `json:"name"`
	Code      string    `json:"code,omitempty"`
	Capacity  int       `json:"capacity,omitempty"`
	Status    RowStatus `json:"status"`
	SortOrder int       `json:"sortOrder"`
}
