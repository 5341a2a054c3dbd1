package models

import (
	"time"
)

// WizardStatus tracks the lifecycle of a tenant's setup wizard.
type WizardStatus string

const (
	WizardNotStarted WizardStatus = "not_started"
	WizardInProgress WizardStatus = "in_progress"
	WizardSkipped    WizardStatus = "skipped"
	WizardCompleted  WizardStatus = "completed"
)

// Terminal reports whether the wizard can no longer be advanced.
// Terminal snapshots remain loadable for inspection.
func (s WizardStatus) Terminal() bool {
	return s == WizardSkipped || s == WizardCompleted
}

// WizardSnapshot is the full serialized wizard state for one tenant: the
// current step plus every entity collection, persisted as one unit to the
// local cache and to the remote tenant-settings endpoint.
type WizardSnapshot struct {
	Status      WizardStatus `json:"status"`
	Step        int          `json:"step"`
	StartedAt   *time.Time   `json:"startedAt,omitempty"`
	SkippedAt   *time.Time   `json:"skippedAt,omitempty"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Data        WizardData   `json:"data"`
}

// NewWizardSnapshot returns the snapshot created on a tenant's first load.
func NewWizardSnapshot() *WizardSnapshot {
	return &WizardSnapshot{
		Status:    WizardNotStarted,
		Step:      0,
		UpdatedAt: time.Now().UTC(),
	}
}

// WizardData aggregates every entity collection the wizard tracks.
//
// Departments and the legacy fields embedded in ClassRow are consumed by the
// migration layer on load and are never written back by current code.
type WizardData struct {
	Schools        []SchoolRow              `json:"schools,omitempty"`
	OrgUnits       []OrgUnit                `json:"orgUnits,omitempty"`
	OrgUnitMembers map[string][]string      `json:"orgUnitMembers,omitempty"`
	OrgUnitRoles   map[string][]OrgUnitRole `json:"orgUnitRoles,omitempty"`
	Levels         []AcademicLevel          `json:"levels,omitempty"`
	Classes        []ClassRow               `json:"classes,omitempty"`
	Sections       []SectionRow             `json:"sections,omitempty"`
	GradeScales    []GradingScale           `json:"gradingScales,omitempty"`
	Users          []UserRow                `json:"users,omitempty"`

	// Departments is the legacy flat org representation: one name per root
	// department, superseded by OrgUnits.
	Departments []string `json:"departments,omitempty"`
}

// Clone returns a deep copy of the snapshot so callers can persist it
// without racing against further mutation.
func (s *WizardSnapshot) Clone() *WizardSnapshot {
	if s == nil {
		return nil
	}
	clone := *s
	clone.StartedAt = cloneTime(s.StartedAt)
	clone.SkippedAt = cloneTime(s.SkippedAt)
	clone.CompletedAt = cloneTime(s.CompletedAt)
	clone.Data = s.Data.Clone()
	return &clone
}

// Clone returns a deep copy of the aggregate.
func (d WizardData) Clone() WizardData {
	clone := d
	clone.Schools = append([]SchoolRow(nil), d.Schools...)
	clone.OrgUnits = append([]OrgUnit(nil), d.OrgUnits...)
	clone.Levels = append([]AcademicLevel(nil), d.Levels...)
	clone.Classes = make([]ClassRow, len(d.Classes))
	for i, c := range d.Classes {
		clone.Classes[i] = c.Clone()
	}
	clone.Sections = append([]SectionRow(nil), d.Sections...)
	clone.GradeScales = make([]GradingScale, len(d.GradeScales))
	for i, g := range d.GradeScales {
		clone.GradeScales[i] = g.Clone()
	}
	clone.Users = make([]UserRow, len(d.Users))
	for i, u := range d.Users {
		clone.Users[i] = u.Clone()
	}
	clone.Departments = append([]string(nil), d.Departments...)
	if d.OrgUnitMembers != nil {
		clone.OrgUnitMembers = make(map[string][]string, len(d.OrgUnitMembers))
		for k, v := range d.OrgUnitMembers {
			clone.OrgUnitMembers[k] = append([]string(nil), v...)
		}
	}
	if d.OrgUnitRoles != nil {
		clone.OrgUnitRoles = make(map[string][]OrgUnitRole, len(d.OrgUnitRoles))
		for k, v := range d.OrgUnitRoles {
			clone.OrgUnitRoles[k] = append([]OrgUnitRole(nil), v...)
		}
	}
	return clone
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
