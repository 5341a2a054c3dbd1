package models

// OrgUnitType classifies a node in the organizational tree.
type OrgUnitType string

const (
	OrgUnitDistrict   OrgUnitType = "District"
	OrgUnitSchool     OrgUnitType = "School"
	OrgUnitDivision   OrgUnitType = "Division"
	OrgUnitDepartment OrgUnitType = "Department"
	OrgUnitGrade      OrgUnitType = "Grade"
	OrgUnitSection    OrgUnitType = "Section"
	OrgUnitCustom     OrgUnitType = "Custom"
)

// OrgUnitStatus is the lifecycle state of an org unit.
type OrgUnitStatus string

const (
	OrgUnitActive   OrgUnitStatus = "Active"
	OrgUnitInactive OrgUnitStatus = "Inactive"
)

// OrgUnit is one node of the organizational forest. Units reference their
// parent by id; an empty ParentID marks a root. No unit may be its own
// ancestor.
type OrgUnit struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Type     OrgUnitType   `json:"type"`
	Status   OrgUnitStatus `json:"status"`
	ParentID string        `json:"parentId,omitempty"`
}

// OrgUnitRole is an assignable role scoped to one org unit. Roles live in a
// side table keyed by unit id and are cascade-deleted with their unit.
type OrgUnitRole struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// OrgUnitNode is one node of a built tree view. Children are sorted
// lexicographically by name.
type OrgUnitNode struct {
	Unit     OrgUnit
	Children []*OrgUnitNode
}

// DeleteImpact summarizes what removing an org unit would destroy: the
// descendant unit count, the distinct member ids across the target and its
// descendants, and the total role count across the same set.
type DeleteImpact struct {
	ChildUnits int
	Members    int
	Roles      int
}
