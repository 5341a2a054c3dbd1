package models

// SchoolStatus is the lifecycle state of a school row.
type SchoolStatus string

const (
	SchoolStatusActive   SchoolStatus = "Active"
	SchoolStatusInactive SchoolStatus = "Inactive"
	SchoolStatusArchived SchoolStatus = "Archived"
)

// SchoolRow is one school in the tenant's workspace. ID is empty until the
// remote create succeeds (optimistic phase).
type SchoolRow struct {
	ID       string       `json:"id,omitempty"`
	Name     string       `json:"name"`
	Code     string       `json:"code"`
	Country  string       `json:"country"`
	Timezone string       `json:"timezone"`
	Status   SchoolStatus `json:"status"`
	Address  string       `json:"address,omitempty"`
}

// Complete reports whether the row carries every field the Schools step
// requires before the wizard may advance.
func (s SchoolRow) Complete() bool {
	return s.Name != "" && s.Code != "" && s.Country != "" && s.Timezone != ""
}
