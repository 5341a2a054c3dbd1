package models

import (
	"encoding/json"
	"fmt"
)

// UserStatus is the lifecycle state of a workspace user.
type UserStatus string

const (
	UserStatusInvited   UserStatus = "Invited"
	UserStatusActive    UserStatus = "Active"
	UserStatusSuspended UserStatus = "Suspended"
)

// SchoolAccess is either access to every school in the tenant or an explicit
// school-id list. It serializes as the string "all" or as a JSON array,
// matching the wire shape the user collaborator expects.
type SchoolAccess struct {
	All       bool
	SchoolIDs []string
}

// AllSchools is the access value granting every school.
var AllSchools = SchoolAccess{All: true}

// MarshalJSON implements json.Marshaler.
func (a SchoolAccess) MarshalJSON() ([]byte, error) {
	if a.All {
		return json.Marshal("all")
	}
	ids := a.SchoolIDs
	if ids == nil {
		ids = []string{}
	}
	return json.Marshal(ids)
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *SchoolAccess) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "all" {
			return fmt.Errorf("invalid school access %q", s)
		}
		*a = SchoolAccess{All: true}
		return nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("invalid school access: %w", err)
	}
	*a = SchoolAccess{SchoolIDs: ids}
	return nil
}

// UserRow is one workspace user created or invited during setup. Email is
// unique (case-insensitive) within the tenant's in-progress user list.
type UserRow struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Role         string       `json:"role"`
	SchoolAccess SchoolAccess `json:"schoolAccess"`
	Status       UserStatus   `json:"status"`
	Title        string       `json:"title,omitempty"`
	Phone        string       `json:"phone,omitempty"`
}

// Clone returns a copy that shares no slice storage with the receiver.
func (u UserRow) Clone() UserRow {
	clone := u
	clone.SchoolAccess.SchoolIDs = append([]string(nil), u.SchoolAccess.SchoolIDs...)
	return clone
}
