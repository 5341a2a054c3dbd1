package setup

import (
	"sort"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Osmandiyaka/mindbloom-sub000/internal/models"
)

// OrgUnitStore owns the organizational forest plus its membership and role
// side tables. Units live only in the wizard snapshot; there is no org-unit
// collaborator, so every operation is local and synchronous.
type OrgUnitStore struct {
	mu sync.Mutex

	units    []models.OrgUnit
	members  map[string][]string            // unit id -> member ids
	roles    map[string][]models.OrgUnitRole // unit id -> roles
	expanded map[string]bool                // tree-view expansion state
	activeID string
	nextID   int

	onChange func()
	log      zerolog.Logger
}

// NewOrgUnitStore creates an empty store.
func NewOrgUnitStore(log zerolog.Logger) *OrgUnitStore {
	return &OrgUnitStore{
		members:  make(map[string][]string),
		roles:    make(map[string][]models.OrgUnitRole),
		expanded: make(map[string]bool),
		log:      log,
	}
}

// SetOnChange registers the autosave notification hook. Every mutation
// calls it after the collection has been updated.
func (s *OrgUnitStore) SetOnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Seed replaces the store contents from a loaded snapshot. The optimistic
// id counter is re-seeded from the largest numeric suffix present so new
// units never collide with prior allocations.
func (s *OrgUnitStore) Seed(units []models.OrgUnit, members map[string][]string, roles map[string][]models.OrgUnitRole) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.units = append([]models.OrgUnit(nil), units...)
	s.members = make(map[string][]string, len(members))
	for k, v := range members {
		s.members[k] = append([]string(nil), v...)
	}
	s.roles = make(map[string][]models.OrgUnitRole, len(roles))
	for k, v := range roles {
		s.roles[k] = append([]models.OrgUnitRole(nil), v...)
	}

	ids := make([]string, 0, len(units))
	for _, u := range units {
		ids = append(ids, u.ID)
	}
	s.nextID = maxIDSuffix("unit", ids)
}

func (s *OrgUnitStore) notifyLocked() {
	if s.onChange != nil {
		s.onChange()
	}
}

func (s *OrgUnitStore) indexOfLocked(id string) int {
	for i, u := range s.units {
		if u.ID == id {
			return i
		}
	}
	return -1
}

// CreateUnit allocates a new unit. When a parent is given it must exist and
// is marked expanded so the new child is visible in the tree view.
func (s *OrgUnitStore) CreateUnit(name string, unitType models.OrgUnitType, status models.OrgUnitStatus, parentID string) (models.OrgUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" {
		return models.OrgUnit{}, fieldErr("name", "Unit name is required.")
	}
	if parentID != "" && s.indexOfLocked(parentID) < 0 {
		return models.OrgUnit{}, ErrUnitNotFound
	}
	if status == "" {
		status = models.OrgUnitActive
	}

	s.nextID++
	unit := models.OrgUnit{
		ID:       "unit-" + strconv.Itoa(s.nextID),
		Name:     name,
		Type:     unitType,
		Status:   status,
		ParentID: parentID,
	}
	s.units = append(s.units, unit)
	if parentID != "" {
		s.expanded[parentID] = true
	}
	s.activeID = unit.ID
	s.notifyLocked()
	return unit, nil
}

// RenameUnit changes a unit's display name.
func (s *OrgUnitStore) RenameUnit(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" {
		return fieldErr("name", "Unit name is required.")
	}
	i := s.indexOfLocked(id)
	if i < 0 {
		return ErrUnitNotFound
	}
	s.units[i].Name = name
	s.notifyLocked()
	return nil
}

// MoveUnit re-parents a unit. The move is rejected when the new parent is
// the unit itself or one of its descendants (cycle prevention), and is a
// no-op when the resulting parent equals the current one. An empty
// newParentID promotes the unit to a root.
func (s *OrgUnitStore) MoveUnit(targetID, newParentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(targetID)
	if i < 0 {
		return ErrUnitNotFound
	}
	if newParentID != "" {
		if s.indexOfLocked(newParentID) < 0 {
			return ErrUnitNotFound
		}
		if newParentID == targetID || s.isDescendantLocked(newParentID, targetID) {
			return fieldErr("parent", "A unit cannot be moved under itself or its descendants.")
		}
	}
	if s.units[i].ParentID == newParentID {
		return nil
	}
	s.units[i].ParentID = newParentID
	if newParentID != "" {
		s.expanded[newParentID] = true
	}
	s.notifyLocked()
	return nil
}

// DeactivateUnit sets a unit Inactive. Only Active units transition; any
// other state is a no-op.
func (s *OrgUnitStore) DeactivateUnit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return ErrUnitNotFound
	}
	if s.units[i].Status != models.OrgUnitActive {
		return nil
	}
	s.units[i].Status = models.OrgUnitInactive
	s.notifyLocked()
	return nil
}

// isDescendantLocked reports whether candidate sits anywhere below
// ancestorID.
func (s *OrgUnitStore) isDescendantLocked(candidate, ancestorID string) bool {
	for _, id := range s.descendantsLocked(ancestorID) {
		if id == candidate {
			return true
		}
	}
	return false
}

// descendantsLocked walks the full subtree below id (excluding id itself).
func (s *OrgUnitStore) descendantsLocked(id string) []string {
	children := make(map[string][]string, len(s.units))
	for _, u := range s.units {
		if u.ParentID != "" {
			children[u.ParentID] = append(children[u.ParentID], u.ID)
		}
	}

	var out []string
	queue := append([]string(nil), children[id]...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		out = append(out, next)
		queue = append(queue, children[next]...)
	}
	return out
}

// DeleteImpact computes what deleting a unit would destroy: descendant unit
// count, distinct member ids across the unit and its descendants, and the
// total role count across the same set.
func (s *OrgUnitStore) DeleteImpact(id string) (models.DeleteImpact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOfLocked(id) < 0 {
		return models.DeleteImpact{}, ErrUnitNotFound
	}
	return s.deleteImpactLocked(id), nil
}

func (s *OrgUnitStore) deleteImpactLocked(id string) models.DeleteImpact {
	descendants := s.descendantsLocked(id)
	affected := append([]string{id}, descendants...)

	distinct := make(map[string]struct{})
	roles := 0
	for _, unitID := range affected {
		for _, member := range s.members[unitID] {
			distinct[member] = struct{}{}
		}
		roles += len(s.roles[unitID])
	}
	return models.DeleteImpact{
		ChildUnits: len(descendants),
		Members:    len(distinct),
		Roles:      roles,
	}
}

// DeleteUnit removes a unit and its whole subtree, along with their
// membership and role side-table entries. When the unit has descendants the
// caller must pass a typed confirmation equal to the unit's name. After
// deletion the active unit falls back to the deleted unit's parent if still
// present, else any root, else none.
func (s *OrgUnitStore) DeleteUnit(targetID, confirmation string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(targetID)
	if i < 0 {
		return ErrUnitNotFound
	}
	target := s.units[i]
	impact := s.deleteImpactLocked(targetID)
	if impact.ChildUnits > 0 && confirmation != target.Name {
		return ErrConfirmationMismatch
	}

	remove := make(map[string]struct{}, impact.ChildUnits+1)
	remove[targetID] = struct{}{}
	for _, id := range s.descendantsLocked(targetID) {
		remove[id] = struct{}{}
	}

	kept := s.units[:0]
	for _, u := range s.units {
		if _, gone := remove[u.ID]; !gone {
			kept = append(kept, u)
		}
	}
	s.units = kept
	for id := range remove {
		delete(s.members, id)
		delete(s.roles, id)
		delete(s.expanded, id)
	}

	s.activeID = s.fallbackActiveLocked(target.ParentID)
	s.log.Debug().
		Str("unit_id", targetID).
		Int("removed", len(remove)).
		Msg("org unit deleted")
	s.notifyLocked()
	return nil
}

// fallbackActiveLocked prefers the deleted unit's parent, else the first
// root, else none.
func (s *OrgUnitStore) fallbackActiveLocked(parentID string) string {
	if parentID != "" && s.indexOfLocked(parentID) >= 0 {
		return parentID
	}
	for _, u := range s.units {
		if u.ParentID == "" {
			return u.ID
		}
	}
	return ""
}

// BuildTree assembles the tree view in a single pass. Units with dangling
// parent references are promoted to roots, and every level is sorted
// lexicographically by name.
func (s *OrgUnitStore) BuildTree() []*models.OrgUnitNode {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes := make(map[string]*models.OrgUnitNode, len(s.units))
	for _, u := range s.units {
		nodes[u.ID] = &models.OrgUnitNode{Unit: u}
	}

	var roots []*models.OrgUnitNode
	for _, u := range s.units {
		node := nodes[u.ID]
		if u.ParentID == "" {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[u.ParentID]
		if !ok || u.ParentID == u.ID {
			// Self-heal dangling parent references rather than dropping
			// the subtree.
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	sortNodes(roots)
	return roots
}

func sortNodes(nodes []*models.OrgUnitNode) {
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Unit.Name < nodes[j].Unit.Name
	})
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}

// Units returns a copy of the flat unit collection.
func (s *OrgUnitStore) Units() []models.OrgUnit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.OrgUnit(nil), s.units...)
}

// ActiveUnitID returns the currently selected unit, or empty when none.
func (s *OrgUnitStore) ActiveUnitID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// SetActiveUnit selects a unit.
func (s *OrgUnitStore) SetActiveUnit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" && s.indexOfLocked(id) < 0 {
		return ErrUnitNotFound
	}
	s.activeID = id
	return nil
}

// Expanded reports whether a unit's children are visible in the tree view.
func (s *OrgUnitStore) Expanded(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expanded[id]
}

// ToggleExpanded flips a unit's tree-view expansion state.
func (s *OrgUnitStore) ToggleExpanded(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expanded[id] = !s.expanded[id]
}

// AddMember records a member on a unit. Duplicate adds are no-ops.
func (s *OrgUnitStore) AddMember(unitID, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOfLocked(unitID) < 0 {
		return ErrUnitNotFound
	}
	for _, m := range s.members[unitID] {
		if m == memberID {
			return nil
		}
	}
	s.members[unitID] = append(s.members[unitID], memberID)
	s.notifyLocked()
	return nil
}

// RemoveMember drops a member from a unit.
func (s *OrgUnitStore) RemoveMember(unitID, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOfLocked(unitID) < 0 {
		return ErrUnitNotFound
	}
	current := s.members[unitID]
	for i, m := range current {
		if m == memberID {
			s.members[unitID] = append(current[:i], current[i+1:]...)
			s.notifyLocked()
			return nil
		}
	}
	return nil
}

// Members returns the member ids recorded on a unit.
func (s *OrgUnitStore) Members(unitID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.members[unitID]...)
}

// AddRole records a role on a unit.
func (s *OrgUnitStore) AddRole(unitID string, role models.OrgUnitRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOfLocked(unitID) < 0 {
		return ErrUnitNotFound
	}
	s.roles[unitID] = append(s.roles[unitID], role)
	s.notifyLocked()
	return nil
}

// Roles returns the roles recorded on a unit.
func (s *OrgUnitStore) Roles(unitID string) []models.OrgUnitRole {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.OrgUnitRole(nil), s.roles[unitID]...)
}

// MemberTable returns a copy of the full membership side table for
// snapshot assembly.
func (s *OrgUnitStore) MemberTable() map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]string, len(s.members))
	for k, v := range s.members {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// RoleTable returns a copy of the full role side table for snapshot
// assembly.
func (s *OrgUnitStore) RoleTable() map[string][]models.OrgUnitRole {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]models.OrgUnitRole, len(s.roles))
	for k, v := range s.roles {
		out[k] = append([]models.OrgUnitRole(nil), v...)
	}
	return out
}
