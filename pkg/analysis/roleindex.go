package analysis

import "strings"

// RoleIndex maps each role to the set of actions it has been assigned.
type RoleIndex struct {
	roles map[string]*actionSet
	order []string
}

// BuildRoleIndex folds role assignment rows into a role -> action-set index.
// Rows missing the role or the action are dropped; actions are normalized to
// upper case. Role identity is an exact, case-sensitive string match.
func BuildRoleIndex(rows []RoleRow) *RoleIndex {
	idx := &RoleIndex{roles: make(map[string]*actionSet)}

	for _, row := range rows {
		if row.Role == "" || row.Action == "" {
			continue
		}
		set, ok := idx.roles[row.Role]
		if !ok {
			set = newActionSet()
			idx.roles[row.Role] = set
			idx.order = append(idx.order, row.Role)
		}
		set.Add(strings.ToUpper(row.Action))
	}

	return idx
}

// Roles returns every indexed role in first-appearance order. This feeds the
// role filter selector, independent of whether a role has any exposure.
func (idx *RoleIndex) Roles() []string {
	out := make([]string, len(idx.order))
	copy(out, idx.order)
	return out
}

// Actions returns the normalized actions for a role, or nil when unknown.
func (idx *RoleIndex) Actions(role string) []string {
	set, ok := idx.roles[role]
	if !ok {
		return nil
	}
	return set.Values()
}

// Len returns the number of indexed roles.
func (idx *RoleIndex) Len() int { return len(idx.order) }
