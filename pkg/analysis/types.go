package analysis

// RiskType classifies how a risk definition is matched against a role.
type RiskType string

const (
	// RiskTypeSoD risks fire only when a role holds actions across every
	// function in the definition (a conjunction).
	RiskTypeSoD RiskType = "Segregation of Duties"
	// RiskTypeCriticalAction risks fire when a role holds any action of a
	// single designated function.
	RiskTypeCriticalAction RiskType = "Critical Action"
)

// RiskRow is one parsed record of the risk definition dataset.
type RiskRow struct {
	RiskID              string
	Description         string
	RiskLevel           string
	RiskType            string
	FunctionID          string
	FunctionDescription string
	BusinessProcess     string
	Action              string
}

// RoleRow is one parsed record of the role assignment file.
// Role carries the "Final Placement" column value.
type RoleRow struct {
	Role   string
	Action string
}

// FunctionMatch records why a single function contributed to an exposure.
type FunctionMatch struct {
	FunctionID string   `json:"functionId"`
	Actions    []string `json:"actions"`
}

// Exposure is one concrete (role, risk) finding.
type Exposure struct {
	RiskID           string          `json:"riskId"`
	Role             string          `json:"role"`
	RiskType         RiskType        `json:"riskType"`
	RiskLevel        string          `json:"riskLevel"`
	Description      string          `json:"description"`
	MatchedFunctions []FunctionMatch `json:"matchedFunctions"`
}

// actionSet is a string set that remembers first-insertion order so every
// downstream iteration is deterministic for a fixed input order.
type actionSet struct {
	members map[string]struct{}
	order   []string
}

func newActionSet() *actionSet {
	return &actionSet{members: make(map[string]struct{})}
}

// Add inserts a value, keeping the first occurrence's position.
func (s *actionSet) Add(v string) {
	if _, ok := s.members[v]; ok {
		return
	}
	s.members[v] = struct{}{}
	s.order = append(s.order, v)
}

// Contains reports whether v is in the set.
func (s *actionSet) Contains(v string) bool {
	_, ok := s.members[v]
	return ok
}

// Values returns the members in insertion order.
func (s *actionSet) Values() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of members.
func (s *actionSet) Len() int {
	return len(s.order)
}
