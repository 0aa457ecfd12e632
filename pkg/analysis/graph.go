package analysis

import "strings"

// SoDRisk is a segregation-of-duties risk definition: the role must hold
// matching actions for every function in RequiredFunctions to be exposed.
type SoDRisk struct {
	RiskID            string
	Description       string
	RiskLevel         string
	RequiredFunctions []string

	required map[string]struct{}
}

// CriticalRisk is a critical-action risk definition bound to one function.
type CriticalRisk struct {
	RiskID      string
	FunctionID  string
	Description string
	RiskLevel   string
}

// FunctionInfo groups the actions a function is known to carry.
type FunctionInfo struct {
	FunctionID  string
	Description string
	Actions     *actionSet
}

// RiskGraph holds the three lookup structures derived from the risk dataset.
// Key slices preserve first-appearance order; all iteration goes through them.
type RiskGraph struct {
	sod      map[string]*SoDRisk
	sodOrder []string

	critical      map[string]*CriticalRisk
	criticalOrder []string

	functions     map[string]*FunctionInfo
	functionOrder []string
}

// BuildRiskGraph folds risk definition rows into the derived lookup maps.
// Rows missing Risk ID or Function ID are dropped. Unknown risk types still
// contribute to the function/action map but define no risk. Actions are
// normalized to upper case.
func BuildRiskGraph(rows []RiskRow) *RiskGraph {
	g := &RiskGraph{
		sod:       make(map[string]*SoDRisk),
		critical:  make(map[string]*CriticalRisk),
		functions: make(map[string]*FunctionInfo),
	}

	for _, row := range rows {
		if row.RiskID == "" || row.FunctionID == "" {
			continue
		}

		switch RiskType(row.RiskType) {
		case RiskTypeSoD:
			risk, ok := g.sod[row.RiskID]
			if !ok {
				risk = &SoDRisk{
					RiskID:      row.RiskID,
					Description: row.Description,
					RiskLevel:   row.RiskLevel,
					required:    make(map[string]struct{}),
				}
				g.sod[row.RiskID] = risk
				g.sodOrder = append(g.sodOrder, row.RiskID)
			}
			if _, seen := risk.required[row.FunctionID]; !seen {
				risk.required[row.FunctionID] = struct{}{}
				risk.RequiredFunctions = append(risk.RequiredFunctions, row.FunctionID)
			}

		case RiskTypeCriticalAction:
			// First occurrence wins; later rows with the same risk ID
			// never overwrite the bound function.
			if _, ok := g.critical[row.RiskID]; !ok {
				g.critical[row.RiskID] = &CriticalRisk{
					RiskID:      row.RiskID,
					FunctionID:  row.FunctionID,
					Description: row.Description,
					RiskLevel:   row.RiskLevel,
				}
				g.criticalOrder = append(g.criticalOrder, row.RiskID)
			}
		}

		if row.Action != "" {
			fn, ok := g.functions[row.FunctionID]
			if !ok {
				fn = &FunctionInfo{
					FunctionID: row.FunctionID,
					Actions:    newActionSet(),
				}
				g.functions[row.FunctionID] = fn
				g.functionOrder = append(g.functionOrder, row.FunctionID)
			}
			fn.Actions.Add(strings.ToUpper(row.Action))
			if fn.Description == "" && row.FunctionDescription != "" {
				fn.Description = row.FunctionDescription
			}
		}
	}

	return g
}

// SoDRiskCount returns the number of distinct SoD risk definitions.
func (g *RiskGraph) SoDRiskCount() int { return len(g.sodOrder) }

// CriticalRiskCount returns the number of distinct critical-action risks.
func (g *RiskGraph) CriticalRiskCount() int { return len(g.criticalOrder) }

// Function returns the action set for a function ID, or nil when unknown.
func (g *RiskGraph) Function(functionID string) *FunctionInfo {
	return g.functions[functionID]
}

// matchingActions intersects a function's actions with a role's action set,
// preserving the function-side insertion order. Unknown functions yield nil.
func (g *RiskGraph) matchingActions(functionID string, roleActions *actionSet) []string {
	fn, ok := g.functions[functionID]
	if !ok {
		return nil
	}
	var matched []string
	for _, action := range fn.Actions.order {
		if roleActions.Contains(action) {
			matched = append(matched, action)
		}
	}
	return matched
}
