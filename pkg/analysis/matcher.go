package analysis

// Match joins the role index against the risk graph and returns every
// (role, risk) exposure. The computation is pure: it never mutates its
// inputs and never fails. Roles are visited in index order; for each role,
// critical-action risks are checked before SoD risks, each in definition
// order, so output order is deterministic for a fixed input order.
func Match(idx *RoleIndex, graph *RiskGraph) []Exposure {
	exposures := make([]Exposure, 0)

	for _, role := range idx.order {
		roleActions := idx.roles[role]

		for _, riskID := range graph.criticalOrder {
			def := graph.critical[riskID]
			matched := graph.matchingActions(def.FunctionID, roleActions)
			if len(matched) == 0 {
				continue
			}
			exposures = append(exposures, Exposure{
				RiskID:      riskID,
				Role:        role,
				RiskType:    RiskTypeCriticalAction,
				RiskLevel:   def.RiskLevel,
				Description: def.Description,
				MatchedFunctions: []FunctionMatch{
					{FunctionID: def.FunctionID, Actions: matched},
				},
			})
		}

		for _, riskID := range graph.sodOrder {
			def := graph.sod[riskID]
			matches := make([]FunctionMatch, 0, len(def.RequiredFunctions))
			satisfied := true
			for _, functionID := range def.RequiredFunctions {
				matched := graph.matchingActions(functionID, roleActions)
				if len(matched) == 0 {
					// One unmatched function defeats the conjunction.
					satisfied = false
					break
				}
				matches = append(matches, FunctionMatch{
					FunctionID: functionID,
					Actions:    matched,
				})
			}
			if !satisfied {
				continue
			}
			exposures = append(exposures, Exposure{
				RiskID:           riskID,
				Role:             role,
				RiskType:         RiskTypeSoD,
				RiskLevel:        def.RiskLevel,
				Description:      def.Description,
				MatchedFunctions: matches,
			})
		}
	}

	return exposures
}
