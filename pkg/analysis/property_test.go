package analysis

import (
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Small ID alphabets force collisions so generated datasets actually produce
// multi-row risks and overlapping roles.
var (
	genRiskID     = gen.OneConstOf("R1", "R2", "R3", "R4")
	genFunctionID = gen.OneConstOf("F1", "F2", "F3")
	genRole       = gen.OneConstOf("Clerk", "Manager", "Admin")
	genAction     = gen.OneConstOf("create", "Approve", "DELETE", "Post", "clear")
	genRiskType   = gen.OneConstOf(string(RiskTypeSoD), string(RiskTypeCriticalAction), "Other")
	genLevel      = gen.OneConstOf("low", "medium", "high", "critical")
)

func genRiskRows() gopter.Gen {
	row := gopter.CombineGens(genRiskID, genRiskType, genLevel, genFunctionID, genAction).
		Map(func(vs []interface{}) RiskRow {
			return RiskRow{
				RiskID:     vs[0].(string),
				RiskType:   vs[1].(string),
				RiskLevel:  vs[2].(string),
				FunctionID: vs[3].(string),
				Action:     vs[4].(string),
			}
		})
	return gen.SliceOf(row)
}

func genRoleRows() gopter.Gen {
	row := gopter.CombineGens(genRole, genAction).
		Map(func(vs []interface{}) RoleRow {
			return RoleRow{Role: vs[0].(string), Action: vs[1].(string)}
		})
	return gen.SliceOf(row)
}

// TestAnalysisInvariants verifies the matcher's behavioral guarantees over
// generated inputs.
func TestAnalysisInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	// Determinism: the same input rows always yield the same exposure
	// sequence, order included.
	properties.Property("match is deterministic", prop.ForAll(
		func(riskRows []RiskRow, roleRows []RoleRow) bool {
			first := Match(BuildRoleIndex(roleRows), BuildRiskGraph(riskRows))
			second := Match(BuildRoleIndex(roleRows), BuildRiskGraph(riskRows))
			return reflect.DeepEqual(first, second)
		},
		genRiskRows(),
		genRoleRows(),
	))

	// Monotonicity: granting a role one more action can only add exposures,
	// never remove any.
	properties.Property("adding an action never removes exposures", prop.ForAll(
		func(riskRows []RiskRow, roleRows []RoleRow, role string, action string) bool {
			graph := BuildRiskGraph(riskRows)
			before := Match(BuildRoleIndex(roleRows), graph)
			after := Match(BuildRoleIndex(append(roleRows, RoleRow{Role: role, Action: action})), graph)

			had := make(map[string]int)
			for _, exp := range before {
				had[exp.Role+"\x00"+exp.RiskID]++
			}
			for _, exp := range after {
				key := exp.Role + "\x00" + exp.RiskID
				if had[key] > 0 {
					had[key]--
				}
			}
			for _, remaining := range had {
				if remaining > 0 {
					return false
				}
			}
			return true
		},
		genRiskRows(),
		genRoleRows(),
		genRole,
		genAction,
	))

	// Case-insensitivity: changing the case of role actions changes nothing.
	properties.Property("action case never affects the result", prop.ForAll(
		func(riskRows []RiskRow, roleRows []RoleRow) bool {
			upper := make([]RoleRow, len(roleRows))
			lower := make([]RoleRow, len(roleRows))
			for i, row := range roleRows {
				upper[i] = RoleRow{Role: row.Role, Action: strings.ToUpper(row.Action)}
				lower[i] = RoleRow{Role: row.Role, Action: strings.ToLower(row.Action)}
			}
			graph := BuildRiskGraph(riskRows)
			a := Match(BuildRoleIndex(upper), graph)
			b := Match(BuildRoleIndex(lower), graph)
			return reflect.DeepEqual(a, b)
		},
		genRiskRows(),
		genRoleRows(),
	))

	// Percentages always sum to ~100 when exposures exist.
	properties.Property("risk level percentages sum to 100", prop.ForAll(
		func(riskRows []RiskRow, roleRows []RoleRow) bool {
			graph := BuildRiskGraph(riskRows)
			idx := BuildRoleIndex(roleRows)
			exposures := Match(idx, graph)
			summary := Summarize(exposures, graph, idx)
			if len(exposures) == 0 {
				return len(summary.ByRiskLevel) == 0
			}
			sum := 0.0
			for _, slice := range summary.ByRiskLevel {
				if !slice.Defined {
					return false
				}
				sum += slice.Percentage
			}
			return sum > 99.9-0.1*float64(len(summary.ByRiskLevel)) && sum < 100.1+0.1*float64(len(summary.ByRiskLevel))
		},
		genRiskRows(),
		genRoleRows(),
	))

	properties.TestingRun(t)
}
