package analysis

// Result is the immutable output of one analysis run.
type Result struct {
	Exposures []Exposure `json:"exposures"`
	Summary   Summary    `json:"summary"`
	Roles     []string   `json:"roles"`
}

// Analyze runs the full build -> match -> aggregate pipeline over already
// parsed rows. Every invocation constructs its derived maps from scratch;
// nothing is shared between runs, so concurrent analyses are independent.
func Analyze(riskRows []RiskRow, roleRows []RoleRow) *Result {
	graph := BuildRiskGraph(riskRows)
	idx := BuildRoleIndex(roleRows)
	exposures := Match(idx, graph)

	return &Result{
		Exposures: exposures,
		Summary:   Summarize(exposures, graph, idx),
		Roles:     idx.Roles(),
	}
}
