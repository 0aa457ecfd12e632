package analysis

import (
	"math"
	"sort"
	"strings"
)

// riskScoreWeights scores exposures by risk level for the top-N ranking.
// Unknown levels contribute nothing.
var riskScoreWeights = map[string]int{
	"low":      1,
	"medium":   2,
	"high":     3,
	"critical": 4,
}

// LevelSlice is one risk-level bucket of the distribution. Percentage is
// meaningless when the exposure list is empty; Defined flags that case so
// callers never see a silent NaN.
type LevelSlice struct {
	Level      string  `json:"level"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Defined    bool    `json:"defined"`
}

// NameCount is a generic (name, count) pair used by the distributions.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// RoleScore ranks a role by its accumulated risk-level weight.
type RoleScore struct {
	Role  string `json:"role"`
	Score int    `json:"score"`
	Count int    `json:"count"`
}

// Summary is the aggregate view the dashboard renders.
type Summary struct {
	TotalRisks          int          `json:"totalRisks"`
	SoDCount            int          `json:"sodRisks"`
	CriticalCount       int          `json:"criticalRisks"`
	UniqueSoDRisks      int          `json:"uniqueSoDRisks"`
	UniqueCriticalRisks int          `json:"uniqueCriticalRisks"`
	TotalRoles          int          `json:"totalRoles"`
	ByRiskLevel         []LevelSlice `json:"byRiskLevel"`
	ByRole              []NameCount  `json:"byRole"`
	ByFunction          []NameCount  `json:"byFunction"`
	ByBusinessProcess   []NameCount  `json:"byBusinessProcess"`
	TopRiskyRoles       []RoleScore  `json:"topRiskyRoles"`
	HighestRiskRole     string       `json:"highestRiskRole"`
	MostAffectedProcess string       `json:"mostAffectedProcess"`
}

// orderedCounter counts occurrences while remembering first-appearance order,
// which is what makes the single-winner fields stable.
type orderedCounter struct {
	counts map[string]int
	order  []string
}

func newOrderedCounter() *orderedCounter {
	return &orderedCounter{counts: make(map[string]int)}
}

func (c *orderedCounter) Inc(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *orderedCounter) Pairs() []NameCount {
	out := make([]NameCount, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, NameCount{Name: key, Count: c.counts[key]})
	}
	return out
}

// Max returns the key with the highest count; the first-encountered key wins
// ties. Empty counters return "".
func (c *orderedCounter) Max() string {
	best := ""
	bestCount := 0
	for _, key := range c.order {
		if c.counts[key] > bestCount {
			best = key
			bestCount = c.counts[key]
		}
	}
	return best
}

// Summarize derives the dashboard aggregates from an exposure list. Unique
// risk counts come from the graph because a risk with zero matches still
// exists as a definition. The inputs are not mutated.
func Summarize(exposures []Exposure, graph *RiskGraph, idx *RoleIndex) Summary {
	s := Summary{
		TotalRisks:          len(exposures),
		UniqueSoDRisks:      graph.SoDRiskCount(),
		UniqueCriticalRisks: graph.CriticalRiskCount(),
		TotalRoles:          idx.Len(),
	}

	levels := newOrderedCounter()
	roles := newOrderedCounter()
	functions := newOrderedCounter()
	processes := newOrderedCounter()

	type roleScoreAcc struct {
		score int
		count int
	}
	roleScores := make(map[string]*roleScoreAcc)
	var roleScoreOrder []string

	for _, exp := range exposures {
		switch exp.RiskType {
		case RiskTypeSoD:
			s.SoDCount++
		case RiskTypeCriticalAction:
			s.CriticalCount++
		}

		levels.Inc(exp.RiskLevel)
		roles.Inc(exp.Role)
		processes.Inc(businessProcess(exp.Description))
		for _, fm := range exp.MatchedFunctions {
			functions.Inc(fm.FunctionID)
		}

		acc, ok := roleScores[exp.Role]
		if !ok {
			acc = &roleScoreAcc{}
			roleScores[exp.Role] = acc
			roleScoreOrder = append(roleScoreOrder, exp.Role)
		}
		acc.score += riskScoreWeights[strings.ToLower(exp.RiskLevel)]
		acc.count++
	}

	s.ByRiskLevel = levelSlices(levels, len(exposures))
	s.ByRole = roles.Pairs()
	s.ByFunction = functions.Pairs()
	s.ByBusinessProcess = processes.Pairs()
	s.HighestRiskRole = roles.Max()
	s.MostAffectedProcess = processes.Max()

	ranked := make([]RoleScore, 0, len(roleScoreOrder))
	for _, role := range roleScoreOrder {
		acc := roleScores[role]
		ranked = append(ranked, RoleScore{Role: role, Score: acc.score, Count: acc.count})
	}
	// Stable sort keeps first-encountered roles ahead on equal scores.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > 10 {
		ranked = ranked[:10]
	}
	s.TopRiskyRoles = ranked

	return s
}

func levelSlices(levels *orderedCounter, total int) []LevelSlice {
	out := make([]LevelSlice, 0, len(levels.order))
	for _, level := range levels.order {
		count := levels.counts[level]
		slice := LevelSlice{Level: level, Count: count}
		if total > 0 {
			slice.Percentage = math.Round(float64(count)/float64(total)*1000) / 10
			slice.Defined = true
		}
		out = append(out, slice)
	}
	return out
}

// businessProcess extracts the process name from a risk description, which
// the dataset encodes as "Process - detail".
func businessProcess(description string) string {
	head, _, _ := strings.Cut(description, "-")
	return strings.TrimSpace(head)
}
