package useranalysis

// AccessRow is one parsed record of a user access export: a user, the
// department they belong to, and their assigned roles.
type AccessRow struct {
	User       string
	Department string
	Roles      []string
}

// DepartmentStat aggregates the users and role assignments of one department.
type DepartmentStat struct {
	Department string `json:"department"`
	UserCount  int    `json:"userCount"`
	RoleCount  int    `json:"roleCount"`
}

// RoleCount is one role with the number of users holding it.
type RoleCount struct {
	Role  string `json:"role"`
	Count int    `json:"count"`
}

// AccessLevels buckets users by how many roles they hold.
type AccessLevels struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// AccessSummary is the department and role-distribution view of a user
// access export.
type AccessSummary struct {
	TotalUsers       int              `json:"totalUsers"`
	Departments      []DepartmentStat `json:"departments"`
	RoleDistribution []RoleCount      `json:"roleDistribution"`
	AccessLevels     AccessLevels     `json:"accessLevels"`
}

// Role-count thresholds for the access level buckets.
const (
	highAccessRoles   = 5
	mediumAccessRoles = 2
)

// AnalyzeAccess folds a user access export into department stats, a role
// distribution, and access level buckets. Rows without a user are dropped.
// Departments and roles keep first-appearance order.
func AnalyzeAccess(rows []AccessRow) *AccessSummary {
	summary := &AccessSummary{}

	deptUsers := newCounter()
	deptRoles := make(map[string]int)
	roles := newCounter()

	for _, row := range rows {
		if row.User == "" {
			continue
		}
		summary.TotalUsers++

		if row.Department != "" {
			deptUsers.inc(row.Department)
			deptRoles[row.Department] += len(row.Roles)
		}
		for _, role := range row.Roles {
			if role != "" {
				roles.inc(role)
			}
		}

		switch n := len(row.Roles); {
		case n > highAccessRoles:
			summary.AccessLevels.High++
		case n > mediumAccessRoles:
			summary.AccessLevels.Medium++
		default:
			summary.AccessLevels.Low++
		}
	}

	summary.Departments = make([]DepartmentStat, 0, len(deptUsers.order))
	for _, dept := range deptUsers.order {
		summary.Departments = append(summary.Departments, DepartmentStat{
			Department: dept,
			UserCount:  deptUsers.counts[dept],
			RoleCount:  deptRoles[dept],
		})
	}

	summary.RoleDistribution = make([]RoleCount, 0, len(roles.order))
	for _, role := range roles.order {
		summary.RoleDistribution = append(summary.RoleDistribution, RoleCount{
			Role:  role,
			Count: roles.counts[role],
		})
	}

	return summary
}
