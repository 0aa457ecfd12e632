// Package useranalysis computes account-hygiene aggregates from exported
// user lists: status counts (expired, locked, inactive), creation trends,
// and department/role access distributions.
package useranalysis

import (
	"strconv"
	"time"
)

// InactivityWindow is how long an account may go without a logon before it
// counts as inactive.
const InactivityWindow = 30 * 24 * time.Hour

// StatusRow is one parsed record of a user status export.
type StatusRow struct {
	UserID        string
	ValidTo       string
	ValidThrough  string
	UserGroup     string
	LockStatus    string
	CreationDate  string
	LastLogonDate string
}

// StatusSlice is one named status count with its share of all users.
// Percentage is meaningless when there are no users; Defined marks that.
type StatusSlice struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Defined    bool    `json:"defined"`
}

// MonthCount is one month of the account creation trend.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// StatusSummary is the account-status view of a user export.
type StatusSummary struct {
	TotalUsers    int           `json:"totalUsers"`
	ActiveUsers   int           `json:"activeUsers"`
	ExpiredUsers  int           `json:"expiredUsers"`
	LockedUsers   int           `json:"lockedUsers"`
	InactiveUsers int           `json:"inactiveUsers"`
	Breakdown     []StatusSlice `json:"breakdown"`
	MonthlyTrend  []MonthCount  `json:"monthlyTrend"`
}

// dateLayouts covers the formats user exports show up in.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"02.01.2006",
	time.RFC3339,
}

// parseDate tries the known export layouts. Unparseable values report false
// and never satisfy a date comparison.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AnalyzeStatus folds a user status export into the dashboard counts.
// Rows without a user ID are dropped. A user counts as expired when the
// validity end date is in the past, locked when the lock status code is
// positive, and inactive when the last logon is older than
// InactivityWindow. Active is the remainder, so a user matching several
// categories can drive it below the category sum.
func AnalyzeStatus(rows []StatusRow, now time.Time) *StatusSummary {
	summary := &StatusSummary{}
	cutoff := now.Add(-InactivityWindow)
	months := newCounter()

	for _, row := range rows {
		if row.UserID == "" {
			continue
		}
		summary.TotalUsers++

		if validThrough, ok := parseDate(row.ValidThrough); ok && validThrough.Before(now) {
			summary.ExpiredUsers++
		}
		if code, err := strconv.Atoi(row.LockStatus); err == nil && code > 0 {
			summary.LockedUsers++
		}
		if lastLogon, ok := parseDate(row.LastLogonDate); ok && lastLogon.Before(cutoff) {
			summary.InactiveUsers++
		}
		if created, ok := parseDate(row.CreationDate); ok {
			months.inc(created.Month().String()[:3])
		}
	}

	summary.ActiveUsers = summary.TotalUsers -
		(summary.ExpiredUsers + summary.LockedUsers + summary.InactiveUsers)

	summary.Breakdown = []StatusSlice{
		statusSlice("Expired Users", summary.ExpiredUsers, summary.TotalUsers),
		statusSlice("Locked Users", summary.LockedUsers, summary.TotalUsers),
		statusSlice("Inactive Users", summary.InactiveUsers, summary.TotalUsers),
	}

	summary.MonthlyTrend = make([]MonthCount, 0, len(months.order))
	for _, month := range months.order {
		summary.MonthlyTrend = append(summary.MonthlyTrend, MonthCount{
			Month: month,
			Count: months.counts[month],
		})
	}

	return summary
}

func statusSlice(name string, count, total int) StatusSlice {
	s := StatusSlice{Name: name, Count: count}
	if total > 0 {
		s.Percentage = float64(count) / float64(total) * 100
		s.Defined = true
	}
	return s
}

// counter counts occurrences while remembering first-appearance order.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) inc(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}
