package useranalysis

import (
	"math"
	"testing"
	"time"
)

var analysisNow = time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

func statusRow(userID, validThrough, lockStatus, creationDate, lastLogon string) StatusRow {
	return StatusRow{
		UserID:        userID,
		ValidThrough:  validThrough,
		LockStatus:    lockStatus,
		CreationDate:  creationDate,
		LastLogonDate: lastLogon,
	}
}

func TestAnalyzeStatus_Counts(t *testing.T) {
	rows := []StatusRow{
		// expired: validity ended before now
		statusRow("U1", "2026-01-01", "0", "2026-01-10", "2026-06-14"),
		// locked: positive lock code
		statusRow("U2", "2027-01-01", "64", "2026-02-10", "2026-06-14"),
		// inactive: last logon beyond the 30-day window
		statusRow("U3", "2027-01-01", "0", "2026-02-20", "2026-04-01"),
		// healthy
		statusRow("U4", "2027-01-01", "0", "2026-03-05", "2026-06-14"),
		// empty user ID: dropped entirely
		statusRow("", "2026-01-01", "64", "2026-03-05", "2026-04-01"),
	}

	s := AnalyzeStatus(rows, analysisNow)

	if s.TotalUsers != 4 {
		t.Fatalf("TotalUsers = %d, want 4", s.TotalUsers)
	}
	if s.ExpiredUsers != 1 || s.LockedUsers != 1 || s.InactiveUsers != 1 {
		t.Errorf("expired/locked/inactive = %d/%d/%d, want 1/1/1",
			s.ExpiredUsers, s.LockedUsers, s.InactiveUsers)
	}
	if s.ActiveUsers != 1 {
		t.Errorf("ActiveUsers = %d, want 1", s.ActiveUsers)
	}
}

func TestAnalyzeStatus_ActiveIsRemainder(t *testing.T) {
	// A single user that is expired, locked, and inactive at once drags the
	// remainder negative. The summary reports the arithmetic as-is.
	rows := []StatusRow{
		statusRow("U1", "2025-01-01", "128", "2025-01-01", "2025-02-01"),
	}

	s := AnalyzeStatus(rows, analysisNow)

	if s.ActiveUsers != -2 {
		t.Errorf("ActiveUsers = %d, want -2", s.ActiveUsers)
	}
}

func TestAnalyzeStatus_Breakdown(t *testing.T) {
	rows := []StatusRow{
		statusRow("U1", "2025-01-01", "0", "", "2026-06-14"),
		statusRow("U2", "2027-01-01", "0", "", "2026-06-14"),
		statusRow("U3", "2027-01-01", "0", "", "2026-06-14"),
		statusRow("U4", "2027-01-01", "0", "", "2026-06-14"),
	}

	s := AnalyzeStatus(rows, analysisNow)

	if len(s.Breakdown) != 3 {
		t.Fatalf("len(Breakdown) = %d, want 3", len(s.Breakdown))
	}
	expired := s.Breakdown[0]
	if expired.Name != "Expired Users" || expired.Count != 1 {
		t.Errorf("breakdown[0] = %+v, want Expired Users count 1", expired)
	}
	if !expired.Defined || math.Abs(expired.Percentage-25) > 1e-9 {
		t.Errorf("expired percentage = %v (defined=%v), want 25", expired.Percentage, expired.Defined)
	}
}

func TestAnalyzeStatus_EmptyInput(t *testing.T) {
	s := AnalyzeStatus(nil, analysisNow)

	if s.TotalUsers != 0 || s.ActiveUsers != 0 {
		t.Fatalf("empty input: total=%d active=%d, want 0/0", s.TotalUsers, s.ActiveUsers)
	}
	for _, slice := range s.Breakdown {
		if slice.Defined {
			t.Errorf("%s: percentage defined with zero users", slice.Name)
		}
	}
}

func TestAnalyzeStatus_UnparseableDatesDoNotCount(t *testing.T) {
	rows := []StatusRow{
		statusRow("U1", "not-a-date", "zz", "garbage", "also garbage"),
	}

	s := AnalyzeStatus(rows, analysisNow)

	if s.ExpiredUsers != 0 || s.LockedUsers != 0 || s.InactiveUsers != 0 {
		t.Errorf("expired/locked/inactive = %d/%d/%d, want 0/0/0",
			s.ExpiredUsers, s.LockedUsers, s.InactiveUsers)
	}
	if len(s.MonthlyTrend) != 0 {
		t.Errorf("MonthlyTrend = %v, want empty", s.MonthlyTrend)
	}
}

func TestAnalyzeStatus_MonthlyTrendOrder(t *testing.T) {
	rows := []StatusRow{
		statusRow("U1", "", "", "2026-03-01", ""),
		statusRow("U2", "", "", "2026-01-15", ""),
		statusRow("U3", "", "", "2026-03-20", ""),
	}

	s := AnalyzeStatus(rows, analysisNow)

	want := []MonthCount{{Month: "Mar", Count: 2}, {Month: "Jan", Count: 1}}
	if len(s.MonthlyTrend) != len(want) {
		t.Fatalf("MonthlyTrend = %v, want %v", s.MonthlyTrend, want)
	}
	for i := range want {
		if s.MonthlyTrend[i] != want[i] {
			t.Errorf("MonthlyTrend[%d] = %v, want %v", i, s.MonthlyTrend[i], want[i])
		}
	}
}

func TestAnalyzeStatus_DateLayouts(t *testing.T) {
	tests := []struct {
		name         string
		validThrough string
		expired      bool
	}{
		{"iso", "2026-01-01", true},
		{"iso datetime", "2026-01-01 08:30:00", true},
		{"us slash", "01/01/2026", true},
		{"eu dotted", "01.01.2026", true},
		{"rfc3339", "2026-01-01T00:00:00Z", true},
		{"future", "2027-01-01", false},
		{"empty", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := AnalyzeStatus([]StatusRow{statusRow("U1", tc.validThrough, "", "", "")}, analysisNow)
			if got := s.ExpiredUsers == 1; got != tc.expired {
				t.Errorf("expired = %v, want %v", got, tc.expired)
			}
		})
	}
}
