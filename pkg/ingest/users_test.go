package ingest

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const userStatusCSV = `User ID,Valid To,Valid Through,User Group,Lock Status,Creation Date,Last Logon Date
U1,,2026-12-31,FINANCE,0,2025-03-10,2026-06-01
U2,,2025-06-30,IT, 64 ,2024-11-02,2026-05-20
`

func TestReadUserStatusExport(t *testing.T) {
	rows, err := ReadUserStatusExport(strings.NewReader(userStatusCSV), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].UserID != "U1" || rows[0].ValidThrough != "2026-12-31" {
		t.Errorf("row 1 decoded wrong: %+v", rows[0])
	}
	if rows[1].LockStatus != "64" {
		t.Errorf("LockStatus = %q, want trimmed %q", rows[1].LockStatus, "64")
	}
}

func TestReadUserStatusExport_MissingColumn(t *testing.T) {
	csv := "User ID,Creation Date\nU1,2025-01-01\n"
	_, err := ReadUserStatusExport(strings.NewReader(csv), Options{})
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestReadUserAccessExport(t *testing.T) {
	csv := "User,Department,Roles\nalice,Finance,AP_CLERK; GL_POST\nbob,IT,\n"
	rows, err := ReadUserAccessExport(strings.NewReader(csv), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if !reflect.DeepEqual(rows[0].Roles, []string{"AP_CLERK", "GL_POST"}) {
		t.Errorf("Roles = %v, want split and trimmed", rows[0].Roles)
	}
	if rows[1].Roles != nil {
		t.Errorf("empty Roles cell decoded to %v, want nil", rows[1].Roles)
	}
}

func TestReadUserAccessExport_EmptyFile(t *testing.T) {
	_, err := ReadUserAccessExport(strings.NewReader(""), Options{})
	if !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}
