package ingest

import (
	"errors"
	"strings"
	"testing"
)

const riskCSV = `Risk ID,Description,Risk Level,Risk Type,Function ID,Function Description,Action
R1,Procure to Pay - create and approve,High,Segregation of Duties,F1,Create PO, create
R1,Procure to Pay - create and approve,High,Segregation of Duties,F2,Approve PO,APPROVE
R2,Basis - destructive maintenance,Critical,Critical Action,F3,Client admin,DELETE
`

func TestReadRiskDataset(t *testing.T) {
	rows, err := ReadRiskDataset(strings.NewReader(riskCSV), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	// Values are trimmed but not case-normalized here; normalization belongs
	// to the graph builder.
	if rows[0].Action != "create" {
		t.Errorf("Action = %q, want trimmed %q", rows[0].Action, "create")
	}
	if rows[2].RiskType != "Critical Action" || rows[2].FunctionID != "F3" {
		t.Errorf("row 3 decoded wrong: %+v", rows[2])
	}
}

func TestReadRiskDataset_ColumnOrderIrrelevant(t *testing.T) {
	csv := "Action,Function ID,Risk Type,Risk Level,Risk ID\nCREATE,F1,Critical Action,High,R1\n"
	rows, err := ReadRiskDataset(strings.NewReader(csv), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows[0].RiskID != "R1" || rows[0].Action != "CREATE" {
		t.Errorf("decoded %+v", rows[0])
	}
}

func TestReadRiskDataset_MissingColumn(t *testing.T) {
	csv := "Risk ID,Description\nR1,x\n"
	_, err := ReadRiskDataset(strings.NewReader(csv), Options{})
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestReadRiskDataset_EmptyFile(t *testing.T) {
	_, err := ReadRiskDataset(strings.NewReader(""), Options{})
	if !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}

func TestReadRiskDataset_RowCap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Risk ID,Risk Level,Risk Type,Function ID,Action\n")
	for i := 0; i < 5; i++ {
		sb.WriteString("R1,High,Critical Action,F1,CREATE\n")
	}
	_, err := ReadRiskDataset(strings.NewReader(sb.String()), Options{MaxRows: 3})
	if !errors.Is(err, ErrTooManyRows) {
		t.Fatalf("expected ErrTooManyRows, got %v", err)
	}
}

func TestReadRoleAssignments(t *testing.T) {
	csv := "Final Placement,Action\nClerk, create \nManager,APPROVE\n,orphaned\n"
	rows, err := ReadRoleAssignments(strings.NewReader(csv), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The empty-role row is kept here; the index builder drops it.
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Role != "Clerk" || rows[0].Action != "create" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[2].Role != "" {
		t.Errorf("row 2 role should decode empty, got %q", rows[2].Role)
	}
}

func TestReadRoleAssignments_ShortRow(t *testing.T) {
	csv := "Final Placement,Action\nClerk\n"
	rows, err := ReadRoleAssignments(strings.NewReader(csv), Options{})
	if err != nil {
		t.Fatalf("short rows should decode with empty values, got %v", err)
	}
	if rows[0].Action != "" {
		t.Errorf("missing field should read empty, got %q", rows[0].Action)
	}
}
