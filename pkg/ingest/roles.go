package ingest

import (
	"io"

	"github.com/rinexis/authreview/pkg/analysis"
)

// Role assignment file column names.
const (
	ColFinalPlacement = "Final Placement"
	ColRoleAction     = "Action"
)

var roleRequiredColumns = []string{ColFinalPlacement, ColRoleAction}

// ReadRoleAssignments decodes the role assignment file.
func ReadRoleAssignments(r io.Reader, opts Options) ([]analysis.RoleRow, error) {
	var rows []analysis.RoleRow
	err := readTable(r, roleRequiredColumns, opts.maxRows(), func(h *header, record []string) {
		rows = append(rows, analysis.RoleRow{
			Role:   h.get(record, ColFinalPlacement),
			Action: h.get(record, ColRoleAction),
		})
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}
