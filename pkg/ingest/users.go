package ingest

import (
	"io"
	"strings"

	"github.com/rinexis/authreview/pkg/useranalysis"
)

// User status export column names.
const (
	ColUserID        = "User ID"
	ColValidTo       = "Valid To"
	ColValidThrough  = "Valid Through"
	ColUserGroup     = "User Group"
	ColLockStatus    = "Lock Status"
	ColCreationDate  = "Creation Date"
	ColLastLogonDate = "Last Logon Date"
)

var userStatusRequiredColumns = []string{
	ColUserID,
	ColValidThrough,
	ColLockStatus,
	ColCreationDate,
	ColLastLogonDate,
}

// User access export column names. Roles are ';'-separated within the cell.
const (
	ColUser       = "User"
	ColDepartment = "Department"
	ColRoles      = "Roles"
)

var userAccessRequiredColumns = []string{ColUser, ColDepartment, ColRoles}

// ReadUserStatusExport decodes a user status export. Valid To and
// User Group are optional columns.
func ReadUserStatusExport(r io.Reader, opts Options) ([]useranalysis.StatusRow, error) {
	var rows []useranalysis.StatusRow
	err := readTable(r, userStatusRequiredColumns, opts.maxRows(), func(h *header, record []string) {
		rows = append(rows, useranalysis.StatusRow{
			UserID:        h.get(record, ColUserID),
			ValidTo:       h.get(record, ColValidTo),
			ValidThrough:  h.get(record, ColValidThrough),
			UserGroup:     h.get(record, ColUserGroup),
			LockStatus:    h.get(record, ColLockStatus),
			CreationDate:  h.get(record, ColCreationDate),
			LastLogonDate: h.get(record, ColLastLogonDate),
		})
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ReadUserAccessExport decodes a user access export, splitting the Roles
// cell on ';'.
func ReadUserAccessExport(r io.Reader, opts Options) ([]useranalysis.AccessRow, error) {
	var rows []useranalysis.AccessRow
	err := readTable(r, userAccessRequiredColumns, opts.maxRows(), func(h *header, record []string) {
		rows = append(rows, useranalysis.AccessRow{
			User:       h.get(record, ColUser),
			Department: h.get(record, ColDepartment),
			Roles:      splitRoles(h.get(record, ColRoles)),
		})
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func splitRoles(cell string) []string {
	if cell == "" {
		return nil
	}
	parts := strings.Split(cell, ";")
	roles := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			roles = append(roles, p)
		}
	}
	if len(roles) == 0 {
		return nil
	}
	return roles
}
