package ingest

import (
	"io"

	"github.com/rinexis/authreview/pkg/analysis"
)

// Risk dataset column names. Order in the file is not significant.
const (
	ColRiskID              = "Risk ID"
	ColDescription         = "Description"
	ColRiskLevel           = "Risk Level"
	ColRiskType            = "Risk Type"
	ColFunctionID          = "Function ID"
	ColFunctionDescription = "Function Description"
	ColBusinessProcess     = "Business Process"
	ColAction              = "Action"
)

var riskRequiredColumns = []string{
	ColRiskID,
	ColRiskLevel,
	ColRiskType,
	ColFunctionID,
	ColAction,
}

// ReadRiskDataset decodes the risk definition dataset. Description,
// Function Description and Business Process are optional columns.
func ReadRiskDataset(r io.Reader, opts Options) ([]analysis.RiskRow, error) {
	var rows []analysis.RiskRow
	err := readTable(r, riskRequiredColumns, opts.maxRows(), func(h *header, record []string) {
		rows = append(rows, analysis.RiskRow{
			RiskID:              h.get(record, ColRiskID),
			Description:         h.get(record, ColDescription),
			RiskLevel:           h.get(record, ColRiskLevel),
			RiskType:            h.get(record, ColRiskType),
			FunctionID:          h.get(record, ColFunctionID),
			FunctionDescription: h.get(record, ColFunctionDescription),
			BusinessProcess:     h.get(record, ColBusinessProcess),
			Action:              h.get(record, ColAction),
		})
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}
