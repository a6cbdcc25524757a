package service

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"firds/workers/exporter/internal/domain"
)

// Header returns the output column names
func Header() []string {
	return []string{
		"FinInstrmGnlAttrbts.Id",
		"FinInstrmGnlAttrbts.FullNm",
		"FinInstrmGnlAttrbts.ClssfctnTp",
		"FinInstrmGnlAttrbts.CmmdtyDerivInd",
		"FinInstrmGnlAttrbts.NtnlCcy",
		"Issr",
	}
}

// EncodeCSV renders the header and one row per record
func EncodeCSV(records []domain.InstrumentRecord, useCRLF bool) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.UseCRLF = useCRLF

	if err := writer.Write(Header()); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for i, record := range records {
		if err := writer.Write(record.Row()); err != nil {
			return nil, fmt.Errorf("failed to write record %d: %w", i+1, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
