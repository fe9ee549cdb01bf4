package httpapi

import (
	"bytes"
	"fmt"
	"time"

	"flowcrm-data/internal/domain"

	"github.com/xuri/excelize/v2"
)

var resourcesExportHeader = []string{
	"Resource ID",
	"Resource Name",
	"Endpoint",
	"Active",
	"Last Status",
	"Last Checked At",
}

// GenerateResourcesExport builds the admin xlsx snapshot of monitored
// resources. An empty slice yields a header-only sheet.
func GenerateResourcesExport(items []domain.MonitoredResource) ([]byte, error) {
	f := excelize.NewFile()

	sheetName := "Resources"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range resourcesExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	columnWidths := []float64{38, 25, 40, 10, 12, 22}
	for i := range resourcesExportHeader {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheetName, col, col, columnWidths[i]); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for rowIdx, res := range items {
		row := rowIdx + 2
		values := []any{
			res.ResourceID,
			res.ResourceName,
			"",
			res.IsActive,
			string(res.LastHealthCheckStatus),
			"",
		}
		if res.Endpoint.Valid {
			values[2] = res.Endpoint.String
		}
		if res.LastHealthCheckAt.Valid {
			values[5] = res.LastHealthCheckAt.Time.UTC().Format(time.RFC3339)
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}
