package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
	"github.com/zatekoja/medtourclinic/internal/domain/entities"
)

// LeadSheetName is the worksheet holding exported leads
const LeadSheetName = "Leads"

// LeadExportHeader is the first row of a lead export
var LeadExportHeader = []string{
	"ID",
	"First Name",
	"Last Name",
	"Email",
	"Phone",
	"Source",
	"Status",
	"Service",
	"Score",
	"Level",
	"Created At",
}

var leadColumnWidths = []float64{8, 18, 18, 28, 18, 12, 12, 24, 8, 12, 20}

// GenerateLeadExport renders scored leads as an XLSX workbook
func GenerateLeadExport(leads []*entities.ScoredLead) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(LeadSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(LeadSheetName, "A1", &LeadExportHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(LeadExportHeader), 1)
	if err != nil {
		return nil, fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetCellStyle(LeadSheetName, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, width := range leadColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column: %w", err)
		}
		if err := f.SetColWidth(LeadSheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, scored := range leads {
		lead := scored.Lead
		row := []interface{}{
			lead.ID,
			lead.FirstName,
			lead.LastName,
			lead.Email,
			lead.Phone,
			string(lead.Source),
			string(lead.Status),
			serviceOf(lead.FormData),
			scored.Score,
			scored.Level,
			lead.CreatedAt.UTC().Format("2006-01-02 15:04"),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(LeadSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// serviceOf returns the first non-empty service intent field
func serviceOf(form entities.FormData) string {
	for _, k := range entities.ServiceIntentKeys {
		if v := form[k]; v != "" {
			return v
		}
	}
	return ""
}
