package notify

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// buildExcelSummary renders a one-configuration workbook attached to the
// admin alert, so the lead can be filed without touching the admin panel.
func buildExcelSummary(view View) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Configuration"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")

	rows := [][2]any{
		{"Configuration ID", view.ID},
		{"Product line", view.ProductLine},
		{"Structure type", view.StructureType},
		{"Model", view.Model},
		{"Coverage", view.Coverage},
		{"Color", view.Color},
		{"Surface", view.Surface},
		{"Package", view.Package},
		{"Dimensions", fmt.Sprintf("%.0f × %.0f × %.0f cm", view.WidthCM, view.DepthCM, view.HeightCM)},
		{"Total price", view.TotalPrice},
		{"Customer", view.Customer.Name},
		{"Email", view.Customer.Email},
		{"Phone", view.Customer.Phone},
		{"Address", fmt.Sprintf("%s, %s %s", view.Customer.Address, view.Customer.City, view.Customer.PostalCode)},
		{"Notes", view.Notes},
	}

	for i, row := range rows {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", i+1), row[0])
		f.SetCellValue(sheet, fmt.Sprintf("B%d", i+1), row[1])
	}

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellStyle(sheet, "A1", fmt.Sprintf("A%d", len(rows)), style)

	f.SetActiveSheet(index)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	return buf.Bytes(), nil
}
