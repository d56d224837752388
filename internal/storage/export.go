package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"carport-configurator/internal/catalog"
)

// ExportConfigurationsToExcel renders a product line's configurations into
// an xlsx workbook for the admin export endpoint.
func (s *PostgresStorage) ExportConfigurationsToExcel(ctx context.Context, line catalog.ProductLine) ([]byte, error) {
	const operation = "storage.ExportConfigurationsToExcel"

	rows, err := s.ListConfigurations(ctx, line)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Configurations"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create sheet: %w", operation, err)
	}
	f.DeleteSheet("Sheet1")

	headers := []string{
		"ID", "Width (cm)", "Depth (cm)", "Height (cm)",
		"Customer", "Email", "Phone", "City",
		"Total Price", "Status", "Created At",
	}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellStyle(sheet, "A1", "K1", style)

	for row, cfg := range rows {
		data := []interface{}{
			cfg.ID,
			cfg.WidthCM,
			cfg.DepthCM,
			cfg.HeightCM,
			cfg.CustomerName,
			cfg.CustomerEmail,
			cfg.CustomerPhone,
			cfg.CustomerCity,
			cfg.TotalPrice,
			cfg.Status,
			cfg.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, value := range data {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	f.SetActiveSheet(index)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("%s: failed to write workbook: %w", operation, err)
	}

	return buf.Bytes(), nil
}
