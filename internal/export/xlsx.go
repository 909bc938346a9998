package export

import (
	"fmt"

	"github.com/tealeg/xlsx/v2"

	"github.com/wilson66200519-bit/leadscout/internal/model"
)

// WriteXLSX writes records to an .xlsx workbook with one sheet. Every
// cell is written as a string so Excel never reformats phone numbers or
// drops the leading zero.
func WriteXLSX(path string, records []*model.ContactRecord) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("聯絡資料")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, column := range Columns {
		header.AddCell().SetString(column)
	}

	for _, record := range records {
		row := sheet.AddRow()
		for _, value := range rowValues(record) {
			row.AddCell().SetString(value)
		}
	}

	if err := file.Save(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
