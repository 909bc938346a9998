package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/wilson66200519-bit/leadscout/internal/model"
)

// utf8BOM makes Excel decode the file as UTF-8 instead of the locale
// codepage, which would garble Chinese company names
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes records to a BOM-prefixed UTF-8 CSV file
func WriteCSV(path string, records []*model.ContactRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, record := range records {
		if err := writer.Write(rowValues(record)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}
