// Package export writes finished contact records to spreadsheet files
// an office user can open directly.
package export

import (
	"fmt"
	"time"

	"github.com/wilson66200519-bit/leadscout/internal/model"
)

// Columns is the fixed output schema, in order
var Columns = []string{"公司名稱", "電話", "傳真", "Email", "統一編號", "來源網址", "狀態"}

// rowValues flattens one record into the column order
func rowValues(record *model.ContactRecord) []string {
	return []string{
		record.CompanyName,
		record.Phone,
		record.Fax,
		record.Email,
		record.TaxID,
		record.SourceURL,
		string(record.Status),
	}
}

// TimestampedName builds an output filename like leads_20260830_142500.xlsx
func TimestampedName(prefix, ext string) string {
	return fmt.Sprintf("%s_%s%s", prefix, time.Now().Format("20060102_150405"), ext)
}
