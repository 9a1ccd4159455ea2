package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

func writeCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(Columns))
	for _, rec := range records {
		for i, v := range rec.cells() {
			row[i] = csvCell(v)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", rec.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case bool:
		return strconv.FormatBool(val)
	case decimal.Decimal:
		return val.String()
	case time.Time:
		return formatTime(val)
	default:
		return fmt.Sprint(val)
	}
}
