package export

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func writeXLSX(w io.Writer, records []Record) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("close xlsx workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	lastCol, err := excelize.CoordinatesToCellName(len(Columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastCol, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := rec.cells()
		for j, v := range values {
			values[j] = xlsxCell(v)
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// xlsxCell converts a value to one excelize stores natively.
func xlsxCell(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case decimal.Decimal:
		return val.InexactFloat64()
	case time.Time:
		return formatTime(val)
	case bool:
		// Boolean cells read back as TRUE/FALSE; keep the lowercase form.
		return strconv.FormatBool(val)
	default:
		return val
	}
}
