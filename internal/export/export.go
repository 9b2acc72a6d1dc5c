// Package export writes filtered sales rows in the source CSV layout or as
// an Excel workbook.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/salesdash/internal/sales"
	"github.com/KaramelBytes/salesdash/internal/utils"
)

// DateLayout is the order date format of the source exports.
const DateLayout = "01/02/06 15:04"

// SheetName is the worksheet WriteXLSX writes to.
const SheetName = "Sales"

// Header lists the exported columns. The first six match the source files
// so the output can be ingested again.
var Header = []string{
	"Order ID", "Product", "Quantity Ordered", "Price Each", "Order Date", "Purchase Address",
	"Sales", "Month", "Month Name", "City", "Hour",
}

// WriteCSV writes rows with Header. Missing values are empty cells.
func WriteCSV(w io.Writer, rows []sales.Enriched) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		if err := cw.Write(csvRecord(r)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func csvRecord(r sales.Enriched) []string {
	rec := []string{
		r.OrderID, r.Product, text(r.Quantity), text(r.PriceEach), "", r.Address,
		text(r.Sales), "", r.MonthName(), r.City, "",
	}
	if r.HasDate {
		rec[4] = r.OrderDate.Format(DateLayout)
		rec[10] = strconv.Itoa(r.Hour)
	}
	if r.HasMonth() {
		rec[7] = strconv.Itoa(int(r.Month))
	}
	return rec
}

func text(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

// WriteXLSX writes rows to a single-sheet workbook. Numeric fields become
// numeric cells; missing values are left blank.
func WriteXLSX(w io.Writer, rows []sales.Enriched) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}
	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, xlsxRecord(r)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func xlsxRecord(r sales.Enriched) []interface{} {
	rec := []interface{}{
		r.OrderID, r.Product, number(r.Quantity), number(r.PriceEach), nil, r.Address,
		number(r.Sales), nil, r.MonthName(), r.City, nil,
	}
	if r.HasDate {
		rec[4] = r.OrderDate.Format(DateLayout)
		rec[10] = r.Hour
	}
	if r.HasMonth() {
		rec[7] = int(r.Month)
	}
	return rec
}

func number(d decimal.NullDecimal) interface{} {
	if !d.Valid {
		return nil
	}
	return d.Decimal.InexactFloat64()
}

// WriteFile writes rows to path, choosing the format by extension (.csv or
// .xlsx). The file is replaced atomically.
func WriteFile(path string, rows []sales.Enriched) error {
	var buf bytes.Buffer
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		if err := WriteCSV(&buf, rows); err != nil {
			return err
		}
	case ".xlsx":
		if err := WriteXLSX(&buf, rows); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported export format %q (use .csv or .xlsx)", ext)
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}
