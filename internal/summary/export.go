package summary

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	pkgerrors "github.com/angelmondragon/fleetstock-backend/pkg/errors"
)

// XLSXContentType is the media type of exported workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const invoiceSheet = "Invoice"

// Export is a rendered invoice workbook.
type Export struct {
	Filename string
	Data     []byte
	Invoice  *Invoice
}

var invoiceColumns = []struct {
	title string
	width float64
}{
	{"Date", 12},
	{"Item", 32},
	{"Note", 32},
	{"Quantity", 10},
	{"Unit", 10},
	{"Unit Price", 12},
	{"Total", 14},
}

var filenameUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// ExportXLSX renders the invoice as a single-sheet workbook with one section
// per boat, subtotals, and a grand total.
func (s *service) ExportXLSX(ctx context.Context, query InvoiceQuery) (*Export, error) {
	invoice, err := s.Invoice(ctx, query)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	data, err := renderWorkbook(f, invoice)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render invoice workbook")
	}

	slug := strings.Trim(filenameUnsafe.ReplaceAllString(strings.ToLower(invoice.FleetName), "-"), "-")
	if slug == "" {
		slug = "fleet"
	}
	return &Export{
		Filename: fmt.Sprintf("invoice-%s-%04d-%02d.xlsx", slug, invoice.Year, invoice.Month),
		Data:     data,
		Invoice:  invoice,
	}, nil
}

func renderWorkbook(f *excelize.File, invoice *Invoice) ([]byte, error) {
	if err := f.SetSheetName("Sheet1", invoiceSheet); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	amount, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, err
	}
	boldAmount, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: 4})
	if err != nil {
		return nil, err
	}

	w := &sheetWriter{f: f, sheet: invoiceSheet, row: 1}
	w.set(1, fmt.Sprintf("Invoice: %s", invoice.FleetName), bold)
	w.next()
	w.set(1, invoice.Period, 0)
	w.next()
	w.next()

	for col, c := range invoiceColumns {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(invoiceSheet, name, name, c.width); err != nil {
			return nil, err
		}
		w.set(col+1, c.title, bold)
	}
	w.next()

	for _, group := range invoice.Groups {
		title := group.BoatName
		if invoice.FleetID == nil && group.FleetName != "" {
			title = fmt.Sprintf("%s / %s", group.FleetName, group.BoatName)
		}
		w.set(1, title, bold)
		w.next()
		for _, line := range group.Lines {
			w.set(1, line.OutDate.Format("2006-01-02"), 0)
			w.set(2, line.Name, 0)
			w.set(3, line.Note, 0)
			w.set(4, line.Quantity, amount)
			w.set(5, line.SelectUnit, 0)
			w.set(6, line.UnitPrice, amount)
			w.set(7, line.Total, amount)
			w.next()
		}
		w.set(6, "Subtotal", bold)
		w.set(7, group.Subtotal, boldAmount)
		w.next()
		w.next()
	}

	w.set(6, "Grand Total", bold)
	w.set(7, invoice.Total, boldAmount)
	if w.err != nil {
		return nil, w.err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sheetWriter keeps the first error so rendering code stays linear.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
	err   error
}

func (w *sheetWriter) set(col int, value any, style int) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, w.row)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetCellValue(w.sheet, cell, value); err != nil {
		w.err = err
		return
	}
	if style != 0 {
		w.err = w.f.SetCellStyle(w.sheet, cell, cell, style)
	}
}

func (w *sheetWriter) next() {
	w.row++
}
