// Package report renders reconciliation results as CSV for Excel:
// UTF-8 with a byte-order mark and Swedish decimal commas, one combined
// report, one exceptions report, and one summary per run.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/levmatch/levmatch/internal/model"
)

// Column layout of the combined and exceptions reports. The PDF columns
// stay empty; they are placeholders for downstream invoice enrichment.
const (
	numFields       = 19
	colReview       = 0
	colReceiptID    = 1
	colReceiptDate  = 2
	colReceiptAmt   = 3
	colSupplier     = 4
	colText         = 5
	colClearingID   = 6
	colClearingDate = 7
	colClearingAmt  = 8
	colBankAmt      = 9
	colPDFSupplier  = 10
	colInvoiceNo    = 11
	colPDFDate      = 12
	colPDFTotal     = 13
	colCurrency     = 14
	colPDFFile      = 15
	colStatus       = 16
	colConfidence   = 17
	colComment      = 18
)

const (
	dateFormat      = "2006-01-02"
	timestampFormat = "20060102_150405"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Writer renders cases and summaries for one configuration. The amount
// column headers carry the configured account numbers.
type Writer struct {
	cfg      model.Config
	currency string
}

// NewWriter returns a report writer. currency labels every row; empty
// falls back to SEK.
func NewWriter(cfg model.Config, currency string) *Writer {
	if currency == "" {
		currency = "SEK"
	}
	return &Writer{cfg: cfg, currency: currency}
}

func (w *Writer) header() []string {
	h := make([]string, numFields)
	h[colReview] = "Behöver granskas"
	h[colReceiptID] = "Receipt Voucher Id"
	h[colReceiptDate] = "Receipt Voucher Date"
	h[colReceiptAmt] = fmt.Sprintf("Receipt %s Amount", w.cfg.APAccount)
	h[colSupplier] = "SIE Supplier"
	h[colText] = "SIE Text"
	h[colClearingID] = "Clearing Voucher Id"
	h[colClearingDate] = "Clearing Voucher Date"
	h[colClearingAmt] = fmt.Sprintf("Clearing %s Amount", w.cfg.APAccount)
	h[colBankAmt] = fmt.Sprintf("Clearing %s Amount", w.cfg.BankAccount)
	h[colPDFSupplier] = "PDF Supplier"
	h[colInvoiceNo] = "Invoice No"
	h[colPDFDate] = "PDF Invoice Date"
	h[colPDFTotal] = "PDF Total Amount"
	h[colCurrency] = "Currency"
	h[colPDFFile] = "PDF Filename"
	h[colStatus] = "Status"
	h[colConfidence] = "Match Confidence"
	h[colComment] = "Comment"
	return h
}

// MarshalCase renders one case row. A cross-year correction settlement
// takes the clearing columns, with the bank amount left empty since a
// correction moves no money.
func (w *Writer) MarshalCase(vouchers []model.Voucher, c model.InvoiceCase) []string {
	row := make([]string, numFields)
	row[colReview] = reviewFlag(c)
	row[colCurrency] = w.currency
	row[colStatus] = string(c.Status)
	row[colConfidence] = strconv.Itoa(c.Confidence)
	row[colComment] = c.Comment

	if r := c.Receipt; r != nil {
		v := r.Voucher(vouchers)
		row[colReceiptID] = v.ID()
		row[colReceiptDate] = v.Date.Format(dateFormat)
		row[colReceiptAmt] = Amount(r.Amount)
		row[colSupplier] = r.Supplier
		row[colText] = v.Description
		row[colInvoiceNo] = r.InvoiceNo
	}
	switch {
	case c.Clearing != nil:
		v := c.Clearing.Voucher(vouchers)
		row[colClearingID] = v.ID()
		row[colClearingDate] = v.Date.Format(dateFormat)
		row[colClearingAmt] = Amount(c.Clearing.Amount)
		row[colBankAmt] = Amount(c.Clearing.BankAmount)
		if c.Receipt == nil {
			row[colSupplier] = c.Clearing.Supplier
			row[colText] = v.Description
			row[colInvoiceNo] = c.Clearing.InvoiceNo
		}
	case c.Correction != nil:
		v := c.Correction.Voucher(vouchers)
		row[colClearingID] = v.ID()
		row[colClearingDate] = v.Date.Format(dateFormat)
		row[colClearingAmt] = Amount(c.Correction.Amount)
	}
	return row
}

func reviewFlag(c model.InvoiceCase) string {
	if c.NeedsReview() {
		return "JA"
	}
	return "NEJ"
}

// Amount renders a decimal with two places and the Swedish decimal comma.
func Amount(d decimal.Decimal) string {
	return strings.ReplaceAll(d.StringFixed(2), ".", ",")
}

// WriteCombined writes every case, one row each, in case order.
func (w *Writer) WriteCombined(out io.Writer, vouchers []model.Voucher, cases []model.InvoiceCase) error {
	return w.writeCases(out, vouchers, cases, false)
}

// WriteExceptions writes only the cases that need review.
func (w *Writer) WriteExceptions(out io.Writer, vouchers []model.Voucher, cases []model.InvoiceCase) error {
	return w.writeCases(out, vouchers, cases, true)
}

func (w *Writer) writeCases(out io.Writer, vouchers []model.Voucher, cases []model.InvoiceCase, exceptionsOnly bool) error {
	if _, err := out.Write(utf8BOM); err != nil {
		return fmt.Errorf("writing byte-order mark: %w", err)
	}
	cw := csv.NewWriter(out)
	if err := cw.Write(w.header()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, c := range cases {
		if exceptionsOnly && !c.NeedsReview() {
			continue
		}
		if err := cw.Write(w.MarshalCase(vouchers, c)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummary writes the bookkeeping totals and case counts of one year.
func (w *Writer) WriteSummary(out io.Writer, s model.YearSummary) error {
	if _, err := out.Write(utf8BOM); err != nil {
		return fmt.Errorf("writing byte-order mark: %w", err)
	}
	cw := csv.NewWriter(out)
	rows := [][]string{
		{"Category", "Count", fmt.Sprintf("Amount (%s)", w.currency)},
		{fmt.Sprintf("Account %s - Bookkeeping Totals", w.cfg.APAccount), "", ""},
		{"Opening Balance (Ing. saldo)", "", Amount(s.OpeningBalance)},
		{"Total Kredit (Receipts)", "", Amount(s.KreditSum)},
		{"Total Debet (Clearings)", "", Amount(s.DebetSum)},
		{"Closing Balance (Utg. saldo)", "", Amount(s.ClosingBalance)},
		{"", "", ""},
		{"Validation Summary", "", ""},
		{"Total Invoice Cases", strconv.Itoa(s.TotalCases), ""},
		{"  - Paid (OK)", strconv.Itoa(s.StatusCounts[model.StatusOK]), ""},
		{"  - Unpaid (Missing clearing)", strconv.Itoa(s.StatusCounts[model.StatusMissingClearing]), ""},
		{"  - Payments without receipt", strconv.Itoa(s.StatusCounts[model.StatusMissingReceipt]), ""},
		{"  - Needs review", strconv.Itoa(s.StatusCounts[model.StatusNeedsReview]), ""},
		{"  - Ambiguous", strconv.Itoa(s.StatusCounts[model.StatusAmbiguous]), ""},
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing summary row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CombinedFilename returns invoice_validation_<year>_<timestamp>.csv.
func CombinedFilename(year int, ts time.Time) string {
	return fmt.Sprintf("invoice_validation_%d_%s.csv", year, ts.Format(timestampFormat))
}

// ExceptionsFilename returns exceptions_<year>_<timestamp>.csv.
func ExceptionsFilename(year int, ts time.Time) string {
	return fmt.Sprintf("exceptions_%d_%s.csv", year, ts.Format(timestampFormat))
}

// SummaryFilename returns summary_<year>_<timestamp>.csv.
func SummaryFilename(year int, ts time.Time) string {
	return fmt.Sprintf("summary_%d_%s.csv", year, ts.Format(timestampFormat))
}

// WriteAll writes the combined, exceptions, and summary reports into dir,
// creating it if needed, and returns the three paths in that order. All
// three share the ts timestamp so one run's files sort together.
func (w *Writer) WriteAll(dir string, vouchers []model.Voucher, cases []model.InvoiceCase, summary model.YearSummary, ts time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}
	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{CombinedFilename(summary.Year, ts), func(out io.Writer) error { return w.WriteCombined(out, vouchers, cases) }},
		{ExceptionsFilename(summary.Year, ts), func(out io.Writer) error { return w.WriteExceptions(out, vouchers, cases) }},
		{SummaryFilename(summary.Year, ts), func(out io.Writer) error { return w.WriteSummary(out, summary) }},
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		out, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", f.name, err)
		}
		if err := f.write(out); err != nil {
			out.Close()
			return nil, fmt.Errorf("writing %s: %w", f.name, err)
		}
		if err := out.Close(); err != nil {
			return nil, fmt.Errorf("closing %s: %w", f.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
