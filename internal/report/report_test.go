package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levmatch/levmatch/internal/model"
)

func TestWriteCombined_Rows(t *testing.T) {
	vouchers, cases := fixture()
	var buf bytes.Buffer

	err := testWriter().WriteCombined(&buf, vouchers, cases)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}))

	rows := parseCSV(t, buf.Bytes())
	require.Len(t, rows, 4)

	header := rows[0]
	assert.Equal(t, "Behöver granskas", header[colReview])
	assert.Equal(t, "Receipt 2440 Amount", header[colReceiptAmt])
	assert.Equal(t, "Clearing 2440 Amount", header[colClearingAmt])
	assert.Equal(t, "Clearing 1930 Amount", header[colBankAmt])
	assert.Equal(t, "Comment", header[colComment])

	matched := rows[1]
	assert.Equal(t, "NEJ", matched[colReview])
	assert.Equal(t, "A129", matched[colReceiptID])
	assert.Equal(t, "2025-03-08", matched[colReceiptDate])
	assert.Equal(t, "-163,00", matched[colReceiptAmt])
	assert.Equal(t, "Elektroskandia Sverige AB", matched[colSupplier])
	assert.Equal(t, "A137", matched[colClearingID])
	assert.Equal(t, "163,00", matched[colClearingAmt])
	assert.Equal(t, "-163,00", matched[colBankAmt])
	assert.Equal(t, "31641715", matched[colInvoiceNo])
	assert.Equal(t, "SEK", matched[colCurrency])
	assert.Equal(t, "OK", matched[colStatus])
	assert.Equal(t, "100", matched[colConfidence])
	assert.Empty(t, matched[colPDFSupplier])
	assert.Empty(t, matched[colPDFFile])

	unmatched := rows[2]
	assert.Equal(t, "JA", unmatched[colReview])
	assert.Equal(t, "A150", unmatched[colReceiptID])
	assert.Empty(t, unmatched[colClearingID])
	assert.Equal(t, "Missing clearing", unmatched[colStatus])

	orphan := rows[3]
	assert.Equal(t, "JA", orphan[colReview])
	assert.Empty(t, orphan[colReceiptID])
	assert.Equal(t, "A188", orphan[colClearingID])
	assert.Equal(t, "Bauhaus", orphan[colSupplier])
	assert.Equal(t, "99031122", orphan[colInvoiceNo])
	assert.Equal(t, "Missing receipt", orphan[colStatus])
}

func TestWriteExceptions_FiltersReconciled(t *testing.T) {
	vouchers, cases := fixture()
	var buf bytes.Buffer

	err := testWriter().WriteExceptions(&buf, vouchers, cases)
	require.NoError(t, err)

	rows := parseCSV(t, buf.Bytes())
	require.Len(t, rows, 3) // header + two review rows
	for _, row := range rows[1:] {
		assert.Equal(t, "JA", row[colReview])
	}
}

func TestMarshalCase_CorrectionSettlement(t *testing.T) {
	vouchers := []model.Voucher{
		v("A", 90, d(2024, 3, 1), "Leverantörsfaktura - Mottagen - Nibe AB - 4962010809 (korrigerad med verifikation A12)",
			model.Transaction{Account: "2440", Amount: dec("-900.00")},
		),
		v("A", 12, d(2025, 1, 20), "Korrigering av ver.nr. A90",
			model.Transaction{Account: "2440", Amount: dec("900.00")},
		),
	}
	c := model.InvoiceCase{
		Receipt: &model.ReceiptEvent{
			VoucherIndex: 0, TxIndex: 0,
			Amount:   dec("-900.00"),
			Supplier: "Nibe AB", InvoiceNo: "4962010809",
		},
		Correction: &model.CorrectionEvent{
			VoucherIndex: 1, Ref: "A90", Corrects: true,
			Amount: dec("900.00"), Supplier: "Nibe AB",
		},
		Status:     model.StatusOK,
		Confidence: 100,
		Comment:    "Cleared by cross-year correction",
	}

	row := testWriter().MarshalCase(vouchers, c)

	assert.Equal(t, "A12", row[colClearingID])
	assert.Equal(t, "2025-01-20", row[colClearingDate])
	assert.Equal(t, "900,00", row[colClearingAmt])
	assert.Empty(t, row[colBankAmt])
	assert.Equal(t, "NEJ", row[colReview])
}

func TestWriteSummary_Rows(t *testing.T) {
	s := model.YearSummary{
		Year:           2025,
		OpeningBalance: dec("500.00"),
		KreditSum:      dec("1530.50"),
		DebetSum:       dec("1200.00"),
		PeriodChange:   dec("330.50"),
		ClosingBalance: dec("830.50"),
		TotalCases:     3,
		StatusCounts: map[model.Status]int{
			model.StatusOK:              1,
			model.StatusMissingClearing: 1,
			model.StatusMissingReceipt:  1,
		},
	}
	var buf bytes.Buffer

	err := testWriter().WriteSummary(&buf, s)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
	rows := parseCSV(t, buf.Bytes())
	assert.Contains(t, rows, []string{"Category", "Count", "Amount (SEK)"})
	assert.Contains(t, rows, []string{"Account 2440 - Bookkeeping Totals", "", ""})
	assert.Contains(t, rows, []string{"Opening Balance (Ing. saldo)", "", "500,00"})
	assert.Contains(t, rows, []string{"Total Kredit (Receipts)", "", "1530,50"})
	assert.Contains(t, rows, []string{"Total Debet (Clearings)", "", "1200,00"})
	assert.Contains(t, rows, []string{"Closing Balance (Utg. saldo)", "", "830,50"})
	assert.Contains(t, rows, []string{"Total Invoice Cases", "3", ""})
	assert.Contains(t, rows, []string{"  - Paid (OK)", "1", ""})
}

func TestHeaderFollowsConfiguredAccounts(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.APAccount = "2441"
	cfg.BankAccount = "1940"
	var buf bytes.Buffer

	err := NewWriter(cfg, "EUR").WriteCombined(&buf, nil, nil)
	require.NoError(t, err)

	header := parseCSV(t, buf.Bytes())[0]
	assert.Equal(t, "Receipt 2441 Amount", header[colReceiptAmt])
	assert.Equal(t, "Clearing 2441 Amount", header[colClearingAmt])
	assert.Equal(t, "Clearing 1940 Amount", header[colBankAmt])
}

func TestFilenames(t *testing.T) {
	ts := time.Date(2025, 6, 1, 13, 5, 1, 0, time.UTC)

	assert.Equal(t, "invoice_validation_2024_20250601_130501.csv", CombinedFilename(2024, ts))
	assert.Equal(t, "exceptions_2024_20250601_130501.csv", ExceptionsFilename(2024, ts))
	assert.Equal(t, "summary_2024_20250601_130501.csv", SummaryFilename(2024, ts))
}

func TestAmount(t *testing.T) {
	assert.Equal(t, "-163,00", Amount(dec("-163")))
	assert.Equal(t, "0,00", Amount(decimal.Zero))
	assert.Equal(t, "1234,57", Amount(dec("1234.567")))
}

func TestWriteAll(t *testing.T) {
	vouchers, cases := fixture()
	summary := model.YearSummary{Year: 2025, TotalCases: len(cases), StatusCounts: map[model.Status]int{}}
	dir := filepath.Join(t.TempDir(), "reports")
	ts := time.Date(2025, 6, 1, 13, 5, 1, 0, time.UTC)

	paths, err := testWriter().WriteAll(dir, vouchers, cases, summary, ts)
	require.NoError(t, err)

	require.Len(t, paths, 3)
	assert.Equal(t, filepath.Join(dir, "invoice_validation_2025_20250601_130501.csv"), paths[0])
	assert.Equal(t, filepath.Join(dir, "exceptions_2025_20250601_130501.csv"), paths[1])
	assert.Equal(t, filepath.Join(dir, "summary_2025_20250601_130501.csv"), paths[2])
	for _, p := range paths {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
	}
}

// fixture returns three cases: a match, an open receipt, and an orphan
// clearing.
func fixture() ([]model.Voucher, []model.InvoiceCase) {
	vouchers := []model.Voucher{
		v("A", 129, d(2025, 3, 8), "Leverantörsfaktura - Mottagen - Elektroskandia Sverige AB - 31641715",
			model.Transaction{Account: "4010", Amount: dec("163.00")},
			model.Transaction{Account: "2440", Amount: dec("-163.00")},
		),
		v("A", 137, d(2025, 3, 11), "Leverantörsfaktura - Betalat - Elektroskandia Sverige AB - 31641715",
			model.Transaction{Account: "2440", Amount: dec("163.00")},
			model.Transaction{Account: "1930", Amount: dec("-163.00")},
		),
		v("A", 150, d(2025, 4, 2), "Leverantörsfaktura - Mottagen - Ahlsell Sverige AB - 7466687907",
			model.Transaction{Account: "4010", Amount: dec("330.00")},
			model.Transaction{Account: "2440", Amount: dec("-330.00")},
		),
		v("A", 188, d(2025, 5, 6), "Leverantörsfaktura - Betalat - Bauhaus - 99031122",
			model.Transaction{Account: "2440", Amount: dec("512.00")},
			model.Transaction{Account: "1930", Amount: dec("-512.00")},
		),
	}
	receipt129 := &model.ReceiptEvent{
		VoucherIndex: 0, TxIndex: 1,
		Amount:   dec("-163.00"),
		Supplier: "Elektroskandia Sverige AB", InvoiceNo: "31641715",
	}
	clearing137 := &model.ClearingEvent{
		VoucherIndex: 1, TxIndex: 0, BankTxIndex: 1,
		Amount: dec("163.00"), BankAmount: dec("-163.00"),
		Supplier: "Elektroskandia Sverige AB", InvoiceNo: "31641715",
	}
	receipt150 := &model.ReceiptEvent{
		VoucherIndex: 2, TxIndex: 1,
		Amount:   dec("-330.00"),
		Supplier: "Ahlsell Sverige AB", InvoiceNo: "7466687907",
	}
	clearing188 := &model.ClearingEvent{
		VoucherIndex: 3, TxIndex: 0, BankTxIndex: 1,
		Amount: dec("512.00"), BankAmount: dec("-512.00"),
		Supplier: "Bauhaus", InvoiceNo: "99031122",
	}
	cases := []model.InvoiceCase{
		{
			Receipt: receipt129, Clearing: clearing137,
			Status: model.StatusOK, Confidence: 100,
			Comment: "Clearing found 3 days after receipt",
		},
		{
			Receipt: receipt150,
			Status:  model.StatusMissingClearing,
			Comment: "No clearing found with matching amount",
		},
		{
			Clearing: clearing188,
			Status:   model.StatusMissingReceipt,
			Comment:  "No receipt found for this payment",
		},
	}
	return vouchers, cases
}

func testWriter() *Writer {
	cfg := model.DefaultConfig()
	cfg.TargetYear = 2025
	return NewWriter(cfg, "SEK")
}

func parseCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}))).ReadAll()
	require.NoError(t, err)
	return rows
}

func v(series string, number int, d time.Time, description string, txs ...model.Transaction) model.Voucher {
	return model.Voucher{
		Series:       series,
		Number:       number,
		Date:         d,
		Description:  description,
		Transactions: txs,
	}
}

func d(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
