package model

import "github.com/shopspring/decimal"

// Status is the reconciliation outcome of one invoice case.
type Status string

const (
	StatusOK              Status = "OK"
	StatusMissingClearing Status = "Missing clearing"
	StatusMissingReceipt  Status = "Missing receipt"
	StatusNeedsReview     Status = "Needs review"
	StatusAmbiguous       Status = "Ambiguous"
)

// InvoiceCase is one row of the reconciliation output. At least one of
// Receipt and Clearing is set; both set means a successful match.
// Correction only ever accompanies a Receipt (cross-year settlement).
type InvoiceCase struct {
	Receipt    *ReceiptEvent
	Clearing   *ClearingEvent
	Correction *CorrectionEvent
	Status     Status
	Confidence int // 0-100
	Comment    string
}

// NeedsReview reports whether the case requires human attention.
func (c InvoiceCase) NeedsReview() bool {
	return c.Status != StatusOK
}

// YearSummary reports the payable-account balance movement and case counts
// for one reconciled year.
type YearSummary struct {
	Year           int
	OpeningBalance decimal.Decimal
	KreditSum      decimal.Decimal // sum of |credit| postings (liabilities raised)
	DebetSum       decimal.Decimal // sum of |debit| postings (liabilities settled)
	PeriodChange   decimal.Decimal // KreditSum - DebetSum
	ClosingBalance decimal.Decimal // OpeningBalance + PeriodChange
	TotalCases     int
	StatusCounts   map[Status]int
}
