package model

import "github.com/shopspring/decimal"

// EventKind discriminates the Event variants.
type EventKind string

const (
	KindReceipt    EventKind = "receipt"
	KindClearing   EventKind = "clearing"
	KindCorrection EventKind = "correction"
	KindExclusion  EventKind = "exclusion"
)

// Event is one classified liability event. Variants reference their
// originating voucher and transactions by index into the decoded voucher
// slice, never by pointer, so the event set stays acyclic and serializable.
type Event interface {
	Kind() EventKind
}

// ReceiptEvent is a liability created (invoice) or negated (credit note)
// on the payable account without same-voucher settlement through the bank.
type ReceiptEvent struct {
	VoucherIndex int
	TxIndex      int             // the payable-account posting
	Amount       decimal.Decimal // signed payable amount
	CreditNote   bool            // true when the sign is debit
	Supplier     string          // extracted, may be empty
	InvoiceNo    string          // extracted, may be empty
}

func (e *ReceiptEvent) Kind() EventKind { return KindReceipt }

// Voucher resolves the originating voucher within its owning slice.
func (e *ReceiptEvent) Voucher(vouchers []Voucher) *Voucher {
	return &vouchers[e.VoucherIndex]
}

// ClearingEvent is a payable movement paired with a bank movement in the
// same voucher, i.e. a settlement (payment or refund).
type ClearingEvent struct {
	VoucherIndex int
	TxIndex      int             // the payable-account posting
	BankTxIndex  int             // the paired bank posting
	Amount       decimal.Decimal // signed payable amount
	BankAmount   decimal.Decimal // signed bank amount
	Supplier     string
	InvoiceNo    string
	// BankFallback is set when no bank line had an equal absolute amount
	// and the pairing fell back to the first bank line by position.
	BankFallback bool
}

func (e *ClearingEvent) Kind() EventKind { return KindClearing }

// Voucher resolves the originating voucher within its owning slice.
func (e *ClearingEvent) Voucher(vouchers []Voucher) *Voucher {
	return &vouchers[e.VoucherIndex]
}

// CorrectionEvent is a voucher whose description declares a correction
// relationship with another voucher. Corrects is true for a "Korrigering"
// voucher (it cancels Ref) and false for a "korrigerad" voucher (it has
// been corrected by Ref). Ref may be empty when the token carried no
// readable voucher reference.
type CorrectionEvent struct {
	VoucherIndex int
	Ref          string
	Corrects     bool
	Amount       decimal.Decimal // signed sum of payable postings
	Supplier     string
	InvoiceNo    string
}

func (e *CorrectionEvent) Kind() EventKind { return KindCorrection }

// Voucher resolves the originating voucher within its owning slice.
func (e *CorrectionEvent) Voucher(vouchers []Voucher) *Voucher {
	return &vouchers[e.VoucherIndex]
}

// ExclusionEvent marks a voucher withheld from matching entirely.
type ExclusionEvent struct {
	VoucherIndex int
	Reason       string
}

func (e *ExclusionEvent) Kind() EventKind { return KindExclusion }

var (
	_ Event = (*ReceiptEvent)(nil)
	_ Event = (*ClearingEvent)(nil)
	_ Event = (*CorrectionEvent)(nil)
	_ Event = (*ExclusionEvent)(nil)
)
