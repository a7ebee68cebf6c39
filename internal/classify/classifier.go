// Package classify derives liability events from decoded vouchers using
// the debit/credit sign rules on the accounts-payable account.
package classify

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/levmatch/levmatch/internal/model"
)

// Correction tokens carry an optional voucher reference, e.g.
// "(korrigerad med verifikation A532)" or "Korrigering av ver.nr. A120".
var (
	correctedRef  = regexp.MustCompile(`(?i:korrigerad).*?([A-Z]+\d+)`)
	correctionRef = regexp.MustCompile(`(?i:korrigering).*?([A-Z]+\d+)`)
)

// Classifier turns vouchers into receipt, clearing, correction, and
// exclusion events. It is a pure function of its input; the voucher slice
// is never modified and events reference it by index.
type Classifier struct {
	cfg model.Config
	log zerolog.Logger
}

// NewClassifier returns a Classifier using cfg's account numbers and
// amount tolerance.
func NewClassifier(cfg model.Config, log zerolog.Logger) *Classifier {
	return &Classifier{cfg: cfg, log: log}
}

// Events classifies every voucher and returns the events in voucher order.
// Each payable posting yields at most one event; a voucher whose payable
// postings cancel out without a bank line yields a single exclusion.
func (c *Classifier) Events(vouchers []model.Voucher) []model.Event {
	var events []model.Event
	var receipts, creditNotes, clearings, corrections, excluded int
	for vi := range vouchers {
		for _, e := range c.classify(vouchers, vi) {
			switch ev := e.(type) {
			case *model.ReceiptEvent:
				receipts++
				if ev.CreditNote {
					creditNotes++
				}
			case *model.ClearingEvent:
				clearings++
			case *model.CorrectionEvent:
				corrections++
			case *model.ExclusionEvent:
				excluded++
			}
			events = append(events, e)
		}
	}
	c.log.Info().
		Int("receipts", receipts).
		Int("credit_notes", creditNotes).
		Int("clearings", clearings).
		Int("corrections", corrections).
		Int("excluded", excluded).
		Msg("classified vouchers")
	return events
}

func (c *Classifier) classify(vouchers []model.Voucher, vi int) []model.Event {
	v := &vouchers[vi]
	supplier, invoiceNo := extractParties(v.Description)
	events := c.correctionEvents(v, vi, supplier, invoiceNo)

	var apIdx, bankIdx []int
	for ti, t := range v.Transactions {
		switch t.Account {
		case c.cfg.APAccount:
			apIdx = append(apIdx, ti)
		case c.cfg.BankAccount:
			bankIdx = append(bankIdx, ti)
		}
	}
	if len(apIdx) == 0 {
		return events
	}

	// An invoice and its credit note booked together with no payment
	// cancel out; the voucher is withheld from matching entirely.
	if len(bankIdx) == 0 && v.TotalFor(c.cfg.APAccount).Abs().LessThanOrEqual(c.cfg.AmountTolerance) {
		c.log.Info().Str("voucher", v.ID()).Msg("excluding self-canceling voucher without payment")
		return append(events, &model.ExclusionEvent{VoucherIndex: vi, Reason: "self-canceling without payment"})
	}

	for _, ti := range apIdx {
		amount := v.Transactions[ti].Amount
		if amount.IsZero() {
			continue
		}
		events = append(events, c.classifyPosting(v, vi, ti, amount, bankIdx, supplier, invoiceNo))
	}
	return events
}

// classifyPosting applies the sign rules to one payable posting. A credit
// raises the liability and a debit settles it; settlement needs a bank
// line in the same voucher, otherwise a debit is a received credit note.
// A credit only becomes a clearing (credit-note refund) when a bank line
// of equal absolute amount and opposite sign backs it; without that
// evidence it stays a plain receipt even in a voucher that pays some
// other invoice through the bank.
func (c *Classifier) classifyPosting(v *model.Voucher, vi, ti int, amount decimal.Decimal, bankIdx []int, supplier, invoiceNo string) model.Event {
	exact := -1
	if len(bankIdx) > 0 {
		exact = c.exactBankPair(v, amount, bankIdx)
	}
	if len(bankIdx) == 0 || (amount.Sign() < 0 && exact < 0) {
		return &model.ReceiptEvent{
			VoucherIndex: vi,
			TxIndex:      ti,
			Amount:       amount,
			CreditNote:   amount.Sign() > 0,
			Supplier:     supplier,
			InvoiceNo:    invoiceNo,
		}
	}

	bi, fallback := exact, false
	if bi < 0 {
		bi, fallback = bankIdx[0], true
		c.log.Warn().Str("voucher", v.ID()).Int("tx", ti).
			Msg("no bank line matches payable amount, pairing by position")
	}
	return &model.ClearingEvent{
		VoucherIndex: vi,
		TxIndex:      ti,
		BankTxIndex:  bi,
		Amount:       amount,
		BankAmount:   v.Transactions[bi].Amount,
		Supplier:     supplier,
		InvoiceNo:    invoiceNo,
		BankFallback: fallback,
	}
}

// exactBankPair returns the first bank posting with equal absolute amount
// and opposite sign, or -1.
func (c *Classifier) exactBankPair(v *model.Voucher, amount decimal.Decimal, bankIdx []int) int {
	for _, bi := range bankIdx {
		b := v.Transactions[bi].Amount
		if b.Sign()*amount.Sign() >= 0 {
			continue
		}
		if b.Abs().Sub(amount.Abs()).Abs().LessThanOrEqual(c.cfg.AmountTolerance) {
			return bi
		}
	}
	return -1
}

// correctionEvents inspects the description for the correction tokens:
// "korrigerad" marks the voucher as the corrected (erroneous) one,
// "Korrigering" marks it as the canceling side. Ref stays empty when the
// token carries no readable voucher reference.
func (c *Classifier) correctionEvents(v *model.Voucher, vi int, supplier, invoiceNo string) []model.Event {
	lower := strings.ToLower(v.Description)
	var events []model.Event
	emit := func(re *regexp.Regexp, corrects bool) {
		ref := ""
		if m := re.FindStringSubmatch(v.Description); m != nil {
			ref = m[1]
		}
		events = append(events, &model.CorrectionEvent{
			VoucherIndex: vi,
			Ref:          ref,
			Corrects:     corrects,
			Amount:       v.TotalFor(c.cfg.APAccount),
			Supplier:     supplier,
			InvoiceNo:    invoiceNo,
		})
	}
	if strings.Contains(lower, "korrigerad") {
		emit(correctedRef, false)
	}
	if strings.Contains(lower, "korrigering") {
		emit(correctionRef, true)
	}
	return events
}

// CorrectionExclusions returns the voucher indices of correction pairs
// whose members both fall in year. Voucher identifiers repeat across
// fiscal years, so a reference resolves against vouchers of the same year
// only; pairing across years on a bare identifier would exclude unrelated
// vouchers.
func (c *Classifier) CorrectionExclusions(vouchers []model.Voucher, year int) map[int]bool {
	byID := make(map[string]int)
	for i := range vouchers {
		if vouchers[i].Date.Year() == year {
			byID[vouchers[i].ID()] = i
		}
	}
	excluded := make(map[int]bool)
	for i := range vouchers {
		v := &vouchers[i]
		if v.Date.Year() != year {
			continue
		}
		for _, re := range []*regexp.Regexp{correctedRef, correctionRef} {
			m := re.FindStringSubmatch(v.Description)
			if m == nil {
				continue
			}
			j, ok := byID[m[1]]
			if !ok {
				continue
			}
			if !excluded[i] || !excluded[j] {
				c.log.Info().Str("voucher", v.ID()).Str("ref", m[1]).Msg("excluding correction pair")
			}
			excluded[i] = true
			excluded[j] = true
		}
	}
	return excluded
}
