// Package match pairs receipts with the clearings that settle them and
// shapes the outcome into report cases, one per target-year receipt plus
// one per orphaned target-year clearing.
package match

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/levmatch/levmatch/internal/id"
	"github.com/levmatch/levmatch/internal/model"
)

// Matcher reconciles one target year. Receipts are processed in voucher
// order and each consumes at most one clearing, so reruns over the same
// input produce identical cases.
type Matcher struct {
	cfg model.Config
	log zerolog.Logger
}

// NewMatcher returns a Matcher for cfg. cfg.TargetYear must be set.
func NewMatcher(cfg model.Config, log zerolog.Logger) *Matcher {
	return &Matcher{cfg: cfg, log: log}
}

// Result is the outcome of one reconciliation run.
type Result struct {
	Cases   []model.InvoiceCase
	Summary model.YearSummary
}

// Match reconciles the target year's receipts against the clearings and
// returns one case per receipt plus one per unconsumed target-year
// clearing. The events may span the following year: its clearings settle
// late payments and its correction vouchers settle receipts canceled
// after year close. excluded holds the voucher indices of correction
// pairs to withhold, opening the payable balance carried in from the
// prior year.
func (m *Matcher) Match(vouchers []model.Voucher, events []model.Event, excluded map[int]bool, opening decimal.Decimal) (*Result, error) {
	if err := m.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("matcher config: %w", err)
	}

	receipts, clearings, corrections := m.partition(vouchers, events, excluded)

	used := make(map[*model.ClearingEvent]bool)
	outcomes := make([]outcome, len(receipts))
	for i, r := range receipts {
		best, ties, reason := m.findClearing(vouchers, r, clearings, used)
		if best == nil {
			outcomes[i] = outcome{Status: model.StatusMissingClearing, Comment: reason}
			continue
		}
		m.consume(used, best.clearing)
		outcomes[i] = m.matchOutcome(vouchers, r, best, ties)
	}

	m.settleByCorrection(vouchers, receipts, outcomes, corrections)

	cases := m.assembleCases(vouchers, receipts, outcomes, clearings, used)
	summary := m.summarize(vouchers, opening, cases)

	m.log.Info().
		Int("cases", len(cases)).
		Int("ok", summary.StatusCounts[model.StatusOK]).
		Int("missing_clearing", summary.StatusCounts[model.StatusMissingClearing]).
		Int("missing_receipt", summary.StatusCounts[model.StatusMissingReceipt]).
		Msg("matching complete")
	return &Result{Cases: cases, Summary: summary}, nil
}

// outcome is the per-receipt result before cases are assembled.
type outcome struct {
	Clearing   *model.ClearingEvent
	Correction *model.CorrectionEvent
	Status     model.Status
	Confidence int
	Comment    string
}

// correctionIndex holds the correction events of a run: carry is the
// following year's canceling vouchers in voucher order, byVoucher indexes
// every correction event by its originating voucher.
type correctionIndex struct {
	carry     []*model.CorrectionEvent
	byVoucher map[int][]*model.CorrectionEvent
}

// references reports whether voucher vi carries a corrected-by reference
// naming ref.
func (x *correctionIndex) references(vi int, ref string) bool {
	for _, e := range x.byVoucher[vi] {
		if !e.Corrects && e.Ref == ref {
			return true
		}
	}
	return false
}

// partition splits the event stream into the matchable sets: target-year
// receipts, clearings of any year, and correction events. Events of
// excluded vouchers are dropped. Receipts and clearings come out ordered
// by voucher identifier so matching priority and output order are
// deterministic regardless of input order.
func (m *Matcher) partition(vouchers []model.Voucher, events []model.Event, excluded map[int]bool) ([]*model.ReceiptEvent, []*model.ClearingEvent, *correctionIndex) {
	corrections := &correctionIndex{byVoucher: make(map[int][]*model.CorrectionEvent)}
	var receipts []*model.ReceiptEvent
	var clearings []*model.ClearingEvent
	for _, e := range events {
		switch ev := e.(type) {
		case *model.ReceiptEvent:
			if excluded[ev.VoucherIndex] || vouchers[ev.VoucherIndex].Date.Year() != m.cfg.TargetYear {
				continue
			}
			receipts = append(receipts, ev)
		case *model.ClearingEvent:
			if excluded[ev.VoucherIndex] {
				continue
			}
			clearings = append(clearings, ev)
		case *model.CorrectionEvent:
			corrections.byVoucher[ev.VoucherIndex] = append(corrections.byVoucher[ev.VoucherIndex], ev)
			if ev.Corrects && vouchers[ev.VoucherIndex].Date.Year() == m.cfg.TargetYear+1 {
				corrections.carry = append(corrections.carry, ev)
			}
		}
	}
	sort.SliceStable(receipts, func(i, j int) bool {
		a, b := receipts[i], receipts[j]
		if c := id.Compare(vouchers[a.VoucherIndex].ID(), vouchers[b.VoucherIndex].ID()); c != 0 {
			return c < 0
		}
		return a.TxIndex < b.TxIndex
	})
	sort.SliceStable(clearings, func(i, j int) bool {
		return lessClearing(vouchers, clearings[i], clearings[j])
	})
	sort.SliceStable(corrections.carry, func(i, j int) bool {
		a, b := corrections.carry[i], corrections.carry[j]
		return id.Compare(vouchers[a.VoucherIndex].ID(), vouchers[b.VoucherIndex].ID()) < 0
	})
	return receipts, clearings, corrections
}

func lessClearing(vouchers []model.Voucher, a, b *model.ClearingEvent) bool {
	if c := id.Compare(vouchers[a.VoucherIndex].ID(), vouchers[b.VoucherIndex].ID()); c != 0 {
		return c < 0
	}
	if a.TxIndex != b.TxIndex {
		return a.TxIndex < b.TxIndex
	}
	return a.BankTxIndex < b.BankTxIndex
}

// candidate is one clearing admitted for a receipt, with its ranking keys.
type candidate struct {
	clearing *model.ClearingEvent
	days     int
	both     bool
	invoice  bool
	supplier bool
}

// findClearing filters and ranks the clearings for one receipt. It
// returns the winning candidate, the number of candidates tied with it on
// every ranking key, and, when nothing survives, the reason the receipt
// stays open.
func (m *Matcher) findClearing(vouchers []model.Voucher, r *model.ReceiptEvent, clearings []*model.ClearingEvent, used map[*model.ClearingEvent]bool) (*candidate, int, string) {
	rv := r.Voucher(vouchers)
	want := r.Amount.Abs()

	var amountMatches []*model.ClearingEvent
	for _, c := range clearings {
		if c.Amount.Abs().Sub(want).Abs().LessThanOrEqual(m.cfg.AmountTolerance) {
			amountMatches = append(amountMatches, c)
		}
	}
	if len(amountMatches) == 0 {
		return nil, 0, "No clearing found with matching amount"
	}

	var dated []*model.ClearingEvent
	for _, c := range amountMatches {
		if !c.Voucher(vouchers).Date.Before(rv.Date) {
			dated = append(dated, c)
		}
	}
	if len(dated) == 0 {
		return nil, 0, fmt.Sprintf("Found %d amount matches but all before receipt date", len(amountMatches))
	}

	var free []*model.ClearingEvent
	for _, c := range dated {
		if !used[c] {
			free = append(free, c)
		}
	}
	if len(free) == 0 {
		return nil, 0, "No clearing found (all matching clearings already used)"
	}

	var cands []candidate
	minDays := -1
	for _, c := range free {
		days := daysBetween(rv.Date, c.Voucher(vouchers).Date)
		if minDays < 0 || days < minDays {
			minDays = days
		}
		if days > m.cfg.MaxDays {
			continue
		}
		supplier := equalFoldNonEmpty(r.Supplier, c.Supplier)
		invoice := r.InvoiceNo != "" && r.InvoiceNo == c.InvoiceNo
		cands = append(cands, candidate{
			clearing: c,
			days:     days,
			both:     supplier && invoice,
			invoice:  invoice,
			supplier: supplier,
		})
	}
	if len(cands) == 0 {
		return nil, 0, fmt.Sprintf("Clearing found but %d days after receipt (exceeds max %d days)", minDays, m.cfg.MaxDays)
	}

	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.both != b.both {
			return a.both
		}
		if a.invoice != b.invoice {
			return a.invoice
		}
		if a.days != b.days {
			return a.days < b.days
		}
		return lessClearing(vouchers, a.clearing, b.clearing)
	})

	best := cands[0]
	ties := 0
	for _, c := range cands {
		if c.both == best.both && c.invoice == best.invoice && c.days == best.days {
			ties++
		}
	}
	return &best, ties, ""
}

// matchOutcome fills status, confidence, and comment for a matched pair.
func (m *Matcher) matchOutcome(vouchers []model.Voucher, r *model.ReceiptEvent, c *candidate, ties int) outcome {
	cv := c.clearing.Voucher(vouchers)
	sameVoucher := c.clearing.VoucherIndex == r.VoucherIndex

	var comment string
	switch {
	case sameVoucher:
		comment = "Receipt and clearing in same voucher"
	case c.days == 0:
		comment = "Receipt and clearing in same voucher date"
	case c.days <= 40:
		comment = fmt.Sprintf("Clearing found %d day%s after receipt", c.days, plural(c.days))
	default:
		comment = fmt.Sprintf("Late clearing: %d days after receipt", c.days)
	}

	confidence := 25
	switch {
	case c.both:
		confidence = 100
	case c.invoice:
		confidence = 75
	case c.supplier:
		confidence = 50
	}
	if sameVoucher {
		confidence = 100
	} else {
		switch {
		case c.invoice && !c.supplier:
			comment += " (invoice# match, supplier mismatch)"
		case c.supplier && !c.invoice:
			comment += " (supplier match, no invoice# match)"
		}
	}

	if cv.Date.Year() != m.cfg.TargetYear {
		comment += fmt.Sprintf(" [CROSS-YEAR: %d invoice paid in %d]", m.cfg.TargetYear, cv.Date.Year())
	}

	status := model.StatusOK
	if ties > 1 {
		if sameVoucher || c.both || c.invoice || c.supplier {
			comment += fmt.Sprintf(" (Warning: %d equally ranked candidates)", ties)
		} else {
			status = model.StatusAmbiguous
			confidence = 25
			comment += fmt.Sprintf(" (%d equally ranked candidates, tie broken by voucher id)", ties)
		}
	}
	if c.clearing.BankFallback {
		status = model.StatusNeedsReview
		comment += " (bank line paired by position, no matching amount)"
	}

	return outcome{Clearing: c.clearing, Status: status, Confidence: confidence, Comment: comment}
}

// settleByCorrection resolves receipts still open after clearing matching
// against the following year's correction vouchers: a receipt canceled
// after its year closed has no clearing, only the canceling voucher.
// Each correction settles at most one receipt.
func (m *Matcher) settleByCorrection(vouchers []model.Voucher, receipts []*model.ReceiptEvent, outcomes []outcome, corrections *correctionIndex) {
	if len(corrections.carry) == 0 {
		return
	}
	usedCorr := make(map[*model.CorrectionEvent]bool)
	for i, r := range receipts {
		if outcomes[i].Status != model.StatusMissingClearing {
			continue
		}
		corr, confidence := m.findCorrection(vouchers, r, corrections, usedCorr)
		if corr == nil {
			continue
		}
		usedCorr[corr] = true
		m.log.Info().
			Str("receipt", vouchers[r.VoucherIndex].ID()).
			Str("correction", vouchers[corr.VoucherIndex].ID()).
			Msg("receipt settled by cross-year correction")
		outcomes[i] = outcome{
			Correction: corr,
			Status:     model.StatusOK,
			Confidence: confidence,
			Comment:    "Cleared by cross-year correction",
		}
	}
}

// findCorrection returns the first carry-over correction that settles the
// receipt. A voucher reference in either direction wins outright; equal
// absolute amount plus the same supplier is the weaker fallback.
func (m *Matcher) findCorrection(vouchers []model.Voucher, r *model.ReceiptEvent, corrections *correctionIndex, usedCorr map[*model.CorrectionEvent]bool) (*model.CorrectionEvent, int) {
	receiptID := vouchers[r.VoucherIndex].ID()
	var fallback *model.CorrectionEvent
	for _, corr := range corrections.carry {
		if usedCorr[corr] {
			continue
		}
		if corr.Ref == receiptID || corrections.references(r.VoucherIndex, vouchers[corr.VoucherIndex].ID()) {
			return corr, 100
		}
		if fallback == nil &&
			corr.Amount.Abs().Sub(r.Amount.Abs()).Abs().LessThanOrEqual(m.cfg.AmountTolerance) &&
			equalFoldNonEmpty(corr.Supplier, r.Supplier) {
			fallback = corr
		}
	}
	if fallback != nil {
		return fallback, 75
	}
	return nil, 0
}

// assembleCases emits one case per receipt in receipt order, then one per
// unconsumed target-year clearing in clearing order.
func (m *Matcher) assembleCases(vouchers []model.Voucher, receipts []*model.ReceiptEvent, outcomes []outcome, clearings []*model.ClearingEvent, used map[*model.ClearingEvent]bool) []model.InvoiceCase {
	cases := make([]model.InvoiceCase, 0, len(receipts))
	for i, r := range receipts {
		o := outcomes[i]
		if o.Status == model.StatusMissingClearing && r.CreditNote {
			o.Comment += " (credit note)"
		}
		cases = append(cases, model.InvoiceCase{
			Receipt:    r,
			Clearing:   o.Clearing,
			Correction: o.Correction,
			Status:     o.Status,
			Confidence: o.Confidence,
			Comment:    o.Comment,
		})
	}
	for _, c := range clearings {
		if used[c] || vouchers[c.VoucherIndex].Date.Year() != m.cfg.TargetYear {
			continue
		}
		cases = append(cases, model.InvoiceCase{
			Clearing: c,
			Status:   model.StatusMissingReceipt,
			Comment:  "No receipt found for this payment",
		})
	}
	return cases
}

// summarize computes the payable-account movement over every target-year
// voucher, excluded correction pairs included: the books must reconcile
// against the raw account, not the filtered view.
func (m *Matcher) summarize(vouchers []model.Voucher, opening decimal.Decimal, cases []model.InvoiceCase) model.YearSummary {
	kredit, debet := decimal.Zero, decimal.Zero
	for i := range vouchers {
		if vouchers[i].Date.Year() != m.cfg.TargetYear {
			continue
		}
		for _, t := range vouchers[i].TransactionsFor(m.cfg.APAccount) {
			if t.Amount.IsNegative() {
				kredit = kredit.Add(t.Amount.Abs())
			} else {
				debet = debet.Add(t.Amount)
			}
		}
	}
	change := kredit.Sub(debet)
	counts := make(map[model.Status]int)
	for _, c := range cases {
		counts[c.Status]++
	}
	return model.YearSummary{
		Year:           m.cfg.TargetYear,
		OpeningBalance: opening,
		KreditSum:      kredit,
		DebetSum:       debet,
		PeriodChange:   change,
		ClosingBalance: opening.Add(change),
		TotalCases:     len(cases),
		StatusCounts:   counts,
	}
}

// consume marks a clearing as spent. Consuming one twice is a programming
// error, not a data condition.
func (m *Matcher) consume(used map[*model.ClearingEvent]bool, c *model.ClearingEvent) {
	if used[c] {
		panic(fmt.Sprintf("match: clearing at voucher index %d consumed twice", c.VoucherIndex))
	}
	used[c] = true
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func equalFoldNonEmpty(a, b string) bool {
	return a != "" && b != "" && strings.EqualFold(a, b)
}
