package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single #TRANS posting within a voucher.
type Transaction struct {
	Account     string          // four-digit account number, e.g. "2440"
	Amount      decimal.Decimal // positive = debit, negative = credit
	Date        time.Time       // zero when the line has no own date
	Description string
}

// Voucher is a balanced group of transactions parsed from one #VER block.
type Voucher struct {
	Series       string
	Number       int
	Date         time.Time // transaction date
	RegDate      time.Time // registration date, zero when absent
	Description  string
	Transactions []Transaction
}

// ID returns the voucher identifier, series plus number (e.g. "A129").
func (v Voucher) ID() string {
	return fmt.Sprintf("%s%d", v.Series, v.Number)
}

// TransactionsFor returns all postings on the given account.
func (v Voucher) TransactionsFor(account string) []Transaction {
	var out []Transaction
	for _, t := range v.Transactions {
		if t.Account == account {
			out = append(out, t)
		}
	}
	return out
}

// HasAccount reports whether any posting touches the given account.
func (v Voucher) HasAccount(account string) bool {
	for _, t := range v.Transactions {
		if t.Account == account {
			return true
		}
	}
	return false
}

// TotalFor returns the signed sum of all postings on the given account.
func (v Voucher) TotalFor(account string) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range v.Transactions {
		if t.Account == account {
			sum = sum.Add(t.Amount)
		}
	}
	return sum
}

// Balance returns the signed sum over all postings.
func (v Voucher) Balance() decimal.Decimal {
	sum := decimal.Zero
	for _, t := range v.Transactions {
		sum = sum.Add(t.Amount)
	}
	return sum
}

// Balanced reports whether the voucher sums to zero within tol.
func (v Voucher) Balanced(tol decimal.Decimal) bool {
	return v.Balance().Abs().LessThanOrEqual(tol)
}
