package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Config carries the account numbers and thresholds threaded through the
// decoder, classifier, and matcher. No package keeps ambient defaults; a
// run owns exactly one Config value.
type Config struct {
	APAccount       string          // accounts payable, "2440"
	BankAccount     string          // operating bank account, "1930"
	MaxDays         int             // receipt-to-clearing window
	AmountTolerance decimal.Decimal // equality tolerance for balances and matches
	TargetYear      int             // year whose receipts are reconciled
}

// DefaultConfig returns the standard Swedish BAS account numbers and
// matching thresholds. TargetYear is left unset; matching requires it.
func DefaultConfig() Config {
	return Config{
		APAccount:       "2440",
		BankAccount:     "1930",
		MaxDays:         120,
		AmountTolerance: decimal.New(5, -3), // 0.005
	}
}

// Validate checks that the configuration is usable for a matching run.
func (c Config) Validate() error {
	if c.APAccount == "" {
		return fmt.Errorf("payable account must be set")
	}
	if c.BankAccount == "" {
		return fmt.Errorf("bank account must be set")
	}
	if c.APAccount == c.BankAccount {
		return fmt.Errorf("payable and bank accounts must differ, both are %q", c.APAccount)
	}
	if c.MaxDays <= 0 {
		return fmt.Errorf("max days must be positive, got %d", c.MaxDays)
	}
	if c.AmountTolerance.IsNegative() {
		return fmt.Errorf("amount tolerance must not be negative, got %s", c.AmountTolerance)
	}
	if c.TargetYear < 1 {
		return fmt.Errorf("target year must be set, got %d", c.TargetYear)
	}
	return nil
}
