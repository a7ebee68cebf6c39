// Package accounts provides the chart of accounts declared by a SIE
// file's #KONTO directives, typed by BAS chart class for display.
package accounts

import (
	"sort"

	"github.com/levmatch/levmatch/internal/model"
)

// Chart is an in-memory chart of accounts keyed by account number.
// Lookups for undeclared numbers fall back to the standard BAS names.
type Chart struct {
	byNumber map[string]model.Account
}

// NewChart builds a chart from number-to-name pairs as decoded from
// #KONTO directives. A nil or empty map is fine; every lookup then
// resolves through the BAS defaults.
func NewChart(names map[string]string) *Chart {
	c := &Chart{byNumber: make(map[string]model.Account, len(names))}
	for number, name := range names {
		c.byNumber[number] = model.Account{Number: number, Name: name, Type: TypeOf(number)}
	}
	return c
}

// Get returns the declared account for number.
func (c *Chart) Get(number string) (model.Account, bool) {
	a, ok := c.byNumber[number]
	return a, ok
}

// Exists reports whether number was declared by the file.
func (c *Chart) Exists(number string) bool {
	_, ok := c.byNumber[number]
	return ok
}

// Name returns the declared account name, falling back to the standard
// BAS name, or "" when the number is unknown to both.
func (c *Chart) Name(number string) string {
	if a, ok := c.byNumber[number]; ok {
		return a.Name
	}
	return defaultNames[number]
}

// Label renders "2440 Leverantörsskulder" for display, or just the
// number when no name is known.
func (c *Chart) Label(number string) string {
	name := c.Name(number)
	if name == "" {
		return number
	}
	return number + " " + name
}

// All returns the declared accounts ordered by number.
func (c *Chart) All() []model.Account {
	all := make([]model.Account, 0, len(c.byNumber))
	for _, a := range c.byNumber {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Number < all[j].Number })
	return all
}

// TypeOf classifies an account number by its BAS chart class.
func TypeOf(number string) model.AccountType {
	if number == "" {
		return model.AccountTypeUnknown
	}
	switch number[0] {
	case '1':
		return model.AccountTypeAsset
	case '2':
		return model.AccountTypeLiability
	case '3':
		return model.AccountTypeIncome
	case '4', '5', '6', '7':
		return model.AccountTypeExpense
	case '8':
		return model.AccountTypeFinancial
	}
	return model.AccountTypeUnknown
}
