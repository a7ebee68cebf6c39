package model

// AccountType classifies accounts by their BAS chart class.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"     // 1xxx
	AccountTypeLiability AccountType = "liability" // 2xxx
	AccountTypeIncome    AccountType = "income"    // 3xxx
	AccountTypeExpense   AccountType = "expense"   // 4xxx-7xxx
	AccountTypeFinancial AccountType = "financial" // 8xxx
	AccountTypeUnknown   AccountType = "unknown"
)

// Account is one chart-of-accounts entry declared by a #KONTO directive.
type Account struct {
	Number string
	Name   string
	Type   AccountType
}
