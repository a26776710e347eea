package models

// Debt is a derived directed balance from Debtor to Creditor.
// (event, debtor, creditor) is the primary key.
type Debt struct {
	DebtorName   string `json:"debtorName"`
	CreditorName string `json:"creditorName"`
	Amount       Money  `json:"amount"`
	Received     bool   `json:"received"`
}

// DebtKey identifies a debt inside one event.
type DebtKey struct {
	Debtor   string
	Creditor string
}

// Key returns the debt's (debtor, creditor) pair.
func (d Debt) Key() DebtKey {
	return DebtKey{Debtor: d.DebtorName, Creditor: d.CreditorName}
}

// TotalDebt sums the amounts of debts.
func TotalDebt(debts []Debt) Money {
	var total Money
	for _, d := range debts {
		total += d.Amount
	}
	return total
}
