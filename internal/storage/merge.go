package storage

import "github.com/mmynk/eventsplit/internal/models"

// CarryReceived copies the received flag from prev onto every debt in next
// whose (debtor, creditor, amount) is unchanged. All other debts in next keep
// received=false. next is modified in place and returned.
func CarryReceived(prev, next []models.Debt) []models.Debt {
	settled := make(map[models.DebtKey]models.Money, len(prev))
	for _, d := range prev {
		if d.Received {
			settled[d.Key()] = d.Amount
		}
	}
	for i := range next {
		amount, ok := settled[next[i].Key()]
		next[i].Received = ok && amount == next[i].Amount
	}
	return next
}
