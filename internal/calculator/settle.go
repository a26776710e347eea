package calculator

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/mmynk/eventsplit/internal/models"
)

// Settle computes the debts of one event from all of its expenses and
// participants.
//
// Algorithm:
//   - Each expense is split equally among all participants (Apportion)
//   - Leftover cents go to non-payers in name order; the payer is last and
//     always keeps the floor share
//   - Each non-payer's share accumulates into the (participant, payer) debt
//   - One debt per non-zero accumulator, sorted by (debtor, creditor)
//
// No debt-graph simplification is attempted: A owing B and B owing A both
// appear as separate debts.
func Settle(expenses []models.Expense, participants []models.Participant) ([]models.Debt, error) {
	if len(participants) == 0 {
		if len(expenses) > 0 {
			return nil, fmt.Errorf("payer %q of expense %d: %w", expenses[0].PayerName, expenses[0].ID, models.ErrNotFound)
		}
		return nil, nil
	}

	names := make([]string, 0, len(participants))
	members := make(map[string]bool, len(participants))
	for _, p := range participants {
		if members[p.Name] {
			continue
		}
		members[p.Name] = true
		names = append(names, p.Name)
	}
	sort.Strings(names)

	owed := make(map[models.DebtKey]models.Money)

	for _, e := range expenses {
		if !members[e.PayerName] {
			return nil, fmt.Errorf("payer %q of expense %d: %w", e.PayerName, e.ID, models.ErrNotFound)
		}

		shares, err := Apportion(e.Amount, len(names))
		if err != nil {
			return nil, fmt.Errorf("failed to apportion expense %d: %w", e.ID, err)
		}
		if got := sum(shares); got != e.Amount {
			slog.Error("Apportionment violation",
				"expense_id", e.ID,
				"payer", e.PayerName,
				"amount", e.Amount.String(),
				"shares_sum", got.String(),
				"participants", len(names),
			)
			return nil, fmt.Errorf("%w: expense %d shares sum to %s, want %s",
				ErrApportionmentViolation, e.ID, got, e.Amount)
		}

		for i, debtor := range splitOrder(names, e.PayerName) {
			if debtor == e.PayerName {
				continue
			}
			key := models.DebtKey{Debtor: debtor, Creditor: e.PayerName}
			total, err := owed[key].Add(shares[i])
			if err != nil {
				return nil, fmt.Errorf("debt %s->%s: %w", debtor, e.PayerName, err)
			}
			owed[key] = total
		}
	}

	debts := make([]models.Debt, 0, len(owed))
	for key, amount := range owed {
		if amount == 0 {
			continue
		}
		debts = append(debts, models.Debt{
			DebtorName:   key.Debtor,
			CreditorName: key.Creditor,
			Amount:       amount,
		})
	}
	SortDebts(debts)

	return debts, nil
}

// splitOrder returns the sorted names with the payer moved to the end.
func splitOrder(sorted []string, payer string) []string {
	order := make([]string, 0, len(sorted))
	for _, n := range sorted {
		if n != payer {
			order = append(order, n)
		}
	}
	return append(order, payer)
}

// OwnShare returns the payer's own share of an expense split among n
// participants. It is the floor share, since leftover cents go to debtors.
func OwnShare(amount models.Money, n int) models.Money {
	if n <= 0 {
		return amount
	}
	return amount / models.Money(n)
}

// SortDebts orders debts by debtor, then creditor.
func SortDebts(debts []models.Debt) {
	sort.Slice(debts, func(i, j int) bool {
		if debts[i].DebtorName != debts[j].DebtorName {
			return debts[i].DebtorName < debts[j].DebtorName
		}
		return debts[i].CreditorName < debts[j].CreditorName
	})
}
