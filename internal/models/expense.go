package models

import "time"

// Expense is one payment by one participant. It is always split equally
// among all participants of the event.
type Expense struct {
	// ID is numeric and scoped under the payer: (EventCode, PayerName, ID)
	// identifies an expense.
	ID        int64  `json:"id"`
	EventCode string `json:"-"`
	PayerName string `json:"paidByName"`

	Amount      Money     `json:"price"`
	Description string    `json:"item"`
	Date        time.Time `json:"date"`
}
