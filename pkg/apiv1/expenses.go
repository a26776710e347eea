package apiv1

import (
	"time"

	"github.com/mmynk/eventsplit/internal/models"
)

// CreateExpenseRequest adds an expense. Date defaults to now.
type CreateExpenseRequest struct {
	EventCode   string       `json:"eventCode"`
	PayerName   string       `json:"paidByName"`
	Amount      models.Money `json:"price"`
	Description string       `json:"item"`
	Date        *time.Time   `json:"date,omitempty"`
}

type CreateExpenseResponse struct {
	Expense *models.Expense `json:"expense"`
}

type ListExpensesRequest struct {
	EventCode string `json:"eventCode"`
}

type ListExpensesResponse struct {
	Expenses []models.Expense `json:"expenses"`
}

// UpdateExpenseRequest overwrites only the fields that are set.
type UpdateExpenseRequest struct {
	EventCode   string        `json:"eventCode"`
	PayerName   string        `json:"paidByName"`
	ID          int64         `json:"id"`
	Amount      *models.Money `json:"price,omitempty"`
	Description *string       `json:"item,omitempty"`
	Date        *time.Time    `json:"date,omitempty"`
}

type UpdateExpenseResponse struct {
	Expense *models.Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	EventCode string `json:"eventCode"`
	PayerName string `json:"paidByName"`
	ID        int64  `json:"id"`
}

type DeleteExpenseResponse struct {
	Expense *models.Expense `json:"expense"`
}
