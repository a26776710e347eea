package apiv1

import "github.com/mmynk/eventsplit/internal/models"

type GenerateDebtsRequest struct {
	EventCode string `json:"eventCode"`
}

type GenerateDebtsResponse struct {
	Debts []models.Debt `json:"debts"`
}

type ListDebtsRequest struct {
	EventCode string `json:"eventCode"`
}

type ListDebtsResponse struct {
	Debts []models.Debt `json:"debts"`
}

// ToggleReceivedRequest flips a debt's received flag. When Expect is set the
// flip only happens if the stored flag still equals it.
type ToggleReceivedRequest struct {
	EventCode    string `json:"eventCode"`
	DebtorName   string `json:"debtorName"`
	CreditorName string `json:"creditorName"`
	Expect       *bool  `json:"expect,omitempty"`
}

type ToggleReceivedResponse struct {
	Debt models.Debt `json:"debt"`
}

// AwaitDebtChangeRequest long-polls the event's debts. A zero TimeoutMs uses
// the server default.
type AwaitDebtChangeRequest struct {
	EventCode string `json:"eventCode"`
	TimeoutMs int64  `json:"timeoutMs,omitempty"`
}

type AwaitDebtChangeResponse struct {
	Debts []models.Debt `json:"debts"`
}
