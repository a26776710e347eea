package apiv1

import "github.com/mmynk/eventsplit/internal/models"

type CreateParticipantRequest struct {
	EventCode string `json:"eventCode"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	IBAN      string `json:"iban,omitempty"`
	BIC       string `json:"bic,omitempty"`
}

type CreateParticipantResponse struct {
	Participant *models.Participant `json:"participant"`
}

type ListParticipantsRequest struct {
	EventCode string `json:"eventCode"`
}

type ListParticipantsResponse struct {
	Participants []models.Participant `json:"participants"`
}

// UpdateParticipantRequest overwrites only the non-empty metadata fields.
type UpdateParticipantRequest struct {
	EventCode string `json:"eventCode"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	IBAN      string `json:"iban,omitempty"`
	BIC       string `json:"bic,omitempty"`
}

type UpdateParticipantResponse struct {
	Participant *models.Participant `json:"participant"`
}

type DeleteParticipantRequest struct {
	EventCode string `json:"eventCode"`
	Name      string `json:"name"`
}

type DeleteParticipantResponse struct {
	Participant *models.Participant `json:"participant"`
}
