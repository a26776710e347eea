package models

// Participant is a named party in one event. The name is immutable and,
// together with the event code, is the participant's identity.
type Participant struct {
	EventCode string `json:"-"`
	Name      string `json:"name"`

	// Contact and payment metadata; irrelevant to settlement math.
	Email string `json:"email"`
	IBAN  string `json:"iban"`
	BIC   string `json:"bic"`
}
