package apiv1

import "github.com/mmynk/eventsplit/internal/models"

// Event list orderings accepted by ListEventsRequest.OrderBy.
const (
	OrderByName         = "name"
	OrderByCreation     = "creationDate"
	OrderByLastActivity = "lastActivity"
)

type CreateEventRequest struct {
	Name string `json:"name"`
}

type CreateEventResponse struct {
	Event *models.Event `json:"event"`
}

type GetEventRequest struct {
	Code string `json:"code"`
}

type GetEventResponse struct {
	Event *models.Event `json:"event"`
}

// ListEventsRequest lists all events. OrderBy defaults to name.
type ListEventsRequest struct {
	OrderBy string `json:"orderBy,omitempty"`
}

type ListEventsResponse struct {
	Events []*models.Event `json:"events"`
}

type RenameEventRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type RenameEventResponse struct {
	Event *models.Event `json:"event"`
}

type DeleteEventRequest struct {
	Code string `json:"code"`
}

type DeleteEventResponse struct {
	Event *models.Event `json:"event"`
}
