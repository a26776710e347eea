// Package notify fans out change notifications to push sessions and resolves
// long-poll waiters parked on the same topics.
package notify

// GlobalEventTopic receives event creations, renames and deletions.
const GlobalEventTopic = "event"

// EventTopic is the per-event topic for renames and deletion.
func EventTopic(code string) string { return code }

// ParticipantTopic receives participant changes of one event.
func ParticipantTopic(code string) string { return code + "/participant" }

// ExpenseTopic receives expense changes of one event.
func ExpenseTopic(code string) string { return code + "/expense" }

// DebtTopic receives the full debt list after every generation or toggle.
func DebtTopic(code string) string { return code + "/debt" }

// Action tags what happened to the entity in a Message payload.
type Action string

const (
	ActionCreated   Action = "created"
	ActionModified  Action = "modified"
	ActionDeleted   Action = "deleted"
	ActionGenerated Action = "generated"
	ActionToggled   Action = "toggled"
)

// Message is one notification. Payload is the changed entity, or the full
// debt list on a debt topic.
type Message struct {
	Topic   string `json:"topic"`
	Action  Action `json:"action"`
	Payload any    `json:"payload,omitempty"`
}
