package apiv1

import "encoding/json"

// ActionSubscribed tags the first frame of a Subscribe stream, which carries
// the session id to use with AddTopic.
const ActionSubscribed = "subscribed"

// SubscribeRequest opens a push session. An empty SessionID lets the server
// pick one.
type SubscribeRequest struct {
	SessionID string   `json:"sessionId,omitempty"`
	Topics    []string `json:"topics"`
}

// Notification is one pushed change. Payload is the changed entity, or the
// full debt list on a debt topic.
type Notification struct {
	SessionID string          `json:"sessionId,omitempty"`
	Topic     string          `json:"topic"`
	Action    string          `json:"action"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type AddTopicRequest struct {
	SessionID string `json:"sessionId"`
	Topic     string `json:"topic"`
}

type AddTopicResponse struct{}

// AwaitTopicRequest long-polls any topic. A zero TimeoutMs uses the server
// default.
type AwaitTopicRequest struct {
	Topic     string `json:"topic"`
	TimeoutMs int64  `json:"timeoutMs,omitempty"`
}

type AwaitTopicResponse struct {
	Notification Notification `json:"notification"`
}
