package model

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// ChatMessage is one turn of the concierge conversation. Messages live only
// for the current session and are never persisted.
type ChatMessage struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}
