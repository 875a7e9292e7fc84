package domain

import "time"

type ConversationID string
type MessageID string

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole maps a wire value to a Role, reporting whether it is one of
// the three known roles.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleSystem, RoleUser, RoleAssistant:
		return Role(s), true
	default:
		return "", false
	}
}

type Timestamp = time.Time
