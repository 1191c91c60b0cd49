package types

import (
	"strings"

	"github.com/goccy/go-json"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the three supported roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message is a single turn in a chat conversation.
//
// Reasoning holds the transient "thinking" text some backends attach to
// assistant turns (wire name reasoning_content). It must be stripped
// before the message is re-submitted to providers that reject it; see
// the messages package.
type Message struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Reasoning string `json:"reasoning_content,omitempty"`
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant-role message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// HasContent reports whether the message carries non-blank content.
func (m Message) HasContent() bool {
	return strings.TrimSpace(m.Content) != ""
}

// UnmarshalJSON accepts the OpenAI-compatible message shape. Content that
// is not a plain JSON string (multimodal part arrays, null) decodes to the
// empty string so that downstream cleaning can drop the message instead of
// the decode failing. The reasoning field is read from reasoning_content
// with reasoning as a fallback.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role             Role            `json:"role"`
		Content          json.RawMessage `json:"content"`
		ReasoningContent string          `json:"reasoning_content"`
		Reasoning        string          `json:"reasoning"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Role = raw.Role
	m.Content = ""
	if len(raw.Content) > 0 && raw.Content[0] == '"' {
		var s string
		if err := json.Unmarshal(raw.Content, &s); err != nil {
			return err
		}
		m.Content = s
	}
	m.Reasoning = raw.ReasoningContent
	if m.Reasoning == "" {
		m.Reasoning = raw.Reasoning
	}
	return nil
}
