// Package propagation simulates stochastic message spread over a graph and
// classifies the resulting messages.
package propagation

import "fmt"

// State is the lifecycle stage of a message.
type State int

const (
	StateCreated State = iota
	StateShared
	StateViral
	StateFlagged
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateShared:
		return "shared"
	case StateViral:
		return "viral"
	case StateFlagged:
		return "flagged"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Thresholds are the share counts a message must exceed to become shared or viral.
type Thresholds struct {
	Shared int
	Viral  int
}

// NextState derives the state for a share count. Flagged is never produced
// here; it is only reached through Message.Flag.
func NextState(current State, shareCount int, t Thresholds) State {
	if current == StateFlagged {
		return StateFlagged
	}
	switch {
	case shareCount > t.Viral:
		return StateViral
	case shareCount > t.Shared:
		return StateShared
	default:
		return current
	}
}

// Message is a piece of content propagated from a source node. ID, Content
// and SourceNode never change after creation.
type Message struct {
	ID         int
	Content    string
	SourceNode int

	shareCount int
	state      State
	thresholds Thresholds
}

// NewMessage creates a message in the Created state.
func NewMessage(id int, content string, source int, t Thresholds) *Message {
	return &Message{
		ID:         id,
		Content:    content,
		SourceNode: source,
		state:      StateCreated,
		thresholds: t,
	}
}

// ShareCount returns how many times the message has been shared.
func (m *Message) ShareCount() int { return m.shareCount }

// State returns the current lifecycle state.
func (m *Message) State() State { return m.state }

// Thresholds returns the thresholds the message was created with.
func (m *Message) Thresholds() Thresholds { return m.thresholds }

// IncrementShareCount records one successful share and updates the state.
func (m *Message) IncrementShareCount() {
	m.shareCount++
	m.state = NextState(m.state, m.shareCount, m.thresholds)
}

// Flag marks the message as misinformation. Flagged is terminal.
func (m *Message) Flag() {
	m.state = StateFlagged
}

// IsFlagged reports whether the message has been flagged.
func (m *Message) IsFlagged() bool {
	return m.state == StateFlagged
}
