package chat

import "time"

// DefaultTitle is the placeholder a session carries until the user renames it
// or auto-titling overwrites it.
const DefaultTitle = "New Chat"

// Session is one conversation thread with its own message history and title.
// Messages are append-only; insertion order is conversation order.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
}

// Clone returns a copy whose message slice is independent of the original.
func (s Session) Clone() Session {
	copied := s
	copied.Messages = append([]Message(nil), s.Messages...)
	return copied
}
