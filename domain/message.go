package domain

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Message represents an immutable chat event inside a room.
// Only the Seen flag may change after creation, and it is process-local.
type Message struct {
	ID        uuid.UUID
	RoomID    uuid.UUID
	SenderID  string
	Content   string
	CreatedAt time.Time
	Seen      bool
}

// Sanitize normalizes raw message content: control characters are stripped,
// runs of whitespace collapse to a single space, and the result is trimmed.
// An empty return value means the input carried nothing displayable.
func Sanitize(content string) string {
	var b strings.Builder
	b.Grow(len(content))
	space := false
	for _, r := range content {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsControl(r):
			// dropped entirely, not even worth a space
		default:
			if space && b.Len() > 0 {
				b.WriteRune(' ')
			}
			space = false
			b.WriteRune(r)
		}
	}
	return b.String()
}
