package domain

import "time"

// Comment captures a message in a ticket thread. Internal comments are
// visible only to staff-level readers.
type Comment struct {
	ID         string
	TicketID   string
	UserID     string
	Content    string
	IsInternal bool
	CreatedAt  time.Time
	AuthorName string
}
