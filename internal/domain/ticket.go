package domain

import (
	"errors"
	"time"
)

// TicketStatus tracks the lifecycle of a support ticket.
type TicketStatus string

const (
	// TicketNew marks a freshly created ticket awaiting a manager reply.
	TicketNew TicketStatus = "new"
	// TicketAnswered marks a ticket a manager has replied to.
	TicketAnswered TicketStatus = "answered"
	// TicketResolved marks a ticket the user confirmed as solved.
	TicketResolved TicketStatus = "resolved"
)

var (
	// ErrTicketNotFound is returned when a ticket code has no matching row.
	ErrTicketNotFound = errors.New("ticket not found")
	// ErrCodeTaken is returned when a ticket insert hits the code uniqueness
	// constraint. The allocation discipline makes this near impossible, but
	// the store defends the invariant regardless.
	ErrCodeTaken = errors.New("ticket code already taken")
)

// Ticket is a durable record of an unresolved issue awaiting manager
// follow-up, addressed by a short code.
type Ticket struct {
	Code      string       `db:"code"`
	UserID    int64        `db:"user_id"`
	Problem   string       `db:"problem"`
	Status    TicketStatus `db:"status"`
	CreatedAt time.Time    `db:"created_at"`
}
