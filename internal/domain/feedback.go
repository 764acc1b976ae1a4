package domain

// FeedbackEntry is a durable tally of a recurring free-text complaint.
// At most one entry exists per distinct normalized description.
type FeedbackEntry struct {
	ID          int64  `db:"id"`
	Description string `db:"description"`
	Count       int    `db:"count"`
}
