package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/lknvpn/supportbot/core/logger"
	"github.com/lknvpn/supportbot/internal/domain"
	"log/slog"
)

// pq error code for unique constraint violations.
const pqUniqueViolation = "23505"

// TicketStore persists support tickets in Postgres. Writes are independent
// single-row transactions; no cross-row coordination is needed.
type TicketStore struct {
	db *sqlx.DB
}

// NewTicketStore wraps the shared database handle.
func NewTicketStore(db *sqlx.DB) *TicketStore {
	return &TicketStore{db: db}
}

// Create inserts a new ticket row. A uniqueness violation on the code is
// surfaced as domain.ErrCodeTaken rather than swallowed.
func (s *TicketStore) Create(ctx context.Context, t domain.Ticket) error {
	if t.Status == "" {
		t.Status = domain.TicketNew
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tickets (code, user_id, problem, status) VALUES ($1, $2, $3, $4)`,
		t.Code, t.UserID, t.Problem, t.Status,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			logger.SVCTickets.LogAttrs(ctx, slog.LevelError, "ticket.create.code_taken",
				slog.String("ticket_code", t.Code),
				slog.Int64("user_id", t.UserID),
			)
			return fmt.Errorf("create ticket %s: %w", t.Code, domain.ErrCodeTaken)
		}
		return fmt.Errorf("create ticket %s: %w", t.Code, err)
	}

	logger.SVCTickets.LogAttrs(ctx, slog.LevelInfo, "ticket.created",
		slog.String("ticket_code", t.Code),
		slog.Int64("user_id", t.UserID),
		slog.String("ticket_status", string(t.Status)),
	)
	return nil
}

// CodeExists reports whether a ticket with the given code already exists.
func (s *TicketStore) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM tickets WHERE code = $1)`, code)
	if err != nil {
		return false, fmt.Errorf("check ticket code %s: %w", code, err)
	}
	return exists, nil
}

// FindOwner returns the user a ticket belongs to, or domain.ErrTicketNotFound.
func (s *TicketStore) FindOwner(ctx context.Context, code string) (int64, error) {
	var userID int64
	err := s.db.GetContext(ctx, &userID,
		`SELECT user_id FROM tickets WHERE code = $1`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrTicketNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("find ticket owner %s: %w", code, err)
	}
	return userID, nil
}

// MarkAnswered flips a new ticket to answered. Already answered or resolved
// tickets are left as-is.
func (s *TicketStore) MarkAnswered(ctx context.Context, code string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tickets SET status = $1 WHERE code = $2 AND status = $3`,
		domain.TicketAnswered, code, domain.TicketNew,
	)
	if err != nil {
		return fmt.Errorf("mark ticket %s answered: %w", code, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		logger.SVCTickets.LogAttrs(ctx, slog.LevelInfo, "ticket.answered",
			slog.String("ticket_code", code),
		)
	}
	return nil
}

// ResolveLatestAnswered closes the user's most recently answered ticket,
// if any. Called when the user presses the resolved button after a manager
// reply; a no-op when the user has no answered tickets.
func (s *TicketStore) ResolveLatestAnswered(ctx context.Context, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tickets SET status = $1
		 WHERE code = (
		     SELECT code FROM tickets
		     WHERE user_id = $2 AND status = $3
		     ORDER BY created_at DESC
		     LIMIT 1
		 )`,
		domain.TicketResolved, userID, domain.TicketAnswered,
	)
	if err != nil {
		return fmt.Errorf("resolve ticket for user %d: %w", userID, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		logger.SVCTickets.LogAttrs(ctx, slog.LevelInfo, "ticket.resolved",
			slog.Int64("user_id", userID),
		)
	}
	return nil
}
