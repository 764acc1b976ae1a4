package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lknvpn/supportbot/core/logger"
	"log/slog"
)

// FeedbackStore tallies recurring free-text complaints. Write-only from
// the engine's perspective; operators inspect the table out-of-band.
type FeedbackStore struct {
	db *sqlx.DB
}

// NewFeedbackStore wraps the shared database handle.
func NewFeedbackStore(db *sqlx.DB) *FeedbackStore {
	return &FeedbackStore{db: db}
}

// NormalizeDescription folds a complaint to its canonical form so that
// case and surrounding whitespace never split a tally.
func NormalizeDescription(description string) string {
	return strings.ToLower(strings.TrimSpace(description))
}

// Record upserts the normalized description, incrementing the count when
// the complaint was already seen.
func (s *FeedbackStore) Record(ctx context.Context, description string) error {
	normalized := NormalizeDescription(description)
	if normalized == "" {
		return nil
	}

	var count int
	err := s.db.GetContext(ctx, &count,
		`INSERT INTO problem_feedback (description, count)
		 VALUES ($1, 1)
		 ON CONFLICT (description) DO UPDATE SET count = problem_feedback.count + 1
		 RETURNING count`,
		normalized,
	)
	if err != nil {
		return fmt.Errorf("record feedback: %w", err)
	}

	logger.SVCFeedback.LogAttrs(ctx, slog.LevelInfo, "feedback.recorded",
		slog.Int("feedback_count", count),
	)
	return nil
}
