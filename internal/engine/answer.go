package engine

import (
	"context"
	"fmt"

	"github.com/lknvpn/supportbot/core/logger"
	"github.com/lknvpn/supportbot/internal/menu"
	"log/slog"
)

// ManagerAnswer handles the out-of-band manager reply to a ticket. It
// consults no session state: the reply is relayed regardless of what the
// owner is currently doing, followed by a resolution prompt. Returns
// domain.ErrTicketNotFound (wrapped) when the code is unknown.
//
// The ticket flips to answered as soon as the owner is found; delivery of
// the relayed messages is the gateway's concern.
func (e *Engine) ManagerAnswer(ctx context.Context, code, body string) ([]Reply, error) {
	ownerID, err := e.tickets.FindOwner(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("answer ticket %s: %w", code, err)
	}

	if err := e.tickets.MarkAnswered(ctx, code); err != nil {
		logger.Engine.LogAttrs(ctx, slog.LevelWarn, "ticket.answer.status_update_failed",
			slog.String("ticket_code", code),
			slog.String("err", err.Error()),
		)
	}

	return []Reply{
		{Text: menu.TextManagerReplyIntro + body, To: ownerID},
		{Text: menu.TextAskResolution, Menu: menu.Resolve, To: ownerID},
	}, nil
}
