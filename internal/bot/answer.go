package bot

import (
	"errors"
	"strings"

	"github.com/lknvpn/supportbot/core/logger"
	tghelpers "github.com/lknvpn/supportbot/core/telegram/helpers"
	"github.com/lknvpn/supportbot/internal/domain"
	"github.com/lknvpn/supportbot/internal/menu"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// parseAnswerArgs splits "/answer <code> <body>" into its parts. The body
// keeps internal whitespace intact.
func parseAnswerArgs(text string) (code, body string, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(text), " ", 3)
	if len(parts) < 3 {
		return "", "", false
	}
	code = strings.TrimSpace(parts[1])
	body = strings.TrimSpace(parts[2])
	if code == "" || body == "" {
		return "", "", false
	}
	return code, body, true
}

// handleAnswer relays a manager reply to a ticket's owner. Any caller who
// can message the bot may answer any ticket; there is deliberately no
// allow-list.
func (b *Bot) handleAnswer(c tele.Context) error {
	code, body, ok := parseAnswerArgs(c.Text())
	if !ok {
		return tghelpers.SendText(c, menu.TextAnswerUsage)
	}

	ctx := tghelpers.BuildContext(c)
	replies, err := b.eng.ManagerAnswer(ctx, code, body)
	if errors.Is(err, domain.ErrTicketNotFound) {
		return tghelpers.SendText(c, menu.TextAnswerNotFound)
	}
	if err != nil {
		return err
	}

	if err := b.deliver(c, replies); err != nil {
		// Recipient unreachable, most likely a blocked bot. Non-fatal:
		// report it to the invoker instead of failing the handler.
		logger.TG.LogAttrs(ctx, slog.LevelWarn, "answer.delivery_failed",
			slog.String("ticket_code", code),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return tghelpers.SendText(c, menu.TextAnswerSendFailed)
	}

	return tghelpers.SendText(c, menu.TextAnswerSent)
}
