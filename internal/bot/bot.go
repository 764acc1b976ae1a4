// Package bot wires the conversation engine to the Telegram transport:
// commands, callback decoding into typed events, and reply delivery.
package bot

import (
	"strconv"

	"github.com/lknvpn/supportbot/core/logger"
	tg "github.com/lknvpn/supportbot/core/telegram"
	"github.com/lknvpn/supportbot/core/telegram/callbacks"
	"github.com/lknvpn/supportbot/core/telegram/commands"
	tghelpers "github.com/lknvpn/supportbot/core/telegram/helpers"
	"github.com/lknvpn/supportbot/internal/domain"
	"github.com/lknvpn/supportbot/internal/engine"
	"github.com/lknvpn/supportbot/internal/menu"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// sendFunc delivers one text to an arbitrary user, bypassing the reply
// context. Swappable in tests.
type sendFunc func(c tele.Context, userID int64, text string, rm *tele.ReplyMarkup) error

// Bot connects the engine to a command/callback registry.
type Bot struct {
	eng    *engine.Engine
	sendTo sendFunc
}

// New creates the wiring layer around an engine.
func New(eng *engine.Engine) *Bot {
	return &Bot{eng: eng, sendTo: sendViaBot}
}

func sendViaBot(c tele.Context, userID int64, text string, rm *tele.ReplyMarkup) error {
	var opts []interface{}
	if rm != nil {
		opts = append(opts, rm)
	}
	_, err := c.Bot().Send(&tele.User{ID: userID}, text, opts...)
	return err
}

// Register installs all commands, callbacks and fallbacks on the registry.
func (b *Bot) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     b.handleStart,
		Description: "Запуск бота",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     b.handleHelp,
		Description: "Помощь",
	})
	reg.RegisterCommand("/answer", commands.Command{
		Handler:     b.handleAnswer,
		Description: "Ответ менеджера по коду обращения",
		Hidden:      true,
	})

	_ = reg.RegisterCallback(menu.CBTopic, b.callbackEvent(decodeTopic))
	_ = reg.RegisterCallback(menu.CBDevice, b.callbackEvent(decodeDevice))
	_ = reg.RegisterCallback(menu.CBServer, b.callbackEvent(decodeServer))
	_ = reg.RegisterCallback(menu.CBCountry, b.callbackEvent(decodeCountry))
	_ = reg.RegisterCallback(menu.CBResolve, b.callbackEvent(decodeResolution))
	_ = reg.RegisterCallback(menu.CBRating, b.callbackEvent(decodeRating))

	reg.SetTextFallback(b.handleText)
}

// InProgress implements the router Conversation interface.
func (b *Bot) InProgress(userID int64) bool {
	return b.eng.InProgress(userID)
}

// TextHandler implements the router Conversation interface.
func (b *Bot) TextHandler(c tele.Context) error {
	return b.handleText(c)
}

func (b *Bot) handleStart(c tele.Context) error {
	return tghelpers.SendText(c, menu.TextWelcome, menu.Markup(menu.Main))
}

func (b *Bot) handleHelp(c tele.Context) error {
	return tghelpers.SendText(c, menu.TextHelp)
}

// handleText feeds any plain message into the engine as free text. Idle
// users get the menu reminder through the engine's own fallback.
func (b *Bot) handleText(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	replies, err := b.eng.Handle(ctx, sender.ID, domain.FreeText{Text: c.Text()})
	if err != nil {
		return err
	}
	return b.deliver(c, replies)
}

// callbackEvent adapts a payload decoder into a callback handler. A nil
// event from the decoder means a malformed payload; it is dropped without
// touching the session, the button press was already acknowledged.
func (b *Bot) callbackEvent(decode func(payload string) domain.Event) tele.HandlerFunc {
	return func(c tele.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}
		ev := decode(callbacks.CallbackPayload(c))
		if ev == nil {
			logger.TG.LogAttrs(logger.Background(), slog.LevelWarn, "callback.payload.dropped",
				slog.Int64("user_id", sender.ID),
			)
			return nil
		}
		ctx := tghelpers.BuildContext(c)
		replies, err := b.eng.Handle(ctx, sender.ID, ev)
		if err != nil {
			return err
		}
		return b.deliver(c, replies)
	}
}

// deliver sends engine replies. Replies addressed to another user go out
// synchronously so the caller observes delivery failures.
func (b *Bot) deliver(c tele.Context, replies []engine.Reply) error {
	for _, r := range replies {
		if r.To != 0 {
			if err := b.sendTo(c, r.To, r.Text, menu.Markup(r.Menu)); err != nil {
				return err
			}
			continue
		}
		if err := tghelpers.SendText(c, r.Text, menu.Markup(r.Menu)); err != nil {
			return err
		}
	}
	return nil
}

func decodeTopic(payload string) domain.Event {
	switch t := domain.Topic(payload); t {
	case domain.TopicHowConnect, domain.TopicVPNNotWorking, domain.TopicLogs,
		domain.TopicPaidSubscription, domain.TopicIdeas, domain.TopicRFServer:
		return domain.TopicSelected{Topic: t}
	}
	return nil
}

func decodeDevice(payload string) domain.Event {
	return domain.DeviceSelected{Device: domain.Device(payload)}
}

func decodeServer(payload string) domain.Event {
	return domain.ServerSelected{Server: domain.Server(payload)}
}

func decodeCountry(payload string) domain.Event {
	if payload == "" {
		return nil
	}
	return domain.CountrySelected{Country: payload}
}

func decodeResolution(payload string) domain.Event {
	switch payload {
	case menu.PayloadResolved:
		return domain.ResolutionGiven{Resolved: true}
	case menu.PayloadNotResolved:
		return domain.ResolutionGiven{Resolved: false}
	}
	return nil
}

func decodeRating(payload string) domain.Event {
	n, err := strconv.Atoi(payload)
	if err != nil {
		logger.TG.LogAttrs(logger.Background(), slog.LevelWarn, "callback.rating.malformed",
			slog.String("payload", logger.SanitizeLimit(payload, 32)),
		)
		return nil
	}
	return domain.RatingGiven{Rating: n}
}
