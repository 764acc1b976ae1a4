// Package engine implements the support conversation state machine. Given
// a user's current session node and a decoded inbound event it computes
// the next node, the replies to send, and any durable store mutation.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/lknvpn/supportbot/core/logger"
	"github.com/lknvpn/supportbot/internal/domain"
	"github.com/lknvpn/supportbot/internal/menu"
	"github.com/lknvpn/supportbot/internal/session"
	"log/slog"
)

// TicketStore is the durable ticket surface the engine writes through.
type TicketStore interface {
	AllocateCode(ctx context.Context) (string, error)
	Create(ctx context.Context, t domain.Ticket) error
	FindOwner(ctx context.Context, code string) (int64, error)
	MarkAnswered(ctx context.Context, code string) error
	ResolveLatestAnswered(ctx context.Context, userID int64) error
}

// FeedbackStore aggregates low-rating complaints.
type FeedbackStore interface {
	Record(ctx context.Context, description string) error
}

// Sessions is the per-user conversation state repository.
type Sessions interface {
	Update(userID int64, fn func(*session.Session))
	Peek(userID int64) session.Session
	Reset(userID int64)
}

// Reply is an outbound directive for the messaging gateway: text plus an
// optional menu. To overrides the recipient; zero means the event sender.
type Reply struct {
	Text string
	Menu menu.ID
	To   int64
}

// Engine drives conversations. All dependencies are injected; the engine
// holds no ambient globals.
type Engine struct {
	tickets  TicketStore
	feedback FeedbackStore
	sessions Sessions
	farewell func() string
}

// New wires the engine with its stores and session repository.
func New(tickets TicketStore, feedback FeedbackStore, sessions Sessions) *Engine {
	return &Engine{
		tickets:  tickets,
		feedback: feedback,
		sessions: sessions,
		farewell: menu.Farewell,
	}
}

// InProgress reports whether the user's conversation is waiting on
// free-form text.
func (e *Engine) InProgress(userID int64) bool {
	return e.sessions.Peek(userID).Node.AwaitsText()
}

// Handle runs one inbound event through the state machine. The session
// read-modify-write is serialized per user by the session repository, so
// two back-to-back events from the same user cannot race.
//
// Handle is total over the event set: unrecognized input re-prompts and
// leaves the node unchanged, it never returns an empty reply slice. The
// returned error covers store failures only.
func (e *Engine) Handle(ctx context.Context, userID int64, ev domain.Event) ([]Reply, error) {
	var (
		replies []Reply
		err     error
	)
	e.sessions.Update(userID, func(s *session.Session) {
		prev := s.Node
		if prev == "" {
			s.Node = session.NodeIdle
			prev = session.NodeIdle
		}
		replies, err = e.step(ctx, userID, s, ev)
		logger.Engine.LogAttrs(ctx, slog.LevelDebug, "transition",
			slog.String("node", string(prev)),
			slog.String("node_next", string(s.Node)),
			slog.String("event_kind", eventKind(ev)),
			slog.Int64("user_id", userID),
		)
	})
	return replies, err
}

func (e *Engine) step(ctx context.Context, userID int64, s *session.Session, ev domain.Event) ([]Reply, error) {
	switch s.Node {
	case session.NodeIdle, "":
		return e.stepIdle(ctx, userID, s, ev)
	case session.NodeAwaitingDevice:
		return e.stepDevice(s, ev)
	case session.NodeAwaitingServer:
		return e.stepServer(s, ev)
	case session.NodeAwaitingCountry:
		return e.stepCountry(s, ev)
	case session.NodeAwaitingResolution:
		return e.stepResolution(ctx, userID, s, ev)
	case session.NodeAwaitingRating:
		return e.stepRating(s, ev)
	case session.NodeAwaitingLowRatingReason:
		return e.stepLowRatingReason(ctx, s, ev)
	case session.NodeAwaitingManagerProblem:
		return e.stepManagerProblem(ctx, userID, s, ev)
	case session.NodeAwaitingIdea:
		return e.stepIdea(s, ev)
	}
	// Unknown node, reset rather than strand the user.
	s.Reset()
	return fallback(), nil
}

// fallback answers any event that does not match the current node's
// expected pattern. The node is left unchanged by callers.
func fallback() []Reply {
	return []Reply{{Text: menu.TextFallback, Menu: menu.Main}}
}

func (e *Engine) stepIdle(ctx context.Context, userID int64, s *session.Session, ev domain.Event) ([]Reply, error) {
	// A manager reply relays the resolve menu while the owner's session
	// sits idle, so resolution answers must be honored here too.
	if _, ok := ev.(domain.ResolutionGiven); ok {
		return e.stepResolution(ctx, userID, s, ev)
	}
	t, ok := ev.(domain.TopicSelected)
	if !ok {
		return fallback(), nil
	}
	switch t.Topic {
	case domain.TopicHowConnect:
		s.Node = session.NodeAwaitingDevice
		return []Reply{{Text: menu.TextAskDevice, Menu: menu.Device}}, nil
	case domain.TopicVPNNotWorking:
		s.Node = session.NodeAwaitingServer
		return []Reply{{Text: menu.TextAskServer, Menu: menu.Server}}, nil
	case domain.TopicLogs:
		return []Reply{{Text: menu.TextLogsInfo, Menu: menu.Main}}, nil
	case domain.TopicPaidSubscription:
		return []Reply{{Text: menu.TextPaidSubInfo, Menu: menu.Main}}, nil
	case domain.TopicRFServer:
		return []Reply{{Text: menu.TextRFServer, Menu: menu.Main}}, nil
	case domain.TopicIdeas:
		s.Node = session.NodeAwaitingIdea
		return []Reply{{Text: menu.TextAskIdea}}, nil
	}
	return fallback(), nil
}

func (e *Engine) stepDevice(s *session.Session, ev domain.Event) ([]Reply, error) {
	d, ok := ev.(domain.DeviceSelected)
	if !ok {
		return fallback(), nil
	}
	if !d.Device.Known() {
		return []Reply{{Text: menu.TextPickDevice, Menu: menu.Device}}, nil
	}

	text := menu.TextWindowsSetup
	if d.Device.Mobile() {
		text = menu.TextMobileSetup
	}
	s.Node = session.NodeAwaitingResolution
	return []Reply{{Text: text, Menu: menu.Resolve}}, nil
}

func (e *Engine) stepServer(s *session.Session, ev domain.Event) ([]Reply, error) {
	sel, ok := ev.(domain.ServerSelected)
	if !ok || !sel.Server.Known() {
		return fallback(), nil
	}
	s.ChosenServer = sel.Server
	s.Node = session.NodeAwaitingCountry
	return []Reply{{Text: menu.TextAskCountry, Menu: menu.Country}}, nil
}

func (e *Engine) stepCountry(s *session.Session, ev domain.Event) ([]Reply, error) {
	c, ok := ev.(domain.CountrySelected)
	if !ok {
		return fallback(), nil
	}

	text := menu.TextTroubleshooting
	if s.ChosenServer == domain.ServerRussia && c.Country == menu.CountryUkraine {
		text = menu.TextUkraineAdvisory
	}
	s.Node = session.NodeAwaitingResolution
	return []Reply{{Text: text, Menu: menu.Resolve}}, nil
}

func (e *Engine) stepResolution(ctx context.Context, userID int64, s *session.Session, ev domain.Event) ([]Reply, error) {
	r, ok := ev.(domain.ResolutionGiven)
	if !ok {
		return fallback(), nil
	}
	if r.Resolved {
		// Best effort: close the newest answered ticket if a manager reply
		// led the user here. Users without tickets hit a no-op.
		if err := e.tickets.ResolveLatestAnswered(ctx, userID); err != nil {
			logger.Engine.LogAttrs(ctx, slog.LevelWarn, "ticket.resolve.failed",
				slog.Int64("user_id", userID),
				slog.String("err", err.Error()),
			)
		}
		s.Node = session.NodeAwaitingRating
		return []Reply{{Text: menu.TextAskRating, Menu: menu.Rating}}, nil
	}
	s.Node = session.NodeAwaitingManagerProblem
	return []Reply{{Text: menu.TextAskProblem}}, nil
}

func (e *Engine) stepRating(s *session.Session, ev domain.Event) ([]Reply, error) {
	r, ok := ev.(domain.RatingGiven)
	if !ok || r.Rating < 1 || r.Rating > 5 {
		return fallback(), nil
	}
	if r.Rating < 2 {
		s.Node = session.NodeAwaitingLowRatingReason
		return []Reply{{Text: menu.TextLowRatingAsk}}, nil
	}
	s.Reset()
	return []Reply{{Text: e.farewell(), Menu: menu.Main}}, nil
}

func (e *Engine) stepLowRatingReason(ctx context.Context, s *session.Session, ev domain.Event) ([]Reply, error) {
	t, ok := ev.(domain.FreeText)
	if !ok {
		return fallback(), nil
	}
	if err := e.feedback.Record(ctx, t.Text); err != nil {
		return nil, fmt.Errorf("record low rating feedback: %w", err)
	}
	s.Reset()
	return []Reply{
		{Text: menu.TextFeedbackThanks},
		{Text: e.farewell(), Menu: menu.Main},
	}, nil
}

func (e *Engine) stepManagerProblem(ctx context.Context, userID int64, s *session.Session, ev domain.Event) ([]Reply, error) {
	t, ok := ev.(domain.FreeText)
	if !ok {
		return fallback(), nil
	}
	problem := strings.TrimSpace(t.Text)
	if problem == "" {
		return []Reply{{Text: menu.TextAskProblem}}, nil
	}

	code, err := e.tickets.AllocateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate ticket code: %w", err)
	}
	ticket := domain.Ticket{
		Code:    code,
		UserID:  userID,
		Problem: problem,
		Status:  domain.TicketNew,
	}
	if err := e.tickets.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	s.Node = session.NodeAwaitingRating
	return []Reply{{Text: menu.TicketAccepted(code), Menu: menu.Rating}}, nil
}

func (e *Engine) stepIdea(s *session.Session, ev domain.Event) ([]Reply, error) {
	if _, ok := ev.(domain.FreeText); !ok {
		return fallback(), nil
	}
	// Idea content is accepted but not persisted.
	s.Node = session.NodeAwaitingRating
	return []Reply{{Text: menu.TextIdeaThanks, Menu: menu.Rating}}, nil
}

func eventKind(ev domain.Event) string {
	switch ev.(type) {
	case domain.TopicSelected:
		return "topic"
	case domain.DeviceSelected:
		return "device"
	case domain.ServerSelected:
		return "server"
	case domain.CountrySelected:
		return "country"
	case domain.ResolutionGiven:
		return "resolution"
	case domain.RatingGiven:
		return "rating"
	case domain.FreeText:
		return "text"
	}
	return "unknown"
}
