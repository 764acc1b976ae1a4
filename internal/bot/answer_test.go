package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/lknvpn/supportbot/internal/domain"
	"github.com/lknvpn/supportbot/internal/engine"
	"github.com/lknvpn/supportbot/internal/menu"
	"github.com/lknvpn/supportbot/internal/session"

	tele "gopkg.in/telebot.v4"
)

// fakeCtx implements the parts of tele.Context the handlers touch. The
// embedded interface covers the rest at compile time.
type fakeCtx struct {
	tele.Context

	text string
	cb   *tele.Callback
	from *tele.User
	sent []string
	kv   map[string]interface{}
}

func newFakeCtx(text string) *fakeCtx {
	return &fakeCtx{
		text: text,
		from: &tele.User{ID: 99},
		kv:   map[string]interface{}{},
	}
}

func (f *fakeCtx) Text() string             { return f.text }
func (f *fakeCtx) Update() tele.Update      { return tele.Update{ID: 7} }
func (f *fakeCtx) Sender() *tele.User       { return f.from }
func (f *fakeCtx) Chat() *tele.Chat         { return &tele.Chat{ID: f.from.ID} }
func (f *fakeCtx) Callback() *tele.Callback { return f.cb }
func (f *fakeCtx) Get(k string) interface{} { return f.kv[k] }
func (f *fakeCtx) Set(k string, v interface{}) {
	f.kv[k] = v
}

func (f *fakeCtx) Send(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	return nil
}

type stubTickets struct {
	owners   map[string]int64
	created  []domain.Ticket
	answered []string
}

func (s *stubTickets) AllocateCode(context.Context) (string, error) { return "ZZ99ZZ", nil }

func (s *stubTickets) Create(_ context.Context, t domain.Ticket) error {
	s.created = append(s.created, t)
	return nil
}

func (s *stubTickets) FindOwner(_ context.Context, code string) (int64, error) {
	if id, ok := s.owners[code]; ok {
		return id, nil
	}
	return 0, domain.ErrTicketNotFound
}

func (s *stubTickets) MarkAnswered(_ context.Context, code string) error {
	s.answered = append(s.answered, code)
	return nil
}

func (s *stubTickets) ResolveLatestAnswered(context.Context, int64) error { return nil }

type stubFeedback struct{}

func (stubFeedback) Record(context.Context, string) error { return nil }

type relayed struct {
	to   int64
	text string
}

func newTestBot(tickets *stubTickets) (*Bot, *session.Manager) {
	sessions := session.NewManager()
	b := New(engine.New(tickets, stubFeedback{}, sessions))
	return b, sessions
}

func TestHandleAnswerRelaysAndConfirms(t *testing.T) {
	tickets := &stubTickets{owners: map[string]int64{"AB12CD": 555}}
	b, _ := newTestBot(tickets)

	var out []relayed
	b.sendTo = func(_ tele.Context, userID int64, text string, _ *tele.ReplyMarkup) error {
		out = append(out, relayed{to: userID, text: text})
		return nil
	}

	fc := newFakeCtx("/answer AB12CD your key was reissued")
	if err := b.handleAnswer(fc); err != nil {
		t.Fatalf("handleAnswer: %v", err)
	}

	if len(out) != 2 {
		t.Fatalf("%d relayed messages, want 2", len(out))
	}
	for i, r := range out {
		if r.to != 555 {
			t.Errorf("relay %d addressed to %d, want 555", i, r.to)
		}
	}
	if len(fc.sent) != 1 || fc.sent[0] != menu.TextAnswerSent {
		t.Errorf("invoker replies = %q, want confirmation", fc.sent)
	}
	if len(tickets.answered) != 1 || tickets.answered[0] != "AB12CD" {
		t.Errorf("answered = %v, want [AB12CD]", tickets.answered)
	}
}

func TestHandleAnswerDeliveryFailureReportsToInvoker(t *testing.T) {
	tickets := &stubTickets{owners: map[string]int64{"AB12CD": 555}}
	b, _ := newTestBot(tickets)

	b.sendTo = func(tele.Context, int64, string, *tele.ReplyMarkup) error {
		return errors.New("forbidden: bot was blocked by the user")
	}

	fc := newFakeCtx("/answer AB12CD hello")
	if err := b.handleAnswer(fc); err != nil {
		t.Fatalf("handleAnswer must not fail on delivery errors, got %v", err)
	}

	if len(fc.sent) != 1 || fc.sent[0] != menu.TextAnswerSendFailed {
		t.Errorf("invoker replies = %q, want send-failed notice", fc.sent)
	}
}

func TestHandleAnswerUnknownCode(t *testing.T) {
	b, _ := newTestBot(&stubTickets{owners: map[string]int64{}})

	fc := newFakeCtx("/answer NOPE99 hello")
	if err := b.handleAnswer(fc); err != nil {
		t.Fatalf("handleAnswer: %v", err)
	}
	if len(fc.sent) != 1 || fc.sent[0] != menu.TextAnswerNotFound {
		t.Errorf("invoker replies = %q, want not-found notice", fc.sent)
	}
}

func TestHandleAnswerUsage(t *testing.T) {
	b, _ := newTestBot(&stubTickets{owners: map[string]int64{}})

	fc := newFakeCtx("/answer")
	if err := b.handleAnswer(fc); err != nil {
		t.Fatalf("handleAnswer: %v", err)
	}
	if len(fc.sent) != 1 || fc.sent[0] != menu.TextAnswerUsage {
		t.Errorf("invoker replies = %q, want usage hint", fc.sent)
	}
}

func TestMalformedCallbackDropped(t *testing.T) {
	tickets := &stubTickets{owners: map[string]int64{}}
	b, sessions := newTestBot(tickets)

	sessions.Update(99, func(s *session.Session) { s.Node = session.NodeAwaitingManagerProblem })

	fc := newFakeCtx("")
	fc.cb = &tele.Callback{Unique: menu.CBRating, Data: "five"}

	handler := b.callbackEvent(decodeRating)
	if err := handler(fc); err != nil {
		t.Fatalf("callback handler: %v", err)
	}

	if len(fc.sent) != 0 {
		t.Errorf("replies = %q, want none for a dropped payload", fc.sent)
	}
	if got := sessions.Peek(99).Node; got != session.NodeAwaitingManagerProblem {
		t.Errorf("node = %q, want untouched", got)
	}
	if len(tickets.created) != 0 {
		t.Errorf("tickets created = %v, want none", tickets.created)
	}
}
