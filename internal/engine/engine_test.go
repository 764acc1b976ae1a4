package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/lknvpn/supportbot/core/logger"
	"github.com/lknvpn/supportbot/internal/domain"
	"github.com/lknvpn/supportbot/internal/menu"
	"github.com/lknvpn/supportbot/internal/session"
)

func TestMain(m *testing.M) {
	_ = logger.InitLogger(nil)
	os.Exit(m.Run())
}

type fakeTickets struct {
	created  []domain.Ticket
	owners   map[string]int64
	answered []string
	resolved []int64
	seq      int

	createErr error
}

func newFakeTickets() *fakeTickets {
	return &fakeTickets{owners: map[string]int64{}}
}

func (f *fakeTickets) AllocateCode(context.Context) (string, error) {
	f.seq++
	return fmt.Sprintf("CODE%02d", f.seq), nil
}

func (f *fakeTickets) Create(_ context.Context, t domain.Ticket) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, dup := f.owners[t.Code]; dup {
		return domain.ErrCodeTaken
	}
	f.created = append(f.created, t)
	f.owners[t.Code] = t.UserID
	return nil
}

func (f *fakeTickets) FindOwner(_ context.Context, code string) (int64, error) {
	if id, ok := f.owners[code]; ok {
		return id, nil
	}
	return 0, domain.ErrTicketNotFound
}

func (f *fakeTickets) MarkAnswered(_ context.Context, code string) error {
	f.answered = append(f.answered, code)
	return nil
}

func (f *fakeTickets) ResolveLatestAnswered(_ context.Context, userID int64) error {
	f.resolved = append(f.resolved, userID)
	return nil
}

type fakeFeedback struct {
	counts map[string]int
}

func newFakeFeedback() *fakeFeedback {
	return &fakeFeedback{counts: map[string]int{}}
}

func (f *fakeFeedback) Record(_ context.Context, description string) error {
	f.counts[strings.ToLower(strings.TrimSpace(description))]++
	return nil
}

type fixture struct {
	eng      *Engine
	tickets  *fakeTickets
	feedback *fakeFeedback
	sessions *session.Manager
}

func newFixture() *fixture {
	tickets := newFakeTickets()
	feedback := newFakeFeedback()
	sessions := session.NewManager()
	eng := New(tickets, feedback, sessions)
	eng.farewell = func() string { return "farewell" }
	return &fixture{eng: eng, tickets: tickets, feedback: feedback, sessions: sessions}
}

func (fx *fixture) handle(t *testing.T, userID int64, ev domain.Event) []Reply {
	t.Helper()
	replies, err := fx.eng.Handle(context.Background(), userID, ev)
	if err != nil {
		t.Fatalf("Handle(%T): %v", ev, err)
	}
	if len(replies) == 0 {
		t.Fatalf("Handle(%T) produced no reply", ev)
	}
	return replies
}

func (fx *fixture) node(userID int64) session.Node {
	return fx.sessions.Peek(userID).Node
}

func TestNetherlandsUkraineGetsGenericChecklist(t *testing.T) {
	fx := newFixture()
	const user = int64(10)

	fx.handle(t, user, domain.TopicSelected{Topic: domain.TopicVPNNotWorking})
	if got := fx.node(user); got != session.NodeAwaitingServer {
		t.Fatalf("node = %q, want %q", got, session.NodeAwaitingServer)
	}

	fx.handle(t, user, domain.ServerSelected{Server: domain.ServerNetherlands})
	replies := fx.handle(t, user, domain.CountrySelected{Country: "Украина"})

	if replies[0].Text != menu.TextTroubleshooting {
		t.Errorf("reply = %q, want generic troubleshooting checklist", replies[0].Text)
	}
	if replies[0].Menu != menu.Resolve {
		t.Errorf("menu = %q, want %q", replies[0].Menu, menu.Resolve)
	}
	if got := fx.node(user); got != session.NodeAwaitingResolution {
		t.Errorf("node = %q, want %q", got, session.NodeAwaitingResolution)
	}
}

func TestRussiaUkraineGetsAdvisory(t *testing.T) {
	fx := newFixture()
	const user = int64(11)

	fx.handle(t, user, domain.TopicSelected{Topic: domain.TopicVPNNotWorking})
	fx.handle(t, user, domain.ServerSelected{Server: domain.ServerRussia})
	replies := fx.handle(t, user, domain.CountrySelected{Country: "Украина"})

	if replies[0].Text != menu.TextUkraineAdvisory {
		t.Errorf("reply = %q, want Netherlands advisory", replies[0].Text)
	}
	if got := fx.node(user); got != session.NodeAwaitingResolution {
		t.Errorf("node = %q, want %q", got, session.NodeAwaitingResolution)
	}
}

func TestUnresolvedProblemCreatesTicket(t *testing.T) {
	fx := newFixture()
	const user = int64(12)

	fx.sessions.Update(user, func(s *session.Session) { s.Node = session.NodeAwaitingResolution })

	fx.handle(t, user, domain.ResolutionGiven{Resolved: false})
	if got := fx.node(user); got != session.NodeAwaitingManagerProblem {
		t.Fatalf("node = %q, want %q", got, session.NodeAwaitingManagerProblem)
	}

	replies := fx.handle(t, user, domain.FreeText{Text: "my key expired"})

	if len(fx.tickets.created) != 1 {
		t.Fatalf("%d tickets created, want 1", len(fx.tickets.created))
	}
	ticket := fx.tickets.created[0]
	if ticket.UserID != user || ticket.Problem != "my key expired" || ticket.Status != domain.TicketNew {
		t.Errorf("ticket = %+v", ticket)
	}
	if !strings.Contains(replies[0].Text, ticket.Code) {
		t.Errorf("confirmation %q does not contain code %q", replies[0].Text, ticket.Code)
	}
	if replies[0].Menu != menu.Rating {
		t.Errorf("menu = %q, want %q", replies[0].Menu, menu.Rating)
	}
	if got := fx.node(user); got != session.NodeAwaitingRating {
		t.Errorf("node = %q, want %q", got, session.NodeAwaitingRating)
	}
}

func TestLowRatingRecordsFeedbackAndResets(t *testing.T) {
	fx := newFixture()
	const user = int64(13)

	fx.sessions.Update(user, func(s *session.Session) { s.Node = session.NodeAwaitingRating })

	replies := fx.handle(t, user, domain.RatingGiven{Rating: 1})
	if replies[0].Text != menu.TextLowRatingAsk {
		t.Errorf("reply = %q, want low rating prompt", replies[0].Text)
	}
	if got := fx.node(user); got != session.NodeAwaitingLowRatingReason {
		t.Fatalf("node = %q, want %q", got, session.NodeAwaitingLowRatingReason)
	}

	replies = fx.handle(t, user, domain.FreeText{Text: "too slow"})
	if fx.feedback.counts["too slow"] != 1 {
		t.Errorf("feedback counts = %v, want too slow -> 1", fx.feedback.counts)
	}
	if replies[0].Text != menu.TextFeedbackThanks {
		t.Errorf("first reply = %q, want thanks", replies[0].Text)
	}
	if got := fx.node(user); got != session.NodeIdle {
		t.Errorf("node = %q, want idle", got)
	}
}

func TestGoodRatingSendsFarewellAndResets(t *testing.T) {
	fx := newFixture()
	const user = int64(14)

	fx.sessions.Update(user, func(s *session.Session) {
		s.Node = session.NodeAwaitingRating
		s.ChosenServer = domain.ServerRussia
	})

	replies := fx.handle(t, user, domain.RatingGiven{Rating: 5})
	if replies[0].Text != "farewell" {
		t.Errorf("reply = %q, want farewell", replies[0].Text)
	}
	if replies[0].Menu != menu.Main {
		t.Errorf("menu = %q, want %q", replies[0].Menu, menu.Main)
	}

	got := fx.sessions.Peek(user)
	if got.Node != session.NodeIdle || got.ChosenServer != "" {
		t.Errorf("session after farewell = %+v, want reset", got)
	}
}

func TestResolvedClosesAnsweredTicket(t *testing.T) {
	fx := newFixture()
	const user = int64(15)

	fx.sessions.Update(user, func(s *session.Session) { s.Node = session.NodeAwaitingResolution })

	replies := fx.handle(t, user, domain.ResolutionGiven{Resolved: true})
	if replies[0].Text != menu.TextAskRating || replies[0].Menu != menu.Rating {
		t.Errorf("reply = %+v, want rating prompt", replies[0])
	}
	if len(fx.tickets.resolved) != 1 || fx.tickets.resolved[0] != user {
		t.Errorf("resolved calls = %v, want [%d]", fx.tickets.resolved, user)
	}
}

func TestResolveAfterManagerAnswer(t *testing.T) {
	fx := newFixture()
	const owner = int64(50)

	fx.tickets.owners["QW34ER"] = owner
	if _, err := fx.eng.ManagerAnswer(context.Background(), "QW34ER", "re-issue your key"); err != nil {
		t.Fatalf("ManagerAnswer: %v", err)
	}
	// The owner's session is still idle when the relayed resolve menu
	// arrives; the button press must still close the ticket.
	if got := fx.node(owner); got != session.NodeIdle {
		t.Fatalf("owner's node = %q, want idle", got)
	}

	replies := fx.handle(t, owner, domain.ResolutionGiven{Resolved: true})
	if replies[0].Text != menu.TextAskRating || replies[0].Menu != menu.Rating {
		t.Errorf("reply = %+v, want rating prompt", replies[0])
	}
	if len(fx.tickets.resolved) != 1 || fx.tickets.resolved[0] != owner {
		t.Errorf("resolved calls = %v, want [%d]", fx.tickets.resolved, owner)
	}
	if got := fx.node(owner); got != session.NodeAwaitingRating {
		t.Errorf("node = %q, want %q", got, session.NodeAwaitingRating)
	}
}

func TestNotResolvedAfterManagerAnswerAsksProblem(t *testing.T) {
	fx := newFixture()
	const owner = int64(51)

	fx.tickets.owners["TY56UI"] = owner
	if _, err := fx.eng.ManagerAnswer(context.Background(), "TY56UI", "try the NL server"); err != nil {
		t.Fatalf("ManagerAnswer: %v", err)
	}

	replies := fx.handle(t, owner, domain.ResolutionGiven{Resolved: false})
	if replies[0].Text != menu.TextAskProblem {
		t.Errorf("reply = %q, want problem prompt", replies[0].Text)
	}
	if got := fx.node(owner); got != session.NodeAwaitingManagerProblem {
		t.Errorf("node = %q, want %q", got, session.NodeAwaitingManagerProblem)
	}
	if len(fx.tickets.resolved) != 0 {
		t.Errorf("resolved calls = %v, want none", fx.tickets.resolved)
	}
}

func TestEmptyProblemTextDoesNotCreateTicket(t *testing.T) {
	fx := newFixture()
	const user = int64(52)

	fx.sessions.Update(user, func(s *session.Session) { s.Node = session.NodeAwaitingManagerProblem })

	for _, text := range []string{"", "   ", "\n\t"} {
		replies := fx.handle(t, user, domain.FreeText{Text: text})
		if replies[0].Text != menu.TextAskProblem {
			t.Errorf("text %q: reply = %q, want problem reprompt", text, replies[0].Text)
		}
		if got := fx.node(user); got != session.NodeAwaitingManagerProblem {
			t.Errorf("text %q: node = %q, want unchanged", text, got)
		}
	}
	if len(fx.tickets.created) != 0 {
		t.Errorf("tickets created = %v, want none", fx.tickets.created)
	}
}

func TestDeviceInstructionsByPlatform(t *testing.T) {
	cases := []struct {
		device domain.Device
		want   string
	}{
		{domain.DeviceAndroid, menu.TextMobileSetup},
		{domain.DeviceMacOS, menu.TextMobileSetup},
		{domain.DeviceIOS, menu.TextMobileSetup},
		{domain.DeviceWindows, menu.TextWindowsSetup},
	}
	for _, tc := range cases {
		fx := newFixture()
		const user = int64(16)

		fx.handle(t, user, domain.TopicSelected{Topic: domain.TopicHowConnect})
		replies := fx.handle(t, user, domain.DeviceSelected{Device: tc.device})

		if replies[0].Text != tc.want {
			t.Errorf("%s: got %q instructions", tc.device, replies[0].Text)
		}
		if got := fx.node(user); got != session.NodeAwaitingResolution {
			t.Errorf("%s: node = %q, want %q", tc.device, got, session.NodeAwaitingResolution)
		}
	}
}

func TestUnknownDeviceReprompts(t *testing.T) {
	fx := newFixture()
	const user = int64(17)

	fx.handle(t, user, domain.TopicSelected{Topic: domain.TopicHowConnect})
	replies := fx.handle(t, user, domain.DeviceSelected{Device: "Toaster"})

	if replies[0].Text != menu.TextPickDevice {
		t.Errorf("reply = %q, want device reprompt", replies[0].Text)
	}
	if got := fx.node(user); got != session.NodeAwaitingDevice {
		t.Errorf("node = %q, want unchanged %q", got, session.NodeAwaitingDevice)
	}
}

func TestIdleInfoTopicsStayIdle(t *testing.T) {
	cases := []struct {
		topic domain.Topic
		want  string
	}{
		{domain.TopicLogs, menu.TextLogsInfo},
		{domain.TopicPaidSubscription, menu.TextPaidSubInfo},
		{domain.TopicRFServer, menu.TextRFServer},
	}
	for _, tc := range cases {
		fx := newFixture()
		const user = int64(18)

		replies := fx.handle(t, user, domain.TopicSelected{Topic: tc.topic})
		if replies[0].Text != tc.want {
			t.Errorf("%s: reply = %q, want %q", tc.topic, replies[0].Text, tc.want)
		}
		if got := fx.node(user); got != session.NodeIdle {
			t.Errorf("%s: node = %q, want idle", tc.topic, got)
		}
	}
}

func TestIdeaFlowSkipsPersistence(t *testing.T) {
	fx := newFixture()
	const user = int64(19)

	fx.handle(t, user, domain.TopicSelected{Topic: domain.TopicIdeas})
	if got := fx.node(user); got != session.NodeAwaitingIdea {
		t.Fatalf("node = %q, want %q", got, session.NodeAwaitingIdea)
	}

	replies := fx.handle(t, user, domain.FreeText{Text: "add dark mode"})
	if replies[0].Text != menu.TextIdeaThanks || replies[0].Menu != menu.Rating {
		t.Errorf("reply = %+v, want idea thanks with rating menu", replies[0])
	}
	if len(fx.feedback.counts) != 0 || len(fx.tickets.created) != 0 {
		t.Errorf("idea flow must not write stores: feedback=%v tickets=%v",
			fx.feedback.counts, fx.tickets.created)
	}
	if got := fx.node(user); got != session.NodeAwaitingRating {
		t.Errorf("node = %q, want %q", got, session.NodeAwaitingRating)
	}
}

// Every node paired with every event kind must produce a reply, and
// unmatched pairs must leave the node unchanged.
func TestStateMachineTotality(t *testing.T) {
	nodes := []session.Node{
		session.NodeIdle,
		session.NodeAwaitingDevice,
		session.NodeAwaitingServer,
		session.NodeAwaitingCountry,
		session.NodeAwaitingResolution,
		session.NodeAwaitingRating,
		session.NodeAwaitingLowRatingReason,
		session.NodeAwaitingManagerProblem,
		session.NodeAwaitingIdea,
	}
	events := []domain.Event{
		domain.TopicSelected{Topic: domain.TopicHowConnect},
		domain.TopicSelected{Topic: "bogus"},
		domain.DeviceSelected{Device: domain.DeviceAndroid},
		domain.ServerSelected{Server: domain.ServerNetherlands},
		domain.ServerSelected{Server: "bogus"},
		domain.CountrySelected{Country: "США"},
		domain.ResolutionGiven{Resolved: true},
		domain.ResolutionGiven{Resolved: false},
		domain.RatingGiven{Rating: 3},
		domain.RatingGiven{Rating: 0},
		domain.RatingGiven{Rating: 9},
		domain.FreeText{Text: "hello"},
	}

	user := int64(100)
	for _, node := range nodes {
		for _, ev := range events {
			user++
			fx := newFixture()
			fx.sessions.Update(user, func(s *session.Session) { s.Node = node })

			before := fx.sessions.Peek(user)
			replies, err := fx.eng.Handle(context.Background(), user, ev)
			if err != nil {
				t.Fatalf("node %s, event %T: %v", node, ev, err)
			}
			if len(replies) == 0 {
				t.Fatalf("node %s, event %T: no reply", node, ev)
			}

			after := fx.sessions.Peek(user)
			if replies[0].Text == menu.TextFallback && after.Node != before.Node {
				t.Errorf("node %s, event %T: fallback changed node to %s", node, ev, after.Node)
			}
		}
	}
}

func TestFreeTextWhileIdleFallsBack(t *testing.T) {
	fx := newFixture()
	const user = int64(20)

	replies := fx.handle(t, user, domain.FreeText{Text: "my vpn is broken"})
	if replies[0].Text != menu.TextFallback || replies[0].Menu != menu.Main {
		t.Errorf("reply = %+v, want fallback with main menu", replies[0])
	}
	if got := fx.node(user); got != session.NodeIdle {
		t.Errorf("node = %q, want idle", got)
	}
}

func TestTicketCreateFailureSurfaces(t *testing.T) {
	fx := newFixture()
	const user = int64(21)

	fx.tickets.createErr = domain.ErrCodeTaken
	fx.sessions.Update(user, func(s *session.Session) { s.Node = session.NodeAwaitingManagerProblem })

	_, err := fx.eng.Handle(context.Background(), user, domain.FreeText{Text: "broken"})
	if !errors.Is(err, domain.ErrCodeTaken) {
		t.Fatalf("err = %v, want ErrCodeTaken", err)
	}

	// The failing operation must not corrupt other sessions.
	other := int64(22)
	fx.tickets.createErr = nil
	fx.handle(t, other, domain.TopicSelected{Topic: domain.TopicHowConnect})
	if got := fx.node(other); got != session.NodeAwaitingDevice {
		t.Errorf("other user's node = %q, want %q", got, session.NodeAwaitingDevice)
	}
}

func TestManagerAnswerRelaysToOwner(t *testing.T) {
	fx := newFixture()
	const owner = int64(30)

	fx.tickets.owners["AB12CD"] = owner
	replies, err := fx.eng.ManagerAnswer(context.Background(), "AB12CD", "hello")
	if err != nil {
		t.Fatalf("ManagerAnswer: %v", err)
	}
	if len(replies) != 2 {
		t.Fatalf("%d replies, want 2", len(replies))
	}
	for i, r := range replies {
		if r.To != owner {
			t.Errorf("reply %d addressed to %d, want %d", i, r.To, owner)
		}
	}
	if !strings.Contains(replies[0].Text, "hello") {
		t.Errorf("relayed text = %q, want body included", replies[0].Text)
	}
	if replies[1].Menu != menu.Resolve {
		t.Errorf("second reply menu = %q, want resolve prompt", replies[1].Menu)
	}
	if len(fx.tickets.answered) != 1 || fx.tickets.answered[0] != "AB12CD" {
		t.Errorf("answered = %v, want [AB12CD]", fx.tickets.answered)
	}
}

func TestManagerAnswerUnknownCode(t *testing.T) {
	fx := newFixture()

	_, err := fx.eng.ManagerAnswer(context.Background(), "NOПE99", "hello")
	if !errors.Is(err, domain.ErrTicketNotFound) {
		t.Fatalf("err = %v, want ErrTicketNotFound", err)
	}
	if len(fx.tickets.answered) != 0 {
		t.Errorf("answered = %v, want no mutation", fx.tickets.answered)
	}
}

func TestManagerAnswerIgnoresSessionState(t *testing.T) {
	fx := newFixture()
	const owner = int64(31)

	fx.tickets.owners["XY98ZW"] = owner
	fx.sessions.Update(owner, func(s *session.Session) { s.Node = session.NodeAwaitingCountry })

	if _, err := fx.eng.ManagerAnswer(context.Background(), "XY98ZW", "try restarting"); err != nil {
		t.Fatalf("ManagerAnswer: %v", err)
	}
	if got := fx.node(owner); got != session.NodeAwaitingCountry {
		t.Errorf("owner's node = %q, want untouched %q", got, session.NodeAwaitingCountry)
	}
}

func TestInProgressTracksTextNodes(t *testing.T) {
	fx := newFixture()
	const user = int64(40)

	if fx.eng.InProgress(user) {
		t.Error("fresh session reported in progress")
	}
	fx.sessions.Update(user, func(s *session.Session) { s.Node = session.NodeAwaitingManagerProblem })
	if !fx.eng.InProgress(user) {
		t.Error("awaiting manager problem not reported in progress")
	}
	fx.sessions.Update(user, func(s *session.Session) { s.Node = session.NodeAwaitingRating })
	if fx.eng.InProgress(user) {
		t.Error("menu node reported in progress")
	}
}
