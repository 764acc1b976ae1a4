package session

import "github.com/lknvpn/supportbot/internal/domain"

// Node is the engine's current position in the support decision tree for
// one user.
type Node string

const (
	// NodeIdle is both the initial and terminal node. A conversation always
	// returns here after completion or abandonment.
	NodeIdle                    Node = "idle"
	NodeAwaitingDevice          Node = "awaiting_device"
	NodeAwaitingServer          Node = "awaiting_server"
	NodeAwaitingCountry         Node = "awaiting_country"
	NodeAwaitingResolution      Node = "awaiting_resolution"
	NodeAwaitingRating          Node = "awaiting_rating"
	NodeAwaitingLowRatingReason Node = "awaiting_low_rating_reason"
	NodeAwaitingManagerProblem  Node = "awaiting_manager_problem"
	NodeAwaitingIdea            Node = "awaiting_idea"
)

// AwaitsText reports whether the node consumes free-form text rather than
// a menu selection.
func (n Node) AwaitsText() bool {
	switch n {
	case NodeAwaitingLowRatingReason, NodeAwaitingManagerProblem, NodeAwaitingIdea:
		return true
	}
	return false
}

// Session is the ephemeral per-user conversation state. It is overwritten
// on every transition and reset to the zero value when a conversation
// completes. A process restart loses in-flight conversations.
type Session struct {
	Node Node
	// ChosenServer is recorded at the server menu and consulted at the
	// country menu to special-case the Russia/Ukraine pair.
	ChosenServer domain.Server
}

// Reset returns the session to the neutral idle state.
func (s *Session) Reset() {
	*s = Session{Node: NodeIdle}
}
