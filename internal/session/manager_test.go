package session

import (
	"sync"
	"testing"

	"github.com/lknvpn/supportbot/internal/domain"
)

func TestManagerDefaultsToIdle(t *testing.T) {
	m := NewManager()
	if got := m.Peek(42).Node; got != NodeIdle {
		t.Fatalf("fresh session node = %q, want %q", got, NodeIdle)
	}
}

func TestManagerUpdateRetainsMutation(t *testing.T) {
	m := NewManager()
	m.Update(1, func(s *Session) {
		s.Node = NodeAwaitingCountry
		s.ChosenServer = domain.ServerRussia
	})

	got := m.Peek(1)
	if got.Node != NodeAwaitingCountry {
		t.Errorf("node = %q, want %q", got.Node, NodeAwaitingCountry)
	}
	if got.ChosenServer != domain.ServerRussia {
		t.Errorf("chosen server = %q, want %q", got.ChosenServer, domain.ServerRussia)
	}

	if other := m.Peek(2); other.Node != NodeIdle || other.ChosenServer != "" {
		t.Errorf("other user's session leaked: %+v", other)
	}
}

func TestManagerResetClearsContext(t *testing.T) {
	m := NewManager()
	m.Update(1, func(s *Session) {
		s.Node = NodeAwaitingRating
		s.ChosenServer = domain.ServerNetherlands
	})
	m.Reset(1)

	got := m.Peek(1)
	if got.Node != NodeIdle || got.ChosenServer != "" {
		t.Fatalf("session after reset = %+v, want idle with empty context", got)
	}
}

// Concurrent updates to one user's session must not lose increments, and
// updates to different users must not interfere.
func TestManagerSerializesPerUser(t *testing.T) {
	m := NewManager()
	const (
		users   = 8
		updates = 200
	)

	counts := make([]int, users)
	var wg sync.WaitGroup
	for u := 0; u < users; u++ {
		for i := 0; i < updates; i++ {
			wg.Add(1)
			go func(u int) {
				defer wg.Done()
				m.Update(int64(u), func(s *Session) {
					counts[u]++
					if counts[u]%2 == 0 {
						s.Node = NodeAwaitingServer
					} else {
						s.Node = NodeAwaitingDevice
					}
				})
			}(u)
		}
	}
	wg.Wait()

	for u := 0; u < users; u++ {
		if counts[u] != updates {
			t.Errorf("user %d: %d updates observed, want %d", u, counts[u], updates)
		}
	}
}

func TestNodeAwaitsText(t *testing.T) {
	textNodes := map[Node]bool{
		NodeIdle:                    false,
		NodeAwaitingDevice:          false,
		NodeAwaitingServer:          false,
		NodeAwaitingCountry:         false,
		NodeAwaitingResolution:      false,
		NodeAwaitingRating:          false,
		NodeAwaitingLowRatingReason: true,
		NodeAwaitingManagerProblem:  true,
		NodeAwaitingIdea:            true,
	}
	for node, want := range textNodes {
		if got := node.AwaitsText(); got != want {
			t.Errorf("%s.AwaitsText() = %v, want %v", node, got, want)
		}
	}
}
