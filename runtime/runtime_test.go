package runtime

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"github.com/Lynxchester/lynxchat/contract"
	"github.com/Lynxchester/lynxchat/domain"
	"github.com/Lynxchester/lynxchat/domain/event"
	"github.com/Lynxchester/lynxchat/moderation"
	"github.com/Lynxchester/lynxchat/repositories"
)

// recordingSink captures every event delivered to a connection so tests
// can assert on ordering and content.
type recordingSink struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (s *recordingSink) Consume(e event.DomainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) Events() []event.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.DomainEvent{}, s.events...)
}

func (s *recordingSink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.events))
	for _, e := range s.events {
		names = append(names, e.EventName())
	}
	return names
}

// byName returns the first recorded event with the given wire name.
func (s *recordingSink) byName(name string) (event.DomainEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e.EventName() == name {
			return e, true
		}
	}
	return nil, false
}

func (s *recordingSink) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.events {
		if e.EventName() == name {
			n++
		}
	}
	return n
}

func (s *recordingSink) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

var _ contract.EventSink = (*recordingSink)(nil)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// core is the fully wired realtime stack backed by an in-memory store.
type core struct {
	coordinator *Coordinator
	presence    *Presence
	rooms       *Rooms
	engine      *MatchEngine
}

func newCore(t *testing.T, cleanupDelay time.Duration) *core {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := testLogger()
	moderator, err := moderation.NewModerator([]string{"badger"}, '*')
	require.NoError(t, err)

	presence := NewPresence()
	rooms := NewRooms()
	engine := NewMatchEngine(log, presence, cleanupDelay)
	coordinator := NewCoordinator(
		log,
		presence,
		rooms,
		engine,
		repositories.NewMessageLog(db, log),
		&moderator,
		50,
		2000,
	)
	return &core{coordinator: coordinator, presence: presence, rooms: rooms, engine: engine}
}

// connect registers a fresh connection with a recording sink.
func (c *core) connect(connID, username string) *recordingSink {
	sink := &recordingSink{}
	c.coordinator.Connect(connID, domain.Identity{UserID: "id-" + username, Username: username}, sink)
	return sink
}
