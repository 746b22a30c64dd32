// Package runtime hosts the realtime coordination core: presence, room
// broadcast groups, the match engine and the connection coordinator.
// It orchestrates the system without containing domain rules.
package runtime

import (
	"sync"

	"github.com/Lynxchester/lynxchat/contract"
	"github.com/Lynxchester/lynxchat/domain"
)

type presenceEntry struct {
	identity domain.Identity
	sink     contract.EventSink
}

// Presence is the process-wide map of live connections to identities.
// It is rebuilt from scratch on every process start: presence is never
// persisted, reconnecting clients must rejoin their rooms explicitly.
type Presence struct {
	mu      sync.RWMutex
	entries map[string]presenceEntry
}

func NewPresence() *Presence {
	return &Presence{entries: make(map[string]presenceEntry)}
}

// Register inserts the connection. A user may hold several connections at
// once (multiple devices); each connection id maps to exactly one entry.
func (p *Presence) Register(connID string, identity domain.Identity, sink contract.EventSink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[connID] = presenceEntry{identity: identity, sink: sink}
}

func (p *Presence) Unregister(connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.entries, connID)
}

// FindByUsername scans live connections for a display name and returns
// the first match. Display names are not guaranteed unique at the
// presence layer, only at the identity layer.
func (p *Presence) FindByUsername(username string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for connID, entry := range p.entries {
		if entry.identity.Username == username {
			return connID, true
		}
	}
	return "", false
}

func (p *Presence) Identity(connID string) (domain.Identity, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	entry, ok := p.entries[connID]
	return entry.identity, ok
}

func (p *Presence) Sink(connID string) (contract.EventSink, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	entry, ok := p.entries[connID]
	if !ok {
		return nil, false
	}
	return entry.sink, true
}

func (p *Presence) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}
