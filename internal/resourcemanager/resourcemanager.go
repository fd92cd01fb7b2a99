// Package resourcemanager implements the process-wide Resource Manager: a
// mutex-guarded registry of facades with last-activity tracking and an
// inactivity reclamation sweep. Grounded on the teacher's
// relay.CircuitBreakerRegistry (internal/relay/circuit_breaker.go), whose
// double-checked-locking Get and maxAge-based Cleanup are adapted here
// into Register/Unregister and ReclaimInactive.
package resourcemanager

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
)

// Kind tags what a registered facade is, for reclamation policy decisions
// (e.g. exempting active foreground encoders).
type Kind struct {
	Operation string // "encoder" or "decoder"
	Media     string // "video", "audio", or "image"
}

// Reclaimable is the subset of internal/facade.Facade[C] the manager needs.
// Facade satisfies this structurally; no import cycle is required.
type Reclaimable interface {
	LastActivity() time.Time
	ReclaimedClose() error
}

// Registration is the handle returned by Register, used to Unregister a
// facade. The manager has no touch operation of its own: activity comes
// from the facade's LastActivity, which it updates on every Encode/Decode.
type Registration struct {
	id string
}

type entry struct {
	kind      Kind
	facade    Reclaimable
	reclaimed bool
}

// Manager is the facade registry. The package keeps no global instance;
// callers construct one with New (the daemon's serve command builds one).
type Manager struct {
	mu      sync.Mutex
	entries map[string]*entry
	audit   *AuditStore
}

// New constructs an empty Manager.
func New() *Manager {
	return &Manager{entries: make(map[string]*entry)}
}

// Register adds facade to the registry under kind and returns a handle
// for a later Unregister call.
func (m *Manager) Register(kind Kind, facade Reclaimable) *Registration {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := ulid.Make().String()
	m.entries[id] = &entry{kind: kind, facade: facade}
	return &Registration{id: id}
}

// Unregister removes a facade from the registry. Idempotent.
func (m *Manager) Unregister(reg *Registration) {
	if reg == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, reg.id)
}

// Count returns the number of currently registered facades.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Listing is a snapshot of one registered facade, for introspection.
type Listing struct {
	ID           string
	Kind         Kind
	LastActivity time.Time
	Reclaimed    bool
}

// List returns a snapshot of every registered facade.
func (m *Manager) List() []Listing {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Listing, 0, len(m.entries))
	for id, e := range m.entries {
		out = append(out, Listing{ID: id, Kind: e.kind, LastActivity: e.facade.LastActivity(), Reclaimed: e.reclaimed})
	}
	return out
}

// ReclaimOne reclaims a single registered facade by ID regardless of its
// last-activity age, for operator-initiated reclamation via the admin
// surface. Returns false if id is not registered or was already reclaimed.
func (m *Manager) ReclaimOne(id string) (bool, error) {
	m.mu.Lock()
	e, ok := m.entries[id]
	if !ok || e.reclaimed {
		m.mu.Unlock()
		return false, nil
	}
	e.reclaimed = true
	audit := m.audit
	m.mu.Unlock()

	if err := e.facade.ReclaimedClose(); err != nil {
		return false, err
	}
	if audit != nil {
		_ = audit.Record(ReclamationEvent{
			FacadeID:    id,
			Operation:   e.kind.Operation,
			Media:       e.kind.Media,
			ReclaimedAt: time.Now(),
			Reason:      "operator-requested",
		})
	}
	return true, nil
}

// ReclaimInactive closes every registered facade whose last activity is
// older than threshold relative to now, except those kinds exempted by
// isExempt. Reclamation is idempotent per facade and runs concurrently
// via errgroup, mirroring the teacher's pattern of acting on a registry
// snapshot without holding the lock during the slow per-entry work.
func (m *Manager) ReclaimInactive(ctx context.Context, now time.Time, threshold time.Duration, isExempt func(Kind) bool) (int, error) {
	type candidate struct {
		id string
		e  *entry
	}

	m.mu.Lock()
	var candidates []candidate
	for id, e := range m.entries {
		if e.reclaimed {
			continue
		}
		if isExempt != nil && isExempt(e.kind) {
			continue
		}
		if now.Sub(e.facade.LastActivity()) > threshold {
			candidates = append(candidates, candidate{id: id, e: e})
		}
	}
	audit := m.audit
	m.mu.Unlock()

	if len(candidates) == 0 {
		return 0, nil
	}

	g, _ := errgroup.WithContext(ctx)
	var mu sync.Mutex
	reclaimed := 0
	for _, c := range candidates {
		c := c
		g.Go(func() error {
			mu.Lock()
			alreadyReclaimed := c.e.reclaimed
			if !alreadyReclaimed {
				c.e.reclaimed = true
			}
			mu.Unlock()
			if alreadyReclaimed {
				return nil
			}
			if err := c.e.facade.ReclaimedClose(); err != nil {
				return err
			}
			if audit != nil {
				_ = audit.Record(ReclamationEvent{
					FacadeID:    c.id,
					Operation:   c.e.kind.Operation,
					Media:       c.e.kind.Media,
					ReclaimedAt: now,
					Reason:      "inactivity-threshold-exceeded",
				})
			}
			mu.Lock()
			reclaimed++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return reclaimed, err
	}
	return reclaimed, nil
}
