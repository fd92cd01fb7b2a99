package resourcemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeFacade struct {
	lastActivity time.Time
	closed       bool
}

func (f *fakeFacade) LastActivity() time.Time { return f.lastActivity }
func (f *fakeFacade) ReclaimedClose() error {
	f.closed = true
	return nil
}

func TestRegisterAndUnregister(t *testing.T) {
	m := New()
	f := &fakeFacade{lastActivity: time.Now()}
	reg := m.Register(Kind{Operation: "encoder", Media: "video"}, f)
	require.Equal(t, 1, m.Count())

	m.Unregister(reg)
	require.Equal(t, 0, m.Count())
}

func TestReclaimInactiveClosesOldFacades(t *testing.T) {
	m := New()
	now := time.Now()
	stale := &fakeFacade{lastActivity: now.Add(-time.Hour)}
	fresh := &fakeFacade{lastActivity: now}

	m.Register(Kind{Operation: "decoder", Media: "video"}, stale)
	m.Register(Kind{Operation: "decoder", Media: "video"}, fresh)

	reclaimed, err := m.ReclaimInactive(context.Background(), now, 10*time.Minute, nil)
	require.NoError(t, err)
	require.Equal(t, 1, reclaimed)
	require.True(t, stale.closed)
	require.False(t, fresh.closed)
}

func TestReclaimInactiveRespectsExemption(t *testing.T) {
	m := New()
	now := time.Now()
	stale := &fakeFacade{lastActivity: now.Add(-time.Hour)}
	m.Register(Kind{Operation: "encoder", Media: "video"}, stale)

	reclaimed, err := m.ReclaimInactive(context.Background(), now, 10*time.Minute, func(k Kind) bool {
		return k.Operation == "encoder"
	})
	require.NoError(t, err)
	require.Equal(t, 0, reclaimed)
	require.False(t, stale.closed)
}

func TestListReturnsSnapshot(t *testing.T) {
	m := New()
	now := time.Now()
	f := &fakeFacade{lastActivity: now}
	m.Register(Kind{Operation: "encoder", Media: "video"}, f)

	listing := m.List()
	require.Len(t, listing, 1)
	require.Equal(t, "encoder", listing[0].Kind.Operation)
	require.False(t, listing[0].Reclaimed)
}

func TestReclaimOneReclaimsRegardlessOfActivity(t *testing.T) {
	m := New()
	f := &fakeFacade{lastActivity: time.Now()}
	reg := m.Register(Kind{Operation: "decoder", Media: "audio"}, f)

	ok, err := m.ReclaimOne(reg.id)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, f.closed)

	ok, err = m.ReclaimOne(reg.id)
	require.NoError(t, err)
	require.False(t, ok, "a second reclaim of the same id must be a no-op")
}

func TestReclaimOneUnknownIDReturnsFalse(t *testing.T) {
	m := New()
	ok, err := m.ReclaimOne("does-not-exist")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestReclaimInactiveIsIdempotentPerFacade(t *testing.T) {
	m := New()
	now := time.Now()
	stale := &fakeFacade{lastActivity: now.Add(-time.Hour)}
	m.Register(Kind{Operation: "decoder", Media: "audio"}, stale)

	reclaimed1, err := m.ReclaimInactive(context.Background(), now, time.Minute, nil)
	require.NoError(t, err)
	require.Equal(t, 1, reclaimed1)

	reclaimed2, err := m.ReclaimInactive(context.Background(), now, time.Minute, nil)
	require.NoError(t, err)
	require.Equal(t, 0, reclaimed2, "a facade already reclaimed must not be reclaimed twice")
}
