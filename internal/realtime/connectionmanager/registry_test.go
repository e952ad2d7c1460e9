package connectionmanager

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/codearena.net/internal/adapter/logging"
	"gitlab.com/codearena.net/internal/domain"
)

func TestDispatchUpdate_RegistrationOrder(t *testing.T) {
	cm := NewConnectionManager(logging.NewNopLogger())
	var calls []string
	cm.Updates.Add(func(ev domain.UpdateEvent) { calls = append(calls, "first:"+ev.SubmissionID) })
	cm.Updates.Add(func(ev domain.UpdateEvent) { calls = append(calls, "second:"+ev.SubmissionID) })

	cm.DispatchUpdate(domain.UpdateEvent{SubmissionID: "s1"})
	cm.DispatchUpdate(domain.UpdateEvent{SubmissionID: "s2"})

	assert.Equal(t, []string{"first:s1", "second:s1", "first:s2", "second:s2"}, calls)
}

func TestRemove_Idempotent(t *testing.T) {
	cm := NewConnectionManager(logging.NewNopLogger())
	count := 0
	sub := cm.Updates.Add(func(domain.UpdateEvent) { count++ })
	keep := cm.Updates.Add(func(domain.UpdateEvent) {})

	assert.True(t, cm.Updates.Remove(sub))
	assert.False(t, cm.Updates.Remove(sub))
	assert.False(t, cm.Updates.Remove("unknown"))

	cm.DispatchUpdate(domain.UpdateEvent{SubmissionID: "s1"})
	assert.Zero(t, count)
	assert.Equal(t, 1, cm.Updates.Len())
	assert.True(t, cm.Updates.Remove(keep))
}

func TestDispatch_PanickingSubscriberIsolated(t *testing.T) {
	cm := NewConnectionManager(logging.NewNopLogger())
	reached := false
	cm.Updates.Add(func(domain.UpdateEvent) { panic("boom") })
	cm.Updates.Add(func(domain.UpdateEvent) { reached = true })

	require.NotPanics(t, func() { cm.DispatchUpdate(domain.UpdateEvent{}) })
	assert.True(t, reached)
}

func TestRegistry_ConcurrentAddRemove(t *testing.T) {
	cm := NewConnectionManager(logging.NewNopLogger())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := cm.Updates.Add(func(domain.UpdateEvent) {})
			cm.DispatchUpdate(domain.UpdateEvent{})
			cm.Updates.Remove(sub)
			cm.Updates.Remove(sub)
		}()
	}
	wg.Wait()
	assert.Zero(t, cm.Updates.Len())
}

func TestDispatchState(t *testing.T) {
	cm := NewConnectionManager(logging.NewNopLogger())
	var got []domain.ConnectionState
	cm.States.Add(func(s domain.ConnectionState, err error) { got = append(got, s) })

	cm.DispatchState(domain.ConnConnecting, nil)
	cm.DispatchState(domain.ConnConnected, nil)
	cm.States.Clear()
	cm.DispatchState(domain.ConnDisconnected, nil)

	assert.Equal(t, []domain.ConnectionState{domain.ConnConnecting, domain.ConnConnected}, got)
}
