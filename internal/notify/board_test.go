package notify

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/codearena.net/internal/domain"
)

func TestBoard_CoalescesByID(t *testing.T) {
	var changes []Change
	b := NewBoard(func(c Change) { changes = append(changes, c) })

	b.Notify(domain.Notification{ID: "s1", Kind: domain.NotifyLoading, Message: "Processing submission..."})
	b.Notify(domain.Notification{ID: "s1", Kind: domain.NotifyLoading, Message: "Processing submission... 1/3 tests"})
	b.Notify(domain.Notification{ID: "s1", Kind: domain.NotifyError, Message: "Submission WA"})

	list := b.List()
	require.Len(t, list, 1)
	assert.Equal(t, "Submission WA", list[0].Message)
	assert.Len(t, changes, 3)
}

func TestBoard_SkipsIdenticalNotification(t *testing.T) {
	count := 0
	b := NewBoard(func(c Change) { count++ })

	n := domain.Notification{ID: "s1", Kind: domain.NotifySuccess, Message: "Submission completed successfully!"}
	b.Notify(n)
	b.Notify(n)

	assert.Equal(t, 1, count)
}

func TestBoard_EmptyIDStandsAlone(t *testing.T) {
	b := NewBoard()
	b.Notify(domain.Notification{Kind: domain.NotifyInfo, Message: "one"})
	b.Notify(domain.Notification{Kind: domain.NotifyInfo, Message: "two"})

	list := b.List()
	require.Len(t, list, 2)
	assert.NotEqual(t, list[0].ID, list[1].ID)
}

func TestBoard_Dismiss(t *testing.T) {
	var removed []string
	b := NewBoard(func(c Change) {
		if c.Removed {
			removed = append(removed, c.Notification.ID)
		}
	})
	b.Notify(domain.Notification{ID: "a", Kind: domain.NotifyInfo, Message: "a"})
	b.Notify(domain.Notification{ID: "b", Kind: domain.NotifyInfo, Message: "b"})

	b.Dismiss("a")
	b.Dismiss("a")
	b.Dismiss("missing")

	_, ok := b.Get("a")
	assert.False(t, ok)
	assert.Equal(t, []string{"a"}, removed)
	assert.Len(t, b.List(), 1)
}

func TestBoard_ListNewestFirst(t *testing.T) {
	b := NewBoard()
	base := time.Unix(1_700_000_000, 0)
	b.Notify(domain.Notification{ID: "old", Message: "old", UpdatedAt: base})
	b.Notify(domain.Notification{ID: "new", Message: "new", UpdatedAt: base.Add(time.Second)})

	list := b.List()
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
}

func TestConnectivityListener(t *testing.T) {
	b := NewBoard()
	l := ConnectivityListener(b)

	l(domain.ConnConnected, nil)
	n, _ := b.Get(ConnectivityID)
	assert.Equal(t, domain.NotifySuccess, n.Kind)
	assert.Equal(t, "Connected to real-time updates", n.Message)

	l(domain.ConnDisconnected, nil)
	n, _ = b.Get(ConnectivityID)
	assert.Equal(t, domain.NotifyError, n.Kind)
	assert.Equal(t, "Lost connection to real-time updates", n.Message)

	l(domain.ConnConnecting, errors.New("dial refused"))
	n, _ = b.Get(ConnectivityID)
	assert.Contains(t, n.Message, "dial refused")

	// only one connectivity indicator ever exists
	assert.Len(t, b.List(), 1)
}

func TestConsole_ViewWithoutColour(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.View(domain.SubmissionView{
		SubmissionID: "s1",
		State:        domain.ViewWrongAnswer,
		Score:        &domain.Score{Passed: 1, Total: 5, Percentage: 20},
		Outcomes: []domain.OutcomeView{
			{Index: 1, State: domain.OutcomePassed, Input: "1 2", Expected: "3", Actual: "3"},
			{Index: 2, State: domain.OutcomeFailed, Input: "2 2", Expected: "4"},
			{Index: 3, State: domain.OutcomeInProgress},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "WrongAnswer s1  20% (1/5 passed)")
	assert.Contains(t, out, "Test 2 FAILED")
	assert.Contains(t, out, "output:   No output")
	assert.Contains(t, out, "Test 3 RUNNING")
	assert.NotContains(t, out, "\x1b[")
}

func TestPercentageColour(t *testing.T) {
	assert.Equal(t, ansiGreen, PercentageColour(100))
	assert.Equal(t, ansiYellow, PercentageColour(60))
	assert.Equal(t, ansiOrange, PercentageColour(1))
	assert.Equal(t, ansiRed, PercentageColour(0))
}
