package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/codearena.net/internal/domain"
)

func TestRecorder_ObserveView(t *testing.T) {
	r := NewRecorder()

	r.ObserveView(domain.SubmissionView{State: domain.ViewRunning})
	r.ObserveView(domain.SubmissionView{State: domain.ViewWrongAnswer, Score: &domain.Score{Passed: 3, Total: 5, Percentage: 60}})

	assert.Equal(t, 1.0, testutil.ToFloat64(r.viewUpdates.WithLabelValues(string(domain.ViewRunning))))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.finished.WithLabelValues(string(domain.ViewWrongAnswer))))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.finished.WithLabelValues(string(domain.ViewRunning))))
	assert.Equal(t, 1, testutil.CollectAndCount(r.score))
}

func TestRecorder_ObserveConnection(t *testing.T) {
	r := NewRecorder()
	assert.Equal(t, 1.0, testutil.ToFloat64(r.connectionState.WithLabelValues(string(domain.ConnDisconnected))))

	r.ObserveConnection(domain.ConnConnected, nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.connectionState.WithLabelValues(string(domain.ConnConnected))))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.connectionState.WithLabelValues(string(domain.ConnDisconnected))))

	r.ObserveConnection(domain.ConnDisconnected, errors.New("refused"))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.connectionErrors))
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.ObserveView(domain.SubmissionView{State: domain.ViewSuccess})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `codearena_submissions_finished_total{state="Success"} 1`)
}
