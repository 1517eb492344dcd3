package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCheck(t *testing.T) {
	m := New()

	m.ObserveCheck("usa", 2*time.Second, nil)
	m.ObserveCheck("usa", time.Second, errors.New("status 541"))
	m.ObserveCheck("usa", time.Second, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.checks.WithLabelValues("usa", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checks.WithLabelValues("usa", ResultFailure)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestSetAvailableStores(t *testing.T) {
	m := New()

	m.SetAvailableStores("usa", "MFXG4LL/A", 3)
	m.SetAvailableStores("usa", "MFXG4LL/A", 0)
	m.SetAvailableStores("usa", "MFXH4LL/A", 1)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.stores.WithLabelValues("usa", "MFXG4LL/A")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stores.WithLabelValues("usa", "MFXH4LL/A")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveCheck("germany", time.Second, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `pickupwatch_checks_total{country="germany",result="success"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
