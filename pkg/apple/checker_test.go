package apple

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"pickupwatch/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	err error
}

func (f *fakeSession) Bootstrap(ctx context.Context) (*Credential, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &Credential{Cookie: "a=b"}, nil
}

type fakeFulfillment struct {
	results [][]ModelAvailability
	err     error
	calls   int
	cookie  string
}

func (f *fakeFulfillment) CheckAvailability(ctx context.Context, cookie string, sel *Selection) ([]ModelAvailability, error) {
	f.cookie = cookie
	if f.err != nil {
		return nil, f.err
	}
	res := f.results[min(f.calls, len(f.results)-1)]
	f.calls++
	return res, nil
}

type fakeNotifier struct {
	available []string
	failures  []error
	err       error
}

func (f *fakeNotifier) SendAvailability(ctx context.Context, text string) error {
	f.available = append(f.available, text)
	return f.err
}

func (f *fakeNotifier) SendFailure(ctx context.Context, err error) error {
	f.failures = append(f.failures, err)
	return f.err
}

func checkerSelection(t *testing.T) *Selection {
	t.Helper()
	sel, err := NewCatalog(config.DefaultCountries()).Resolve("usa", "1", "1")
	require.NoError(t, err)
	return sel
}

func availability(sel *Selection, stores ...Store) []ModelAvailability {
	return []ModelAvailability{{Model: sel.Models[0], Present: len(stores) > 0, Stores: stores}}
}

func TestCheckerRunOnce(t *testing.T) {
	sel := checkerSelection(t)
	fulfillment := &fakeFulfillment{results: [][]ModelAvailability{
		availability(sel, Store{City: "New York", State: "NY", Name: "Fifth Avenue"}),
	}}
	notifier := &fakeNotifier{}
	var out bytes.Buffer

	checker := NewChecker(&fakeSession{}, fulfillment, notifier, CheckerOptions{Output: &out})
	report, err := checker.Run(context.Background(), sel)
	require.NoError(t, err)

	assert.Equal(t, "a=b", fulfillment.cookie)
	assert.True(t, report.HasAvailable())
	assert.Contains(t, out.String(), "[AVAILABLE IN USA STORES]")
	require.Len(t, notifier.available, 1)
	assert.Equal(t, report.Available, notifier.available[0])

	status := checker.Status()
	require.NotNil(t, status)
	assert.NotEmpty(t, status.RunID)
	assert.Empty(t, status.Error)
	require.Len(t, status.Products, 1)
	assert.True(t, status.Products[0].IsAvailable)
}

func TestCheckerNothingAvailableIsNotPushed(t *testing.T) {
	sel := checkerSelection(t)
	notifier := &fakeNotifier{}

	checker := NewChecker(&fakeSession{}, &fakeFulfillment{results: [][]ModelAvailability{availability(sel)}}, notifier, CheckerOptions{})
	_, err := checker.Run(context.Background(), sel)
	require.NoError(t, err)

	assert.Empty(t, notifier.available)
}

func TestCheckerNotifyOnce(t *testing.T) {
	sel := checkerSelection(t)
	nyc := Store{City: "New York", State: "NY", Name: "Fifth Avenue"}
	de := Store{City: "Newark", State: "DE", Name: "Christiana Mall"}

	fulfillment := &fakeFulfillment{results: [][]ModelAvailability{
		availability(sel, nyc),
		availability(sel, nyc),
		availability(sel, nyc, de),
		availability(sel),
		availability(sel, nyc),
	}}
	notifier := &fakeNotifier{}
	checker := NewChecker(&fakeSession{}, fulfillment, notifier, CheckerOptions{NotifyOnce: true})

	for i := 0; i < 5; i++ {
		_, err := checker.Run(context.Background(), sel)
		require.NoError(t, err)
	}

	// first sighting, store added, back in stock
	assert.Len(t, notifier.available, 3)
}

func TestCheckerFailure(t *testing.T) {
	sel := checkerSelection(t)
	sessionErr := errors.New("handshake refused")
	notifier := &fakeNotifier{err: errors.New("telegram down")}

	checker := NewChecker(&fakeSession{err: sessionErr}, &fakeFulfillment{}, notifier, CheckerOptions{NotifyFailures: true, NotifyOnce: true})

	_, err := checker.Run(context.Background(), sel)
	require.Error(t, err)
	assert.ErrorIs(t, err, sessionErr)

	_, err = checker.Run(context.Background(), sel)
	require.Error(t, err)

	// repeated identical failures are pushed once in watch mode
	assert.Len(t, notifier.failures, 1)

	status := checker.Status()
	require.NotNil(t, status)
	assert.Equal(t, sessionErr.Error(), status.Error)
}

func TestCheckerFulfillmentFailure(t *testing.T) {
	sel := checkerSelection(t)
	notifier := &fakeNotifier{}

	checker := NewChecker(&fakeSession{}, &fakeFulfillment{err: ErrAuthRejected}, notifier, CheckerOptions{NotifyFailures: true})

	_, err := checker.Run(context.Background(), sel)
	assert.ErrorIs(t, err, ErrAuthRejected)

	_, err = checker.Run(context.Background(), sel)
	assert.ErrorIs(t, err, ErrAuthRejected)
	assert.Len(t, notifier.failures, 2)
}

type fakeMetrics struct {
	successes int
	failures  int
	stores    map[string]int
}

func (f *fakeMetrics) ObserveCheck(country string, elapsed time.Duration, err error) {
	if err != nil {
		f.failures++
		return
	}
	f.successes++
}

func (f *fakeMetrics) SetAvailableStores(country, model string, stores int) {
	if f.stores == nil {
		f.stores = make(map[string]int)
	}
	f.stores[country+"/"+model] = stores
}

func TestCheckerMetrics(t *testing.T) {
	sel := checkerSelection(t)
	m := &fakeMetrics{}
	fulfillment := &fakeFulfillment{results: [][]ModelAvailability{
		availability(sel, Store{City: "New York", State: "NY", Name: "Fifth Avenue"}),
	}}

	_, err := NewChecker(&fakeSession{}, fulfillment, nil, CheckerOptions{Metrics: m}).Run(context.Background(), sel)
	require.NoError(t, err)
	_, err = NewChecker(&fakeSession{err: errors.New("refused")}, fulfillment, nil, CheckerOptions{Metrics: m}).Run(context.Background(), sel)
	require.Error(t, err)

	assert.Equal(t, 1, m.successes)
	assert.Equal(t, 1, m.failures)
	assert.Equal(t, map[string]int{"usa/MFXG4LL/A": 1}, m.stores)
}

func TestCheckerWithoutNotifier(t *testing.T) {
	sel := checkerSelection(t)
	fulfillment := &fakeFulfillment{results: [][]ModelAvailability{
		availability(sel, Store{City: "New York", State: "NY", Name: "Fifth Avenue"}),
	}}

	checker := NewChecker(&fakeSession{}, fulfillment, nil, CheckerOptions{NotifyFailures: true})
	_, err := checker.Run(context.Background(), sel)
	assert.NoError(t, err)

	assert.Nil(t, NewChecker(&fakeSession{}, fulfillment, nil, CheckerOptions{}).Status())
}
