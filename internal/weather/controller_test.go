package weather

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetchResult struct {
	snap Snapshot
	err  error
}

// fakeProvider answers each Fetch from a per-city script. When a city has a
// release channel, Fetch blocks until it is signalled.
type fakeProvider struct {
	mu      sync.Mutex
	results map[string]fetchResult
	release map[string]chan struct{}
	calls   []string
	panics  bool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		results: make(map[string]fetchResult),
		release: make(map[string]chan struct{}),
	}
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Fetch(ctx context.Context, city string) (Snapshot, error) {
	f.mu.Lock()
	f.calls = append(f.calls, city)
	res := f.results[city]
	gate := f.release[city]
	panics := f.panics
	f.mu.Unlock()

	if panics {
		panic("provider exploded")
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return Snapshot{}, &TransportError{Op: "request", Err: ctx.Err()}
		}
	}
	return res.snap, res.err
}

func (f *fakeProvider) hold(city string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.release[city] = ch
	return ch
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func londonSnapshot() Snapshot {
	return Snapshot{
		LocationName:         "London",
		CountryCode:          "GB",
		TemperatureC:         15.4,
		FeelsLikeC:           14.1,
		HumidityPct:          80,
		WindSpeedMps:         3.6,
		ConditionLabel:       "clouds",
		ConditionDescription: "overcast clouds",
	}
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("submission did not resolve in time")
	}
}

func TestControllerStartsIdle(t *testing.T) {
	c := NewController(newFakeProvider())
	assert.Equal(t, Idle{}, c.State())
	assert.Empty(t, c.LastCity())
}

func TestSubmitBlankInputIsIgnored(t *testing.T) {
	p := newFakeProvider()
	c := NewController(p)

	for _, in := range []string{"", " ", "   ", "\t\n"} {
		wait(t, c.Submit(in))
		assert.Equal(t, Idle{}, c.State(), "input %q", in)
	}
	assert.Zero(t, p.callCount())

	// A blank submit after a failure leaves the failure in place.
	p.results["Nowhereville"] = fetchResult{err: ErrNotFound}
	wait(t, c.Submit("Nowhereville"))
	wait(t, c.Submit("  "))
	assert.Equal(t, Failed{Message: "City not found"}, c.State())
}

func TestSubmitTransitionsToLoadingSynchronously(t *testing.T) {
	p := newFakeProvider()
	gate := p.hold("London")
	p.results["London"] = fetchResult{snap: londonSnapshot()}
	c := NewController(p)

	done := c.Submit("London")
	assert.Equal(t, Loading{}, c.State())

	close(gate)
	wait(t, done)
	assert.Equal(t, Success{Snapshot: londonSnapshot()}, c.State())
}

func TestSubmitTrimsCityName(t *testing.T) {
	p := newFakeProvider()
	p.results["London"] = fetchResult{snap: londonSnapshot()}
	c := NewController(p)

	wait(t, c.Submit("  London \n"))

	require.Equal(t, []string{"London"}, p.calls)
	assert.Equal(t, "London", c.LastCity())
	assert.Equal(t, PhaseSuccess, c.State().Phase())
}

func TestSubmitKeepsOwnCopyOfCityName(t *testing.T) {
	p := newFakeProvider()
	gate := p.hold("London")
	p.results["London"] = fetchResult{snap: londonSnapshot()}
	c := NewController(p)

	// A string backed by a buffer the caller reuses after Submit returns.
	buf := []byte(" London ")
	done := c.Submit(unsafe.String(&buf[0], len(buf)))
	copy(buf, "XXXXXXXX")

	assert.Equal(t, "London", c.LastCity())
	close(gate)
	wait(t, done)
	assert.Equal(t, []string{"London"}, p.calls)
	assert.Equal(t, Success{Snapshot: londonSnapshot()}, c.State())
}

func TestSubmitFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", ErrNotFound, "City not found"},
		{"wrapped not found", errors.Join(ErrNotFound, errors.New("status 401")), "City not found"},
		{"network fault", errors.New("network unreachable"), "network unreachable"},
		{
			name: "url error hides request url",
			err: &TransportError{Op: "request", Err: &url.Error{
				Op:  "Get",
				URL: "https://example.test/weather?appid=secret",
				Err: errors.New("network unreachable"),
			}},
			want: "network unreachable",
		},
		{"empty message", errors.New(""), DefaultFailureMessage},
		{"transport error without cause", &TransportError{Op: "decode"}, DefaultFailureMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFakeProvider()
			p.results["X"] = fetchResult{err: tt.err}
			c := NewController(p)

			wait(t, c.Submit("X"))
			assert.Equal(t, Failed{Message: tt.want}, c.State())
		})
	}
}

func TestSubmitRecoversProviderPanic(t *testing.T) {
	p := newFakeProvider()
	p.panics = true
	c := NewController(p)

	wait(t, c.Submit("London"))
	assert.Equal(t, Failed{Message: "provider exploded"}, c.State())
}

func TestSuccessClearsPreviousError(t *testing.T) {
	p := newFakeProvider()
	p.results["Nowhereville"] = fetchResult{err: ErrNotFound}
	p.results["London"] = fetchResult{snap: londonSnapshot()}
	c := NewController(p)

	wait(t, c.Submit("Nowhereville"))
	require.Equal(t, PhaseFailed, c.State().Phase())

	wait(t, c.Submit("London"))
	assert.Equal(t, Success{Snapshot: londonSnapshot()}, c.State())
}

func TestFailureDiscardsPreviousSnapshot(t *testing.T) {
	p := newFakeProvider()
	p.results["London"] = fetchResult{snap: londonSnapshot()}
	p.results["Nowhereville"] = fetchResult{err: ErrNotFound}
	c := NewController(p)

	wait(t, c.Submit("London"))
	wait(t, c.Submit("Nowhereville"))

	_, ok := Present(c.State())
	assert.False(t, ok)
}

func TestSubmitSameCityTwiceIsIdempotent(t *testing.T) {
	p := newFakeProvider()
	p.results["London"] = fetchResult{snap: londonSnapshot()}
	c := NewController(p)

	wait(t, c.Submit("London"))
	first := c.State()
	wait(t, c.Submit("London"))

	assert.Equal(t, first, c.State())
	assert.Equal(t, 2, p.callCount())
}

func TestLaterSubmissionSupersedesEarlier(t *testing.T) {
	p := newFakeProvider()
	gateA := p.hold("Paris")
	p.results["Paris"] = fetchResult{snap: Snapshot{LocationName: "Paris", CountryCode: "FR", ConditionLabel: "clear"}}
	p.results["London"] = fetchResult{snap: londonSnapshot()}
	c := NewController(p)

	doneA := c.Submit("Paris")
	doneB := c.Submit("London")
	wait(t, doneB)
	assert.Equal(t, Success{Snapshot: londonSnapshot()}, c.State())

	// A resolves after B and must be discarded.
	close(gateA)
	wait(t, doneA)
	assert.Equal(t, Success{Snapshot: londonSnapshot()}, c.State())
}

func TestSupersededFailureDoesNotOverwriteLoading(t *testing.T) {
	p := newFakeProvider()
	gateB := p.hold("London")
	p.results["Nowhereville"] = fetchResult{err: ErrNotFound}
	p.results["London"] = fetchResult{snap: londonSnapshot()}
	c := NewController(p)

	gateA := p.hold("Nowhereville")
	doneA := c.Submit("Nowhereville")
	doneB := c.Submit("London")

	close(gateA)
	wait(t, doneA)
	assert.Equal(t, Loading{}, c.State())

	close(gateB)
	wait(t, doneB)
	assert.Equal(t, PhaseSuccess, c.State().Phase())
}

func TestSubmitTimeout(t *testing.T) {
	p := newFakeProvider()
	p.hold("Slowtown")
	c := NewController(p, WithTimeout(20*time.Millisecond))

	wait(t, c.Submit("Slowtown"))
	assert.Equal(t, Failed{Message: context.DeadlineExceeded.Error()}, c.State())
}

func TestRefreshResubmitsLastCity(t *testing.T) {
	p := newFakeProvider()
	p.results["London"] = fetchResult{snap: londonSnapshot()}
	c := NewController(p)

	wait(t, c.Refresh())
	assert.Equal(t, Idle{}, c.State())
	assert.Zero(t, p.callCount())

	wait(t, c.Submit("London"))
	wait(t, c.Refresh())
	assert.Equal(t, []string{"London", "London"}, p.calls)
	assert.Equal(t, PhaseSuccess, c.State().Phase())
}
