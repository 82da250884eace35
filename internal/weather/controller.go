package weather

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultQueryTimeout = 10 * time.Second

// Controller owns the query lifecycle: it accepts city names, issues one
// provider query per submission and keeps the single current State.
//
// Each submission resolves on its own goroutine. Only the resolution of the
// most recently issued submission is applied; older ones are discarded.
type Controller struct {
	provider Provider
	logger   *zap.Logger
	timeout  time.Duration

	mu       sync.Mutex
	state    State
	seq      uint64
	lastCity string
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *zap.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTimeout bounds each provider query. Zero disables the bound.
func WithTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) {
		c.timeout = d
	}
}

// NewController creates a Controller in the Idle state.
func NewController(provider Provider, opts ...ControllerOption) *Controller {
	c := &Controller{
		provider: provider,
		logger:   zap.NewNop(),
		timeout:  defaultQueryTimeout,
		state:    Idle{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastCity returns the last accepted (trimmed) city name, or "".
func (c *Controller) LastCity() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastCity
}

// Submit starts a lookup for rawCity.
//
// Blank input is ignored and leaves the state untouched. Otherwise the state
// becomes Loading before Submit returns, and the query runs in the
// background. The returned channel is closed once this submission has
// resolved; for ignored input it is already closed.
func (c *Controller) Submit(rawCity string) <-chan struct{} {
	done := make(chan struct{})

	city := strings.TrimSpace(rawCity)
	if city == "" {
		close(done)
		return done
	}
	// The name outlives the call; never keep caller-owned memory.
	city = strings.Clone(city)

	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.lastCity = city
	c.state = Loading{}
	c.mu.Unlock()

	id := uuid.NewString()
	c.logger.Debug("weather lookup submitted",
		zap.String("submission_id", id),
		zap.Uint64("seq", seq),
		zap.String("city", city),
	)

	go func() {
		defer close(done)
		c.resolve(id, seq, city)
	}()

	return done
}

// Refresh re-submits the last accepted city. It does nothing if no city has
// been submitted yet.
func (c *Controller) Refresh() <-chan struct{} {
	return c.Submit(c.LastCity())
}

func (c *Controller) resolve(id string, seq uint64, city string) {
	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	next := c.query(ctx, city)

	log := c.logger.With(
		zap.String("submission_id", id),
		zap.Uint64("seq", seq),
		zap.String("city", city),
		zap.String("phase", string(next.Phase())),
	)

	c.mu.Lock()
	if seq != c.seq {
		latest := c.seq
		c.mu.Unlock()
		log.Debug("weather lookup superseded; discarding result", zap.Uint64("latest_seq", latest))
		return
	}
	c.state = next
	c.mu.Unlock()

	if f, ok := next.(Failed); ok {
		log.Info("weather lookup failed", zap.String("message", f.Message))
		return
	}
	log.Info("weather lookup resolved")
}

// query runs the provider call and converts its outcome into a terminal
// state. Panics on the provider path are treated as transport faults.
func (c *Controller) query(ctx context.Context, city string) (next State) {
	defer func() {
		if r := recover(); r != nil {
			err := &TransportError{Op: "fetch", Err: fmt.Errorf("%v", r)}
			next = Failed{Message: FailureMessage(err)}
		}
	}()

	snap, err := c.provider.Fetch(ctx, city)
	if err != nil {
		return Failed{Message: FailureMessage(err)}
	}
	return Success{Snapshot: snap}
}
