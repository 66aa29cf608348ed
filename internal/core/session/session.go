// Package session drives one progressive load: bytes from a source are
// decoded incrementally, appended into a fresh store, and flushed to the
// rendering layers at a bounded cadence. Starting a new session abandons the
// previous one; its partially filled store is never merged with the new one.
package session

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/chiblo/poimap/internal/core/store"
	"github.com/chiblo/poimap/internal/data/codec"
	"github.com/chiblo/poimap/internal/filter"
	"github.com/chiblo/poimap/internal/render"
	"github.com/chiblo/poimap/internal/util"
)

// DefaultFlushEvery is the decode cadence K: a render flush is requested
// every K decoded features, plus one unconditional final flush.
const DefaultFlushEvery = 256

// State is the load lifecycle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateComplete
	StateFailed
	StateCanceled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	case StateCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Source yields the byte stream of one load attempt.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// Session is one load of the dataset into its own store.
type Session struct {
	source     Source
	store      *store.FeatureStore
	controller *Controller
	syncer     *render.Syncer
	engine     *filter.Engine
	flushAt    int
	progress   Progress

	mu        sync.Mutex
	state     State
	err       error
	published bool

	done chan struct{}
}

// Controller owns the active session and enforces last-load-wins: starting a
// new load cancels the in-flight decode and its partial output stays
// confined to the abandoned session's store.
type Controller struct {
	holder     *store.Holder
	syncer     *render.Syncer
	engine     *filter.Engine
	flushEvery int

	mu     sync.Mutex
	active *Session
	cancel context.CancelFunc
}

// NewController wires the loader to the published store, the render syncer
// and the filter engine. flushEvery <= 0 selects DefaultFlushEvery.
func NewController(holder *store.Holder, syncer *render.Syncer, engine *filter.Engine, flushEvery int) *Controller {
	if flushEvery <= 0 {
		flushEvery = DefaultFlushEvery
	}
	return &Controller{
		holder:     holder,
		syncer:     syncer,
		engine:     engine,
		flushEvery: flushEvery,
	}
}

// Start cancels any in-flight load and begins a new one. The returned
// session reports progress and terminal state; wait on Done for completion.
func (c *Controller) Start(ctx context.Context, src Source) *Session {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	s := &Session{
		source:     src,
		store:      store.New(),
		controller: c,
		syncer:     c.syncer,
		engine:     c.engine,
		flushAt:    c.flushEvery,
		state:      StateLoading,
		done:       make(chan struct{}),
	}
	c.active = s
	c.mu.Unlock()

	go s.run(ctx)
	return s
}

// Active returns the most recently started session, or nil.
func (c *Controller) Active() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// publish swaps the session's store into the holder, unless a newer session
// has already taken over. The check and the swap share the controller lock
// with Start, so a canceled session unblocked by a late record can never
// displace the store of the load that replaced it.
func (c *Controller) publish(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != s {
		return
	}
	c.holder.Swap(s.store)
}

// Done closes when the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the terminal error for failed sessions.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Progress exposes the decode progress tracker.
func (s *Session) Progress() *Progress {
	return &s.progress
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	body, err := s.source.Open(ctx)
	if err != nil {
		// Transport failure before any byte: old data stays visible.
		s.fail(err)
		return
	}
	defer body.Close()

	dec := codec.NewDecoder(body)
	header, err := dec.Header()
	if err != nil {
		s.fail(err)
		return
	}
	s.progress.SetTotal(header.Total, header.TotalKnown)
	if header.TotalKnown {
		util.LogInfof("session: %s declares %d features", s.source, header.Total)
	} else {
		util.LogInfof("session: %s declares unknown feature count", s.source)
	}

	for {
		if ctx.Err() != nil {
			s.finishCanceled()
			return
		}

		feature, err := dec.Next()
		if errors.Is(err, io.EOF) {
			s.finishComplete()
			return
		}
		if err != nil {
			// Structural decode or transport failure mid-stream:
			// keep the partial data, degrade gracefully.
			s.finishFailed(err)
			return
		}

		s.store.Append(feature)
		s.publishOnce()

		decoded := s.progress.Advance()
		total, known := s.progress.Total()
		if decoded%s.flushAt == 0 || (known && decoded == total) {
			s.flush()
		}
	}
}

// publishOnce swaps this session's store into the holder when the first
// record arrives. Until then consumers keep seeing the previous dataset, so
// a failed refresh never flickers the map to empty. The swap itself is gated
// on this session still being the controller's active one.
func (s *Session) publishOnce() {
	s.mu.Lock()
	if s.published {
		s.mu.Unlock()
		return
	}
	s.published = true
	s.mu.Unlock()
	s.controller.publish(s)
}

func (s *Session) flush() {
	s.syncer.RequestFlush()
	s.engine.Recompute()
}

func (s *Session) finishComplete() {
	// An empty but well-formed stream still replaces the old dataset;
	// the refresh genuinely produced zero features.
	s.publishOnce()
	s.store.Freeze()
	s.setState(StateComplete, nil)
	s.flush()
	util.LogInfof("session: complete, %d features loaded (%d%%)", s.progress.Decoded(), s.progress.Percent())
}

func (s *Session) finishFailed(err error) {
	s.store.Freeze()
	s.setState(StateFailed, err)
	s.flush()
	util.LogErrorf("session: load failed after %d features: %v", s.progress.Decoded(), err)
}

func (s *Session) finishCanceled() {
	s.store.Freeze()
	s.setState(StateCanceled, context.Canceled)
	util.LogInfof("session: canceled after %d features", s.progress.Decoded())
}

// fail handles errors before any record was produced; the previous store is
// left untouched.
func (s *Session) fail(err error) {
	s.store.Freeze()
	s.setState(StateFailed, err)
	util.LogErrorf("session: %s: %v", s.source, err)
}

func (s *Session) setState(state State, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.err = err
}
