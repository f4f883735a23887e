package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/gigspace/gigspace/internal/logging"
)

// Poller errors.
var (
	ErrPollerAlreadyRunning = errors.New("poller already running")
	ErrPollerNotRunning     = errors.New("poller not running")
	ErrFetchInFlight        = errors.New("fetch already in flight")
	ErrSnapshotDiscarded    = errors.New("snapshot discarded")
)

// PollerConfig contains configuration for the sync poller.
type PollerConfig struct {
	// Interval is how often snapshots are fetched.
	// Default: 5s
	Interval time.Duration

	// RequestTimeout bounds a single snapshot fetch.
	// Default: 10s
	RequestTimeout time.Duration
}

// DefaultPollerConfig returns sensible defaults.
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		Interval:       5 * time.Second,
		RequestTimeout: 10 * time.Second,
	}
}

// Poller drives the periodic snapshot fetches that keep the store
// current. Each tick fetches the conversation list and, when a
// conversation is active, its message log. At most one fetch per
// target is in flight at a time; a tick that finds a fetch still
// running for a target skips that target rather than queueing behind
// it, so a slow backend degrades to a lower effective poll rate
// instead of building a request backlog.
type Poller struct {
	config     PollerConfig
	client     Client
	store      *Store
	reconciler *Reconciler
	logger     zerolog.Logger

	generation atomic.Uint64

	mu       sync.RWMutex
	running  bool
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	inflight map[string]bool
}

// NewPoller creates a new snapshot Poller.
func NewPoller(config PollerConfig, client Client, store *Store, reconciler *Reconciler) *Poller {
	if config.Interval <= 0 {
		config.Interval = DefaultPollerConfig().Interval
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultPollerConfig().RequestTimeout
	}

	return &Poller{
		config:     config,
		client:     client,
		store:      store,
		reconciler: reconciler,
		logger:     logging.Component("chat-poller"),
		inflight:   make(map[string]bool),
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return ErrPollerAlreadyRunning
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.running = true

	p.logger.Info().
		Dur("interval", p.config.Interval).
		Msg("chat poller starting")

	p.wg.Add(1)
	go p.runLoop()

	return nil
}

// Stop halts the polling loop and waits for in-flight fetches.
func (p *Poller) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return ErrPollerNotRunning
	}

	p.logger.Info().Msg("chat poller stopping")
	p.cancel()
	p.running = false
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info().Msg("chat poller stopped")
	return nil
}

// IsRunning returns true if the poller is running.
func (p *Poller) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// runLoop is the main polling loop. The first tick fires immediately
// so the UI is not blank for a full interval after startup.
func (p *Poller) runLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	p.pollTick()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.pollTick()
		}
	}
}

// pollTick performs one polling cycle.
func (p *Poller) pollTick() {
	p.dispatch(targetConversations, p.fetchConversations)

	if activeID := p.store.ActiveID(); activeID != "" {
		p.dispatch(targetMessages(activeID), func(ctx context.Context, gen uint64) {
			p.fetchMessages(ctx, gen, activeID)
		})
	}
}

// dispatch launches a fetch for a target unless one is already in
// flight for it.
func (p *Poller) dispatch(target string, fetch func(ctx context.Context, generation uint64)) {
	p.mu.Lock()
	if !p.running || p.inflight[target] {
		p.mu.Unlock()
		return
	}
	p.inflight[target] = true
	p.mu.Unlock()

	// The generation is taken at dispatch time so responses can be
	// ordered by when their request was issued, not when it returned.
	gen := p.generation.Add(1)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			p.mu.Lock()
			delete(p.inflight, target)
			p.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(p.ctx, p.config.RequestTimeout)
		defer cancel()
		fetch(ctx, gen)
	}()
}

func (p *Poller) fetchConversations(ctx context.Context, generation uint64) {
	conversations, err := p.client.ListConversations(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		p.logger.Warn().Err(err).Msg("conversation fetch failed")
		return
	}
	p.reconciler.ApplyConversations(conversations, generation)
}

func (p *Poller) fetchMessages(ctx context.Context, generation uint64, conversationID string) {
	messages, err := p.client.ListMessages(ctx, conversationID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger := logging.WithConversation(p.logger, conversationID)
		logger.Warn().Err(err).Msg("message fetch failed")
		return
	}
	p.reconciler.ApplyMessages(conversationID, messages, generation)
}

// PollNow triggers an immediate out-of-band poll of every current
// target without disturbing the ticker cadence.
func (p *Poller) PollNow() error {
	p.mu.RLock()
	running := p.running
	p.mu.RUnlock()

	if !running {
		return ErrPollerNotRunning
	}

	p.pollTick()
	return nil
}

// FetchMessages fetches and applies a conversation's message log in
// the caller's goroutine, used on activation so the thread fills
// without waiting for the next tick and read reporting can be gated
// on an applied snapshot. It honors the same in-flight and staleness
// guards as the background ticks; ErrSnapshotDiscarded means the
// conversation is no longer active or a newer result already landed.
func (p *Poller) FetchMessages(ctx context.Context, conversationID string) error {
	target := targetMessages(conversationID)

	p.mu.Lock()
	if p.inflight[target] {
		p.mu.Unlock()
		return ErrFetchInFlight
	}
	p.inflight[target] = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		delete(p.inflight, target)
		p.mu.Unlock()
	}()

	gen := p.generation.Add(1)

	fetchCtx, cancel := context.WithTimeout(ctx, p.config.RequestTimeout)
	defer cancel()

	messages, err := p.client.ListMessages(fetchCtx, conversationID)
	if err != nil {
		return fmt.Errorf("fetching messages: %w", err)
	}
	if !p.reconciler.ApplyMessages(conversationID, messages, gen) {
		return ErrSnapshotDiscarded
	}
	return nil
}
