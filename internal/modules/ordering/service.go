// README: Ordering service keeps an in-memory display order per collection
// and trails it with debounced batch writes.
package ordering

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"roadbook/internal/types"
)

const (
	DefaultBatchWindow = time.Second
	DefaultMaxRetries  = 3
)

type Options struct {
	BatchWindow time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
}

type collection struct {
	mu       sync.Mutex
	loaded   bool
	items    []Item
	pending  map[types.ID]int
	inflight map[types.ID]int
	timer    *time.Timer

	// flushMu serialises writes so an older batch never lands after a newer one.
	flushMu sync.Mutex
}

// Service orders catalogue collections. Reorders apply to the in-memory view
// at once; the durable write follows after BatchWindow of quiet, and the last
// reorder inside a window wins. Writes are eventually consistent.
type Service struct {
	repo Repository
	log  logrus.FieldLogger
	opts Options

	mu     sync.Mutex
	cols   map[EntityType]*collection
	closed bool

	// flushCtx bounds background flushes; Close cancels it.
	flushCtx context.Context
	cancel   context.CancelFunc
}

func NewService(repo Repository, log logrus.FieldLogger, opts Options) *Service {
	if opts.BatchWindow <= 0 {
		opts.BatchWindow = DefaultBatchWindow
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 200 * time.Millisecond
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		repo:     repo,
		log:      log,
		opts:     opts,
		cols:     make(map[EntityType]*collection),
		flushCtx: ctx,
		cancel:   cancel,
	}
}

func (s *Service) collection(t EntityType) (*collection, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown collection %q", types.ErrValidation, t)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	c, ok := s.cols[t]
	if !ok {
		c = &collection{}
		s.cols[t] = c
	}
	return c, nil
}

// unsaved is the batch the store does not have yet. Caller holds c.mu.
func (c *collection) unsaved() map[types.ID]int {
	if c.pending != nil {
		return c.pending
	}
	return c.inflight
}

// load reads the collection from the store whenever no write is outstanding,
// so rows added or removed elsewhere show up. Caller holds c.mu.
func (s *Service) load(ctx context.Context, t EntityType, c *collection) error {
	if c.loaded && c.unsaved() != nil {
		return nil
	}
	return s.reload(ctx, t, c)
}

// reload replaces the view with the stored rows and lays any unsaved batch
// over them: batch members first in batch order, then rows the batch does
// not know about. Caller holds c.mu.
func (s *Service) reload(ctx context.Context, t EntityType, c *collection) error {
	items, err := s.repo.List(ctx, t)
	if err != nil {
		return err
	}
	if batch := c.unsaved(); batch != nil {
		items = overlay(items, batch)
	}
	c.items = items
	c.loaded = true
	return nil
}

func overlay(stored []Item, batch map[types.ID]int) []Item {
	var ordered, rest []Item
	for _, it := range stored {
		if pos, ok := batch[it.ID]; ok {
			it.DisplayOrder = pos
			ordered = append(ordered, it)
			continue
		}
		rest = append(rest, it)
	}
	slices.SortStableFunc(ordered, func(a, b Item) int { return a.DisplayOrder - b.DisplayOrder })
	return append(ordered, rest...)
}

// List returns the collection in display order, including reorders that have
// not been written yet.
func (s *Service) List(ctx context.Context, t EntityType) ([]Item, error) {
	c, err := s.collection(t)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := s.load(ctx, t, c); err != nil {
		return nil, err
	}
	return append([]Item(nil), c.items...), nil
}

// Reorder takes the full new sequence of ids and assigns display orders
// 1..n in that sequence.
func (s *Service) Reorder(ctx context.Context, t EntityType, orderedIDs []types.ID) ([]Item, error) {
	c, err := s.collection(t)
	if err != nil {
		return nil, err
	}
	if len(orderedIDs) == 0 {
		return nil, fmt.Errorf("%w: empty order", types.ErrValidation)
	}
	seen := make(map[types.ID]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", types.ErrValidation, id)
		}
		seen[id] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Members are checked against the store, not the view.
	if err := s.reload(ctx, t, c); err != nil {
		return nil, err
	}

	byID := make(map[types.ID]Item, len(c.items))
	for _, it := range c.items {
		byID[it.ID] = it
	}
	for _, id := range orderedIDs {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("%s %s: %w", t, id, types.ErrNotFound)
		}
	}
	if len(orderedIDs) != len(c.items) {
		return nil, fmt.Errorf("%w: order lists %d of %d %s", types.ErrValidation, len(orderedIDs), len(c.items), t)
	}

	items := make([]Item, len(orderedIDs))
	pending := make(map[types.ID]int, len(orderedIDs))
	for i, id := range orderedIDs {
		it := byID[id]
		it.DisplayOrder = i + 1
		items[i] = it
		pending[id] = i + 1
	}
	c.items = items
	c.pending = pending

	if c.timer != nil {
		c.timer.Stop()
	}
	s.schedule(t, c)

	s.log.WithFields(logrus.Fields{"collection": t, "items": len(items)}).Debug("reorder scheduled")
	return append([]Item(nil), items...), nil
}

// schedule arms the debounce timer. Caller holds c.mu.
func (s *Service) schedule(t EntityType, c *collection) {
	c.timer = time.AfterFunc(s.opts.BatchWindow, func() {
		if s.flushCtx.Err() != nil {
			return
		}
		_ = s.flush(s.flushCtx, t, c, true)
	})
}

// flush writes the pending batch, if any, retrying up to MaxRetries times.
// A batch that could not be written goes back to pending unless a newer
// reorder replaced it; with rearm set the timer tries again one window later.
func (s *Service) flush(ctx context.Context, t EntityType, c *collection, rearm bool) error {
	c.flushMu.Lock()
	defer c.flushMu.Unlock()

	c.mu.Lock()
	batch := c.pending
	c.pending = nil
	c.inflight = batch
	c.mu.Unlock()
	if batch == nil {
		return nil
	}

	err := s.save(ctx, t, batch)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight = nil
	if err == nil {
		return nil
	}
	if c.pending == nil {
		c.pending = batch
		if rearm && s.flushCtx.Err() == nil {
			if c.timer != nil {
				c.timer.Stop()
			}
			s.schedule(t, c)
		}
	}
	return err
}

func (s *Service) save(ctx context.Context, t EntityType, batch map[types.ID]int) error {
	log := s.log.WithFields(logrus.Fields{"collection": t, "items": len(batch)})
	var err error
	for attempt := 1; attempt <= s.opts.MaxRetries; attempt++ {
		if err = s.repo.SaveOrder(ctx, t, batch); err == nil {
			log.WithField("attempt", attempt).Info("display order saved")
			return nil
		}
		log.WithError(err).WithField("attempt", attempt).Warn("display order write failed")
		if attempt == s.opts.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			log.WithError(ctx.Err()).Error("display order write abandoned")
			return ctx.Err()
		case <-time.After(s.opts.RetryDelay * time.Duration(attempt)):
		}
	}
	log.WithError(err).Error("display order write gave up; batch kept")
	return err
}

// Close stops the timers and writes any pending batches with ctx. A timer
// flush already under way finishes first; flushMu orders the two.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cols := make(map[EntityType]*collection, len(s.cols))
	for t, c := range s.cols {
		cols[t] = c
	}
	s.mu.Unlock()

	var firstErr error
	for t, c := range cols {
		c.mu.Lock()
		if c.timer != nil {
			c.timer.Stop()
		}
		c.mu.Unlock()
		if err := s.flush(ctx, t, c, false); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.cancel()
	return firstErr
}
