// Package autosave debounces editor keystrokes into note writes.
//
// Each note has its own timer: an edit cancels the pending write for that note
// only and schedules a new one carrying the latest text. Intermediate texts are
// dropped, never queued.
package autosave

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SaveFunc persists the text of a note.
type SaveFunc func(ctx context.Context, noteID uuid.UUID, text string) error

const defaultWriteTimeout = 10 * time.Second

type Option func(*Controller)

// WithOnSaved registers a callback run after every successful write.
func WithOnSaved(fn func(noteID uuid.UUID)) Option {
	return func(c *Controller) { c.onSaved = fn }
}

// WithOnError registers a callback run after a failed write. Failed writes are
// not retried.
func WithOnError(fn func(noteID uuid.UUID, err error)) Option {
	return func(c *Controller) { c.onError = fn }
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.writeTimeout = d
		}
	}
}

type pendingWrite struct {
	timer *time.Timer
	text  string
	seq   uint64
}

// noteLock serializes writes of one note and remembers the newest one issued.
type noteLock struct {
	mu      sync.Mutex
	written uint64
}

type Controller struct {
	delay        time.Duration
	save         SaveFunc
	onSaved      func(noteID uuid.UUID)
	onError      func(noteID uuid.UUID, err error)
	log          *slog.Logger
	writeTimeout time.Duration

	mu      sync.Mutex
	seq     uint64
	pending map[uuid.UUID]*pendingWrite
	locks   map[uuid.UUID]*noteLock
	closed  bool
	wg      sync.WaitGroup
}

func New(delay time.Duration, save SaveFunc, opts ...Option) *Controller {
	c := &Controller{
		delay:        delay,
		save:         save,
		log:          slog.Default(),
		writeTimeout: defaultWriteTimeout,
		pending:      make(map[uuid.UUID]*pendingWrite),
		locks:        make(map[uuid.UUID]*noteLock),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "autosave")
	return c
}

// Edit records the full current text of a note and (re)starts its quiet period.
// Edits after Close are ignored.
func (c *Controller) Edit(noteID uuid.UUID, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if prev, ok := c.pending[noteID]; ok {
		prev.timer.Stop()
	}

	c.seq++
	pw := &pendingWrite{text: text, seq: c.seq}
	pw.timer = time.AfterFunc(c.delay, func() { c.fire(noteID, pw) })
	c.pending[noteID] = pw
}

// isPending reports whether a write for noteID is scheduled.
func (c *Controller) isPending(noteID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[noteID]
	return ok
}

// Flush issues the pending write for noteID now and returns its result.
// It is a no-op when nothing is pending.
func (c *Controller) Flush(noteID uuid.UUID) error {
	c.mu.Lock()
	pw, ok := c.take(noteID)
	c.mu.Unlock()
	if !ok {
		return nil
	}
	return c.write(noteID, pw)
}

// Close flushes every pending write and waits for in-flight ones to finish.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.wg.Wait()
		return
	}
	c.closed = true

	flush := make(map[uuid.UUID]*pendingWrite, len(c.pending))
	for noteID := range c.pending {
		pw, _ := c.take(noteID)
		flush[noteID] = pw
	}
	c.mu.Unlock()

	for noteID, pw := range flush {
		_ = c.write(noteID, pw)
	}
	c.wg.Wait()
}

// take removes the pending write for noteID and registers it as in flight.
// c.mu must be held.
func (c *Controller) take(noteID uuid.UUID) (*pendingWrite, bool) {
	pw, ok := c.pending[noteID]
	if !ok {
		return nil, false
	}
	pw.timer.Stop()
	delete(c.pending, noteID)
	c.wg.Add(1)
	return pw, true
}

func (c *Controller) fire(noteID uuid.UUID, pw *pendingWrite) {
	c.mu.Lock()
	// Superseded by a newer edit, a flush or Close.
	if c.pending[noteID] != pw {
		c.mu.Unlock()
		return
	}
	pw, _ = c.take(noteID)
	c.mu.Unlock()

	_ = c.write(noteID, pw)
}

func (c *Controller) lockFor(noteID uuid.UUID) *noteLock {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[noteID]
	if !ok {
		l = &noteLock{}
		c.locks[noteID] = l
	}
	return l
}

func (c *Controller) write(noteID uuid.UUID, pw *pendingWrite) error {
	defer c.wg.Done()

	l := c.lockFor(noteID)
	l.mu.Lock()
	defer l.mu.Unlock()

	if pw.seq <= l.written {
		c.log.Debug("skipping stale write", "note_id", noteID, "seq", pw.seq, "written", l.written)
		return nil
	}
	l.written = pw.seq

	ctx, cancel := context.WithTimeout(context.Background(), c.writeTimeout)
	defer cancel()

	if err := c.save(ctx, noteID, pw.text); err != nil {
		c.log.Warn("autosave failed", "note_id", noteID, "error", err)
		if c.onError != nil {
			c.onError(noteID, err)
		}
		return err
	}
	if c.onSaved != nil {
		c.onSaved(noteID)
	}
	return nil
}
