package autosave

import (
	"context"
	"errors"
	"sync"
	"time"

	"coursekit/internal/logger"
	"coursekit/internal/model"
)

// ErrSaveRejected wraps a persistence answer of success:false.
var ErrSaveRejected = errors.New("save rejected")

const DefaultDebounce = 1500 * time.Millisecond

type State string

const (
	StateIdle   State = "idle"
	StateSaving State = "saving"
	StateSaved  State = "saved"
	StateError  State = "error"
)

// SaveFunc persists one tree snapshot.
type SaveFunc func(ctx context.Context, c *model.Course) error

type Status struct {
	State State
	Err   error
	// Saves counts completed save attempts, successful or not.
	Saves int
	// Pending is true while a change has not been handed to a save yet.
	Pending bool
}

type Options struct {
	Debounce time.Duration
	Save     SaveFunc
	Logger   *logger.Logger
	// OnStateChange is called outside the controller lock after every transition.
	// It is informational only.
	OnStateChange func(Status)
}

// Controller coalesces tree changes into debounced saves and never runs two saves at once.
//
// A change observed while a save is in flight sets the dirty flag; when that save completes
// (successfully or not) a follow-up save of the latest tree starts immediately. A failed save
// with no later change is not retried.
//
// Changes are ignored until MarkLoaded, so hydrating a document never rewrites it.
type Controller struct {
	debounce time.Duration
	save     SaveFunc
	log      *logger.Logger
	onState  func(Status)

	mu      sync.Mutex
	timer   *time.Timer
	loaded  bool
	closed  bool
	latest  *model.Course
	pending bool
	running bool
	dirty   bool
	done    chan struct{}
	state   State
	lastErr error
	saves   int
}

func New(opts Options) *Controller {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Controller{
		debounce: debounce,
		save:     opts.Save,
		log:      log,
		onState:  opts.OnStateChange,
		state:    StateIdle,
	}
}

// MarkLoaded opens the gate. c is the tree as hydrated and is not saved.
func (d *Controller) MarkLoaded(c *model.Course) {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.loaded = true
	d.latest = c
	d.mu.Unlock()
}

// Notify reports a new tree version.
func (d *Controller) Notify(c *model.Course) {
	if d == nil {
		return
	}

	d.mu.Lock()
	if !d.loaded || d.closed || c == nil || c == d.latest {
		d.mu.Unlock()
		return
	}
	d.latest = c
	d.pending = true
	if d.running {
		d.dirty = true
		d.mu.Unlock()
		return
	}
	if d.timer == nil {
		d.timer = time.AfterFunc(d.debounce, d.onTimer)
		d.mu.Unlock()
		return
	}
	d.timer.Reset(d.debounce)
	d.mu.Unlock()
}

func (d *Controller) onTimer() {
	d.mu.Lock()
	if d.running {
		// Picked up by the in-flight run when it completes.
		d.dirty = d.dirty || d.pending
		d.mu.Unlock()
		return
	}
	if !d.pending || d.closed {
		d.mu.Unlock()
		return
	}
	d.runLocked(context.Background())
}

// runLocked saves the latest tree, then keeps saving while changes arrived mid-save.
// d.mu must be held on entry; it is released on return.
func (d *Controller) runLocked(ctx context.Context) error {
	var err error
	for {
		snapshot := d.latest
		d.pending = false
		d.dirty = false
		d.running = true
		d.done = make(chan struct{})
		d.state = StateSaving
		st := d.statusLocked()
		d.mu.Unlock()
		d.emit(st)

		start := time.Now()
		d.log.Debug("autosave: saving", "course_id", snapshot.ID, "sections", len(snapshot.Sections))
		err = d.callSave(ctx, snapshot)
		if err != nil {
			d.log.Warn("autosave: save failed", "course_id", snapshot.ID, "error", err)
		} else {
			d.log.Info("autosave: saved", "course_id", snapshot.ID, "elapsed", time.Since(start))
		}

		d.mu.Lock()
		d.running = false
		d.saves++
		d.lastErr = err
		if err != nil {
			d.state = StateError
		} else {
			d.state = StateSaved
		}
		close(d.done)
		d.done = nil
		rerun := d.dirty && d.pending
		d.dirty = false
		st = d.statusLocked()
		if !rerun {
			d.mu.Unlock()
			d.emit(st)
			return err
		}
		d.mu.Unlock()
		d.emit(st)
		d.mu.Lock()
		if d.running || !d.pending {
			d.mu.Unlock()
			return err
		}
	}
}

func (d *Controller) callSave(ctx context.Context, c *model.Course) (err error) {
	if d.save == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("autosave: save panicked")
		}
	}()
	return d.save(ctx, c)
}

// Flush waits for an in-flight save, then saves synchronously if a change is still unsaved
// or the last save failed. It returns the error of the save it ran, or nil when nothing
// needed saving.
func (d *Controller) Flush(ctx context.Context) error {
	if d == nil {
		return nil
	}
	for {
		d.mu.Lock()
		if d.running {
			ch := d.done
			d.mu.Unlock()
			select {
			case <-ch:
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if !d.pending && d.state != StateError {
			d.mu.Unlock()
			return nil
		}
		if d.timer != nil {
			d.timer.Stop()
		}
		return d.runLocked(ctx)
	}
}

// Close flushes and stops accepting changes.
func (d *Controller) Close(ctx context.Context) error {
	if d == nil {
		return nil
	}
	err := d.Flush(ctx)
	d.mu.Lock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	return err
}

func (d *Controller) Status() Status {
	if d == nil {
		return Status{State: StateIdle}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.statusLocked()
}

func (d *Controller) statusLocked() Status {
	return Status{State: d.state, Err: d.lastErr, Saves: d.saves, Pending: d.pending}
}

func (d *Controller) emit(st Status) {
	if d.onState != nil {
		d.onState(st)
	}
}
