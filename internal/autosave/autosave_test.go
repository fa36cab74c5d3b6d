package autosave

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"coursekit/internal/model"
)

type fakePersister struct {
	mu       sync.Mutex
	saved    []*model.Course
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	started  chan *model.Course
	release  chan struct{}
	fail     atomic.Bool
}

func newFakePersister() *fakePersister {
	return &fakePersister{started: make(chan *model.Course, 16)}
}

func (f *fakePersister) Save(ctx context.Context, c *model.Course) error {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	f.started <- c
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	f.saved = append(f.saved, c)
	f.mu.Unlock()
	if f.fail.Load() {
		return errors.New("boom")
	}
	return nil
}

func (f *fakePersister) savedCopy() []*model.Course {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*model.Course(nil), f.saved...)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func version(name string) *model.Course {
	return &model.Course{Name: name, Sections: []model.Section{}}
}

func TestController_CoalescesChangesWithinDebounce(t *testing.T) {
	p := newFakePersister()
	d := New(Options{Debounce: 20 * time.Millisecond, Save: p.Save})
	d.MarkLoaded(version("base"))

	v3 := version("v3")
	d.Notify(version("v1"))
	d.Notify(version("v2"))
	d.Notify(v3)

	waitFor(t, "first save", func() bool { return d.Status().Saves == 1 })
	time.Sleep(60 * time.Millisecond)

	saved := p.savedCopy()
	if len(saved) != 1 || saved[0] != v3 {
		t.Fatalf("expected a single save of the latest tree, got %d saves", len(saved))
	}
	if st := d.Status(); st.State != StateSaved || st.Pending {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestController_ChangeDuringSaveTriggersOneFollowUp(t *testing.T) {
	p := newFakePersister()
	p.release = make(chan struct{})
	d := New(Options{Debounce: 5 * time.Millisecond, Save: p.Save})
	d.MarkLoaded(version("base"))

	v1 := version("v1")
	d.Notify(v1)
	select {
	case got := <-p.started:
		if got != v1 {
			t.Fatalf("expected v1 to be saved first")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("save never started")
	}

	if st := d.Status(); st.State != StateSaving {
		t.Fatalf("expected saving state, got %s", st.State)
	}
	d.Notify(version("v2"))
	v3 := version("v3")
	d.Notify(v3)
	time.Sleep(30 * time.Millisecond)
	if n := p.inFlight.Load(); n != 1 {
		t.Fatalf("expected exactly one save in flight, got %d", n)
	}

	close(p.release)
	if err := d.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	waitFor(t, "follow-up save", func() bool { return d.Status().Saves == 2 })
	time.Sleep(30 * time.Millisecond)

	saved := p.savedCopy()
	if len(saved) != 2 || saved[1] != v3 {
		t.Fatalf("expected follow-up save of latest tree, got %d saves", len(saved))
	}
	if m := p.maxSeen.Load(); m != 1 {
		t.Fatalf("saves overlapped: max in flight %d", m)
	}
}

func TestController_IgnoresChangesBeforeLoaded(t *testing.T) {
	p := newFakePersister()
	d := New(Options{Debounce: 5 * time.Millisecond, Save: p.Save})

	d.Notify(version("hydrating"))
	time.Sleep(30 * time.Millisecond)
	if err := d.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if n := len(p.savedCopy()); n != 0 {
		t.Fatalf("expected no save during hydration, got %d", n)
	}

	base := version("base")
	d.MarkLoaded(base)
	d.Notify(base)
	if d.Status().Pending {
		t.Fatalf("re-notifying the loaded tree must not schedule a save")
	}
}

func TestController_FailedSaveIsNotRetriedWithoutChange(t *testing.T) {
	p := newFakePersister()
	p.fail.Store(true)
	d := New(Options{Debounce: 5 * time.Millisecond, Save: p.Save})
	d.MarkLoaded(version("base"))

	d.Notify(version("v1"))
	waitFor(t, "failed save", func() bool { return d.Status().Saves == 1 })
	time.Sleep(40 * time.Millisecond)

	st := d.Status()
	if st.State != StateError || st.Err == nil || st.Saves != 1 {
		t.Fatalf("unexpected status after failure: %+v", st)
	}

	p.fail.Store(false)
	v2 := version("v2")
	d.Notify(v2)
	waitFor(t, "recovery save", func() bool { return d.Status().Saves == 2 })
	if st := d.Status(); st.State != StateSaved || st.Err != nil {
		t.Fatalf("expected recovery on next change: %+v", st)
	}
}

func TestController_FlushRetriesFailedSave(t *testing.T) {
	p := newFakePersister()
	p.fail.Store(true)
	d := New(Options{Debounce: time.Hour, Save: p.Save})
	d.MarkLoaded(version("base"))

	v1 := version("v1")
	d.Notify(v1)
	if err := d.Flush(context.Background()); err == nil {
		t.Fatalf("expected first flush to fail")
	}

	p.fail.Store(false)
	if err := d.Flush(context.Background()); err != nil {
		t.Fatalf("retry flush: %v", err)
	}
	saved := p.savedCopy()
	if len(saved) == 0 || saved[len(saved)-1] != v1 {
		t.Fatalf("expected retry to save the latest tree")
	}
	if err := d.Flush(context.Background()); err != nil || d.Status().Saves != 2 {
		t.Fatalf("expected nothing left to save: err=%v status=%+v", err, d.Status())
	}
}

func TestController_StateTransitionsAreObservable(t *testing.T) {
	p := newFakePersister()
	var mu sync.Mutex
	var states []State
	d := New(Options{Debounce: time.Hour, Save: p.Save, OnStateChange: func(st Status) {
		mu.Lock()
		states = append(states, st.State)
		mu.Unlock()
	}})
	d.MarkLoaded(version("base"))
	if d.Status().State != StateIdle {
		t.Fatalf("expected idle before first save")
	}

	v1 := version("v1")
	d.Notify(v1)
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	saved := p.savedCopy()
	if len(saved) != 1 || saved[0] != v1 {
		t.Fatalf("expected Close to flush the pending change")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(states) != 2 || states[0] != StateSaving || states[1] != StateSaved {
		t.Fatalf("unexpected transitions: %v", states)
	}

	d.Notify(version("after close"))
	if d.Status().Pending {
		t.Fatalf("expected closed controller to ignore changes")
	}
}

func TestController_FlushHonorsContext(t *testing.T) {
	p := newFakePersister()
	p.release = make(chan struct{})
	defer close(p.release)
	d := New(Options{Debounce: time.Millisecond, Save: p.Save})
	d.MarkLoaded(version("base"))
	d.Notify(version("v1"))
	<-p.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := d.Flush(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
