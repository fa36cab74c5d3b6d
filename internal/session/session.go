package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"coursekit/internal/autosave"
	"coursekit/internal/history"
	"coursekit/internal/logger"
	"coursekit/internal/model"
	"coursekit/internal/mutate"
	"coursekit/internal/store"
)

// Persister is the persistence collaborator. courseID == "" creates a course.
// store.Store implements it.
type Persister interface {
	SaveCourse(ctx context.Context, courseID string, p store.Payload) (store.SaveResult, error)
}

type Options struct {
	// CourseID is the persisted id of the loaded course; empty for a course not yet saved.
	CourseID string

	Persister    Persister
	Debounce     time.Duration
	HistoryLimit int
	Limits       Limits
	Logger       *logger.Logger
	OnSaveStatus func(autosave.Status)
}

// Session owns one course while it is being edited: the current tree, its undo history, the
// derived resource caches, open drafts and the autosave controller. All tree changes go
// through Session so that history and autosave observe every version.
type Session struct {
	mu     sync.Mutex
	course *model.Course
	caches model.ResourceCaches
	ids    *store.IDAllocator
	hist   *history.Stack
	auto   *autosave.Controller
	drafts *Drafts
	ui     *UIState
	log    *logger.Logger

	idMu     sync.Mutex
	courseID string
}

// Open hydrates a session from a loaded (possibly legacy-shaped) course. Migration and cache
// derivation happen here and are neither recorded in history nor saved.
func Open(loaded *model.Course, opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	c, migrated := store.MigrateLegacy(loaded)
	if migrated {
		log.Info("session: migrated legacy outline", "course_id", opts.CourseID)
	}

	s := &Session{
		course:   c,
		caches:   model.DeriveCaches(c),
		ids:      store.NewIDAllocator(c),
		hist:     history.New(c, opts.HistoryLimit),
		drafts:   NewDrafts(opts.Limits),
		ui:       NewUIState(),
		log:      log,
		courseID: strings.TrimSpace(opts.CourseID),
	}
	s.auto = autosave.New(autosave.Options{
		Debounce:      opts.Debounce,
		Save:          s.saveFunc(opts.Persister),
		Logger:        log,
		OnStateChange: opts.OnSaveStatus,
	})
	s.auto.MarkLoaded(c)
	return s
}

// Load reads a course from the store and opens a session on it.
func Load(ctx context.Context, st store.Store, courseID string, opts Options) (*Session, error) {
	c, err := st.LoadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	opts.CourseID = courseID
	if opts.Persister == nil {
		opts.Persister = st
	}
	return Open(c, opts), nil
}

func (s *Session) saveFunc(p Persister) autosave.SaveFunc {
	if p == nil {
		return nil
	}
	return func(ctx context.Context, c *model.Course) error {
		id := s.CourseID()
		res, err := p.SaveCourse(ctx, id, store.EncodePayload(c))
		if err != nil {
			return err
		}
		if !res.Success {
			return fmt.Errorf("%w: %s", autosave.ErrSaveRejected, res.Error)
		}
		if id == "" && res.ID != "" {
			s.idMu.Lock()
			s.courseID = res.ID
			s.idMu.Unlock()
		}
		return nil
	}
}

func (s *Session) CourseID() string {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	return s.courseID
}

// Course returns the current tree. Callers must treat it as read-only.
func (s *Session) Course() *model.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.course
}

func (s *Session) Caches() model.ResourceCaches {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.caches
}

func (s *Session) UI() *UIState { return s.ui }

func (s *Session) Drafts() *Drafts { return s.drafts }

func (s *Session) SaveStatus() autosave.Status { return s.auto.Status() }

func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanUndo()
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanRedo()
}

// Apply runs one tree operation. It reports whether the tree changed.
func (s *Session) Apply(op func(*model.Course) *model.Course) bool {
	s.mu.Lock()
	next := op(s.course)
	if next == nil || next == s.course {
		s.mu.Unlock()
		return false
	}
	s.setLocked(next)
	s.hist.Record(next)
	s.mu.Unlock()
	s.auto.Notify(next)
	return true
}

func (s *Session) setLocked(c *model.Course) {
	s.course = c
	s.caches = model.DeriveCaches(c)
}

// applyWithID is Apply for operations that create one entity.
func (s *Session) applyWithID(op func(*model.Course) (*model.Course, string)) string {
	var id string
	s.Apply(func(c *model.Course) *model.Course {
		next, newID := op(c)
		id = newID
		return next
	})
	return id
}

func (s *Session) AddSection() string {
	return s.applyWithID(func(c *model.Course) (*model.Course, string) { return mutate.AddSection(c, s.ids) })
}

func (s *Session) AddBreak(minutes int) string {
	return s.applyWithID(func(c *model.Course) (*model.Course, string) { return mutate.AddBreak(c, s.ids, minutes) })
}

func (s *Session) AddSubsection(sectionID string) string {
	return s.applyWithID(func(c *model.Course) (*model.Course, string) {
		return mutate.AddSubsection(c, s.ids, sectionID)
	})
}

func (s *Session) AddTopicBox(subsectionID string) string {
	return s.applyWithID(func(c *model.Course) (*model.Course, string) {
		return mutate.AddTopicBox(c, s.ids, subsectionID)
	})
}

func (s *Session) SetField(id string, f mutate.Field, value string) bool {
	return s.Apply(func(c *model.Course) *model.Course { return mutate.SetField(c, id, f, value) })
}

func (s *Session) Delete(id string) bool {
	return s.Apply(func(c *model.Course) *model.Course { return mutate.Delete(c, id) })
}

func (s *Session) Move(m mutate.Move) bool {
	return s.Apply(func(c *model.Course) *model.Course { return mutate.Reorder(c, m) })
}

func (s *Session) InsertGenerated(level model.Level, parentID string, items []model.GeneratedItem) []string {
	var used []string
	s.Apply(func(c *model.Course) *model.Course {
		next, ids := mutate.InsertGenerated(c, s.ids, level, parentID, items)
		used = ids
		return next
	})
	return used
}

func (s *Session) AttachResources(topicBoxID string, rs []model.Resource) bool {
	return s.Apply(func(c *model.Course) *model.Course { return mutate.AttachResources(c, topicBoxID, rs) })
}

// AttachBatch attaches generated resources to several topic boxes as one undoable change.
// If any target topic box no longer exists, nothing is attached.
func (s *Session) AttachBatch(batch []model.TopicResources) bool {
	return s.Apply(func(c *model.Course) *model.Course {
		for _, tr := range batch {
			if _, _, _, ok := c.TopicBoxPath(tr.TopicBoxID); !ok {
				return c
			}
		}
		next := c
		for _, tr := range batch {
			next = mutate.AttachResources(next, tr.TopicBoxID, tr.Resources)
		}
		return next
	})
}

func (s *Session) RemoveResource(topicBoxID string, t model.ResourceType, index int) bool {
	return s.Apply(func(c *model.Course) *model.Course { return mutate.RemoveResource(c, topicBoxID, t, index) })
}

// SetMetadata updates course-level fields.
func (s *Session) SetMetadata(fn func(*model.Course)) bool {
	return s.Apply(func(c *model.Course) *model.Course {
		next := *c
		fn(&next)
		if next.Name == c.Name && next.Class == c.Class && next.Subject == c.Subject && next.Topic == c.Topic &&
			next.TimeDuration == c.TimeDuration && next.Objectives == c.Objectives && next.IsPublic == c.IsPublic {
			return c
		}
		next.Sections = c.Sections
		return &next
	})
}

// Undo restores the previous snapshot. Undo does not itself create a history entry.
func (s *Session) Undo() bool {
	return s.step((*history.Stack).Undo)
}

func (s *Session) Redo() bool {
	return s.step((*history.Stack).Redo)
}

func (s *Session) step(move func(*history.Stack) (*model.Course, bool)) bool {
	s.mu.Lock()
	c, ok := move(s.hist)
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.setLocked(c)
	s.mu.Unlock()
	s.auto.Notify(c)
	return true
}

// BeginEdit opens a draft for key, committing whichever field was being edited before.
func (s *Session) BeginEdit(key string) (string, bool) {
	if prev := s.ui.StartEditing(key); prev != "" {
		s.CommitDraft(prev)
	}
	v, ok := s.drafts.Begin(s.Course(), key)
	if !ok {
		s.ui.StopEditing()
	}
	return v, ok
}

// CommitDraft applies the draft for key (blur, enter or explicit save).
func (s *Session) CommitDraft(key string) bool {
	if s.ui.EditingField == key {
		s.ui.StopEditing()
	}
	return s.Apply(func(c *model.Course) *model.Course { return s.drafts.Commit(c, key) })
}

// DiscardDraft drops the draft for key (escape).
func (s *Session) DiscardDraft(key string) {
	if s.ui.EditingField == key {
		s.ui.StopEditing()
	}
	s.drafts.Discard(key)
}

// Flush saves any unsaved change now.
func (s *Session) Flush(ctx context.Context) error {
	return s.auto.Flush(ctx)
}

// Close ends the session: open drafts are discarded and the latest tree is saved.
func (s *Session) Close(ctx context.Context) error {
	s.drafts.DiscardAll()
	s.ui.StopEditing()
	s.ui.ClosePrompt()
	err := s.auto.Close(ctx)
	s.log.Sync()
	return err
}
