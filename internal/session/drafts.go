package session

import (
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"coursekit/internal/model"
	"coursekit/internal/mutate"
)

// DraftKey names one editable field: "<entityId>:<field>".
func DraftKey(entityID string, f mutate.Field) string {
	return entityID + ":" + string(f)
}

// ParseDraftKey splits a key built by DraftKey. Entity ids may themselves contain ':'.
func ParseDraftKey(key string) (string, mutate.Field, bool) {
	i := strings.LastIndex(key, ":")
	if i <= 0 {
		return "", "", false
	}
	f, ok := mutate.ParseField(key[i+1:])
	if !ok {
		return "", "", false
	}
	return key[:i], f, true
}

// Limits caps committed field lengths in runes. Zero means unlimited.
type Limits struct {
	Title       int
	Description int
}

func (l Limits) forField(f mutate.Field) int {
	switch f {
	case mutate.FieldTitle:
		return l.Title
	case mutate.FieldDescription:
		return l.Description
	default:
		return 0
	}
}

// Drafts holds in-progress field edits independently of the canonical tree. A draft is
// applied only by Commit; Discard and DiscardAll drop it without touching the tree.
type Drafts struct {
	mu     sync.Mutex
	m      map[string]string
	limits Limits
}

func NewDrafts(limits Limits) *Drafts {
	return &Drafts{m: map[string]string{}, limits: limits}
}

// Begin opens a draft seeded from the tree and returns its initial value. An already open
// draft keeps its value. ok is false when the field does not exist.
func (d *Drafts) Begin(c *model.Course, key string) (string, bool) {
	id, f, ok := ParseDraftKey(key)
	if !ok {
		return "", false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if v, ok := d.m[key]; ok {
		return v, true
	}
	v, ok := mutate.FieldValue(c, id, f)
	if !ok {
		return "", false
	}
	d.m[key] = v
	return v, true
}

// Update replaces the draft value. It is a no-op for keys that were never begun.
func (d *Drafts) Update(key, value string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.m[key]; !ok {
		return false
	}
	d.m[key] = value
	return true
}

func (d *Drafts) Get(key string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.m[key]
	return v, ok
}

// Commit closes the draft and applies it to c through the mutation API, truncated to the
// field's limit. Committing an unknown key or a stale entity returns c unchanged.
func (d *Drafts) Commit(c *model.Course, key string) *model.Course {
	d.mu.Lock()
	v, ok := d.m[key]
	delete(d.m, key)
	d.mu.Unlock()
	if !ok {
		return c
	}
	id, f, ok := ParseDraftKey(key)
	if !ok {
		return c
	}
	return mutate.SetField(c, id, f, truncateRunes(strings.TrimSpace(v), d.limits.forField(f)))
}

func (d *Drafts) Discard(key string) {
	d.mu.Lock()
	delete(d.m, key)
	d.mu.Unlock()
}

// DiscardAll drops every open draft (session teardown).
func (d *Drafts) DiscardAll() {
	d.mu.Lock()
	d.m = map[string]string{}
	d.mu.Unlock()
}

func (d *Drafts) Keys() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.m))
	for k := range d.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max])
}
