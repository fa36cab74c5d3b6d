package store

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
	"sync"

	"coursekit/internal/model"
)

// ID prefixes, one per outline level.
const (
	PrefixSection    = "section"
	PrefixBreak      = "break"
	PrefixSubsection = "subsection"
	PrefixTopic      = "topic"
)

// newRandomID returns prefix-<suffix> where suffix is 8 chars of base32 (lowercase, no padding).
func newRandomID(prefix string) (string, error) {
	var b [5]byte // 40 bits -> 8 base32 chars
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	return prefix + "-" + suffix, nil
}

// IDAllocator issues ids that were never seen during the editing session. Ids of deleted
// entities stay reserved, so an id is never handed out twice.
type IDAllocator struct {
	mu   sync.Mutex
	seen map[string]bool
	seq  int
}

func NewIDAllocator(c *model.Course) *IDAllocator {
	a := &IDAllocator{seen: map[string]bool{}}
	a.Observe(c)
	return a
}

// Observe reserves every id present in c.
func (a *IDAllocator) Observe(c *model.Course) {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	c.EachID(func(id string) {
		if id = strings.TrimSpace(id); id != "" {
			a.seen[id] = true
		}
	})
}

func (a *IDAllocator) Seen(id string) bool {
	if a == nil {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.seen[strings.TrimSpace(id)]
}

// Reserve marks id as used. It returns false when the id is empty or already taken.
func (a *IDAllocator) Reserve(id string) bool {
	id = strings.TrimSpace(id)
	if a == nil || id == "" {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.seen[id] {
		return false
	}
	a.seen[id] = true
	return true
}

// NextID returns a fresh prefix-xxxxxxxx id and reserves it.
func (a *IDAllocator) NextID(prefix string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := 0; i < 50; i++ {
		id, err := newRandomID(prefix)
		if err != nil {
			break
		}
		if !a.seen[id] {
			a.seen[id] = true
			return id
		}
	}
	// crypto/rand failure or repeated collisions: fall back to a sequence.
	for {
		a.seq++
		id := fmt.Sprintf("%s-%d", prefix, a.seq)
		if !a.seen[id] {
			a.seen[id] = true
			return id
		}
	}
}
