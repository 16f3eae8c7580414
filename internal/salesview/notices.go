package salesview

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// NoticeTTL is how long a notice stays on the page.
const NoticeTTL = 3 * time.Second

// NoticeKind selects the styling of a notice.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

// Notice is a transient status message.
type Notice struct {
	ID        string     `json:"id"`
	Kind      NoticeKind `json:"kind"`
	Text      string     `json:"text"`
	CreatedAt time.Time  `json:"created_at"`
}

// timer is the part of *time.Timer the board needs.
type timer interface {
	Stop() bool
}

// NoticeBoard holds the visible notices, newest first. Every notice expires
// on its own timer; a new notice never cancels an older one.
type NoticeBoard struct {
	mu      sync.Mutex
	notices []Notice
	timers  map[string]timer

	ttl       time.Duration
	now       func() time.Time
	afterFunc func(time.Duration, func()) timer
}

// NewNoticeBoard creates a board whose notices expire after ttl.
func NewNoticeBoard(ttl time.Duration) *NoticeBoard {
	return &NoticeBoard{
		timers: map[string]timer{},
		ttl:    ttl,
		now:    time.Now,
		afterFunc: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
	}
}

// Push inserts a notice at the top of the board and schedules its removal.
func (b *NoticeBoard) Push(kind NoticeKind, text string) Notice {
	n := Notice{
		ID:        uuid.NewString(),
		Kind:      kind,
		Text:      text,
		CreatedAt: b.now(),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append([]Notice{n}, b.notices...)
	b.timers[n.ID] = b.afterFunc(b.ttl, func() { b.remove(n.ID) })
	return n
}

// Dismiss removes a notice before it expires. It reports whether the notice was still visible.
func (b *NoticeBoard) Dismiss(id string) bool {
	b.mu.Lock()
	t, ok := b.timers[id]
	b.mu.Unlock()
	if !ok {
		return false
	}
	t.Stop()
	return b.remove(id)
}

// List returns a copy of the visible notices, newest first.
func (b *NoticeBoard) List() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Notice, len(b.notices))
	copy(out, b.notices)
	return out
}

func (b *NoticeBoard) remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.timers, id)
	for i, n := range b.notices {
		if n.ID == id {
			b.notices = append(b.notices[:i], b.notices[i+1:]...)
			return true
		}
	}
	return false
}
