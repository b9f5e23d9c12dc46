// Package notice collects transient user-facing messages (toasts). A notice
// is shown once: rendering the page drains the board.
package notice

import (
	"sync"
	"time"

	"github.com/paperiq/dashboard/internal/models"
)

// MaxPending caps how many notices wait for the next render. Older ones are
// dropped first.
const MaxPending = 20

// Board is a per-session queue of notices. It is safe for concurrent use.
type Board struct {
	mu    sync.Mutex
	items []models.Notice
	now   func() time.Time
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{now: time.Now}
}

func (b *Board) Success(msg string) { b.post(models.NoticeSuccess, msg) }
func (b *Board) Error(msg string)   { b.post(models.NoticeError, msg) }
func (b *Board) Info(msg string)    { b.post(models.NoticeInfo, msg) }

func (b *Board) post(level models.NoticeLevel, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, models.Notice{Level: level, Message: msg, CreatedAt: b.now()})
	if over := len(b.items) - MaxPending; over > 0 {
		b.items = append([]models.Notice(nil), b.items[over:]...)
	}
}

// Pending returns the queued notices without removing them.
func (b *Board) Pending() []models.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Notice(nil), b.items...)
}

// Drain returns the queued notices and empties the board.
func (b *Board) Drain() []models.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.items
	b.items = nil
	return out
}
