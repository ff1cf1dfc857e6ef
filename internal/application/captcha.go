package application

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	captchaTTL     = 5 * time.Minute
	maxOpenCaptcha = 64
)

// Challenge is a one-shot arithmetic question. The answer never leaves the process.
type Challenge struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	ExpiresAt time.Time `json:"expires_at"`
}

type captchaBook struct {
	mu   sync.Mutex
	open map[string]pendingCaptcha
	now  func() time.Time
}

type pendingCaptcha struct {
	answer  int
	expires time.Time
}

func newCaptchaBook() *captchaBook {
	return &captchaBook{open: make(map[string]pendingCaptcha), now: time.Now}
}

func (b *captchaBook) issue() Challenge {
	x, y := rand.IntN(10)+1, rand.IntN(10)+1
	now := b.now()
	ch := Challenge{
		ID:        uuid.NewString(),
		Question:  fmt.Sprintf("What is %d + %d?", x, y),
		ExpiresAt: now.Add(captchaTTL),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for id, p := range b.open {
		if now.After(p.expires) || len(b.open) >= maxOpenCaptcha {
			delete(b.open, id)
		}
	}
	b.open[ch.ID] = pendingCaptcha{answer: x + y, expires: ch.ExpiresAt}
	return ch
}

// check consumes the challenge whatever the answer.
func (b *captchaBook) check(id string, answer int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.open[id]
	if !ok {
		return false
	}
	delete(b.open, id)
	return !b.now().After(p.expires) && p.answer == answer
}
