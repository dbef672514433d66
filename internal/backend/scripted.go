package backend

// #region imports
import (
	"context"
	"errors"
	"sync"
)

// #endregion imports

// ErrScriptExhausted is returned once every scripted reply has been used.
var ErrScriptExhausted = errors.New("backend: script exhausted")

// Reply is one canned backend answer: text, or an error.
type Reply struct {
	Text string
	Err  error
}

// Scripted replays canned replies in order and records every request.
// It drives offline replays and tests.
type Scripted struct {
	mu      sync.Mutex
	replies []Reply
	calls   []Request
}

// NewScripted returns a backend that answers with replies in order.
func NewScripted(replies ...Reply) *Scripted {
	return &Scripted{replies: append([]Reply(nil), replies...)}
}

// Texts is NewScripted for successful replies only.
func Texts(texts ...string) *Scripted {
	replies := make([]Reply, len(texts))
	for i, t := range texts {
		replies[i] = Reply{Text: t}
	}
	return NewScripted(replies...)
}

// Generate pops the next reply.
func (s *Scripted) Generate(ctx context.Context, req Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(s.replies) == 0 {
		return "", ErrScriptExhausted
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.Text, r.Err
}

// Calls returns a copy of the requests seen so far.
func (s *Scripted) Calls() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.calls...)
}

// Remaining reports how many replies are left.
func (s *Scripted) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.replies)
}
