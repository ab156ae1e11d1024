// Package queue implements the mailbox's user-message side (C2 in
// spec.md): an unbounded MPSC FIFO backed by a linked-list queue that
// never blocks its writer, and a bounded, blocking-with-timeout FIFO
// backed by a Go channel, the way the teacher wraps a buffered channel as
// its mailbox backing store (markInTheAbyss-go-actor's `mailbox[T]` and
// czx-lab's actor mailbox both reach for `chan` first for the bounded
// case; this module follows suit there, while the unbounded case needs a
// structure with no fixed capacity).
package queue

import (
	"errors"
	"sync"
	"time"

	"github.com/emirpasic/gods/queues/linkedlistqueue"
)

// ErrFull is returned by a Bounded queue's Push when the push timeout
// elapses before a slot frees up.
var ErrFull = errors.New("queue: mailbox full")

// UserMessageQueue is the interface the mailbox drains against. Push and
// Pop never carry message semantics of their own — the mailbox decides
// what an envelope is; the queue only moves values.
type UserMessageQueue interface {
	Push(msg interface{}) error
	Pop() (interface{}, bool)
	Len() int
}

// Unbounded is an MPSC FIFO with no capacity limit. Push never blocks: it
// is backed by emirpasic/gods' doubly-linked-list queue (the same package
// this module already reaches for in its stash), which grows a node at a
// time rather than a fixed-capacity channel ring.
type Unbounded struct {
	mu sync.Mutex
	q  *linkedlistqueue.Queue
}

// NewUnbounded creates an Unbounded queue. hint is accepted for call-site
// compatibility with the bounded constructor but otherwise unused: nothing
// here is ever pre-sized, since doing so would reintroduce a capacity limit.
func NewUnbounded(hint int) *Unbounded {
	return &Unbounded{q: linkedlistqueue.New()}
}

func (q *Unbounded) Push(msg interface{}) error {
	q.mu.Lock()
	q.q.Enqueue(msg)
	q.mu.Unlock()
	return nil
}

func (q *Unbounded) Pop() (interface{}, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.q.Dequeue()
}

func (q *Unbounded) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.q.Size()
}

// Bounded is a fixed-capacity FIFO whose Push blocks the caller up to
// pushTimeout before failing with ErrFull.
type Bounded struct {
	ch          chan interface{}
	pushTimeout time.Duration
}

// NewBounded creates a Bounded queue with the given capacity and push
// timeout. A zero timeout makes Push non-blocking (fails immediately when full).
func NewBounded(capacity int, pushTimeout time.Duration) *Bounded {
	if capacity <= 0 {
		capacity = 1
	}
	return &Bounded{ch: make(chan interface{}, capacity), pushTimeout: pushTimeout}
}

func (q *Bounded) Push(msg interface{}) error {
	select {
	case q.ch <- msg:
		return nil
	default:
	}
	if q.pushTimeout <= 0 {
		return ErrFull
	}
	timer := time.NewTimer(q.pushTimeout)
	defer timer.Stop()
	select {
	case q.ch <- msg:
		return nil
	case <-timer.C:
		return ErrFull
	}
}

func (q *Bounded) Pop() (interface{}, bool) {
	select {
	case v := <-q.ch:
		return v, true
	default:
		return nil, false
	}
}

func (q *Bounded) Len() int { return len(q.ch) }
