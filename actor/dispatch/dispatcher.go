// Package dispatch implements C4 from spec.md: the dispatcher that
// schedules runnable mailboxes onto a shared worker pool, enforcing
// at-most-one concurrent run per mailbox via the mailbox's own status CAS.
//
// The dispatcher never looks inside a mailbox; it only calls the narrow
// Mailbox interface, the way the teacher keeps actor.Context and
// actor.Props decoupled through small interfaces rather than a God type.
package dispatch

import (
	"sync"
	"time"
)

// Mailbox is the surface a mailbox exposes to its dispatcher. It mirrors
// spec.md §4.3's register_for_execution contract.
type Mailbox interface {
	// CanBeScheduledForExecution implements can_be_scheduled_for_panic from
	// spec.md §4.2: whether, given hints that a message or system message
	// is known to be pending, this mailbox is eligible to run at all.
	CanBeScheduledForExecution(hasMessageHint, hasSystemMessageHint bool) bool
	// SetAsScheduled attempts the Open/Idle -> Scheduled CAS transition.
	SetAsScheduled() bool
	// Run drains the mailbox; it is invoked on a worker goroutine and must
	// call back into Dispatcher.RegisterForExecution before returning, the
	// way spec.md's execute() tail-calls register_for_execution.
	Run(d Dispatcher)
}

// Dispatcher is the scheduling surface a mailbox and actor cell consume.
type Dispatcher interface {
	Throughput() int
	ThroughputDeadline() time.Duration
	// RegisterForExecution implements spec.md §4.3's register_for_execution.
	RegisterForExecution(mb Mailbox, hasMessageHint, hasSystemMessageHint bool) bool
	// Schedule runs fn on the dispatcher's worker pool.
	Schedule(fn func())
	// Join blocks until every task spawned via Schedule has returned.
	Join()
}

// Config configures a goroutine-pool Dispatcher, per spec.md §6.
type Config struct {
	// Throughput is the max user messages processed per scheduled run
	// before yielding. Must be >= 1; default 1.
	Throughput int
	// ThroughputDeadline, if non-zero, additionally bounds a run's wall
	// clock regardless of Throughput.
	ThroughputDeadline time.Duration
	// ExecutorThreads bounds how many mailbox runs may execute
	// concurrently. Zero means unbounded (one goroutine per scheduled run).
	ExecutorThreads int
}

// DefaultConfig matches spec.md §6's stated defaults.
func DefaultConfig() Config {
	return Config{Throughput: 1}
}

// goroutineDispatcher is the default Dispatcher: every scheduled mailbox
// run is a goroutine, optionally bounded by a counting semaphore so no
// more than ExecutorThreads runs execute at once.
type goroutineDispatcher struct {
	cfg Config
	sem chan struct{} // nil when unbounded
	wg  sync.WaitGroup
}

// New creates a Dispatcher from cfg, defaulting Throughput to 1 if unset.
func New(cfg Config) Dispatcher {
	if cfg.Throughput < 1 {
		cfg.Throughput = 1
	}
	d := &goroutineDispatcher{cfg: cfg}
	if cfg.ExecutorThreads > 0 {
		d.sem = make(chan struct{}, cfg.ExecutorThreads)
	}
	return d
}

func (d *goroutineDispatcher) Throughput() int { return d.cfg.Throughput }

func (d *goroutineDispatcher) ThroughputDeadline() time.Duration { return d.cfg.ThroughputDeadline }

func (d *goroutineDispatcher) RegisterForExecution(mb Mailbox, hasMessageHint, hasSystemMessageHint bool) bool {
	if !mb.CanBeScheduledForExecution(hasMessageHint, hasSystemMessageHint) {
		return false
	}
	if mb.SetAsScheduled() {
		d.Schedule(func() { mb.Run(d) })
		return true
	}
	return false
}

func (d *goroutineDispatcher) Schedule(fn func()) {
	d.wg.Add(1)
	if d.sem == nil {
		go func() {
			defer d.wg.Done()
			fn()
		}()
		return
	}
	go func() {
		defer d.wg.Done()
		d.sem <- struct{}{}
		defer func() { <-d.sem }()
		fn()
	}()
}

// Join drains pending task handles, awaiting each — spec.md §4.3. It does
// not pre-empt running tasks.
func (d *goroutineDispatcher) Join() {
	d.wg.Wait()
}
