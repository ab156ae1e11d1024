package actor

import (
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/atomic"

	"github.com/j5ik2o/actor-kernel-go/actor/dispatch"
	"github.com/j5ik2o/actor-kernel-go/actor/log"
	"github.com/j5ik2o/actor-kernel-go/actor/queue"
	"github.com/j5ik2o/actor-kernel-go/actor/syslist"
)

var mlog = log.Default.With("mailbox")

// cellInvoker is the narrow surface Mailbox needs from its actor cell: the
// cell interprets envelopes and system messages; the mailbox only knows
// how and when to hand them over. Cell implements this.
type cellInvoker interface {
	invoke(envelope Envelope)
	systemInvoke(kind interface{})
}

// Mailbox is C3 from spec.md: the atomic status word, the user queue, the
// intrusive system-message list, and the run loop that drains both.
type Mailbox struct {
	status        mailboxStatusWord
	userQueue     queue.UserMessageQueue
	sysHead       atomic.Pointer[syslist.Entry]
	terminateFlag atomic.Bool

	// cell, self, deadLetter, and dispatcher are set exactly once by
	// initialize and never swapped afterward — per spec.md §4.2, the
	// mailbox's actor-cell back-link is "set once at initialization;
	// never swapped without replacing the mailbox wholesale."
	cell       cellInvoker
	self       *PID
	deadLetter *PID
	dispatcher dispatch.Dispatcher
}

// NewUnboundedMailbox creates a Mailbox backed by an unbounded user queue.
func NewUnboundedMailbox() *Mailbox {
	return &Mailbox{userQueue: queue.NewUnbounded(16)}
}

// NewBoundedMailbox creates a Mailbox backed by a bounded, blocking-with-
// timeout user queue.
func NewBoundedMailbox(capacity int, pushTimeout time.Duration) *Mailbox {
	return &Mailbox{userQueue: queue.NewBounded(capacity, pushTimeout)}
}

// initialize installs the mailbox's back-links. Called once from
// cell.SpawnNamed (or NewActorSystem for the root guardian), before the
// mailbox is ever scheduled.
func (m *Mailbox) initialize(cell cellInvoker, self *PID, deadLetter *PID, d dispatch.Dispatcher) {
	m.cell = cell
	m.self = self
	m.deadLetter = deadLetter
	m.dispatcher = d
}

// --- writer side ---

// DispatchUserMessage enqueues envelope and asks the dispatcher to
// schedule a run, per spec.md §4.3's dispatch(). On a closed mailbox the
// envelope is routed to dead letters instead.
func (m *Mailbox) DispatchUserMessage(envelope Envelope) error {
	if m.IsClosed() {
		m.routeToDeadLetter(envelope)
		return nil
	}
	if err := m.userQueue.Push(envelope); err != nil {
		return err
	}
	m.dispatcher.RegisterForExecution(m, true, false)
	return nil
}

// DispatchSystemMessage system-enqueues kind and asks the dispatcher to
// schedule a run, per spec.md §4.3's system_dispatch().
func (m *Mailbox) DispatchSystemMessage(kind interface{}) {
	m.SystemEnqueue(kind)
	m.dispatcher.RegisterForExecution(m, false, true)
}

// Attach forces an initial drain so the cell's Create system message runs,
// per spec.md §4.3's attach().
func (m *Mailbox) Attach() bool {
	return m.dispatcher.RegisterForExecution(m, false, true)
}

// SystemEnqueue is the lock-free-flavored CAS loop from spec.md §4.2.
func (m *Mailbox) SystemEnqueue(kind interface{}) {
	entry := syslist.NewEntry(kind)
	for {
		head := m.sysHead.Load()
		if syslist.IsNoMessage(head) {
			m.routeToDeadLetter(Envelope{Message: kind, Sender: m.self})
			return
		}
		newHead := syslist.NewLatestFirstList(head).Prepend(entry).Head()
		if m.sysHead.CompareAndSwap(head, newHead) {
			return
		}
		entry.Unlink()
	}
}

// --- status/predicate surface consumed by the dispatcher ---

func (m *Mailbox) hasMessages() bool       { return m.userQueue.Len() > 0 }
func (m *Mailbox) hasSystemMessages() bool { return m.sysHead.Load() != nil }

func (m *Mailbox) CanBeScheduledForExecution(hasMessageHint, hasSystemMessageHint bool) bool {
	return m.status.canBeScheduledForExecution(hasMessageHint, hasSystemMessageHint, m.hasMessages, m.hasSystemMessages)
}

func (m *Mailbox) SetAsScheduled() bool { return m.status.setAsScheduled() }
func (m *Mailbox) setAsIdle()           { m.status.setAsIdle() }

// Suspend implements suspend() from spec.md §4.2.
func (m *Mailbox) Suspend() bool { return m.status.suspend() }

// Resume implements resume() from spec.md §4.2.
func (m *Mailbox) Resume() bool { return m.status.resume() }

// BecomeClosed implements become_closed() from spec.md §4.2.
func (m *Mailbox) BecomeClosed() bool {
	ok := m.status.becomeClosed()
	// Seal the system-message list: once closed, further system-enqueues
	// must route to dead letters rather than linking in, per the
	// NoMessage sentinel semantics of spec.md §3/§9.
	m.sysHead.Store(syslist.NewEntry(syslist.NoMessage))
	return ok
}

func (m *Mailbox) IsClosed() bool { return m.status.load().isClosed() }

// --- drain / run loop ---

// drainSystemMessages atomically swaps the head for an empty chain and
// returns the prior chain reversed to earliest-first, per spec.md §4.2.
func (m *Mailbox) drainSystemMessages() syslist.EarliestFirstList {
	for {
		old := m.sysHead.Load()
		if syslist.IsNoMessage(old) {
			return syslist.EarliestFirstList{}
		}
		if m.sysHead.CompareAndSwap(old, nil) {
			return syslist.NewLatestFirstList(old).Reverse()
		}
	}
}

// Run is the dispatcher-invoked execute() from spec.md §4.2.
func (m *Mailbox) Run(d dispatch.Dispatcher) {
	if !m.status.load().isClosed() {
		m.processAllSystemMessages()
		m.processUserMessages(d)
	}
	m.status.setAsIdle()
	d.RegisterForExecution(m, false, false)
}

func (m *Mailbox) processAllSystemMessages() {
	list := m.drainSystemMessages()
	for {
		if list.IsEmpty() {
			if m.status.load().isClosed() {
				return
			}
			list = m.drainSystemMessages()
			if list.IsEmpty() {
				return
			}
			continue
		}
		if m.status.load().isClosed() {
			m.forwardToDeadLetters(list)
			m.forwardToDeadLetters(m.drainSystemMessages())
			return
		}
		entry := list.Head()
		list = list.Tail()
		entry.Unlink()
		m.invokeSystemMessageSafely(entry.Kind)
		if m.terminateFlag.Load() {
			m.forwardToDeadLetters(list)
			m.forwardToDeadLetters(m.drainSystemMessages())
			return
		}
	}
}

func (m *Mailbox) invokeSystemMessageSafely(kind interface{}) {
	defer func() {
		if r := recover(); r != nil {
			mlog.Error("panic processing system message", log.String("panic", fmt.Sprint(r)), log.String("stack", string(debug.Stack())))
			m.terminateFlag.Store(true)
		}
	}()
	m.cell.systemInvoke(kind)
}

func (m *Mailbox) processUserMessages(d dispatch.Dispatcher) {
	left := d.Throughput()
	if left < 1 {
		left = 1
	}
	hasDeadline := d.ThroughputDeadline() > 0
	var deadline time.Time
	if hasDeadline {
		deadline = time.Now().Add(d.ThroughputDeadline())
	}
	for {
		if !m.status.load().shouldProcessMessage() {
			return
		}
		v, ok := m.userQueue.Pop()
		if !ok {
			return
		}
		envelope := v.(Envelope)
		m.invokeUserMessageSafely(envelope)
		m.processAllSystemMessages()
		if m.status.load().isClosed() {
			return
		}
		if hasDeadline && time.Now().After(deadline) {
			return
		}
		left--
		if left <= 0 {
			return
		}
	}
}

func (m *Mailbox) invokeUserMessageSafely(envelope Envelope) {
	defer func() {
		if r := recover(); r != nil {
			mlog.Error("panic processing user message", log.String("panic", fmt.Sprint(r)), log.String("stack", string(debug.Stack())))
		}
	}()
	m.cell.invoke(envelope)
}

func (m *Mailbox) forwardToDeadLetters(list syslist.EarliestFirstList) {
	cur := list
	for !cur.IsEmpty() {
		entry := cur.Head()
		cur = cur.Tail()
		entry.Unlink()
		m.routeToDeadLetter(Envelope{Message: entry.Kind, Sender: m.self})
	}
}

func (m *Mailbox) routeToDeadLetter(envelope Envelope) {
	if m.deadLetter == nil {
		mlog.Warn("dropping message, no dead letter sink configured", log.Message(envelope.Message))
		return
	}
	m.deadLetter.TellFrom(DeadLetter{Message: envelope.Message, Sender: envelope.Sender, Recipient: m.self}, envelope.Sender)
}
