package actor

import "go.uber.org/atomic"

// mailboxStatus is the 32-bit atomic status word from spec.md §3: bit 0 is
// Closed, bit 1 is Scheduled, and everything from bit 2 up is a suspend
// counter incremented/decremented by SuspendUnit.
type mailboxStatus uint32

const (
	mbOpen      mailboxStatus = 0
	mbClosed    mailboxStatus = 1
	mbScheduled mailboxStatus = 2
	// suspendUnit is the increment one suspend() call adds to the status
	// word. spec.md §9 notes a historical tree used 6 here, inconsistent
	// with suspendMask = ^3; this module adopts 4, the value consistent
	// with the mask.
	suspendUnit mailboxStatus = 4
)

const (
	shouldScheduleMask   mailboxStatus = 3
	shouldNotProcessMask mailboxStatus = ^mailboxStatus(2)
	suspendMask          mailboxStatus = ^mailboxStatus(3)
)

func (s mailboxStatus) shouldProcessMessage() bool {
	return s&^mbScheduled == 0
}

func (s mailboxStatus) isSuspended() bool {
	return s&^mailboxStatus(3) != 0
}

func (s mailboxStatus) isClosed() bool {
	return s == mbClosed
}

func (s mailboxStatus) isScheduled() bool {
	return s&mbScheduled != 0
}

func (s mailboxStatus) suspendCount() uint32 {
	return uint32(s / suspendUnit)
}

// mailboxStatusWord is the atomic holder of a mailboxStatus, exposing the
// CAS-based transitions of spec.md §4.2.
type mailboxStatusWord struct {
	v atomic.Uint32
}

func (w *mailboxStatusWord) load() mailboxStatus {
	return mailboxStatus(w.v.Load())
}

// setAsScheduled implements set_as_scheduled(): Open|Idle -> Scheduled.
func (w *mailboxStatusWord) setAsScheduled() bool {
	for {
		cur := w.load()
		if cur&shouldScheduleMask != mbOpen {
			return false
		}
		next := cur | mbScheduled
		if w.v.CompareAndSwap(uint32(cur), uint32(next)) {
			return true
		}
	}
}

// setAsIdle implements set_as_idle(): clears the Scheduled bit.
func (w *mailboxStatusWord) setAsIdle() {
	for {
		cur := w.load()
		next := cur &^ mbScheduled
		if w.v.CompareAndSwap(uint32(cur), uint32(next)) {
			return
		}
	}
}

// suspend implements suspend(): returns whether this call transitioned the
// mailbox into the suspended region (prior suspend count was zero).
func (w *mailboxStatusWord) suspend() bool {
	for {
		cur := w.load()
		if cur.isClosed() {
			return false
		}
		next := cur + suspendUnit
		if w.v.CompareAndSwap(uint32(cur), uint32(next)) {
			return cur.suspendCount() == 0
		}
	}
}

// resume implements resume(): returns whether the new suspend count is zero.
// resume() on an already-zero suspend count is a no-op returning true.
func (w *mailboxStatusWord) resume() bool {
	for {
		cur := w.load()
		if cur.isClosed() {
			return false
		}
		if cur.suspendCount() == 0 {
			return true
		}
		next := cur - suspendUnit
		if w.v.CompareAndSwap(uint32(cur), uint32(next)) {
			return next.suspendCount() == 0
		}
	}
}

// becomeClosed implements become_closed(): CAS any non-closed value to Closed.
func (w *mailboxStatusWord) becomeClosed() bool {
	for {
		cur := w.load()
		if cur.isClosed() {
			return false
		}
		if w.v.CompareAndSwap(uint32(cur), uint32(mbClosed)) {
			return true
		}
	}
}

// canBeScheduledForExecution implements can_be_scheduled_for_panic() from
// spec.md §4.2.
func (w *mailboxStatusWord) canBeScheduledForExecution(hasMessageHint, hasSystemMessageHint bool, hasMessages, hasSystemMessages func() bool) bool {
	cur := w.load()
	switch {
	case cur.isClosed():
		return false
	case cur.suspendCount() == 0: // Open or Scheduled
		return hasMessageHint || hasSystemMessageHint || hasMessages()
	default:
		return hasSystemMessageHint || hasSystemMessages()
	}
}
