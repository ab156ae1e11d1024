package actor

import "sync"

// DeadLetter wraps a message that could not be delivered: the recipient's
// mailbox was closed, its system-message list was sealed, or the PID
// resolved to nothing. Per spec.md §7.
type DeadLetter struct {
	Message   interface{}
	Sender    *PID
	Recipient *PID
}

// deadLetterProcess is the system-wide dead-letter sink. Unlike every
// other Process in this module it is not backed by a Cell/Mailbox pair —
// spec.md §9 notes the source constructs its dead-letter mailbox and
// immediately closes it, relying on system_enqueue's own-ref indirection
// to avoid routing back into a mailbox that is already sealed. This
// module sidesteps that trap entirely by never giving the dead-letter
// sink a mailbox to close: it is a plain fan-out process, so there is no
// closed-mailbox/self-referential-seal paradox to preserve.
type deadLetterProcess struct {
	mu          sync.Mutex
	subscribers []chan<- DeadLetter
	recent      []DeadLetter
	recentCap   int
}

func newDeadLetterProcess() *deadLetterProcess {
	return &deadLetterProcess{recentCap: 256}
}

func (d *deadLetterProcess) SendUserMessage(pid *PID, envelope Envelope) {
	letter, ok := envelope.Message.(DeadLetter)
	if !ok {
		letter = DeadLetter{Message: envelope.Message, Sender: envelope.Sender, Recipient: pid}
	}
	d.mu.Lock()
	d.recent = append(d.recent, letter)
	if len(d.recent) > d.recentCap {
		d.recent = d.recent[len(d.recent)-d.recentCap:]
	}
	subs := append([]chan<- DeadLetter(nil), d.subscribers...)
	d.mu.Unlock()
	for _, s := range subs {
		select {
		case s <- letter:
		default:
			mlog.Warn("dead letter subscriber channel full, dropping")
		}
	}
}

func (d *deadLetterProcess) SendSystemMessage(pid *PID, kind interface{}) {
	d.SendUserMessage(pid, Envelope{Message: kind})
}

func (d *deadLetterProcess) Stop(pid *PID) {}

// Subscribe registers ch to receive every future dead letter.
func (d *deadLetterProcess) Subscribe(ch chan<- DeadLetter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers = append(d.subscribers, ch)
}

// Recent returns a snapshot of the most recently observed dead letters,
// for tests and diagnostics.
func (d *deadLetterProcess) Recent() []DeadLetter {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]DeadLetter, len(d.recent))
	copy(out, d.recent)
	return out
}
