package actor

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j5ik2o/actor-kernel-go/actor/dispatch"
)

// recordingCell is a minimal cellInvoker used to exercise Mailbox in
// isolation from the rest of the actor cell machinery.
type recordingCell struct {
	mu        sync.Mutex
	userMsgs  []interface{}
	sysMsgs   []interface{}
	onInvoke  func(Envelope)
	onSysMsg  func(interface{})
}

func (r *recordingCell) invoke(envelope Envelope) {
	r.mu.Lock()
	r.userMsgs = append(r.userMsgs, envelope.Message)
	r.mu.Unlock()
	if r.onInvoke != nil {
		r.onInvoke(envelope)
	}
}

func (r *recordingCell) systemInvoke(kind interface{}) {
	r.mu.Lock()
	r.sysMsgs = append(r.sysMsgs, kind)
	r.mu.Unlock()
	if r.onSysMsg != nil {
		r.onSysMsg(kind)
	}
}

func (r *recordingCell) userCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.userMsgs)
}

func newTestMailbox(t *testing.T, cfg dispatch.Config) (*Mailbox, *recordingCell, dispatch.Dispatcher) {
	t.Helper()
	rc := &recordingCell{}
	mb := NewUnboundedMailbox()
	d := dispatch.New(cfg)
	self := NewPID(RootPath(NewLocalAddress("actor", "test"), "t"), nil)
	dl := NewPID(RootPath(NewLocalAddress("actor", "test"), "dead-letters"), newDeadLetterProcess())
	mb.initialize(rc, self, dl, d)
	return mb, rc, d
}

func eventually(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	require.True(t, cond(), "condition not satisfied within %s", timeout)
}

func TestMailboxBasicDeliveryProcessesEnqueuedMessage(t *testing.T) {
	mb, rc, d := newTestMailbox(t, dispatch.Config{Throughput: 10})
	require.NoError(t, mb.DispatchUserMessage(Envelope{Message: "hello"}))
	eventually(t, time.Second, func() bool { return rc.userCount() == 1 })
	d.Join()
	assert.Equal(t, []interface{}{"hello"}, rc.userMsgs)
}

func TestMailboxAtMostOneConcurrentRun(t *testing.T) {
	var inFlight int32
	var violated int32
	rc := &recordingCell{}
	rc.onInvoke = func(Envelope) {
		n := atomic.AddInt32(&inFlight, 1)
		if n > 1 {
			atomic.StoreInt32(&violated, 1)
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
	}
	mb := NewUnboundedMailbox()
	d := dispatch.New(dispatch.Config{Throughput: 1})
	self := NewPID(RootPath(NewLocalAddress("actor", "test"), "t"), nil)
	mb.initialize(rc, self, nil, d)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				require.NoError(t, mb.DispatchUserMessage(Envelope{Message: base*10 + i}))
			}
		}(g)
	}
	wg.Wait()
	eventually(t, 2*time.Second, func() bool { return rc.userCount() == 80 })
	d.Join()
	assert.Equal(t, int32(0), atomic.LoadInt32(&violated), "two runs overlapped on the same mailbox")
}

func TestMailboxSystemMessagePriorityInterruptsUserProcessing(t *testing.T) {
	rc := &recordingCell{}
	var suspendedAt int
	rc.onSysMsg = func(kind interface{}) {
		if _, ok := kind.(*Suspend); ok {
			suspendedAt = rc.userCount()
		}
	}
	mb := NewUnboundedMailbox()
	d := dispatch.New(dispatch.Config{Throughput: 1000})
	self := NewPID(RootPath(NewLocalAddress("actor", "test"), "t"), nil)
	mb.initialize(rc, self, nil, d)

	for i := 0; i < 100; i++ {
		require.NoError(t, mb.DispatchUserMessage(Envelope{Message: i}))
	}
	mb.DispatchSystemMessage(&Suspend{})
	mb.DispatchSystemMessage(&Resume{})

	eventually(t, 2*time.Second, func() bool { return rc.userCount() == 100 })
	d.Join()

	assert.Less(t, suspendedAt, 100, "suspend should have interrupted user processing before all 100 were handled")
}

func TestMailboxDeadLetterOnClosedMailbox(t *testing.T) {
	mb, rc, d := newTestMailbox(t, dispatch.Config{Throughput: 10})
	mb.BecomeClosed()
	assert.True(t, mb.IsClosed())

	err := mb.DispatchUserMessage(Envelope{Message: "late"})
	assert.NoError(t, err) // a closed mailbox routes the envelope to dead letters rather than failing
	d.Join()
	assert.Equal(t, 0, rc.userCount())
}

func TestMailboxSystemEnqueueOnSealedListRoutesToDeadLetter(t *testing.T) {
	mb, _, _ := newTestMailbox(t, dispatch.Config{Throughput: 10})
	mb.BecomeClosed()

	var captured []DeadLetter
	dlProc := mb.deadLetter.ref.(*deadLetterProcess)
	ch := make(chan DeadLetter, 4)
	dlProc.Subscribe(ch)

	mb.SystemEnqueue(&Suspend{})

	select {
	case dl := <-ch:
		captured = append(captured, dl)
	case <-time.After(time.Second):
		t.Fatal("expected a dead letter")
	}
	require.Len(t, captured, 1)
	_, ok := captured[0].Message.(*Suspend)
	assert.True(t, ok)
}

func TestMailboxDrainWithEmptyListReturnsEmpty(t *testing.T) {
	mb, _, _ := newTestMailbox(t, dispatch.Config{Throughput: 10})
	list := mb.drainSystemMessages()
	assert.True(t, list.IsEmpty())
}
