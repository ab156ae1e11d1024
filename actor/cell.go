package actor

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/emirpasic/gods/stacks/linkedliststack"
	"github.com/rs/xid"

	"github.com/j5ik2o/actor-kernel-go/actor/log"
)

var clog = log.Default.With("cell")

// defaultRestartWindow bounds how far back RestartStatistics.Fail looks
// when deciding whether a child has exceeded its restart budget.
const defaultRestartWindow = time.Minute

// contextState mirrors the teacher's contextState: a small state machine
// layered on top of the Children FSM to track this cell's own lifecycle.
type contextState int32

const (
	stateNone contextState = iota
	stateAlive
	stateRestarting
	stateStopping
	stateStopped
)

// PreStarter, PostStopper, and PreRestarter are optional hooks an Actor may
// implement, checked with the same type-assertion idiom the teacher uses
// for SupervisorStrategy (`if strategy, ok := ctx.actor.(SupervisorStrategy)`).
type PreStarter interface{ PreStart(ctx Context) }
type PostStopper interface{ PostStop(ctx Context) }
type PreRestarter interface {
	PreRestart(ctx Context, cause error, message interface{})
}

// cell is C6 from spec.md: the actor cell. It plays three roles at once,
// the way the teacher's actorContext does — Context (for user code),
// cellInvoker (for the Mailbox run loop), and Process (as the PID's
// backing ref) — rather than splitting them into separate allocations.
type cell struct {
	system *ActorSystem
	props  *Props
	self   *PID
	parent *PID

	mailbox  *Mailbox
	children *Children
	fault    faultInfo
	watchers *PIDSet

	actor Actor
	state contextState

	messageOrEnvelope interface{}
	currentSender     *PID

	// failureMessage is the message (if any) that was in flight when this
	// cell last failed, captured at failure time because Recreate arrives
	// asynchronously — well after invoke() has already cleared
	// messageOrEnvelope — and PreRestart still needs to see it.
	failureMessage interface{}

	receiveTimeout      time.Duration
	receiveTimeoutMsg   interface{}
	receiveTimeoutTimer *time.Timer

	stash *linkedliststack.Stack

	pendingRecreate      bool
	pendingRecreateCause error
}

func newCell(system *ActorSystem, props *Props, parent *PID) *cell {
	return &cell{
		system:   system,
		props:    props,
		parent:   parent,
		children: NewChildren(),
		watchers: NewPIDSet(),
		state:    stateNone,
	}
}

func toError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}

// newUID assigns the 32-bit non-zero path uid spec.md §3 requires,
// sourced from the low 32 bits of an rs/xid value (retrying on the
// astronomically unlikely all-zero case).
func newUID() uint32 {
	for {
		id := xid.New()
		b := id.Bytes()
		v := binary.BigEndian.Uint32(b[len(b)-4:])
		if v != 0 {
			return v
		}
	}
}

// --- Context ---

func (c *cell) Self() *PID             { return c.self }
func (c *cell) Parent() *PID           { return c.parent }
func (c *cell) Message() interface{}   { return c.messageOrEnvelope }
func (c *cell) Sender() *PID           { return c.currentSender }
func (c *cell) Children() []*PID       { return c.children.LiveChildren() }

func (c *cell) Send(pid *PID, message interface{}) {
	pid.TellFrom(message, c.self)
}

func (c *cell) Request(pid *PID, message interface{}) {
	pid.TellFrom(message, c.self)
}

func (c *cell) Respond(response interface{}) {
	if c.currentSender == nil {
		c.system.DeadLetter.Tell(DeadLetter{Message: response, Recipient: nil})
		return
	}
	c.Send(c.currentSender, response)
}

func (c *cell) Forward(pid *PID) {
	pid.TellFrom(c.messageOrEnvelope, c.currentSender)
}

func (c *cell) Spawn(props *Props) *PID {
	pid, err := c.SpawnNamed(props, c.system.nextAnonymousName())
	if err != nil {
		panic(err)
	}
	return pid
}

// SpawnNamed implements child creation, per spec.md §4.4.
func (c *cell) SpawnNamed(props *Props, name string) (*PID, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	c.children.ReserveChild(name) // panics on collision, per spec.md §7

	uid := newUID()
	childPath := c.self.Path().Child(name, uid)
	childCell := newCell(c.system, props, c.self)

	childPID := NewPID(childPath, childCell)
	childCell.self = childPID

	mb := props.mailboxProducer()
	d := props.dispatcher
	if d == nil {
		d = c.mailbox.dispatcher
	}
	mb.initialize(childCell, childPID, c.system.DeadLetter, d)
	childCell.mailbox = mb

	// Create is always the first system message a new cell observes.
	mb.SystemEnqueue(&Create{})
	// The parent death-watches every child it creates, so it learns of
	// termination via DeathWatchNotification regardless of whether the
	// user ever calls ctx.Watch explicitly.
	mb.SystemEnqueue(&Watch{Watcher: c.self})

	c.system.registry.put(childPath.String(), childCell)

	mb.Attach()
	// Promoting the reserved slot to a live child happens on this cell's
	// own mailbox, via Supervise, per spec.md §4.4 step 3 — not inline
	// here, so the promotion is serialized with every other system
	// message this cell processes.
	c.self.sendSystemMessage(&Supervise{Child: childPID, Async: true})
	return childPID, nil
}

// Stop implements stop(child), per spec.md §4.4: mark the child for
// death in this cell's own Children container, then ask it to terminate.
func (c *cell) Stop(pid *PID) {
	c.children.ShallDie(pid)
	pid.Stop()
}

func (c *cell) Watch(pid *PID) {
	pid.sendSystemMessage(&Watch{Watcher: c.self})
}

func (c *cell) Unwatch(pid *PID) {
	pid.sendSystemMessage(&Unwatch{Watcher: c.self})
}

func (c *cell) SetReceiveTimeout(d time.Duration, message interface{}) {
	if d <= 0 {
		panic("actor: receive timeout duration must be greater than zero")
	}
	if d == c.receiveTimeout {
		return
	}
	if d < time.Millisecond {
		d = 0
	}
	c.receiveTimeout = d
	c.receiveTimeoutMsg = message
	c.stopReceiveTimeoutTimer()
	if d > 0 {
		if c.receiveTimeoutTimer == nil {
			c.receiveTimeoutTimer = time.AfterFunc(d, c.fireReceiveTimeout)
		} else {
			c.receiveTimeoutTimer.Reset(d)
		}
	}
}

func (c *cell) CancelReceiveTimeout() {
	c.cancelReceiveTimeoutTimer()
	c.receiveTimeout = 0
}

func (c *cell) fireReceiveTimeout() {
	if c.self == nil {
		return
	}
	c.self.Tell(c.receiveTimeoutMsg)
}

func (c *cell) stopReceiveTimeoutTimer() {
	if c.receiveTimeoutTimer != nil {
		c.receiveTimeoutTimer.Stop()
	}
}

func (c *cell) cancelReceiveTimeoutTimer() {
	if c.receiveTimeoutTimer == nil {
		return
	}
	c.receiveTimeoutTimer.Stop()
	c.receiveTimeoutTimer = nil
}

func (c *cell) Stash() {
	if c.stash == nil {
		c.stash = linkedliststack.New()
	}
	c.stash.Push(c.messageOrEnvelope)
}

func (c *cell) unstash() {
	if c.stash == nil {
		return
	}
	for !c.stash.Empty() {
		v, _ := c.stash.Pop()
		c.invoke(Envelope{Message: v})
	}
}

func (c *cell) MessageAdapter(fn func(interface{}) interface{}) *PID {
	return NewPID(c.self.Path(), &adapterProcess{target: c.self, fn: fn})
}

// adapterProcess implements spec.md §6's message_adaptor(fn) -> typed ref:
// a Process that applies fn to every message told to it and forwards the
// result to target.
type adapterProcess struct {
	target *PID
	fn     func(interface{}) interface{}
}

func (a *adapterProcess) SendUserMessage(pid *PID, envelope Envelope) {
	a.target.TellFrom(a.fn(envelope.Message), envelope.Sender)
}
func (a *adapterProcess) SendSystemMessage(pid *PID, kind interface{}) {}

// --- Process (cell as a PID's backing ref) ---

func (c *cell) SendUserMessage(pid *PID, envelope Envelope) {
	if err := c.mailbox.DispatchUserMessage(envelope); err != nil {
		c.system.DeadLetter.Tell(DeadLetter{Message: envelope.Message, Sender: envelope.Sender, Recipient: pid})
	}
}

func (c *cell) SendSystemMessage(pid *PID, kind interface{}) {
	c.mailbox.DispatchSystemMessage(kind)
}

// --- cellInvoker (Mailbox -> cell) ---

// invoke implements invoke(envelope), per spec.md §4.4.
func (c *cell) invoke(envelope Envelope) {
	if c.state == stateStopped {
		return
	}
	c.messageOrEnvelope = envelope.Message
	c.currentSender = envelope.Sender

	influence := true
	if c.receiveTimeout > 0 {
		if _, ok := envelope.Message.(NotInfluenceReceiveTimeout); ok {
			influence = false
		}
		if influence {
			c.stopReceiveTimeoutTimer()
		}
	}

	c.processMessage(envelope.Message)

	if c.receiveTimeout > 0 && influence {
		if c.receiveTimeoutTimer != nil {
			c.receiveTimeoutTimer.Reset(c.receiveTimeout)
		}
	}

	c.messageOrEnvelope = nil
	c.currentSender = nil
}

func (c *cell) processMessage(m interface{}) {
	defer func() {
		if r := recover(); r != nil {
			c.handleInvokeFailure(toError(r), nil)
		}
	}()
	if c.actor == nil {
		clog.Warn("message delivered before actor incarnated", log.Message(m))
		return
	}
	c.actor.Receive(c)
}

// handleInvokeFailure implements spec.md §4.6: suspend self, identify the
// perpetrator, suspend non-exempt children, and escalate Failed to the
// parent (or, at the root, log the error and resume since there is
// nowhere left to escalate).
func (c *cell) handleInvokeFailure(err error, perp *PID) {
	if !c.fault.isFailed() {
		c.mailbox.Suspend()
		c.failureMessage = c.messageOrEnvelope
	}
	skip := NewPIDSet()
	if perp != nil {
		skip.Add(perp)
	} else {
		perp = c.self
	}
	c.fault.setFailed(perp)
	c.suspendChildrenExcept(skip)

	if c.parent != nil {
		c.parent.sendSystemMessage(&Failed{Child: c.self, Error: err, ChildUID: c.self.Path().UID()})
		return
	}
	clog.Error("root actor failed with no parent to escalate to; resuming", log.Error(err))
	c.mailbox.Resume()
	c.fault.clear()
}

func (c *cell) suspendChildrenExcept(skip *PIDSet) {
	for _, ref := range c.children.LiveChildren() {
		found := false
		skip.ForEach(func(p *PID) {
			if p.Equal(ref) {
				found = true
			}
		})
		if !found {
			ref.Suspend()
		}
	}
}

// systemInvoke implements system_invoke(kind), per spec.md §4.4.
func (c *cell) systemInvoke(kind interface{}) {
	switch msg := kind.(type) {
	case *Create:
		c.handleCreate(msg)
	case *Recreate:
		c.handleRecreate(msg)
	case *Suspend:
		c.handleSuspend()
	case *Resume:
		c.handleResume(msg)
	case *Terminate:
		c.handleTerminate()
	case *Supervise:
		c.handleSupervise(msg)
	case *Watch:
		c.handleWatch(msg)
	case *Unwatch:
		c.handleUnwatch(msg)
	case *Failed:
		c.handleFailed(msg)
	case *DeathWatchNotification:
		c.handleDeathWatchNotification(msg)
	default:
		clog.Error("unknown system message", log.Message(kind))
	}
}

func (c *cell) handleCreate(msg *Create) {
	if msg.Failure != nil {
		c.fault.setFailedFatally()
		c.escalateInitFailure(msg.Failure)
		return
	}
	c.incarnateActor()
}

func (c *cell) incarnateActor() {
	defer func() {
		if r := recover(); r != nil {
			c.actor = nil
			c.fault.setFailedFatally()
			c.escalateInitFailure(toError(r))
		}
	}()
	c.actor = c.props.producer()
	c.state = stateAlive
	if hook, ok := c.actor.(PreStarter); ok {
		hook.PreStart(c)
	}
}

func (c *cell) escalateInitFailure(err error) {
	if c.parent != nil {
		c.parent.sendSystemMessage(&Failed{Child: c.self, Error: err, ChildUID: c.self.Path().UID()})
		return
	}
	clog.Error("root actor failed to initialize", log.Error(err))
}

func (c *cell) handleRecreate(msg *Recreate) {
	if c.actor == nil {
		c.handleCreate(&Create{})
		return
	}
	if !c.children.IsNormal() {
		return
	}
	c.state = stateRestarting
	if hook, ok := c.actor.(PreRestarter); ok {
		hook.PreRestart(c, msg.Cause, c.failureMessage)
	}
	c.failureMessage = nil
	c.messageOrEnvelope = nil
	c.currentSender = nil
	c.actor = nil

	refs := c.children.StopAllForRecreate(msg.Cause)
	if len(refs) == 0 {
		c.finishRecreate(msg.Cause)
		return
	}
	c.pendingRecreate = true
	c.pendingRecreateCause = msg.Cause
	for _, ref := range refs {
		ref.Stop()
	}
}

func (c *cell) finishRecreate(cause error) {
	c.fault.clear()
	c.incarnateActor()
	c.mailbox.Resume()
	c.unstash()
}

func (c *cell) handleSuspend() {
	c.mailbox.Suspend()
	for _, child := range c.children.LiveChildren() {
		child.Suspend()
	}
}

func (c *cell) handleResume(msg *Resume) {
	if c.actor == nil {
		c.handleCreate(&Create{})
		return
	}
	if c.fault.kind == failedFatally && msg.CausedBy != nil {
		c.handleRecreate(&Recreate{Cause: msg.CausedBy})
		return
	}
	perp := c.fault.perpetratorRef()
	c.mailbox.Resume()
	c.fault.clear()
	for _, child := range c.children.LiveChildren() {
		if perp != nil && child.Equal(perp) {
			child.Resume(msg.CausedBy)
		} else {
			child.Resume(nil)
		}
	}
}

func (c *cell) handleTerminate() {
	if c.state == stateStopping || c.state == stateStopped {
		return
	}
	c.state = stateStopping
	refs := c.children.StopAllForTermination()
	for _, ref := range refs {
		ref.Stop()
	}
	c.tryFinishTerminate()
}

func (c *cell) tryFinishTerminate() {
	if c.children.HasLiveChildren() {
		return
	}
	c.cancelReceiveTimeoutTimer()
	if c.actor != nil {
		if hook, ok := c.actor.(PostStopper); ok {
			hook.PostStop(c)
		}
	}
	c.actor = nil
	c.state = stateStopped
	c.mailbox.BecomeClosed()
	c.system.registry.remove(c.self.Path().String())

	notif := &DeathWatchNotification{Actor: c.self, Existed: true}
	c.watchers.ForEach(func(w *PID) { w.sendSystemMessage(notif) })
	if c.parent != nil {
		c.parent.sendSystemMessage(notif)
	}
}

func (c *cell) handleSupervise(msg *Supervise) {
	if c.children.IsTerminated() {
		return
	}
	c.children.InitChild(msg.Child)
}

func (c *cell) handleWatch(msg *Watch) {
	if c.state == stateStopping || c.state == stateStopped {
		msg.Watcher.sendSystemMessage(&DeathWatchNotification{Actor: c.self, Existed: true})
		return
	}
	c.watchers.Add(msg.Watcher)
}

func (c *cell) handleUnwatch(msg *Unwatch) {
	c.watchers.Remove(msg.Watcher)
}

func (c *cell) handleFailed(msg *Failed) {
	defer func() {
		if r := recover(); r != nil {
			c.handleInvokeFailure(toError(r), msg.Child)
		}
	}()
	c.fault.setFailed(msg.Child)
	stats := c.children.Stats(msg.Child.Path().Name())
	if stats == nil {
		stats = NewRestartStatistics()
	}
	stats.Fail(time.Now(), defaultRestartWindow)

	strategy := c.props.supervisor
	if strategy == nil {
		strategy = DefaultSupervisorStrategy
	}
	switch strategy.Decide(msg.Error, stats) {
	case DirectiveResume:
		msg.Child.Resume(msg.Error)
		c.fault.clear()
	case DirectiveRestart:
		msg.Child.sendSystemMessage(&Recreate{Cause: msg.Error})
		c.fault.clear()
	case DirectiveStop:
		c.Stop(msg.Child)
		c.fault.clear()
	case DirectiveEscalate:
		if c.parent != nil {
			c.parent.sendSystemMessage(&Failed{Child: c.self, Error: msg.Error, ChildUID: msg.ChildUID})
			return
		}
		clog.Error("unhandled escalated failure at root; resuming child", log.Error(msg.Error))
		msg.Child.Resume(msg.Error)
		c.fault.clear()
	}
}

func (c *cell) handleDeathWatchNotification(msg *DeathWatchNotification) {
	if c.children.has(msg.Actor.Path().Name()) {
		c.children.Remove(msg.Actor)
		c.afterChildRemoved()
		return
	}
	// Not our child: deliver as a user-visible signal to whatever actor
	// is watching an unrelated PID.
	c.invoke(Envelope{Message: msg, Sender: msg.Actor})
}

func (c *cell) afterChildRemoved() {
	if c.children.HasLiveChildren() {
		return
	}
	switch c.state {
	case stateStopping:
		c.tryFinishTerminate()
	default:
		if c.pendingRecreate {
			cause := c.pendingRecreateCause
			c.pendingRecreate = false
			c.pendingRecreateCause = nil
			c.finishRecreate(cause)
		}
	}
}
