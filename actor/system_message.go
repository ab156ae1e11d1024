package actor

import "github.com/j5ik2o/actor-kernel-go/actor/syslist"

// System message kinds, per spec.md §3's
// kind ∈ {Create, Recreate, Suspend, Resume, Terminate, Supervise, Watch,
// NoMessage, Failed, DeathWatchNotification}, generalized from the
// teacher's typed-struct + type-switch idiom (actor_context.go's
// InvokeSystemMessage dispatches on *Stop/*Restart/*Terminated/*Failure).

// Create is always the first system message a new cell observes. Failure,
// if set, means the cell never got to run its producer — this Create is
// itself reporting an upstream initialization failure.
type Create struct {
	Failure error
}

// Recreate asks the cell to discard its current actor instance (if any)
// and build a fresh one, calling PreRestart on the outgoing instance first.
// There is no post-restart hook.
type Recreate struct {
	Cause error
}

// Suspend stops user-message processing (but not system-message
// processing) until a matching Resume.
type Suspend struct{}

// Resume reverses one Suspend. CausedBy, if set, identifies the failure
// that is being resumed past (relevant only to the perpetrator child).
type Resume struct {
	CausedBy error
}

// Terminate asks the cell to stop: cascade to children, run post_stop,
// close the mailbox.
type Terminate struct{}

// Supervise promotes a reserved child-name slot to a live child once the
// child cell has been constructed. Async is carried for parity with the
// spec's data model; this implementation always completes synchronously
// within systemInvoke.
type Supervise struct {
	Child *PID
	Async bool
}

// Watch registers watcher to receive a DeathWatchNotification when this
// actor terminates. Supplemented from the teacher's handleWatch/handleUnwatch.
type Watch struct {
	Watcher *PID
}

// Unwatch reverses a Watch. Not named in spec.md's kind enum but required
// to make Watch useful; see DESIGN.md.
type Unwatch struct {
	Watcher *PID
}

// Failed is escalated to a parent when a child's invoke or system_invoke
// fails. ChildUID disambiguates the child's incarnation.
type Failed struct {
	Child    *PID
	Error    error
	ChildUID uint32
}

// DeathWatchNotification is delivered to watchers when a watched actor
// terminates.
type DeathWatchNotification struct {
	Actor             *PID
	Existed           bool
	AddressTerminated bool
}

// noMessageKind is the sealed-list sentinel kind, reusing syslist's marker
// value so mailbox code can compare directly against syslist.NoMessage.
var noMessageKind = syslist.NoMessage
