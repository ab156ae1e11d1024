package actor

import "time"

// Context is the actor context surface consumed by user actors, per
// spec.md §6, generalized from the teacher's Context/actorContext split.
type Context interface {
	Self() *PID
	Parent() *PID
	Message() interface{}
	Sender() *PID
	Children() []*PID

	Send(pid *PID, message interface{})
	Request(pid *PID, message interface{})
	Respond(response interface{})
	Forward(pid *PID)

	Spawn(props *Props) *PID
	SpawnNamed(props *Props, name string) (*PID, error)
	Stop(pid *PID)

	Watch(pid *PID)
	Unwatch(pid *PID)

	SetReceiveTimeout(d time.Duration, message interface{})
	CancelReceiveTimeout()

	Stash()

	// MessageAdapter returns a PID that, when told any message, applies fn
	// to it and forwards the result to Self(). Supplemented from
	// spec.md §6's message_adaptor(fn) -> typed ref.
	MessageAdapter(fn func(interface{}) interface{}) *PID
}
