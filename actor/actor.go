package actor

// Actor is the user-supplied message handler: a unit of concurrent
// computation with private state, per spec.md's GLOSSARY.
type Actor interface {
	Receive(ctx Context)
}

// Producer constructs a fresh Actor instance. Called once at Create and
// again at every Recreate, so a new incarnation never shares state with
// the one it replaces.
type Producer func() Actor

// NotInfluenceReceiveTimeout is a marker interface: messages implementing
// it do not reset a pending receive-timeout, mirroring the teacher's
// InvokeUserMessage check (`md.(NotInfluenceReceiveTimeout)`).
type NotInfluenceReceiveTimeout interface {
	notInfluenceReceiveTimeout()
}
