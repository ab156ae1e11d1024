package actor

// Process is the receiving end any PID ultimately dispatches to: a local
// actor cell, the dead-letter sink, or a message adapter. Kept as a narrow interface so a PID
// never needs to know which kind of process backs it, the way the teacher
// keeps Context and Actor decoupled through small interfaces.
type Process interface {
	SendUserMessage(pid *PID, envelope Envelope)
	SendSystemMessage(pid *PID, kind interface{})
}
