package actor

// PID is a typed handle to an actor: its path plus a direct reference to
// the backing Process. Keeping the Process pointer on the PID itself
// (rather than always resolving through the registry) is the same
// optimization the teacher's real *PID makes for local actors; the
// registry still exists for path-based lookup (ActorSystem.lookup, used
// for diagnostics).
type PID struct {
	path ActorPath
	ref  Process
}

// NewPID pairs a path with the Process that will actually receive
// messages sent to it.
func NewPID(path ActorPath, ref Process) *PID {
	return &PID{path: path, ref: ref}
}

// Path returns the actor's path, per spec.md §6.
func (p *PID) Path() ActorPath { return p.path }

// Tell is fire-and-forget delivery, per spec.md §6.
func (p *PID) Tell(message interface{}) {
	p.TellFrom(message, nil)
}

// TellFrom delivers message with an explicit sender, used by Context.Send.
func (p *PID) TellFrom(message interface{}, sender *PID) {
	if p == nil || p.ref == nil {
		return
	}
	p.ref.SendUserMessage(p, Envelope{Message: message, Sender: sender})
}

// Start sends the Create system message, on which the cell builds an actor
// instance from its Props producer. (SpawnNamed enqueues a new cell's
// first Create directly; a restart builds the fresh instance without one.)
func (p *PID) Start() {
	p.sendSystemMessage(&Create{})
}

// Stop sends Terminate, per spec.md §6.
func (p *PID) Stop() {
	p.sendSystemMessage(&Terminate{})
}

// Suspend sends Suspend, per spec.md §6.
func (p *PID) Suspend() {
	p.sendSystemMessage(&Suspend{})
}

// Resume sends Resume, optionally carrying the error that triggered the
// suspend in the first place, per spec.md §6.
func (p *PID) Resume(causedBy error) {
	p.sendSystemMessage(&Resume{CausedBy: causedBy})
}

func (p *PID) sendSystemMessage(kind interface{}) {
	if p == nil || p.ref == nil {
		return
	}
	p.ref.SendSystemMessage(p, kind)
}

func (p *PID) String() string {
	if p == nil {
		return "<nil>"
	}
	return p.path.String()
}

// Equal compares PIDs by path, the identifier spec.md treats as canonical.
func (p *PID) Equal(other *PID) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.path.Equal(other.path)
}
