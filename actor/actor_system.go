package actor

import (
	"github.com/rs/xid"

	"github.com/j5ik2o/actor-kernel-go/actor/dispatch"
	"github.com/j5ik2o/actor-kernel-go/actor/log"
)

var syslog = log.Default.With("system")

// systemConfig collects SystemOption settings before NewActorSystem builds
// the root guardian and default dispatcher from them.
type systemConfig struct {
	protocol         string
	dispatcherConfig dispatch.Config
	guardianProps    *Props
}

// SystemOption configures an ActorSystem at construction time, the way
// Option configures a Props.
type SystemOption func(*systemConfig)

// WithProtocol overrides the "actor" default protocol tag in the system's
// root Address.
func WithProtocol(protocol string) SystemOption {
	return func(c *systemConfig) { c.protocol = protocol }
}

// WithDispatcherConfig overrides the system's default dispatcher config.
func WithDispatcherConfig(cfg dispatch.Config) SystemOption {
	return func(c *systemConfig) { c.dispatcherConfig = cfg }
}

// WithGuardianProps overrides the Props used to build the /user root
// guardian, e.g. to install a non-default supervisor strategy for every
// top-level actor.
func WithGuardianProps(props *Props) SystemOption {
	return func(c *systemConfig) { c.guardianProps = props }
}

// ActorSystem is C8's top-level owner: the shared dispatcher, the
// dead-letter sink, the process registry, and the /user root guardian that
// every application actor is spawned beneath.
type ActorSystem struct {
	Address    Address
	DeadLetter *PID

	dispatcher dispatch.Dispatcher
	registry   *processRegistry

	root     *PID
	rootCell *cell
}

// NewActorSystem builds a ready-to-use system: constructs the dead-letter
// sink, the dispatcher, and the /user root guardian, then enqueues the
// guardian's own Create and schedules it on the dispatcher. The guardian's
// actor instance is built asynchronously; NewActorSystem does not wait for it.
func NewActorSystem(systemName string, opts ...SystemOption) *ActorSystem {
	cfg := systemConfig{
		protocol:         "actor",
		dispatcherConfig: dispatch.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.guardianProps == nil {
		cfg.guardianProps = NewProps(func() Actor { return &guardianActor{} }, WithSupervisor(DefaultSupervisorStrategy))
	}

	addr := NewLocalAddress(cfg.protocol, systemName)
	sys := &ActorSystem{
		Address:    addr,
		registry:   newProcessRegistry(),
		dispatcher: dispatch.New(cfg.dispatcherConfig),
	}

	dl := newDeadLetterProcess()
	sys.DeadLetter = NewPID(RootPath(addr, "dead-letters"), dl)

	rootPath := RootPath(addr, "user")
	rootCell := newCell(sys, cfg.guardianProps, nil)
	rootPID := NewPID(rootPath, rootCell)
	rootCell.self = rootPID

	mb := cfg.guardianProps.mailboxProducer()
	mb.initialize(rootCell, rootPID, sys.DeadLetter, sys.dispatcher)
	rootCell.mailbox = mb

	sys.root = rootPID
	sys.rootCell = rootCell
	sys.registry.put(rootPath.String(), rootCell)

	mb.SystemEnqueue(&Create{})
	mb.Attach()

	syslog.Info("actor system started", log.String("system", systemName))
	return sys
}

// Root returns the /user guardian PID every top-level actor is spawned
// beneath.
func (s *ActorSystem) Root() *PID { return s.root }

// Spawn creates a top-level actor under an anonymous, system-generated
// name.
func (s *ActorSystem) Spawn(props *Props) *PID {
	pid, err := s.rootCell.SpawnNamed(props, s.nextAnonymousName())
	if err != nil {
		panic(err)
	}
	return pid
}

// SpawnNamed creates a top-level actor under an explicit name, failing if
// it collides with an existing top-level child.
func (s *ActorSystem) SpawnNamed(props *Props, name string) (*PID, error) {
	return s.rootCell.SpawnNamed(props, name)
}

// lookup resolves a path to its live cell, for diagnostics. Returns false
// if nothing is currently registered there.
func (s *ActorSystem) lookup(path string) (*cell, bool) {
	return s.registry.get(path)
}

func (s *ActorSystem) nextAnonymousName() string {
	return "anon" + xid.New().String()
}

// Shutdown stops the root guardian (cascading Terminate through every
// live actor) and blocks until the dispatcher has drained every run it
// scheduled along the way.
func (s *ActorSystem) Shutdown() {
	s.root.Stop()
	s.dispatcher.Join()
}
