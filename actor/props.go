package actor

import (
	"time"

	"github.com/j5ik2o/actor-kernel-go/actor/dispatch"
)

// Props configures how an actor is constructed and run — its producer,
// supervisor strategy, mailbox shape, and dispatcher — the way the
// teacher's Props carries producer/supervisor/contextDecoratorChain.
type Props struct {
	producer        Producer
	supervisor      SupervisorStrategy
	mailboxProducer func() *Mailbox
	dispatcher      dispatch.Dispatcher
}

// Option configures a Props at construction time.
type Option func(*Props)

// NewProps builds a Props around producer, defaulting to an unbounded
// mailbox, the escalate-to-parent supervisor, and no dispatcher override
// (the actor system's default dispatcher is used).
func NewProps(producer Producer, opts ...Option) *Props {
	p := &Props{
		producer:        producer,
		supervisor:      EscalateSupervisorStrategy{},
		mailboxProducer: NewUnboundedMailbox,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithSupervisor overrides the default escalate-only strategy.
func WithSupervisor(s SupervisorStrategy) Option {
	return func(p *Props) { p.supervisor = s }
}

// WithBoundedMailbox configures a bounded, blocking-with-timeout mailbox.
func WithBoundedMailbox(capacity int, pushTimeout time.Duration) Option {
	return func(p *Props) {
		p.mailboxProducer = func() *Mailbox {
			return NewBoundedMailbox(capacity, pushTimeout)
		}
	}
}

// WithMailboxProducer sets a fully custom mailbox factory.
func WithMailboxProducer(factory func() *Mailbox) Option {
	return func(p *Props) { p.mailboxProducer = factory }
}

// WithDispatcher pins this actor (and its children, unless they override
// it themselves) to a specific dispatcher rather than the system default:
// a child whose Props set none uses its parent's dispatcher.
func WithDispatcher(d dispatch.Dispatcher) Option {
	return func(p *Props) { p.dispatcher = d }
}
