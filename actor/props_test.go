package actor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPropsDefaultsToEscalateAndUnboundedMailbox(t *testing.T) {
	p := NewProps(func() Actor { return &loggingActor{} })
	assert.IsType(t, EscalateSupervisorStrategy{}, p.supervisor)

	mb := p.mailboxProducer()
	assert.NotNil(t, mb)
	assert.Nil(t, mb.dispatcher, "mailbox is not yet wired to a dispatcher until initialize")
}

func TestWithSupervisorOverridesDefault(t *testing.T) {
	strat := RestartingSupervisorStrategy{MaxRetries: 3}
	p := NewProps(func() Actor { return &loggingActor{} }, WithSupervisor(strat))
	assert.Equal(t, strat, p.supervisor)
}

func TestWithBoundedMailboxProducesBoundedMailbox(t *testing.T) {
	p := NewProps(func() Actor { return &loggingActor{} }, WithBoundedMailbox(2, 10*time.Millisecond))
	mb := p.mailboxProducer()
	assert.NotNil(t, mb.userQueue)
}

func TestWithMailboxProducerUsesCustomFactory(t *testing.T) {
	called := false
	p := NewProps(func() Actor { return &loggingActor{} }, WithMailboxProducer(func() *Mailbox {
		called = true
		return NewUnboundedMailbox()
	}))
	p.mailboxProducer()
	assert.True(t, called)
}
