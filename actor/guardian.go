package actor

import "github.com/j5ik2o/actor-kernel-go/actor/log"

var glog = log.Default.With("guardian")

// guardianActor backs the /user root path. It owns every top-level actor
// as a child and otherwise does nothing; application code never receives
// messages through it directly, only through the children it supervises.
type guardianActor struct{}

func (g *guardianActor) Receive(ctx Context) {
	if _, ok := ctx.Message().(*DeathWatchNotification); ok {
		return
	}
	glog.Warn("message delivered to root guardian", log.Message(ctx.Message()))
}
