package actor

import (
	"fmt"
	"sort"

	"go.uber.org/atomic"
)

// reasonKind classifies why a Terminating container (or a suspended child)
// entered that state, per spec.md §3's SuspendReason and §4.5's
// Terminating.reason.
type reasonKind int

const (
	reasonUserRequest reasonKind = iota
	reasonRecreation
	reasonCreation
	reasonTermination
)

// terminationReason pairs a reasonKind with an optional cause, covering
// SuspendReason's Recreation(cause) variant.
type terminationReason struct {
	kind  reasonKind
	cause error
}

var reasonUser = terminationReason{kind: reasonUserRequest}
var reasonTerm = terminationReason{kind: reasonTermination}

func reasonRecreate(cause error) terminationReason {
	return terminationReason{kind: reasonRecreation, cause: cause}
}

// childKind distinguishes ChildNameReserved from ChildRestartStats.
type childKind int

const (
	childReserved childKind = iota
	childLive
)

// childSlot is ChildState from spec.md §3.
type childSlot struct {
	kind  childKind
	ref   *PID // non-nil only when kind == childLive
	stats *RestartStatistics
}

// childrenKind tags which arm of the Children FSM (spec.md §4.5) a value
// occupies.
type childrenKind int

const (
	childrenEmpty childrenKind = iota
	childrenNormal
	childrenTerminating
	childrenTerminated
)

// childrenState is the immutable value behind the Children COW container.
// Every transition produces a new value; nothing here is ever mutated in
// place once published, per spec.md §4.5/§9.
type childrenState struct {
	kind     childrenKind
	children map[string]childSlot
	toDie    map[string]*PID
	reason   terminationReason
}

func emptyChildrenState() *childrenState {
	return &childrenState{kind: childrenEmpty}
}

func (s *childrenState) isNormal() bool {
	return s.kind == childrenEmpty || s.kind == childrenNormal ||
		(s.kind == childrenTerminating && s.reason.kind == reasonUserRequest)
}

func (s *childrenState) isTerminating() bool {
	return s.kind == childrenTerminated || (s.kind == childrenTerminating && s.reason.kind == reasonTermination)
}

func (s *childrenState) cloneChildren() map[string]childSlot {
	out := make(map[string]childSlot, len(s.children))
	for k, v := range s.children {
		out[k] = v
	}
	return out
}

func (s *childrenState) cloneToDie() map[string]*PID {
	out := make(map[string]*PID, len(s.toDie))
	for k, v := range s.toDie {
		out[k] = v
	}
	return out
}

// reserve implements Children's reserve_child(name) transition.
func (s *childrenState) reserve(name string) *childrenState {
	switch s.kind {
	case childrenEmpty:
		return &childrenState{kind: childrenNormal, children: map[string]childSlot{name: {kind: childReserved}}}
	case childrenNormal:
		if _, exists := s.children[name]; exists {
			panic(fmt.Errorf("actor: child name already reserved: %s", name))
		}
		next := s.cloneChildren()
		next[name] = childSlot{kind: childReserved}
		return &childrenState{kind: childrenNormal, children: next}
	case childrenTerminating:
		if s.reason.kind == reasonTermination {
			panic(fmt.Errorf("actor: cannot reserve child %s while terminating", name))
		}
		if _, exists := s.children[name]; exists {
			panic(fmt.Errorf("actor: child name already reserved: %s", name))
		}
		next := s.cloneChildren()
		next[name] = childSlot{kind: childReserved}
		return &childrenState{kind: childrenTerminating, children: next, toDie: s.toDie, reason: s.reason}
	default: // childrenTerminated
		panic(fmt.Errorf("actor: cannot reserve child %s: children terminated", name))
	}
}

// initChild promotes a ChildNameReserved slot to ChildRestartStats.
func (s *childrenState) initChild(ref *PID) *childrenState {
	name := ref.Path().Name()
	slot, exists := s.children[name]
	if !exists || slot.kind != childReserved {
		return s
	}
	next := s.cloneChildren()
	next[name] = childSlot{kind: childLive, ref: ref, stats: NewRestartStatistics()}
	cp := *s
	cp.children = next
	return &cp
}

// shallDie implements shall_die(ref): Normal -> Terminating, or append to
// an existing Terminating's to_die set.
func (s *childrenState) shallDie(ref *PID) *childrenState {
	name := ref.Path().Name()
	switch s.kind {
	case childrenNormal:
		next := s.cloneChildren()
		return &childrenState{
			kind:     childrenTerminating,
			children: next,
			toDie:    map[string]*PID{name: ref},
			reason:   reasonUser,
		}
	case childrenTerminating:
		toDie := s.cloneToDie()
		toDie[name] = ref
		return &childrenState{kind: childrenTerminating, children: s.cloneChildren(), toDie: toDie, reason: s.reason}
	default:
		return s
	}
}

// remove implements Terminating.remove(ref) and Normal's plain child
// removal (treated as an immediate shallDie+remove when to_die would be
// empty either way).
func (s *childrenState) remove(ref *PID) *childrenState {
	name := ref.Path().Name()
	switch s.kind {
	case childrenNormal:
		next := s.cloneChildren()
		delete(next, name)
		if len(next) == 0 {
			return emptyChildrenState()
		}
		return &childrenState{kind: childrenNormal, children: next}
	case childrenTerminating:
		children := s.cloneChildren()
		delete(children, name)
		toDie := s.cloneToDie()
		delete(toDie, name)
		if len(toDie) == 0 {
			if s.reason.kind == reasonTermination {
				return &childrenState{kind: childrenTerminated}
			}
			if len(children) == 0 {
				return emptyChildrenState()
			}
			return &childrenState{kind: childrenNormal, children: children}
		}
		return &childrenState{kind: childrenTerminating, children: children, toDie: toDie, reason: s.reason}
	default:
		return s
	}
}

// withReason implements set_children_termination_reason: only valid from
// Terminating.
func (s *childrenState) withReason(reason terminationReason) (*childrenState, bool) {
	if s.kind != childrenTerminating {
		return s, false
	}
	return &childrenState{kind: childrenTerminating, children: s.cloneChildren(), toDie: s.cloneToDie(), reason: reason}, true
}

func (s *childrenState) sortedRefs() []*PID {
	names := make([]string, 0, len(s.children))
	for n, slot := range s.children {
		if slot.kind == childLive {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	out := make([]*PID, 0, len(names))
	for _, n := range names {
		out = append(out, s.children[n].ref)
	}
	return out
}

// Children is the atomic, copy-on-write wrapper a Cell holds: every
// mutator CAS-retries against the current snapshot, per spec.md §4.5/§9's
// "hold the container behind a reference-counted pointer ... swap the
// pointer atomically; retry on losing the race."
type Children struct {
	v atomic.Pointer[childrenState]
}

// NewChildren returns an Empty container.
func NewChildren() *Children {
	c := &Children{}
	c.v.Store(emptyChildrenState())
	return c
}

func (c *Children) snapshot() *childrenState { return c.v.Load() }

func (c *Children) swap(old, next *childrenState) bool {
	return c.v.CompareAndSwap(old, next)
}

// ReserveChild reserves name, panicking per spec.md §7 on a name
// collision or a reserve-while-terminating invariant breach.
func (c *Children) ReserveChild(name string) {
	for {
		cur := c.snapshot()
		next := cur.reserve(name) // may panic; that is intentional
		if c.swap(cur, next) {
			return
		}
	}
}

// InitChild promotes ref's reserved slot to a live ChildRestartStats entry.
func (c *Children) InitChild(ref *PID) {
	for {
		cur := c.snapshot()
		next := cur.initChild(ref)
		if next == cur || c.swap(cur, next) {
			return
		}
	}
}

// ShallDie marks ref for termination, transitioning Normal -> Terminating.
func (c *Children) ShallDie(ref *PID) {
	for {
		cur := c.snapshot()
		next := cur.shallDie(ref)
		if next == cur || c.swap(cur, next) {
			return
		}
	}
}

// Remove implements Terminating.remove(ref)/Normal child removal.
func (c *Children) Remove(ref *PID) {
	for {
		cur := c.snapshot()
		next := cur.remove(ref)
		if c.swap(cur, next) {
			return
		}
	}
}

// SetTerminationReason implements set_children_termination_reason; returns
// false if the container is not currently Terminating.
func (c *Children) SetTerminationReason(kind reasonKind, cause error) bool {
	reason := terminationReason{kind: kind, cause: cause}
	for {
		cur := c.snapshot()
		next, ok := cur.withReason(reason)
		if !ok {
			return false
		}
		if c.swap(cur, next) {
			return true
		}
	}
}

func (c *Children) IsEmpty() bool        { return c.snapshot().kind == childrenEmpty }
func (c *Children) IsNormal() bool       { return c.snapshot().isNormal() }
func (c *Children) IsTerminating() bool  { return c.snapshot().isTerminating() }
func (c *Children) IsTerminated() bool   { return c.snapshot().kind == childrenTerminated }
func (c *Children) HasLiveChildren() bool {
	s := c.snapshot()
	for _, slot := range s.children {
		if slot.kind == childLive {
			return true
		}
	}
	return false
}

// LiveChildren returns the current live children, ordered by name.
func (c *Children) LiveChildren() []*PID { return c.snapshot().sortedRefs() }

// Stats returns the RestartStatistics for a live child, or nil.
func (c *Children) Stats(name string) *RestartStatistics {
	slot, ok := c.snapshot().children[name]
	if !ok || slot.kind != childLive {
		return nil
	}
	return slot.stats
}

func (c *Children) has(name string) bool {
	_, ok := c.snapshot().children[name]
	return ok
}

// liveRefs extracts the live *PID values out of a children map.
func liveRefs(children map[string]childSlot) map[string]*PID {
	out := map[string]*PID{}
	for name, slot := range children {
		if slot.kind == childLive {
			out[name] = slot.ref
		}
	}
	return out
}

// StopAllForRecreate implements the Recreate path of spec.md §4.4: when a
// cell is restarting and has live children, transition them into
// Terminating{reason: Recreation(cause)} and return the refs to stop.
// Returns nil if there were no live children (caller should restart
// immediately) or if the container was not Normal to begin with.
func (c *Children) StopAllForRecreate(cause error) []*PID {
	for {
		cur := c.snapshot()
		if cur.kind != childrenNormal {
			return nil
		}
		live := liveRefs(cur.children)
		if len(live) == 0 {
			return nil
		}
		next := &childrenState{kind: childrenTerminating, children: cur.cloneChildren(), toDie: live, reason: reasonRecreate(cause)}
		if c.swap(cur, next) {
			refs := make([]*PID, 0, len(live))
			for _, r := range live {
				refs = append(refs, r)
			}
			return refs
		}
	}
}

// StopAllForTermination implements the Terminate path of spec.md §4.4:
// move every live child into Terminating{reason: Termination} regardless
// of the container's current kind, and return the refs to stop.
func (c *Children) StopAllForTermination() []*PID {
	for {
		cur := c.snapshot()
		switch cur.kind {
		case childrenEmpty:
			if c.swap(cur, &childrenState{kind: childrenTerminated}) {
				return nil
			}
		case childrenNormal:
			live := liveRefs(cur.children)
			if len(live) == 0 {
				if c.swap(cur, &childrenState{kind: childrenTerminated}) {
					return nil
				}
				continue
			}
			next := &childrenState{kind: childrenTerminating, children: cur.cloneChildren(), toDie: live, reason: reasonTerm}
			if c.swap(cur, next) {
				refs := make([]*PID, 0, len(live))
				for _, r := range live {
					refs = append(refs, r)
				}
				return refs
			}
		case childrenTerminating:
			toDie := cur.cloneToDie()
			for name, ref := range liveRefs(cur.children) {
				toDie[name] = ref
			}
			next := &childrenState{kind: childrenTerminating, children: cur.cloneChildren(), toDie: toDie, reason: reasonTerm}
			if c.swap(cur, next) {
				return cur.sortedRefs()
			}
		default: // childrenTerminated
			return nil
		}
	}
}
