package actor

import "github.com/emirpasic/gods/sets/hashset"

// PIDSet is an unordered set of *PID, used for a cell's children and
// watchers, mirroring the teacher's actorContextExtras fields
// (`children PIDSet`, `watchers PIDSet`).
type PIDSet struct {
	s *hashset.Set
}

func NewPIDSet() *PIDSet {
	return &PIDSet{s: hashset.New()}
}

func (p *PIDSet) Add(pid *PID)    { p.s.Add(pid) }
func (p *PIDSet) Remove(pid *PID) { p.s.Remove(pid) }
func (p *PIDSet) Len() int        { return p.s.Size() }
func (p *PIDSet) Empty() bool     { return p.s.Empty() }

func (p *PIDSet) ForEach(fn func(pid *PID)) {
	for _, v := range p.s.Values() {
		fn(v.(*PID))
	}
}
