package actor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ActorPath is the cons-list path model from spec.md §3: a root segment
// carrying an Address, or a child segment carrying a parent, a name, and a
// uid. Paths are immutable — every mutator returns a new value.
type ActorPath struct {
	address Address
	name    string
	parent  *ActorPath
	uid     uint32
}

// ErrInvalidName reports a segment name that violates spec.md §3's
// character and prefix rules.
var ErrInvalidName = errors.New("actor: invalid path segment name")

// unreservedExtra is the punctuation spec.md §3 allows in a path segment
// besides letters and digits ('%' escapes are checked separately).
const unreservedExtra = "-_.*$+:@&=,!~';"

// ValidateName checks a single path segment per spec.md §3.
func ValidateName(name string) error {
	if name == "" {
		return ErrInvalidName
	}
	if strings.HasPrefix(name, "$") {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, "/#") {
		return ErrInvalidName
	}
	i := 0
	for i < len(name) {
		c := name[i]
		switch {
		case c == '%':
			if i+2 >= len(name) || !isHex(name[i+1]) || !isHex(name[i+2]) {
				return ErrInvalidName
			}
			i += 3
		case isUnreserved(c):
			i++
		default:
			return ErrInvalidName
		}
	}
	return nil
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isUnreserved(c byte) bool {
	if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
		return true
	}
	return strings.IndexByte(unreservedExtra, c) >= 0
}

// RootPath constructs a Root{address, name} path. Panics on an invalid
// name — invariant breaches are programmer error per spec.md §7. An empty
// name is accepted and renders no root segment.
func RootPath(address Address, name string) ActorPath {
	if err := ValidateName(name); err != nil && name != "" {
		panic(fmt.Errorf("actor: root path: %w", err))
	}
	return ActorPath{address: address, name: name}
}

// Child constructs a Child{parent, name, uid} path beneath p. Panics on an
// invalid name.
func (p ActorPath) Child(name string, uid uint32) ActorPath {
	if err := ValidateName(name); err != nil {
		panic(fmt.Errorf("actor: child path %q: %w", name, err))
	}
	parent := p
	return ActorPath{address: p.address, name: name, parent: &parent, uid: uid}
}

// WithUID returns a copy of p with uid replaced.
func (p ActorPath) WithUID(uid uint32) ActorPath {
	p.uid = uid
	return p
}

func (p ActorPath) Name() string    { return p.name }
func (p ActorPath) UID() uint32     { return p.uid }
func (p ActorPath) Address() Address { return p.address }
func (p ActorPath) IsRoot() bool    { return p.parent == nil }

// Parent returns p's parent path and true, or the zero path and false at
// the root.
func (p ActorPath) Parent() (ActorPath, bool) {
	if p.parent == nil {
		return ActorPath{}, false
	}
	return *p.parent, true
}

// segments returns the path's segments from root to leaf (Root first).
func (p ActorPath) segments() []ActorPath {
	var out []ActorPath
	for cur := &p; cur != nil; cur = cur.parent {
		out = append([]ActorPath{*cur}, out...)
	}
	return out
}

// String renders protocol://system[@host[:port]]/seg1/seg2[#uid], per
// spec.md §6.
func (p ActorPath) String() string {
	segs := p.segments()
	var b strings.Builder
	b.WriteString(segs[0].address.String())
	if segs[0].name != "" {
		b.WriteByte('/')
		b.WriteString(segs[0].name)
	}
	for _, s := range segs[1:] {
		b.WriteByte('/')
		b.WriteString(s.name)
	}
	if p.uid != 0 {
		b.WriteByte('#')
		b.WriteString(strconv.FormatUint(uint64(p.uid), 10))
	}
	return b.String()
}

// Equal compares two paths segment-by-segment leaf toward root, per
// spec.md §3; Root < Child when rooted at the same tree, so two paths of
// different depth are never equal even with matching leaf names.
func (p ActorPath) Equal(other ActorPath) bool {
	return p.Compare(other) == 0
}

// Compare orders two paths leaf-to-root; a Root segment compares less than
// a Child segment at the same position.
func (p ActorPath) Compare(other ActorPath) int {
	as := p.segments()
	bs := other.segments()
	for i := 0; i < len(as) && i < len(bs); i++ {
		a, b := as[len(as)-1-i], bs[len(bs)-1-i]
		if a.parent == nil && b.parent != nil {
			return -1
		}
		if a.parent != nil && b.parent == nil {
			return 1
		}
		if a.parent == nil {
			// both roots: compare by full address string, then name
			if c := strings.Compare(a.address.String(), b.address.String()); c != 0 {
				return c
			}
		}
		if c := strings.Compare(a.name, b.name); c != 0 {
			return c
		}
	}
	return len(as) - len(bs)
}

// ParsePath parses protocol://system[@host[:port]]/seg1/seg2[#uid] into an
// ActorPath. The URI grammar lives outside the core per spec.md §1 ("the
// parser for actor-path URIs ... is deliberately out of scope"); this is a
// minimal convenience parser, not a guaranteed-complete implementation of
// that external grammar.
func ParsePath(s string) (ActorPath, error) {
	var uid uint32
	if idx := strings.LastIndexByte(s, '#'); idx >= 0 {
		n, err := strconv.ParseUint(s[idx+1:], 10, 32)
		if err != nil {
			return ActorPath{}, fmt.Errorf("actor: parse path %q: %w", s, err)
		}
		uid = uint32(n)
		s = s[:idx]
	}
	protoIdx := strings.Index(s, "://")
	if protoIdx < 0 {
		return ActorPath{}, fmt.Errorf("actor: parse path %q: missing protocol", s)
	}
	protocol := s[:protoIdx]
	rest := s[protoIdx+3:]
	slash := strings.IndexByte(rest, '/')
	authority := rest
	segmentsStr := ""
	if slash >= 0 {
		authority = rest[:slash]
		segmentsStr = rest[slash+1:]
	}
	system := authority
	host := ""
	port := 0
	if at := strings.IndexByte(authority, '@'); at >= 0 {
		system = authority[:at]
		hostport := authority[at+1:]
		if colon := strings.IndexByte(hostport, ':'); colon >= 0 {
			host = hostport[:colon]
			p, err := strconv.Atoi(hostport[colon+1:])
			if err != nil {
				return ActorPath{}, fmt.Errorf("actor: parse path %q: bad port", s)
			}
			port = p
		} else {
			host = hostport
		}
	}
	if system == "" {
		return ActorPath{}, fmt.Errorf("actor: parse path %q: empty system name", s)
	}
	addr := Address{Protocol: protocol, System: system, Host: host, Port: port}
	path := RootPath(addr, "")
	if segmentsStr == "" {
		return path.WithUID(uid), nil
	}
	for _, seg := range strings.Split(segmentsStr, "/") {
		if seg == "" {
			continue
		}
		path = path.Child(seg, 0)
	}
	return path.WithUID(uid), nil
}
