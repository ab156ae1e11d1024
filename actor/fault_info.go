package actor

// failedInfoKind is the three-variant tagged union from spec.md §3/§9:
// FailedInfo ∈ {NoFailedInfo, FailedRef(perp), FailedFatally}.
type failedInfoKind int

const (
	noFailedInfo failedInfoKind = iota
	failedRef
	failedFatally
)

// faultInfo is a cell's own fault-tracking state: whether (and how) it is
// currently failed, and which child (if any) is held responsible.
type faultInfo struct {
	kind        failedInfoKind
	perpetrator *PID
}

// setFailed records that self has failed because of perp (or, if perp is
// nil, that self itself is the cause). FailedFatally is sticky: once set,
// further setFailed calls are no-ops, per spec.md §3 ("FailedFatally is
// sticky: set_failed(x) on FailedFatally stays FailedFatally").
func (f *faultInfo) setFailed(perp *PID) {
	if f.kind == failedFatally {
		return
	}
	f.kind = failedRef
	f.perpetrator = perp
}

// setFailedFatally marks self as fatally failed — no perpetrator, and no
// future setFailed call can undo it.
func (f *faultInfo) setFailedFatally() {
	f.kind = failedFatally
	f.perpetrator = nil
}

func (f *faultInfo) clear() {
	f.kind = noFailedInfo
	f.perpetrator = nil
}

func (f *faultInfo) isFailed() bool { return f.kind != noFailedInfo }

// perpetratorRef is a pure projection, per spec.md §9.
func (f *faultInfo) perpetratorRef() *PID {
	if f.kind == failedRef {
		return f.perpetrator
	}
	return nil
}
