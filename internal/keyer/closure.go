package keyer

// ClosureState tracks which paddle closed most recently in ultimatic
// normal mode. It survives across ticks.
type ClosureState int

const (
	NoClosure ClosureState = iota
	DitClosedDahOff
	DahClosedDitOff
	// DitClosedDahOn: dit closed last while dah was already held.
	DitClosedDahOn
	// DahClosedDitOn: dah closed last while dit was already held.
	DahClosedDitOn
)

func (c ClosureState) String() string {
	switch c {
	case NoClosure:
		return "NO_CLOSURE"
	case DitClosedDahOff:
		return "DIT_CLOSED_DAH_OFF"
	case DahClosedDitOff:
		return "DAH_CLOSED_DIT_OFF"
	case DitClosedDahOn:
		return "DIT_CLOSED_DAH_ON"
	case DahClosedDitOn:
		return "DAH_CLOSED_DIT_ON"
	}
	return "UNKNOWN"
}

// nextClosure is the ultimatic-normal transition function. dit and dah are
// the latch states after sampling. It returns the next state and which
// latch, if any, must be cleared so the paddle closed last wins.
//
// A simultaneous closure from NoClosure resolves to dit.
func nextClosure(s ClosureState, dit, dah bool) (next ClosureState, clearDit, clearDah bool) {
	switch s {
	case NoClosure:
		switch {
		case dit && dah:
			return DitClosedDahOn, false, true
		case dit:
			return DitClosedDahOff, false, false
		case dah:
			return DahClosedDitOff, false, false
		}
		return NoClosure, false, false

	case DitClosedDahOff:
		switch {
		case dah && dit:
			return DahClosedDitOn, true, false
		case dah:
			return DahClosedDitOff, false, false
		case !dit:
			return NoClosure, false, false
		}
		return s, false, false

	case DahClosedDitOff:
		switch {
		case dit && dah:
			return DitClosedDahOn, false, true
		case dit:
			return DitClosedDahOff, false, false
		case !dah:
			return NoClosure, false, false
		}
		return s, false, false

	case DitClosedDahOn:
		switch {
		case dit && dah:
			return s, false, true
		case dit:
			return DitClosedDahOff, false, false
		case dah:
			return DahClosedDitOff, false, false
		}
		return NoClosure, false, false

	case DahClosedDitOn:
		switch {
		case dah && dit:
			return s, true, false
		case dah:
			return DahClosedDitOff, false, false
		case dit:
			return DitClosedDahOff, false, false
		}
		return NoClosure, false, false
	}
	return NoClosure, false, false
}

// priorityClear resolves a squeeze in the ultimatic priority sub-modes by
// naming the latch to drop.
func priorityClear(p UltimaticPriority, dit, dah bool) (clearDit, clearDah bool) {
	if !dit || !dah {
		return false, false
	}
	if p == UltimaticDitPriority {
		return false, true
	}
	return true, false
}
