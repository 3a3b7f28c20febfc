package keyer

import "time"

// elementLength converts dit units plus a millisecond offset into a wait.
func elementLength(units, additionalMs float64, wpm int) time.Duration {
	unit := unitDuration(wpm)
	return time.Duration(float64(unit)*units) + time.Duration(additionalMs*float64(time.Millisecond))
}

// waitElement holds the current key state for units dit lengths plus
// additionalMs. It busy-waits on the clock, and while waiting peeks at the
// paddle opposite the element being sent so a squeeze queues the next
// element before this one ends. There is no early exit.
func (k *Keyer) waitElement(units, additionalMs float64, wpm int) {
	if units <= 0 {
		return
	}
	length := elementLength(units, additionalMs, wpm)
	if length <= 0 || k.hw.Clock == nil {
		return
	}

	mode := k.settings.Mode
	start := k.hw.Clock.Now()
	// Compare elapsed time rather than an absolute deadline so a clock
	// epoch near its limit cannot cut the wait short.
	for k.hw.Clock.Now()-start < length {
		if mode == ModeUltimatic {
			continue
		}
		dit, dah := k.readPaddles()
		if mode == ModeIambicA && dit && dah {
			k.squeeze = true
		}
		switch k.sending {
		case ElementDit:
			if dah {
				k.dahBuffer = true
				k.manualPTT = false
			}
		case ElementDah:
			if dit {
				k.ditBuffer = true
				k.manualPTT = false
			}
		}
	}

	k.suppressIambicA()
}

// suppressIambicA drops any queued element once both paddles are released
// after a squeeze. This is the only difference between iambic A and B.
func (k *Keyer) suppressIambicA() bool {
	if k.settings.Mode != ModeIambicA || !k.squeeze {
		return false
	}
	dit, dah := k.readPaddles()
	if dit || dah {
		return false
	}
	k.squeeze = false
	k.ditBuffer = false
	k.dahBuffer = false
	return true
}
