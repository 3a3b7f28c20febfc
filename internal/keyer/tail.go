package keyer

import "time"

// checkPTTTail drops PTT after the hang interval. Manual sending hangs for
// a speed-scaled word space so PTT holds between words; automatic sending
// uses the fixed tail.
func (k *Keyer) checkPTTTail() {
	if k.keyDown {
		k.pttTime = k.now()
		return
	}
	if !k.pttActive || k.manualPTT {
		return
	}

	elapsed := k.now() - k.pttTime
	if k.lastOrigin == OriginManual {
		if elapsed >= k.manualHang() {
			k.deactivatePTT()
		}
		return
	}
	if elapsed > k.timing.PTTTail {
		k.deactivatePTT()
	}
}

// manualHang is word_space × hang_units × one dit at the current speed.
func (k *Keyer) manualHang() time.Duration {
	units := float64(k.settings.WordSpace) * k.timing.HangUnits
	return time.Duration(units * float64(unitDuration(k.settings.WPM)))
}
