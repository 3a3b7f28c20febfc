package keyer

// setKey drives the key line, PTT and sidetone on a state change. Calls
// that do not change the key state do nothing.
func (k *Keyer) setKey(down bool) {
	switch {
	case down && !k.keyDown:
		if k.txEnabled {
			wasActive := k.pttActive
			k.activatePTT()
			k.write(k.transmitter().Key, true)
			if k.timing.FirstExtension > 0 && !wasActive {
				k.sleep(k.timing.FirstExtension)
			}
		}
		if k.settings.SidetoneMode.sounds() {
			k.toneStart(k.settings.SidetoneHz)
		}
		k.keyDown = true

	case !down && k.keyDown:
		if k.txEnabled {
			k.write(k.transmitter().Key, false)
			k.activatePTT()
		}
		if k.settings.SidetoneMode.sounds() {
			k.toneStop()
		}
		k.keyDown = false
	}
}

// activatePTT raises PTT if needed, waiting out the lead time so the
// amplifier settles before RF, and refreshes the activity timestamp.
func (k *Keyer) activatePTT() {
	if !k.pttActive {
		k.write(k.transmitter().PTT, true)
		k.sleep(k.timing.PTTLead)
		k.pttActive = true
	}
	k.pttTime = k.now()
}

// deactivatePTT lowers PTT unconditionally.
func (k *Keyer) deactivatePTT() {
	k.write(k.transmitter().PTT, false)
	k.pttActive = false
}

// ManualPTT holds PTT up without keying, for example to tune an amplifier.
// The tail monitor leaves a manual hold alone until a paddle is touched or
// ManualPTT(false) is called.
func (k *Keyer) ManualPTT(on bool) {
	if on {
		k.manualPTT = true
		k.activatePTT()
		return
	}
	k.manualPTT = false
	if !k.keyDown {
		k.deactivatePTT()
	}
}

// SetTXEnabled switches between transmitting and practice (sidetone only).
func (k *Keyer) SetTXEnabled(on bool) {
	if on == k.txEnabled {
		return
	}
	if !on && k.keyDown {
		k.write(k.transmitter().Key, false)
	}
	k.txEnabled = on
}

// TXEnabled reports whether the key and PTT lines are being driven.
func (k *Keyer) TXEnabled() bool {
	return k.txEnabled
}

// Release lifts the key and drops PTT. The host calls it on shutdown.
func (k *Keyer) Release() {
	k.setKey(false)
	k.write(k.hw.DitLine, false)
	k.write(k.hw.DahLine, false)
	k.manualPTT = false
	k.deactivatePTT()
}
