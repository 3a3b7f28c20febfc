package keyer

// service is the element sequencer, run once per tick.
func (k *Keyer) service() {
	switch k.settings.Mode {
	case ModeIambicA, ModeIambicB, ModeUltimatic:
		if k.suppressIambicA() {
			return
		}
		if k.ditBuffer {
			k.ditBuffer = false
			k.sendDit(OriginManual)
		}
		if k.dahBuffer {
			k.dahBuffer = false
			k.sendDah(OriginManual)
		}

	case ModeBug:
		if k.ditBuffer {
			k.ditBuffer = false
			k.sendDit(OriginManual)
		}
		// The operator times the dah by hand.
		if k.dahBuffer {
			k.dahBuffer = false
			k.lastOrigin = OriginManual
			k.setKey(true)
		} else {
			k.setKey(false)
		}

	case ModeStraight:
		if k.ditBuffer {
			k.ditBuffer = false
			k.lastOrigin = OriginManual
			k.setKey(true)
		} else {
			k.setKey(false)
		}
	}
}

// sendDit sends one timed dit and its trailing element space.
func (k *Keyer) sendDit(origin Origin) {
	weight := float64(k.settings.Weighting) / 50
	k.sendElement(ElementDit, origin, 1.0*weight, 2.0-weight, k.hw.DitLine)
}

// sendDah sends one timed dah and its trailing element space.
func (k *Keyer) sendDah(origin Origin) {
	weight := float64(k.settings.Weighting) / 50
	ratio := float64(k.settings.DahRatio) / 100
	k.sendElement(ElementDah, origin, ratio*weight, 4.0-3.0*weight, k.hw.DahLine)
}

// sendElement keys mark units down and space units up. Compensation
// lengthens the mark and shortens the space by the same amount so the
// element period is unchanged.
func (k *Keyer) sendElement(e Element, origin Origin, mark, space float64, aux Line) {
	wpm := k.settings.WPM
	comp := k.timing.CompensationMs

	k.sending = e
	k.setKey(true)
	if k.txEnabled {
		k.write(aux, true)
	}

	k.waitElement(mark, comp, wpm)

	if k.txEnabled {
		k.write(aux, false)
	}
	k.setKey(false)

	k.waitElement(space, -comp, wpm)

	if origin == OriginManual && k.settings.Autospace {
		k.sample()
		if !k.ditBuffer && !k.dahBuffer {
			k.waitElement(2, 0, k.settings.WPM)
		}
	}

	k.sending = ElementNone
	k.lastOrigin = origin
	k.sample()
}
