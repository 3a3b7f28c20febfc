package keyer

// Setting bounds that are not board tuning.
const (
	WeightingMin = 0
	WeightingMax = 100
	DahRatioMin  = 100
	DahRatioMax  = 1000
	WordSpaceMin = 3
	WordSpaceMax = 20
)

// AdjustSpeed moves the speed by delta WPM. A result on or outside the
// configured limits is rejected and nothing changes.
func (k *Keyer) AdjustSpeed(delta int) bool {
	if delta == 0 {
		return false
	}
	return k.SetSpeed(k.settings.WPM + delta)
}

// SetSpeed sets the speed if wpm lies strictly inside the limits.
func (k *Keyer) SetSpeed(wpm int) bool {
	if !k.validWPM(wpm) {
		return false
	}
	if wpm != k.settings.WPM {
		k.settings.WPM = wpm
		k.dirty = true
	}
	return true
}

func (k *Keyer) validWPM(wpm int) bool {
	return wpm > k.timing.WPMLow && wpm < k.timing.WPMHigh
}

// AdjustSidetonePitch moves the sidetone by delta Hz within the limits.
func (k *Keyer) AdjustSidetonePitch(delta int) bool {
	if delta == 0 {
		return false
	}
	hz := k.settings.SidetoneHz + delta
	if !k.validPitch(hz) {
		return false
	}
	k.settings.SidetoneHz = hz
	k.dirty = true
	return true
}

func (k *Keyer) validPitch(hz int) bool {
	return hz > k.timing.SidetoneLow && hz < k.timing.SidetoneHigh
}

// SetMode selects the keying discipline. A change drops any queued
// elements and the ultimatic closure history.
func (k *Keyer) SetMode(m Mode) bool {
	if !m.Valid() {
		return false
	}
	if m == k.settings.Mode {
		return true
	}
	k.setKey(false)
	k.settings.Mode = m
	k.ditBuffer, k.dahBuffer = false, false
	k.squeeze = false
	k.closure = NoClosure
	k.dirty = true
	return true
}

// CycleMode advances to the next mode.
func (k *Keyer) CycleMode() Mode {
	k.SetMode(k.settings.Mode.Next())
	return k.settings.Mode
}

// SetUltimaticPriority selects the ultimatic sub-mode.
func (k *Keyer) SetUltimaticPriority(p UltimaticPriority) bool {
	if !p.valid() {
		return false
	}
	if p != k.settings.UltimaticPriority {
		k.settings.UltimaticPriority = p
		k.closure = NoClosure
		k.dirty = true
	}
	return true
}

// SetPolarity swaps which lever is dit.
func (k *Keyer) SetPolarity(p Polarity) bool {
	if p != PolarityNormal && p != PolarityReversed {
		return false
	}
	if p != k.settings.Polarity {
		k.settings.Polarity = p
		k.dirty = true
	}
	return true
}

// SetSidetoneMode sets when the monitor tone sounds.
func (k *Keyer) SetSidetoneMode(m SidetoneMode) bool {
	if m != SidetoneOff && m != SidetoneOn && m != SidetonePaddleOnly {
		return false
	}
	if m != k.settings.SidetoneMode {
		if k.keyDown && !m.sounds() {
			k.toneStop()
		}
		k.settings.SidetoneMode = m
		k.dirty = true
	}
	return true
}

// SetWeighting sets the mark:space bias, 50 being symmetric.
func (k *Keyer) SetWeighting(w int) bool {
	if w < WeightingMin || w > WeightingMax {
		return false
	}
	if w != k.settings.Weighting {
		k.settings.Weighting = w
		k.dirty = true
	}
	return true
}

// SetDahRatio sets the dah:dit ratio in hundredths.
func (k *Keyer) SetDahRatio(r int) bool {
	if r < DahRatioMin || r > DahRatioMax {
		return false
	}
	if r != k.settings.DahRatio {
		k.settings.DahRatio = r
		k.dirty = true
	}
	return true
}

// SetWordSpace sets the word space length in dit units.
func (k *Keyer) SetWordSpace(units int) bool {
	if units < WordSpaceMin || units > WordSpaceMax {
		return false
	}
	if units != k.settings.WordSpace {
		k.settings.WordSpace = units
		k.dirty = true
	}
	return true
}

// SetAutospace enables the automatic inter-character space.
func (k *Keyer) SetAutospace(on bool) {
	if on != k.settings.Autospace {
		k.settings.Autospace = on
		k.dirty = true
	}
}

// SelectTX picks the 1-based transmitter. PTT on the old transmitter is
// dropped first. Rejected while the key is down.
func (k *Keyer) SelectTX(n int) bool {
	if n < 1 || n > len(k.hw.Transmitters) || k.keyDown {
		return false
	}
	if n == k.settings.TX {
		return true
	}
	if k.pttActive {
		k.deactivatePTT()
	}
	k.settings.TX = n
	k.dirty = true
	return true
}

// Restore applies persisted settings. Each field goes through the same
// validation as its setter; invalid fields keep their current value.
// Restore does not mark the configuration dirty.
func (k *Keyer) Restore(s Settings) {
	dirty := k.dirty
	k.SetSpeed(s.WPM)
	if k.validPitch(s.SidetoneHz) {
		k.settings.SidetoneHz = s.SidetoneHz
	}
	k.SetMode(s.Mode)
	k.SetUltimaticPriority(s.UltimaticPriority)
	k.SetPolarity(s.Polarity)
	k.SetSidetoneMode(s.SidetoneMode)
	k.SetWeighting(s.Weighting)
	k.SetDahRatio(s.DahRatio)
	k.SetWordSpace(s.WordSpace)
	k.SetAutospace(s.Autospace)
	k.SelectTX(s.TX)
	k.dirty = dirty
}
