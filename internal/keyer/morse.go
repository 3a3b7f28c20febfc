package keyer

import (
	"time"
	"unicode"
)

// morseCode maps characters to their element patterns.
var morseCode = map[rune]string{
	'A': ".-", 'B': "-...", 'C': "-.-.", 'D': "-..", 'E': ".",
	'F': "..-.", 'G': "--.", 'H': "....", 'I': "..", 'J': ".---",
	'K': "-.-", 'L': ".-..", 'M': "--", 'N': "-.", 'O': "---",
	'P': ".--.", 'Q': "--.-", 'R': ".-.", 'S': "...", 'T': "-",
	'U': "..-", 'V': "...-", 'W': ".--", 'X': "-..-", 'Y': "-.--",
	'Z': "--..",

	'1': ".----", '2': "..---", '3': "...--", '4': "....-", '5': ".....",
	'6': "-....", '7': "--...", '8': "---..", '9': "----.", '0': "-----",

	'.': ".-.-.-", ',': "--..--", '?': "..--..", '/': "-..-.",
	'=': "-...-", '-': "-....-", ')': "-.--.-", '(': "-.--.",
	':': "---...", ';': "-.-.-.", '"': ".-..-.", '\'': ".----.",
	'$': "...-..-", '!': "-.-.--", '&': ".-...", '+': ".-.-.",
	'_': "..--.-", '@': ".--.-.",
}

// MorseFor returns the element pattern for r ('.' dit, '-' dah).
func MorseFor(r rune) (string, bool) {
	code, ok := morseCode[unicode.ToUpper(r)]
	return code, ok
}

// Send keys text as automatic (buffered) Morse. It blocks until the text
// is sent or a paddle is touched, and returns how many characters were
// consumed. Characters without a Morse pattern are skipped.
func (k *Keyer) Send(text string) int {
	if k.keyDown {
		return 0
	}
	consumed := 0
	for _, r := range text {
		consumed++
		if r == ' ' {
			// The previous character already left 3 units of space.
			k.waitElement(float64(k.settings.WordSpace-3), 0, k.settings.WPM)
			continue
		}
		code, ok := MorseFor(r)
		if !ok {
			continue
		}
		for _, el := range code {
			if el == '.' {
				k.sendDit(OriginAutomatic)
			} else {
				k.sendDah(OriginAutomatic)
			}
		}
		k.waitElement(2, 0, k.settings.WPM)

		if k.ditBuffer || k.dahBuffer {
			break
		}
	}
	return consumed
}

// Feedback tone pitches and lengths.
const (
	beepHz  = 1500
	boopHz  = 400
	beepLen = 200 * time.Millisecond
	boopLen = 100 * time.Millisecond
	pairLen = 100 * time.Millisecond
)

// Beep plays a short high tone on the sidetone only.
func (k *Keyer) Beep() { k.cue(tone{beepHz, beepLen}) }

// Boop plays a short low tone.
func (k *Keyer) Boop() { k.cue(tone{boopHz, boopLen}) }

// BeepBoop plays high then low.
func (k *Keyer) BeepBoop() { k.cue(tone{beepHz, pairLen}, tone{boopHz, pairLen}) }

// BoopBeep plays low then high.
func (k *Keyer) BoopBeep() { k.cue(tone{boopHz, pairLen}, tone{beepHz, pairLen}) }

type tone struct {
	hz int
	d  time.Duration
}

func (k *Keyer) cue(tones ...tone) {
	if k.keyDown {
		return
	}
	for _, t := range tones {
		k.toneStart(t.hz)
		k.sleep(t.d)
	}
	k.toneStop()
}
