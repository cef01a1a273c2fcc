package audio

import (
	"github.com/gen2brain/beeep"
)

// PlayToggle gives a short audible cue for the new state: a higher tone for
// enable, a lower one for disable. Falls back to the system beep when the
// audio device is unavailable.
func PlayToggle(enabled bool) {
	freq := 440.0
	if enabled {
		freq = 880.0
	}
	if err := playTone(freq, toneDuration); err != nil {
		beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration/2)
	}
}
