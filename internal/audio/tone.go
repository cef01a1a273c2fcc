package audio

import (
	"math"
	"time"

	"github.com/gordonklaus/portaudio"
)

const (
	sampleRate   = 44100
	frames       = 512
	toneDuration = 120 * time.Millisecond
	amplitude    = 0.25
)

// Initialize sets up PortAudio; call once at daemon start.
func Initialize() error {
	return portaudio.Initialize()
}

// Terminate releases PortAudio; call on shutdown.
func Terminate() {
	portaudio.Terminate()
}

// playTone synthesizes a sine tone and writes it to the default output
// stream. Blocking for the tone duration; callers run it off the event path.
func playTone(freq float64, dur time.Duration) error {
	buf := make([]int16, frames)
	stream, err := portaudio.OpenDefaultStream(0, 1, sampleRate, len(buf), &buf)
	if err != nil {
		return err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return err
	}
	defer stream.Stop()

	total := int(sampleRate * dur.Seconds())
	for i := 0; i < total; i += len(buf) {
		for j := range buf {
			t := float64(i+j) / sampleRate
			// Linear fade-out keeps the tone from clicking at the end.
			fade := 1.0 - float64(i+j)/float64(total)
			buf[j] = int16(amplitude * fade * math.MaxInt16 * math.Sin(2*math.Pi*freq*t))
		}
		if err := stream.Write(); err != nil {
			return err
		}
	}
	return nil
}
