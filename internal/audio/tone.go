// Package audio synthesises the bump tone and plays it through ebiten.
package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// SampleRate is shared by synthesis and playback.
const SampleRate = beep.SampleRate(48000)

// format is 16-bit signed little-endian stereo, what ebiten's audio
// players take.
var format = beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2}

// bumpGenerator is a sine with an exponential decay and a short pitch drop.
type bumpGenerator struct {
	freq  float64
	decay float64 // per second
	rate  beep.SampleRate
	phase float64
	t     int
}

func newBumpGenerator(rate beep.SampleRate, freq, decay float64) *bumpGenerator {
	return &bumpGenerator{freq: freq, decay: decay, rate: rate}
}

func (g *bumpGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	dt := 1 / float64(g.rate)
	for i := range samples {
		sec := float64(g.t) * dt
		env := math.Exp(-g.decay * sec)
		freq := g.freq * (1 + 0.5*math.Exp(-40*sec))

		val := math.Sin(2*math.Pi*g.phase) * env
		samples[i][0] = val
		samples[i][1] = val

		g.phase += freq * dt
		g.phase -= math.Floor(g.phase)
		g.t++
	}
	return len(samples), true
}

func (g *bumpGenerator) Err() error {
	return nil
}

// Tone describes a synthesised bump.
type Tone struct {
	Frequency float64
	Duration  time.Duration
	Decay     float64
	// Gain is linear, 1 for unity.
	Gain float64
}

// DefaultBump is the tone played on bumper hits.
var DefaultBump = Tone{
	Frequency: 330,
	Duration:  120 * time.Millisecond,
	Decay:     30,
	Gain:      0.8,
}

// Streamer returns the tone as a finite beep stream.
func (t Tone) Streamer() beep.Streamer {
	s := beep.Take(SampleRate.N(t.Duration), newBumpGenerator(SampleRate, t.Frequency, t.Decay))
	if t.Gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(t.Gain)}
}

// Render drains s into 16-bit little-endian stereo PCM.
func Render(s beep.Streamer) []byte {
	width := format.Width()
	var pcm []byte
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for _, sample := range buf[:n] {
			var frame [4]byte
			format.EncodeSigned(frame[:width], sample)
			pcm = append(pcm, frame[:width]...)
		}
		if !ok {
			return pcm
		}
	}
}
