package audio

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderLength(t *testing.T) {
	tone := DefaultBump
	pcm := Render(tone.Streamer())

	frames := SampleRate.N(tone.Duration)
	assert.Equal(t, frames*4, len(pcm))
}

func TestRenderDecays(t *testing.T) {
	tone := Tone{Frequency: 440, Duration: 200 * time.Millisecond, Decay: 30, Gain: 1}
	pcm := Render(tone.Streamer())
	require.NotEmpty(t, pcm)

	peak := func(from, to int) int {
		best := 0
		for i := from; i < to; i += 4 {
			v := int(int16(binary.LittleEndian.Uint16(pcm[i:])))
			best = max(best, v, -v)
		}
		return best
	}
	quarter := len(pcm) / 4 / 4 * 4
	head := peak(0, quarter)
	tail := peak(3*quarter, len(pcm))
	assert.Greater(t, head, 10000)
	assert.Less(t, tail, head/10)
}

func TestRenderStereoChannelsMatch(t *testing.T) {
	pcm := Render(DefaultBump.Streamer())
	for i := 0; i+4 <= len(pcm); i += 4 {
		if pcm[i] != pcm[i+2] || pcm[i+1] != pcm[i+3] {
			t.Fatalf("channels differ at frame %d", i/4)
		}
	}
}

func TestSilentTone(t *testing.T) {
	tone := DefaultBump
	tone.Gain = 0
	pcm := Render(tone.Streamer())
	require.NotEmpty(t, pcm)
	for _, b := range pcm {
		if b != 0 {
			t.Fatal("expected silence")
		}
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	var p Player = &r
	p.Play(make([]byte, 8), 0.25)
	Nop{}.Play(nil, 1)

	require.Equal(t, 1, r.Count())
	assert.Equal(t, Play{Bytes: 8, Volume: 0.25}, r.Plays[0])
}
