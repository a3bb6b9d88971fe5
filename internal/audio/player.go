package audio

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// Player plays rendered PCM at a volume in [0, 1].
type Player interface {
	Play(pcm []byte, volume float64)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Play([]byte, float64) {}

// maxVoices bounds how many tones overlap.
const maxVoices = 8

// Ebiten plays through an ebiten audio context.
type Ebiten struct {
	mu      sync.Mutex
	context *audio.Context
	voices  []*audio.Player
}

// NewEbiten creates the process-wide ebiten audio context.
func NewEbiten() *Ebiten {
	return &Ebiten{context: audio.NewContext(int(SampleRate))}
}

func (e *Ebiten) Play(pcm []byte, volume float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	live := e.voices[:0]
	for _, v := range e.voices {
		if v.IsPlaying() {
			live = append(live, v)
		} else {
			_ = v.Close()
		}
	}
	e.voices = live
	if len(e.voices) >= maxVoices {
		return
	}

	p := e.context.NewPlayerFromBytes(pcm)
	p.SetVolume(min(max(volume, 0), 1))
	p.Play()
	e.voices = append(e.voices, p)
}

// Recorder keeps what it is asked to play.
type Recorder struct {
	mu    sync.Mutex
	Plays []Play
}

type Play struct {
	Bytes  int
	Volume float64
}

func (r *Recorder) Play(pcm []byte, volume float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Plays = append(r.Plays, Play{Bytes: len(pcm), Volume: volume})
}

// Count returns the number of plays so far.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Plays)
}
