package audio

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"

	"hideseek-arcade/internal/game"
)

const sampleRate = beep.SampleRate(44100)

// Config controls where cues come from and how loud they play
type Config struct {
	Dir    string  // directory holding the cue WAV files; empty synthesizes tones
	Volume float64 // linear gain, 0 mutes
	Muted  bool
}

// Player plays named cues, decoding each WAV once and replaying it from memory
type Player struct {
	mu      sync.Mutex
	cfg     Config
	buffers map[game.Cue]*beep.Buffer
	missing map[game.Cue]bool
	out     func(beep.Streamer)
	mixer   *beep.Mixer
	inited  bool
}

// New creates a player that is silent until Init is called
func New(cfg Config) *Player {
	return &Player{
		cfg:     cfg,
		buffers: make(map[game.Cue]*beep.Buffer),
		missing: make(map[game.Cue]bool),
	}
}

// Init opens the speaker. Without it, Play is a no-op.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inited {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("audio: init speaker: %w", err)
	}
	p.mixer = &beep.Mixer{}
	speaker.Play(p.mixer)
	p.out = func(s beep.Streamer) {
		speaker.Lock()
		p.mixer.Add(s)
		speaker.Unlock()
	}
	p.inited = true
	return nil
}

// SetOutput routes streams somewhere other than the speaker
func (p *Player) SetOutput(out func(beep.Streamer)) {
	p.mu.Lock()
	p.out = out
	p.mu.Unlock()
}

// SetMuted toggles all output
func (p *Player) SetMuted(muted bool) {
	p.mu.Lock()
	p.cfg.Muted = muted
	p.mu.Unlock()
}

// Close clears pending sounds
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mixer != nil {
		speaker.Lock()
		p.mixer.Clear()
		speaker.Unlock()
	}
	p.out = nil
	p.inited = false
}

// Play starts a cue and returns immediately. Missing files are logged once and skipped.
func (p *Player) Play(cue game.Cue) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.out == nil || p.cfg.Muted {
		return
	}
	s := p.stream(cue)
	if s == nil {
		return
	}
	p.out(volume(s, p.cfg.Volume))
}

// stream must be called with p.mu held
func (p *Player) stream(cue game.Cue) beep.Streamer {
	if p.cfg.Dir == "" {
		return tone(cue)
	}
	if p.missing[cue] {
		return nil
	}
	buf, ok := p.buffers[cue]
	if !ok {
		var err error
		buf, err = load(filepath.Join(p.cfg.Dir, string(cue)))
		if err != nil {
			log.Printf("audio: %v", err)
			p.missing[cue] = true
			return nil
		}
		p.buffers[cue] = buf
	}
	return buf.Streamer(0, buf.Len())
}

// load decodes a WAV file into memory at the player sample rate
func load(path string) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	s, format, err := wav.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer s.Close()

	var src beep.Streamer = s
	if format.SampleRate != sampleRate {
		src = beep.Resample(4, format.SampleRate, sampleRate, s)
	}
	buf := beep.NewBuffer(beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 2})
	buf.Append(src)
	return buf, nil
}

// tone synthesizes a short stand-in for a cue
func tone(cue game.Cue) beep.Streamer {
	switch cue {
	case game.CuePlayerShoot:
		return beep.Seq(sine(1320, 40*time.Millisecond), sine(990, 30*time.Millisecond))
	case game.CueEnemyShoot:
		return beep.Seq(sine(440, 40*time.Millisecond), sine(330, 40*time.Millisecond))
	case game.CueAlienDestroyed:
		return beep.Seq(sine(660, 80*time.Millisecond), sine(880, 80*time.Millisecond))
	case game.CueDefeat:
		return beep.Seq(
			sine(392, 150*time.Millisecond),
			sine(330, 150*time.Millisecond),
			sine(262, 300*time.Millisecond),
		)
	default:
		return nil
	}
}

func sine(freq float64, d time.Duration) beep.Streamer {
	s, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return beep.Silence(sampleRate.N(d))
	}
	return beep.Take(sampleRate.N(d), s)
}

// volume applies a linear gain; math.Log2(0) is -Inf so zero is silent
func volume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}
