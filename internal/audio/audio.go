// Package audio drives the buzzer that sounds while the sound timer is running.
package audio

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ebitengine/oto/v3"
)

const (
	SampleRate    = 44100
	ToneFrequency = 440
	toneAmplitude = 0.2

	bytesPerSample = 4
)

// Beeper switches a continuous tone on and off.
type Beeper interface {
	SetActive(active bool)
	Close() error
}

// Tone is an endless mono square wave encoded as little endian float32 samples.
type Tone struct {
	sampleRate float64
	frequency  float64
	amplitude  float32
	pos        int64
}

func NewTone(sampleRate int, frequency float64, amplitude float32) *Tone {
	return &Tone{
		sampleRate: float64(sampleRate),
		frequency:  frequency,
		amplitude:  amplitude,
	}
}

func (t *Tone) Read(buf []byte) (int, error) {
	n := len(buf) / bytesPerSample * bytesPerSample

	for i := 0; i < n; i += bytesPerSample {
		_, phase := math.Modf(float64(t.pos) * t.frequency / t.sampleRate)
		v := t.amplitude
		if phase >= 0.5 {
			v = -v
		}
		binary.LittleEndian.PutUint32(buf[i:], math.Float32bits(v))
		t.pos++
	}
	return n, nil
}

// OtoBeeper plays the tone through the host audio device.
type OtoBeeper struct {
	ctx    *oto.Context
	player *oto.Player
	active bool
}

func NewOtoBeeper(sampleRate int, frequency float64) (*OtoBeeper, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("creating audio context: %w", err)
	}
	<-ready

	return &OtoBeeper{
		ctx:    ctx,
		player: ctx.NewPlayer(NewTone(sampleRate, frequency, toneAmplitude)),
	}, nil
}

func (b *OtoBeeper) SetActive(active bool) {
	if active == b.active {
		return
	}
	b.active = active
	if active {
		b.player.Play()
	} else {
		b.player.Pause()
	}
}

func (b *OtoBeeper) Close() error {
	b.SetActive(false)
	if err := b.player.Close(); err != nil {
		return fmt.Errorf("closing audio player: %w", err)
	}
	return nil
}

// Silent is used when sound is muted or no audio device exists. It only
// remembers the requested state.
type Silent struct {
	active  bool
	toggles int
}

func (s *Silent) SetActive(active bool) {
	if active != s.active {
		s.toggles++
	}
	s.active = active
}

func (s *Silent) Active() bool {
	return s.active
}

// Toggles returns how often the state changed.
func (s *Silent) Toggles() int {
	return s.toggles
}

func (s *Silent) Close() error {
	s.active = false
	return nil
}
