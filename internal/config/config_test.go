package config

import (
	"errors"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
)

func TestDefaultIsValid(t *testing.T) {
	opts := Default()
	assert.NoError(t, opts.Validate())
	assert.Equal(t, 2*time.Millisecond, opts.CPUInterval())
	assert.Equal(t, time.Second/60, opts.FrameInterval())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
		errMsg string
	}{
		{"unknown frontend", func(o *Options) { o.Frontend = "sdl" }, "unsupported frontend 'sdl'"},
		{"zero cpu rate", func(o *Options) { o.CPUHz = 0 }, "cpu rate must be positive"},
		{"negative fps", func(o *Options) { o.FPS = -1 }, "frame rate must be positive"},
		{"cpu rate too high", func(o *Options) { o.CPUHz = 2_000_000_000 }, "cpu rate must not exceed 1000000"},
		{"fps too high", func(o *Options) { o.FPS = 2_000_000_000 }, "frame rate must not exceed 1000000"},
		{"zero scale", func(o *Options) { o.Scale = 0 }, "scale must be positive"},
		{"negative frames", func(o *Options) { o.Frames = -5 }, "frame count must not be negative"},
		{"empty dump path", func(o *Options) { o.DumpPath = "" }, "memory dump path is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Default()
			tt.modify(&opts)
			err := opts.Validate()
			assert.ErrorContains(t, err, tt.errMsg)
			assert.True(t, errors.Is(err, ErrInvalidOption))
		})
	}
}

func TestIntervalsDoNotTruncate(t *testing.T) {
	opts := Default()
	opts.CPUHz = 700
	assert.Equal(t, time.Duration(1428571), opts.CPUInterval())
}

func TestCreateLogger(t *testing.T) {
	assert.NotNil(t, CreateLogger(false, false))
	assert.NotNil(t, CreateLogger(true, false))
	assert.NotNil(t, CreateLogger(false, true))
}

func TestMaxRateKeepsIntervalsPositive(t *testing.T) {
	opts := Default()
	opts.CPUHz = MaxRate
	opts.FPS = MaxRate
	assert.NoError(t, opts.Validate())
	assert.True(t, opts.CPUInterval() > 0)
	assert.True(t, opts.FrameInterval() > 0)
}
