// SPDX-License-Identifier: EPL-2.0

// Package config holds session settings, loaded from environment variables
// with defaults suitable for a 48 kHz host.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ik5/timeline/block"
	"github.com/ik5/timeline/tempo"
)

// Config holds the settings of one session.
type Config struct {
	SampleRate  int           // Hz
	BlockSize   int           // frames per Process call, at most block.MaxBlockSize
	DeclickFade time.Duration // length of every declick ramp
	BPM         float64       // initial tempo
	MediaDir    string        // root the resource loader reads sources from
	LogLevel    slog.Level
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		SampleRate:  48000,
		BlockSize:   512,
		DeclickFade: 10 * time.Millisecond,
		BPM:         120,
		MediaDir:    ".",
		LogLevel:    slog.LevelInfo,
	}
}

// Load reads configuration from TIMELINE_* environment variables, falling back
// to Default for anything unset or unparsable.
func Load() Config {
	def := Default()
	return Config{
		SampleRate:  envInt("TIMELINE_SAMPLE_RATE", def.SampleRate),
		BlockSize:   envInt("TIMELINE_BLOCK_SIZE", def.BlockSize),
		DeclickFade: time.Duration(envFloat("TIMELINE_DECLICK_MS", float64(def.DeclickFade)/float64(time.Millisecond)) * float64(time.Millisecond)),
		BPM:         envFloat("TIMELINE_BPM", def.BPM),
		MediaDir:    envStr("TIMELINE_MEDIA_DIR", def.MediaDir),
		LogLevel:    envLevel("TIMELINE_LOG_LEVEL", def.LogLevel),
	}
}

// Validate reports the first setting that cannot drive a session.
func (c Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, c.SampleRate)
	case c.BlockSize <= 0 || c.BlockSize > block.MaxBlockSize:
		return fmt.Errorf("%w: %d (max %d)", ErrInvalidBlockSize, c.BlockSize, block.MaxBlockSize)
	case c.DeclickFade <= 0:
		return fmt.Errorf("%w: %v", ErrInvalidFade, c.DeclickFade)
	}
	if _, err := c.Tempo(); err != nil {
		return err
	}
	return nil
}

// Tempo returns the tempo map for BPM at SampleRate.
func (c Config) Tempo() (tempo.Map, error) {
	m, err := tempo.New(c.BPM, c.SampleRate)
	if err != nil {
		return tempo.Map{}, fmt.Errorf("tempo %v at %d Hz: %w", c.BPM, c.SampleRate, err)
	}
	return m, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(strings.TrimSpace(v))); err == nil {
			return l
		}
	}
	return fallback
}
