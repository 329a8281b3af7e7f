// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/timeline/audio"
)

func encode(t *testing.T, rate, bitDepth, channels int, data []int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "clip.aiff")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer f.Close()

	enc := aiff.NewEncoder(f, rate, bitDepth, channels)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return path
}

func TestDecoder_Decode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		data     []int
		want     []float32
	}{
		{
			name:     "16-bit mono",
			channels: 1,
			data:     []int{0, 16384, -16384, -32768},
			want:     []float32{0, 0.5, -0.5, -1},
		},
		{
			name:     "16-bit stereo",
			channels: 2,
			data:     []int{8192, -8192, 0, 0},
			want:     []float32{0.25, -0.25, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, err := os.Open(encode(t, 44100, 16, tt.channels, tt.data))
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer f.Close()

			src, err := Decoder{}.Decode(f)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if src.SampleRate() != 44100 || src.Channels() != tt.channels {
				t.Fatalf("format = %d Hz/%d ch, want 44100 Hz/%d ch", src.SampleRate(), src.Channels(), tt.channels)
			}

			got, err := audio.ReadAll(src, 64)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if math.Abs(float64(got[i]-tt.want[i])) > 1e-6 {
					t.Errorf("sample %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDecoder_NotAiff(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("RIFF....WAVEfmt ")))
	if !errors.Is(err, ErrNotAiffFile) {
		t.Errorf("Decode() error = %v, want ErrNotAiffFile", err)
	}
}
