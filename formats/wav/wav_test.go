// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/timeline/audio"
)

func writeTemp(t *testing.T, left, right []float32) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer f.Close()

	if err := WriteStereo16(f, 22050, left, right); err != nil {
		t.Fatalf("WriteStereo16() error = %v", err)
	}
	return path
}

func readAll(t *testing.T, path string) audio.Source {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { f.Close() })

	src, err := Decoder{}.Decode(f)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return src
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	left := []float32{0, 0.5, -0.5, 0.25, 1}
	right := []float32{0, -0.5, 0.5, -0.25, -1}
	src := readAll(t, writeTemp(t, left, right))

	if src.SampleRate() != 22050 {
		t.Errorf("SampleRate() = %d, want 22050", src.SampleRate())
	}
	if src.Channels() != 2 {
		t.Fatalf("Channels() = %d, want 2", src.Channels())
	}

	got, err := audio.ReadAll(src, 64)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("len = %d, want 10", len(got))
	}
	for i := range left {
		if math.Abs(float64(got[2*i]-left[i])) > 1e-3 || math.Abs(float64(got[2*i+1]-right[i])) > 1e-3 {
			t.Errorf("frame %d = %v/%v, want %v/%v", i, got[2*i], got[2*i+1], left[i], right[i])
		}
	}
}

func TestDecode_NonSeekableReader(t *testing.T) {
	t.Parallel()

	data, err := os.ReadFile(writeTemp(t, []float32{0.5}, []float32{0.5}))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	src, err := Decoder{}.Decode(io.MultiReader(bytes.NewReader(data)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if src.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", src.Channels())
	}
}

func TestDecode_NotWav(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("definitely not a riff file at all")))
	if !errors.Is(err, ErrNotWavFile) {
		t.Errorf("Decode() error = %v, want ErrNotWavFile", err)
	}
}

func TestWriter_ChannelMismatch(t *testing.T) {
	t.Parallel()

	f, err := os.Create(filepath.Join(t.TempDir(), "bad.wav"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer f.Close()

	w := NewWriter(f, 8000)
	if err := w.Write([]float32{0, 1}, []float32{0}); !errors.Is(err, ErrChannelMismatch) {
		t.Errorf("Write() error = %v, want ErrChannelMismatch", err)
	}
}

func TestWriter_MultipleBlocks(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "blocks.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	w := NewWriter(f, 8000)
	block := make([]float32, 100)
	for range 3 {
		if err := w.Write(block, block); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	f.Close()

	got, err := audio.ReadAll(readAll(t, path), 128)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(got) != 600 {
		t.Errorf("len = %d, want 600", len(got))
	}
}
