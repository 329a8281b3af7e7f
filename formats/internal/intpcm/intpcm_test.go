// SPDX-License-Identifier: EPL-2.0

package intpcm

import (
	"errors"
	"io"
	"testing"

	goaudio "github.com/go-audio/audio"
)

type sliceReader struct {
	data []int
	err  error
}

func (r *sliceReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	n := copy(buf.Data, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestScale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		depth   int
		want    float32
		wantErr bool
	}{
		{8, 1.0 / 128, false},
		{16, 1.0 / 32768, false},
		{24, 1.0 / 8388608, false},
		{32, 1.0 / 2147483648, false},
		{12, 0, true},
	}

	for _, tt := range tests {
		got, err := Scale(tt.depth)
		if (err != nil) != tt.wantErr {
			t.Errorf("Scale(%d) error = %v, wantErr %v", tt.depth, err, tt.wantErr)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrUnsupportedBitDepth) {
			t.Errorf("Scale(%d) error = %v, want ErrUnsupportedBitDepth", tt.depth, err)
		}
		if got != tt.want {
			t.Errorf("Scale(%d) = %v, want %v", tt.depth, got, tt.want)
		}
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	format := &goaudio.Format{NumChannels: 2, SampleRate: 44100}
	src, err := New(&sliceReader{data: []int{16384, -16384, 32767, -32768, 0, 8192}}, format, 16)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if src.SampleRate() != 44100 || src.Channels() != 2 {
		t.Fatalf("format = %d Hz %d ch", src.SampleRate(), src.Channels())
	}

	buf := make([]float32, 4)
	n, err := src.ReadSamples(buf)
	if n != 4 || err != nil {
		t.Fatalf("first read = %d, %v, want 4, nil", n, err)
	}
	if buf[0] != 0.5 || buf[1] != -0.5 || buf[3] != -1 {
		t.Errorf("samples = %v", buf)
	}

	n, err = src.ReadSamples(buf)
	if n != 2 || err != io.EOF {
		t.Fatalf("short read = %d, %v, want 2, io.EOF", n, err)
	}
	if buf[1] != 0.25 {
		t.Errorf("buf[1] = %v, want 0.25", buf[1])
	}

	if n, err := src.ReadSamples(buf); n != 0 || err != io.EOF {
		t.Errorf("read after end = %d, %v", n, err)
	}
}

func TestSource_ReaderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	src, err := New(&sliceReader{err: boom}, &goaudio.Format{NumChannels: 1, SampleRate: 8000}, 16)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := src.ReadSamples(make([]float32, 4)); !errors.Is(err, boom) {
		t.Errorf("ReadSamples() error = %v, want %v", err, boom)
	}
}

func TestNew_InvalidFormat(t *testing.T) {
	t.Parallel()

	if _, err := New(&sliceReader{}, &goaudio.Format{}, 16); err == nil {
		t.Error("New() accepted an empty format")
	}
	if _, err := New(&sliceReader{}, nil, 16); err == nil {
		t.Error("New() accepted a nil format")
	}
}
