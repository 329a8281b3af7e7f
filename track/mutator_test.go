// SPDX-License-Identifier: EPL-2.0

package track

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/ik5/timeline/clip"
	"github.com/ik5/timeline/internal/audiotest"
	"github.com/ik5/timeline/tempo"
)

// At 60 BPM and 1000 Hz one beat is 1000 samples.
var testTempo = tempo.Map{BPM: 60, SampleRate: 1000}

func testLoader() *audiotest.Loader {
	l := audiotest.NewLoader()
	l.Put("count", audiotest.CountPCM(1000, 4000))
	return l
}

func clipAt(id string, beat float64) clip.Descriptor {
	return clip.Descriptor{ID: id, Source: "count", TimelineStart: tempo.Beats(beat), Duration: 500 * time.Millisecond}
}

func newTrack(t *testing.T, clips ...clip.Descriptor) (*Mixer, *Mutator) {
	t.Helper()

	mix, mut, loadErrs, err := New(Descriptor{ID: "t", Clips: clips}, testLoader(), testTempo, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if len(loadErrs) != 0 {
		t.Fatalf("New() load errors = %v", loadErrs)
	}
	return mix, mut
}

// checkConsistent verifies that the id index, the descriptors and the
// published snapshot agree slot by slot.
func checkConsistent(t *testing.T, m *Mutator) {
	t.Helper()

	m.mtx.Lock()
	defer m.mtx.Unlock()

	snap := m.snapshot.Load()
	if len(m.index) != len(m.descs) || len(m.descs) != snap.Len() {
		t.Fatalf("lengths differ: index=%d descs=%d snapshot=%d", len(m.index), len(m.descs), snap.Len())
	}
	for id, i := range m.index {
		if i < 0 || i >= len(m.descs) {
			t.Fatalf("index[%q] = %d out of range", id, i)
		}
		if m.descs[i].ID != id {
			t.Errorf("index[%q] = %d but descs[%d].ID = %q", id, i, i, m.descs[i].ID)
		}
		start, _ := snap.At(i).Interval()
		if want := m.tempo.Samples(m.descs[i].TimelineStart); start != want {
			t.Errorf("snapshot[%d] starts at %d, descriptor says %d", i, start, want)
		}
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, mut := newTrack(t, clipAt("a", 0), clipAt("b", 1), clipAt("c", 2))
	checkConsistent(t, mut)

	if mut.ID() != "t" {
		t.Errorf("ID() = %q, want t", mut.ID())
	}
	if mut.Len() != 3 || mut.Snapshot().Len() != 3 {
		t.Errorf("Len() = %d, Snapshot().Len() = %d, want 3", mut.Len(), mut.Snapshot().Len())
	}
	desc := mut.Descriptor()
	if len(desc.Clips) != 3 || desc.Clips[1].ID != "b" {
		t.Errorf("Descriptor() = %+v", desc)
	}
}

func TestNew_LoadErrors(t *testing.T) {
	t.Parallel()

	desc := Descriptor{ID: "t", Clips: []clip.Descriptor{
		clipAt("a", 0),
		{ID: "missing", Source: "gone", Duration: time.Second},
	}}
	_, mut, loadErrs, err := New(desc, testLoader(), testTempo, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if len(loadErrs) != 1 || loadErrs[0].ClipID != "missing" || !errors.Is(&loadErrs[0], audiotest.ErrMissing) {
		t.Fatalf("load errors = %v, want one for missing", loadErrs)
	}
	if mut.Len() != 2 {
		t.Errorf("Len() = %d, want 2", mut.Len())
	}
	checkConsistent(t, mut)
}

func TestNew_StructuralErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		clips []clip.Descriptor
		want  error
	}{
		{name: "duplicate id", clips: []clip.Descriptor{clipAt("a", 0), clipAt("a", 1)}, want: ErrDuplicateID},
		{name: "empty id", clips: []clip.Descriptor{clipAt("", 0)}, want: clip.ErrEmptyID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, _, err := New(Descriptor{ID: "t", Clips: tt.clips}, testLoader(), testTempo, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMutator_AddClip(t *testing.T) {
	t.Parallel()

	_, mut := newTrack(t, clipAt("a", 0))
	before := mut.Snapshot()

	loadErr, err := mut.AddClip(clipAt("b", 1))
	if err != nil || loadErr != nil {
		t.Fatalf("AddClip() = %v, %v", loadErr, err)
	}
	after := mut.Snapshot()
	if after == before {
		t.Error("AddClip() did not publish a new snapshot")
	}
	if before.Len() != 1 {
		t.Errorf("old snapshot was mutated: Len() = %d", before.Len())
	}
	if after.At(0) != before.At(0) {
		t.Error("existing renderer was rebuilt")
	}
	checkConsistent(t, mut)
}

func TestMutator_AddClipDuplicate(t *testing.T) {
	t.Parallel()

	_, mut := newTrack(t, clipAt("a", 0))
	before := mut.Snapshot()

	_, err := mut.AddClip(clipAt("a", 3))
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("AddClip() error = %v, want ErrDuplicateID", err)
	}
	if mut.Snapshot() != before {
		t.Error("failed AddClip() published a snapshot")
	}
	checkConsistent(t, mut)
}

func TestMutator_AddClipLoadFailure(t *testing.T) {
	t.Parallel()

	_, mut := newTrack(t)
	loadErr, err := mut.AddClip(clip.Descriptor{ID: "x", Source: "gone", Duration: time.Second})
	if err != nil {
		t.Fatalf("AddClip() error = %v", err)
	}
	if loadErr == nil || loadErr.ClipID != "x" || !errors.Is(loadErr, audiotest.ErrMissing) {
		t.Fatalf("AddClip() load error = %v", loadErr)
	}
	if mut.Len() != 1 || mut.Snapshot().At(0).Loaded() {
		t.Error("clip with failed material was not inserted as silent")
	}
	checkConsistent(t, mut)
}

func TestMutator_RemoveClipShiftsIndices(t *testing.T) {
	t.Parallel()

	_, mut := newTrack(t, clipAt("a", 0), clipAt("b", 1), clipAt("c", 2), clipAt("d", 3), clipAt("e", 4))
	before := mut.Snapshot()

	if err := mut.RemoveClip("c"); err != nil {
		t.Fatalf("RemoveClip() error = %v", err)
	}

	want := map[string]int{"a": 0, "b": 1, "d": 2, "e": 3}
	if len(mut.index) != len(want) {
		t.Fatalf("index = %v, want %v", mut.index, want)
	}
	for id, i := range want {
		if mut.index[id] != i {
			t.Errorf("index[%q] = %d, want %d", id, mut.index[id], i)
		}
	}

	after := mut.Snapshot()
	if after.At(1) != before.At(1) || after.At(2) != before.At(3) {
		t.Error("renderers did not move with their ids")
	}
	checkConsistent(t, mut)
}

func TestMutator_RemoveClipNotFound(t *testing.T) {
	t.Parallel()

	_, mut := newTrack(t, clipAt("a", 0))
	before := mut.Snapshot()

	if err := mut.RemoveClip("zzz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("RemoveClip() error = %v, want ErrNotFound", err)
	}
	if mut.Snapshot() != before {
		t.Error("failed RemoveClip() published a snapshot")
	}
	checkConsistent(t, mut)
}

func TestMutator_RenameClip(t *testing.T) {
	t.Parallel()

	_, mut := newTrack(t, clipAt("a", 0), clipAt("b", 1))
	before := mut.Snapshot()

	tests := []struct {
		name     string
		from, to string
		want     error
	}{
		{name: "taken", from: "a", to: "b", want: ErrDuplicateID},
		{name: "missing", from: "zzz", to: "y", want: ErrNotFound},
		{name: "empty", from: "a", to: "", want: clip.ErrEmptyID},
		{name: "ok", from: "a", to: "z"},
	}

	for _, tt := range tests {
		if err := mut.RenameClip(tt.from, tt.to); !errors.Is(err, tt.want) {
			t.Errorf("%s: RenameClip() error = %v, want %v", tt.name, err, tt.want)
		}
	}

	if mut.Snapshot() != before {
		t.Error("RenameClip() published a snapshot")
	}
	if _, ok := mut.Clip("a"); ok {
		t.Error("old id still resolves")
	}
	if d, ok := mut.Clip("z"); !ok || d.ID != "z" || d.TimelineStart != 0 {
		t.Errorf("Clip(z) = %+v, %v", d, ok)
	}
	checkConsistent(t, mut)
}

func TestMutator_Retune(t *testing.T) {
	t.Parallel()

	_, mut := newTrack(t, clipAt("a", 1))
	before := mut.Snapshot()

	mut.Retune(tempo.Map{BPM: 120, SampleRate: 1000})
	if mut.Snapshot() != before {
		t.Error("Retune() changed the snapshot identity")
	}
	if start, _ := before.At(0).Interval(); start != 500 {
		t.Errorf("start = %d after retune, want 500", start)
	}
	checkConsistent(t, mut)
}

func TestMutator_MoveClip(t *testing.T) {
	t.Parallel()

	_, mut := newTrack(t, clipAt("a", 0), clipAt("b", 1))
	before := mut.Snapshot()

	loadErr, err := mut.MoveClip("b", 3)
	if err != nil || loadErr != nil {
		t.Fatalf("MoveClip() = %v, %v", loadErr, err)
	}
	after := mut.Snapshot()
	if after == before || after.At(1) == before.At(1) {
		t.Error("MoveClip() did not replace the renderer through a new snapshot")
	}
	if start, _ := before.At(1).Interval(); start != 1000 {
		t.Errorf("old renderer moved to %d", start)
	}
	if start, _ := after.At(1).Interval(); start != 3000 {
		t.Errorf("new renderer starts at %d, want 3000", start)
	}
	checkConsistent(t, mut)

	if _, err := mut.MoveClip("zzz", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("MoveClip() error = %v, want ErrNotFound", err)
	}
	if _, err := mut.MoveClip("a", -1); !errors.Is(err, clip.ErrNegativeStart) {
		t.Errorf("MoveClip() error = %v, want ErrNegativeStart", err)
	}
}

func TestMutator_SetClipGain(t *testing.T) {
	t.Parallel()

	_, mut := newTrack(t, clipAt("a", 0))
	if err := mut.SetClipGain("a", -120); err != nil {
		t.Fatalf("SetClipGain() error = %v", err)
	}
	if g := mut.Snapshot().At(0).Gain(); g != 0 {
		t.Errorf("Gain() = %v, want 0", g)
	}
	if d, _ := mut.Clip("a"); d.GainDB != -120 {
		t.Errorf("GainDB = %v, want -120", d.GainDB)
	}
	if err := mut.SetClipGain("zzz", 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetClipGain() error = %v, want ErrNotFound", err)
	}
}

func TestMutator_ReloadClip(t *testing.T) {
	t.Parallel()

	loader := testLoader()
	_, mut, loadErrs, err := New(Descriptor{ID: "t", Clips: []clip.Descriptor{
		{ID: "late", Source: "later", Duration: time.Second},
	}}, loader, testTempo, nil)
	if err != nil || len(loadErrs) != 1 {
		t.Fatalf("New() = %v, %v", loadErrs, err)
	}

	if loadErr, err := mut.ReloadClip("late"); err != nil || loadErr == nil {
		t.Fatalf("ReloadClip() before material exists = %v, %v", loadErr, err)
	}

	loader.Put("later", audiotest.CountPCM(1000, 10))
	if loadErr, err := mut.ReloadClip("late"); err != nil || loadErr != nil {
		t.Fatalf("ReloadClip() = %v, %v", loadErr, err)
	}
	if !mut.Snapshot().At(0).Loaded() {
		t.Error("renderer still silent after reload")
	}
	if _, err := mut.ReloadClip("zzz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReloadClip() error = %v, want ErrNotFound", err)
	}
}

func TestMutator_RandomSequenceStaysConsistent(t *testing.T) {
	t.Parallel()

	_, mut := newTrack(t)
	rng := rand.New(rand.NewPCG(1, 2))
	next := 0

	for range 500 {
		ids := make([]string, 0, len(mut.descs))
		for _, d := range mut.Descriptor().Clips {
			ids = append(ids, d.ID)
		}

		switch op := rng.IntN(3); {
		case op == 0 || len(ids) == 0:
			next++
			if _, err := mut.AddClip(clipAt(fmt.Sprintf("c%d", next), float64(next))); err != nil {
				t.Fatalf("AddClip() error = %v", err)
			}
		case op == 1:
			if err := mut.RemoveClip(ids[rng.IntN(len(ids))]); err != nil {
				t.Fatalf("RemoveClip() error = %v", err)
			}
		default:
			next++
			if err := mut.RenameClip(ids[rng.IntN(len(ids))], fmt.Sprintf("c%d", next)); err != nil {
				t.Fatalf("RenameClip() error = %v", err)
			}
		}
		checkConsistent(t, mut)
	}
}

func TestClipLoadError(t *testing.T) {
	t.Parallel()

	err := &ClipLoadError{ClipID: "a", Err: audiotest.ErrMissing}
	if got, want := err.Error(), `clip "a": test source not found`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, audiotest.ErrMissing) {
		t.Error("errors.Is() does not unwrap")
	}
}
