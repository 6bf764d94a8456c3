// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func saveAndLoad(t *testing.T, b *Buffers, n int) *Clip {
	t.Helper()
	path := filepath.Join(t.TempDir(), "window.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := SaveWindow(f, b, b.Cursor(), n, 16000); err != nil {
		f.Close()
		t.Fatalf("SaveWindow: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	clip, err := LoadWAVFile(path)
	if err != nil {
		t.Fatalf("LoadWAVFile: %v", err)
	}
	return clip
}

func TestSaveWindow(t *testing.T) {
	b, _ := newTestBuffers(t, 1024)
	b.Write(ramp(0, 1536))

	clip := saveAndLoad(t, b, 600)
	if clip.SampleRate != 16000 {
		t.Errorf("sample rate = %d", clip.SampleRate)
	}
	if len(clip.Samples) != 600 {
		t.Fatalf("saved %d samples, want 600", len(clip.Samples))
	}
	// The most recent samples, across the ring boundary, in order.
	for i, s := range clip.Samples {
		if want := int16(936 + i); s != want {
			t.Fatalf("sample %d = %d, want %d", i, s, want)
		}
	}
}

func TestSaveWindowLimits(t *testing.T) {
	b, _ := newTestBuffers(t, 1024)
	b.Write(ramp(0, 512))

	// Less history than asked for.
	if clip := saveAndLoad(t, b, 5000); len(clip.Samples) != 512 {
		t.Errorf("saved %d samples, want 512", len(clip.Samples))
	}

	b.Write(ramp(512, 2048))
	// No more than the ring holds.
	if clip := saveAndLoad(t, b, 5000); len(clip.Samples) != 1024 {
		t.Errorf("saved %d samples, want 1024", len(clip.Samples))
	}
}

func TestSaveWindowEmpty(t *testing.T) {
	b, _ := newTestBuffers(t, 1024)
	f, err := os.Create(filepath.Join(t.TempDir(), "empty.wav"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := SaveWindow(f, b, b.Cursor(), 100, 16000); !errors.Is(err, ErrNoSamples) {
		t.Errorf("err = %v, want ErrNoSamples", err)
	}
}
