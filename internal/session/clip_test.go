// SPDX-License-Identifier: MIT
package session

import (
	"bytes"
	"errors"
	"image/png"
	"testing"
	"time"

	"stripchart/internal/analysis"
	"stripchart/internal/audio"
	"stripchart/internal/plate"
)

func TestFitDisplayWidth(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want int
	}{
		{0, 1},
		{500 * time.Millisecond, 1},
		{time.Second, 1},
		{1500 * time.Millisecond, 5},
		{12 * time.Second, 20},
		{2 * time.Minute, 60},
	}
	for _, tt := range tests {
		if got := FitDisplayWidth(tt.d); got != tt.want {
			t.Errorf("FitDisplayWidth(%v) = %d, want %d", tt.d, got, tt.want)
		}
	}
}

func TestExportClip(t *testing.T) {
	clip := audio.Synthesize(testRate, 440, 2)
	var buf bytes.Buffer
	if err := ExportClip(&buf, clip, plate.PNG, ClipOptions{Window: analysis.Sine, Title: "Clip"}); err != nil {
		t.Fatalf("ExportClip: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != plate.Width || b.Dy() != plate.Height {
		t.Errorf("bounds = %v", b)
	}
}

func TestExportClipEmpty(t *testing.T) {
	err := ExportClip(&bytes.Buffer{}, &audio.Clip{SampleRate: testRate}, plate.PNG, ClipOptions{})
	if !errors.Is(err, audio.ErrEmptyClip) {
		t.Errorf("err = %v, want ErrEmptyClip", err)
	}
}
