// SPDX-License-Identifier: MIT
package plotter

import (
	"math"
	"testing"
)

func labelTexts(labels []AxisLabel) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = l.Text
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTimeLabels(t *testing.T) {
	tests := []struct {
		seconds float64
		rate    int
		want    []string
	}{
		{60, 48000, []string{"0", "15", "30", "45", "60"}},
		{20, 48000, []string{"0", "4", "8", "12", "16", "20"}},
		{10, 48000, []string{"0", "2", "4", "6", "8", "10"}},
		{5, 384000, []string{"0", "1", "2", "3", "4", "5"}},
		{1, 48000, []string{"0", "0.2", "0.4", "0.6", "0.8", "1"}},
		{30, 8000, []string{"0", "6", "12", "18", "24", "30"}},
	}
	for _, tt := range tests {
		got := labelTexts(TimeLabels(tt.seconds, tt.rate, ExportWidth))
		if !equalStrings(got, tt.want) {
			t.Errorf("TimeLabels(%v, %d) = %v, want %v", tt.seconds, tt.rate, got, tt.want)
		}
	}
}

func TestTimeLabelPlacement(t *testing.T) {
	labels := TimeLabels(10, 48000, ExportWidth)
	first, second, last := labels[0], labels[1], labels[len(labels)-1]
	if first.Pos != 2 || first.Tick != 0.5 {
		t.Errorf("first = %+v, want Pos 2 Tick 0.5", first)
	}
	if last.Pos != ExportWidth-2 || last.Tick != ExportWidth-0.5 {
		t.Errorf("last = %+v, want Pos %d Tick %v", last, ExportWidth-2, ExportWidth-0.5)
	}
	if math.Abs(second.Pos-149.6) > 1e-9 || second.Tick != 149.5 {
		t.Errorf("second = %+v, want Pos 149.6 Tick 149.5", second)
	}
}

func TestAmplitudeLabels(t *testing.T) {
	labels := AmplitudeLabels(ExportWaveformHeight)
	want := []string{"100%", "80%", "60%", "40%", "20%", "0%", "20%", "40%", "60%", "80%", "100%"}
	if got := labelTexts(labels); !equalStrings(got, want) {
		t.Fatalf("texts = %v, want %v", got, want)
	}
	checks := []struct {
		i         int
		pos, tick float64
	}{
		{0, 238, 237.5},
		{1, 214.2, 214.5},
		{5, 119, 119.5},
		{10, 0, 0.5},
	}
	for _, c := range checks {
		l := labels[c.i]
		if math.Abs(l.Pos-c.pos) > 1e-9 || l.Tick != c.tick {
			t.Errorf("label %d = %+v, want Pos %v Tick %v", c.i, l, c.pos, c.tick)
		}
	}
}

func TestFrequencyLabels(t *testing.T) {
	tests := []struct {
		rate  int
		want  []string
		ticks []float64
	}{
		{48000, []string{"0kHz", "6kHz", "12kHz", "18kHz", "24kHz"}, []float64{254.5, 191.5, 127.5, 63.5, 0.5}},
		{250000, []string{"0kHz", "25kHz", "50kHz", "75kHz", "100kHz", "125kHz"}, nil},
		{44100, []string{"0kHz", "5.5125kHz", "11.025kHz", "16.5375kHz", "22.05kHz"}, nil},
	}
	for _, tt := range tests {
		labels := FrequencyLabels(tt.rate, ExportSpectrogramHeight)
		if got := labelTexts(labels); !equalStrings(got, tt.want) {
			t.Errorf("FrequencyLabels(%d) = %v, want %v", tt.rate, got, tt.want)
			continue
		}
		for i, tick := range tt.ticks {
			if labels[i].Tick != tick {
				t.Errorf("rate %d label %d tick = %v, want %v", tt.rate, i, labels[i].Tick, tick)
			}
		}
	}
}

func TestAxisLabelsDegenerate(t *testing.T) {
	if TimeLabels(0, 48000, 100) != nil || TimeLabels(10, 48000, 0) != nil {
		t.Error("expected no time labels")
	}
	if AmplitudeLabels(0) != nil || FrequencyLabels(48000, 0) != nil || FrequencyLabels(0, 10) != nil {
		t.Error("expected no vertical labels")
	}
}
