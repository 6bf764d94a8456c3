// SPDX-License-Identifier: MIT
package tui

import (
	"strings"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"stripchart/internal/audio"
)

// Meter floor in dBFS; quieter input shows an empty bar.
const meterFloor = -60.0

var (
	meterStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#25A065"))
	meterHotStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F25D94"))
)

// levelMeter eases the displayed peak level toward the latest reading.
type levelMeter struct {
	spring harmonica.Spring
	pos    float64 // 0..1 of full scale
	vel    float64
}

func newLevelMeter(fps int) levelMeter {
	return levelMeter{spring: harmonica.NewSpring(harmonica.FPS(max(fps, 1)), 12.0, 0.9)}
}

// meterFraction maps a peak sample magnitude onto 0..1 of the meter.
func meterFraction(peak int32) float64 {
	db := audio.LevelDBFS(peak)
	if db <= meterFloor {
		return 0
	}
	return min(1-db/meterFloor, 1)
}

func (l *levelMeter) step(peak int32) {
	l.pos, l.vel = l.spring.Update(l.pos, l.vel, meterFraction(peak))
	l.pos = min(max(l.pos, 0), 1)
}

// render draws the meter as a bar of width cells.
func (l *levelMeter) render(width int) string {
	filled := int(l.pos*float64(width) + 0.5)
	bar := strings.Repeat("█", filled)
	rest := strings.Repeat("·", width-filled)
	if l.pos > 0.95 {
		return meterHotStyle.Render(bar) + rest
	}
	return meterStyle.Render(bar) + rest
}
