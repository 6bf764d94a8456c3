// SPDX-License-Identifier: MIT
package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	Pause     key.Binding
	Night     key.Binding
	ColourMap key.Binding
	LowAmp    key.Binding
	Mode      key.Binding
	Narrower  key.Binding
	Wider     key.Binding
	Export    key.Binding
	SaveWAV   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Pause:     key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p", "pause")),
		Night:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "night")),
		ColourMap: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "colours")),
		LowAmp:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "low amp")),
		Mode:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mode")),
		Narrower:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "shorter")),
		Wider:     key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "longer")),
		Export:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		SaveWAV:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save wav")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Narrower, k.Wider, k.Export, k.SaveWAV, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Night, k.ColourMap, k.LowAmp, k.Mode},
		{k.Narrower, k.Wider, k.Export, k.SaveWAV, k.Quit},
	}
}
