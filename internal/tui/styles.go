package tui

import "github.com/gdamore/tcell/v2"

// Styles groups the color styles used across the browser views. Bars
// change color per mode so it is always obvious which mode is active.
type Styles struct {
	Bar         tcell.Style
	UploadBar   tcell.Style
	SelectorBar tcell.Style
	Icon        tcell.Style
	Directory   tcell.Style
	File        tcell.Style
	Normal      tcell.Style
	Dialog      tcell.Style
}

// DefaultStyles returns the standard color scheme: blue bars for browse
// mode, red for upload mode, green for the remote selector.
func DefaultStyles() Styles {
	return Styles{
		Bar:         tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlue).Bold(true),
		UploadBar:   tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorRed).Bold(true),
		SelectorBar: tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorGreen).Bold(true),
		Icon:        tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
		Directory:   tcell.StyleDefault.Foreground(tcell.ColorAqua),
		File:        tcell.StyleDefault.Foreground(tcell.ColorGreen),
		Normal:      tcell.StyleDefault,
		Dialog:      tcell.StyleDefault,
	}
}
