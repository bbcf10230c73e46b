package tui

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
)

// dialogBox draws a centered bordered box and returns its geometry. The
// caller fills in content and waits for input.
type dialogBox struct {
	x, y          int
	width, height int
}

func drawDialogBox(screen tcell.Screen, style tcell.Style, title string, contentLines, promptLines int, minWidth int) dialogBox {
	sw, sh := screen.Size()

	width := max(minWidth, len(title)+4)
	if width > sw-4 {
		width = sw - 4
	}
	height := contentLines + promptLines + 3
	if height > sh-2 {
		height = sh - 2
	}
	x := (sw - width) / 2
	y := (sh - height) / 2

	for row := y; row < y+height; row++ {
		for col := x; col < x+width; col++ {
			r := ' '
			switch {
			case (row == y || row == y+height-1) && (col == x || col == x+width-1):
				r = '+'
			case row == y || row == y+height-1:
				r = '-'
			case col == x || col == x+width-1:
				r = '|'
			}
			screen.SetContent(col, row, r, nil, style)
		}
	}

	if title != "" {
		t := title
		if len(t) > width-4 {
			t = t[:width-4]
		}
		drawText(screen, x+(width-len(t))/2, y, len(t), style.Bold(true), t)
	}

	return dialogBox{x: x, y: y, width: width, height: height}
}

func (d dialogBox) line(screen tcell.Screen, style tcell.Style, row int, text string) {
	drawText(screen, d.x+2, d.y+1+row, d.width-4, style, text)
}

func contentWidth(title string, lines []string) int {
	w := len(title) + 4
	for _, l := range lines {
		if len(l)+4 > w {
			w = len(l) + 4
		}
	}
	return w
}

// showMessage displays a dialog with the given lines and waits for any
// key.
func showMessage(s *session, styles Styles, title string, lines []string) {
	box := drawDialogBox(s.screen, styles.Dialog, title, len(lines), 1, contentWidth(title, lines))
	for i, l := range lines {
		if i >= box.height-3 {
			break
		}
		box.line(s.screen, styles.Dialog, i, l)
	}
	box.line(s.screen, styles.Dialog, box.height-3, "Press any key to close")
	s.screen.Show()

	for {
		ev := s.waitEvent()
		if ev == nil {
			return
		}
		if _, ok := ev.(*tcell.EventKey); ok {
			return
		}
	}
}

// confirm displays a yes/no dialog and waits for y or n.
func confirm(s *session, styles Styles, message string) bool {
	lines := []string{message}
	box := drawDialogBox(s.screen, styles.Dialog, "Confirm?", 1, 1, contentWidth("Confirm?", lines))
	box.line(s.screen, styles.Dialog, 0, message)
	box.line(s.screen, styles.Dialog, box.height-3, "Confirm? (y/n)")
	s.screen.Show()

	for {
		ev := s.waitEvent()
		if ev == nil {
			return false
		}
		key, ok := ev.(*tcell.EventKey)
		if !ok || key.Key() != tcell.KeyRune {
			continue
		}
		switch key.Rune() {
		case 'y', 'Y':
			return true
		case 'n', 'N':
			return false
		}
	}
}

// promptText displays a one-line text input dialog. Enter accepts,
// Escape cancels. The second return is false on cancel or empty input.
func promptText(s *session, styles Styles, title, prompt string) (string, bool) {
	var input strings.Builder

	redraw := func() {
		box := drawDialogBox(s.screen, styles.Dialog, title, 2, 1, 50)
		box.line(s.screen, styles.Dialog, 0, prompt)
		box.line(s.screen, styles.Dialog, 1, "> "+input.String())
		box.line(s.screen, styles.Dialog, box.height-3, "Enter to accept, Esc to cancel")
		s.screen.Show()
	}
	redraw()

	for {
		ev := s.waitEvent()
		if ev == nil {
			return "", false
		}
		key, ok := ev.(*tcell.EventKey)
		if !ok {
			continue
		}
		switch key.Key() {
		case tcell.KeyEscape:
			return "", false
		case tcell.KeyEnter:
			text := input.String()
			return text, text != ""
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			text := input.String()
			if text != "" {
				input.Reset()
				input.WriteString(text[:len(text)-1])
			}
			redraw()
		case tcell.KeyRune:
			if key.Rune() >= ' ' {
				input.WriteRune(key.Rune())
				redraw()
			}
		}
	}
}

var browseHelp = []string{
	"Navigation Controls:",
	"  j, DOWN    - Move selection down",
	"  k, UP      - Move selection up",
	"  g          - Go to first item",
	"  Shift-G    - Go to last item",
	"  l, RIGHT   - Enter directory",
	"  h, LEFT    - Go back to previous directory",
	"  p          - Go to parent directory",
	"  /          - Search for files by prefix",
	"",
	"File Operations:",
	"  ENTER      - Enter directory or download file",
	"  d          - Delete selected file",
	"  m          - Create a directory",
	"  u          - Enter/exit upload mode",
	"",
	"Other Commands:",
	"  r          - Refresh current directory",
	"  ?          - Show this help",
	"  q          - Quit program",
}

var selectorHelp = []string{
	"Navigation:",
	"  j, DOWN    - Move selection down",
	"  k, UP      - Move selection up",
	"  g          - Go to first item",
	"  G          - Go to last item",
	"  /          - Search by prefix",
	"",
	"Actions:",
	"  ENTER, l   - Connect to selected remote",
	"  i          - Show remote details",
	"  o          - Open with custom path",
	"",
	"Other:",
	"  ?          - Show this help",
	"  q          - Quit",
}

// progressDialog is the visual progress indicator for one transfer. It
// is drawn only from the foreground thread; the worker feeds it byte
// counts indirectly through an atomic counter.
type progressDialog struct {
	screen   tcell.Screen
	styles   Styles
	title    string
	fileName string
	total    int64
	hasTotal bool
}

func newProgressDialog(screen tcell.Screen, styles Styles, title, fileName string, total int64, hasTotal bool) *progressDialog {
	return &progressDialog{
		screen:   screen,
		styles:   styles,
		title:    title,
		fileName: fileName,
		total:    total,
		hasTotal: hasTotal,
	}
}

// draw repaints the dialog for the given cumulative byte count.
func (p *progressDialog) draw(current int64) {
	box := drawDialogBox(p.screen, p.styles.Dialog, p.title, 4, 1, 60)

	fileInfo := "File: " + p.fileName
	box.line(p.screen, p.styles.Dialog, 0, fileInfo)

	sizeInfo := "Size: unknown"
	if p.hasTotal {
		sizeInfo = "Size: " + humanize.IBytes(uint64(p.total))
	}
	box.line(p.screen, p.styles.Dialog, 1, sizeInfo)

	box.line(p.screen, p.styles.Dialog, 2, p.barText(current, box.width-4))
	if current > 0 {
		box.line(p.screen, p.styles.Dialog, 3, "Transferred: "+humanize.IBytes(uint64(current)))
	}
	box.line(p.screen, p.styles.Dialog, box.height-3, "Press 'q' or Esc to cancel")

	p.screen.Show()
}

func (p *progressDialog) barText(current int64, width int) string {
	inner := width - 7
	if inner < 4 {
		inner = 4
	}

	if !p.hasTotal || p.total <= 0 {
		return "[" + strings.Repeat(" ", inner) + "]  ?%"
	}

	pct := float64(current) / float64(p.total) * 100
	if pct > 100 {
		pct = 100
	}
	filled := int(float64(inner) * pct / 100)
	bar := strings.Repeat("#", filled) + strings.Repeat(" ", inner-filled)
	return "[" + bar + "] " + humanize.FtoaWithDigits(pct, 0) + "%"
}
