package tui

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
)

// scrollMargin is how close the selection may get to the viewport edge
// before the view scrolls. Keeping two rows of context visible makes long
// listings easier to scan.
const scrollMargin = 2

// ListView renders an ordered sequence of display records inside a
// fixed-height viewport and owns selection and scrolling. It holds no
// terminal state of its own; Draw paints onto whatever screen it is
// given, which keeps the viewport math testable without a terminal.
type ListView struct {
	styles Styles

	elements     []DisplayRecord
	selected     int
	firstVisible int
	lastVisible  int

	width  int
	height int

	topText    string
	bottomText string
	barStyle   tcell.Style
}

// NewListView returns a list view sized for the given terminal
// dimensions. The top and bottom rows are reserved for the bars.
func NewListView(styles Styles, width, height int) *ListView {
	lv := &ListView{
		styles:   styles,
		barStyle: styles.Bar,
	}
	lv.Resize(width, height)
	return lv
}

// Resize adjusts the viewport to new terminal dimensions and clamps the
// visible range.
func (lv *ListView) Resize(width, height int) {
	lv.width = max(10, width)
	lv.height = max(1, height-2)
	lv.clampViewport()
}

// SetElements replaces the listing and resets selection to the top.
func (lv *ListView) SetElements(elements []DisplayRecord) {
	lv.elements = elements
	lv.selected = 0
	lv.firstVisible = 0
	lv.lastVisible = min(lv.height, len(lv.elements))
}

// Len returns the number of elements.
func (lv *ListView) Len() int {
	return len(lv.elements)
}

// Selected returns the record under the cursor, or nil when the listing
// is empty.
func (lv *ListView) Selected() DisplayRecord {
	if len(lv.elements) == 0 {
		return nil
	}
	lv.clampSelection()
	return lv.elements[lv.selected]
}

// SelectedIndex returns the cursor position.
func (lv *ListView) SelectedIndex() int {
	return lv.selected
}

// VisibleRange returns the half-open index range currently in view.
func (lv *ListView) VisibleRange() (first, last int) {
	return lv.firstVisible, lv.lastVisible
}

// SelectFirst moves the cursor to the top of the listing.
func (lv *ListView) SelectFirst() {
	if len(lv.elements) == 0 {
		return
	}
	lv.selected = 0
	lv.firstVisible = 0
	lv.lastVisible = min(lv.height, len(lv.elements))
}

// SelectLast moves the cursor to the bottom of the listing.
func (lv *ListView) SelectLast() {
	if len(lv.elements) == 0 {
		return
	}
	lv.selected = len(lv.elements) - 1
	lv.lastVisible = len(lv.elements)
	lv.firstVisible = max(0, lv.lastVisible-lv.height)
}

// SelectPrevious moves the cursor up one row, scrolling when the cursor
// would enter the top margin.
func (lv *ListView) SelectPrevious() {
	if len(lv.elements) == 0 || lv.selected <= 0 {
		return
	}
	lv.selected--
	dy := lv.selected - lv.firstVisible
	if dy < scrollMargin && lv.firstVisible > 0 {
		lv.firstVisible--
		lv.lastVisible--
	}
}

// SelectNext moves the cursor down one row, scrolling when the cursor
// would enter the bottom margin.
func (lv *ListView) SelectNext() {
	if len(lv.elements) == 0 || lv.selected >= len(lv.elements)-1 {
		return
	}
	lv.selected++
	dy := lv.selected - lv.firstVisible
	if dy > lv.height-scrollMargin-1 && lv.lastVisible < len(lv.elements) {
		lv.firstVisible++
		lv.lastVisible++
	}
}

// SelectByPrefix moves the cursor to the first element whose name starts
// with prefix, case-insensitively, scrolling just enough to bring it into
// view. Returns false and changes nothing when prefix is empty or no
// element matches.
func (lv *ListView) SelectByPrefix(prefix string) bool {
	if len(lv.elements) == 0 || prefix == "" {
		return false
	}

	needle := strings.ToLower(prefix)
	for i, rec := range lv.elements {
		if !strings.HasPrefix(strings.ToLower(rec.DisplayName()), needle) {
			continue
		}
		lv.selected = i
		if i < lv.firstVisible {
			lv.firstVisible = i
			lv.lastVisible = min(lv.firstVisible+lv.height, len(lv.elements))
		} else if i >= lv.lastVisible {
			lv.lastVisible = i + 1
			lv.firstVisible = max(0, lv.lastVisible-lv.height)
		}
		return true
	}
	return false
}

// SetTopText sets the title bar text.
func (lv *ListView) SetTopText(text string) {
	lv.topText = text
}

// SetBottomText sets the status bar text.
func (lv *ListView) SetBottomText(text string) {
	lv.bottomText = text
}

// BottomText returns the current status bar text.
func (lv *ListView) BottomText() string {
	return lv.bottomText
}

// SetBarStyle switches the bar color, used to signal mode changes.
func (lv *ListView) SetBarStyle(style tcell.Style) {
	lv.barStyle = style
}

func (lv *ListView) clampSelection() {
	if lv.selected >= len(lv.elements) {
		lv.selected = len(lv.elements) - 1
	}
	if lv.selected < 0 {
		lv.selected = 0
	}
}

func (lv *ListView) clampViewport() {
	lv.clampSelection()
	lv.lastVisible = min(lv.firstVisible+lv.height, len(lv.elements))
	if lv.selected >= lv.lastVisible {
		lv.lastVisible = lv.selected + 1
		lv.firstVisible = max(0, lv.lastVisible-lv.height)
	}
}

// Draw paints the bars and the visible slice of elements.
func (lv *ListView) Draw(screen tcell.Screen) {
	width, screenHeight := screen.Size()
	lv.Resize(width, screenHeight)

	screen.Clear()

	fillRow(screen, 0, width, lv.barStyle)
	drawText(screen, 1, 0, width-2, lv.barStyle, lv.topText)

	botRow := screenHeight - 1
	fillRow(screen, botRow, width, lv.barStyle)
	drawText(screen, 1, botRow, width-2, lv.barStyle, lv.bottomText)

	if len(lv.elements) == 0 {
		drawText(screen, 1, 1, width-2, lv.styles.Normal.Bold(true), "No files or directories found")
		drawText(screen, 1, 2, width-2, lv.styles.Normal, "(Press 'r' to refresh)")
		screen.Show()
		return
	}

	lv.clampSelection()
	lv.lastVisible = min(lv.firstVisible+lv.height, len(lv.elements))

	for row, i := 0, lv.firstVisible; i < lv.lastVisible && row < lv.height; row, i = row+1, i+1 {
		lv.drawEntry(screen, row+1, width, lv.elements[i], i == lv.selected)
	}

	screen.Show()
}

func (lv *ListView) drawEntry(screen tcell.Screen, y, width int, rec DisplayRecord, selected bool) {
	style := lv.styles.File
	typeChar := "F"
	if rec.IsDir() {
		style = lv.styles.Directory
		typeChar = "D"
	}
	if selected {
		style = style.Bold(true)
		drawText(screen, 1, y, 1, lv.styles.Icon, ">")
	}

	meta := lv.metadataText(rec, width)
	metaPos := width - len(meta) - 2

	nameWidth := width - 5
	if meta != "" {
		nameWidth = metaPos - 5
	}
	name := typeChar + " " + rec.DisplayName()
	if len(name) > nameWidth && nameWidth > 3 {
		name = name[:nameWidth-3] + "..."
	}

	drawText(screen, 3, y, max(0, nameWidth), style, name)
	if meta != "" {
		drawText(screen, metaPos, y, len(meta), style, meta)
	}
}

// metadataText builds the right-aligned size and timestamp column, empty
// on narrow terminals.
func (lv *ListView) metadataText(rec DisplayRecord, width int) string {
	if width <= 40 {
		return ""
	}

	var parts []string
	if size, ok := rec.SizeBytes(); ok && !rec.IsDir() {
		parts = append(parts, humanize.IBytes(uint64(size)))
	}
	if mod, ok := rec.Modified(); ok && !mod.IsZero() {
		parts = append(parts, mod.Format("2006-01-02 15:04"))
	}
	return strings.Join(parts, "  ")
}
