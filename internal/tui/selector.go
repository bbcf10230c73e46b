package tui

import (
	"time"

	"github.com/gdamore/tcell/v2"
)

// RemoteInfo is one configured remote shown in the pre-connection
// selector. Details are extra lines for the info dialog (type, host,
// bucket and so on).
type RemoteInfo struct {
	Name    string
	Kind    string
	Details []string
}

// DisplayName implements DisplayRecord.
func (r RemoteInfo) DisplayName() string { return r.Name }

// IsDir implements DisplayRecord. Remotes render in the directory color
// since selecting one opens it.
func (r RemoteInfo) IsDir() bool { return true }

// SizeBytes implements DisplayRecord.
func (r RemoteInfo) SizeBytes() (int64, bool) { return 0, false }

// Modified implements DisplayRecord.
func (r RemoteInfo) Modified() (time.Time, bool) { return time.Time{}, false }

// Selection is the selector's result: which remote to open and where.
type Selection struct {
	Remote string
	Path   string
}

// RunSelector shows the remote selection menu and returns the chosen
// remote, or nil when the user quit.
func RunSelector(remotes []RemoteInfo) (*Selection, error) {
	var result *Selection
	err := withScreen(func(screen tcell.Screen) error {
		ses := newSession(screen)
		defer ses.close()

		sel := &selector{
			ses:    ses,
			styles: DefaultStyles(),
			path:   "/",
		}
		result = sel.run(remotes)
		return nil
	})
	return result, err
}

type selector struct {
	ses    *session
	styles Styles
	list   *ListView
	path   string
}

func (s *selector) run(remotes []RemoteInfo) *Selection {
	width, height := s.ses.screen.Size()
	s.list = NewListView(s.styles, width, height)
	s.list.SetBarStyle(s.styles.SelectorBar)
	s.list.SetTopText("Select Remote")
	s.list.SetBottomText("Press ? for help, i for details, o to open with path")

	records := make([]DisplayRecord, len(remotes))
	for i, r := range remotes {
		records[i] = r
	}
	s.list.SetElements(records)
	s.list.Draw(s.ses.screen)

	for {
		ev := s.ses.waitEvent()
		if ev == nil {
			return nil
		}

		switch ev := ev.(type) {
		case *tcell.EventResize:
			w, h := ev.Size()
			s.list.Resize(w, h)
			s.ses.screen.Sync()
		case *tcell.EventKey:
			if sel, done := s.handleKey(ev); done {
				return sel
			}
		}
		s.list.Draw(s.ses.screen)
	}
}

func (s *selector) handleKey(ev *tcell.EventKey) (*Selection, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		s.list.SelectPrevious()
		return nil, false
	case tcell.KeyDown:
		s.list.SelectNext()
		return nil, false
	case tcell.KeyRight, tcell.KeyEnter:
		return s.connectSelected()
	case tcell.KeyRune:
	default:
		return nil, false
	}

	switch ev.Rune() {
	case 'q':
		return nil, true
	case 'k':
		s.list.SelectPrevious()
	case 'j':
		s.list.SelectNext()
	case 'g':
		s.list.SelectFirst()
	case 'G':
		s.list.SelectLast()
	case 'l':
		return s.connectSelected()
	case 'i':
		s.showDetails()
	case 'o':
		return s.openWithPath()
	case '/':
		s.search()
	case '?':
		showMessage(s.ses, s.styles, "Remote Selector Help", selectorHelp)
	}
	return nil, false
}

func (s *selector) connectSelected() (*Selection, bool) {
	selected, ok := s.list.Selected().(RemoteInfo)
	if !ok {
		return nil, false
	}
	return &Selection{Remote: selected.Name, Path: s.path}, true
}

func (s *selector) showDetails() {
	selected, ok := s.list.Selected().(RemoteInfo)
	if !ok {
		return
	}
	lines := append([]string{
		"Name: " + selected.Name,
		"Type: " + selected.Kind,
	}, selected.Details...)
	showMessage(s.ses, s.styles, "Remote: "+selected.Name, lines)
}

// openWithPath prompts for a starting path and connects straight away.
func (s *selector) openWithPath() (*Selection, bool) {
	path, ok := promptText(s.ses, s.styles, "Open with Path", "Current: "+s.path)
	if !ok {
		return nil, false
	}
	selected, isRemote := s.list.Selected().(RemoteInfo)
	if !isRemote {
		return nil, false
	}
	return &Selection{Remote: selected.Name, Path: path}, true
}

func (s *selector) search() {
	original := s.list.BottomText()
	var query []rune

	redraw := func() {
		s.list.SetBottomText("Search: " + string(query))
		s.list.Draw(s.ses.screen)
	}
	redraw()

	for {
		ev := s.ses.waitEvent()
		if ev == nil {
			break
		}
		key, ok := ev.(*tcell.EventKey)
		if !ok {
			continue
		}

		switch key.Key() {
		case tcell.KeyEscape, tcell.KeyEnter:
			s.list.SetBottomText(original)
			return
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			if len(query) > 0 {
				query = query[:len(query)-1]
				s.list.SelectByPrefix(string(query))
				redraw()
			}
		case tcell.KeyRune:
			if key.Rune() >= ' ' {
				query = append(query, key.Rune())
				s.list.SelectByPrefix(string(query))
				redraw()
			}
		}
	}
}
