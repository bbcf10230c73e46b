package tui

import (
	"context"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ftpc/ftpc/internal/logging"
	"github.com/ftpc/ftpc/internal/storage"
	"github.com/ftpc/ftpc/internal/task"
)

// Mode is the navigation state: browsing the connected remote, or
// picking a local file to upload.
type Mode int

const (
	ModeBrowse Mode = iota
	ModePickUploadSource
)

// pollInterval is how long the foreground waits for one input event
// between handle checks while an operation is in flight.
const pollInterval = 20 * time.Millisecond

// navigator owns the session state: the active backend, the current
// path, the history stack, and the mode. All terminal and state access
// happens on the foreground goroutine; backend calls go through the
// task runner.
type navigator struct {
	ses    *session
	styles Styles
	runner *task.Runner
	list   *ListView
	log    *logging.Logger

	backend storage.Storage
	path    string
	history []string
	mode    Mode

	parkedBackend storage.Storage
	parkedPath    string

	status   string
	localDir string

	newLocalBackend func() storage.Storage
}

func newNavigator(ses *session, styles Styles, runner *task.Runner, log *logging.Logger, backend storage.Storage, initialPath, localDir string, newLocal func() storage.Storage) *navigator {
	width, height := 80, 24
	if ses != nil {
		width, height = ses.screen.Size()
	}
	return &navigator{
		ses:             ses,
		styles:          styles,
		runner:          runner,
		list:            NewListView(styles, width, height),
		log:             log,
		backend:         backend,
		path:            initialPath,
		localDir:        localDir,
		newLocalBackend: newLocal,
	}
}

// run is the main input loop. It returns normally on quit and after a
// fatal backend error has been shown and acknowledged.
func (n *navigator) run() error {
	if err := n.refresh(); err != nil {
		n.showFatal(err)
		return nil
	}
	n.draw()

	for {
		ev := n.ses.waitEvent()
		if ev == nil {
			return nil
		}

		n.status = ""
		var fatal error

		switch ev := ev.(type) {
		case *tcell.EventResize:
			w, h := ev.Size()
			n.list.Resize(w, h)
			n.ses.screen.Sync()
		case *tcell.EventKey:
			var quit bool
			quit, fatal = n.handleKey(ev)
			if quit {
				return nil
			}
		}

		if fatal != nil {
			n.showFatal(fatal)
			return nil
		}
		n.draw()
	}
}

// handleKey dispatches one keypress. The first return requests quit; the
// second carries a fatal backend error.
func (n *navigator) handleKey(ev *tcell.EventKey) (bool, error) {
	switch ev.Key() {
	case tcell.KeyUp:
		n.list.SelectPrevious()
		return false, nil
	case tcell.KeyDown:
		n.list.SelectNext()
		return false, nil
	case tcell.KeyRight, tcell.KeyEnter:
		return false, n.activateSelected()
	case tcell.KeyLeft:
		return false, n.navigateBack()
	case tcell.KeyRune:
	default:
		return false, nil
	}

	switch ev.Rune() {
	case 'q':
		return true, nil
	case 'k':
		n.list.SelectPrevious()
	case 'j':
		n.list.SelectNext()
	case 'g':
		n.list.SelectFirst()
	case 'G':
		n.list.SelectLast()
	case 'l':
		return false, n.activateSelected()
	case 'h':
		return false, n.navigateBack()
	case 'p':
		return false, n.navigateToParent()
	case 'r':
		return false, n.refresh()
	case 'u':
		return false, n.toggleUploadMode()
	case 'd':
		return false, n.deleteSelected()
	case 'm':
		return false, n.makeDirectory()
	case '/':
		n.search()
	case '?':
		showMessage(n.ses, n.styles, "Key Commands", browseHelp)
	}
	return false, nil
}

// activateSelected enters a directory, or starts a transfer when a file
// is selected: download in browse mode, upload in pick mode.
func (n *navigator) activateSelected() error {
	selected := n.list.Selected()
	if selected == nil {
		return nil
	}
	if selected.IsDir() {
		return n.enterDirectory(selected.DisplayName())
	}
	if n.mode == ModePickUploadSource {
		return n.uploadFile(selected)
	}
	return n.downloadFile(selected)
}

// enterDirectory descends into a child directory, pushing the current
// path onto the history stack.
func (n *navigator) enterDirectory(name string) error {
	n.history = append(n.history, n.path)
	n.path = path.Join(n.path, name)
	return n.refresh()
}

// navigateBack pops the history stack. No-op when the stack is empty.
func (n *navigator) navigateBack() error {
	if len(n.history) == 0 {
		return nil
	}
	n.path = n.history[len(n.history)-1]
	n.history = n.history[:len(n.history)-1]
	return n.refresh()
}

// navigateToParent moves to the parent directory. No-op at the root,
// where the parent equals the current path.
func (n *navigator) navigateToParent() error {
	parent := path.Dir(n.path)
	if parent == n.path {
		return nil
	}
	n.history = append(n.history, n.path)
	n.path = parent
	return n.refresh()
}

func (n *navigator) toggleUploadMode() error {
	if n.mode == ModeBrowse {
		return n.enterUploadMode()
	}
	return n.exitUploadMode()
}

// enterUploadMode parks the remote backend and path, swaps in a local
// backend rooted at the process working directory, and clears history.
func (n *navigator) enterUploadMode() error {
	n.parkedBackend = n.backend
	n.parkedPath = n.path
	n.mode = ModePickUploadSource
	n.backend = n.newLocalBackend()
	n.path = n.localDir
	n.history = nil
	n.list.SetBarStyle(n.styles.UploadBar)
	n.status = "In upload mode - Press u to exit"
	return n.refresh()
}

// exitUploadMode restores the parked remote backend and path.
func (n *navigator) exitUploadMode() error {
	n.mode = ModeBrowse
	n.backend = n.parkedBackend
	n.path = n.parkedPath
	n.parkedBackend = nil
	n.parkedPath = ""
	n.history = nil
	n.list.SetBarStyle(n.styles.Bar)
	n.status = "Exited upload mode"
	return n.refresh()
}

// deleteSelected removes the selected file after confirmation. Only
// allowed in browse mode, and only for files.
func (n *navigator) deleteSelected() error {
	if n.mode != ModeBrowse {
		return nil
	}
	selected := n.list.Selected()
	if selected == nil {
		return nil
	}
	if selected.IsDir() {
		n.status = "Cannot delete directories"
		return nil
	}

	name := selected.DisplayName()
	if !n.confirmAction(fmt.Sprintf("Delete %s? This cannot be undone.", name)) {
		n.status = "Deletion cancelled"
		return nil
	}

	target := path.Join(n.path, name)
	backend := n.backend
	h, err := n.runner.Submit(func(ctx context.Context) (interface{}, error) {
		return backend.Delete(ctx, target)
	})
	if err != nil {
		return err
	}
	result, err := n.waitHandle(h)
	if err != nil {
		if storage.IsFatal(err) {
			return err
		}
		n.status = fmt.Sprintf("Error deleting %s: %v", name, err)
		return nil
	}
	if ok, _ := result.(bool); !ok {
		n.status = "Failed to delete " + name
		return nil
	}

	n.log.Info().Str("path", target).Msg("deleted")
	n.status = "Deleted: " + name
	return n.refresh()
}

// makeDirectory prompts for a name and creates it under the current
// path.
func (n *navigator) makeDirectory() error {
	name, ok := n.promptName("Create Directory", "New directory name:")
	if !ok {
		return nil
	}

	target := path.Join(n.path, name)
	backend := n.backend
	h, err := n.runner.Submit(func(ctx context.Context) (interface{}, error) {
		return backend.Mkdir(ctx, target)
	})
	if err != nil {
		return err
	}
	result, err := n.waitHandle(h)
	if err != nil {
		if storage.IsFatal(err) {
			return err
		}
		n.status = fmt.Sprintf("Error creating %s: %v", name, err)
		return nil
	}
	if ok, _ := result.(bool); !ok {
		n.status = "Failed to create " + name
		return nil
	}

	n.status = "Created: " + name
	return n.refresh()
}

// refresh re-lists the active backend at the active path through the
// runner and rebuilds the list view. Listing failures clear the view and
// set a status message; only connection-level errors propagate.
func (n *navigator) refresh() error {
	backend, dir := n.backend, n.path
	h, err := n.runner.Submit(func(ctx context.Context) (interface{}, error) {
		return backend.List(ctx, dir)
	})
	if err != nil {
		return err
	}

	result, err := n.waitHandle(h)
	if err != nil {
		if storage.IsFatal(err) {
			return err
		}
		n.log.Error().Err(err).Str("dir", dir).Msg("listing failed")
		n.status = fmt.Sprintf("Listing failed: %v", err)
		n.list.SetElements(nil)
		n.updateBars()
		return nil
	}

	entries, _ := result.([]storage.Entry)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	records := make([]DisplayRecord, len(entries))
	for i := range entries {
		records[i] = entries[i]
	}
	n.list.SetElements(records)
	n.updateBars()
	return nil
}

// updateBars refreshes the title and status bar text from the session
// state.
func (n *navigator) updateBars() {
	if n.mode == ModePickUploadSource {
		n.list.SetTopText("Select a file to upload")
	} else {
		n.list.SetTopText(n.backend.Name())
	}

	if n.status != "" {
		n.list.SetBottomText(n.status)
	} else {
		n.list.SetBottomText(n.path)
	}
}

func (n *navigator) draw() {
	n.updateBars()
	if n.ses != nil {
		n.list.Draw(n.ses.screen)
	}
}

// search runs an incremental prefix search: each keystroke narrows the
// selection, Escape or Enter leaves search mode.
func (n *navigator) search() {
	if n.ses == nil {
		return
	}

	original := n.list.BottomText()
	var query []rune

	redraw := func() {
		n.list.SetBottomText("Search: " + string(query))
		n.list.Draw(n.ses.screen)
	}
	redraw()

	for {
		ev := n.ses.waitEvent()
		if ev == nil {
			break
		}
		key, ok := ev.(*tcell.EventKey)
		if !ok {
			continue
		}

		switch key.Key() {
		case tcell.KeyEscape, tcell.KeyEnter:
			n.list.SetBottomText(original)
			n.list.Draw(n.ses.screen)
			return
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			if len(query) > 0 {
				query = query[:len(query)-1]
				n.list.SelectByPrefix(string(query))
				redraw()
			}
		case tcell.KeyRune:
			if key.Rune() >= ' ' {
				query = append(query, key.Rune())
				n.list.SelectByPrefix(string(query))
				redraw()
			}
		}
	}
}

// waitHandle blocks the foreground on an in-flight operation while still
// servicing input, so Escape can cancel a slow listing. Headless
// sessions (tests) just wait for the result.
func (n *navigator) waitHandle(h *task.Handle) (interface{}, error) {
	if n.ses == nil {
		return h.Result(0)
	}
	for !h.Done() {
		ev, ok := n.ses.pollEvent(pollInterval)
		if !ok {
			continue
		}
		if key, isKey := ev.(*tcell.EventKey); isKey && key.Key() == tcell.KeyEscape {
			h.Cancel()
		}
	}
	return h.Result(0)
}

// confirmAction asks the user to confirm. Headless sessions auto-accept
// so state-machine tests can drive operations directly.
func (n *navigator) confirmAction(message string) bool {
	if n.ses == nil {
		return true
	}
	ok := confirm(n.ses, n.styles, message)
	n.draw()
	return ok
}

func (n *navigator) promptName(title, prompt string) (string, bool) {
	if n.ses == nil {
		return "", false
	}
	name, ok := promptText(n.ses, n.styles, title, prompt)
	n.draw()
	return name, ok
}

// showFatal replaces the whole screen with the error and waits for an
// explicit quit so the user can read the message.
func (n *navigator) showFatal(err error) {
	n.log.Error().Err(err).Msg("session ended by fatal error")
	if n.ses == nil {
		return
	}
	drawFatalScreen(n.ses, n.styles, err)
}
