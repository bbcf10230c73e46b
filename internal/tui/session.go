// Package tui implements the interactive file browser: the list view,
// the navigation state machine, dialogs, and the transfer flow. The
// terminal is owned by exactly one foreground goroutine; storage calls
// run on the task runner's background worker.
package tui

import (
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ftpc/ftpc/internal/logging"
	"github.com/ftpc/ftpc/internal/storage"
	"github.com/ftpc/ftpc/internal/storage/local"
	"github.com/ftpc/ftpc/internal/task"
)

// stopTimeout bounds the shutdown join on the background worker. A
// worker stuck in a dead network call is detached rather than allowed to
// hang the process.
const stopTimeout = 5 * time.Second

// RunSession opens the terminal and browses the given backend starting
// at initialPath. The backend must already be connected; the caller
// closes it. Returns nil on normal quit, including quit from a fatal
// error screen.
func RunSession(backend storage.Storage, initialPath string, log *logging.Logger) error {
	if log == nil {
		log = logging.NewDiscardLogger()
	}

	localDir, err := os.Getwd()
	if err != nil {
		localDir = "."
	}

	return withScreen(func(screen tcell.Screen) error {
		ses := newSession(screen)
		defer ses.close()

		runner := task.NewRunner()
		if err := runner.Start(); err != nil {
			return err
		}
		defer runner.Stop(stopTimeout)

		nav := newNavigator(ses, DefaultStyles(), runner, log, backend, initialPath, localDir,
			func() storage.Storage { return local.New() })
		return nav.run()
	})
}

// ShowError opens the terminal just long enough to display a fatal
// error, used when the session cannot even start (connection refused,
// bad credentials).
func ShowError(err error) error {
	return withScreen(func(screen tcell.Screen) error {
		ses := newSession(screen)
		defer ses.close()
		drawFatalScreen(ses, DefaultStyles(), err)
		return nil
	})
}

// drawFatalScreen replaces the whole screen with the error message and
// blocks until the user quits. Fatal errors never auto-exit so the
// message stays readable.
func drawFatalScreen(s *session, styles Styles, err error) {
	screen := s.screen
	screen.Clear()

	width, _ := screen.Size()
	errStyle := tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	drawText(screen, 2, 1, width-4, errStyle, "Session error")
	drawText(screen, 2, 3, width-4, styles.Normal, err.Error())
	drawText(screen, 2, 5, width-4, styles.Normal, "Press 'q' to quit")
	screen.Show()

	for {
		ev := s.waitEvent()
		if ev == nil {
			return
		}
		if key, ok := ev.(*tcell.EventKey); ok {
			if key.Key() == tcell.KeyEscape {
				return
			}
			if key.Key() == tcell.KeyRune && (key.Rune() == 'q' || key.Rune() == 'Q') {
				return
			}
		}
	}
}
