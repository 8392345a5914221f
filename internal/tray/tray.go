// Package tray puts a pause/resume toggle and a quit action in the system
// tray using getlantern/systray.
package tray

import (
	"fmt"

	"github.com/getlantern/systray"

	"keypulse/internal/engine"
)

// Tray manages the tray icon and its two menu entries. PauseChanged must be
// called when the pause state flips elsewhere so the menu label stays in
// sync.
type Tray struct {
	ctl     *engine.Control
	process string
	onQuit  func()

	pauseItem *systray.MenuItem
	quitCh    chan struct{}
	stateCh   chan bool
}

// New creates a tray for the session targeting process.
func New(ctl *engine.Control, process string, onQuit func()) *Tray {
	return &Tray{
		ctl:     ctl,
		process: process,
		onQuit:  onQuit,
		quitCh:  make(chan struct{}),
		stateCh: make(chan bool, 8),
	}
}

// Run starts the tray event loop (blocks). Must run on the main goroutine
// on platforms where systray requires it.
func (t *Tray) Run() {
	systray.Run(t.setup, t.exit)
}

// Stop removes the tray icon and ends Run.
func (t *Tray) Stop() {
	systray.Quit()
}

// PauseChanged updates the toggle label after an external pause or resume.
func (t *Tray) PauseChanged(paused bool) {
	select {
	case t.stateCh <- paused:
	default:
	}
}

func (t *Tray) setup() {
	systray.SetTitle("KeyPulse")
	systray.SetTooltip(fmt.Sprintf("KeyPulse: %s", t.process))
	systray.SetIcon(getIcon())

	t.pauseItem = systray.AddMenuItem(pauseLabel(t.ctl.Paused()), "Toggle keystroke delivery")
	systray.AddSeparator()
	quitItem := systray.AddMenuItem("Quit", "Stop and exit")

	go func() {
		for {
			select {
			case <-t.pauseItem.ClickedCh:
				paused := t.ctl.TogglePause()
				t.pauseItem.SetTitle(pauseLabel(paused))
			case paused := <-t.stateCh:
				t.pauseItem.SetTitle(pauseLabel(paused))
			case <-quitItem.ClickedCh:
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			case <-t.quitCh:
				return
			}
		}
	}()
}

func (t *Tray) exit() {
	close(t.quitCh)
}

func pauseLabel(paused bool) string {
	if paused {
		return "Resume"
	}
	return "Pause"
}

// getIcon returns a placeholder icon (valid 16x16 ICO)
func getIcon() []byte {
	// A valid 16x16 32-bit ICO file with correct size and DIB header
	icon := make([]byte, 1118)
	// ICO Header
	copy(icon[0:6], []byte{0x00, 0x00, 0x01, 0x00, 0x01, 0x00})
	// Icon Directory
	copy(icon[6:22], []byte{
		0x10, 0x10, 0x00, 0x00, 0x01, 0x00, 0x20, 0x00,
		0x48, 0x04, 0x00, 0x00,
		0x16, 0x00, 0x00, 0x00,
	})
	// DIB Header
	copy(icon[22:62], []byte{
		0x28, 0x00, 0x00, 0x00, // Size
		0x10, 0x00, 0x00, 0x00, // Width
		0x20, 0x00, 0x00, 0x00, // Height (16 * 2 for icon)
		0x01, 0x00, // Planes
		0x20, 0x00, // BPP
		0x00, 0x00, 0x00, 0x00, // Compression
		0x00, 0x04, 0x00, 0x00, // Image Size
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	})
	// The rest (pixels and mask) can stay 0 for transparency
	return icon
}
