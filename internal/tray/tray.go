// Package tray provides the system tray interface for the blink monitor.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/MDidoStar/blinkwell/internal/blink"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle    func(monitoring bool)
	onDashboard func()
	onQuit      func()
	monitoring  bool
	mu          sync.RWMutex

	// Menu items stored for later updates
	menuToggle     *systray.MenuItem
	menuLastMinute *systray.MenuItem
}

// New creates a new Tray instance. Monitoring starts off.
func New() *Tray {
	return &Tray{}
}

// OnToggle sets the callback called when monitoring is toggled from the menu.
func (t *Tray) OnToggle(fn func(monitoring bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnDashboard sets the callback called when the dashboard menu item is clicked.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnQuit sets the callback called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit asks the tray loop to exit.
func (t *Tray) Quit() {
	systray.Quit()
}

// SetMonitoring updates the toggle item to reflect state changed elsewhere,
// for example a session that completed on its own.
func (t *Tray) SetMonitoring(monitoring bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.monitoring = monitoring
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(monitoring))
	}
}

// ShowMinute updates the last-minute item with a closed minute summary.
func (t *Tray) ShowMinute(summary blink.MinuteSummary) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.menuLastMinute != nil {
		t.menuLastMinute.SetTitle(fmt.Sprintf("Last minute: %d / %d blinks", summary.Blinks, blink.NormalMax))
	}
}

func toggleTitle(monitoring bool) string {
	if monitoring {
		return "● Monitoring"
	}
	return "○ Idle"
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Blinkwell")
	systray.SetTooltip("Blinkwell Eye Health Monitor")

	t.menuToggle = systray.AddMenuItem(toggleTitle(false), "Toggle blink monitoring")
	systray.AddSeparator()

	t.menuLastMinute = systray.AddMenuItem("Last minute: none", "Blinks in the last closed minute")
	t.menuLastMinute.Disable()
	systray.AddSeparator()

	menuDashboard := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Blinkwell")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuDashboard.ClickedCh:
				t.handleDashboard()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.monitoring = !t.monitoring
	monitoring := t.monitoring
	t.menuToggle.SetTitle(toggleTitle(monitoring))
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(monitoring)
	}
}

// handleDashboard handles the dashboard menu item click.
func (t *Tray) handleDashboard() {
	t.mu.RLock()
	callback := t.onDashboard
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}
