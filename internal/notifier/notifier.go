package notifier

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/gen2brain/beeep"
)

const title = "FORGE"

// Notifier handles desktop notifications
type Notifier struct {
	enabled bool
	notify  func(title, message string) error
	alert   func(title, message string) error
}

// New creates a new Notifier
func New(enabled bool) *Notifier {
	return &Notifier{
		enabled: enabled,
		notify:  func(t, m string) error { return beeep.Notify(t, m, "") },
		alert:   func(t, m string) error { return beeep.Alert(t, m, "") },
	}
}

// SetEnabled enables or disables notifications
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// Notify sends a desktop notification
func (n *Notifier) Notify(message string) error {
	if !n.enabled {
		return nil
	}
	return n.notify(title, message)
}

// NotifyWithSound sends a desktop notification with sound (if supported)
func (n *Notifier) NotifyWithSound(message string) error {
	if !n.enabled {
		return nil
	}

	// beeep.Alert includes sound on supported platforms
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		return n.alert(title, message)
	}
	return n.notify(title, message)
}

// NotifyInstalled reports a finished install in workspace.
func (n *Notifier) NotifyInstalled(workspace string) error {
	return n.Notify(filepath.Base(workspace) + ": FORGE installed")
}

// NotifyRepaired reports hooks re-registered by watch mode.
func (n *Notifier) NotifyRepaired(workspace string, added int) error {
	return n.NotifyWithSound(fmt.Sprintf("%s: restored %d FORGE hook(s)", filepath.Base(workspace), added))
}
