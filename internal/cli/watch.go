package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sho7650/forge-install/internal/hooks"
	"github.com/sho7650/forge-install/internal/watcher"
)

// Repairer re-registers missing hooks and reports how many it added.
type Repairer interface {
	Repair() (int, error)
}

// RepairNotifier is told when watch mode restored hooks.
type RepairNotifier interface {
	NotifyRepaired(workspace string, added int) error
}

// WatchMode keeps FORGE hooks registered while settings.json is edited.
type WatchMode struct {
	workspace    string
	settingsPath string
	repairer     Repairer
	reporter     *Reporter
	log          logrus.FieldLogger
	notifier     RepairNotifier
	now          func() time.Time
}

// NewWatchMode creates a new WatchMode
func NewWatchMode(workspace, settingsPath string, repairer Repairer, reporter *Reporter, log logrus.FieldLogger) *WatchMode {
	return &WatchMode{
		workspace:    workspace,
		settingsPath: settingsPath,
		repairer:     repairer,
		reporter:     reporter,
		log:          log,
		now:          time.Now,
	}
}

// SetNotifier sets the notifier used after a repair.
func (s *WatchMode) SetNotifier(n RepairNotifier) {
	s.notifier = n
}

// Run repairs once, then again after every change to settings.json, until
// ctx is cancelled or the process receives SIGINT or SIGTERM.
func (s *WatchMode) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New(s.settingsPath)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Stop()

	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	s.reporter.Info("Watching %s... (Ctrl+C to stop)", s.settingsPath)
	s.reporter.Info("---")
	s.repair()

	for {
		select {
		case <-ctx.Done():
			s.reporter.Info("")
			s.reporter.Info("Stopped.")
			return nil

		case event := <-w.Events():
			s.log.WithFields(logrus.Fields{
				"path": event.Path,
				"op":   event.Op.String(),
			}).Debug("settings changed")
			s.repair()

		case err := <-w.Errors():
			s.log.WithError(err).Warn("watcher error")
		}
	}
}

func (s *WatchMode) repair() {
	added, err := s.repairer.Repair()
	if err != nil {
		if errors.Is(err, hooks.ErrMalformedSettings) {
			s.log.WithError(err).Warn("settings.json does not parse, waiting for the next change")
			return
		}
		s.log.WithError(err).Error("repair failed")
		return
	}
	if added == 0 {
		return
	}

	s.reporter.Done("[%s] Restored %d FORGE hook(s)", s.now().Format("15:04:05"), added)
	if s.notifier != nil {
		if err := s.notifier.NotifyRepaired(s.workspace, added); err != nil {
			s.log.WithError(err).Warn("failed to send desktop notification")
		}
	}
}
