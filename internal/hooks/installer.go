package hooks

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sho7650/forge-install/internal/assets"
	"github.com/sho7650/forge-install/internal/config"
	"github.com/sho7650/forge-install/internal/jsonval"
	"github.com/sho7650/forge-install/internal/scaffold"
	"github.com/sho7650/forge-install/internal/settings"
)

var (
	// ErrVerification is returned when the installed state does not match
	// what was written.
	ErrVerification = errors.New("verification failed")
	// ErrNotInstalled is returned by Uninstall when no FORGE hook is
	// registered.
	ErrNotInstalled = errors.New("FORGE hooks are not installed")
	// ErrMalformedSettings is returned by Repair when settings.json exists
	// but is not a JSON object.
	ErrMalformedSettings = errors.New("settings.json is malformed")
)

// Progress receives the human-readable lines of a run.
type Progress interface {
	// Info prints a plain line.
	Info(format string, args ...any)
	// Done confirms a completed step.
	Done(format string, args ...any)
}

// Notifier is told when an install finishes.
type Notifier interface {
	NotifyInstalled(workspace string) error
}

// agentDocs are copied from the integration directory into .claude/forge.
var agentDocs = []string{"forge-system-prompt.md", "forge-agent-rules.md"}

const stateScript = "forge-state.sh"

// Installer installs, checks and removes FORGE in one workspace.
type Installer struct {
	cfg      config.Config
	assets   fs.FS
	log      logrus.FieldLogger
	progress Progress
	notifier Notifier
}

// NewInstaller creates an Installer for cfg. Assets come from
// cfg.ForgeRoot, or from the binary when it is empty.
func NewInstaller(cfg config.Config, log logrus.FieldLogger, progress Progress) *Installer {
	return &Installer{
		cfg:      cfg,
		assets:   assets.Source(cfg.ForgeRoot),
		log:      log,
		progress: progress,
	}
}

// SetNotifier sets the notifier used after a successful install.
func (i *Installer) SetNotifier(n Notifier) {
	i.notifier = n
}

// Install scaffolds FORGE into the workspace and registers its hooks.
// Running it again only fills in what is missing.
func (i *Installer) Install() error {
	cfg := i.cfg

	i.progress.Info("Installing FORGE (%s)...", cfg.Mode)
	i.progress.Info("  Workspace: %s", cfg.Root)
	i.progress.Info("  FORGE root: %s", assets.Describe(cfg.ForgeRoot))

	// 1. Directory tree
	if err := scaffold.EnsureDirs(
		cfg.ClaudeDir(),
		cfg.ForgeDir(),
		cfg.HooksDir(),
		filepath.Join(cfg.ForgeDir(), "snapshots"),
		filepath.Join(cfg.ForgeDir(), "archive"),
	); err != nil {
		return err
	}

	// 2. Agent documents (optional)
	for _, name := range agentDocs {
		ok, err := scaffold.CopyFile(i.assets, path.Join(assets.IntegrationDir, name), filepath.Join(cfg.ForgeDir(), name), 0o644)
		if errors.Is(err, scaffold.ErrUnreadable) {
			i.skipAsset(name, err)
			continue
		}
		if err != nil {
			return err
		}
		if ok {
			i.progress.Done("Installed %s", name)
		} else {
			i.log.WithField("asset", name).Debug("asset not present, skipped")
		}
	}

	// 3. Hook scripts
	n, err := scaffold.CopyHookDirs(i.assets, assets.HooksDir, cfg.HooksDir(), HookDirs, i.skipAsset)
	if err != nil {
		return err
	}
	i.log.WithField("files", n).Debug("copied hook scripts")
	i.progress.Done("Installed FORGE hooks")

	// 4. Settings
	if err := i.updateSettings(); err != nil {
		return err
	}

	// 5. Verify, rolling settings back on failure
	if errs := VerifySettings(cfg.SettingsPath(), cfg.Mode); len(errs) > 0 {
		if rerr := settings.Restore(cfg.SettingsPath()); rerr != nil {
			i.log.WithError(rerr).Error("failed to restore settings backup")
		}
		return verificationError(errs)
	}
	for _, err := range ScriptProblems(cfg.HooksDir(), cfg.Mode) {
		i.log.WithError(err).Warn("hook registered without a usable script, run check after fixing the FORGE source")
	}

	// 6. Workflow state
	created, err := scaffold.WriteState(cfg.StateFile())
	if err != nil {
		return err
	}
	if created {
		i.progress.Done("Created active-workflow.md")
	}

	// 7. State helper script
	if err := scaffold.EnsureDirs(cfg.ScriptsDir()); err != nil {
		return err
	}
	ok, err := scaffold.CopyFile(i.assets, path.Join(assets.ScriptsDir, stateScript), filepath.Join(cfg.ScriptsDir(), stateScript), scaffold.ScriptPerm)
	if errors.Is(err, scaffold.ErrUnreadable) {
		i.skipAsset(stateScript, err)
	} else if err != nil {
		return err
	}
	if ok {
		i.progress.Done("Installed %s", stateScript)
	}

	// 8. Knowledge structure
	files, err := scaffold.WriteKnowledge(filepath.Join(cfg.DocsDir(), "knowledge"), cfg.Now())
	if err != nil {
		return err
	}
	i.log.WithField("created", files).Debug("knowledge templates")
	i.progress.Done("Created docs/forge/knowledge/ with templates")

	for _, dir := range scaffold.DocDirs {
		if err := scaffold.EnsureDirs(filepath.Join(cfg.DocsDir(), dir)); err != nil {
			return err
		}
		i.progress.Done("Created docs/forge/%s/", dir)
	}

	i.progress.Info("")
	i.progress.Info("✅ FORGE installation complete!")
	i.progress.Info("")
	i.progress.Info("Next steps:")
	i.progress.Info("  1. Start a workflow: /forge:start")
	if cfg.Mode == config.ModeAO {
		i.progress.Info("  2. FORGE metadata will sync to AO dashboard")
	} else {
		i.progress.Info("  2. Track progress in .claude/forge/active-workflow.md")
	}

	if i.notifier != nil {
		if err := i.notifier.NotifyInstalled(cfg.Root); err != nil {
			i.log.WithError(err).Warn("failed to send desktop notification")
		}
	}

	return nil
}

func (i *Installer) skipAsset(src string, err error) {
	i.log.WithError(err).WithField("asset", src).Warn("skipping unreadable asset")
}

// verificationError folds errs into one single-line error wrapping
// ErrVerification.
func verificationError(errs []error) error {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, strings.ReplaceAll(err.Error(), "\n", " "))
	}
	return fmt.Errorf("%w: %s (restored from backup)", ErrVerification, strings.Join(msgs, "; "))
}

func (i *Installer) updateSettings() error {
	settingsPath := i.cfg.SettingsPath()

	if _, err := settings.Backup(settingsPath); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	doc, err := settings.Load(settingsPath, i.log)
	if err != nil {
		return err
	}

	if i.cfg.SettingsOverlay != nil {
		doc = jsonval.MergeObject(doc, i.cfg.SettingsOverlay)
	}

	doc, added := MergeForgeHooks(doc, i.cfg.HooksDir(), i.cfg.Mode, i.log)
	i.log.WithField("added", added).Debug("merged FORGE hooks")

	if err := settings.Write(settingsPath, doc); err != nil {
		if rerr := settings.Restore(settingsPath); rerr != nil {
			i.log.WithError(rerr).Error("failed to restore settings backup")
		}
		return fmt.Errorf("failed to save settings: %w (restored from backup)", err)
	}

	i.progress.Done("Updated .claude/settings.json")
	return nil
}

// Repair registers any missing FORGE hook without touching anything else.
// It writes settings only when something was added and returns the number
// of entries added. Unlike Install it refuses to reset a settings file that
// does not parse, since that usually means an edit is in progress.
func (i *Installer) Repair() (int, error) {
	settingsPath := i.cfg.SettingsPath()

	doc := jsonval.NewObject()
	if _, err := os.Stat(settingsPath); err == nil {
		if doc, err = ValidateSettingsFile(settingsPath); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrMalformedSettings, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return 0, err
	}

	doc, added := MergeForgeHooks(doc, i.cfg.HooksDir(), i.cfg.Mode, i.log)
	if added == 0 {
		return 0, nil
	}

	if err := settings.Write(settingsPath, doc); err != nil {
		return 0, fmt.Errorf("failed to save settings: %w", err)
	}
	return added, nil
}

// Check reports the state of the FORGE installation.
func (i *Installer) Check() (*CheckResult, error) {
	cfg := i.cfg
	result := &CheckResult{
		Mode:         cfg.Mode,
		SettingsPath: cfg.SettingsPath(),
		HooksDir:     cfg.HooksDir(),
	}

	doc, err := settings.Load(cfg.SettingsPath(), i.log)
	if err != nil {
		return nil, err
	}

	result.Installed = HasForgeHooks(doc)

	for _, h := range Required(cfg.Mode) {
		cmd, ok := RegisteredCommand(doc, h)
		if !ok {
			result.MissingHooks = append(result.MissingHooks, h.ID())
		} else {
			result.ConfiguredHooks = append(result.ConfiguredHooks, h.ID())
			if _, err := os.Stat(cmd); err != nil {
				result.StaleCommands = append(result.StaleCommands, cmd)
			}
		}

		if err := ValidateHookScript(h.Path(cfg.HooksDir())); err != nil {
			result.MissingScripts = append(result.MissingScripts, h.Path(cfg.HooksDir()))
		}
	}

	patterns := registeredPatterns(doc)
	ids := make([]string, 0, len(patterns))
	for id := range patterns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := ValidatePattern(patterns[id]); err != nil {
			result.InvalidPatterns = append(result.InvalidPatterns, fmt.Sprintf("%s: %v", id, err))
		}
	}

	return result, nil
}

// Uninstall removes every FORGE entry from settings, keeping user entries,
// and deletes the installed hook scripts unless opts.KeepFiles is set.
// Workflow state and docs are never removed.
func (i *Installer) Uninstall(opts UninstallOptions) error {
	settingsPath := i.cfg.SettingsPath()

	doc, err := settings.Load(settingsPath, i.log)
	if err != nil {
		return err
	}

	if !HasForgeHooks(doc) {
		return ErrNotInstalled
	}

	if _, err := settings.Backup(settingsPath); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	doc, removed := RemoveForgeHooks(doc)
	if err := settings.Write(settingsPath, doc); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	i.progress.Done("Removed %d FORGE hook(s) from .claude/settings.json", removed)

	if !opts.KeepFiles {
		if err := os.RemoveAll(i.cfg.HooksDir()); err != nil {
			i.log.WithError(err).Warn("failed to remove hook scripts")
		} else {
			i.progress.Done("Removed .claude/forge/hooks/")
		}
	}

	return nil
}
