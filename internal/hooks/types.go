package hooks

import (
	"path/filepath"

	"github.com/sho7650/forge-install/internal/config"
	"github.com/sho7650/forge-install/internal/jsonval"
)

// Event is a lifecycle point at which Claude runs hooks.
type Event string

const (
	EventSessionStart Event = "SessionStart"
	EventPreToolUse   Event = "PreToolUse"
	EventPostToolUse  Event = "PostToolUse"
	EventPreCompact   Event = "PreCompact"
)

// Events are the events FORGE registers hooks for, in registration order.
var Events = []Event{
	EventSessionStart,
	EventPreToolUse,
	EventPostToolUse,
	EventPreCompact,
}

// HookDirs are the directories copied from the FORGE hooks tree.
var HookDirs = []string{
	"_lib",
	string(EventSessionStart),
	string(EventPreToolUse),
	string(EventPostToolUse),
	string(EventPreCompact),
}

// EntryType tags FORGE entries in settings.json.
const EntryType = "shell"

// Entry is one element of a hooks.<Event> array in settings.json.
type Entry struct {
	Type    string
	Command string
	Tools   []string
	When    string
	Pattern string
}

// Name is the script file name that identifies the entry.
func (e Entry) Name() string {
	return filepath.Base(e.Command)
}

// Value converts the entry into its settings.json form. Optional fields
// are omitted when empty.
func (e Entry) Value() *jsonval.Object {
	obj := jsonval.NewObject()
	obj.Set("type", jsonval.String(e.Type))
	obj.Set("command", jsonval.String(e.Command))
	if len(e.Tools) > 0 {
		obj.Set("tools", jsonval.StringSlice(e.Tools))
	}
	if e.When != "" {
		obj.Set("when", jsonval.String(e.When))
	}
	if e.Pattern != "" {
		obj.Set("pattern", jsonval.String(e.Pattern))
	}
	return obj
}

// Hook is a FORGE script and how it is registered.
type Hook struct {
	Event   Event
	Script  string
	Tools   []string
	When    string
	Pattern string
	// AOOnly hooks are skipped in standalone mode.
	AOOnly bool
}

// Path returns the installed location of the script under hooksDir.
func (h Hook) Path(hooksDir string) string {
	return filepath.Join(hooksDir, string(h.Event), h.Script)
}

// Entry returns the settings entry that runs the script installed under
// hooksDir.
func (h Hook) Entry(hooksDir string) Entry {
	return Entry{
		Type:    EntryType,
		Command: h.Path(hooksDir),
		Tools:   h.Tools,
		When:    h.When,
		Pattern: h.Pattern,
	}
}

// ID is "<Event>/<script>".
func (h Hook) ID() string {
	return string(h.Event) + "/" + h.Script
}

var editTools = []string{"Edit", "Write"}
var writeTools = []string{"Write", "Edit"}

// ForgeHooks is the fixed hook list. Within an event, entries are appended
// in this order.
var ForgeHooks = []Hook{
	{Event: EventSessionStart, Script: "forge-init.sh"},
	{Event: EventPreToolUse, Script: "block-env-edits.sh", Tools: editTools, When: "before"},
	{Event: EventPreToolUse, Script: "block-lockfile-edits.sh", Tools: editTools, When: "before"},
	{Event: EventPostToolUse, Script: "ao-sync-metadata.sh", Tools: writeTools, When: "after", AOOnly: true},
	{Event: EventPostToolUse, Script: "type-check.sh", Tools: writeTools, When: "after", Pattern: "*.ts|*.tsx"},
	{Event: EventPostToolUse, Script: "lint-check.sh", Tools: writeTools, When: "after"},
	{Event: EventPreCompact, Script: "pre-compact.sh"},
}

// Required returns the hooks installed in mode, in ForgeHooks order.
func Required(mode config.Mode) []Hook {
	out := make([]Hook, 0, len(ForgeHooks))
	for _, h := range ForgeHooks {
		if h.AOOnly && mode != config.ModeAO {
			continue
		}
		out = append(out, h)
	}
	return out
}

// RequiredFor returns the hooks of Required(mode) registered on event.
func RequiredFor(mode config.Mode, event Event) []Hook {
	var out []Hook
	for _, h := range Required(mode) {
		if h.Event == event {
			out = append(out, h)
		}
	}
	return out
}

// UninstallOptions controls Installer.Uninstall.
type UninstallOptions struct {
	// KeepFiles leaves the installed hook scripts on disk.
	KeepFiles bool
}

// CheckResult describes the FORGE installation in a workspace.
type CheckResult struct {
	Installed    bool
	Mode         config.Mode
	SettingsPath string
	HooksDir     string
	// ConfiguredHooks and MissingHooks hold Hook IDs.
	ConfiguredHooks []string
	MissingHooks    []string
	// MissingScripts lists installed scripts that are absent or not
	// executable.
	MissingScripts []string
	// StaleCommands lists registered FORGE commands whose file does not
	// exist on this machine.
	StaleCommands   []string
	InvalidPatterns []string
}

// Healthy reports whether nothing needs repair.
func (r *CheckResult) Healthy() bool {
	return r.Installed &&
		len(r.MissingHooks) == 0 &&
		len(r.MissingScripts) == 0 &&
		len(r.InvalidPatterns) == 0
}
