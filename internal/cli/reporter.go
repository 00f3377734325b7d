package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sho7650/forge-install/internal/hooks"
)

// FailureLabel prefixes the single error line printed when a run fails.
const FailureLabel = "Installation failed:"

// Reporter prints progress and results for humans. Styling is dropped
// automatically when the output is not a terminal.
type Reporter struct {
	out    io.Writer
	errOut io.Writer

	check lipgloss.Style
	cross lipgloss.Style
	label lipgloss.Style
	muted lipgloss.Style
}

// NewReporter creates a Reporter writing progress to out and failures to
// errOut.
func NewReporter(out, errOut io.Writer) *Reporter {
	r := lipgloss.NewRenderer(out)
	e := lipgloss.NewRenderer(errOut)
	return &Reporter{
		out:    out,
		errOut: errOut,
		check:  r.NewStyle().Foreground(lipgloss.Color("2")),
		cross:  r.NewStyle().Foreground(lipgloss.Color("1")),
		label:  e.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		muted:  r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Info prints a plain line.
func (r *Reporter) Info(format string, args ...any) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

// Done prints a confirmation line.
func (r *Reporter) Done(format string, args ...any) {
	fmt.Fprintf(r.out, "  %s %s\n", r.check.Render("✓"), fmt.Sprintf(format, args...))
}

// Missing prints a line for something absent.
func (r *Reporter) Missing(format string, args ...any) {
	fmt.Fprintf(r.out, "  %s %s\n", r.cross.Render("✗"), fmt.Sprintf(format, args...))
}

// Failed prints err with the failure label on a single line. Line breaks
// in the message, as left by errors.Join, become "; ".
func (r *Reporter) Failed(err error) {
	var parts []string
	for _, line := range strings.Split(err.Error(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	fmt.Fprintf(r.errOut, "%s %s\n", r.label.Render(FailureLabel), strings.Join(parts, "; "))
}

// Check prints the result of an installation check.
func (r *Reporter) Check(result *hooks.CheckResult) {
	r.Info("FORGE check (%s)", result.Mode)
	r.Info("  Settings: %s", result.SettingsPath)
	r.Info("  Hooks: %s", result.HooksDir)

	for _, id := range result.ConfiguredHooks {
		r.Done("%s", id)
	}
	for _, id := range result.MissingHooks {
		r.Missing("%s not registered", id)
	}
	for _, p := range result.MissingScripts {
		r.Missing("%s missing or not executable", p)
	}
	for _, cmd := range result.StaleCommands {
		r.Missing("%s points to a missing file", cmd)
	}
	for _, p := range result.InvalidPatterns {
		r.Missing("invalid pattern %s", p)
	}

	r.Info("")
	switch {
	case result.Healthy():
		r.Info("FORGE is installed and healthy.")
	case !result.Installed:
		r.Info("FORGE is not installed. Run %s to install it.", r.muted.Render("forge-install"))
	default:
		r.Info("FORGE installation is incomplete. Run %s to repair it.", r.muted.Render("forge-install"))
	}
}
