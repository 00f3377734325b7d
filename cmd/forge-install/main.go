package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sho7650/forge-install/internal/cli"
	"github.com/sho7650/forge-install/internal/config"
	"github.com/sho7650/forge-install/internal/hooks"
	"github.com/sho7650/forge-install/internal/logging"
	"github.com/sho7650/forge-install/internal/notifier"
)

var version = "dev"

type options struct {
	workspace string
	mode      string
	forgeRoot string
	notify    bool
	verbose   bool
	keepFiles bool
}

func main() {
	reporter := cli.NewReporter(os.Stdout, os.Stderr)
	if err := newRootCmd(reporter, os.Stderr).Execute(); err != nil {
		reporter.Failed(err)
		os.Exit(1)
	}
}

func newRootCmd(reporter *cli.Reporter, logOut io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "forge-install",
		Short: "Install FORGE workflow hooks into a Claude Code workspace",
		Long: `forge-install scaffolds the FORGE hook scripts, workflow state and
knowledge templates into a workspace and registers the hooks in
.claude/settings.json. Running it again only adds what is missing.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, _, err := setup(cmd, opts, reporter, logOut)
			if err != nil {
				return err
			}
			return inst.Install()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.workspace, "workspace", "w", "", "Workspace directory (default: current directory)")
	flags.StringVarP(&opts.mode, "mode", "m", "", "Installation mode: ao or standalone (default: $"+config.ModeEnvVar+", .forge.yml, then ao)")
	flags.StringVar(&opts.forgeRoot, "forge-root", "", "Read FORGE assets from this directory instead of the built-in copy")
	flags.BoolVar(&opts.notify, "notify", false, "Send a desktop notification when done")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Report the state of the FORGE installation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, _, err := setup(cmd, opts, reporter, logOut)
			if err != nil {
				return err
			}
			result, err := inst.Check()
			if err != nil {
				return err
			}
			reporter.Check(result)
			return nil
		},
	}
	rootCmd.AddCommand(checkCmd)

	uninstallCmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove FORGE hooks from settings.json",
		Long: `Remove every FORGE hook entry from .claude/settings.json, keeping your
own hooks, and delete the installed hook scripts. Workflow state and
docs/forge are left in place.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, _, err := setup(cmd, opts, reporter, logOut)
			if err != nil {
				return err
			}
			err = inst.Uninstall(hooks.UninstallOptions{KeepFiles: opts.keepFiles})
			if errors.Is(err, hooks.ErrNotInstalled) {
				reporter.Info("%v, nothing to do.", err)
				return nil
			}
			return err
		},
	}
	uninstallCmd.Flags().BoolVar(&opts.keepFiles, "keep-files", false, "Keep the hook scripts in .claude/forge/hooks")
	rootCmd.AddCommand(uninstallCmd)

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-register FORGE hooks whenever settings.json changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, cfg, err := setup(cmd, opts, reporter, logOut)
			if err != nil {
				return err
			}
			log := logging.New(logOut, "watch", cfg.Verbose)
			w := cli.NewWatchMode(cfg.Root, cfg.SettingsPath(), inst, reporter, log)
			w.SetNotifier(notifier.New(cfg.Notify))
			return w.Run(cmd.Context())
		},
	}
	rootCmd.AddCommand(watchCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "forge-install %s\n", version)
		},
	}
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

func setup(cmd *cobra.Command, opts *options, reporter *cli.Reporter, logOut io.Writer) (*hooks.Installer, config.Config, error) {
	cfgOpts := []config.Option{
		config.WithWorkspace(opts.workspace),
		config.WithMode(opts.mode),
		config.WithForgeRoot(opts.forgeRoot),
		config.WithVerbose(opts.verbose),
	}
	if cmd.Flags().Changed("notify") {
		cfgOpts = append(cfgOpts, config.WithNotify(opts.notify))
	}

	cfg, err := config.Resolve(cfgOpts...)
	if err != nil {
		return nil, config.Config{}, err
	}

	log := logging.New(logOut, cmd.Name(), cfg.Verbose)
	log.WithFields(logrus.Fields{
		"workspace": cfg.Root,
		"mode":      cfg.Mode,
	}).Debug("resolved configuration")

	inst := hooks.NewInstaller(cfg, log, reporter)
	if cfg.Notify {
		inst.SetNotifier(notifier.New(true))
	}
	return inst, cfg, nil
}
