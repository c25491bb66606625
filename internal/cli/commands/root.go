package commands

import (
	"errors"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// errReported is returned by commands that already printed the failure
var errReported = errors.New("command failed")

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "attrkit",
		Short: "Attribute resource toolkit",
		Long: color.CyanString(`attrkit - simulation attribute resources

attrkit reads, checks and upgrades attribute resource documents:
definitions with categories and item templates, the attributes built from
them, and the links from attributes to external model components.

Documents in format versions 1 to 3 are read; version 3 is always written.
Stored documents can be served over HTTP.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default ./attrkit.yaml)")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(newValidateCommand(a))
	rootCmd.AddCommand(newUpgradeCommand(a))
	rootCmd.AddCommand(newInfoCommand(a))
	rootCmd.AddCommand(newResolveCommand(a))
	rootCmd.AddCommand(newDocsCommand(a))
	rootCmd.AddCommand(newNewCommand(a))
	rootCmd.AddCommand(newStoreCommand(a))
	rootCmd.AddCommand(newServeCommand(a))
	rootCmd.AddCommand(newTokenCommand(a))
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the attrkit version, Git commit, build date, and Go version",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			out := cmd.OutOrStdout()
			titleColor := color.New(color.FgCyan, color.Bold)

			titleColor.Fprint(out, "attrkit version: ")
			color.New(color.FgWhite).Fprintln(out, Version)
			titleColor.Fprint(out, "Git commit: ")
			color.New(color.FgWhite).Fprintln(out, GitCommit)
			titleColor.Fprint(out, "Build date: ")
			color.New(color.FgWhite).Fprintln(out, BuildDate)
			titleColor.Fprint(out, "Go version: ")
			color.New(color.FgWhite).Fprintln(out, goVer)
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			errorColor := color.New(color.FgRed, color.Bold)
			errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return err
	}
	return nil
}
