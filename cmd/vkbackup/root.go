package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"vkbackup/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	noColor    bool
	quiet      bool
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vkbackup [user-id]",
	Short: "Back up the most liked VK profile photos to Yandex.Disk",
	Long: `vkbackup copies the most liked profile photos of a VK user to cloud storage.

For every photo the largest available rendition is downloaded. The top
photos by likes (5 by default) are uploaded one after another to a
Yandex.Disk folder, or to an S3-compatible bucket, and a JSON report of
the uploaded files is written.

Running 'vkbackup <user-id>' is the same as 'vkbackup backup <user-id>'.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.SetColor(!noColor)

		if !quiet && cmd.Name() != "version" && cmd.Name() != "help" {
			ui.PrintBanner()
		}
	},
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runBackup(cmd, args)
	},
}

// Execute runs the root command and exits 1 on error
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("Error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default: vkbackup.yaml or ~/.config/vkbackup/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print one line per photo and debug logs")

	rootCmd.SetVersionTemplate(`vkbackup {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// globalFlags maps the persistent flags onto config.MergeCommandLineFlags keys
func globalFlags() map[string]interface{} {
	flags := make(map[string]interface{})
	switch {
	case logLevel != "":
		flags["log-level"] = logLevel
	case quiet:
		flags["log-level"] = "error"
	case verbose:
		flags["log-level"] = "debug"
	}
	if noColor {
		flags["no-color"] = true
	}
	return flags
}
