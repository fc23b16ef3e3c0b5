package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"vkbackup/pkg/auth"
	"vkbackup/pkg/backup"
	"vkbackup/pkg/config"
	"vkbackup/pkg/logger"
	"vkbackup/pkg/report"
	"vkbackup/pkg/ui"
	"vkbackup/pkg/ui/tui"
)

var (
	// Backup command flags
	vkToken       string
	diskToken     string
	folder        string
	backend       string
	limit         int
	keepLocal     bool
	localDir      string
	reportFile    string
	maxAttempts   int
	timeout       time.Duration
	accountName   string
	useTUI        bool
	notifications bool
)

var backupCmd = &cobra.Command{
	Use:   "backup [user-id]",
	Short: "Upload the most liked profile photos of a VK user",
	Long: `Fetch the profile album of a VK user, pick the most liked photos and
upload the largest rendition of each to the destination folder.

Credentials are taken from, in order:
  - --vk-token / --disk-token flags
  - VKBACKUP_VK_TOKEN / VKBACKUP_DISK_TOKEN environment variables
  - the configuration file
  - a stored account (see 'vkbackup auth login')

The user id may be omitted when vk.user_id is configured.`,
	Example: `  # Back up the top 5 photos of user 1 to the default folder
  vkbackup backup 1

  # Top 10 photos into a custom folder, keeping the local copies
  vkbackup backup id1 --limit 10 --folder vk_backup --keep-local

  # Upload to an S3 bucket configured in vkbackup.yaml
  vkbackup backup 1 --backend s3

  # Interactive progress
  vkbackup backup 1 --tui`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBackup,
}

func init() {
	rootCmd.AddCommand(backupCmd)

	for _, cmd := range []*cobra.Command{backupCmd, rootCmd} {
		f := cmd.Flags()
		f.StringVar(&vkToken, "vk-token", "", "VK access token")
		f.StringVar(&diskToken, "disk-token", "", "Yandex.Disk OAuth token")
		f.StringVarP(&folder, "folder", "f", "", "destination folder (default vk_photos)")
		f.StringVar(&backend, "backend", "", "destination backend: yadisk or s3")
		f.IntVarP(&limit, "limit", "n", 0, "number of photos to upload (default 5)")
		f.BoolVar(&keepLocal, "keep-local", false, "keep downloaded photos in --local-dir")
		f.StringVar(&localDir, "local-dir", "", "directory for kept photos (default current directory)")
		f.StringVar(&reportFile, "report", "", "report file path (default photos_info.json)")
		f.IntVar(&maxAttempts, "max-attempts", 0, "attempts per HTTP request, 1 disables retries")
		f.DurationVar(&timeout, "timeout", 0, "HTTP client timeout")
		f.StringVarP(&accountName, "account", "a", "", "use a stored account")
		f.BoolVar(&useTUI, "tui", false, "use the interactive terminal UI")
		f.BoolVar(&notifications, "notifications", false, "send a desktop notification when done")
	}
}

// parseUserID accepts 12345 or id12345
func parseUserID(arg string) (int64, error) {
	s := strings.TrimPrefix(strings.TrimSpace(arg), "id")
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid VK user id %q", arg)
	}
	return id, nil
}

// backupFlags collects the flags the user actually set
func backupFlags(cmd *cobra.Command) map[string]interface{} {
	flags := globalFlags()
	f := cmd.Flags()

	set := func(name string, value interface{}) {
		if f.Changed(name) {
			flags[name] = value
		}
	}
	set("vk-token", vkToken)
	set("disk-token", diskToken)
	set("folder", folder)
	set("backend", backend)
	set("limit", limit)
	set("keep-local", keepLocal)
	set("local-dir", localDir)
	set("report", reportFile)
	set("max-attempts", maxAttempts)
	set("timeout", timeout)
	set("tui", useTUI)
	set("notifications", notifications)
	return flags
}

func runBackup(cmd *cobra.Command, args []string) error {
	flags := backupFlags(cmd)
	if len(args) == 1 {
		userID, err := parseUserID(args[0])
		if err != nil {
			return err
		}
		flags["user-id"] = userID
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return err
	}

	// Console logs would tear the alternate screen apart; once the UI is up
	// they go to its log panel instead
	preamble := cfg.Logging
	if cfg.UI.TUI && preamble.File == "" {
		preamble.Level = "disabled"
	}
	if err := logger.Initialize(&preamble); err != nil {
		return err
	}
	log := logger.GetLogger()
	log.WithField("version", version).Debug("vkbackup starting")

	if err := resolveCredentials(cfg, log); err != nil {
		return err
	}
	if err := cfg.ValidateCredentials(); err != nil {
		ui.PrintWarning("Run 'vkbackup auth login' to store tokens, or see 'vkbackup auth guide'.")
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	label := fmt.Sprintf("id%d", cfg.VK.UserID)

	var rep *report.Report
	if cfg.UI.TUI {
		rep, err = runWithTUI(ctx, stop, cfg, label)
	} else {
		var runner *backup.Runner
		runner, err = backup.New(cfg, log)
		if err != nil {
			return fmt.Errorf("failed to initialize backup: %w", err)
		}
		if !quiet {
			ui.PrintInfo("VK user", label)
			ui.PrintInfo("Destination", fmt.Sprintf("%s:%s", cfg.Disk.Backend, cfg.Disk.Folder))
		}
		if cfg.UI.Progress && !quiet {
			runner.SetProgress(ui.NewProgressDisplay(label, verbose))
		}
		rep, err = runner.Run(ctx, cfg.VK.UserID)
	}

	uploaded := 0
	if rep != nil {
		uploaded = rep.Len()
	}
	notifier := ui.NewNotifier(cfg.UI.Notifications)
	if nerr := notifier.BackupFinished(uploaded, cfg.Disk.Folder, err); nerr != nil {
		log.WithError(nerr).Debug("Desktop notification failed")
	}

	switch {
	case errors.Is(err, backup.ErrNoPhotos):
		ui.PrintWarning(fmt.Sprintf("No photos found for %s", label))
		return nil
	case errors.Is(err, context.Canceled):
		ui.PrintWarning(fmt.Sprintf("Cancelled after %d photos", uploaded))
		return err
	case err != nil:
		return err
	}

	if !quiet {
		ui.PrintSuccess(fmt.Sprintf("Uploaded %d photos (%s)", uploaded, ui.FormatBytes(rep.TotalBytes())))
		if cfg.Storage.ReportFile != "" {
			ui.PrintInfo("Report", cfg.Storage.ReportFile)
		}
	}
	return nil
}

// resolveCredentials fills missing tokens from a stored account. An explicit
// --account must exist; otherwise the lookup is best effort.
func resolveCredentials(cfg *config.Config, log logger.Logger) error {
	if accountName == "" && cfg.ValidateCredentials() == nil {
		return nil
	}

	manager, err := auth.NewManager()
	if err != nil {
		if accountName != "" {
			return fmt.Errorf("failed to open credential store: %w", err)
		}
		log.WithError(err).Debug("Credential store unavailable")
		return nil
	}

	var account *auth.Account
	if accountName != "" {
		account, err = manager.Retrieve(accountName)
		if err != nil {
			return fmt.Errorf("account %q not found, see 'vkbackup auth list': %w", accountName, err)
		}
	} else {
		account, err = manager.RetrieveDefault()
		if err != nil {
			return nil
		}
	}

	account.Apply(cfg)
	log.WithField("account", account.Name).Info("Using stored credentials")
	return nil
}

type runResult struct {
	rep *report.Report
	err error
}

// runWithTUI runs the backup behind the bubbletea UI. Quitting the UI
// cancels the run. Log events of the run are shown in the UI's log panel.
func runWithTUI(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, label string) (*report.Report, error) {
	terminal := tui.NewTUI(label, cancel)

	// The program must be running before anything is sent to it
	tuiDone := make(chan error, 1)
	go func() {
		tuiDone <- terminal.Run()
	}()

	log, err := logger.NewWithSink(&cfg.Logging, terminal)
	if err == nil {
		logger.SetLogger(log)
	}

	var runner *backup.Runner
	if err == nil {
		runner, err = backup.New(cfg, log)
	}
	if err != nil {
		terminal.Stop()
		<-tuiDone
		return nil, fmt.Errorf("failed to initialize backup: %w", err)
	}
	runner.SetProgress(terminal)

	runDone := make(chan runResult, 1)
	go func() {
		rep, err := runner.Run(ctx, cfg.VK.UserID)
		runDone <- runResult{rep, err}
	}()

	select {
	case res := <-runDone:
		// Leave the final state on screen for a moment
		time.Sleep(time.Second)
		terminal.Stop()
		<-tuiDone
		return res.rep, res.err
	case err := <-tuiDone:
		cancel()
		res := <-runDone
		if err != nil {
			return res.rep, fmt.Errorf("terminal UI failed: %w", err)
		}
		return res.rep, res.err
	}
}
