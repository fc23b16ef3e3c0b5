package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"vkbackup/pkg/config"
	"vkbackup/pkg/logger"
	"vkbackup/pkg/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage vkbackup configuration files.

Configuration is merged from, highest priority first:
  - Command line flags
  - VKBACKUP_* environment variables (also read from .env)
  - Configuration file
  - Default values`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is written to vkbackup.yaml in the current directory unless a
different path is given with --config.`,
	RunE: runConfigInit,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Show the configuration merged from all sources. Tokens and keys are masked.`,
	RunE:  runConfigShow,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Validate the merged configuration and check that the credentials needed
for a backup are present.`,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# vkbackup configuration
#
# Every value can also be set with an environment variable, e.g.
# VKBACKUP_VK_TOKEN, VKBACKUP_DISK_TOKEN, VKBACKUP_VK_USER_ID.

vk:
  # Access token with the photos scope
  token: "YOUR_VK_TOKEN"
  # Profile to back up when no user id is given on the command line
  user_id: 0
  api_version: "5.199"
  base_url: "https://api.vk.com"

disk:
  # yadisk or s3
  backend: "yadisk"
  # Yandex.Disk OAuth token
  token: "YOUR_DISK_TOKEN"
  folder: "vk_photos"
  base_url: "https://cloud-api.yandex.net"
  overwrite: true
  # Used when backend is s3
  s3:
    endpoint: ""
    access_key: ""
    secret_key: ""
    bucket: ""
    region: "us-east-1"
    use_ssl: true

selection:
  # Number of most liked photos to upload
  limit: 5

naming:
  prefix: "photo"
  # Append the photo id to avoid name collisions
  include_photo_id: false

storage:
  # Keep downloaded photos in local_dir instead of a temporary directory
  keep_local: false
  local_dir: "."
  report_file: "photos_info.json"

http:
  timeout: 30s

retry:
  # 1 sends every request once
  max_attempts: 1
  initial_backoff: 1s
  max_backoff: 30s
  multiplier: 2.0

logging:
  # debug, info, warn, error, disabled
  level: "info"
  # text or json
  format: "text"
  file: ""

ui:
  progress: true
  tui: false
  color: true
  notifications: false
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = "vkbackup.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0600); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Fprintln(ui.Output, "\nNext steps:")
	fmt.Fprintln(ui.Output, "1. Add your VK and Yandex.Disk tokens (see 'vkbackup auth guide')")
	fmt.Fprintln(ui.Output, "2. Run 'vkbackup config validate'")
	fmt.Fprintln(ui.Output, "3. Run 'vkbackup backup <user-id>'")
	return nil
}

// maskedCopy returns cfg with every secret masked
func maskedCopy(cfg *config.Config) config.Config {
	masked := *cfg
	masked.VK.Token = logger.MaskSecret(cfg.VK.Token)
	masked.Disk.Token = logger.MaskSecret(cfg.Disk.Token)
	masked.Disk.S3.AccessKey = logger.MaskSecret(cfg.Disk.S3.AccessKey)
	masked.Disk.S3.SecretKey = logger.MaskSecret(cfg.Disk.S3.SecretKey)
	return masked
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, globalFlags())
	if err != nil {
		return err
	}

	display := maskedCopy(cfg)
	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current configuration")
	fmt.Fprintln(ui.Output)
	fmt.Fprint(ui.Output, string(data))

	source := configFile
	if source == "" {
		source = config.FindConfigFile()
	}
	if source == "" {
		source = "(none found)"
	}
	fmt.Fprintln(ui.Output)
	ui.PrintInfo("Configuration file", source)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	source := configFile
	if source == "" {
		source = config.FindConfigFile()
	}
	if source != "" {
		ui.PrintInfo("Validating", source)
	}

	cfg, err := config.Load(configFile, globalFlags())
	if err != nil {
		return err
	}
	if err := cfg.ValidateCredentials(); err != nil {
		ui.PrintWarning("Configuration is valid but incomplete:")
		return err
	}

	ui.PrintSuccess("Configuration is valid")
	ui.PrintInfo("Destination", fmt.Sprintf("%s:%s", cfg.Disk.Backend, cfg.Disk.Folder))
	ui.PrintInfo("Photos per run", fmt.Sprintf("%d", cfg.Selection.Limit))
	return nil
}
