package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"vkbackup/pkg/auth"
	"vkbackup/pkg/ui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored VK and Yandex.Disk tokens",
	Long: `Manage stored tokens.

Accounts are kept in:
  - the system keychain (when available)
  - an encrypted file with a PBKDF2 derived key
  - VKBACKUP_VK_TOKEN / VKBACKUP_DISK_TOKEN (read only)

vkbackup does not run the OAuth flows itself. Obtain the tokens first,
see 'vkbackup auth guide'.`,
}

var loginCmd = &cobra.Command{
	Use:   "login [name]",
	Short: "Store tokens under an account name",
	Example: `  # Interactive login, account name "default"
  vkbackup auth login

  # Named account
  vkbackup auth login work`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored accounts",
	RunE:  runList,
}

var removeCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"logout"},
	Short:   "Remove a stored account",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Explain how to obtain the tokens",
	Run: func(cmd *cobra.Command, args []string) {
		auth.ShowTokenGuide(ui.Output)
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(listCmd)
	authCmd.AddCommand(removeCmd)
	authCmd.AddCommand(guideCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	name := "default"
	if len(args) > 0 {
		name = strings.TrimSpace(args[0])
	}

	reader := bufio.NewReader(os.Stdin)
	auth.ShowQuickGuide(ui.Output)
	fmt.Fprintln(ui.Output)

	if existing, _ := manager.Retrieve(name); existing != nil {
		fmt.Fprintf(ui.Output, "Account '%s' already exists. Replace it? (y/N): ", name)
		answer, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y") {
			return nil
		}
	}

	fmt.Fprint(ui.Output, "VK access token: ")
	vkToken, err := readSecret(reader)
	if err != nil {
		return fmt.Errorf("failed to read VK token: %w", err)
	}

	fmt.Fprint(ui.Output, "VK user id (optional): ")
	rawID, _ := reader.ReadString('\n')
	var userID int64
	if rawID = strings.TrimSpace(rawID); rawID != "" {
		if userID, err = parseUserID(rawID); err != nil {
			return err
		}
	}

	fmt.Fprint(ui.Output, "Yandex.Disk OAuth token: ")
	diskToken, err := readSecret(reader)
	if err != nil {
		return fmt.Errorf("failed to read Disk token: %w", err)
	}

	account := &auth.Account{
		Name:      name,
		VKToken:   vkToken,
		VKUserID:  userID,
		DiskToken: diskToken,
	}
	if err := manager.Store(account); err != nil {
		return err
	}

	safe := auth.SanitizeAccount(account)
	ui.PrintSuccess(fmt.Sprintf("Account saved: %s", name))
	ui.PrintInfo("VK token", safe.VKToken)
	ui.PrintInfo("Disk token", safe.DiskToken)
	fmt.Fprintf(ui.Output, "\nUse it with: vkbackup backup <user-id> --account %s\n", name)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	accounts, err := manager.List()
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		ui.PrintWarning("No stored accounts. Run 'vkbackup auth login' to add one.")
		return nil
	}

	ui.PrintHighlight("Stored accounts")
	for i, account := range accounts {
		safe := auth.SanitizeAccount(account)
		marker := " "
		if i == 0 {
			marker = "*"
		}
		user := "-"
		if safe.VKUserID != 0 {
			user = fmt.Sprintf("id%d", safe.VKUserID)
		}
		fmt.Fprintf(ui.Output, "%s %-12s %-12s vk=%s disk=%s %s\n",
			marker, safe.Name, user, safe.VKToken, safe.DiskToken,
			ui.Dim(safe.LastModified.Format("2006-01-02 15:04")))
	}
	fmt.Fprintln(ui.Output, ui.Dim("* used when no --account is given"))
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	if err := manager.Delete(args[0]); err != nil {
		if errors.Is(err, auth.ErrCredentialsNotFound) {
			return fmt.Errorf("no stored account named %q", args[0])
		}
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Account removed: %s", args[0]))
	return nil
}

// readSecret reads a line without echo when stdin is a terminal
func readSecret(reader *bufio.Reader) (string, error) {
	fd := int(syscall.Stdin)
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(ui.Output)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
