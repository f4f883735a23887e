package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gigspace/gigspace/internal/session"
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Log in to the marketplace",
	Long:  "Authenticate against the marketplace server and cache the session tokens locally.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := ""
		if len(args) == 1 {
			username = strings.TrimSpace(args[0])
		}
		if username == "" {
			fmt.Fprint(os.Stdout, "Username: ")
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			username = strings.TrimSpace(line)
		}
		if username == "" {
			return fmt.Errorf("username required")
		}

		password, err := readPassword()
		if err != nil {
			return err
		}

		store, err := openSession()
		if err != nil {
			return err
		}
		client, err := newClient(nil)
		if err != nil {
			return err
		}

		result, err := client.Login(context.Background(), username, password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		if err := store.Save(&session.Session{
			AccessToken:  result.AccessToken,
			RefreshToken: result.RefreshToken,
			User:         result.User,
		}); err != nil {
			return fmt.Errorf("save session: %w", err)
		}

		printf("Logged in as %s\n", result.User.Username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the cached session",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSession()
		if err != nil {
			return err
		}
		if err := store.Clear(); err != nil {
			return err
		}
		printf("Logged out\n")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSession()
		if err != nil {
			return err
		}
		sess, err := requireSession(store)
		if err != nil {
			return err
		}

		if jsonOutput {
			return writeJSON(os.Stdout, sess.User)
		}

		role := "buyer"
		if sess.User.IsFreelancer {
			role = "freelancer"
		}
		printf("%s <%s> (%s)\n", sess.User.Username, sess.User.Email, role)
		return nil
	},
}

func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		// Piped input: read the password from stdin.
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stdout, "Password: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stdout)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
