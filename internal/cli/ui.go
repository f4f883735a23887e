package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gigspace/gigspace/internal/chat"
	"github.com/gigspace/gigspace/internal/events"
	"github.com/gigspace/gigspace/internal/tui"
)

func init() {
	rootCmd.AddCommand(uiCmd)
}

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the messaging interface",
	Long:  "Open the interactive messaging interface. This is the default when gigspace runs without arguments.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !hasTTY() {
			return errNoTTY
		}

		store, err := openSession()
		if err != nil {
			return err
		}
		sess, err := requireSession(store)
		if err != nil {
			return err
		}
		client, err := newClient(store)
		if err != nil {
			return err
		}

		engine := chat.NewEngine(client, events.NewInMemoryPublisher(), chat.EngineConfig{
			SelfID:       sess.User.ID,
			PollInterval: appConfig.Chat.PollInterval,
		})

		return tui.Run(context.Background(), engine, sess.User, tui.Config{
			Theme:          appConfig.TUI.Theme,
			ShowTimestamps: appConfig.TUI.ShowTimestamps,
		})
	},
}

var errNoTTY = &ttyError{}

type ttyError struct{}

func (*ttyError) Error() string {
	return "the messaging interface needs an interactive terminal; use the subcommands instead (gigspace --help)"
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
