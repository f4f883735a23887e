package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gigspace/gigspace/internal/api"
)

var (
	messagesStartGig    string
	messagesSendAttach  string
	messagesHistoryFull bool
)

func init() {
	rootCmd.AddCommand(messagesCmd)
	messagesCmd.AddCommand(messagesListCmd)
	messagesCmd.AddCommand(messagesStartCmd)
	messagesCmd.AddCommand(messagesSendCmd)
	messagesCmd.AddCommand(messagesHistoryCmd)

	messagesStartCmd.Flags().StringVar(&messagesStartGig, "gig", "", "link the conversation to a gig")
	messagesSendCmd.Flags().StringVar(&messagesSendAttach, "attach", "", "file to attach")
	messagesHistoryCmd.Flags().BoolVar(&messagesHistoryFull, "full", false, "print full message bodies")
}

var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "Open the messaging interface",
	Long:  "Open the interactive messaging interface. Subcommands list conversations, start one, or send without leaving the shell.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return uiCmd.RunE(cmd, args)
	},
}

var messagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		conversations, err := client.ListConversations(context.Background())
		if err != nil {
			return fmt.Errorf("list conversations: %w", err)
		}

		if jsonOutput {
			return writeJSON(os.Stdout, conversations)
		}
		if len(conversations) == 0 {
			printf("No conversations.\n")
			return nil
		}

		rows := make([][]string, 0, len(conversations))
		for _, conversation := range conversations {
			gig := "-"
			if conversation.LinkedGig != nil {
				gig = truncateCell(conversation.LinkedGig.Title, 30)
			}
			preview := ""
			if conversation.LastMessage != nil {
				preview = truncateCell(strings.ReplaceAll(conversation.LastMessage.Text, "\n", " "), 40)
				if preview == "" && conversation.LastMessage.AttachmentRef != "" {
					preview = "[file]"
				}
			}
			unread := ""
			if conversation.UnreadCount > 0 {
				unread = fmt.Sprintf("%d", conversation.UnreadCount)
			}
			rows = append(rows, []string{
				conversation.ID,
				conversation.Counterparty(sess.User.ID).DisplayName,
				gig,
				unread,
				preview,
			})
		}
		return writeTable(os.Stdout, []string{"ID", "WITH", "GIG", "UNREAD", "LAST MESSAGE"}, rows)
	},
}

var messagesStartCmd = &cobra.Command{
	Use:   "start <user-id>",
	Short: "Start a conversation with a user",
	Long:  "Start a conversation with a user, or retrieve the existing one. With --gig the conversation is linked to that listing.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSession()
		if err != nil {
			return err
		}
		if _, err := requireSession(store); err != nil {
			return err
		}
		client, err := newClient(store)
		if err != nil {
			return err
		}

		conversation, err := client.CreateConversation(context.Background(), args[0], messagesStartGig)
		if err != nil {
			return fmt.Errorf("start conversation: %w", err)
		}

		if jsonOutput {
			return writeJSON(os.Stdout, conversation)
		}
		printf("Conversation %s ready\n", conversation.ID)
		return nil
	},
}

var messagesSendCmd = &cobra.Command{
	Use:   "send <conversation-id> [text]",
	Short: "Send a message without opening the TUI",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := ""
		if len(args) == 2 {
			text = args[1]
		}
		if strings.TrimSpace(text) == "" && messagesSendAttach == "" {
			return fmt.Errorf("nothing to send: give text, --attach, or both")
		}

		store, err := openSession()
		if err != nil {
			return err
		}
		if _, err := requireSession(store); err != nil {
			return err
		}
		client, err := newClient(store)
		if err != nil {
			return err
		}

		var attachment *api.Attachment
		if messagesSendAttach != "" {
			file, err := os.Open(messagesSendAttach)
			if err != nil {
				return err
			}
			defer file.Close()
			attachment = &api.Attachment{
				Filename: filepath.Base(messagesSendAttach),
				Reader:   file,
			}
		}

		message, err := client.SendMessage(context.Background(), args[0], text, attachment)
		if err != nil {
			return fmt.Errorf("send: %w", err)
		}

		if jsonOutput {
			return writeJSON(os.Stdout, message)
		}
		printf("Sent %s\n", message.ID)
		return nil
	},
}

var messagesHistoryCmd = &cobra.Command{
	Use:   "history <conversation-id>",
	Short: "Print a conversation's messages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		messages, err := client.ListMessages(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("list messages: %w", err)
		}

		if jsonOutput {
			return writeJSON(os.Stdout, messages)
		}

		for _, message := range messages {
			sender := "them"
			if message.SenderID == sess.User.ID {
				sender = "you"
			}
			body := message.Text
			if !messagesHistoryFull {
				body = truncateCell(strings.ReplaceAll(body, "\n", " "), 100)
			}
			if message.AttachmentRef != "" {
				if body != "" {
					body += " "
				}
				body += "[file: " + filepath.Base(message.AttachmentRef) + "]"
			}
			printf("%s  %-4s  %s\n", message.CreatedAt.Local().Format("2006-01-02 15:04"), sender, body)
		}
		return nil
	},
}
