package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
)

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"conv"},
	Short:   "Manage saved conversations",
}

var conversationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved conversations",
	Args:  cobra.NoArgs,
	RunE:  runConversationsList,
}

var conversationsShowCmd = &cobra.Command{
	Use:   "show [conversation-id]",
	Short: "Print a saved conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationsShow,
}

var conversationsSaveCmd = &cobra.Command{
	Use:   "save [title]",
	Short: "Save the current history as a conversation",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConversationsSave,
}

func init() {
	conversationsCmd.AddCommand(conversationsListCmd)
	conversationsCmd.AddCommand(conversationsShowCmd)
	conversationsCmd.AddCommand(conversationsSaveCmd)
	rootCmd.AddCommand(conversationsCmd)
}

func runConversationsList(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	convs, err := chatService.ListConversations(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list conversations: %w", err)
	}

	if len(convs) == 0 {
		cmd.Println("No saved conversations.")
		return nil
	}

	for _, c := range convs {
		cmd.Printf("%s  %s  %s", c.ID, c.SavedAt.Format("2006-01-02 15:04"), c.Title)
		if c.Provider != "" {
			cmd.Printf("  [%s]", c.Provider)
		}
		cmd.Println()
	}
	return nil
}

func runConversationsShow(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	conv, err := chatService.GetConversation(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("conversation %s not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to get conversation: %w", err)
	}

	cmd.Printf("%s\n", conv.Title)
	cmd.Printf("Saved: %s\n", conv.SavedAt.Format("2006-01-02 15:04"))
	if conv.Provider != "" {
		cmd.Printf("Provider: %s\n", conv.Provider)
	}
	cmd.Println()
	printHistory(cmd, conv.Turns)
	return nil
}

func runConversationsSave(cmd *cobra.Command, args []string) error {
	if err := restoreHistory(cmd); err != nil {
		return err
	}

	title := ""
	if len(args) == 1 {
		title = args[0]
	}
	conv, err := chatService.SaveConversation(cmd.Context(), title)
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	cmd.Printf("Saved %q (%s, %d turns)\n", conv.Title, conv.ID, len(conv.Turns))
	return nil
}
