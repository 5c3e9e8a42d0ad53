package cli

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with a bounded, self-compacting history",
	Long: `Start a conversation. Once the history grows past the configured number of
turns, older turns are replaced by a single summary and only the most recent
turns are kept verbatim.

On a terminal this opens the full-screen chat UI. Use --plain, or pipe input,
for a line-based session with these commands:
  /history          show the current history
  /stats            show history statistics
  /compact          summarise older turns now
  /clear            discard the history
  /save [title]     save the conversation
  /persona [name]   show or switch the persona
  /quit             leave`,
	RunE: runChat,
}

// isTerminal reports whether both stdin and stdout are terminals.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func init() {
	chatCmd.Flags().String("persona", "", "persona for this session (assistant, coder, writer, teacher, analyst)")
	chatCmd.Flags().Bool("plain", false, "use the line-based session even on a terminal")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	if persona, _ := cmd.Flags().GetString("persona"); persona != "" {
		if err := chatService.SetPersona(domain.Persona(persona)); err != nil {
			return err
		}
	}

	watchPrompts(cmd.Context())

	plain, _ := cmd.Flags().GetBool("plain")
	if !plain && isTerminal() {
		return runTUI(cmd)
	}
	return runChatLines(cmd)
}

func runChatLines(cmd *cobra.Command) error {
	ctx := cmd.Context()
	switch err := chatService.Restore(ctx); {
	case errors.Is(err, domain.ErrCompactionFailed):
		cmd.PrintErrf("Warning: %v (history kept)\n", err)
	case err != nil:
		cmd.PrintErrf("Warning: could not restore history: %v\n", err)
	}

	stats := chatService.Stats()
	cmd.Printf("Chatting as %s. %d turn(s) in history. Type /quit to leave.\n",
		chatService.Persona(), stats.Turns)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print("You: ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := chatCommand(cmd, line); quit {
				return nil
			}
			continue
		}

		reply, _, err := chatService.Send(ctx, line)
		if reply != "" {
			cmd.Printf("Assistant: %s\n", reply)
		}
		switch {
		case errors.Is(err, domain.ErrCompactionFailed):
			cmd.PrintErrf("Warning: %v (history kept)\n", err)
		case err != nil:
			cmd.PrintErrf("Error: %v\n", err)
		}
	}
}

// chatCommand runs a slash command and reports whether the session should end.
func chatCommand(cmd *cobra.Command, line string) bool {
	ctx := cmd.Context()
	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch command {
	case "/quit", "/exit":
		return true
	case "/help":
		cmd.Println(cmd.Long)
	case "/history":
		printHistory(cmd, chatService.History())
	case "/stats":
		printStats(cmd, chatService.Stats())
	case "/clear":
		if err := chatService.Clear(ctx); err != nil {
			cmd.PrintErrf("Error: %v\n", err)
			return false
		}
		cmd.Println("History cleared.")
	case "/compact":
		history, err := chatService.Compact(ctx)
		if err != nil {
			cmd.PrintErrf("Error: %v\n", err)
			return false
		}
		cmd.Printf("History has %d turn(s).\n", len(history))
	case "/save":
		conv, err := chatService.SaveConversation(ctx, arg)
		if err != nil {
			cmd.PrintErrf("Error: %v\n", err)
			return false
		}
		cmd.Printf("Saved %q (%s)\n", conv.Title, conv.ID)
	case "/persona":
		if arg == "" {
			cmd.Printf("Persona: %s\n", chatService.Persona())
			cmd.Printf("Available: %s\n", personaNames())
			return false
		}
		if err := chatService.SetPersona(domain.Persona(arg)); err != nil {
			cmd.PrintErrf("Error: %v\n", err)
			return false
		}
		cmd.Printf("Persona: %s\n", arg)
	default:
		cmd.Printf("Unknown command %s. Type /help.\n", command)
	}
	return false
}

func personaNames() string {
	personas := domain.AllPersonas()
	names := make([]string, len(personas))
	for i, p := range personas {
		names[i] = p.String()
	}
	return strings.Join(names, ", ")
}

func printHistory(cmd *cobra.Command, turns []domain.Turn) {
	if len(turns) == 0 {
		cmd.Println("History is empty.")
		return
	}
	for i, turn := range turns {
		if turn.IsSummary() {
			cmd.Printf("%d. [summary] %s\n", i+1, turn.AssistantText)
			continue
		}
		cmd.Printf("%d. You: %s\n", i+1, turn.UserText)
		cmd.Printf("   Assistant: %s\n", turn.AssistantText)
	}
}

func printStats(cmd *cobra.Command, stats domain.HistoryStats) {
	cmd.Printf("Turns: %d (%d summary)\n", stats.Turns, stats.SummaryTurns)
	cmd.Printf("Characters: %d (average %d per turn)\n", stats.TotalChars, stats.AverageChars())
	if maxTurns > 0 {
		cmd.Printf("Compaction at: %d turns\n", maxTurns)
	}
}
