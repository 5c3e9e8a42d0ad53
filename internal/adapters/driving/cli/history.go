package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and manage the chat history",
	Long:  `Show, summarise, compact or clear the persisted chat history.`,
}

var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the chat history",
	Args:  cobra.NoArgs,
	RunE:  runHistoryShow,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show history statistics",
	Args:  cobra.NoArgs,
	RunE:  runHistoryStats,
}

var historyCompactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Summarise older turns now",
	Long: `Replace all but the most recent turns with a single summary.
Does nothing while the history is within the configured limit.`,
	Args: cobra.NoArgs,
	RunE: runHistoryCompact,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard the chat history",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyCompactCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

// restoreHistory loads the persisted history into the chat service.
func restoreHistory(cmd *cobra.Command) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	err := chatService.Restore(cmd.Context())
	switch {
	case errors.Is(err, domain.ErrCompactionFailed):
		cmd.PrintErrf("Warning: %v (history kept)\n", err)
	case err != nil:
		return fmt.Errorf("failed to load history: %w", err)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, _ []string) error {
	if err := restoreHistory(cmd); err != nil {
		return err
	}
	printHistory(cmd, chatService.History())
	return nil
}

func runHistoryStats(cmd *cobra.Command, _ []string) error {
	if err := restoreHistory(cmd); err != nil {
		return err
	}
	printStats(cmd, chatService.Stats())
	return nil
}

func runHistoryCompact(cmd *cobra.Command, _ []string) error {
	if err := restoreHistory(cmd); err != nil {
		return err
	}
	before := len(chatService.History())

	history, err := chatService.Compact(cmd.Context())
	if err != nil {
		return fmt.Errorf("compaction failed: %w", err)
	}

	if len(history) == before {
		cmd.Printf("History is within budget (%d turns), nothing to compact.\n", before)
		return nil
	}
	cmd.Printf("Compacted %d turns into %d.\n", before, len(history))
	return nil
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	if err := chatService.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	cmd.Println("History cleared.")
	return nil
}
