package cli

import (
	"fmt"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ctxwin/internal/adapters/driving/tui"
	"github.com/custodia-labs/ctxwin/internal/logger"
)

// runTUI runs the full-screen chat until the user quits or ctx is cancelled.
// A panic inside the program is turned into an error so the terminal is restored.
func runTUI(cmd *cobra.Command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debug("chat UI stack:\n%s", debug.Stack())
			err = fmt.Errorf("chat UI crashed: %v", r)
		}
	}()

	app, err := tui.NewApp(tui.NewPorts(chatService, maxTurns))
	if err != nil {
		return fmt.Errorf("starting chat UI: %w", err)
	}
	app.WithContext(cmd.Context())

	program := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("chat UI: %w", err)
	}

	if a, ok := final.(*tui.App); ok {
		cmd.Printf("%d turn(s) in history.\n", len(a.History()))
	}
	return nil
}
