package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ctxwin/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/ctxwin/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/ctxwin/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ctxwin/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ctxwin/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ctxwin/internal/core/domain"
)

// chromeHeight is the rows taken by the title, input and status bar.
const chromeHeight = 5

// App is the chat TUI following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	input      *input.MessageInput
	status     *status.Bar
	transcript viewport.Model

	// history mirrors the chat service after every exchange.
	history []domain.Turn

	// pending is the submitted message awaiting its reply.
	pending string
	busy    bool

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	bar := status.NewBar(s, km)
	bar.SetPersona(ports.Chat.Persona().String())

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		input:       input.NewMessageInput(s),
		status:      bar,
		transcript:  viewport.New(80, 20),
		currentView: messages.ViewChat,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.input.Init(),
		tea.SetWindowTitle("ctxwin chat"),
		a.restoreCmd(),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.MessageSubmitted:
		return a, a.send(msg.Text)

	case messages.ReplyReceived:
		a.busy = false
		a.status.SetState(status.StateReady)
		if msg.Reply == "" && msg.Err != nil {
			// nothing was recorded; give the message back
			a.input.SetValue(a.pending)
		} else {
			a.history = msg.History
		}
		a.pending = ""
		a.setErr(msg.Err)
		a.refresh()
		return a, nil

	case messages.HistoryRestored:
		a.history = msg.History
		a.setErr(msg.Err)
		a.refresh()
		return a, nil

	case messages.HistoryCompacted:
		a.busy = false
		a.status.SetState(status.StateReady)
		if msg.Err == nil {
			a.history = msg.History
			a.status.SetMessage("History compacted")
		}
		a.setErr(msg.Err)
		a.refresh()
		return a, nil

	case messages.HistoryCleared:
		if msg.Err == nil {
			a.history = nil
			a.status.SetMessage("History cleared")
		}
		a.setErr(msg.Err)
		a.refresh()
		return a, nil

	case messages.ConversationSaved:
		if msg.Err == nil && msg.Conversation != nil {
			a.status.SetMessage(fmt.Sprintf("Saved %q", msg.Conversation.Title))
		}
		a.setErr(msg.Err)
		return a, nil

	case messages.PersonaChanged:
		if msg.Err == nil {
			a.status.SetPersona(msg.Persona.String())
			a.status.SetMessage("Persona: " + msg.Persona.String())
		}
		a.setErr(msg.Err)
		return a, nil

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.ErrorOccurred:
		a.setErr(msg.Err)
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if a.currentView == messages.ViewHelp {
		if keymap.Matches(key, a.keymap.Help) || key == "esc" {
			a.currentView = messages.ViewChat
			return a, nil
		}
		if key == "ctrl+c" {
			return a, tea.Quit
		}
		return a, nil
	}

	switch {
	case keymap.Matches(key, a.keymap.Quit):
		return a, tea.Quit
	case keymap.Matches(key, a.keymap.Help):
		a.currentView = messages.ViewHelp
		return a, nil
	case keymap.Matches(key, a.keymap.ScrollUp):
		a.transcript.PageUp()
		return a, nil
	case keymap.Matches(key, a.keymap.ScrollDown):
		a.transcript.PageDown()
		return a, nil
	}

	if a.busy {
		return a, nil
	}

	switch {
	case keymap.Matches(key, a.keymap.Clear):
		return a, a.clearCmd()
	case keymap.Matches(key, a.keymap.Compact):
		return a, a.compact()
	case keymap.Matches(key, a.keymap.Save):
		return a, a.saveCmd("")
	case keymap.Matches(key, a.keymap.Send):
		text := a.input.Submit()
		if text == "" {
			return a, nil
		}
		if strings.HasPrefix(text, "/") {
			return a, a.runCommand(text)
		}
		return a, a.send(text)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// runCommand handles slash commands typed into the input.
func (a *App) runCommand(line string) tea.Cmd {
	fields := strings.Fields(line)
	arg := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))

	switch fields[0] {
	case "/clear":
		return a.clearCmd()
	case "/compact":
		return a.compact()
	case "/save":
		return a.saveCmd(arg)
	case "/persona":
		return a.personaCmd(domain.Persona(arg))
	case "/help":
		a.currentView = messages.ViewHelp
		return nil
	case "/quit", "/exit":
		return tea.Quit
	}
	a.setErr(fmt.Errorf("unknown command %s", fields[0]))
	return nil
}

func (a *App) send(text string) tea.Cmd {
	a.busy = true
	a.pending = text
	a.status.Clear()
	a.status.SetState(status.StateThinking)
	a.refresh()

	chat, ctx := a.ports.Chat, a.ctx
	return func() tea.Msg {
		reply, history, err := chat.Send(ctx, text)
		return messages.ReplyReceived{Reply: reply, History: history, Err: err}
	}
}

func (a *App) compact() tea.Cmd {
	a.busy = true
	a.status.Clear()
	a.status.SetState(status.StateCompacting)

	chat, ctx := a.ports.Chat, a.ctx
	return func() tea.Msg {
		history, err := chat.Compact(ctx)
		return messages.HistoryCompacted{History: history, Err: err}
	}
}

func (a *App) restoreCmd() tea.Cmd {
	chat, ctx := a.ports.Chat, a.ctx
	return func() tea.Msg {
		err := chat.Restore(ctx)
		return messages.HistoryRestored{History: chat.History(), Err: err}
	}
}

func (a *App) clearCmd() tea.Cmd {
	chat, ctx := a.ports.Chat, a.ctx
	return func() tea.Msg {
		return messages.HistoryCleared{Err: chat.Clear(ctx)}
	}
}

func (a *App) saveCmd(title string) tea.Cmd {
	chat, ctx := a.ports.Chat, a.ctx
	return func() tea.Msg {
		conv, err := chat.SaveConversation(ctx, title)
		return messages.ConversationSaved{Conversation: conv, Err: err}
	}
}

func (a *App) personaCmd(persona domain.Persona) tea.Cmd {
	chat := a.ports.Chat
	return func() tea.Msg {
		return messages.PersonaChanged{Persona: persona, Err: chat.SetPersona(persona)}
	}
}

func (a *App) setErr(err error) {
	a.err = err
	if err == nil {
		return
	}
	a.status.SetState(status.StateError)
	switch {
	case errors.Is(err, domain.ErrCompactionFailed):
		a.status.SetMessage("compaction failed, history kept")
	default:
		a.status.SetMessage(err.Error())
	}
}

// refresh re-renders the transcript and history counters.
func (a *App) refresh() {
	a.status.SetHistory(len(a.history), a.ports.MaxTurns)
	a.transcript.SetContent(a.renderTranscript())
	a.transcript.GotoBottom()
}

func (a *App) renderTranscript() string {
	wrap := lipgloss.NewStyle().Width(a.transcript.Width)
	var b strings.Builder

	if len(a.history) == 0 && a.pending == "" {
		return a.styles.Muted.Render("No messages yet. Say hello.")
	}

	for _, turn := range a.history {
		if turn.IsSummary() {
			b.WriteString(a.styles.Summary.Width(a.transcript.Width - 2).
				Render("Summary of earlier conversation:\n" + turn.AssistantText))
			b.WriteString("\n\n")
			continue
		}
		b.WriteString(wrap.Render(a.styles.UserLabel.Render("You: ") + turn.UserText))
		b.WriteString("\n")
		b.WriteString(wrap.Render(a.styles.AssistantLabel.Render("Assistant: ") + turn.AssistantText))
		b.WriteString("\n\n")
	}

	if a.pending != "" {
		b.WriteString(wrap.Render(a.styles.UserLabel.Render("You: ") + a.pending))
		b.WriteString("\n")
		b.WriteString(a.styles.Muted.Render("Assistant is thinking..."))
	}

	return strings.TrimRight(b.String(), "\n")
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	if a.currentView == messages.ViewHelp {
		return a.viewHelp()
	}

	title := a.styles.Title.Render("ctxwin chat")
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		a.transcript.View(),
		a.input.View(),
		a.status.View(),
	)
}

func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\nKeys:\n")
	for _, row := range a.keymap.FullHelp() {
		for _, binding := range row {
			h := binding.Help()
			fmt.Fprintf(&b, "  %-10s %s\n", h.Key, h.Desc)
		}
	}
	b.WriteString("\nCommands:\n")
	b.WriteString("  /clear           discard the history\n")
	b.WriteString("  /compact         summarise older turns now\n")
	b.WriteString("  /save [title]    save the conversation\n")
	b.WriteString("  /persona <name>  switch persona\n")
	b.WriteString("  /quit            exit\n")
	b.WriteString("\n")
	b.WriteString(a.styles.Help.Render("[esc] back to chat"))
	return b.String()
}

// History returns the history as last reported by the chat service.
func (a *App) History() []domain.Turn {
	return a.history
}

// Busy reports whether a reply or compaction is in flight.
func (a *App) Busy() bool {
	return a.busy
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sizes the transcript, input and status bar.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	viewHeight := height - chromeHeight
	if viewHeight < 3 {
		viewHeight = 3
	}
	a.transcript.Width = width
	a.transcript.Height = viewHeight
	a.input.SetWidth(width)
	a.status.SetWidth(width)
	a.refresh()
}
