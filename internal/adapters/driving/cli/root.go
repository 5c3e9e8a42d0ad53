// Package cli provides the cobra command tree for ctxwin.
// It is a driving adapter: commands talk to the core only through driving ports.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ctxwin/internal/core/ports/driving"
	"github.com/custodia-labs/ctxwin/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services injected by the composition root.
var (
	documentService driving.DocumentQAService
	chatService     driving.ChatService
	settingsService driving.SettingsService
	promptWatcher   PromptWatcher
	maxTurns        int
)

// PromptWatcher reports prompt templates that changed on disk.
type PromptWatcher interface {
	Watch(ctx context.Context) (<-chan string, error)
}

// Services bundles what the commands need.
type Services struct {
	Documents driving.DocumentQAService
	Chat      driving.ChatService
	Settings  driving.SettingsService

	// Prompts enables prompt hot reload in long-running commands. Optional.
	Prompts PromptWatcher

	// MaxTurns is shown next to the history size. Optional.
	MaxTurns int

	// Close releases stores and backends. Optional.
	Close func() error
}

// Options are the global flags passed to the Bootstrapper.
type Options struct {
	// ConfigDir overrides the default configuration directory.
	ConfigDir string
}

// Bootstrapper builds the services once global flags are parsed.
type Bootstrapper func(opts Options) (*Services, error)

var (
	bootstrap     Bootstrapper
	closeServices func() error

	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "ctxwin",
	Short: "Ask questions of your documents and chat within a bounded context window",
	Long: `ctxwin keeps what is sent to a language model inside a fixed budget.

In document mode it splits loaded files into overlapping chunks, scores them
against each question and sends only the best few. In chat mode it keeps a
rolling history and replaces older turns with a summary once it grows too long.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.ctxwin)")
}

// SetBootstrapper sets the function that builds services before a command runs.
func SetBootstrapper(b Bootstrapper) {
	bootstrap = b
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	version = v
}

// SetServices injects services directly, bypassing the bootstrapper.
func SetServices(s *Services) {
	documentService = s.Documents
	chatService = s.Chat
	settingsService = s.Settings
	promptWatcher = s.Prompts
	maxTurns = s.MaxTurns
	closeServices = s.Close
}

// Execute runs the root command and releases services afterwards,
// whether or not the command succeeded.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if cerr := releaseServices(); cerr != nil {
		logger.Warn("closing services: %v", cerr)
		if err == nil {
			err = cerr
		}
	}
	return err
}

// skipBootstrap marks commands that need no services.
const skipBootstrap = "skip-bootstrap"

func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if bootstrap == nil || cmd.Annotations[skipBootstrap] == "true" {
		return nil
	}

	done := logger.Timed("bootstrap")
	defer done()

	services, err := bootstrap(Options{ConfigDir: configDir})
	if err != nil {
		return err
	}
	SetServices(services)
	return nil
}

func releaseServices() error {
	if closeServices == nil {
		return nil
	}
	closer := closeServices
	closeServices = nil
	return closer()
}

// watchPrompts logs prompt reloads until ctx is done.
func watchPrompts(ctx context.Context) {
	if promptWatcher == nil {
		return
	}
	changes, err := promptWatcher.Watch(ctx)
	if err != nil {
		logger.Warn("prompt hot reload disabled: %v", err)
		return
	}
	go func() {
		for name := range changes {
			logger.Info("reloaded prompt %s", name)
		}
	}()
}
