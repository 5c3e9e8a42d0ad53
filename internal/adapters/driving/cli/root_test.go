package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "ctxwin", rootCmd.Use)
}

func TestRootCmd_HasPersistentFlags(t *testing.T) {
	v := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, v)
	assert.Equal(t, "v", v.Shorthand)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config-dir"))
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"ask", "qa", "chat", "history", "conversations", "config", "mcp", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestBootstrapper_ReceivesConfigDirAndCloses(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	documentService, chatService, settingsService = nil, nil, nil

	var gotOpts Options
	closed := 0
	SetBootstrapper(func(opts Options) (*Services, error) {
		gotOpts = opts
		return &Services{
			Documents: ts.documents,
			Chat:      ts.chat,
			Settings:  ts.settings,
			MaxTurns:  7,
			Close: func() error {
				closed++
				return nil
			},
		}, nil
	})

	out, _, err := execute(t, "", "--config-dir", "/tmp/ctxwin-test", "history", "stats")

	require.NoError(t, err)
	assert.Equal(t, "/tmp/ctxwin-test", gotOpts.ConfigDir)
	assert.Contains(t, out, "Compaction at: 7 turns")
	assert.Equal(t, 1, closed)
}

func TestBootstrapper_ClosesAfterFailedCommand(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	closed := 0
	SetBootstrapper(func(Options) (*Services, error) {
		return &Services{
			Documents: ts.documents,
			Chat:      ts.chat,
			Settings:  ts.settings,
			Close: func() error {
				closed++
				return nil
			},
		}, nil
	})

	_, _, err := execute(t, "", "chat", "--persona", "pirate")

	require.Error(t, err)
	assert.Equal(t, 1, closed)
}

func TestBootstrapper_CloseErrorReported(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	SetBootstrapper(func(Options) (*Services, error) {
		return &Services{
			Documents: ts.documents,
			Chat:      ts.chat,
			Settings:  ts.settings,
			Close:     func() error { return errBoom },
		}, nil
	})

	_, _, err := execute(t, "", "history", "stats")

	assert.ErrorIs(t, err, errBoom)
}

func TestBootstrapper_ErrorStopsCommand(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetBootstrapper(func(Options) (*Services, error) {
		return nil, errBoom
	})

	_, _, err := execute(t, "", "history", "show")

	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
}

func TestBootstrapper_SkippedForVersion(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	called := false
	SetBootstrapper(func(Options) (*Services, error) {
		called = true
		return &Services{}, nil
	})

	_, _, err := execute(t, "", "version")

	require.NoError(t, err)
	assert.False(t, called)
}

type stubWatcher struct {
	calls int
}

func (w *stubWatcher) Watch(ctx context.Context) (<-chan string, error) {
	w.calls++
	ch := make(chan string)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func TestWatchPrompts_StartsWatcher(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	w := &stubWatcher{}
	promptWatcher = w

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watchPrompts(ctx)

	assert.Equal(t, 1, w.calls)
}

func TestWatchPrompts_NilWatcher(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	assert.NotPanics(t, func() { watchPrompts(context.Background()) })
}

func TestSetVersion(t *testing.T) {
	orig := version
	defer func() { version = orig }()

	SetVersion("1.2.3")

	assert.Equal(t, "1.2.3", version)
}
