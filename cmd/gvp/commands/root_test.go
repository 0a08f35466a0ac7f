package commands

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestBuiltin(t *testing.T) {
	root := &cobra.Command{Use: "gvp"}
	help := &cobra.Command{Use: "help"}
	completion := &cobra.Command{Use: "completion"}
	bash := &cobra.Command{Use: "bash"}
	events := &cobra.Command{Use: "events"}
	completion.AddCommand(bash)
	root.AddCommand(help, completion, events)

	require.True(t, builtin(help))
	require.True(t, builtin(bash))
	require.False(t, builtin(events))
	require.False(t, builtin(root))
}

func TestHelpWithBrokenConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gvp.json5")
	err := os.WriteFile(path, []byte("{ base_url: "), 0600)
	require.NoError(t, err)

	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"--config", path, "help"})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	rootCmd.SetArgs([]string{"--config", path, "news"})
	require.Error(t, rootCmd.ExecuteContext(context.Background()))
}
