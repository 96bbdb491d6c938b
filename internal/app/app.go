package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ufolux/TransPop/internal/cli"
)

// usageError marks failures caused by bad invocation; they exit with code 2.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	return run(args, os.Stdin, os.Stdout, os.Stderr)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		var usage *usageError
		if errors.As(err, &usage) {
			return 2
		}
		return 1
	}
	return 0
}

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "transpop",
		Short:         "Translate text through Bing, Google or an OpenAI-compatible backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	envLoader := cli.AddEnvFlag(root.PersistentFlags(), ".env", "Path to the .env file")

	root.AddCommand(newTranslateCmd(envLoader))
	root.AddCommand(newWatchCmd(envLoader))
	root.AddCommand(newServeCmd(envLoader))
	root.AddCommand(newLanguagesCmd())
	return root
}
