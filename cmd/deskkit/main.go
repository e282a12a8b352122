package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deskkit/internal/cli"
	deskerrors "github.com/matzehuels/deskkit/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	originalPreRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := cli.LogInfo
		if verbose {
			level = cli.LogDebug
		}
		c.SetLogLevel(level)

		if originalPreRun != nil {
			return originalPreRun(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}

// exitCode maps error codes to distinct exit statuses for scripting.
func exitCode(err error) int {
	switch deskerrors.GetCode(err) {
	case deskerrors.ErrCodeInvalidInput, deskerrors.ErrCodeInvalidFormat, deskerrors.ErrCodeInvalidAnchor, deskerrors.ErrCodeInvalidImage:
		return 2
	case deskerrors.ErrCodeFileNotFound, deskerrors.ErrCodeNotFound:
		return 3
	case deskerrors.ErrCodeUnsupported:
		return 4
	}
	return 1
}
