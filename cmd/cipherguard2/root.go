package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cipherguard2/cipherguard2/internal/app"
)

// RunFunc is the call the root command delegates to.
type RunFunc func(ctx context.Context, verbose bool) error

// NewRootCmd creates the root command. The parsed --verbose value is
// passed to run unchanged.
func NewRootCmd(run RunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cipherguard2",
		Short: "CipherGuard2 command-line tool",
		Long: `CipherGuard2 command-line tool.

Configuration is read from $CIPHERGUARD2_CONFIG, ./.cipherguard2.yaml,
$XDG_CONFIG_HOME/cipherguard2/config.yaml or ~/.cipherguard2.yaml,
whichever is found first.`,
		Version:       currentBuild().version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			return run(cmd.Context(), verbose)
		},
	}

	cmd.SetVersionTemplate(versionTemplate())
	cmd.Flags().BoolP("verbose", "v", false, "Enable verbose output")

	return cmd
}

// Execute runs the root command against the process arguments and exits
// non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd(app.Run).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
