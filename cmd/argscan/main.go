package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/ludo-technologies/argscan/internal/version"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version = version.Version
)

// ExitError carries the process exit code out of a command. Message is
// printed to stderr as is; an empty message exits silently.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(scanTarget(rootCmd, args))
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(stderr, exitErr.Message)
			}
			return exitErr.Code
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	rootCmd := scanCmd()

	// Add subcommands
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

// scanTarget rewrites a leading directory that shares a subcommand's name,
// followed by a threshold, to ./name so it is scanned instead of dispatched
func scanTarget(rootCmd *cobra.Command, args []string) []string {
	if len(args) < 2 {
		return args
	}
	if _, err := parseThreshold(args[1]); err != nil {
		return args
	}
	for _, sub := range rootCmd.Commands() {
		if sub.Name() != args[0] && !sub.HasAlias(args[0]) {
			continue
		}
		if info, err := os.Stat(args[0]); err != nil || !info.IsDir() {
			return args
		}
		return append([]string{"." + string(filepath.Separator) + args[0]}, args[1:]...)
	}
	return args
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				fmt.Fprintln(cmd.OutOrStdout(), version.GetFullVersion())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "argscan version %s\n", version.GetVersion())
			}
		},
	}

	cmd.Flags().BoolP("verbose", "v", false, "Show detailed version information")
	return cmd
}
