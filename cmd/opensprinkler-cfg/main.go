// Opensprinkler-cfg is a command-line client for OpenSprinkler irrigation
// controllers.
//
// It reads controller state, runs stations and programs, edits station
// attributes and programs, and manages logs over the controller's HTTP
// API. Controllers can be given by URL, found with mDNS, or stored by name
// in the configuration registry.
//
// Usage:
//
//	opensprinkler-cfg [command] [flags]
//
// The password is read from OPENSPRINKLER_PASSWORD (a .env file in the
// working directory is loaded first) or prompted for.
// See 'opensprinkler-cfg --help' for available commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/opensprinkler/internal/config"
	"github.com/muurk/opensprinkler/internal/logging"
	"github.com/muurk/opensprinkler/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()

	if err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "opensprinkler-cfg",
	Short: "OpenSprinkler Controller Utility",
	Long: `A command-line client for OpenSprinkler irrigation controllers.

Reads controller status, options, stations, programs and logs, and sends
commands: manual station runs, program starts, rain delays, queue pauses,
station and program edits.

Controller selection, in order of precedence:
  --url, --device/--port, OPENSPRINKLER_ENDPOINT, --controller (or the
  default registered controller), then mDNS auto-discovery.`,
	Version:       version.Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnv(); err != nil {
			return err
		}
		return logging.Initialize(logLevel)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when unset")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("opensprinkler-cfg %s\n", version.Full())
	},
}

// reportedError marks an error whose failure box has already been printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }
