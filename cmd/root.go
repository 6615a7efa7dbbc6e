package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/KostasZigo/vx/internal/builder"
	"github.com/KostasZigo/vx/internal/constants"
	"github.com/KostasZigo/vx/internal/objects"
	"github.com/KostasZigo/vx/internal/repository"
	"github.com/KostasZigo/vx/utils"
	"github.com/spf13/cobra"
)

// rootCmd defines the base command for the vx CLI.
// All subcommands (init, hash-object, commit, etc.) register under this root.
// Uses cobra for command parsing, flag handling, and help generation.
var rootCmd = &cobra.Command{
	Use:   "vx",
	Short: "A minimal content-addressed version control engine",
	Long: `vx is a minimal content-addressed version control engine. It stores file
snapshots as blobs, trees and commits in a deduplicating, hash-indexed object
store, and records history as commits that point at trees.`,
	PersistentPreRun: configureLogging,
}

var verboseFlag bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging on stderr")
}

// Execute runs the root command and handles exit codes.
// Called from main.go to start CLI execution.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// configureLogging installs the stderr log handler for this invocation.
func configureLogging(cmd *cobra.Command, _ []string) {
	level := slog.LevelWarn
	if verboseFlag {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// exitCode maps an error kind onto the process exit status.
func exitCode(err error) int {
	var (
		formatErr      *objects.FormatError
		notFoundErr    *objects.NotFoundError
		danglingErr    *objects.DanglingReferenceError
		conflictErr    *objects.ConflictError
		unsupportedErr *builder.UnsupportedEntryError
	)

	switch {
	case err == nil:
		return constants.ExitOK
	case errors.As(err, &formatErr):
		return constants.ExitFormatError
	case errors.As(err, &notFoundErr), errors.Is(err, repository.ErrBranchNotFound):
		return constants.ExitNotFound
	case errors.As(err, &danglingErr):
		return constants.ExitDanglingReference
	case errors.As(err, &conflictErr):
		return constants.ExitConflict
	case errors.As(err, &unsupportedErr):
		return constants.ExitUnsupportedEntry
	default:
		return constants.ExitFailure
	}
}

// openRepo opens the repository containing the working directory.
func openRepo() (*repository.Repository, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	repo, err := repository.Discover(dir)
	if errors.Is(err, repository.ErrNotRepository) {
		return nil, fmt.Errorf("%s directory not found", constants.Vx)
	}
	return repo, err
}

// formatHash renders hash as hex, or as a CID when asCID is set.
func formatHash(hash utils.Hash, asCID bool) (string, error) {
	if !asCID {
		return hash.String(), nil
	}
	return utils.ToCID(hash)
}

// exactArgs validates command receives exactly n positional arguments.
// enables usage printing in case of error
func exactArgs(n int, what string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			cmd.SilenceUsage = false
			return fmt.Errorf("%s command requires exactly %d argument (%s), received %d", cmd.Name(), n, what, len(args))
		}
		return nil
	}
}

// maximumArgs validates command receives at most n positional arguments.
// Returns error with usage help if argument limit exceeded.
func maximumArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			cmd.SilenceUsage = false
			return fmt.Errorf("%s command accepts at most %d arg(s), received %d", cmd.Name(), n, len(args))
		}
		return nil
	}
}
