/*
Copyright © 2026 Maharshi Gor
*/

// root.go defines the root command and CLI execution entry point.
//
// Separated from flags.go to isolate cobra setup from shared flag state.
//
// Design: Commands are contributed by extensions that self-register during
// init(). Execute wires the audit logger around command execution so every
// file operation is recorded regardless of which extension ran it.

package cmd

import (
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/spf13/cobra"

	"github.com/maharshi-gor/tractome/extension"
	"github.com/maharshi-gor/tractome/internal/config"
	"github.com/maharshi-gor/tractome/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "tractome",
	Short: "File toolkit for tractography visualisation data",
	Long:  `Inspect, convert, and ingest the file formats used by tractography visualisation: tractograms (.trk, .tck, .trx), NIfTI volumes, surface meshes, and CSV point data.`,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if output != "" && !slices.Contains(validOutputFormats, output) {
			return fmt.Errorf("invalid output format: %s (valid: %v)", output, validOutputFormats)
		}

		// Surface config problems before any command runs
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return cfg.Validate()
	},
}

// Execute runs the root command and handles process lifecycle.
// Opens audit logging, registers extensions, executes the command, and
// closes the logger before exit. Exit code 1 indicates error.
func Execute() {
	// Initialise audit logger (warn if it fails, but continue)
	if err := log.Open(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: audit log unavailable: %v\n", err)
	} else if wd, err := os.Getwd(); err == nil {
		log.SetProject(wd)
	}
	defer log.Close()

	registerExtensions()
	if err := rootCmd.Execute(); err != nil {
		log.Close()
		os.Exit(1)
	}
}

// RootCmd returns the root command for testing and extension access.
func RootCmd() *cobra.Command {
	return rootCmd
}

var extensionsOnce sync.Once

// registerExtensions adds commands from all registered extensions.
// Called once before Execute runs.
func registerExtensions() {
	extensionsOnce.Do(func() {
		for _, ext := range extension.All() {
			for _, cmd := range ext.Commands() {
				rootCmd.AddCommand(cmd)
			}
		}
	})
}
