// Package cli implements the forensic-agent command line.
//
// Commands are registered on rootCmd in init. Services are injected as
// package-level variables, either directly with Configure or lazily by the
// Setup function passed to Execute.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/DIVT313/forensic-agent/internal/core/ports/driven"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driving"
	"github.com/DIVT313/forensic-agent/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// skipSetup marks commands that run without services.
const skipSetup = "skip-setup"

// Dependencies are the services the commands drive.
type Dependencies struct {
	Extraction driving.ExtractionService
	Retrieval  driving.RetrievalService
	Settings   driving.SettingsService
	Watcher    driven.ArtifactWatcher
	Metrics    http.Handler

	// Close releases readers and other resources. Optional.
	Close func() error
}

// Setup builds the dependencies for an agent home directory.
type Setup func(home string) (*Dependencies, error)

var (
	extractionService driving.ExtractionService
	retrievalService  driving.RetrievalService
	settingsService   driving.SettingsService
	artifactWatcher   driven.ArtifactWatcher
	metricsHandler    http.Handler
	closeDeps         func() error

	setupFn    Setup
	configured bool
	homeDir    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "forensic-agent",
	Short: "Extract device records into a read-only staging area",
	Long: `forensic-agent reads contacts, messages, call events and calendar events
from a device acquisition or a connected account, writes one JSON artifact per
source into the staging directory, and serves those artifacts read-only over
HTTP and MCP.`,
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		logger.Sync()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "",
		"agent home directory (default $FORENSIC_AGENT_HOME or ~/.forensic-agent)")
}

// Configure injects services directly. Used by tests and embedders.
func Configure(deps *Dependencies) {
	extractionService = deps.Extraction
	retrievalService = deps.Retrieval
	settingsService = deps.Settings
	artifactWatcher = deps.Watcher
	metricsHandler = deps.Metrics
	closeDeps = deps.Close
	configured = true
}

// Execute runs the root command. setup is invoked once, after flags are
// parsed, for every command that needs services.
func Execute(ctx context.Context, setup Setup) error {
	setupFn = setup
	defer func() {
		if closeDeps != nil {
			if err := closeDeps(); err != nil {
				logger.Warn("closing resources: %v", err)
			}
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func prepare(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetOutput(cmd.ErrOrStderr())

	if configured || cmd.Annotations[skipSetup] == "true" || setupFn == nil {
		return nil
	}
	deps, err := setupFn(homeDir)
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}
	Configure(deps)
	return nil
}

// errNotConfigured is returned when a command runs without its service.
func errNotConfigured(name string) error {
	return errors.New(name + " service not configured")
}
