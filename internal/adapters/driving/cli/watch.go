package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/DIVT313/forensic-agent/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow changes to the staging directory",
	Long: `Prints a line whenever an artifact is written or removed, until
interrupted. Useful alongside a detached extraction run.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if artifactWatcher == nil {
		return errNotConfigured("watch")
	}

	ctx := cmd.Context()
	events, errs, err := artifactWatcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watching staging: %w", err)
	}

	w := cmd.OutOrStdout()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			fmt.Fprintf(w, "%s %-8s %s\n", ev.At.Local().Format(time.TimeOnly), ev.Op, ev.Name)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watch: %v", err)
		}
	}
}
