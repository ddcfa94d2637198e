package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DIVT313/forensic-agent/internal/core/services"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration",
	RunE:  runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration key",
	Long: `Sets one configuration key. Keys:

  staging.dir                  where artifacts are written
  extraction.parallel          true to extract sources concurrently
  extraction.sources           comma-separated default kinds
  sources.device.dir           directory holding the Android database dumps
  sources.<kind>.backend       sqlite or google (contacts, calendar_events)
  google.access_token          OAuth access token for the google backend
  google.calendar_ids          comma-separated calendar ids
  google.requests_per_second   API rate limit
  server.addr                  listen address for serve`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	values, err := settingsService.Values()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	w := cmd.OutOrStdout()
	st := stylesFor(w)
	fmt.Fprintln(w, st.muted.Render("# "+settingsService.ConfigPath()))
	for _, k := range services.SortedKeys(values) {
		fmt.Fprintf(w, "%-28s %s\n", k, values[k])
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}
