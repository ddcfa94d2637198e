package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List staged artifacts",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print a staged artifact",
	Long: `Prints a staged artifact such as sms.json, or the listing with "get list".
Use -o to copy it to a file instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

var liveCmd = &cobra.Command{
	Use:   "live <kind>",
	Short: "Read a source directly without staging",
	Long: `Reads one source through its configured backend and prints the
normalised rows as JSON. Nothing is written to the staging directory.
Contacts are printed one row per phone number.`,
	Args: cobra.ExactArgs(1),
	RunE: runLive,
}

func init() {
	getCmd.Flags().StringP("output", "o", "", "write the artifact to this file")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(liveCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if retrievalService == nil {
		return errNotConfigured("retrieval")
	}

	entries, err := retrievalService.List(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	st := stylesFor(w)
	fmt.Fprintln(w, st.header.Render(fmt.Sprintf("%-20s %10s  %s", "NAME", "SIZE", "MODIFIED")))
	for _, e := range entries {
		modified := "-"
		if !e.Modified.IsZero() {
			modified = e.Modified.Local().Format(time.DateTime)
		}
		name := e.Name
		if name == domain.ListingName {
			name = st.muted.Render(fmt.Sprintf("%-20s", name))
		} else {
			name = fmt.Sprintf("%-20s", name)
		}
		fmt.Fprintf(w, "%s %10d  %s\n", name, e.Size, modified)
	}
	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errNotConfigured("retrieval")
	}
	name := args[0]

	rc, err := retrievalService.Open(cmd.Context(), name)
	if err != nil {
		return fmt.Errorf("get %s: %w", name, err)
	}
	defer rc.Close()

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		_, err := io.Copy(cmd.OutOrStdout(), rc)
		return err
	}

	f, err := os.OpenFile(filepath.Clean(output), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	n, err := io.Copy(f, rc)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	cmd.Printf("Wrote %s (%d bytes) to %s\n", name, n, output)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errNotConfigured("retrieval")
	}
	kind, err := domain.ParseSourceKind(args[0])
	if err != nil {
		return err
	}

	rows, err := retrievalService.Live(cmd.Context(), kind)
	if err != nil {
		return fmt.Errorf("live %s: %w", kind, err)
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
