package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driving"
)

var extractCmd = &cobra.Command{
	Use:   "extract [kind...]",
	Short: "Extract sources into the staging area",
	Long: `Extracts the given source kinds (contacts, messages, call_events,
calendar_events; aliases sms, calls, calendar) into the staging directory.
Without arguments the configured extraction.sources are used.

Every source ends with its own outcome: a failing or unauthorized source
never prevents the others from being staged.

With --detach the run is started on a running "forensic-agent serve"
instance and the command returns immediately with the run id.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().Bool("detach", false, "start the run on the serve instance and return immediately")
	extractCmd.Flags().String("server", "", "serve instance address for --detach (default server.addr)")
	extractCmd.Flags().Duration("interval", 500*time.Millisecond, "progress polling interval")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	var kinds []domain.SourceKind
	if len(args) > 0 {
		parsed, err := domain.ParseSourceKinds(args)
		if err != nil {
			return err
		}
		kinds = parsed
	}

	detach, _ := cmd.Flags().GetBool("detach")
	if detach {
		return runDetached(cmd, kinds)
	}

	if extractionService == nil {
		return errNotConfigured("extraction")
	}
	interval, _ := cmd.Flags().GetDuration("interval")
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	handle, err := extractionService.Start(cmd.Context(), kinds)
	if err != nil {
		return fmt.Errorf("starting extraction: %w", err)
	}
	cmd.Printf("Run %s started\n", handle.ID())

	result := awaitRun(cmd, handle, interval)
	printOutcomes(cmd.OutOrStdout(), result.Outcomes)
	return nil
}

// awaitRun polls run status until the run is done, printing each source
// as it finishes.
func awaitRun(cmd *cobra.Command, handle driving.RunHandle, interval time.Duration) *domain.RunResult {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	reported := 0
	report := func() {
		status, err := extractionService.Status(handle.ID())
		if err != nil {
			return
		}
		for _, o := range status.Completed[reported:] {
			cmd.Printf("  %s: %s (%d records)\n", o.Source, o.Status, o.Count)
		}
		reported = len(status.Completed)
	}

	for {
		select {
		case <-handle.Done():
			report()
			result, _ := handle.Result()
			return result
		case <-ticker.C:
			report()
		}
	}
}

// printOutcomes writes the outcome table.
func printOutcomes(w io.Writer, outcomes []domain.Outcome) {
	st := stylesFor(w)
	fmt.Fprintln(w, st.header.Render(fmt.Sprintf("%-16s %-13s %8s %8s  %-15s %s",
		"SOURCE", "STATUS", "RECORDS", "DROPPED", "ARTIFACT", "DETAIL")))
	for _, o := range outcomes {
		artifact := o.Artifact
		if artifact == "" {
			artifact = "-"
		}
		detail := o.ErrMessage()
		if len(o.Notes) > 0 {
			detail = strings.TrimSpace(detail + " " + st.muted.Render(fmt.Sprintf("(%d notes)", len(o.Notes))))
		}
		fmt.Fprintf(w, "%-16s %s %8d %8d  %-15s %s\n",
			o.Source, st.status(o.Status, 13), o.Count, o.Dropped, artifact, detail)
	}
}

// runDetached asks a serve instance to start the run.
func runDetached(cmd *cobra.Command, kinds []domain.SourceKind) error {
	addr, _ := cmd.Flags().GetString("server")
	if addr == "" {
		if settingsService == nil {
			return errNotConfigured("settings")
		}
		settings, err := settingsService.Get()
		if err != nil {
			return err
		}
		addr = settings.Server.Addr
	}

	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	body, err := json.Marshal(map[string][]string{"sources": names})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	url := serverURL(addr) + "/runs"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("contacting %s (is \"forensic-agent serve\" running?): %w", addr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("start run: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	var run struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		return fmt.Errorf("decode run: %w", err)
	}
	cmd.Printf("Run %s started on %s\n", run.ID, addr)
	fmt.Fprintln(cmd.OutOrStdout(), run.ID)
	return nil
}

func serverURL(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return strings.TrimSuffix(addr, "/")
	}
	return "http://" + addr
}
