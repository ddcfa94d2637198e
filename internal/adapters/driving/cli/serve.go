package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/DIVT313/forensic-agent/internal/adapters/driving/httpapi"
	"github.com/DIVT313/forensic-agent/internal/adapters/driving/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve staged artifacts over HTTP",
	Long: `Serves the staging directory read-only over HTTP, together with the
live source endpoints, the run endpoints used by "extract --detach",
Prometheus metrics and the MCP streamable transport on /mcp.

Use --mcp-port to additionally expose MCP on a dedicated port.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default server.addr)")
	serveCmd.Flags().Int("mcp-port", 0, "also serve MCP on this port (0 = disabled)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if retrievalService == nil {
		return errNotConfigured("retrieval")
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" && settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return err
		}
		addr = settings.Server.Addr
	}
	if addr == "" {
		return fmt.Errorf("no listen address: pass --addr or set server.addr")
	}
	mcpPort, _ := cmd.Flags().GetInt("mcp-port")

	mcpServer, err := mcp.NewServer(&mcp.Ports{
		Retrieval:  retrievalService,
		Extraction: extractionService,
	})
	if err != nil {
		return err
	}

	opts := []httpapi.Option{httpapi.WithMCP(mcpServer.Handler())}
	if extractionService != nil {
		opts = append(opts, httpapi.WithExtraction(extractionService))
	}
	if metricsHandler != nil {
		opts = append(opts, httpapi.WithMetrics(metricsHandler))
	}
	api := httpapi.NewServer(retrievalService, opts...)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return api.Run(ctx, addr)
	})
	if mcpPort > 0 {
		mcpAddr := fmt.Sprintf(":%d", mcpPort)
		cmd.Printf("MCP server listening on http://localhost%s\n", mcpAddr)
		g.Go(func() error {
			return mcpServer.RunHTTP(ctx, mcpAddr)
		})
	}
	cmd.Printf("Serving artifacts on http://%s\n", addr)
	return g.Wait()
}
