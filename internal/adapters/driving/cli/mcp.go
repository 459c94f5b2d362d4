package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reqsift/internal/adapters/driving/mcp"
	"github.com/custodia-labs/reqsift/internal/app"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

Tools:
  extract_requirements  read local files and add their requirements to a project
  get_requirements      read a project's latest requirements (or every run)

Resources:
  reqsift://projects/{projectId}/requirements

By default the server speaks JSON-RPC over stdio. Use --port to serve
the streamable HTTP transport instead.

Examples:
  reqsift mcp serve
  reqsift mcp serve --port 8081

Register it with a client as the command "reqsift" with args
["mcp", "serve"]. Runs started without a user_id are recorded as "mcp".`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "serve streamable HTTP on this port instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, _ := cmd.Flags().GetInt("port")
	if port < 0 || port > 65535 {
		return fmt.Errorf("invalid port %d", port)
	}

	svc, err := requireExtraction(cmd.Context(), true, app.DefaultCacheSize)
	if err != nil {
		return err
	}
	server, err := mcp.NewServer(&mcp.Ports{Extraction: svc})
	if err != nil {
		return err
	}

	if port == 0 {
		return server.Run(cmd.Context())
	}
	addr := fmt.Sprintf(":%d", port)
	fmt.Fprintf(cmd.ErrOrStderr(), "reqsift MCP server on http://localhost%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
