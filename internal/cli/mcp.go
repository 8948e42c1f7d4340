package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/netforge-io/netforge/internal/common/logtrace"
	"github.com/netforge-io/netforge/internal/mcpserver"
	"github.com/netforge-io/netforge/pkg/netforge"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server over stdio",
	Long: `Run an MCP server over stdio, exposing object operations as tools for
AI assistants. The protocol runs on stdout; logs go to stderr.

The server connects with the CLI configuration. The environment variables
NETFORGE_URL, NETFORGE_TOKEN, and NETFORGE_INSECURE_SKIP_VERIFY override
it, so the command also runs on hosts without a config file.

Example client registration:
  {"command": "netforge", "args": ["mcp"]}`,
	RunE: runMCP,
}

// runMCP resolves the server connection and serves MCP over stdio
func runMCP(cmd *cobra.Command, args []string) error {
	logtrace.InitLogger()

	serverURL, token, opts, err := resolveMCPConnection()
	if err != nil {
		return err
	}

	client, err := netforge.New(serverURL, token, opts...)
	if err != nil {
		return err
	}

	return mcpserver.New(client).ServeStdio()
}

// resolveMCPConnection merges the config file with environment overrides.
// The config file is optional here; the environment alone can carry the
// connection.
func resolveMCPConnection() (string, string, []netforge.Option, error) {
	var serverURL, token string
	var opts []netforge.Option

	if err := LoadConfig(configFile); err == nil {
		cfg := GetConfig()
		serverURL = cfg.GetServerURL()
		token = cfg.GetToken()
		opts = cfg.clientOptions()
	}

	if v := os.Getenv("NETFORGE_URL"); v != "" {
		serverURL = NormalizeServerURL(v)
	}
	if v := os.Getenv("NETFORGE_TOKEN"); v != "" {
		token = v
	}
	if v := os.Getenv("NETFORGE_INSECURE_SKIP_VERIFY"); v == "1" || v == "true" {
		opts = append(opts, netforge.WithInsecureSkipVerify())
	}

	if serverURL == "" {
		return "", "", nil, fmt.Errorf("no server configured: run \"netforge config set-server <url>\" or set NETFORGE_URL")
	}
	return serverURL, token, opts, nil
}

// init initializes the mcp command and adds it to the root command
func init() {
	rootCmd.AddCommand(mcpCmd)
}
