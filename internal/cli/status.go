package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/spf13/cobra"

	"github.com/netforge-io/netforge/pkg/netforge"
	"github.com/netforge-io/netforge/pkg/types"
)

var (
	// Status command flags
	statusWait     bool
	statusAttempts uint
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Get server status and version information",
	Long: `Get server status and version information. The command reports the server
version, runtime details, installed plugins, and whether this CLI supports
the server's version.

Examples:
  # Get server status
  netforge status

  # Wait for a server that is still starting up
  netforge status --wait

  # Get server status in JSON format
  netforge status -j`,
	RunE: getStatus,
}

// getStatus handles retrieving server status information
func getStatus(cmd *cobra.Command, args []string) error {
	// Load the config file first; a load failure leaves the config nil and
	// is reported below
	_ = LoadConfig(configFile)

	config := GetConfig()
	if config == nil {
		if jsonOutput {
			kv := map[string]string{
				"version_cli": getCLIVersion(),
				"error":       "Config file cannot be loaded",
			}
			printJSON(kv)
		} else {
			fmt.Printf("netforge CLI %s\n", getCLIVersion())
			fmt.Println("Error: Config file cannot be loaded")
		}
		return ErrAlreadyHandled
	}

	client, err := newAPIClient()
	if err != nil {
		return err
	}

	var status types.Record
	fetch := func() error {
		var err error
		status, err = client.Status(cmd.Context())
		return err
	}

	if statusWait {
		err = retry.Do(fetch,
			retry.Context(cmd.Context()),
			retry.Attempts(statusAttempts),
			retry.Delay(1*time.Second),
			retry.DelayType(retry.BackOffDelay),
			retry.LastErrorOnly(true),
			retry.OnRetry(func(n uint, err error) {
				fmt.Fprintf(os.Stderr, "server not ready (attempt %d): %v\n", n+1, err)
			}))
	} else {
		err = fetch()
	}
	if err != nil {
		if jsonOutput {
			kv := map[string]string{
				"version_cli": getCLIVersion(),
				"error":       "Unable to connect to server: " + err.Error(),
			}
			printJSON(kv)
		} else {
			fmt.Printf("netforge CLI %s\n", getCLIVersion())
			fmt.Println("Error: Unable to connect to server: " + err.Error())
		}
		return ErrAlreadyHandled
	}

	if jsonOutput {
		// Format as JSON with result and value
		output := map[string]any{
			"result":      1,
			"version_cli": getCLIVersion(),
			"value":       status,
		}

		jsonBytes, err := json.MarshalIndent(output, "", "    ")
		if err != nil {
			return fmt.Errorf("failed to format JSON output: %v", err)
		}
		fmt.Println(string(jsonBytes))
		return nil
	}

	fmt.Printf("netforge CLI %s\n", getCLIVersion())
	printStatusPretty(status)
	return nil
}

// printStatusPretty prints the status information in a human-readable format
func printStatusPretty(status types.Record) {
	serverVersion := status.GetString("netbox-version")
	fmt.Printf("Server Version: %s\n", serverVersion)
	if v := status.GetString("django-version"); v != "" {
		fmt.Printf("Django Version: %s\n", v)
	}
	if v := status.GetString("python-version"); v != "" {
		fmt.Printf("Python Version: %s\n", v)
	}
	if workers, ok := status["rq-workers-running"].(float64); ok {
		fmt.Printf("Workers Running: %d\n", int(workers))
	}
	if plugins, ok := status["plugins"].(map[string]any); ok && len(plugins) > 0 {
		fmt.Println("Plugins:")
		names := make([]string, 0, len(plugins))
		for name := range plugins {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %s: %v\n", name, plugins[name])
		}
	}

	fmt.Println()
	if serverVersion == "" {
		fmt.Println("Server did not report a version")
		return
	}
	if netforge.IsServerCompatible(serverVersion) {
		okLabel.Fprintf(os.Stdout, "[OK] ")
		fmt.Fprintf(os.Stdout, "Server version %s is supported by this CLI\n", serverVersion)
	} else {
		warnLabel.Fprintf(os.Stdout, "[WARN] ")
		fmt.Fprintf(os.Stdout, "Server version %s is outside the supported range\n", serverVersion)
	}
}

// init initializes the status command with its flags and adds it to the root command
func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVar(&statusWait, "wait", false, "Retry with backoff until the server answers")
	statusCmd.Flags().UintVar(&statusAttempts, "wait-attempts", 10, "Attempts before --wait gives up")
}
