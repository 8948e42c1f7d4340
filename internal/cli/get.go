package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get ENDPOINT ID [flags]",
	Short: "Get a single object by endpoint and id",
	Long: `Get a single object by endpoint and id. The endpoint is the API
collection path, such as dcim/sites or ipam/prefixes.

Examples:
  # Get site 17
  netforge get dcim/sites 17

  # Get device 42 in JSON format
  netforge get dcim/devices 42 -j`,
	Args: cobra.ExactArgs(2),
	RunE: getObject,
}

// getObject handles retrieving a single object
// It validates the input and formats the output in YAML or JSON
func getObject(cmd *cobra.Command, args []string) error {
	endpoint := args[0]
	id, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid id %q: must be an integer", args[1])
	}

	client, err := newAPIClient()
	if err != nil {
		return err
	}

	rec, err := client.Get(cmd.Context(), endpoint, id, nil)
	if err != nil {
		return err
	}

	if jsonOutput {
		// Format as JSON with result and value
		output := map[string]any{
			"result": 1,
			"value":  rec,
		}

		jsonBytes, err := json.MarshalIndent(output, "", "    ")
		if err != nil {
			return fmt.Errorf("failed to format JSON output: %v", err)
		}
		fmt.Println(string(jsonBytes))
	} else {
		// Convert to YAML
		yamlBytes, err := yaml.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to convert to YAML: %v", err)
		}
		fmt.Println(string(yamlBytes))
	}
	return nil
}

// init initializes the get command and adds it to the root command
func init() {
	rootCmd.AddCommand(getCmd)
}
