package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/netforge-io/netforge/pkg/types"
)

var (
	// Create command flags
	ignoreErrors bool
)

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create [ENDPOINT] -f FILENAME [flags]",
	Short: "Create objects from a file",
	Long: `Create objects from a file. The file may contain one YAML or JSON document,
or several separated by "---". Each document is either a bare object payload
for the endpoint given on the command line, or a wrapper with its own
"endpoint" and the payload under "data". A single document is created with
one request; several documents for the same endpoint are created in bulk.

Examples:
  # Create one site
  netforge create dcim/sites -f site.yaml

  # Create several devices in one bulk request
  netforge create dcim/devices -f devices.yaml

  # Create objects across endpoints, each document naming its own
  netforge create -f rollout.yaml

  # Keep going when one object is rejected
  netforge create dcim/sites -f sites.yaml --ignore-errors`,
	Args: cobra.MaximumNArgs(1),
	RunE: createObjects,
}

// createObjects handles the creation of objects from a file
// It loads the documents, groups them by endpoint, and sends each group
func createObjects(cmd *cobra.Command, args []string) error {
	filename, err := cmd.Flags().GetString("filename")
	if err != nil {
		return err
	}
	if filename == "" {
		return fmt.Errorf("filename is required")
	}

	defaultEndpoint := ""
	if len(args) > 0 {
		defaultEndpoint = args[0]
	}

	docs, err := LoadObjectFile(filename, defaultEndpoint)
	if err != nil {
		return err
	}

	client, err := newAPIClient()
	if err != nil {
		return err
	}

	var statusValues []map[string]any
	defer func() {
		if len(statusValues) > 0 {
			if jsonOutput {
				printJSON(statusValues)
			} else {
				for _, status := range statusValues {
					created, exists := status["created"]
					if !exists {
						created = false
					}
					location, ok := status["location"].(string)
					if !ok {
						location = ""
					}
					if created.(bool) {
						okLabel.Fprintf(os.Stdout, "[OK] ")
						fmt.Fprintf(os.Stdout, "Created: %s\n", location)
					} else {
						if !ignoreErrors {
							errorLabel.Fprintf(os.Stderr, "[ERROR] ")
							fmt.Fprintf(os.Stderr, "%s: %s\n", status["endpoint"], status["error"])
						} else {
							errorLabel.Fprintf(os.Stdout, "[ERROR] ")
							fmt.Fprintf(os.Stdout, "%s: %s\n", status["endpoint"], status["error"])
						}
					}
				}
			}
		}
	}()

	order, groups := groupByEndpoint(docs)
	for _, endpoint := range order {
		recs := groups[endpoint]
		if len(recs) == 1 {
			rec, err := client.Create(cmd.Context(), endpoint, recs[0])
			if err != nil {
				statusValues = append(statusValues, map[string]any{
					"endpoint": endpoint,
					"created":  false,
					"error":    err.Error(),
				})
				if !ignoreErrors {
					return ErrAlreadyHandled
				}
				continue
			}
			statusValues = append(statusValues, createdStatus(endpoint, rec))
			continue
		}

		createdRecs, err := client.BulkCreate(cmd.Context(), endpoint, recs)
		if err != nil {
			statusValues = append(statusValues, map[string]any{
				"endpoint": endpoint,
				"created":  false,
				"error":    err.Error(),
			})
			if !ignoreErrors {
				return ErrAlreadyHandled
			}
			continue
		}
		for _, rec := range createdRecs {
			statusValues = append(statusValues, createdStatus(endpoint, rec))
		}
	}
	return nil
}

// createdStatus builds the status entry for one created object
func createdStatus(endpoint string, rec types.Record) map[string]any {
	status := map[string]any{
		"endpoint": endpoint,
		"created":  true,
		"location": objectLocation(endpoint, rec),
	}
	if id, ok := rec.ID(); ok {
		status["id"] = id
	}
	if name := rec.GetString("name"); name != "" {
		status["name"] = name
	}
	return status
}

// objectLocation renders the path of an object for display
func objectLocation(endpoint string, rec types.Record) string {
	endpoint = strings.Trim(endpoint, "/")
	if id, ok := rec.ID(); ok {
		return fmt.Sprintf("%s/%d", endpoint, id)
	}
	return endpoint
}

// init initializes the create command with its flags and adds it to the root command
func init() {
	// Add flags to the create command
	createCmd.Flags().StringP("filename", "f", "", "Filename to use to create the objects")
	createCmd.MarkFlagRequired("filename")

	createCmd.Flags().BoolVarP(&ignoreErrors, "ignore-errors", "i", false, "Ignore errors and continue with the next endpoint")

	// Add the create command to the root command
	rootCmd.AddCommand(createCmd)
}
