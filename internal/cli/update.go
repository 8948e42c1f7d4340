package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"
)

var (
	// Update command flags
	updateSets []string
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update ENDPOINT ID --set KEY=VALUE [flags]",
	Short: "Update objects with field changes or from a file",
	Long: `Update objects. Changes are partial; fields not named keep their value.

With --set, one object is updated in place. Values that parse as JSON are
sent typed (numbers, booleans, objects); everything else is sent as a
string. Keys may use dotted paths to reach nested fields.

With -f, objects are read from a file. Every document must carry an "id"
field. A single document is updated with one request; several documents for
the same endpoint are updated in bulk.

Examples:
  # Rename a site
  netforge update dcim/sites 42 --set name=Oslo

  # Change status and a nested custom field
  netforge update dcim/devices 7 --set status=offline --set custom_fields.rack_units=42

  # Update several objects from a file in one bulk request
  netforge update dcim/sites -f sites.yaml`,
	Args: cobra.MaximumNArgs(2),
	RunE: updateObjects,
}

// updateObjects handles updating objects from --set pairs or from a file
func updateObjects(cmd *cobra.Command, args []string) error {
	filename, err := cmd.Flags().GetString("filename")
	if err != nil {
		return err
	}

	if len(updateSets) > 0 && filename != "" {
		return fmt.Errorf("--set and --filename cannot be combined")
	}
	if len(updateSets) == 0 && filename == "" {
		return fmt.Errorf("either --set or --filename is required")
	}

	if len(updateSets) > 0 {
		return updateWithSets(cmd, args)
	}
	return updateFromFile(cmd, args, filename)
}

// updateWithSets updates one object from --set key=value pairs
func updateWithSets(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("--set requires ENDPOINT and ID arguments")
	}
	endpoint := args[0]
	id, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid id %q: must be an integer", args[1])
	}

	patch, err := buildSetPatch(updateSets)
	if err != nil {
		return err
	}

	client, err := newAPIClient()
	if err != nil {
		return err
	}

	rec, err := client.Update(cmd.Context(), endpoint, id, patch)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(rec)
	}
	okLabel.Fprintf(os.Stdout, "[OK] ")
	fmt.Fprintf(os.Stdout, "Updated: %s\n", objectLocation(endpoint, rec))
	return nil
}

// buildSetPatch builds a JSON patch body from key=value pairs. Values that
// parse as JSON are set as typed values; everything else is set as a string.
func buildSetPatch(sets []string) (json.RawMessage, error) {
	patch := "{}"
	for _, s := range sets {
		k, v, ok := strings.Cut(s, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid set %q: expected key=value", s)
		}
		var err error
		if json.Valid([]byte(v)) {
			patch, err = sjson.SetRaw(patch, k, v)
		} else {
			patch, err = sjson.Set(patch, k, v)
		}
		if err != nil {
			return nil, fmt.Errorf("invalid set %q: %v", s, err)
		}
	}
	return json.RawMessage(patch), nil
}

// updateFromFile updates objects read from a file, in bulk per endpoint
func updateFromFile(cmd *cobra.Command, args []string, filename string) error {
	defaultEndpoint := ""
	if len(args) > 0 {
		defaultEndpoint = args[0]
	}

	docs, err := LoadObjectFile(filename, defaultEndpoint)
	if err != nil {
		return err
	}
	for i, doc := range docs {
		if _, ok := doc.Data.ID(); !ok {
			return fmt.Errorf("document %d has no id field; updates must name the object they change", i+1)
		}
	}

	client, err := newAPIClient()
	if err != nil {
		return err
	}

	var statusValues []map[string]any
	defer func() {
		if len(statusValues) > 0 {
			printUpdateStatus(statusValues)
		}
	}()

	order, groups := groupByEndpoint(docs)
	for _, endpoint := range order {
		recs := groups[endpoint]
		if len(recs) == 1 {
			id, _ := recs[0].ID()
			rec, err := client.Update(cmd.Context(), endpoint, id, recs[0])
			if err != nil {
				statusValues = append(statusValues, updateErrorStatus(endpoint, err))
				return ErrAlreadyHandled
			}
			statusValues = append(statusValues, map[string]any{
				"endpoint": endpoint,
				"updated":  true,
				"location": objectLocation(endpoint, rec),
			})
			continue
		}

		updated, err := client.BulkUpdate(cmd.Context(), endpoint, recs)
		if err != nil {
			statusValues = append(statusValues, updateErrorStatus(endpoint, err))
			return ErrAlreadyHandled
		}
		for _, rec := range updated {
			statusValues = append(statusValues, map[string]any{
				"endpoint": endpoint,
				"updated":  true,
				"location": objectLocation(endpoint, rec),
			})
		}
	}
	return nil
}

// updateErrorStatus creates an error status map for a failed update
func updateErrorStatus(endpoint string, err error) map[string]any {
	return map[string]any{
		"endpoint": endpoint,
		"updated":  false,
		"error":    err.Error(),
	}
}

// printUpdateStatus prints the status of update operations
func printUpdateStatus(statusValues []map[string]any) {
	if jsonOutput {
		printJSON(statusValues)
		return
	}
	for _, status := range statusValues {
		if isUpdatedStatus(status) {
			printUpdatedStatus(status)
		} else {
			printUpdateErrorStatus(status)
		}
	}
}

// isUpdatedStatus checks if the status represents an updated object
func isUpdatedStatus(status map[string]any) bool {
	updated, exists := status["updated"]
	return exists && updated.(bool)
}

// printUpdatedStatus prints an updated object status
func printUpdatedStatus(status map[string]any) {
	location, ok := status["location"].(string)
	if !ok {
		location = ""
	}
	okLabel.Fprintf(os.Stdout, "[OK] ")
	fmt.Fprintf(os.Stdout, "Updated: %s\n", location)
}

// printUpdateErrorStatus prints an error status
func printUpdateErrorStatus(status map[string]any) {
	errorLabel.Fprintf(os.Stderr, "[ERROR] ")
	fmt.Fprintf(os.Stderr, "%s: %s\n", status["endpoint"], status["error"])
}

// init initializes the update command with its flags and adds it to the root command
func init() {
	// Add flags to the update command
	updateCmd.Flags().StringP("filename", "f", "", "Filename to use to update the objects")
	updateCmd.Flags().StringArrayVar(&updateSets, "set", nil, "Set a field as key=value (repeatable)")

	// Add the update command to the root command
	rootCmd.AddCommand(updateCmd)
}
