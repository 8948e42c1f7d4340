package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete ENDPOINT ID [ID...] [flags]",
	Short: "Delete objects by id",
	Long: `Delete objects by id. One id issues a single delete; several ids are
deleted in one bulk request.

The server signals a completed delete with 204 No Content. When it answers
with a different success status the object may still exist, so the command
reports a warning instead of success.

Examples:
  # Delete one site
  netforge delete dcim/sites 42

  # Delete several addresses in one request
  netforge delete ipam/ip-addresses 3 5 8`,
	Args: cobra.MinimumNArgs(2),
	RunE: deleteObjects,
}

// deleteObjects handles the deletion of one or more objects by id
func deleteObjects(cmd *cobra.Command, args []string) error {
	endpoint := args[0]

	ids := make([]int, 0, len(args)-1)
	for _, arg := range args[1:] {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid id %q: must be an integer", arg)
		}
		ids = append(ids, id)
	}

	client, err := newAPIClient()
	if err != nil {
		return err
	}

	var deleted bool
	if len(ids) == 1 {
		deleted, err = client.Delete(cmd.Context(), endpoint, ids[0])
	} else {
		deleted, err = client.BulkDelete(cmd.Context(), endpoint, ids)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(map[string]any{
			"endpoint": endpoint,
			"ids":      ids,
			"deleted":  deleted,
		})
	}

	if !deleted {
		warnLabel.Fprintf(os.Stderr, "[WARN] ")
		fmt.Fprintf(os.Stderr, "server accepted the deletion of %s but did not answer 204 No Content; verify the objects are gone\n", deleteLocation(endpoint, ids))
		return nil
	}

	okLabel.Fprintf(os.Stdout, "[OK] ")
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", deleteLocation(endpoint, ids))
	return nil
}

// deleteLocation renders the deleted objects for display
func deleteLocation(endpoint string, ids []int) string {
	endpoint = strings.Trim(endpoint, "/")
	if len(ids) == 1 {
		return fmt.Sprintf("%s/%d", endpoint, ids[0])
	}
	return fmt.Sprintf("%s (%d objects)", endpoint, len(ids))
}

// init initializes the delete command and adds it to the root command
func init() {
	rootCmd.AddCommand(deleteCmd)
}
