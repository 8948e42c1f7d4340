package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/netforge-io/netforge/pkg/types"
)

var (
	// List command flags
	listFilters []string
	listLimit   int
	listAll     bool
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list ENDPOINT [flags]",
	Short: "List objects in a collection",
	Long: `List objects in a collection. Filters map directly to the API's
query parameters.

Examples:
  # List all sites
  netforge list dcim/sites

  # List active devices at one site
  netforge list dcim/devices --filter status=active --filter site_id=3

  # Walk every page of a large collection
  netforge list ipam/ip-addresses --all

  # First 10 prefixes in JSON format
  netforge list ipam/prefixes --limit 10 -j`,
	Args: cobra.ExactArgs(1),
	RunE: listObjects,
}

// listObjects handles listing a collection
// It retrieves the objects and renders them as a table, raw body, or JSON
func listObjects(cmd *cobra.Command, args []string) error {
	endpoint := args[0]

	params := make(map[string]string)
	for _, f := range listFilters {
		k, v, ok := strings.Cut(f, "=")
		if !ok || k == "" {
			return fmt.Errorf("invalid filter %q: expected key=value", f)
		}
		params[k] = v
	}
	if listLimit > 0 {
		params["limit"] = strconv.Itoa(listLimit)
	}

	client, err := newAPIClient()
	if err != nil {
		return err
	}

	var recs types.RecordSet
	var raw []byte
	if listAll {
		recs, err = client.ListAll(cmd.Context(), endpoint, params)
		if err != nil {
			return err
		}
		raw, err = json.Marshal(recs)
		if err != nil {
			return fmt.Errorf("failed to encode records: %v", err)
		}
	} else {
		raw, err = client.List(cmd.Context(), endpoint, params)
		if err != nil {
			return err
		}
		// A body that is not a sequence of objects falls back to raw printing
		if err := json.Unmarshal(raw, &recs); err != nil {
			recs = nil
		}
	}

	if jsonOutput {
		return printListJSON(raw)
	}
	if recs == nil {
		fmt.Println(string(raw))
		return nil
	}
	printRecordTable(recs)
	return nil
}

// init initializes the list command with its flags and adds it to the root command
func init() {
	rootCmd.AddCommand(listCmd)

	// Add flags
	listCmd.Flags().StringArrayVarP(&listFilters, "filter", "F", nil, "Filter objects by key=value (repeatable)")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum number of objects to request")
	listCmd.Flags().BoolVar(&listAll, "all", false, "Follow pagination and fetch every page")
}

// printListJSON prints the raw response wrapped in the standard JSON envelope
func printListJSON(raw []byte) error {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("failed to parse response: %v", err)
	}

	output := map[string]any{
		"result": 1,
		"value":  value,
	}

	jsonBytes, err := json.MarshalIndent(output, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to format JSON output: %v", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

// preferredColumns is the column order for table output; only columns that
// occur in the records are shown.
var preferredColumns = []string{"id", "name", "slug", "display", "status", "role", "description", "url"}

// printRecordTable renders records as an aligned table with Title-cased headers
func printRecordTable(recs types.RecordSet) {
	if len(recs) == 0 {
		fmt.Println("No objects found.")
		return
	}

	cols := tableColumns(recs)
	titler := cases.Title(language.English)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	headers := make([]string, 0, len(cols))
	for _, col := range cols {
		headers = append(headers, titler.String(col))
	}
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, rec := range recs {
		cells := make([]string, 0, len(cols))
		for _, col := range cols {
			cells = append(cells, formatCell(rec[col]))
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
	fmt.Printf("\n%d objects\n", len(recs))
}

// tableColumns picks the columns to display: the preferred ones that occur in
// the data, or every key of the first record when none match
func tableColumns(recs types.RecordSet) []string {
	present := make(map[string]bool)
	for _, rec := range recs {
		for k := range rec {
			present[k] = true
		}
	}

	var cols []string
	for _, col := range preferredColumns {
		if present[col] {
			cols = append(cols, col)
		}
	}
	if len(cols) > 0 {
		return cols
	}

	for k := range recs[0] {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// formatCell renders one field value for table output. Nested objects are
// reduced to their display, name, label, value, or id field.
func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		if val == "" {
			return "-"
		}
		return val
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case map[string]any:
		for _, k := range []string{"display", "name", "label", "value", "id"} {
			if inner, ok := val[k]; ok {
				return formatCell(inner)
			}
		}
		return "{...}"
	case []any:
		return strconv.Itoa(len(val)) + " items"
	default:
		return fmt.Sprintf("%v", val)
	}
}
