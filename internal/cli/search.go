package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchCount int

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Find dramas by keyword",
	Long: `Search titles, genres and mood tags for a keyword (case-insensitive).

Example:
  dramarec search comedy
  dramarec search "office" -n 20`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchCount, "count", "n", 0, "Max results (default from config)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	keyword := strings.Join(args, " ")

	count, err := resolveCount(cmd, searchCount)
	if err != nil {
		return err
	}

	engine, err := loadEngine()
	if err != nil {
		return err
	}

	result, err := engine.Search(keyword, count)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, result)
	}

	fmt.Fprintf(out, "Searching for: %s\n", keyword)
	fmt.Fprintln(out, strings.Repeat("-", 40))
	if len(result.Items) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}
	for i, item := range result.Items {
		printItem(out, i+1, item)
	}
	fmt.Fprintf(out, "\nTotal: %d results\n", len(result.Items))
	return nil
}
