package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saeedalam/dramarec/pkg/types"
)

var (
	recommendCount int
	recommendID    int
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <title>",
	Short: "Recommend dramas similar to a title",
	Long: `Recommend dramas similar to the one you name.

The title is matched exactly first, then as a substring, then fuzzily, so
small typos are fine.

Example:
  dramarec recommend "2gether"
  dramarec recommend "kinporsche" -n 10
  dramarec recommend --id 3`,
	Args: cobra.ArbitraryArgs,
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().IntVarP(&recommendCount, "count", "n", 0, "Number of recommendations (default from config)")
	recommendCmd.Flags().IntVar(&recommendID, "id", -1, "Recommend by item id instead of title")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	byID := cmd.Flags().Changed("id")
	if query == "" && !byID {
		return fmt.Errorf("a title or --id is required")
	}

	count, err := resolveCount(cmd, recommendCount)
	if err != nil {
		return err
	}

	engine, err := loadEngine()
	if err != nil {
		return err
	}

	var result *types.RecommendationResult
	if byID {
		result, err = engine.RecommendByID(recommendID, count)
	} else {
		result, err = engine.Recommend(query, count)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, result)
	}

	fmt.Fprintf(out, "Because you liked %s", result.Subject.Title)
	if result.Method != types.MatchExact && result.Method != types.MatchID {
		fmt.Fprintf(out, " (matched %q by %s, score %d)", result.Query, result.Method, result.MatchScore)
	}
	fmt.Fprintln(out, ":")
	fmt.Fprintln(out, strings.Repeat("-", 40))

	if len(result.Recommendations) == 0 {
		fmt.Fprintln(out, "No other dramas in the catalog.")
		return nil
	}
	for i, rec := range result.Recommendations {
		printItem(out, i+1, rec.Item)
		fmt.Fprintf(out, "    Similarity: %.0f%%\n", rec.Score*100)
	}
	return nil
}
