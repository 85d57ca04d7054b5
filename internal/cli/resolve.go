package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saeedalam/dramarec/internal/recommend"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <title>",
	Short: "Show which drama a title matches",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	res, err := engine.Resolve(strings.Join(args, " "))
	if err != nil {
		var noMatch *recommend.NoMatchError
		if errors.As(err, &noMatch) && noMatch.BestTitle != "" && !jsonOutput {
			fmt.Fprintf(out, "No match. Closest: %s (score %d, need %d)\n",
				noMatch.BestTitle, noMatch.BestScore, noMatch.Threshold)
		}
		return err
	}

	if jsonOutput {
		return printJSON(out, res)
	}
	fmt.Fprintf(out, "%s [id %d] via %s, score %d\n", res.Title, res.ItemID, res.Method, res.Score)
	return nil
}
