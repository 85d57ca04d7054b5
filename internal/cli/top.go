package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	topPage int
	topSize int
)

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Browse the highest rated dramas",
	Long: `List dramas by personal rating, best first, one page at a time.

Example:
  dramarec top
  dramarec top --page 2 --size 20`,
	Args: cobra.NoArgs,
	RunE: runTop,
}

func init() {
	topCmd.Flags().IntVarP(&topPage, "page", "p", 1, "Page number (1-based)")
	topCmd.Flags().IntVarP(&topSize, "size", "s", 0, "Page size (default from config)")
}

func runTop(cmd *cobra.Command, args []string) error {
	size := topSize
	if !cmd.Flags().Changed("size") {
		size = cfg.Browse.PageSize
	}

	engine, err := loadEngine()
	if err != nil {
		return err
	}

	items, err := engine.TopRated(topPage, size)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, items)
	}

	total := engine.TotalPages(size)
	fmt.Fprintf(out, "Top rated (page %d of %d)\n", topPage, total)
	if len(items) == 0 {
		fmt.Fprintln(out, "No dramas on this page.")
		return nil
	}
	offset := (topPage - 1) * size
	for i, item := range items {
		printItem(out, offset+i+1, item)
	}
	return nil
}
