package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/saeedalam/dramarec/internal/config"
	"github.com/saeedalam/dramarec/internal/logging"
)

var (
	cfgFile     string
	datasetFlag string
	logLevel    string
	useIndex    bool
	jsonOutput  bool

	// cfg is loaded once per invocation in PersistentPreRunE.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "dramarec",
	Short: "Content-based BL drama recommendations",
	Long: `dramarec - find BL dramas similar to one you liked

dramarec builds a TF-IDF profile of every drama in a catalog from its
genres, mood tags, summary and main leads, and recommends the dramas whose
profiles are closest to the one you name. Titles may be approximate.

Quick Start:
  dramarec recommend "2gether" --dataset dramas.csv
  dramarec top --dataset dramas.csv
  dramarec index --dataset dramas.csv   Save a snapshot to .dramarec/
  dramarec serve --dataset dramas.csv   Start MCP server for IDE integration`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: $DRAMAREC_CONFIG or ./dramarec.yaml)")
	rootCmd.PersistentFlags().StringVar(&datasetFlag, "dataset", "", "Catalog file (.csv or .json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&useIndex, "index", false, "Answer from the saved snapshot instead of the dataset")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")

	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
	// versionCmd is registered in version.go
}

func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if datasetFlag != "" {
		loaded.Dataset = datasetFlag
	}
	if logLevel != "" {
		if !logging.ValidLevel(logLevel) {
			return fmt.Errorf("unknown log level %q", logLevel)
		}
		loaded.Logging.Level = logLevel
	}

	logging.Init(loaded.LogConfig())
	cfg = loaded
	return nil
}
