// Package cmd provides the CLI commands for sedcat.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go.ngs.io/sed-api/internal/adapter/store/catalog"
	"go.ngs.io/sed-api/internal/config"
	"go.ngs.io/sed-api/internal/logging"
)

const version = "0.1.0"

var (
	cfgFile string
	verbose bool

	cfg = config.Default()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sedcat",
	Short: "Build and inspect stellar atmosphere grid catalogs",
	Long: `sedcat prepares the on-disk grid catalogs served by sed-api.

It reorganizes downloaded model libraries into the catalog layout, writes
catalog.csv indexes, synthesizes test libraries and exports reddening curves.

Examples:
  sedcat phoenix organize ./downloads/phoenix ./grid/phoenix
  sedcat phoenix catalog ./grid/phoenix
  sedcat cmfgen organize ./grid/cmfgen
  sedcat synth ./grid/bb
  sedcat curve export Nishiyama09 --aks 2.3 -o nishiyama.nc
  sedcat lookup merged --temperature 5800 --gravity 4.4`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "TOML config file (catalog root, cache size, logging)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg = loaded

	// Tool output goes to the terminal, not a log collector.
	cfg.Logging.Format = "console"
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sedcat version %s\n", version)
	},
}

// progressLogger reports catalog progress roughly every tenth of the work.
func progressLogger() catalog.Observer {
	return catalog.ObserverFunc(func(stage string, done, total int) {
		step := total / 10
		if step == 0 {
			step = 1
		}
		if done == total || done%step == 0 {
			logging.Info("progress",
				zap.String("stage", stage),
				zap.Int("done", done),
				zap.Int("total", total))
		}
	})
}

func reportManifest(cmd *cobra.Command, m *catalog.Manifest) {
	for _, s := range m.Skipped {
		logging.Warn("skipped", zap.String("item", s))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d files written, %d skipped\n", len(m.Files), len(m.Skipped))
}
