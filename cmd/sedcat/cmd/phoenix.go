package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"go.ngs.io/sed-api/internal/adapter/store/catalog"
)

var phoenixCmd = &cobra.Command{
	Use:   "phoenix",
	Short: "PHOENIX library preparation",
	Long: `Commands for turning the Husser et al. (2013) PHOENIX download into a
grid catalog: one file per temperature holding every gravity, plus catalog.csv.`,
}

var phoenixOrganizeCmd = &cobra.Command{
	Use:   "organize <source-dir> <dest-dir>",
	Short: "Merge per-gravity PHOENIX spectra into one file per temperature",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := catalog.OrganizePhoenix(args[0], args[1], progressLogger())
		if err != nil {
			return err
		}
		reportManifest(cmd, m)
		return nil
	},
}

var phoenixModels string

var phoenixCatalogCmd = &cobra.Command{
	Use:   "catalog <library-dir>",
	Short: "Write catalog.csv for an organized PHOENIX library",
	Long: `Scans <library-dir>/<models> for organized grid files and writes
<library-dir>/catalog.csv with one row per temperature and gravity.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib := args[0]
		m, err := catalog.MakePhoenixCatalog(
			filepath.Join(lib, phoenixModels),
			filepath.Join(lib, catalog.IndexFile),
			phoenixModels+"/")
		if err != nil {
			return err
		}
		reportManifest(cmd, m)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(phoenixCmd)
	phoenixCmd.AddCommand(phoenixOrganizeCmd)
	phoenixCmd.AddCommand(phoenixCatalogCmd)

	phoenixCatalogCmd.Flags().StringVar(&phoenixModels, "models", "phoenixm00", "model subdirectory of the library")
}
