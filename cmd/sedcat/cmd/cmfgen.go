package cmd

import (
	"github.com/spf13/cobra"

	"go.ngs.io/sed-api/internal/adapter/store/catalog"
)

var cmfgenCmd = &cobra.Command{
	Use:   "cmfgen",
	Short: "CMFGEN library preparation",
	Long: `Commands for the Fierro et al. (2015) CMFGEN download: split rotating and
non-rotating models into rot/ and noRot/ and index each with catalog.csv.`,
}

var cmfgenOrganizeCmd = &cobra.Command{
	Use:   "organize <dir>",
	Short: "Move CMFGEN models into rot/ and noRot/",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := catalog.OrganizeCMFGEN(args[0], progressLogger())
		if err != nil {
			return err
		}
		reportManifest(cmd, m)
		return nil
	},
}

var cmfgenCatalogCmd = &cobra.Command{
	Use:   "catalog <dir>",
	Short: "Write catalog.csv for an organized CMFGEN directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := catalog.MakeCMFGENCatalog(args[0])
		if err != nil {
			return err
		}
		reportManifest(cmd, m)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cmfgenCmd)
	cmfgenCmd.AddCommand(cmfgenOrganizeCmd)
	cmfgenCmd.AddCommand(cmfgenCatalogCmd)
}
