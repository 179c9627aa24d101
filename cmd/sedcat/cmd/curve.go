package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go.ngs.io/sed-api/internal/adapter/store/curve"
	"go.ngs.io/sed-api/internal/logging"
	"go.ngs.io/sed-api/internal/usecase"
)

var (
	curveAKs    float64
	curveRv     float64
	curveOutput string
)

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Reddening curve utilities",
}

var curveExportCmd = &cobra.Command{
	Use:   "export <law>",
	Short: "Write a law's dense extinction curve to NetCDF or JSON",
	Long: `Evaluates the named reddening law on its dense grid, scales it to the
requested A_Ks and writes it to --output. The format follows the extension:
.nc for NetCDF, .json for JSON. Without --output the JSON goes to stdout. Cardelli89 has
no default Rv; pass --rv explicitly.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var rv *float64
		if cmd.Flags().Changed("rv") {
			rv = &curveRv
		}

		c, err := usecase.NewExtinctionUseCase().Curve(args[0], rv, curveAKs)
		if err != nil {
			return err
		}

		if curveOutput == "" {
			return curve.WriteJSON(cmd.OutOrStdout(), c)
		}
		if err := curve.Save(curveOutput, c); err != nil {
			return err
		}
		logging.Info("curve exported",
			zap.String("law", c.Law),
			zap.Float64("aks", c.AKs),
			zap.Int("points", len(c.Wavelength)),
			zap.String("path", curveOutput))
		fmt.Fprintln(cmd.OutOrStdout(), curveOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(curveCmd)
	curveCmd.AddCommand(curveExportCmd)

	curveExportCmd.Flags().Float64Var(&curveAKs, "aks", 1.0, "Ks-band extinction in magnitudes")
	curveExportCmd.Flags().Float64Var(&curveRv, "rv", 0, "total-to-selective extinction ratio, required for Cardelli89 and ignored otherwise")
	curveExportCmd.Flags().StringVarP(&curveOutput, "output", "o", "", "output file (.nc or .json)")
}
