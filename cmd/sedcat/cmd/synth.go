package cmd

import (
	"github.com/spf13/cobra"

	"go.ngs.io/sed-api/internal/adapter/store/catalog"
)

var (
	synthTemperatures []float64
	synthGravities    []float64
	synthSamples      int
)

var synthCmd = &cobra.Command{
	Use:   "synth <library-dir>",
	Short: "Synthesize a blackbody library in the catalog layout",
	Long: `Writes Planck spectra for a temperature and gravity grid under
<library-dir>, with a catalog.csv the server can read. Useful for smoke tests
and local development without the real model downloads.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := catalog.DefaultBlackbodySpec()
		if len(synthTemperatures) > 0 {
			spec.Temperatures = synthTemperatures
		}
		if len(synthGravities) > 0 {
			spec.Gravities = synthGravities
		}
		if synthSamples > 0 {
			spec.Samples = synthSamples
		}

		m, err := catalog.SynthesizeBlackbodyLibrary(args[0], spec, progressLogger())
		if err != nil {
			return err
		}
		reportManifest(cmd, m)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(synthCmd)

	synthCmd.Flags().Float64SliceVar(&synthTemperatures, "temperature", nil, "temperatures in K (default 2500-50000 every 500)")
	synthCmd.Flags().Float64SliceVar(&synthGravities, "gravity", nil, "log g values (default 0.0-6.0 every 0.5)")
	synthCmd.Flags().IntVar(&synthSamples, "samples", 0, "wavelength samples per spectrum")
}
