package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"go.ngs.io/sed-api/internal/adapter/store/catalog"
	"go.ngs.io/sed-api/internal/usecase"
)

var (
	lookupTemperature float64
	lookupMetallicity float64
	lookupGravity     float64
	lookupJSON        bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <family>",
	Short: "Fetch one model spectrum from the configured catalog",
	Long: `Resolves a spectrum exactly as the server would. <family> is a family
name, a library id or "merged".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := []catalog.Option{catalog.WithCacheSize(cfg.Catalog.CacheSize)}
		for libraryID, dir := range cfg.Catalog.LibraryOverrides() {
			opts = append(opts, catalog.WithLibraryDir(libraryID, dir))
		}
		uc := usecase.NewAtmosphereUseCase(catalog.NewStore(cfg.Catalog.Root, opts...))

		resp, err := uc.Execute(usecase.AtmosphereRequest{
			Family:      args[0],
			Temperature: lookupTemperature,
			Metallicity: lookupMetallicity,
			Gravity:     lookupGravity,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if lookupJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}

		fmt.Fprintf(out, "# %s (%s) T=%.0f [M/H]=%.2f log g=%.2f\n",
			resp.Family, resp.LibraryID, resp.Temperature, resp.Metallicity, resp.Gravity)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "WAVELENGTH\tFLUX")
		for i := range resp.Wavelength {
			fmt.Fprintf(w, "%.3f\t%.6e\n", resp.Wavelength[i], resp.Flux[i])
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().Float64VarP(&lookupTemperature, "temperature", "t", 0, "effective temperature in K")
	lookupCmd.Flags().Float64VarP(&lookupMetallicity, "metallicity", "m", 0, "metallicity [Fe/H] or [M/H]")
	lookupCmd.Flags().Float64VarP(&lookupGravity, "gravity", "g", 0, "surface gravity log g")
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "print the response as JSON")

	_ = lookupCmd.MarkFlagRequired("temperature")
	_ = lookupCmd.MarkFlagRequired("gravity")
}
