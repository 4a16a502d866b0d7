package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// CLI flags for the inverse lookup
	radius       float64 // Enclosed radius (arcsec)
	radiusTheta  float64 // Off-axis angle (arcmin)
	radiusPhi    float64 // Off-axis azimuth (deg)
	radiusEnergy float64 // Energy (keV)
)

// radiusCmd prints the ECF enclosed within a radius on the circular grid.
var radiusCmd = &cobra.Command{
	Use:   "radius",
	Short: "Print the enclosed counts fraction for an enclosed radius",
	Long: `Estimates the ECF whose circular PSF radius equals --radius by sampling the
radius at ECF 0.01 .. 0.99 and interpolating. Results are clamped to [0.01, 0.99].`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := newCatalog(cmd)
		if err != nil {
			return err
		}
		v, err := cat.ECFForRadius(radius, radiusTheta, radiusPhi, radiusEnergy)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatFloat(v))
		return nil
	},
}

func init() {
	radiusCmd.Flags().Float64Var(&radius, "radius", 1.0, "Enclosed radius (arcsec)")
	radiusCmd.Flags().Float64Var(&radiusTheta, "theta", 0, "Off-axis angle (arcmin)")
	radiusCmd.Flags().Float64Var(&radiusPhi, "phi", 0, "Azimuthal angle (deg)")
	radiusCmd.Flags().Float64Var(&radiusEnergy, "energy", 1.5, "Energy (keV)")
}
