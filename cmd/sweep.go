package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/sot/chandra-ecf/ecf"
)

var (
	// CLI flags for the off-axis sweep
	sweepShape      string    // PSF shape
	sweepValue      string    // Calibration column
	sweepEnergies   []float64 // Energies (keV), one column group each
	sweepECFs       []float64 // ECF levels, one column each per energy
	sweepPhis       []float64 // Azimuths averaged at every point
	sweepThetaMin   float64   // First off-axis angle (arcmin)
	sweepThetaMax   float64   // Last off-axis angle (arcmin)
	sweepThetaSteps int       // Number of off-axis angles
)

// sweepCmd tabulates the azimuth-averaged field against off-axis angle, one
// column per (energy, ECF) pair.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Tabulate the azimuth-averaged radius against off-axis angle",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sweepThetaSteps < 2 {
			return fmt.Errorf("--theta-steps must be at least 2, got %d", sweepThetaSteps)
		}
		if len(sweepEnergies) == 0 || len(sweepECFs) == 0 {
			return fmt.Errorf("--energies and --ecfs must not be empty")
		}
		s, err := ecf.ParseShape(sweepShape)
		if err != nil {
			return err
		}
		cat, err := newCatalog(cmd)
		if err != nil {
			return err
		}
		g, err := cat.Grid(s)
		if err != nil {
			return err
		}

		thetas := floats.Span(make([]float64, sweepThetaSteps), sweepThetaMin, sweepThetaMax)
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)

		header := []string{"theta"}
		for _, en := range sweepEnergies {
			for _, level := range sweepECFs {
				header = append(header, fmt.Sprintf("E=%g ECF=%g", en, level))
			}
		}
		fmt.Fprintln(tw, color.New(color.Bold).Sprint(strings.Join(header, "\t"))+"\t")

		for _, th := range thetas {
			row := []string{fmt.Sprintf("%.2f", th)}
			for _, en := range sweepEnergies {
				for _, level := range sweepECFs {
					v, err := g.AzimuthAverage(sweepValue, level, th, en, sweepPhis)
					if err != nil {
						return err
					}
					row = append(row, fmt.Sprintf("%.3f", v))
				}
			}
			fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
		}
		return tw.Flush()
	},
}

func init() {
	sweepCmd.Flags().StringVar(&sweepShape, "shape", string(ecf.Circular), "Shape (circular or elliptical)")
	sweepCmd.Flags().StringVar(&sweepValue, "value", "radius", "Column in the ECF file to interpolate")
	sweepCmd.Flags().Float64SliceVar(&sweepEnergies, "energies", []float64{1.49, 6.4}, "Comma-separated energies (keV)")
	sweepCmd.Flags().Float64SliceVar(&sweepECFs, "ecfs", []float64{0.5, 0.9}, "Comma-separated ECF levels")
	sweepCmd.Flags().Float64SliceVar(&sweepPhis, "phis", append([]float64(nil), ecf.DefaultAzimuths...), "Comma-separated azimuths (deg) to average over")
	sweepCmd.Flags().Float64Var(&sweepThetaMin, "theta-min", 0, "First off-axis angle (arcmin)")
	sweepCmd.Flags().Float64Var(&sweepThetaMax, "theta-max", 15, "Last off-axis angle (arcmin)")
	sweepCmd.Flags().IntVar(&sweepThetaSteps, "theta-steps", 16, "Number of off-axis angles")
}
