package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sot/chandra-ecf/ecf"
	"github.com/sot/chandra-ecf/ecf/fitsfile"
)

var (
	// CLI flags shared by every command
	logLevel   string // Log verbosity level
	configPath string // Optional YAML config file
	dataDir    string // Directory holding <shape>_ECF.fits files

	// CLI flags for the forward lookup
	ecfLevel float64 // Enclosed counts fraction
	theta    float64 // Off-axis angle (arcmin)
	phi      float64 // Off-axis azimuth (deg)
	energy   float64 // Energy (keV)
	shape    string  // PSF shape
	value    string  // Calibration column to interpolate
)

// newSource builds the calibration source for a resolved config. Tests swap
// it for an in-memory source.
var newSource = func(cfg Config) ecf.Source {
	src := fitsfile.New(cfg.DataDir)
	for name, path := range cfg.Shapes {
		src.Paths[ecf.Shape(name)] = path
	}
	return src
}

// rootCmd is the base command for the CLI. Run on its own it performs one
// forward lookup and prints the interpolated value.
var rootCmd = &cobra.Command{
	Use:   "ecf",
	Short: "Chandra HRMA PSF enclosed counts fraction lookup",
	Long: `Interpolates the Chandra HRMA enclosed counts fraction (ECF) calibration grid.

With no subcommand, prints the value of --value (default radius, arcsec) at the
given ECF, off-axis angle, azimuth and energy.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		logrus.SetLevel(level)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := newCatalog(cmd)
		if err != nil {
			return err
		}
		s, err := ecf.ParseShape(shape)
		if err != nil {
			return err
		}
		v, err := cat.Interpolate(ecf.Query{
			ECF:    ecfLevel,
			Theta:  theta,
			Phi:    phi,
			Energy: energy,
			Shape:  s,
			Field:  value,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatFloat(v))
		return nil
	},
}

// newCatalog resolves the configuration for cmd and returns a catalog over it.
func newCatalog(cmd *cobra.Command) (*ecf.Catalog, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	logrus.Debugf("Using ECF data directory %s", cfg.DataDir)
	return ecf.NewCatalog(newSource(cfg)), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory holding <shape>_ECF.fits calibration files (default $ECF_DATA_DIR or ./data)")

	q := ecf.DefaultQuery()
	rootCmd.Flags().Float64Var(&ecfLevel, "ecf", q.ECF, "Enclosed counts fraction")
	rootCmd.Flags().Float64Var(&theta, "theta", q.Theta, "Off-axis angle (arcmin)")
	rootCmd.Flags().Float64Var(&phi, "phi", q.Phi, "Azimuthal angle (deg)")
	rootCmd.Flags().Float64Var(&energy, "energy", q.Energy, "Energy (keV)")
	rootCmd.Flags().StringVar(&shape, "shape", string(q.Shape), "Shape (circular or elliptical)")
	rootCmd.Flags().StringVar(&value, "value", "radius", "Column in the ECF file to interpolate")

	rootCmd.AddCommand(radiusCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(fieldsCmd)
	rootCmd.AddCommand(serveCmd)
}
