package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sot/chandra-ecf/ecf"
)

var fieldsShape string // PSF shape to inspect

// fieldsCmd lists the calibration columns and axis ranges of a shape's grid.
var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the calibration fields and axis ranges of a shape",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := ecf.ParseShape(fieldsShape)
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

		out := cmd.OutOrStdout()
		for _, ax := range g.Axes() {
			fmt.Fprintf(out, "%-7s %3d points  [%g, %g)\n", ax.Name, ax.Len(), ax.Min(), ax.Max())
		}
		for _, f := range g.Fields() {
			fmt.Fprintln(out, f)
		}
		return nil
	},
}

func init() {
	fieldsCmd.Flags().StringVar(&fieldsShape, "shape", string(ecf.Circular), "Shape (circular or elliptical)")
}
