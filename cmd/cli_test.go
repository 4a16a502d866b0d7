package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sot/chandra-ecf/ecf"
	"github.com/sot/chandra-ecf/internal/testutil"
)

// runCLI executes the root command with args against the synthetic grids and
// returns what it printed. The source the command resolved its config into
// is recorded in *gotCfg when gotCfg is non-nil.
func runCLI(t *testing.T, gotCfg *Config, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	src := testutil.NewCountingSource(map[ecf.Shape]*ecf.Record{
		ecf.Circular:   testutil.SyntheticRecord(),
		ecf.Elliptical: testutil.SyntheticRecord(),
	})
	prev := newSource
	newSource = func(cfg Config) ecf.Source {
		if gotCfg != nil {
			*gotCfg = cfg
		}
		return src
	}
	t.Cleanup(func() { newSource = prev })

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores every flag of c and its subcommands to its default, so
// tests sharing the package-level commands do not leak values.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			def := strings.Trim(f.DefValue, "[]")
			if def == "" {
				_ = sv.Replace(nil)
			} else {
				_ = sv.Replace(strings.Split(def, ","))
			}
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}
