// Command bgpsim computes, for every AS in a relationship topology, the
// best BGP route it would install for every seeded prefix under Gao-Rexford
// valley-free propagation, optionally modelling Route Origin Validation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "bgpsim",
		Short:         "Simulate Gao-Rexford valley-free BGP propagation over an AS topology",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String("log-level", "info", "log level: debug|info|warn|error")
	cmd.PersistentFlags().String("metrics-addr", "", "if set, serve Prometheus metrics on this host:port")
	_ = viper.BindPFlag("log-level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("metrics-addr", cmd.PersistentFlags().Lookup("metrics-addr"))
	viper.SetEnvPrefix("BGPSIM")
	viper.AutomaticEnv()

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newGraphCmd())
	return cmd
}
