// Package main is the milo command line tool. It solves mixed-integer
// linear models from exchange files and converts between the formats
// milo reads and writes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-opt/milo"
)

var rootCmd = &cobra.Command{
	Use:     "milo",
	Short:   "milo solves mixed-integer linear models",
	Version: milo.Version.String(),
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "prints the milo version and the available engines",
	Run:   cmdVersion,
}

func cmdVersion(cmd *cobra.Command, args []string) {
	fmt.Println("milo " + milo.Version.String())
	for _, name := range milo.Engines() {
		fmt.Println("  engine " + name)
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
