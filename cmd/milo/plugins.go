package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-opt/milo/engine"
	"github.com/go-opt/milo/mip"
)

// pluginsCmd represents the plugins command
var pluginsCmd = &cobra.Command{
	Use:   "plugins [category]",
	Short: "lists the engine's plugins, all categories or one",
	Run:   cmdPlugins,
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
	pluginsCmd.Flags().StringVar(&fEngine, "engine", "", "selects the solver engine")
}

func cmdPlugins(cmd *cobra.Command, args []string) {
	cats := engine.Categories()
	if len(args) > 0 {
		c, err := engine.ParseCategory(args[0])
		if err != nil {
			fmt.Println("error:", err)
			os.Exit(-1)
		}
		cats = []engine.Category{c}
	}

	s, err := mip.New(sessionOptions()...)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(-1)
	}
	defer s.Close()

	for _, c := range cats {
		names := s.Engine().PluginNames(c)
		fmt.Printf("%s (%d):\n", c, len(names))
		for _, n := range names {
			fmt.Println("  " + n)
		}
	}
}
